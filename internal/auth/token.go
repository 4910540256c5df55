package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

// HeaderName carries the admin token when no bearer Authorization header is sent.
const HeaderName = "X-Admin-Token"

// MinTokenLen mirrors the password rule of the account system this guard replaced.
const MinTokenLen = 12

var ErrTokenTooShort = errors.New("token too short (min 12)")

// HashToken returns the bcrypt hash to put in ADMIN_TOKEN_HASH.
func HashToken(token string) (string, error) {
	if len(token) < MinTokenLen {
		return "", ErrTokenTooShort
	}
	h, err := bcrypt.GenerateFromPassword([]byte(token), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// RequireToken guards mutating routes with a bcrypt-hashed admin token. An
// empty hash returns nil so callers leave the route open.
func RequireToken(hash string) gin.HandlerFunc {
	if hash == "" {
		return nil
	}
	return func(c *gin.Context) {
		tok := tokenFrom(c.Request)
		if tok == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(tok)); err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Next()
	}
}

func tokenFrom(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if v, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(v)
		}
	}
	return strings.TrimSpace(r.Header.Get(HeaderName))
}
