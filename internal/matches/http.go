package matches

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// maxLoadsLimit bounds /api/loads?limit=.
const maxLoadsLimit = 200

// History lists past load attempts.
type History interface {
	List(ctx context.Context, limit int) ([]LoadRecord, error)
}

// ----- Criteria from query -----

// criteriaFromQuery reads from, to, competition, phase, team and q.
func criteriaFromQuery(c *gin.Context, loc *time.Location) (Criteria, error) {
	from, err := ParseCriteriaDate(c.Query("from"), loc)
	if err != nil {
		return Criteria{}, &CriteriaError{Field: "from", Value: c.Query("from")}
	}
	to, err := ParseCriteriaDate(c.Query("to"), loc)
	if err != nil {
		return Criteria{}, &CriteriaError{Field: "to", Value: c.Query("to")}
	}
	return Criteria{
		From:        from,
		To:          to,
		Competition: c.Query("competition"),
		Phase:       c.Query("phase"),
		Team:        c.Query("team"),
		Query:       c.Query("q"),
	}, nil
}

// filtered evaluates the request's criteria against the installed snapshot.
func filtered(c *gin.Context, ds *Dataset) ([]Match, bool) {
	crit, err := criteriaFromQuery(c, ds.Location())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}
	return Filter(ds.Records(), crit), true
}

// ----- Routes -----

// RegisterRoutes mounts the read API and the reload endpoint. protect, when
// non-nil, guards reload; history may be nil.
func RegisterRoutes(r *gin.Engine, ds *Dataset, history History, protect gin.HandlerFunc) {
	api := r.Group("/api")
	{
		api.GET("/matches", func(c *gin.Context) {
			list, ok := filtered(c, ds)
			if !ok {
				return
			}
			c.JSON(http.StatusOK, gin.H{"summary": Summarize(list), "cards": Project(list)})
		})

		api.GET("/options", func(c *gin.Context) {
			records := ds.Records()
			lo, hi := DateBounds(records)
			c.JSON(http.StatusOK, gin.H{
				"options": CurrentOptions(records),
				"min":     FormatDate(lo),
				"max":     FormatDate(hi),
			})
		})

		api.GET("/status", func(c *gin.Context) {
			snap := ds.Snapshot()
			c.JSON(http.StatusOK, gin.H{
				"source":     snap.Source,
				"loaded_at":  snap.LoadedAt,
				"count":      len(snap.Records),
				"warnings":   snap.Warnings,
				"last_error": snap.LastError,
			})
		})

		api.POST("/reload", attachProtect(protect, func(c *gin.Context) {
			if err := ds.Load(c.Request.Context()); err != nil {
				status := http.StatusBadGateway
				var le *LoadError
				if !errors.As(err, &le) {
					status = http.StatusInternalServerError
				}
				c.JSON(status, gin.H{"error": err.Error()})
				return
			}
			snap := ds.Snapshot()
			c.JSON(http.StatusOK, gin.H{"count": len(snap.Records), "warnings": len(snap.Warnings)})
		}))

		api.GET("/loads", func(c *gin.Context) {
			if history == nil {
				c.JSON(http.StatusNotFound, gin.H{"error": "history disabled"})
				return
			}
			limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
			limit = min(limit, maxLoadsLimit)
			list, err := history.List(c.Request.Context(), limit)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusOK, list)
		})

		// CSV export of the filtered matches
		api.GET("/matches.csv", func(c *gin.Context) {
			list, ok := filtered(c, ds)
			if !ok {
				return
			}
			filename := fmt.Sprintf("matches_%s.csv", time.Now().Format("2006-01-02"))
			c.Header("Content-Type", "text/csv; charset=utf-8")
			c.Header("Content-Disposition", "attachment; filename="+filename)
			if err := WriteCSV(c.Writer, list); err != nil {
				c.String(http.StatusInternalServerError, err.Error())
			}
		})

		// iCal export of the filtered matches
		api.GET("/matches.ics", func(c *gin.Context) {
			list, ok := filtered(c, ds)
			if !ok {
				return
			}
			c.Header("Content-Type", "text/calendar; charset=utf-8")
			c.Header("Content-Disposition", "attachment; filename=matches.ics")
			WriteICS(c.Writer, list, time.Now())
		})
	}
}

// WriteCSV writes matches back out in the source's semicolon layout.
func WriteCSV(w io.Writer, list []Match) error {
	cw := csv.NewWriter(w)
	cw.Comma = ';'
	cols := DefaultColumns()
	_ = cw.Write([]string{cols.ID, cols.Date, cols.Competition, cols.Phase, cols.Home, cols.Away, cols.Video})
	for _, m := range list {
		date := FormatDate(m.Date)
		if m.Date == nil {
			date = m.DateRaw
		}
		_ = cw.Write([]string{m.ID, date, m.Competition, m.Phase, m.Home, m.Away, m.VideoLink})
	}
	cw.Flush()
	return cw.Error()
}

// WriteICS writes one all-day VEVENT per dated match. Undated matches are skipped.
func WriteICS(w io.Writer, list []Match, now time.Time) {
	fmt.Fprint(w, "BEGIN:VCALENDAR\r\n")
	fmt.Fprint(w, "VERSION:2.0\r\n")
	fmt.Fprint(w, "PRODID:-//matchbrowser//EN\r\n")
	fmt.Fprint(w, "CALSCALE:GREGORIAN\r\n")

	stamp := now.UTC().Format("20060102T150405Z")
	// Escape text values per RFC 5545; any line break becomes a literal \n.
	esc := strings.NewReplacer("\\", "\\\\", ",", "\\,", ";", "\\;", "\r\n", "\\n", "\r", "\\n", "\n", "\\n").Replace

	for i, m := range list {
		if m.Date == nil {
			continue
		}
		uid := m.ID
		if uid == "" {
			uid = "row" + strconv.Itoa(i)
		}
		fmt.Fprint(w, "BEGIN:VEVENT\r\n")
		fmt.Fprintf(w, "UID:match-%s@matchbrowser\r\n", esc(uid))
		fmt.Fprintf(w, "DTSTAMP:%s\r\n", stamp)
		fmt.Fprintf(w, "DTSTART;VALUE=DATE:%s\r\n", m.Date.Format("20060102"))
		fmt.Fprintf(w, "DTEND;VALUE=DATE:%s\r\n", m.Date.AddDate(0, 0, 1).Format("20060102"))
		fmt.Fprintf(w, "SUMMARY:%s\r\n", esc(m.Home+" vs "+m.Away))
		var desc []string
		for _, s := range []string{m.Competition, m.Phase} {
			if s != "" {
				desc = append(desc, s)
			}
		}
		if len(desc) > 0 {
			fmt.Fprintf(w, "DESCRIPTION:%s\r\n", esc(strings.Join(desc, " - ")))
		}
		if IsWebLink(m.VideoLink) {
			fmt.Fprintf(w, "URL:%s\r\n", m.VideoLink)
		}
		fmt.Fprint(w, "END:VEVENT\r\n")
	}
	fmt.Fprint(w, "END:VCALENDAR\r\n")
}

// attachProtect runs protect before h when set. Only reload is wrapped; reads stay public.
func attachProtect(protect gin.HandlerFunc, h gin.HandlerFunc) gin.HandlerFunc {
	if protect == nil {
		return h
	}
	return func(c *gin.Context) {
		protect(c)
		if c.IsAborted() {
			return
		}
		h(c)
	}
}
