package matches

import (
	"bytes"
	"compress/bzip2"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
)

// maxSourceBytes caps how much of a source, before or after decompression, is
// read into memory. Larger sources fail to load rather than being cut short.
var maxSourceBytes int64 = 32 << 20

var errSourceTooLarge = errors.New("source exceeds size limit")

func readCapped(r io.Reader) ([]byte, error) {
	b, err := io.ReadAll(io.LimitReader(r, maxSourceBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(b)) > maxSourceBytes {
		return nil, fmt.Errorf("%w (%d bytes)", errSourceTooLarge, maxSourceBytes)
	}
	return b, nil
}

// HTTPClient is the subset of *http.Client the fetcher needs.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Fetcher reads a dataset source from disk or over HTTP and undoes any
// compression its name advertises.
type Fetcher struct {
	client HTTPClient
}

func NewFetcher(client HTTPClient) *Fetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &Fetcher{client: client}
}

// IsRemote reports whether src is fetched over HTTP.
func IsRemote(src string) bool {
	s := strings.ToLower(src)
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// Fetch returns the decompressed bytes and the file name with the compression
// suffix stripped. All failures are *LoadError.
func (f *Fetcher) Fetch(ctx context.Context, src string) ([]byte, string, error) {
	var (
		b   []byte
		err error
	)
	if IsRemote(src) {
		b, err = f.get(ctx, src)
	} else {
		b, err = readFile(src)
	}
	if err != nil {
		return nil, "", err
	}
	name := src
	if i := strings.IndexAny(name, "?#"); i >= 0 && IsRemote(src) {
		name = name[:i]
	}
	out, base, err := decompress(name, b)
	if err != nil {
		return nil, "", &LoadError{Source: src, Err: err}
	}
	return out, base, nil
}

func (f *Fetcher) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &LoadError{Source: url, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Cache-Control", "no-store")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &LoadError{Source: url, Err: fmt.Errorf("http get: %w", err)}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &LoadError{Source: url, Status: resp.StatusCode}
	}
	b, err := readCapped(resp.Body)
	if err != nil {
		return nil, &LoadError{Source: url, Err: fmt.Errorf("read body: %w", err)}
	}
	return b, nil
}

func readFile(path string) ([]byte, error) {
	fh, err := os.Open(path) //nolint:gosec // the source path is operator configuration
	if err != nil {
		return nil, &LoadError{Source: path, Err: err}
	}
	defer fh.Close()
	b, err := readCapped(fh)
	if err != nil {
		return nil, &LoadError{Source: path, Err: fmt.Errorf("read: %w", err)}
	}
	return b, nil
}

// decompress picks a codec from the name's suffix and returns the name without it.
func decompress(name string, b []byte) ([]byte, string, error) {
	lower := strings.ToLower(name)
	var (
		r   io.Reader
		ext string
	)
	src := bytes.NewReader(b)
	switch {
	case strings.HasSuffix(lower, ".gz"):
		zr, err := gzip.NewReader(src)
		if err != nil {
			return nil, "", fmt.Errorf("gzip reader: %w", err)
		}
		defer zr.Close()
		r, ext = zr, ".gz"
	case strings.HasSuffix(lower, ".bz2"):
		r, ext = bzip2.NewReader(src), ".bz2"
	case strings.HasSuffix(lower, ".xz"):
		xr, err := xz.NewReader(src)
		if err != nil {
			return nil, "", fmt.Errorf("xz reader: %w", err)
		}
		r, ext = xr, ".xz"
	case strings.HasSuffix(lower, ".zst"):
		dec, err := zstd.NewReader(src)
		if err != nil {
			return nil, "", fmt.Errorf("zstd reader: %w", err)
		}
		defer dec.Close()
		r, ext = dec, ".zst"
	default:
		return b, name, nil
	}
	out, err := readCapped(r)
	if err != nil {
		return nil, "", fmt.Errorf("decompress %s: %w", ext, err)
	}
	return out, name[:len(name)-len(ext)], nil
}
