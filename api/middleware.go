package api

import (
	"compress/gzip"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// DecompressRequest transparently decodes gzip request bodies for the task
// routes. Bodies with any other non-identity encoding are rejected with 415
// and invalid gzip payloads with 400.
func DecompressRequest() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			switch encoding, ok := requestEncoding(req.Header.Get(echo.HeaderContentEncoding)); {
			case !ok:
				return echo.NewHTTPError(http.StatusUnsupportedMediaType, "unsupported content encoding")
			case encoding == "":
				return next(c)
			}

			body, err := newGzipBody(req.Body)
			if err != nil {
				return echo.NewHTTPError(http.StatusBadRequest, "invalid gzip body").SetInternal(err)
			}
			req.Body = body
			// The decoded length is unknown until the body is read.
			req.ContentLength = -1
			req.Header.Del(echo.HeaderContentEncoding)
			req.Header.Del(echo.HeaderContentLength)
			return next(c)
		}
	}
}

// requestEncoding returns "gzip" when the body is gzip-encoded, "" for
// identity bodies, and false for anything else.
func requestEncoding(header string) (string, bool) {
	result := ""
	for _, enc := range strings.Split(header, ",") {
		switch strings.ToLower(strings.TrimSpace(enc)) {
		case "", "identity":
		case "gzip", "x-gzip":
			if result != "" {
				return "", false
			}
			result = "gzip"
		default:
			return "", false
		}
	}
	return result, true
}

// gzipBody reads decompressed data and closes both the gzip stream and the
// original request body.
type gzipBody struct {
	zr  *gzip.Reader
	src io.ReadCloser
}

func newGzipBody(src io.ReadCloser) (*gzipBody, error) {
	zr, err := gzip.NewReader(src)
	if err != nil {
		_ = src.Close()
		return nil, err
	}
	return &gzipBody{zr: zr, src: src}, nil
}

func (b *gzipBody) Read(p []byte) (int, error) { return b.zr.Read(p) }

func (b *gzipBody) Close() error {
	return errors.Join(b.zr.Close(), b.src.Close())
}
