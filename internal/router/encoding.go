package router

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"slices"

	"github.com/nhdewitt/http-server/internal/headers"
)

const gzipEncoding = "gzip"

func acceptsGzip(h headers.Headers) bool {
	return slices.Contains(h.Tokens("Accept-Encoding"), gzipEncoding)
}

func gzipBytes(p []byte) ([]byte, error) {
	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	if _, err := gw.Write(p); err != nil {
		return nil, fmt.Errorf("gzip: %w", err)
	}
	if err := gw.Close(); err != nil {
		return nil, fmt.Errorf("gzip: %w", err)
	}
	return buf.Bytes(), nil
}
