package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/satonic/satonic-admin/internal/models"
)

// download issues a GET against a binary endpoint
func download(ctx context.Context, c *Client, path string) (models.Binary, error) {
	resp, err := c.send(ctx, request{method: http.MethodGet, path: path})
	if err != nil {
		return models.Binary{}, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return models.Binary{}, fmt.Errorf("failed to read download: %w", err)
	}

	return models.Binary{
		Data:        data,
		Filename:    FilenameFromDisposition(resp.Header.Get("Content-Disposition")),
		ContentType: resp.Header.Get("Content-Type"),
	}, nil
}

// FilenameFromDisposition returns the text between `filename="` and the
// next quote of a Content-Disposition header, or "" when there is none.
func FilenameFromDisposition(header string) string {
	const marker = `filename="`
	start := strings.Index(header, marker)
	if start < 0 {
		return ""
	}
	rest := header[start+len(marker):]
	end := strings.IndexByte(rest, '"')
	if end < 0 {
		return ""
	}
	return rest[:end]
}
