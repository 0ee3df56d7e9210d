package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"

	"github.com/satonic/satonic-admin/internal/casing"
	"github.com/satonic/satonic-admin/internal/models"
)

func assetPath(assetID string) string {
	return "/api/assets/" + url.PathEscape(assetID) + "/"
}

// ListAssets fetches one page of assets, usually scoped by tenantId
func (c *Client) ListAssets(ctx context.Context, filter Query, cb Callbacks[models.Page[models.Asset]]) {
	dispatch(c, cb, func() (models.Page[models.Asset], error) {
		return listJSON[models.Page[models.Asset]](ctx, c, Assets, "/api/assets/", filter)
	})
}

// GetAsset fetches a single asset
func (c *Client) GetAsset(ctx context.Context, assetID string, cb Callbacks[models.Asset]) {
	dispatch(c, cb, func() (models.Asset, error) {
		return getJSON[models.Asset](ctx, c, Assets, assetPath(assetID), nil)
	})
}

// UploadAsset uploads a file for tenantID as multipart form data
func (c *Client) UploadAsset(ctx context.Context, tenantID, filename string, content io.Reader, cb Callbacks[models.Asset]) {
	dispatch(c, cb, func() (models.Asset, error) {
		var buf bytes.Buffer
		form := multipart.NewWriter(&buf)
		if err := form.WriteField(casing.ToBackend("tenantId"), tenantID); err != nil {
			return models.Asset{}, err
		}
		part, err := form.CreateFormFile("file", filename)
		if err != nil {
			return models.Asset{}, err
		}
		if _, err := io.Copy(part, content); err != nil {
			return models.Asset{}, fmt.Errorf("failed to read upload: %w", err)
		}
		if err := form.Close(); err != nil {
			return models.Asset{}, err
		}

		resp, err := c.send(ctx, request{
			method:      http.MethodPost,
			path:        "/api/assets/",
			rawBody:     &buf,
			contentType: form.FormDataContentType(),
		})
		if err != nil {
			return models.Asset{}, err
		}
		return decodeInto[models.Asset](c, resp, Assets, false)
	})
}

// DeleteAsset permanently removes an asset
func (c *Client) DeleteAsset(ctx context.Context, assetID string, cb Callbacks[Empty]) {
	dispatch(c, cb, func() (Empty, error) {
		return discard(ctx, c, http.MethodDelete, assetPath(assetID))
	})
}

// DownloadAsset fetches the asset's file
func (c *Client) DownloadAsset(ctx context.Context, assetID string, cb Callbacks[models.Binary]) {
	dispatch(c, cb, func() (models.Binary, error) {
		return download(ctx, c, assetPath(assetID)+"download/")
	})
}
