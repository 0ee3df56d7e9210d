package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/satonic/satonic-admin/internal/models"
)

func collectionPath(collectionID string) string {
	return "/api/collections/" + url.PathEscape(collectionID) + "/"
}

// ListCollections fetches one page of collections. The filter usually
// carries tenantId, pageSize and cursor.
func (c *Client) ListCollections(ctx context.Context, filter Query, cb Callbacks[models.Page[models.Collection]]) {
	dispatch(c, cb, func() (models.Page[models.Collection], error) {
		return listJSON[models.Page[models.Collection]](ctx, c, Collections, "/api/collections/", filter)
	})
}

// GetCollection fetches a single collection
func (c *Client) GetCollection(ctx context.Context, collectionID string, cb Callbacks[models.Collection]) {
	dispatch(c, cb, func() (models.Collection, error) {
		return getJSON[models.Collection](ctx, c, Collections, collectionPath(collectionID), nil)
	})
}

// CreateCollection creates a collection from body
func (c *Client) CreateCollection(ctx context.Context, body any, cb Callbacks[models.Collection]) {
	dispatch(c, cb, func() (models.Collection, error) {
		return sendJSON[models.Collection](ctx, c, Collections, http.MethodPost, "/api/collections/", body)
	})
}

// UpdateCollection applies a partial update to a collection
func (c *Client) UpdateCollection(ctx context.Context, collectionID string, body any, cb Callbacks[models.Collection]) {
	dispatch(c, cb, func() (models.Collection, error) {
		return sendJSON[models.Collection](ctx, c, Collections, http.MethodPatch, collectionPath(collectionID), body)
	})
}

// ArchiveCollection soft-deletes a collection
func (c *Client) ArchiveCollection(ctx context.Context, collectionID string, cb Callbacks[Empty]) {
	dispatch(c, cb, func() (Empty, error) {
		return discard(ctx, c, http.MethodPost, collectionPath(collectionID)+"archive/")
	})
}

// DeleteCollection permanently removes a collection
func (c *Client) DeleteCollection(ctx context.Context, collectionID string, cb Callbacks[Empty]) {
	dispatch(c, cb, func() (Empty, error) {
		return discard(ctx, c, http.MethodDelete, collectionPath(collectionID))
	})
}
