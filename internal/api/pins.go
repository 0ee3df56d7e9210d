package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/satonic/satonic-admin/internal/models"
)

// ListPins fetches one page of IPFS pins, usually scoped by tenantId
func (c *Client) ListPins(ctx context.Context, filter Query, cb Callbacks[models.Page[models.Pin]]) {
	dispatch(c, cb, func() (models.Page[models.Pin], error) {
		return listJSON[models.Page[models.Pin]](ctx, c, Pins, "/api/ipfs/pins/", filter)
	})
}

// Pin asks the backend to pin content to IPFS
func (c *Client) Pin(ctx context.Context, req models.PinRequest, cb Callbacks[models.Pin]) {
	dispatch(c, cb, func() (models.Pin, error) {
		return sendJSON[models.Pin](ctx, c, Pins, http.MethodPost, "/api/ipfs/pins/", req)
	})
}

// Unpin removes an IPFS pin
func (c *Client) Unpin(ctx context.Context, pinID string, cb Callbacks[Empty]) {
	dispatch(c, cb, func() (Empty, error) {
		return discard(ctx, c, http.MethodDelete, "/api/ipfs/pins/"+url.PathEscape(pinID)+"/")
	})
}
