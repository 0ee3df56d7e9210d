package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/satonic/satonic-admin/internal/models"
)

// ListTenants fetches one page of tenants
func (c *Client) ListTenants(ctx context.Context, filter Query, cb Callbacks[models.Page[models.Tenant]]) {
	dispatch(c, cb, func() (models.Page[models.Tenant], error) {
		return listJSON[models.Page[models.Tenant]](ctx, c, Tenants, "/api/tenants/", filter)
	})
}

// GetTenant fetches a single tenant
func (c *Client) GetTenant(ctx context.Context, tenantID string, cb Callbacks[models.Tenant]) {
	dispatch(c, cb, func() (models.Tenant, error) {
		return getJSON[models.Tenant](ctx, c, Tenants, "/api/tenants/"+url.PathEscape(tenantID)+"/", nil)
	})
}

// CreateTenant creates a tenant
func (c *Client) CreateTenant(ctx context.Context, body models.CreateTenantRequest, cb Callbacks[models.Tenant]) {
	dispatch(c, cb, func() (models.Tenant, error) {
		return sendJSON[models.Tenant](ctx, c, Tenants, http.MethodPost, "/api/tenants/", body)
	})
}

// UpdateTenant applies a partial update to a tenant
func (c *Client) UpdateTenant(ctx context.Context, tenantID string, body models.UpdateTenantRequest, cb Callbacks[models.Tenant]) {
	dispatch(c, cb, func() (models.Tenant, error) {
		return sendJSON[models.Tenant](ctx, c, Tenants, http.MethodPatch, "/api/tenants/"+url.PathEscape(tenantID)+"/", body)
	})
}

// ArchiveTenant soft-deletes a tenant
func (c *Client) ArchiveTenant(ctx context.Context, tenantID string, cb Callbacks[Empty]) {
	dispatch(c, cb, func() (Empty, error) {
		return discard(ctx, c, http.MethodPost, "/api/tenants/"+url.PathEscape(tenantID)+"/archive/")
	})
}
