package models

// TenantStatus represents the lifecycle state of a tenant
type TenantStatus string

const (
	TenantStatusActive   TenantStatus = "active"
	TenantStatusArchived TenantStatus = "archived"
)

// Tenant represents an organisation that owns collections and assets
type Tenant struct {
	ID           string       `json:"id"`
	UUID         string       `json:"uuid"`
	Name         string       `json:"name"`
	Slug         string       `json:"slug"`
	ContactEmail string       `json:"contactEmail"`
	Status       TenantStatus `json:"status"`
	CreatedAt    string       `json:"createdAt"`
	UpdatedAt    string       `json:"updatedAt"`
}

// ItemID returns the tenant identifier
func (t Tenant) ItemID() string { return t.ID }

// CreateTenantRequest represents a request to create a tenant
type CreateTenantRequest struct {
	Name         string `json:"name"`
	Slug         string `json:"slug"`
	ContactEmail string `json:"contactEmail,omitempty"`
}

// UpdateTenantRequest represents a request to update a tenant
type UpdateTenantRequest struct {
	Name         *string `json:"name,omitempty"`
	ContactEmail *string `json:"contactEmail,omitempty"`
}
