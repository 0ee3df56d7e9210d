package models

// Asset represents a digital file stored by the backend
type Asset struct {
	ID          string `json:"id"`
	TenantID    string `json:"tenantId"`
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
	SizeBytes   int64  `json:"sizeBytes"`
	StorageKey  string `json:"storageKey"`
	CreatedAt   string `json:"createdAt"`
	UploadedAt  string `json:"uploadedAt,omitempty"`
}

// ItemID returns the asset identifier
func (a Asset) ItemID() string { return a.ID }

// Pin represents an IPFS pin held for a tenant
type Pin struct {
	ID       string `json:"id"`
	TenantID string `json:"tenantId"`
	CID      string `json:"cid"`
	Name     string `json:"name"`
	Status   string `json:"status"`
	AssetID  string `json:"assetId,omitempty"`
	PinnedAt string `json:"pinnedAt"`
}

// ItemID returns the pin identifier
func (p Pin) ItemID() string { return p.ID }

// PinRequest represents a request to pin content to IPFS
type PinRequest struct {
	AssetID string `json:"assetId,omitempty"`
	CID     string `json:"cid,omitempty"`
	Name    string `json:"name"`
}

// Binary represents a file payload returned by a download endpoint
type Binary struct {
	Data        []byte
	Filename    string
	ContentType string
}
