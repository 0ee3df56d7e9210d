package models

// CollectionStatus represents the status of a collection
type CollectionStatus string

const (
	CollectionStatusDraft     CollectionStatus = "draft"
	CollectionStatusPublished CollectionStatus = "published"
	CollectionStatusArchived  CollectionStatus = "archived"
)

// Collection represents an NFT collection owned by a tenant
type Collection struct {
	ID                 string           `json:"id"`
	TenantID           string           `json:"tenantId"`
	Name               string           `json:"name"`
	Symbol             string           `json:"symbol"`
	Description        string           `json:"description"`
	Blockchain         string           `json:"blockchain"`
	ContractAddress    string           `json:"contractAddress,omitempty"`
	RoyaltyBasisPoints int              `json:"royaltyBasisPoints"`
	ImageAssetID       string           `json:"imageAssetId,omitempty"`
	NFTCount           int              `json:"nftCount"`
	Status             CollectionStatus `json:"status"`
	CreatedAt          string           `json:"createdAt"`
	UpdatedAt          string           `json:"updatedAt"`
}

// ItemID returns the collection identifier
func (c Collection) ItemID() string { return c.ID }
