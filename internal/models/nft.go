package models

import (
	"encoding/json"
)

// NFT represents a single token inside a collection
type NFT struct {
	ID            string          `json:"id"`
	CollectionID  string          `json:"collectionId"`
	TokenID       string          `json:"tokenId"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	AssetID       string          `json:"assetId,omitempty"`
	TokenURI      string          `json:"tokenURI,omitempty"`
	InscriptionID string          `json:"inscriptionId,omitempty"`
	Attributes    json.RawMessage `json:"attributes,omitempty"`
	CreatedAt     string          `json:"createdAt"`
	UpdatedAt     string          `json:"updatedAt"`
	MintedAt      string          `json:"mintedAt,omitempty"`
}

// ItemID returns the NFT identifier
func (n NFT) ItemID() string { return n.ID }

// NFTMetadata represents the off-chain metadata document of an NFT
type NFTMetadata struct {
	NFTID       string         `json:"nftId"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	ImageURL    string         `json:"imageURL"`
	ExternalURL string         `json:"externalURL,omitempty"`
	Attributes  []NFTAttribute `json:"attributes,omitempty"`
}

// NFTAttribute represents one trait of an NFT
type NFTAttribute struct {
	TraitType string `json:"traitType"`
	Value     any    `json:"value"`
}
