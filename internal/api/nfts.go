package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/satonic/satonic-admin/internal/models"
)

func nftPath(nftID string) string {
	return "/api/nfts/" + url.PathEscape(nftID) + "/"
}

// ListNFTs fetches one page of NFTs, usually scoped by collectionId
func (c *Client) ListNFTs(ctx context.Context, filter Query, cb Callbacks[models.Page[models.NFT]]) {
	dispatch(c, cb, func() (models.Page[models.NFT], error) {
		return listJSON[models.Page[models.NFT]](ctx, c, NFTs, "/api/nfts/", filter)
	})
}

// GetNFT fetches a single NFT
func (c *Client) GetNFT(ctx context.Context, nftID string, cb Callbacks[models.NFT]) {
	dispatch(c, cb, func() (models.NFT, error) {
		return getJSON[models.NFT](ctx, c, NFTs, nftPath(nftID), nil)
	})
}

// CreateNFT creates an NFT from body
func (c *Client) CreateNFT(ctx context.Context, body any, cb Callbacks[models.NFT]) {
	dispatch(c, cb, func() (models.NFT, error) {
		return sendJSON[models.NFT](ctx, c, NFTs, http.MethodPost, "/api/nfts/", body)
	})
}

// UpdateNFT applies a partial update to an NFT
func (c *Client) UpdateNFT(ctx context.Context, nftID string, body any, cb Callbacks[models.NFT]) {
	dispatch(c, cb, func() (models.NFT, error) {
		return sendJSON[models.NFT](ctx, c, NFTs, http.MethodPatch, nftPath(nftID), body)
	})
}

// DeleteNFT permanently removes an NFT
func (c *Client) DeleteNFT(ctx context.Context, nftID string, cb Callbacks[Empty]) {
	dispatch(c, cb, func() (Empty, error) {
		return discard(ctx, c, http.MethodDelete, nftPath(nftID))
	})
}

// GetNFTMetadata fetches the metadata document of an NFT
func (c *Client) GetNFTMetadata(ctx context.Context, nftID string, cb Callbacks[models.NFTMetadata]) {
	dispatch(c, cb, func() (models.NFTMetadata, error) {
		return getJSON[models.NFTMetadata](ctx, c, Metadata, nftPath(nftID)+"metadata/", nil)
	})
}

// UpdateNFTMetadata replaces the metadata document of an NFT
func (c *Client) UpdateNFTMetadata(ctx context.Context, nftID string, body any, cb Callbacks[models.NFTMetadata]) {
	dispatch(c, cb, func() (models.NFTMetadata, error) {
		return sendJSON[models.NFTMetadata](ctx, c, Metadata, http.MethodPut, nftPath(nftID)+"metadata/", body)
	})
}

// DownloadNFTMetadata fetches the metadata document as a file
func (c *Client) DownloadNFTMetadata(ctx context.Context, nftID string, cb Callbacks[models.Binary]) {
	dispatch(c, cb, func() (models.Binary, error) {
		return download(ctx, c, nftPath(nftID)+"metadata/download/")
	})
}
