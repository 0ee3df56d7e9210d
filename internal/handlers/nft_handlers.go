package handlers

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/satonic/satonic-admin/internal/api"
	"github.com/satonic/satonic-admin/internal/listing"
	"github.com/satonic/satonic-admin/internal/models"
)

func nftsSpec() listSpec[models.NFT] {
	return listSpec[models.NFT]{
		Title: "NFTs",
		Noun:  "NFT",
		Scope: "collectionId",
		Param: "collectionID",
		Kind:  listing.ActionDelete,
		Columns: []column[models.NFT]{
			{"Name", func(n models.NFT) string { return n.Name }},
			{"Token", func(n models.NFT) string { return n.TokenID }},
			{"Inscription", func(n models.NFT) string { return n.InscriptionID }},
			{"Minted", func(n models.NFT) string { return n.MintedAt }},
			{"Created", func(n models.NFT) string { return n.CreatedAt }},
		},
		List: func(cl *api.Client) listing.Lister[models.NFT] { return cl.ListNFTs },
		Act:  func(cl *api.Client) listing.Action { return cl.DeleteNFT },
		Path: func(collectionID string) string {
			return "/admin/collections/" + url.PathEscape(collectionID) + "/nfts"
		},
		CreateURL: func(collectionID string) string {
			return "/admin/collection/" + url.PathEscape(collectionID) + "/nfts/add/step-1"
		},
		ItemURL: func(n models.NFT) string { return "/admin/nfts/" + url.PathEscape(n.ID) },
		Label: func(n models.NFT) string {
			if n.Name != "" {
				return n.Name
			}
			return "#" + n.TokenID
		},
	}
}

type nftView struct {
	NFT         models.NFT
	Metadata    *models.NFTMetadata
	Created     string
	Updated     string
	Minted      string
	ListURL     string
	DownloadURL string
}

// GetNFT handles the NFT detail page
func (c *Console) GetNFT() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Get NFT ID from URL
		nftID := chi.URLParam(r, "nftID")
		if nftID == "" {
			http.Error(w, "NFT ID is required", http.StatusBadRequest)
			return
		}

		nft, err := api.Await(func(cb api.Callbacks[models.NFT]) {
			c.client.GetNFT(r.Context(), nftID, cb)
		})
		if err != nil {
			c.fail(w, r, err)
			return
		}

		view := nftView{
			NFT:         nft,
			Created:     c.displayTime(nft.CreatedAt),
			Updated:     c.displayTime(nft.UpdatedAt),
			Minted:      c.displayTime(nft.MintedAt),
			ListURL:     "/admin/collections/" + url.PathEscape(nft.CollectionID) + "/nfts",
			DownloadURL: "/admin/nfts/" + url.PathEscape(nft.ID) + "/metadata/download",
		}

		// Metadata is optional; a missing document is not an error
		metadata, err := api.Await(func(cb api.Callbacks[models.NFTMetadata]) {
			c.client.GetNFTMetadata(r.Context(), nftID, cb)
		})
		var apiErr *api.Error
		switch {
		case err == nil:
			view.Metadata = &metadata
		case errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound:
		default:
			c.fail(w, r, err)
			return
		}

		title := nft.Name
		if title == "" {
			title = "NFT #" + nft.TokenID
		}
		c.render(w, r, http.StatusOK, "nft", page{Title: title, Data: view})
	}
}

// DownloadNFTMetadata streams the metadata document of an NFT
func (c *Console) DownloadNFTMetadata() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		nftID := chi.URLParam(r, "nftID")
		binary, err := api.Await(func(cb api.Callbacks[models.Binary]) {
			c.client.DownloadNFTMetadata(r.Context(), nftID, cb)
		})
		if err != nil {
			c.fail(w, r, err)
			return
		}
		writeBinary(w, binary, nftID+"-metadata.json")
	}
}

// writeBinary passes a downloaded file through to the browser
func writeBinary(w http.ResponseWriter, binary models.Binary, fallback string) {
	filename := binary.Filename
	if filename == "" {
		filename = fallback
	}
	contentType := binary.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(binary.Data)))
	w.WriteHeader(http.StatusOK)
	w.Write(binary.Data)
}
