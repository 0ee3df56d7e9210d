package handlers

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/satonic/satonic-admin/internal/api"
	"github.com/satonic/satonic-admin/internal/listing"
	"github.com/satonic/satonic-admin/internal/models"
)

func tenantPath(tenantID, rest string) string {
	return "/admin/tenants/" + url.PathEscape(tenantID) + "/" + rest
}

func assetsSpec() listSpec[models.Asset] {
	return listSpec[models.Asset]{
		Title: "Assets",
		Noun:  "Asset",
		Scope: "tenantId",
		Param: "tenantID",
		Kind:  listing.ActionDelete,
		Columns: []column[models.Asset]{
			{"File", func(a models.Asset) string { return a.Filename }},
			{"Type", func(a models.Asset) string { return a.ContentType }},
			{"Size", func(a models.Asset) string { return strconv.FormatInt(a.SizeBytes, 10) + " B" }},
			{"Uploaded", func(a models.Asset) string { return a.UploadedAt }},
		},
		List: func(cl *api.Client) listing.Lister[models.Asset] { return cl.ListAssets },
		Act:  func(cl *api.Client) listing.Action { return cl.DeleteAsset },
		Path: func(tenantID string) string { return tenantPath(tenantID, "assets") },
		ItemURL: func(a models.Asset) string {
			return "/admin/assets/" + url.PathEscape(a.ID) + "/download"
		},
		Label: func(a models.Asset) string { return a.Filename },
	}
}

func pinsSpec() listSpec[models.Pin] {
	return listSpec[models.Pin]{
		Title: "IPFS pins",
		Noun:  "Pin",
		Scope: "tenantId",
		Param: "tenantID",
		Kind:  listing.ActionDelete,
		Columns: []column[models.Pin]{
			{"Name", func(p models.Pin) string { return p.Name }},
			{"CID", func(p models.Pin) string { return p.CID }},
			{"Status", func(p models.Pin) string { return p.Status }},
			{"Pinned", func(p models.Pin) string { return p.PinnedAt }},
		},
		List: func(cl *api.Client) listing.Lister[models.Pin] { return cl.ListPins },
		Act:  func(cl *api.Client) listing.Action { return cl.Unpin },
		Path: func(tenantID string) string { return tenantPath(tenantID, "pins") },
		Label: func(p models.Pin) string {
			if p.Name != "" {
				return p.Name
			}
			return p.CID
		},
	}
}

// DownloadAsset streams an asset file to the browser
func (c *Console) DownloadAsset() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		assetID := chi.URLParam(r, "assetID")
		binary, err := api.Await(func(cb api.Callbacks[models.Binary]) {
			c.client.DownloadAsset(r.Context(), assetID, cb)
		})
		if err != nil {
			c.fail(w, r, err)
			return
		}
		writeBinary(w, binary, assetID)
	}
}
