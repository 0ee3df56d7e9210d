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

func tenantsSpec() listSpec[models.Tenant] {
	return listSpec[models.Tenant]{
		Title:     "Tenants",
		Noun:      "Tenant",
		ItemParam: "tenantID",
		Kind:      listing.ActionArchive,
		Columns: []column[models.Tenant]{
			{"Name", func(t models.Tenant) string { return t.Name }},
			{"Slug", func(t models.Tenant) string { return t.Slug }},
			{"Status", func(t models.Tenant) string { return string(t.Status) }},
			{"Created", func(t models.Tenant) string { return t.CreatedAt }},
		},
		List:      func(cl *api.Client) listing.Lister[models.Tenant] { return cl.ListTenants },
		Act:       func(cl *api.Client) listing.Action { return cl.ArchiveTenant },
		Path:      func(string) string { return "/admin/tenants" },
		CreateURL: func(string) string { return "/admin/tenants/add/step-1" },
		ItemURL: func(t models.Tenant) string {
			return "/admin/tenants/" + url.PathEscape(t.ID) + "/collections"
		},
		Label: func(t models.Tenant) string { return t.Name },
	}
}

func collectionsSpec() listSpec[models.Collection] {
	return listSpec[models.Collection]{
		Title: "Collections",
		Noun:  "Collection",
		Scope: "tenantId",
		Param: "tenantID",
		Kind:  listing.ActionArchive,
		Columns: []column[models.Collection]{
			{"Name", func(c models.Collection) string { return c.Name }},
			{"Symbol", func(c models.Collection) string { return c.Symbol }},
			{"NFTs", func(c models.Collection) string { return strconv.Itoa(c.NFTCount) }},
			{"Status", func(c models.Collection) string { return string(c.Status) }},
			{"Created", func(c models.Collection) string { return c.CreatedAt }},
		},
		List: func(cl *api.Client) listing.Lister[models.Collection] { return cl.ListCollections },
		Act:  func(cl *api.Client) listing.Action { return cl.ArchiveCollection },
		Path: func(tenantID string) string {
			return "/admin/tenants/" + url.PathEscape(tenantID) + "/collections"
		},
		CreateURL: func(tenantID string) string {
			return "/admin/tenants/" + url.PathEscape(tenantID) + "/collections/add/step-1"
		},
		ItemURL: func(c models.Collection) string { return "/admin/collections/" + url.PathEscape(c.ID) },
		Label:   func(c models.Collection) string { return c.Name },
	}
}

type collectionView struct {
	Collection models.Collection
	Created    string
	Updated    string
	NFTsURL    string
	AddNFTURL  string
	ListURL    string
}

// GetCollection handles the collection detail page
func (c *Console) GetCollection() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Get collection ID from URL
		collectionID := chi.URLParam(r, "collectionID")
		if collectionID == "" {
			http.Error(w, "Collection ID is required", http.StatusBadRequest)
			return
		}

		collection, err := api.Await(func(cb api.Callbacks[models.Collection]) {
			c.client.GetCollection(r.Context(), collectionID, cb)
		})
		if err != nil {
			c.fail(w, r, err)
			return
		}

		escaped := url.PathEscape(collection.ID)
		c.render(w, r, http.StatusOK, "collection", page{
			Title: collection.Name,
			Data: collectionView{
				Collection: collection,
				Created:    c.displayTime(collection.CreatedAt),
				Updated:    c.displayTime(collection.UpdatedAt),
				NFTsURL:    "/admin/collections/" + escaped + "/nfts",
				AddNFTURL:  "/admin/collection/" + escaped + "/nfts/add/step-1",
				ListURL:    "/admin/tenants/" + url.PathEscape(collection.TenantID) + "/collections",
			},
		})
	}
}
