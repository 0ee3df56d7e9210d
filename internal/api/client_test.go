package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satonic/satonic-admin/internal/api"
	"github.com/satonic/satonic-admin/internal/models"
)

// outcome records which callbacks fired
type outcome[T any] struct {
	value        T
	err          *api.Error
	successes    int
	errors       int
	done         int
	unauthorized int
}

func (o *outcome[T]) callbacks() api.Callbacks[T] {
	return api.Callbacks[T]{
		OnSuccess:      func(v T) { o.value = v; o.successes++ },
		OnError:        func(e *api.Error) { o.err = e; o.errors++ },
		OnDone:         func() { o.done++ },
		OnUnauthorized: func() { o.unauthorized++ },
	}
}

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...api.Option) *api.Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	opts = append([]api.Option{api.WithTokenSource(api.StaticToken("tok"))}, opts...)
	client, err := api.NewClient(server.URL, opts...)
	require.NoError(t, err)
	return client
}

func TestListCollectionsNormalizesResponse(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/collections/", r.URL.Path)
		assert.Equal(t, "tenant_id=t-1&page_size=2&cursor=c-0", r.URL.RawQuery)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get("X-Request-Id"))

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{
			"results": [
				{"id": "c-1", "tenant_id": "t-1", "name": "Genesis", "nfts_count": 12,
				 "royalty_basis_points": 250, "created_at": "2024-01-02T15:04:05Z", "updated_at": "2024-03-04T05:06:07Z"},
				{"id": "c-2", "tenant_id": "t-1", "name": "Second", "nfts_count": 0,
				 "created_at": "2024-02-01T00:00:00Z", "updated_at": "2024-02-01T00:00:00Z"}
			],
			"has_next_page": true,
			"next_cursor": "c-2"
		}`)
	})

	var got outcome[models.Page[models.Collection]]
	client.ListCollections(context.Background(), api.NewQuery("tenantId", "t-1", "pageSize", 2, "cursor", "c-0"), got.callbacks())

	require.Equal(t, 0, got.errors, "unexpected error: %v", got.err)
	assert.Equal(t, 1, got.successes)
	assert.Equal(t, 1, got.done)

	page := got.value
	assert.True(t, page.HasNextPage)
	assert.Equal(t, "c-2", page.NextCursor)
	require.Len(t, page.Results, 2)
	assert.Equal(t, "t-1", page.Results[0].TenantID)
	assert.Equal(t, 12, page.Results[0].NFTCount)
	assert.Equal(t, 250, page.Results[0].RoyaltyBasisPoints)
	assert.Equal(t, "Jan 2, 2024, 3:04:05 PM", page.Results[0].CreatedAt)
	assert.Equal(t, "Mar 4, 2024, 5:06:07 AM", page.Results[0].UpdatedAt)
	for _, item := range page.Results {
		assert.NotContains(t, item.CreatedAt, "T")
	}
}

func TestGetCollectionKeepsRawTimestamps(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/collections/c-1/", r.URL.Path)
		io.WriteString(w, `{"id": "c-1", "created_at": "2024-01-02T15:04:05Z"}`)
	})

	collection, err := api.Await(func(cb api.Callbacks[models.Collection]) {
		client.GetCollection(context.Background(), "c-1", cb)
	})

	require.NoError(t, err)
	assert.Equal(t, "2024-01-02T15:04:05Z", collection.CreatedAt)
}

func TestCreateSendsBackendKeys(t *testing.T) {
	var received map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusCreated)
		io.WriteString(w, `{"id": "nft-9", "collection_id": "c-1", "token_uri": "ipfs://x"}`)
	})

	var got outcome[models.NFT]
	client.CreateNFT(context.Background(), map[string]any{
		"collectionId": "c-1",
		"name":         "One",
		"tokenURI":     "ipfs://x",
		"attributes":   []any{map[string]any{"traitType": "eyes"}},
	}, got.callbacks())

	require.Equal(t, 1, got.successes)
	assert.Equal(t, "nft-9", got.value.ID)
	assert.Equal(t, "ipfs://x", got.value.TokenURI)

	assert.Equal(t, "c-1", received["collection_id"])
	assert.Equal(t, "ipfs://x", received["token_uri"])
	assert.Equal(t, "eyes", received["attributes"].([]any)[0].(map[string]any)["trait_type"])
	assert.NotContains(t, received, "collectionId")
}

func TestPinReversesRenames(t *testing.T) {
	var received map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		io.WriteString(w, `{"id": "p-1", "ipfs_hash": "bafy", "name": "logo", "pinned_at": "2024-01-02T15:04:05Z"}`)
	})

	pin, err := api.Await(func(cb api.Callbacks[models.Pin]) {
		client.Pin(context.Background(), models.PinRequest{CID: "bafy", Name: "logo"}, cb)
	})

	require.NoError(t, err)
	assert.Equal(t, "bafy", received["ipfs_hash"])
	assert.Equal(t, "bafy", pin.CID)
}

func TestStructuredErrorIsNormalized(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, `{"detail": "Invalid input", "royalty_basis_points": ["Ensure this value is less than 10000."]}`)
	})

	var got outcome[models.Collection]
	client.CreateCollection(context.Background(), map[string]any{"name": "x"}, got.callbacks())

	assert.Equal(t, 0, got.successes)
	assert.Equal(t, 1, got.errors)
	assert.Equal(t, 1, got.done)
	assert.Equal(t, 0, got.unauthorized)
	require.NotNil(t, got.err)
	assert.Equal(t, http.StatusBadRequest, got.err.Status)
	assert.Equal(t, "Invalid input", got.err.Message)
	assert.Contains(t, got.err.Fields, "royaltyBasisPoints")
	assert.Equal(t, "Ensure this value is less than 10000.", got.err.FieldErrors()["royaltyBasisPoints"])
}

func TestUnstructuredErrorGetsStatusMessage(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		io.WriteString(w, "<html>bad gateway</html>")
	})

	var got outcome[api.Empty]
	client.DeleteNFT(context.Background(), "n-1", got.callbacks())

	require.NotNil(t, got.err)
	assert.Equal(t, "request failed with status code 502", got.err.Message)
	assert.Equal(t, got.err.Message, got.err.Fields["message"])
	assert.Equal(t, 1, got.done)
}

func TestUnauthorizedFiresBothCallbacks(t *testing.T) {
	for _, status := range []int{http.StatusUnauthorized, http.StatusForbidden} {
		t.Run(http.StatusText(status), func(t *testing.T) {
			hookCalls := 0
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(status)
				io.WriteString(w, `{"detail": "Token expired"}`)
			}, api.WithUnauthorizedHook(func() { hookCalls++ }))

			var got outcome[models.Page[models.Tenant]]
			client.ListTenants(context.Background(), nil, got.callbacks())

			assert.Equal(t, 1, got.unauthorized)
			assert.Equal(t, 1, got.errors)
			assert.Equal(t, 1, got.done)
			assert.Equal(t, 1, hookCalls)
			assert.True(t, got.err.Unauthorized())
			assert.Equal(t, status, got.err.Status)
			assert.Equal(t, "Token expired", got.err.Message)
		})
	}
}

func TestOtherClientErrorsKeepSession(t *testing.T) {
	hookCalls := 0
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		io.WriteString(w, `{"detail": "not found"}`)
	}, api.WithUnauthorizedHook(func() { hookCalls++ }))

	var got outcome[models.Tenant]
	client.GetTenant(context.Background(), "t-404", got.callbacks())

	assert.Equal(t, 1, got.errors)
	assert.Zero(t, got.unauthorized)
	assert.Zero(t, hookCalls)
	assert.False(t, got.err.Unauthorized())
}

func TestMissingSessionSkipsNetwork(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	client, err := api.NewClient(server.URL, api.WithTokenSource(api.TokenSourceFunc(func(context.Context) (string, error) {
		return "", errors.New("no session")
	})))
	require.NoError(t, err)

	var got outcome[models.Tenant]
	client.GetTenant(context.Background(), "t-1", got.callbacks())

	assert.False(t, called)
	assert.Equal(t, 1, got.unauthorized)
	assert.Equal(t, http.StatusUnauthorized, got.err.Status)
}

type failingDoer struct{ err error }

func (d failingDoer) Do(*http.Request) (*http.Response, error) { return nil, d.err }

func TestTransportErrorMessage(t *testing.T) {
	client, err := api.NewClient("http://backend.invalid", api.WithHTTPClient(failingDoer{err: errors.New("dial tcp: refused")}))
	require.NoError(t, err)

	var got outcome[models.Asset]
	client.GetAsset(context.Background(), "a-1", got.callbacks())

	require.NotNil(t, got.err)
	assert.Equal(t, "dial tcp: refused", got.err.Message)
	assert.Equal(t, 0, got.err.Status)
	assert.Equal(t, 1, got.done)
}

type blankError struct{}

func (blankError) Error() string { return "" }

func TestTransportErrorWithoutMessage(t *testing.T) {
	client, err := api.NewClient("http://backend.invalid", api.WithHTTPClient(failingDoer{err: blankError{}}))
	require.NoError(t, err)

	_, callErr := api.Await(func(cb api.Callbacks[models.Asset]) {
		client.GetAsset(context.Background(), "a-1", cb)
	})

	var apiErr *api.Error
	require.ErrorAs(t, callErr, &apiErr)
	assert.Equal(t, "An unknown error occurred", apiErr.Message)
}

func TestOnDoneFiresWhenSuccessPanics(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"id": "t-1"}`)
	})

	done := 0
	assert.Panics(t, func() {
		client.GetTenant(context.Background(), "t-1", api.Callbacks[models.Tenant]{
			OnSuccess: func(models.Tenant) { panic("render failed") },
			OnDone:    func() { done++ },
		})
	})
	assert.Equal(t, 1, done)
}

func TestDownloadAsset(t *testing.T) {
	tests := []struct {
		name        string
		disposition string
		filename    string
	}{
		{name: "with disposition", disposition: `attachment; filename="art.png"`, filename: "art.png"},
		{name: "without disposition", disposition: "", filename: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/api/assets/a-1/download/", r.URL.Path)
				if tt.disposition != "" {
					w.Header().Set("Content-Disposition", tt.disposition)
				}
				w.Header().Set("Content-Type", "image/png")
				w.Write([]byte{0x89, 'P', 'N', 'G'})
			})

			var got outcome[models.Binary]
			client.DownloadAsset(context.Background(), "a-1", got.callbacks())

			require.Equal(t, 1, got.successes)
			assert.Equal(t, tt.filename, got.value.Filename)
			assert.Equal(t, "image/png", got.value.ContentType)
			assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, got.value.Data)
		})
	}
}

func TestUploadAssetSendsMultipart(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "t-1", r.FormValue("tenant_id"))
		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		content, _ := io.ReadAll(file)
		assert.Equal(t, "hello", string(content))
		assert.Equal(t, "hello.txt", header.Filename)

		io.WriteString(w, `{"id": "a-1", "filename": "hello.txt", "s3_key": "tenants/t-1/hello.txt"}`)
	})

	asset, err := api.Await(func(cb api.Callbacks[models.Asset]) {
		client.UploadAsset(context.Background(), "t-1", "hello.txt", strings.NewReader("hello"), cb)
	})

	require.NoError(t, err)
	assert.Equal(t, "tenants/t-1/hello.txt", asset.StorageKey)
}

func TestNewClientRejectsRelativeURL(t *testing.T) {
	_, err := api.NewClient("/api")
	require.Error(t, err)
}

func TestCreateTenantSendsTypedRequest(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/tenants/", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, map[string]any{"name": "Acme", "slug": "acme", "contact_email": "ops@acme.test"}, body)

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"id": "t-9", "name": "Acme", "slug": "acme", "status": "active"}`)
	})

	tenant, err := api.Await(func(cb api.Callbacks[models.Tenant]) {
		client.CreateTenant(context.Background(), models.CreateTenantRequest{
			Name:         "Acme",
			Slug:         "acme",
			ContactEmail: "ops@acme.test",
		}, cb)
	})
	require.NoError(t, err)
	assert.Equal(t, "t-9", tenant.ID)
	assert.Equal(t, models.TenantStatusActive, tenant.Status)
}

func TestUpdateTenantOmitsUnsetFields(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/api/tenants/t-9/", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, map[string]any{"name": "Acme Inc"}, body)

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"id": "t-9", "name": "Acme Inc"}`)
	})

	name := "Acme Inc"
	tenant, err := api.Await(func(cb api.Callbacks[models.Tenant]) {
		client.UpdateTenant(context.Background(), "t-9", models.UpdateTenantRequest{Name: &name}, cb)
	})
	require.NoError(t, err)
	assert.Equal(t, "Acme Inc", tenant.Name)
}
