package handlers_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satonic/satonic-admin/internal/api"
	"github.com/satonic/satonic-admin/internal/config"
	"github.com/satonic/satonic-admin/internal/handlers"
	"github.com/satonic/satonic-admin/internal/notify"
	"github.com/satonic/satonic-admin/internal/services"
	"github.com/satonic/satonic-admin/internal/store"
)

// fakeBackend records every request the console makes
type fakeBackend struct {
	mu       sync.Mutex
	calls    []string
	bodies   []map[string]any
	handlers map[string]http.HandlerFunc
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{handlers: map[string]http.HandlerFunc{}}
}

func (b *fakeBackend) on(method, path string, h http.HandlerFunc) {
	b.handlers[method+" "+path] = h
}

func (b *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	key := r.Method + " " + r.URL.Path

	b.mu.Lock()
	b.calls = append(b.calls, key)
	if r.Body != nil && r.Header.Get("Content-Type") == "application/json" {
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err == nil {
			b.bodies = append(b.bodies, body)
		}
	}
	h, ok := b.handlers[key]
	b.mu.Unlock()

	if !ok {
		http.NotFound(w, r)
		return
	}
	h(w, r)
}

func (b *fakeBackend) count(key string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, c := range b.calls {
		if c == key {
			n++
		}
	}
	return n
}

func respondJSON(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		io.WriteString(w, body)
	}
}

type env struct {
	router   http.Handler
	backend  *fakeBackend
	sessions *services.SessionService
	notifier *notify.Notifier
}

func newEnv(t *testing.T, backend *fakeBackend) *env {
	t.Helper()

	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)

	db, err := store.NewDatabase(config.DatabaseConfig{Driver: "sqlite3", Path: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	sessions := services.NewSessionService(store.NewSessionRepository(db), nil)
	client, err := api.NewClient(srv.URL,
		api.WithTokenSource(sessions),
		api.WithUnauthorizedHook(sessions.Expire),
	)
	require.NoError(t, err)

	notifier := notify.New(notify.WithScheduler(func(time.Duration, func()) {}))
	console, err := handlers.NewConsole(handlers.ConsoleOptions{
		Client:   client,
		Sessions: sessions,
		Drafts:   store.NewDraftRepository(db),
		Notifier: notifier,
		PageSize: 2,
	})
	require.NoError(t, err)

	hub := handlers.NewHub(nil)
	go hub.Run(notifier)
	t.Cleanup(hub.Stop)

	return &env{
		router:   handlers.NewRouter(console, hub, nil),
		backend:  backend,
		sessions: sessions,
		notifier: notifier,
	}
}

func (e *env) do(method, path string, form url.Values, cookie *http.Cookie) *httptest.ResponseRecorder {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, path, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *env) login(t *testing.T) *http.Cookie {
	t.Helper()
	rec := e.do(http.MethodPost, "/login", url.Values{"token": {"opaque-token"}}, nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	return cookies[0]
}

const collectionsPage = `{
	"results": [
		{"id": "c1", "tenant_id": "t1", "name": "Punks", "symbol": "PNK", "nfts_count": 3, "status": "published", "created_at": "2024-01-02T15:04:05Z"}
	],
	"has_next_page": false,
	"next_cursor": null
}`

func TestAdminRequiresSession(t *testing.T) {
	e := newEnv(t, newFakeBackend())

	rec := e.do(http.MethodGet, "/admin/tenants", nil, nil)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))

	rec = e.do(http.MethodGet, "/admin/tenants", nil, &http.Cookie{Name: "satonic_admin_session", Value: "stale"})
	assert.Equal(t, "/login?expired=1", rec.Header().Get("Location"))

	rec = e.do(http.MethodGet, "/login?expired=1", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Your session has expired")
}

func TestLoginRejectsEmptyToken(t *testing.T) {
	e := newEnv(t, newFakeBackend())

	rec := e.do(http.MethodPost, "/login", url.Values{"token": {" "}}, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "token is required")
}

func TestListPageShowsNormalizedItems(t *testing.T) {
	b := newFakeBackend()
	var query string
	b.on(http.MethodGet, "/api/collections/", func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.RawQuery
		respondJSON(http.StatusOK, collectionsPage)(w, r)
	})
	e := newEnv(t, b)
	cookie := e.login(t)

	rec := e.do(http.MethodGet, "/admin/tenants/t1/collections", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Equal(t, "tenant_id=t1&page_size=2", query)
	assert.Contains(t, body, "Punks")
	assert.Contains(t, body, "Jan 2, 2024, 3:04:05 PM")
	assert.Contains(t, body, "<td>3</td>")
	assert.Contains(t, body, "/admin/tenants/t1/collections/add/step-1")
	assert.NotContains(t, body, `rel="prev"`)
}

func TestEmptyListInvitesCreation(t *testing.T) {
	b := newFakeBackend()
	b.on(http.MethodGet, "/api/collections/", respondJSON(http.StatusOK, `{"results": [], "has_next_page": false}`))
	e := newEnv(t, b)
	cookie := e.login(t)

	rec := e.do(http.MethodGet, "/admin/tenants/t1/collections", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Create the first one")

	rec = e.do(http.MethodGet, "/admin/tenants/t1/collections?cursor=c2&stack=&stack=c1", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "No more items")
	assert.NotContains(t, rec.Body.String(), "Create the first one")
	assert.Contains(t, rec.Body.String(), `rel="prev"`)
}

func TestRemoveArchivesAndRefetches(t *testing.T) {
	b := newFakeBackend()
	b.on(http.MethodGet, "/api/collections/", respondJSON(http.StatusOK, collectionsPage))
	b.on(http.MethodPost, "/api/collections/c1/archive/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	e := newEnv(t, b)
	cookie := e.login(t)

	rec := e.do(http.MethodGet, "/admin/tenants/t1/collections/c1/remove", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Archive Collection <strong>Punks</strong>?")
	assert.Zero(t, b.count("POST /api/collections/c1/archive/"))

	listCalls := b.count("GET /api/collections/")
	rec = e.do(http.MethodPost, "/admin/tenants/t1/collections/c1/remove", url.Values{}, cookie)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, 1, b.count("POST /api/collections/c1/archive/"))
	assert.Equal(t, listCalls+2, b.count("GET /api/collections/"))
	banner, ok := e.notifier.Current()
	require.True(t, ok)
	assert.Equal(t, "Collection Punks archived", banner.Message)
	assert.Contains(t, rec.Body.String(), "Collection Punks archived")
}

func TestRemoveFailureShowsError(t *testing.T) {
	b := newFakeBackend()
	b.on(http.MethodGet, "/api/collections/", respondJSON(http.StatusOK, collectionsPage))
	b.on(http.MethodPost, "/api/collections/c1/archive/", respondJSON(http.StatusConflict, `{"detail": "collection has live auctions"}`))
	e := newEnv(t, b)
	cookie := e.login(t)

	rec := e.do(http.MethodPost, "/admin/tenants/t1/collections/c1/remove", url.Values{}, cookie)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "collection has live auctions")
	assert.Contains(t, rec.Body.String(), `data-scroll-top="1"`)
	assert.Equal(t, 1, b.count("GET /api/collections/"))
}

func TestUnauthorizedBackendEndsSession(t *testing.T) {
	for _, status := range []int{http.StatusUnauthorized, http.StatusForbidden} {
		t.Run(http.StatusText(status), func(t *testing.T) {
			b := newFakeBackend()
			b.on(http.MethodGet, "/api/tenants/", respondJSON(status, `{"detail": "token expired"}`))
			e := newEnv(t, b)
			cookie := e.login(t)

			rec := e.do(http.MethodGet, "/admin/tenants", nil, cookie)
			assert.Equal(t, http.StatusSeeOther, rec.Code)
			assert.Equal(t, "/login?expired=1", rec.Header().Get("Location"))

			_, err := e.sessions.Current(t.Context())
			assert.ErrorIs(t, err, services.ErrNoSession)

			rec = e.do(http.MethodGet, "/admin/tenants", nil, cookie)
			assert.Equal(t, "/login?expired=1", rec.Header().Get("Location"))
		})
	}
}

func TestListLoadFailureScrollsToSummary(t *testing.T) {
	b := newFakeBackend()
	b.on(http.MethodGet, "/api/collections/", respondJSON(http.StatusInternalServerError, `{"detail": "database unavailable"}`))
	e := newEnv(t, b)
	cookie := e.login(t)

	rec := e.do(http.MethodGet, "/admin/tenants/t1/collections", nil, cookie)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "database unavailable")
	assert.Contains(t, rec.Body.String(), `data-scroll-top="1"`)
}

func TestEmptyTenantsInviteCreation(t *testing.T) {
	b := newFakeBackend()
	b.on(http.MethodGet, "/api/tenants/", respondJSON(http.StatusOK, `{"results": [], "has_next_page": false}`))
	b.on(http.MethodPost, "/api/tenants/", respondJSON(http.StatusCreated, `{"id": "t9", "name": "Acme", "slug": "acme"}`))
	e := newEnv(t, b)
	cookie := e.login(t)

	rec := e.do(http.MethodGet, "/admin/tenants", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Create the first one")
	assert.Contains(t, rec.Body.String(), `href="/admin/tenants/add/step-1"`)

	rec = e.do(http.MethodGet, "/admin/tenants/add/step-1", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = e.do(http.MethodPost, "/admin/tenants/add/step-1", url.Values{"name": {"Acme"}, "slug": {"acme"}}, cookie)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/admin/tenants/add/step-2", rec.Header().Get("Location"))

	rec = e.do(http.MethodPost, "/admin/tenants/add/step-2", url.Values{"contactEmail": {""}}, cookie)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/admin/tenants/t9/collections", rec.Header().Get("Location"))

	require.Equal(t, 1, b.count("POST /api/tenants/"))
	require.Len(t, b.bodies, 1)
	assert.Equal(t, map[string]any{"name": "Acme", "slug": "acme"}, b.bodies[0])
}

func TestWizardCannotSkipSteps(t *testing.T) {
	b := newFakeBackend()
	b.on(http.MethodPost, "/api/collections/", respondJSON(http.StatusCreated, `{"id": "c9"}`))
	e := newEnv(t, b)
	cookie := e.login(t)
	base := "/admin/tenants/t1/collections/add"

	rec := e.do(http.MethodPost, base+"/step-3", url.Values{"royaltyBasisPoints": {"100"}}, cookie)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, base+"/step-1", rec.Header().Get("Location"))
	assert.Zero(t, b.count("POST /api/collections/"))

	rec = e.do(http.MethodGet, base+"/step-2", nil, cookie)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, base+"/step-1", rec.Header().Get("Location"))

	rec = e.do(http.MethodPost, base+"/step-1", url.Values{"name": {"Punks"}, "symbol": {"PNK"}}, cookie)
	require.Equal(t, http.StatusSeeOther, rec.Code)

	rec = e.do(http.MethodPost, base+"/step-3", url.Values{"royaltyBasisPoints": {"100"}}, cookie)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, base+"/step-2", rec.Header().Get("Location"))
	assert.Zero(t, b.count("POST /api/collections/"))
}

func TestWizardRejectsNonFiniteNumber(t *testing.T) {
	e := newEnv(t, newFakeBackend())
	cookie := e.login(t)
	base := "/admin/tenants/t1/collections/add"

	rec := e.do(http.MethodPost, base+"/step-1", url.Values{"name": {"Punks"}, "symbol": {"PNK"}}, cookie)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	rec = e.do(http.MethodPost, base+"/step-2", url.Values{"blockchain": {"bitcoin"}}, cookie)
	require.Equal(t, http.StatusSeeOther, rec.Code)

	rec = e.do(http.MethodPost, base+"/step-3", url.Values{"royaltyBasisPoints": {"Inf"}}, cookie)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid number")
}

func TestCollectionWizardSubmitsOnce(t *testing.T) {
	b := newFakeBackend()
	b.on(http.MethodPost, "/api/collections/", respondJSON(http.StatusCreated, `{"id": "c9", "tenant_id": "t1", "name": "Punks"}`))
	e := newEnv(t, b)
	cookie := e.login(t)
	base := "/admin/tenants/t1/collections/add"

	rec := e.do(http.MethodPost, base+"/step-1", url.Values{"name": {"Punks"}}, cookie)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "missing value")

	rec = e.do(http.MethodPost, base+"/step-1", url.Values{"name": {"Punks"}, "symbol": {"PNK"}}, cookie)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, base+"/step-2", rec.Header().Get("Location"))

	rec = e.do(http.MethodGet, base+"/step-1", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `value="PNK"`)

	rec = e.do(http.MethodPost, base+"/step-2", url.Values{"description": {"faces"}, "blockchain": {"bitcoin"}}, cookie)
	require.Equal(t, http.StatusSeeOther, rec.Code)

	rec = e.do(http.MethodPost, base+"/step-3", url.Values{"royaltyBasisPoints": {"250"}}, cookie)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/admin/collections/c9", rec.Header().Get("Location"))

	require.Equal(t, 1, b.count("POST /api/collections/"))
	require.Len(t, b.bodies, 1)
	assert.Equal(t, map[string]any{
		"name":                 "Punks",
		"symbol":               "PNK",
		"description":          "faces",
		"blockchain":           "bitcoin",
		"royalty_basis_points": float64(250),
		"tenant_id":            "t1",
	}, b.bodies[0])

	rec = e.do(http.MethodGet, base+"/step-1", nil, cookie)
	assert.Contains(t, rec.Body.String(), `name="name" type="text" value=""`)
}

func TestWizardCancelNeedsConfirmation(t *testing.T) {
	b := newFakeBackend()
	e := newEnv(t, b)
	cookie := e.login(t)
	base := "/admin/collection/c1/nfts/add"

	rec := e.do(http.MethodPost, base+"/step-1", url.Values{"name": {"Ape"}, "tokenId": {"7"}}, cookie)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	rec = e.do(http.MethodPost, base+"/step-2", url.Values{"description": {"an ape"}}, cookie)
	require.Equal(t, http.StatusSeeOther, rec.Code)

	rec = e.do(http.MethodPost, base+"/cancel", url.Values{}, cookie)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Discard this NFT draft?")

	rec = e.do(http.MethodGet, base+"/step-1", nil, cookie)
	assert.Contains(t, rec.Body.String(), `value="Ape"`)

	rec = e.do(http.MethodPost, base+"/cancel", url.Values{"confirm": {"yes"}}, cookie)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/admin/collections/c1/nfts", rec.Header().Get("Location"))

	rec = e.do(http.MethodGet, base+"/step-1", nil, cookie)
	assert.NotContains(t, rec.Body.String(), `value="Ape"`)
	assert.Zero(t, b.count("POST /api/nfts/"))
}

func TestWizardUnknownStep(t *testing.T) {
	e := newEnv(t, newFakeBackend())
	cookie := e.login(t)

	rec := e.do(http.MethodGet, "/admin/tenants/t1/collections/add/step-9", nil, cookie)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDownloadAssetPassesBinaryThrough(t *testing.T) {
	b := newFakeBackend()
	b.on(http.MethodGet, "/api/assets/a1/download/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write([]byte("png-bytes"))
	})
	b.on(http.MethodGet, "/api/assets/a2/download/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Disposition", `attachment; filename="cover.png"`)
		w.Write([]byte("png-bytes"))
	})
	e := newEnv(t, b)
	cookie := e.login(t)

	rec := e.do(http.MethodGet, "/admin/assets/a1/download", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="a1"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "png-bytes", rec.Body.String())

	rec = e.do(http.MethodGet, "/admin/assets/a2/download", nil, cookie)
	assert.Equal(t, `attachment; filename="cover.png"`, rec.Header().Get("Content-Disposition"))
}

func TestNFTDetailToleratesMissingMetadata(t *testing.T) {
	b := newFakeBackend()
	b.on(http.MethodGet, "/api/nfts/n1/", respondJSON(http.StatusOK, `{"id": "n1", "collection_id": "c1", "token_id": "7", "name": "Ape #7", "token_uri": "ipfs://x", "created_at": "2024-01-02T15:04:05Z"}`))
	b.on(http.MethodGet, "/api/nfts/n1/metadata/", respondJSON(http.StatusNotFound, `{"detail": "not found"}`))
	e := newEnv(t, b)
	cookie := e.login(t)

	rec := e.do(http.MethodGet, "/admin/nfts/n1", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Ape #7")
	assert.Contains(t, body, "ipfs://x")
	assert.Contains(t, body, "No metadata document.")
	assert.Contains(t, body, "Jan 2, 2024, 3:04:05 PM")
}

func TestWebSocketPushesBanners(t *testing.T) {
	e := newEnv(t, newFakeBackend())
	cookie := e.login(t)

	srv := httptest.NewServer(e.router)
	t.Cleanup(srv.Close)

	header := http.Header{}
	header.Add("Cookie", cookie.String())
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", header)
	require.NoError(t, err)
	defer conn.Close()

	var msg handlers.WebSocketMessage
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "banner", msg.Type)
	require.NotNil(t, msg.Payload)
	assert.Equal(t, "Signed in", msg.Payload.Message)

	published := e.notifier.Error("Backend unavailable")

	require.NoError(t, conn.ReadJSON(&msg))
	require.NotNil(t, msg.Payload)
	assert.Equal(t, published.ID, msg.Payload.ID)
	assert.Equal(t, notify.StatusError, msg.Payload.Status)
}

func TestWebSocketRequiresSession(t *testing.T) {
	e := newEnv(t, newFakeBackend())
	srv := httptest.NewServer(e.router)
	t.Cleanup(srv.Close)

	_, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
}
