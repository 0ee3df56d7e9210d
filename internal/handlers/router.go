package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/satonic/satonic-admin/internal/logging"
)

func newCORS(origins []string) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{
			http.MethodHead,
			http.MethodGet,
			http.MethodPost,
		},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	})
}

// requestLogger logs every request with its status and duration
func requestLogger(logger logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Debug("request served",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration", time.Since(start).String(),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}

// NewRouter wires every console route
func NewRouter(c *Console, hub *Hub, allowedOrigins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(c.logger))
	r.Use(middleware.Recoverer)
	if len(allowedOrigins) > 0 {
		r.Use(newCORS(allowedOrigins))
	}

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/admin/tenants", http.StatusFound)
	})
	r.Get("/login", c.LoginPage())
	r.Post("/login", c.Login())
	r.Post("/logout", c.Logout())

	r.Group(func(r chi.Router) {
		r.Use(c.AuthMiddleware())

		r.Get("/ws", ServeWs(hub, c.notifier))

		r.Route("/admin", func(r chi.Router) {
			mountList(r, c, "/tenants", tenantsSpec())
			mountList(r, c, "/tenants/{tenantID}/collections", collectionsSpec())
			mountList(r, c, "/tenants/{tenantID}/assets", assetsSpec())
			mountList(r, c, "/tenants/{tenantID}/pins", pinsSpec())
			mountList(r, c, "/collections/{collectionID}/nfts", nftsSpec())

			r.Get("/collections/{collectionID}", c.GetCollection())
			r.Get("/nfts/{nftID}", c.GetNFT())
			r.Get("/nfts/{nftID}/metadata/download", c.DownloadNFTMetadata())
			r.Get("/assets/{assetID}/download", c.DownloadAsset())

			mountWizard(r, c, "/tenants/add", tenantWizard())
			mountWizard(r, c, "/tenants/{tenantID}/collections/add", collectionWizard())
			mountWizard(r, c, "/collection/{collectionID}/nfts/add", nftWizard())
		})
	})

	return r
}
