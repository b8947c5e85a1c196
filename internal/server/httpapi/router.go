package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"github.com/dmitrijs2005/docme/internal/logging"
)

// RouterOptions carries the knobs of NewRouter that come from configuration.
type RouterOptions struct {
	CORSOrigins  string
	RateLimitRPS float64
}

// NewRouter wires the handlers. Auth endpoints are rate limited per IP;
// everything under /folders, /documents, /images and /users needs a token.
// ctx bounds background work of the middleware.
func NewRouter(ctx context.Context, h *Handlers, auth Authenticator, l logging.Logger, opts RouterOptions) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(l))
	r.Use(middleware.Recoverer)

	r.Get("/ping", h.Ping)

	r.Group(func(r chi.Router) {
		r.Use(RateLimit(ctx, opts.RateLimitRPS, burstFor(opts.RateLimitRPS)))
		r.Post("/auth/register", h.Register)
		r.Post("/auth/login", h.Login)
	})

	r.Group(func(r chi.Router) {
		r.Use(JWTAuth(auth))
		r.Get("/users/me", h.Me)

		r.Route("/folders", func(r chi.Router) {
			r.Get("/changes", h.FolderChanges)
			r.Post("/", h.CreateFolder)
			r.Patch("/{id}", h.UpdateFolder)
			r.Delete("/{id}", h.DeleteFolder)
		})

		r.Route("/documents", func(r chi.Router) {
			r.Get("/changes", h.DocumentChanges)
			r.Post("/", h.CreateDocument)
			r.Patch("/{id}", h.UpdateDocument)
			r.Delete("/{id}", h.DeleteDocument)
		})

		r.Post("/images", h.CreateImageUpload)
	})

	return newCORS(opts.CORSOrigins).Handler(r)
}

func newCORS(origins string) *cors.Cors {
	var allowed []string
	for _, o := range strings.Split(origins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			allowed = append(allowed, o)
		}
	}

	return cors.New(cors.Options{
		AllowedOrigins:   allowed,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "Accept"},
		AllowCredentials: false,
	})
}

// burstFor allows twice the per-second rate in a burst, at least one.
func burstFor(rps float64) int {
	b := int(rps * 2)
	if b < 1 {
		b = 1
	}
	return b
}
