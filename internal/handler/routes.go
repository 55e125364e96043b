package handler

import (
	"net/http"
	"strings"

	"github.com/msomdec/catalog-admin/internal/domain"
	"github.com/msomdec/catalog-admin/internal/service"
)

// Services are the application services the HTTP layer exposes.
type Services struct {
	Auth       *service.AuthService
	Categories *service.CategoryService
	Catalog    *service.CatalogService
	Secrets    *service.SecretService
	Rewriter   domain.Rewriter
}

// Options configures routing and middleware.
type Options struct {
	CookieSecure   bool
	MaxUploadBytes int64

	// UploadDir is served read-only under UploadURLPrefix. Leave it empty
	// when assets live in object storage.
	UploadDir       string
	UploadURLPrefix string
	// Assets serves uploads kept in the database. Ignored when UploadDir is set.
	Assets AssetSource

	LoginLimiter *service.TokenBucket // nil disables login rate limiting
	Metrics      *Metrics             // nil disables /metrics
	DB           Pinger
}

// RegisterRoutes sets up all HTTP routes on the given mux.
func RegisterRoutes(mux *http.ServeMux, svc Services, opts Options) {
	authHandler := NewAuthHandler(svc.Auth, opts.CookieSecure)
	categoryHandler := NewCategoryHandler(svc.Categories)
	materialHandler := NewMaterialHandler(svc.Catalog, opts.MaxUploadBytes, opts.Metrics)
	secretHandler := NewSecretHandler(svc.Secrets)
	rewriteHandler := NewRewriteHandler(svc.Rewriter)

	protect := func(h http.HandlerFunc) http.Handler {
		return RequireAuth(svc.Auth, h)
	}

	mux.HandleFunc("GET /healthz", HandleHealthz(opts.DB))
	if opts.Metrics != nil {
		mux.Handle("GET /metrics", opts.Metrics.Handler())
	}

	login := http.Handler(http.HandlerFunc(authHandler.HandleLogin))
	register := http.Handler(http.HandlerFunc(authHandler.HandleRegister))
	if opts.LoginLimiter != nil {
		login = RateLimit(opts.LoginLimiter, login)
		register = RateLimit(opts.LoginLimiter, register)
	}
	mux.Handle("POST /api/auth/login", login)
	mux.Handle("POST /api/auth/register", register)
	mux.HandleFunc("POST /api/auth/logout", authHandler.HandleLogout)
	mux.Handle("GET /api/auth/me", protect(authHandler.HandleMe))

	mux.Handle("GET /api/material-types", protect(categoryHandler.HandleList))
	mux.Handle("POST /api/material-types", protect(categoryHandler.HandleCreate))
	mux.Handle("GET /api/material-types/{id}", protect(categoryHandler.HandleGet))
	mux.Handle("PUT /api/material-types/{id}", protect(categoryHandler.HandleUpdate))
	mux.Handle("DELETE /api/material-types/{id}", protect(categoryHandler.HandleDelete))

	mux.Handle("GET /api/materials", protect(materialHandler.HandleList))
	mux.Handle("POST /api/materials", protect(materialHandler.HandleCreate))
	mux.Handle("GET /api/materials/{id}", protect(materialHandler.HandleGet))
	mux.Handle("DELETE /api/materials/{id}", protect(materialHandler.HandleDelete))

	mux.Handle("GET /api/secrets", protect(secretHandler.HandleList))
	mux.Handle("POST /api/secrets", protect(secretHandler.HandleGenerate))

	mux.Handle("POST /api/copywriting/rewrite", protect(rewriteHandler.HandleRewrite))

	prefix := "/" + strings.Trim(opts.UploadURLPrefix, "/")
	switch {
	case opts.UploadDir != "":
		mux.Handle("GET "+prefix+"/", http.StripPrefix(prefix, noDirectoryListing(http.FileServer(http.Dir(opts.UploadDir)))))
	case opts.Assets != nil:
		mux.HandleFunc("GET "+prefix+"/{name}", HandleAsset(opts.Assets))
	}
}

// New builds the complete HTTP handler: routes plus the middleware chain.
func New(svc Services, opts Options) http.Handler {
	mux := http.NewServeMux()
	RegisterRoutes(mux, svc, opts)
	return SecurityHeaders(RequestLogger(opts.Metrics.Middleware(mux)))
}

func noDirectoryListing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}
