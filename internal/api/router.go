package api

import (
	"log/slog"
	"net/http"

	_ "github.com/rohits-web03/sitedrop/docs"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/rohits-web03/sitedrop/internal/api/handlers"
	"github.com/rohits-web03/sitedrop/internal/api/middleware"
	"github.com/rs/cors"
)

type RouterConfig struct {
	JWTSecret string
	Cors      cors.Options
	Handler   *handlers.Handler
}

func SetupRouter(cfg RouterConfig) http.Handler {
	mainMux := http.NewServeMux()
	c := cors.New(cfg.Cors)
	h := cfg.Handler

	// ---------- PUBLIC ROUTES ----------
	mainMux.HandleFunc("GET /health", h.Health)

	mainMux.HandleFunc("/docs/", httpSwagger.WrapHandler)

	// ---------- PROTECTED ROUTES ----------
	protectedMux := http.NewServeMux()

	protectedMux.HandleFunc("POST /events", h.PostEvent)
	protectedMux.HandleFunc("POST /events/file", h.PostFileEvent)
	protectedMux.HandleFunc("GET /deployments", h.ListDeployments)
	protectedMux.HandleFunc("GET /deployments/{slug}/artifacts/{index}", h.PresignArtifact)

	mainMux.Handle("/api/v1/",
		http.StripPrefix(
			"/api/v1",
			middleware.AuthMiddleware(cfg.JWTSecret)(protectedMux),
		),
	)

	slog.Info("router initialized")
	handler := c.Handler(mainMux)
	handler = middleware.Logger(handler)
	return handler
}
