package handlers

import (
	"context"
	"time"

	"github.com/rohits-web03/sitedrop/internal/bot"
	"github.com/rohits-web03/sitedrop/internal/deploy"
	"github.com/rohits-web03/sitedrop/internal/hosting"
	"github.com/rohits-web03/sitedrop/internal/models"
)

// ArtifactPresigner issues download links for archived deployment files.
type ArtifactPresigner interface {
	HasArtifact(ctx context.Context, slug string, index int) (bool, error)
	PresignArtifact(ctx context.Context, slug string, index int, expires time.Duration) (string, error)
}

// DeploymentFinder looks up a record by slug, returning
// gorm.ErrRecordNotFound when it does not exist.
type DeploymentFinder interface {
	FindBySlug(ctx context.Context, slug string) (*models.Deployment, error)
}

type HealthChecker interface {
	Health(ctx context.Context) (*hosting.HealthStatus, error)
}

// Handler holds the dependencies of the HTTP endpoints.
type Handler struct {
	Router      *bot.Router
	Dispatcher  *bot.Dispatcher
	Service     *deploy.Service
	Deployments DeploymentFinder
	Artifacts   ArtifactPresigner // nil when archiving is disabled
	Hosting     HealthChecker
	MaxFileSize int64
	StartedAt   time.Time
}
