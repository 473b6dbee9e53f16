package deploy

import (
	"context"

	"github.com/rohits-web03/sitedrop/internal/hosting"
	"github.com/rohits-web03/sitedrop/internal/models"
	"github.com/rohits-web03/sitedrop/internal/session"
)

// Hosting is the subset of the hosting API client the service uses.
type Hosting interface {
	Deploy(ctx context.Context, siteName string, files []hosting.File) (*hosting.DeployResult, error)
	FetchUsageStats(ctx context.Context) (*hosting.UsageStats, error)
	ListAllSites(ctx context.Context) ([]hosting.SiteSummary, error)
	RequestDelete(ctx context.Context, slug string) (*hosting.ActionResult, error)
	RequestRestore(ctx context.Context, slug string) (*hosting.ActionResult, error)
	Health(ctx context.Context) (*hosting.HealthStatus, error)
}

// RecordStore persists deployment records. SetStatus reports a missing slug as
// false with a nil error. Save returns models.ErrDuplicateSlug on collision.
type RecordStore interface {
	Save(ctx context.Context, d *models.Deployment) error
	ListByOwner(ctx context.Context, ownerID int64, status models.DeploymentStatus) ([]models.Deployment, error)
	ListAll(ctx context.Context) ([]models.Deployment, error)
	SetStatus(ctx context.Context, slug string, status models.DeploymentStatus) (bool, error)
	CountActive(ctx context.Context) (int64, error)
}

// Archiver keeps a copy of the deployed files.
type Archiver interface {
	Archive(ctx context.Context, slug string, files []session.StagedFile) error
}

// AdminSet is the fixed set of privileged user ids.
type AdminSet map[int64]struct{}

func NewAdminSet(ids ...int64) AdminSet {
	set := make(AdminSet, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

func (a AdminSet) Contains(userID int64) bool {
	_, ok := a[userID]
	return ok
}
