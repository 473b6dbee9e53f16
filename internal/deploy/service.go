package deploy

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rohits-web03/sitedrop/internal/hosting"
	"github.com/rohits-web03/sitedrop/internal/models"
	"github.com/rohits-web03/sitedrop/internal/observability"
	"github.com/rohits-web03/sitedrop/internal/session"
)

// Caller identifies who sent an event. Sessions are keyed by ChatID, records
// are owned by UserID.
type Caller struct {
	ChatID int64
	UserID int64
}

// Attachment is an incoming file whose content is fetched only after the
// declared size and type have been accepted.
type Attachment struct {
	Name  string
	Size  int64
	Fetch func(ctx context.Context) ([]byte, error)
}

type Service struct {
	sessions session.Store
	hosting  Hosting
	records  RecordStore
	archiver Archiver
	admins   AdminSet
	limits   Limits
}

type Option func(*Service)

// WithArchiver enables best-effort archiving of deployed files.
func WithArchiver(a Archiver) Option {
	return func(s *Service) { s.archiver = a }
}

func WithLimits(l Limits) Option {
	return func(s *Service) { s.limits = l }
}

func NewService(sessions session.Store, h Hosting, records RecordStore, admins AdminSet, opts ...Option) *Service {
	if admins == nil {
		admins = AdminSet{}
	}
	s := &Service{
		sessions: sessions,
		hosting:  h,
		records:  records,
		admins:   admins,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) IsAdmin(userID int64) bool {
	return s.admins.Contains(userID)
}

func (s *Service) Limits() Limits {
	return Limits{MaxFileSize: s.limits.maxFileSize()}
}

// State returns the caller's current session.
func (s *Service) State(ctx context.Context, c Caller) (session.State, error) {
	st, err := s.sessions.Get(ctx, c.ChatID)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	return st, nil
}

func (s *Service) StartUpload(ctx context.Context, c Caller, mode session.UploadMode) (Effect, error) {
	return s.apply(ctx, c, StartUpload{Mode: mode})
}

// SubmitText routes free text to the name or slug prompt, whichever is
// pending.
func (s *Service) SubmitText(ctx context.Context, c Caller, text string) (Effect, error) {
	st, err := s.State(ctx, c)
	if err != nil {
		return nil, err
	}

	switch st.(type) {
	case session.AwaitingSiteName:
		return s.applyTo(ctx, c, st, SubmitName{Text: text})
	case session.AwaitingSlug:
		if !s.IsAdmin(c.UserID) {
			return nil, ErrUnauthorized
		}
		return s.applyTo(ctx, c, st, SubmitSlug{Text: text})
	}
	return nil, ErrUnexpectedInput
}

func (s *Service) SubmitFile(ctx context.Context, c Caller, att Attachment) (Effect, error) {
	st, err := s.State(ctx, c)
	if err != nil {
		return nil, err
	}
	if err := Admit(st, att.Name, att.Size, s.limits); err != nil {
		return nil, err
	}

	content, err := att.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", att.Name, err)
	}
	return s.applyTo(ctx, c, st, SubmitFile{Name: att.Name, Content: content})
}

func (s *Service) Finalize(ctx context.Context, c Caller) (Effect, error) {
	return s.apply(ctx, c, Finalize{})
}

func (s *Service) Cancel(ctx context.Context, c Caller) (Effect, error) {
	return s.apply(ctx, c, Cancel{})
}

// StartAdmin opens the slug prompt for an admin. Non-admins get
// ErrUnauthorized and their session is left untouched.
func (s *Service) StartAdmin(ctx context.Context, c Caller, action session.AdminAction) (Effect, error) {
	if !s.IsAdmin(c.UserID) {
		return nil, ErrUnauthorized
	}
	return s.apply(ctx, c, StartAdmin{Action: action})
}

func (s *Service) apply(ctx context.Context, c Caller, ev Event) (Effect, error) {
	st, err := s.State(ctx, c)
	if err != nil {
		return nil, err
	}
	return s.applyTo(ctx, c, st, ev)
}

// applyTo persists the next state before running any effect, so a failing
// deploy or admin call always leaves the session Idle.
func (s *Service) applyTo(ctx context.Context, c Caller, st session.State, ev Event) (Effect, error) {
	next, eff, err := Transition(st, ev, s.limits)
	if err != nil {
		return nil, err
	}
	if err := s.sessions.Put(ctx, c.ChatID, next); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	switch e := eff.(type) {
	case DeployEffect:
		return s.runDeploy(ctx, c, e)
	case AdminEffect:
		return s.runAdmin(ctx, e)
	}
	return eff, nil
}

func (s *Service) runDeploy(ctx context.Context, c Caller, e DeployEffect) (Effect, error) {
	log := observability.LoggerFromContext(ctx).With(
		"user_id", c.UserID,
		"site_name", e.SiteName,
		"files", len(e.Files),
	)

	files := make([]hosting.File, len(e.Files))
	for i, f := range e.Files {
		files[i] = hosting.File{Name: f.Name, Data: f.Content}
	}

	start := time.Now()
	res, err := s.hosting.Deploy(ctx, e.SiteName, files)
	if err != nil {
		log.Error("deploy failed", "error", err)
		return nil, err
	}
	if !res.OK {
		log.Warn("deploy rejected", "reason", res.Error)
		return nil, &hosting.BusinessError{Op: "deploy", Message: res.Error}
	}
	log = log.With("slug", res.Slug)
	log.Info("site deployed", "duration", time.Since(start))

	rec := &models.Deployment{
		OwnerID:   c.UserID,
		Name:      e.SiteName,
		Slug:      res.Slug,
		URL:       res.URL,
		FileCount: len(e.Files),
		Status:    models.StatusActive,
	}
	if err := s.records.Save(ctx, rec); err != nil {
		log.Error("failed to save deployment record", "error", err)
		return nil, &RecordError{Slug: res.Slug, URL: res.URL, Err: err}
	}

	archived := false
	if s.archiver != nil {
		if err := s.archiver.Archive(ctx, rec.Slug, e.Files); err != nil {
			log.Warn("failed to archive deployed files", "error", err)
		} else {
			archived = true
		}
	}

	return Deployed{Record: *rec, Archived: archived}, nil
}

// runAdmin asks the hosting API first and only mirrors the status locally when
// the API accepted the change.
func (s *Service) runAdmin(ctx context.Context, e AdminEffect) (Effect, error) {
	log := observability.LoggerFromContext(ctx).With("action", e.Action, "slug", e.Slug)

	var (
		res    *hosting.ActionResult
		status models.DeploymentStatus
		err    error
	)
	switch e.Action {
	case session.ActionDelete:
		res, err = s.hosting.RequestDelete(ctx, e.Slug)
		status = models.StatusDeleted
	case session.ActionRestore:
		res, err = s.hosting.RequestRestore(ctx, e.Slug)
		status = models.StatusActive
	default:
		return nil, fmt.Errorf("unknown admin action %q", e.Action)
	}
	if err != nil {
		log.Error("admin action failed", "error", err)
		return nil, err
	}

	out := AdminApplied{Action: e.Action, Slug: e.Slug, Accepted: res.OK, Message: res.Error}
	if !res.OK {
		log.Warn("admin action rejected", "reason", res.Error)
		return out, nil
	}

	found, err := s.records.SetStatus(ctx, e.Slug, status)
	if err != nil {
		log.Error("failed to update deployment status", "error", err)
		return nil, fmt.Errorf("update status of %s: %w", e.Slug, err)
	}
	out.Found = found
	log.Info("admin action applied", "found", found)
	return out, nil
}

// ListMySites returns the caller's active deployments, newest first.
func (s *Service) ListMySites(ctx context.Context, userID int64) ([]models.Deployment, error) {
	sites, err := s.records.ListByOwner(ctx, userID, models.StatusActive)
	if err != nil {
		return nil, fmt.Errorf("list sites: %w", err)
	}
	return sites, nil
}

type UserStats struct {
	ActiveSites int
	Usage       hosting.UsageStats
	HasUsage    bool
}

func (s *Service) UserStats(ctx context.Context, userID int64) (UserStats, error) {
	sites, err := s.ListMySites(ctx, userID)
	if err != nil {
		return UserStats{}, err
	}
	out := UserStats{ActiveSites: len(sites)}
	out.Usage, out.HasUsage = s.usage(ctx)
	return out, nil
}

// usage is best-effort: a failed fetch is logged and reported as absent.
func (s *Service) usage(ctx context.Context) (hosting.UsageStats, bool) {
	stats, err := s.hosting.FetchUsageStats(ctx)
	if err != nil {
		observability.LoggerFromContext(ctx).Warn("usage stats unavailable", "error", err)
		return hosting.UsageStats{}, false
	}
	return *stats, true
}

type SiteSource string

const (
	SourceRemote SiteSource = "remote"
	SourceLocal  SiteSource = "local"
)

type SiteListing struct {
	Sites  []hosting.SiteSummary
	Source SiteSource
}

// AdminListSites lists every site known to the hosting API, falling back to
// the local records when the API cannot be reached.
func (s *Service) AdminListSites(ctx context.Context, c Caller) (SiteListing, error) {
	if !s.IsAdmin(c.UserID) {
		return SiteListing{}, ErrUnauthorized
	}

	sites, err := s.hosting.ListAllSites(ctx)
	if err == nil {
		return SiteListing{Sites: sites, Source: SourceRemote}, nil
	}
	observability.LoggerFromContext(ctx).Warn("remote site listing failed, using local records", "error", err)

	records, lerr := s.records.ListAll(ctx)
	if lerr != nil {
		return SiteListing{}, errors.Join(err, fmt.Errorf("list records: %w", lerr))
	}
	out := make([]hosting.SiteSummary, len(records))
	for i, r := range records {
		fileCount := r.FileCount
		out[i] = hosting.SiteSummary{
			Slug:      r.Slug,
			Name:      r.Name,
			URL:       r.URL,
			Status:    string(r.Status),
			FileCount: &fileCount,
			CreatedAt: r.CreatedAt.Format(time.RFC3339),
		}
	}
	return SiteListing{Sites: out, Source: SourceLocal}, nil
}

type ServerStats struct {
	ActiveRecords int64
	Usage         hosting.UsageStats
	HasUsage      bool
	Health        hosting.HealthStatus
	HasHealth     bool
}

// AdminServerStats gathers remote usage, hosting health and the local active
// count concurrently. Only the local count is required.
func (s *Service) AdminServerStats(ctx context.Context, c Caller) (ServerStats, error) {
	if !s.IsAdmin(c.UserID) {
		return ServerStats{}, ErrUnauthorized
	}

	var out ServerStats
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.records.CountActive(gctx)
		if err != nil {
			return fmt.Errorf("count active: %w", err)
		}
		out.ActiveRecords = n
		return nil
	})
	g.Go(func() error {
		out.Usage, out.HasUsage = s.usage(gctx)
		return nil
	})
	g.Go(func() error {
		h, err := s.hosting.Health(gctx)
		if err != nil {
			observability.LoggerFromContext(gctx).Warn("hosting health unavailable", "error", err)
			return nil
		}
		out.Health, out.HasHealth = *h, true
		return nil
	})
	if err := g.Wait(); err != nil {
		return ServerStats{}, err
	}
	return out, nil
}
