package repositories

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rohits-web03/sitedrop/internal/models"
	"gorm.io/gorm"
)

// MemoryDeploymentStore is an in-process record store for development and
// tests. It enforces slug uniqueness like the postgres schema does.
type MemoryDeploymentStore struct {
	mu     sync.RWMutex
	bySlug map[string]*memoryRecord
	seq    uint64
	now    func() time.Time
}

// seq orders records saved within the same clock tick.
type memoryRecord struct {
	d   models.Deployment
	seq uint64
}

func NewMemoryDeploymentStore() *MemoryDeploymentStore {
	return &MemoryDeploymentStore{
		bySlug: make(map[string]*memoryRecord),
		now:    time.Now,
	}
}

func (m *MemoryDeploymentStore) Save(_ context.Context, d *models.Deployment) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.bySlug[d.Slug]; exists {
		return fmt.Errorf("%w: %s", models.ErrDuplicateSlug, d.Slug)
	}
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	if d.Status == "" {
		d.Status = models.StatusActive
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = m.now()
	}
	d.UpdatedAt = d.CreatedAt

	m.seq++
	m.bySlug[d.Slug] = &memoryRecord{d: *d, seq: m.seq}
	return nil
}

func (m *MemoryDeploymentStore) ListByOwner(_ context.Context, ownerID int64, status models.DeploymentStatus) ([]models.Deployment, error) {
	return m.collect(func(d *models.Deployment) bool {
		return d.OwnerID == ownerID && d.Status == status
	}), nil
}

func (m *MemoryDeploymentStore) ListAll(_ context.Context) ([]models.Deployment, error) {
	return m.collect(func(*models.Deployment) bool { return true }), nil
}

func (m *MemoryDeploymentStore) FindBySlug(_ context.Context, slug string) (*models.Deployment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.bySlug[slug]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	out := r.d
	return &out, nil
}

func (m *MemoryDeploymentStore) SetStatus(_ context.Context, slug string, status models.DeploymentStatus) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.bySlug[slug]
	if !ok {
		return false, nil
	}
	r.d.Status = status
	r.d.UpdatedAt = m.now()
	return true, nil
}

func (m *MemoryDeploymentStore) CountActive(_ context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var n int64
	for _, r := range m.bySlug {
		if r.d.Status == models.StatusActive {
			n++
		}
	}
	return n, nil
}

func (m *MemoryDeploymentStore) IsReady(context.Context) bool {
	return true
}

func (m *MemoryDeploymentStore) Name() string {
	return "DeploymentRepository[memory]"
}

// collect returns copies of the matching records, newest first.
func (m *MemoryDeploymentStore) collect(match func(*models.Deployment) bool) []models.Deployment {
	m.mu.RLock()
	defer m.mu.RUnlock()

	matched := make([]*memoryRecord, 0, len(m.bySlug))
	for _, r := range m.bySlug {
		if match(&r.d) {
			matched = append(matched, r)
		}
	}
	slices.SortFunc(matched, func(a, b *memoryRecord) int {
		if c := b.d.CreatedAt.Compare(a.d.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.seq, a.seq)
	})

	out := make([]models.Deployment, len(matched))
	for i, r := range matched {
		out[i] = r.d
	}
	return out
}
