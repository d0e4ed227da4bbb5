package mirror

import (
	"context"
	"time"

	"athletics-cms/internal/kv"
	"athletics-cms/internal/model"
	"athletics-cms/internal/repo"

	"go.uber.org/zap"
)

// SchemaVersion is bumped when the mirrored record layout changes. A mirror
// holding an older version runs its migration hook once before first use.
const SchemaVersion = "2"

// Mirror keeps a non-authoritative in-memory copy of the article index and
// today's lesson status. It is the same repository types bound to the
// memory backend, refreshed by a fixed-interval poll; it never writes back
// to the primary.
type Mirror struct {
	local    *kv.MemoryStore
	articles *repo.ArticleRepo
	status   *repo.StatusRepo

	primaryArticles *repo.ArticleRepo
	primaryStatus   *repo.StatusRepo

	interval time.Duration
	logger   *zap.Logger
	migrate  func(ctx context.Context, from string) error
}

// New builds a mirror over a fresh memory store. ttl and maxBytes bound the
// local copy; interval is the poll period.
func New(primaryArticles *repo.ArticleRepo, primaryStatus *repo.StatusRepo, table model.CourseTable,
	ttl time.Duration, maxBytes int, interval time.Duration, logger *zap.Logger) *Mirror {

	local := kv.NewMemoryStore(ttl, maxBytes)
	return &Mirror{
		local:           local,
		articles:        repo.NewArticleRepo(local, local),
		status:          repo.NewStatusRepo(local, table, nil),
		primaryArticles: primaryArticles,
		primaryStatus:   primaryStatus,
		interval:        interval,
		logger:          logger,
	}
}

// Articles is the read surface of the mirrored article repository.
func (m *Mirror) Articles() *repo.ArticleRepo {
	return m.articles
}

// Status is the read surface of the mirrored status repository.
func (m *Mirror) Status() *repo.StatusRepo {
	return m.status
}

// Watch exposes change notification on a mirrored key so page pollers can
// refresh without re-reading everything.
func (m *Mirror) Watch(ctx context.Context, key string) <-chan string {
	return m.local.Watch(ctx, key)
}

// OnMigrate installs the hook run once when the stored schema version
// differs from SchemaVersion.
func (m *Mirror) OnMigrate(fn func(ctx context.Context, from string) error) {
	m.migrate = fn
}

// Run polls the primary until ctx is done. Refresh failures are logged and
// retried on the next tick; the stale copy keeps serving meanwhile.
func (m *Mirror) Run(ctx context.Context) {
	if err := m.local.Migrate(ctx, SchemaVersion, m.migrate); err != nil {
		m.logger.Error("Mirror migration failed", zap.Error(err))
	}

	m.logger.Info("Mirror started", zap.Duration("interval", m.interval))
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.refresh(ctx)
	for {
		select {
		case <-ctx.Done():
			m.logger.Info("Mirror shutting down")
			return
		case <-ticker.C:
			m.local.Cleanup()
			m.refresh(ctx)
		}
	}
}

func (m *Mirror) refresh(ctx context.Context) {
	records, err := m.primaryArticles.Snapshot(ctx)
	if err != nil {
		m.logger.Warn("Mirror article refresh failed", zap.Error(err))
	} else if err := m.articles.Restore(ctx, records); err != nil {
		m.logger.Warn("Mirror article restore failed", zap.Error(err))
	}

	status, err := m.primaryStatus.Get(ctx, "")
	if err != nil {
		m.logger.Warn("Mirror status refresh failed", zap.Error(err))
		return
	}
	if err := m.status.Restore(ctx, status, ""); err != nil {
		m.logger.Warn("Mirror status restore failed", zap.Error(err))
	}
}
