package mirror

import (
	"context"
	"testing"
	"time"

	"athletics-cms/internal/kv"
	"athletics-cms/internal/model"
	"athletics-cms/internal/repo"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newPrimary() (*repo.ArticleRepo, *repo.StatusRepo) {
	store := kv.NewMemoryStore(0, 0)
	table := model.DefaultCourseTable()
	return repo.NewArticleRepo(store, store), repo.NewStatusRepo(store, table, nil)
}

func TestMirror_RefreshCopiesPrimary(t *testing.T) {
	articles, status := newPrimary()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	created, err := articles.Create(ctx, model.ArticleDraft{
		Title: "Spring Trial", Content: "# Hi", Date: "2024-04-01",
		Category: "event", CategoryName: "Event", Excerpt: "...",
	})
	require.NoError(t, err)
	_, err = status.Save(ctx, model.LessonStatus{GlobalStatus: model.LessonIndoor}, "")
	require.NoError(t, err)

	m := New(articles, status, model.DefaultCourseTable(), 0, 0, 10*time.Millisecond, zap.NewNop())
	go m.Run(ctx)
	time.Sleep(50 * time.Millisecond)

	got, body, err := m.Articles().GetByID(ctx, created.ID)
	require.NoError(t, err, "mirror serves the copied article")
	assert.Equal(t, created, got)
	assert.Equal(t, "# Hi", body)

	st, err := m.Status().Get(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, model.LessonIndoor, st.GlobalStatus)
}

func TestMirror_PicksUpLaterWrites(t *testing.T) {
	articles, status := newPrimary()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := New(articles, status, model.DefaultCourseTable(), 0, 0, 10*time.Millisecond, zap.NewNop())
	go m.Run(ctx)
	time.Sleep(20 * time.Millisecond)

	list, err := m.Articles().ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	created, err := articles.Create(ctx, model.ArticleDraft{
		Title: "New Post", Content: "body", Date: "2024-05-01",
		Category: "news", CategoryName: "News", Excerpt: "e",
	})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		_, _, err := m.Articles().GetByID(ctx, created.ID)
		return err == nil
	}, time.Second, 10*time.Millisecond, "poll loop picks up the new article")
}

func TestMirror_WatchSignalsRefresh(t *testing.T) {
	articles, status := newPrimary()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := New(articles, status, model.DefaultCourseTable(), 0, 0, 10*time.Millisecond, zap.NewNop())
	ch := m.Watch(ctx, "articles:index")
	go m.Run(ctx)

	select {
	case key := <-ch:
		assert.Equal(t, "articles:index", key)
	case <-time.After(time.Second):
		t.Fatal("no notification from mirror refresh")
	}
}

func TestMirror_MigrationHookRunsOnce(t *testing.T) {
	articles, status := newPrimary()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := New(articles, status, model.DefaultCourseTable(), 0, 0, 10*time.Millisecond, zap.NewNop())
	calls := 0
	m.OnMigrate(func(ctx context.Context, from string) error {
		calls++
		return nil
	})
	go m.Run(ctx)
	time.Sleep(50 * time.Millisecond)

	assert.Equal(t, 1, calls)
}
