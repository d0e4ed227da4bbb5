package repo

import (
	"context"
	"encoding/json"
	"errors"

	"athletics-cms/internal/kv"
	"athletics-cms/internal/model"
)

const (
	articleIndexKey  = "articles:index"
	articleContentNS = "articles:content:"
)

// ArticleRepo owns the article index (one JSON array under a single key in
// the metadata store) and the per-article markdown bodies (individual keys
// in the content store). The index is read-modify-written as a whole blob;
// concurrent writers are last-write-wins by contract.
type ArticleRepo struct {
	meta    kv.Store
	content kv.Store
}

// NewArticleRepo binds the repository to its two backends. Both may be the
// same store; the split exists so heavy bodies can live in Badger while the
// index stays in Redis.
func NewArticleRepo(meta, content kv.Store) *ArticleRepo {
	return &ArticleRepo{meta: meta, content: content}
}

func contentKey(id string) string {
	return articleContentNS + id
}

// ListAll returns every index entry. A missing index key means an empty
// site, not a failure.
func (r *ArticleRepo) ListAll(ctx context.Context) ([]model.Article, error) {
	raw, err := r.meta.Get(ctx, articleIndexKey)
	if errors.Is(err, kv.ErrNotFound) {
		return []model.Article{}, nil
	} else if err != nil {
		return nil, storageErr("list articles", err)
	}

	var articles []model.Article
	if err := json.Unmarshal([]byte(raw), &articles); err != nil {
		return nil, storageErr("parse article index", err)
	}
	if articles == nil {
		articles = []model.Article{}
	}
	return articles, nil
}

// GetByID returns the index entry plus its body. A missing body is
// tolerated and comes back as "": metadata without content is legal.
func (r *ArticleRepo) GetByID(ctx context.Context, id string) (model.Article, string, error) {
	articles, err := r.ListAll(ctx)
	if err != nil {
		return model.Article{}, "", err
	}
	for _, a := range articles {
		if a.ID != id {
			continue
		}
		body, err := r.content.Get(ctx, contentKey(id))
		if errors.Is(err, kv.ErrNotFound) {
			return a, "", nil
		} else if err != nil {
			return model.Article{}, "", storageErr("load article content", err)
		}
		return a, body, nil
	}
	return model.Article{}, "", ErrNotFound
}

// Create validates the draft, writes the body first, then appends to the
// index and rewrites it whole. Nothing is persisted when validation fails.
func (r *ArticleRepo) Create(ctx context.Context, draft model.ArticleDraft) (model.Article, error) {
	if missing := draft.MissingFields(); len(missing) > 0 {
		return model.Article{}, &ValidationError{Missing: missing}
	}

	articles, err := r.ListAll(ctx)
	if err != nil {
		return model.Article{}, err
	}

	article := model.NewArticle(draft)
	if err := r.content.Put(ctx, contentKey(article.ID), draft.Content); err != nil {
		return model.Article{}, storageErr("save article content", err)
	}

	articles = append(articles, article)
	if err := r.writeIndex(ctx, articles); err != nil {
		return model.Article{}, err
	}
	return article, nil
}

// Update merges only the provided fields. The filename is recomputed only
// when title or date changed; the body is rewritten only when the patch
// carries a content field (nil means leave it alone, "" clears it).
func (r *ArticleRepo) Update(ctx context.Context, id string, patch model.ArticlePatch) (model.Article, error) {
	articles, err := r.ListAll(ctx)
	if err != nil {
		return model.Article{}, err
	}

	idx := -1
	for i, a := range articles {
		if a.ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return model.Article{}, ErrNotFound
	}

	a := articles[idx]
	renamed := false
	if patch.Title != nil {
		a.Title = *patch.Title
		renamed = true
	}
	if patch.Date != nil {
		a.Date = *patch.Date
		renamed = true
	}
	if patch.Category != nil {
		a.Category = *patch.Category
	}
	if patch.CategoryName != nil {
		a.CategoryName = *patch.CategoryName
	}
	if patch.Excerpt != nil {
		a.Excerpt = *patch.Excerpt
	}
	if patch.Featured != nil {
		a.Featured = *patch.Featured
	}
	if patch.Status != nil {
		a.Status = model.ArticleStatus(*patch.Status)
	}
	if renamed {
		a.File = model.ArticleFilename(a.Date, a.Title)
	}

	if patch.Content != nil {
		if err := r.content.Put(ctx, contentKey(id), *patch.Content); err != nil {
			return model.Article{}, storageErr("save article content", err)
		}
	}

	articles[idx] = a
	if err := r.writeIndex(ctx, articles); err != nil {
		return model.Article{}, err
	}
	return a, nil
}

// Delete removes the body unconditionally before looking at the index, so a
// delete of an id whose metadata is already gone still scrubs an orphaned
// body. It then reports ErrNotFound when the index had no entry.
func (r *ArticleRepo) Delete(ctx context.Context, id string) error {
	if err := r.content.Delete(ctx, contentKey(id)); err != nil {
		return storageErr("delete article content", err)
	}

	articles, err := r.ListAll(ctx)
	if err != nil {
		return err
	}

	idx := -1
	for i, a := range articles {
		if a.ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return ErrNotFound
	}

	articles = append(articles[:idx], articles[idx+1:]...)
	return r.writeIndex(ctx, articles)
}

// ArticleRecord pairs an index entry with its body for snapshots.
type ArticleRecord struct {
	Article model.Article `json:"article"`
	Content string        `json:"content"`
}

// Snapshot returns every article together with its body. The offline mirror
// and the S3 exporter both consume this.
func (r *ArticleRepo) Snapshot(ctx context.Context) ([]ArticleRecord, error) {
	articles, err := r.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	records := make([]ArticleRecord, 0, len(articles))
	for _, a := range articles {
		body, err := r.content.Get(ctx, contentKey(a.ID))
		if errors.Is(err, kv.ErrNotFound) {
			body = ""
		} else if err != nil {
			return nil, storageErr("load article content", err)
		}
		records = append(records, ArticleRecord{Article: a, Content: body})
	}
	return records, nil
}

// Restore replaces the index and bodies with the given records verbatim.
// Ids, filenames and statuses are taken as-is.
func (r *ArticleRepo) Restore(ctx context.Context, records []ArticleRecord) error {
	articles := make([]model.Article, 0, len(records))
	for _, rec := range records {
		if err := r.content.Put(ctx, contentKey(rec.Article.ID), rec.Content); err != nil {
			return storageErr("save article content", err)
		}
		articles = append(articles, rec.Article)
	}
	return r.writeIndex(ctx, articles)
}

func (r *ArticleRepo) writeIndex(ctx context.Context, articles []model.Article) error {
	data, err := json.Marshal(articles)
	if err != nil {
		return storageErr("encode article index", err)
	}
	if err := r.meta.Put(ctx, articleIndexKey, string(data)); err != nil {
		return storageErr("save article index", err)
	}
	return nil
}
