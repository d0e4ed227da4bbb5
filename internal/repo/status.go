package repo

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"athletics-cms/internal/kv"
	"athletics-cms/internal/model"
)

const (
	statusCurrentKey = "status:current"
	statusDateNS     = "status:date:"
	dateLayout       = "2006-01-02"
)

// StatusRepo owns the per-date lesson-status records plus the
// "status:current" convenience key. Records are single blobs replaced whole.
type StatusRepo struct {
	store kv.Store
	table model.CourseTable
	now   func() time.Time
}

// NewStatusRepo binds the repository to a backend and the static course
// table. The clock is injected so tests can pin lastUpdated.
func NewStatusRepo(store kv.Store, table model.CourseTable, now func() time.Time) *StatusRepo {
	if now == nil {
		now = time.Now
	}
	return &StatusRepo{store: store, table: table, now: now}
}

func statusKey(date string) string {
	return statusDateNS + date
}

// resolveDate defaults an empty date to today.
func (r *StatusRepo) resolveDate(date string) string {
	if date == "" {
		return r.now().Format(dateLayout)
	}
	return date
}

// Get returns the record for the date (today when empty), or a normalized
// default when nothing is stored. It never fails on absence.
func (r *StatusRepo) Get(ctx context.Context, date string) (model.LessonStatus, error) {
	raw, err := r.store.Get(ctx, statusKey(r.resolveDate(date)))
	if errors.Is(err, kv.ErrNotFound) {
		return model.DefaultLessonStatus(r.table), nil
	} else if err != nil {
		return model.LessonStatus{}, storageErr("load lesson status", err)
	}

	var status model.LessonStatus
	if err := json.Unmarshal([]byte(raw), &status); err != nil {
		return model.LessonStatus{}, storageErr("parse lesson status", err)
	}
	return status.Normalize(r.table), nil
}

// Save normalizes, stamps lastUpdated and persists under both the date key
// and the current key. Watch-capable backends notify subscribers on the Put.
func (r *StatusRepo) Save(ctx context.Context, status model.LessonStatus, date string) (model.LessonStatus, error) {
	status = status.Normalize(r.table)
	status.LastUpdated = r.now()

	data, err := json.Marshal(status)
	if err != nil {
		return model.LessonStatus{}, storageErr("encode lesson status", err)
	}
	if err := r.store.Put(ctx, statusKey(r.resolveDate(date)), string(data)); err != nil {
		return model.LessonStatus{}, storageErr("save lesson status", err)
	}
	if err := r.store.Put(ctx, statusCurrentKey, string(data)); err != nil {
		return model.LessonStatus{}, storageErr("save current lesson status", err)
	}
	return status, nil
}

// Restore writes a record verbatim under its date key, keeping the stored
// lastUpdated. Used by the offline mirror when copying from the primary.
func (r *StatusRepo) Restore(ctx context.Context, status model.LessonStatus, date string) error {
	data, err := json.Marshal(status)
	if err != nil {
		return storageErr("encode lesson status", err)
	}
	if err := r.store.Put(ctx, statusKey(r.resolveDate(date)), string(data)); err != nil {
		return storageErr("save lesson status", err)
	}
	return nil
}

// History returns every stored date → record. Only backends that can
// enumerate keys support it; others get an empty map.
func (r *StatusRepo) History(ctx context.Context) (map[string]model.LessonStatus, error) {
	lister, ok := r.store.(kv.Lister)
	if !ok {
		return map[string]model.LessonStatus{}, nil
	}
	keys, err := lister.Keys(ctx, statusDateNS+"*")
	if err != nil {
		return nil, storageErr("list lesson statuses", err)
	}
	out := make(map[string]model.LessonStatus, len(keys))
	for _, key := range keys {
		raw, err := r.store.Get(ctx, key)
		if errors.Is(err, kv.ErrNotFound) {
			continue
		} else if err != nil {
			return nil, storageErr("load lesson status", err)
		}
		var status model.LessonStatus
		if err := json.Unmarshal([]byte(raw), &status); err != nil {
			return nil, storageErr("parse lesson status", err)
		}
		out[strings.TrimPrefix(key, statusDateNS)] = status
	}
	return out, nil
}

// CourseTable exposes the static course table for adapters and handlers.
func (r *StatusRepo) CourseTable() model.CourseTable {
	return r.table
}
