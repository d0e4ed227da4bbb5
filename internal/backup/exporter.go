package backup

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"athletics-cms/internal/model"
	"athletics-cms/internal/repo"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"
)

// snapshot is the export file layout: everything the KV store holds, in one
// gzipped JSON document.
type snapshot struct {
	ExportedAt time.Time                     `json:"exportedAt"`
	Articles   []repo.ArticleRecord          `json:"articles"`
	Statuses   map[string]model.LessonStatus `json:"statuses"`
}

// Exporter writes full-content snapshots to S3 and rotates old ones.
type Exporter struct {
	client   *s3.Client
	cfg      S3Config
	articles *repo.ArticleRepo
	status   *repo.StatusRepo
	logger   *zap.Logger
}

func NewExporter(client *s3.Client, cfg S3Config, articles *repo.ArticleRepo, status *repo.StatusRepo, logger *zap.Logger) *Exporter {
	return &Exporter{client: client, cfg: cfg, articles: articles, status: status, logger: logger}
}

// Run takes one snapshot, uploads it and rotates. Safe to call from a cron
// schedule; overlapping runs only waste an upload.
func (e *Exporter) Run(ctx context.Context) error {
	articles, err := e.articles.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("snapshot articles: %w", err)
	}
	statuses, err := e.status.History(ctx)
	if err != nil {
		return fmt.Errorf("snapshot statuses: %w", err)
	}

	data, err := encodeSnapshot(snapshot{
		ExportedAt: time.Now().UTC(),
		Articles:   articles,
		Statuses:   statuses,
	})
	if err != nil {
		return err
	}

	key := fmt.Sprintf("export-%s.json.gz", time.Now().UTC().Format("2006-01-02T15-04-05Z"))
	_, err = e.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(e.cfg.Bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return fmt.Errorf("upload export: %w", err)
	}
	e.logger.Info("Export uploaded",
		zap.String("key", key),
		zap.Int("articles", len(articles)),
		zap.Int("statuses", len(statuses)))

	return e.rotate(ctx)
}

func encodeSnapshot(s snapshot) ([]byte, error) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if err := json.NewEncoder(gz).Encode(s); err != nil {
		return nil, fmt.Errorf("encode export: %w", err)
	}
	if err := gz.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// rotate deletes everything past the newest Keep exports.
func (e *Exporter) rotate(ctx context.Context) error {
	if e.cfg.Keep <= 0 {
		return nil
	}
	out, err := e.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket: aws.String(e.cfg.Bucket),
	})
	if err != nil {
		return fmt.Errorf("list exports: %w", err)
	}
	if len(out.Contents) <= e.cfg.Keep {
		return nil
	}

	sort.Slice(out.Contents, func(i, j int) bool {
		return out.Contents[i].LastModified.After(*out.Contents[j].LastModified)
	})
	for _, obj := range out.Contents[e.cfg.Keep:] {
		_, err := e.client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(e.cfg.Bucket),
			Key:    obj.Key,
		})
		if err != nil {
			return fmt.Errorf("delete old export %s: %w", aws.ToString(obj.Key), err)
		}
		e.logger.Info("Old export removed", zap.String("key", aws.ToString(obj.Key)))
	}
	return nil
}
