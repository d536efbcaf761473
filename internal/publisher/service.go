// Package publisher runs the publish, delete and list pipelines against the
// remote object store and metadata table.
package publisher

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/starford/supamarker/internal/apperr"
	"github.com/starford/supamarker/internal/models"
	"github.com/starford/supamarker/internal/parser"
	"github.com/starford/supamarker/internal/slug"
)

// slugColumn is the primary key of the metadata table.
const slugColumn = "slug"

// Remote is the subset of the Supabase API the pipelines need.
type Remote interface {
	UploadObject(ctx context.Context, bucket, key, filename string, content []byte) error
	DeleteObject(ctx context.Context, bucket, key string) error
	ListObjects(ctx context.Context, bucket string) ([]models.StorageObject, error)
	UpsertRows(ctx context.Context, table string, rows any) error
	DeleteRows(ctx context.Context, table, column, value string) error
	SelectColumn(ctx context.Context, table, column string) ([]string, error)
}

// Service publishes and deletes posts. Both remote writes of a pipeline are
// issued in order and the second is skipped when the first fails; nothing is
// rolled back.
type Service struct {
	remote Remote
	bucket string
	table  string
	logger *slog.Logger
}

// NewService creates a service writing objects to bucket and rows to table.
func NewService(remote Remote, bucket, table string, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{remote: remote, bucket: bucket, table: table, logger: logger}
}

// Bucket returns the object-store bucket.
func (s *Service) Bucket() string { return s.bucket }

// Table returns the metadata table.
func (s *Service) Table() string { return s.table }

// Publish uploads the markdown file at path and upserts its metadata row.
// The uploaded object is the file as read, frontmatter included.
func (s *Service) Publish(ctx context.Context, path string) (*models.PublishResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &apperr.IOError{Path: path, Err: err}
	}

	fm, _, err := parser.Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if fm == nil {
		return nil, fmt.Errorf("parse %s: %w", path, apperr.ErrMissingFrontmatter)
	}

	postSlug := slug.Resolve(fm.Slug, path, fm.Title)
	if postSlug == "" {
		return nil, fmt.Errorf("parse %s: cannot derive a slug: %w", path, apperr.ErrMalformedFrontmatter)
	}
	object := postSlug + ".md"
	log := s.logger.With(slog.String("slug", postSlug))

	if err := s.remote.UploadObject(ctx, s.bucket, object, object, data); err != nil {
		return nil, fmt.Errorf("uploading markdown to storage: %w", err)
	}
	log.Info("uploaded markdown", slog.String("bucket", s.bucket), slog.String("object", object))

	row := models.NewPostRow(postSlug, *fm)
	if err := s.remote.UpsertRows(ctx, s.table, []models.PostRow{row}); err != nil {
		return nil, fmt.Errorf("upserting metadata into %s table: %w", s.table, err)
	}
	log.Info("upserted metadata", slog.String("table", s.table))

	return &models.PublishResult{
		Slug:       postSlug,
		Title:      fm.Title,
		Bucket:     s.bucket,
		ObjectPath: s.bucket + "/" + object,
		Table:      s.table,
		Checksum:   sha256Hex(data),
	}, nil
}

// Delete removes the stored object named postSlug and the metadata rows for
// it. A trailing ".md" is stripped for the row filter only. With soft set the
// stored object is kept.
func (s *Service) Delete(ctx context.Context, postSlug string, soft bool) (*models.DeleteResult, error) {
	if strings.TrimSpace(postSlug) == "" {
		return nil, errors.New("slug is required")
	}
	log := s.logger.With(slog.String("slug", postSlug))

	if soft {
		log.Info("keeping markdown in storage", slog.String("bucket", s.bucket))
	} else {
		if err := s.remote.DeleteObject(ctx, s.bucket, postSlug); err != nil {
			return nil, fmt.Errorf("deleting markdown from storage: %w", err)
		}
		log.Info("deleted markdown", slog.String("bucket", s.bucket))
	}

	rowSlug := strings.TrimSuffix(postSlug, ".md")
	if err := s.remote.DeleteRows(ctx, s.table, slugColumn, rowSlug); err != nil {
		return nil, fmt.Errorf("deleting metadata from %s table: %w", s.table, err)
	}
	log.Info("deleted metadata", slog.String("table", s.table))

	return &models.DeleteResult{
		Slug:       postSlug,
		ObjectPath: s.bucket + "/" + postSlug,
		Table:      s.table,
		KeptObject: soft,
	}, nil
}

// List reports every slug found in the bucket, the table, or both, sorted by slug.
func (s *Service) List(ctx context.Context) ([]models.ListEntry, error) {
	objects, err := s.remote.ListObjects(ctx, s.bucket)
	if err != nil {
		return nil, fmt.Errorf("listing %s bucket: %w", s.bucket, err)
	}
	rows, err := s.remote.SelectColumn(ctx, s.table, slugColumn)
	if err != nil {
		return nil, fmt.Errorf("listing %s table: %w", s.table, err)
	}

	inBucket := make(map[string]struct{}, len(objects))
	for _, o := range objects {
		if n := slug.Normalize(o.Name); n != "" {
			inBucket[n] = struct{}{}
		}
	}
	inTable := make(map[string]struct{}, len(rows))
	for _, r := range rows {
		if n := slug.Normalize(r); n != "" {
			inTable[n] = struct{}{}
		}
	}

	all := make(map[string]struct{}, len(inBucket)+len(inTable))
	for k := range inBucket {
		all[k] = struct{}{}
	}
	for k := range inTable {
		all[k] = struct{}{}
	}

	out := make([]models.ListEntry, 0, len(all))
	for k := range all {
		_, b := inBucket[k]
		_, t := inTable[k]
		loc := models.LocationBoth
		switch {
		case b && !t:
			loc = models.LocationBucket
		case t && !b:
			loc = models.LocationTable
		}
		out = append(out, models.ListEntry{Slug: k, Location: loc})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slug < out[j].Slug })
	return out, nil
}

func sha256Hex(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}
