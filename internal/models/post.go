// Package models defines the domain types for supamarker.
package models

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// FrontMatter is the YAML metadata block at the top of a post.
type FrontMatter struct {
	Title   string   `yaml:"title"`
	Summary string   `yaml:"summary"`
	Tags    []string `yaml:"tags"`
	Slug    string   `yaml:"slug"`
}

// Validate checks the required frontmatter fields.
func (f *FrontMatter) Validate() error {
	return validation.ValidateStruct(f,
		validation.Field(&f.Title, validation.Required, validation.By(notBlank)),
	)
}

func notBlank(value any) error {
	if s, _ := value.(string); strings.TrimSpace(s) == "" {
		return validation.NewError("validation_required", "cannot be blank")
	}
	return nil
}

// PostRow is one row of the remote metadata table. The slug is its primary key.
type PostRow struct {
	Slug    string   `json:"slug"`
	Title   string   `json:"title"`
	Summary string   `json:"summary"`
	Tags    []string `json:"tags"`
}

// NewPostRow builds the table row for a post, defaulting absent optional fields.
func NewPostRow(slug string, fm FrontMatter) PostRow {
	tags := fm.Tags
	if tags == nil {
		tags = []string{}
	}
	return PostRow{
		Slug:    slug,
		Title:   fm.Title,
		Summary: fm.Summary,
		Tags:    tags,
	}
}

// StorageObject is an entry returned by a bucket listing.
type StorageObject struct {
	Name string `json:"name"`
}

// PublishResult describes a completed publish.
type PublishResult struct {
	Slug       string `json:"slug"`
	Title      string `json:"title"`
	Bucket     string `json:"bucket"`
	ObjectPath string `json:"object_path"`
	Table      string `json:"table"`
	Checksum   string `json:"checksum"`
}

// DeleteResult describes a completed delete.
type DeleteResult struct {
	Slug       string `json:"slug"`
	ObjectPath string `json:"object_path"`
	Table      string `json:"table"`
	KeptObject bool   `json:"kept_object"`
}

// Post locations reported by a listing.
const (
	LocationBoth   = "both"
	LocationBucket = "bucket"
	LocationTable  = "table"
)

// ListEntry is one slug found in the bucket, the table, or both.
type ListEntry struct {
	Slug     string `json:"slug"`
	Location string `json:"location"`
}
