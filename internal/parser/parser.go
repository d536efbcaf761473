// Package parser extracts the YAML frontmatter block from a Markdown post.
package parser

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/starford/supamarker/internal/apperr"
	"github.com/starford/supamarker/internal/models"
)

// Delim is the frontmatter marker.
const Delim = "---"

// Parse splits text into its frontmatter and the remaining body.
//
// A document that does not start with Delim (after leading whitespace) has no
// frontmatter: Parse returns a nil FrontMatter, the original text and no error.
// A document that opens a block but never closes it is malformed.
func Parse(text string) (*models.FrontMatter, string, error) {
	trimmed := strings.TrimLeft(text, " \t\r\n")
	if !strings.HasPrefix(trimmed, Delim) {
		return nil, text, nil
	}

	// parts[0] is whatever precedes the opening marker and is always empty here.
	parts := strings.SplitN(trimmed, Delim, 3)
	if len(parts) < 3 {
		return nil, "", fmt.Errorf("no closing frontmatter marker: %w", apperr.ErrMalformedFrontmatter)
	}

	fm, err := decode(strings.TrimSpace(parts[1]))
	if err != nil {
		return nil, "", err
	}

	body := strings.TrimLeft(parts[2], "\n")
	return fm, body, nil
}

func decode(block string) (*models.FrontMatter, error) {
	var fm models.FrontMatter
	if err := yaml.Unmarshal([]byte(block), &fm); err != nil {
		return nil, &apperr.FrontmatterError{Err: err}
	}
	if err := fm.Validate(); err != nil {
		return nil, &apperr.FrontmatterError{Err: err}
	}
	return &fm, nil
}
