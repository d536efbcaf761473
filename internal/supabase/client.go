// Package supabase is a minimal client for the Supabase storage and PostgREST
// endpoints used to publish posts.
package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"

	"github.com/starford/supamarker/internal/apperr"
	"github.com/starford/supamarker/internal/models"
)

const (
	storagePrefix = "/storage/v1/object"
	restPrefix    = "/rest/v1"

	markdownContentType = "text/markdown"
	listPageSize        = 1000
	maxResponseBody     = 8 << 20
)

// Client talks to one Supabase project with a service-role key.
type Client struct {
	baseURL string
	key     string
	http    *http.Client
	logger  *slog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *slog.Logger) ClientOption {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates a client for the project at baseURL.
func New(baseURL, serviceKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		key:     serviceKey,
		http:    http.DefaultClient,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// UploadObject stores content under bucket/key as a multipart "file" field.
func (c *Client) UploadObject(ctx context.Context, bucket, key, filename string, content []byte) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
	h.Set("Content-Type", markdownContentType)
	part, err := mw.CreatePart(h)
	if err != nil {
		return fmt.Errorf("supabase: upload object: %w", err)
	}
	if _, err := part.Write(content); err != nil {
		return fmt.Errorf("supabase: upload object: %w", err)
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("supabase: upload object: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.objectURL(bucket, key), &buf)
	if err != nil {
		return fmt.Errorf("supabase: upload object: %w", err)
	}
	req.Header.Set("Authorization", c.bearer())
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", mw.FormDataContentType())

	_, err = c.do(req, apperr.OpStorageUpload)
	return err
}

// DeleteObject removes bucket/key.
func (c *Client) DeleteObject(ctx context.Context, bucket, key string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.objectURL(bucket, key), nil)
	if err != nil {
		return fmt.Errorf("supabase: delete object: %w", err)
	}
	c.setAPIHeaders(req)
	req.Header.Set("Accept", "application/json")

	_, err = c.do(req, apperr.OpStorageDelete)
	return err
}

type listRequest struct {
	Prefix string     `json:"prefix"`
	Limit  int        `json:"limit"`
	Offset int        `json:"offset"`
	SortBy listSortBy `json:"sortBy"`
}

type listSortBy struct {
	Column string `json:"column"`
	Order  string `json:"order"`
}

// ListObjects returns the objects at the root of bucket.
func (c *Client) ListObjects(ctx context.Context, bucket string) ([]models.StorageObject, error) {
	payload, err := json.Marshal(listRequest{
		Limit:  listPageSize,
		SortBy: listSortBy{Column: "name", Order: "asc"},
	})
	if err != nil {
		return nil, fmt.Errorf("supabase: list objects: %w", err)
	}

	endpoint := c.baseURL + storagePrefix + "/list/" + url.PathEscape(bucket)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("supabase: list objects: %w", err)
	}
	c.setAPIHeaders(req)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	body, err := c.do(req, apperr.OpStorageList)
	if err != nil {
		return nil, err
	}
	var out []models.StorageObject
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("supabase: decode object list: %w", err)
	}
	return out, nil
}

// UpsertRows inserts rows into table, merging on primary-key conflicts.
func (c *Client) UpsertRows(ctx context.Context, table string, rows any) error {
	payload, err := json.Marshal(rows)
	if err != nil {
		return fmt.Errorf("supabase: encode rows: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tableURL(table, nil), bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("supabase: upsert rows: %w", err)
	}
	c.setAPIHeaders(req)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "resolution=merge-duplicates")

	_, err = c.do(req, apperr.OpMetadataUpsert)
	return err
}

// DeleteRows removes the rows of table where column equals value.
func (c *Client) DeleteRows(ctx context.Context, table, column, value string) error {
	q := url.Values{column: {"eq." + value}}
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.tableURL(table, q), nil)
	if err != nil {
		return fmt.Errorf("supabase: delete rows: %w", err)
	}
	c.setAPIHeaders(req)
	req.Header.Set("Accept", "application/json")

	_, err = c.do(req, apperr.OpMetadataDelete)
	return err
}

// SelectColumn returns the value of column for every row of table.
func (c *Client) SelectColumn(ctx context.Context, table, column string) ([]string, error) {
	q := url.Values{"select": {column}}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.tableURL(table, q), nil)
	if err != nil {
		return nil, fmt.Errorf("supabase: select rows: %w", err)
	}
	c.setAPIHeaders(req)
	req.Header.Set("Accept", "application/json")

	body, err := c.do(req, apperr.OpMetadataList)
	if err != nil {
		return nil, err
	}
	var rows []map[string]any
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("supabase: decode rows: %w", err)
	}
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		if v, ok := r[column].(string); ok {
			out = append(out, v)
		}
	}
	return out, nil
}

// do sends req and returns the response body. Non-2xx answers become an
// *apperr.RemoteError tagged with op.
func (c *Client) do(req *http.Request, op apperr.Op) ([]byte, error) {
	c.logger.Debug("supabase request",
		slog.String("op", string(op)),
		slog.String("method", req.Method),
		slog.String("url", req.URL.Redacted()))

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("supabase: %s: %w", op, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, fmt.Errorf("supabase: %s: read response: %w", op, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Debug("supabase request failed",
			slog.String("op", string(op)),
			slog.Int("status", resp.StatusCode))
		return nil, &apperr.RemoteError{Op: op, Status: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}

func (c *Client) objectURL(bucket, key string) string {
	segs := strings.Split(key, "/")
	for i, s := range segs {
		segs[i] = url.PathEscape(s)
	}
	return c.baseURL + storagePrefix + "/" + url.PathEscape(bucket) + "/" + strings.Join(segs, "/")
}

func (c *Client) tableURL(table string, q url.Values) string {
	u := c.baseURL + restPrefix + "/" + url.PathEscape(table)
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	return u
}

func (c *Client) bearer() string {
	return "Bearer " + c.key
}

func (c *Client) setAPIHeaders(req *http.Request) {
	req.Header.Set("Authorization", c.bearer())
	req.Header.Set("apikey", c.key)
}
