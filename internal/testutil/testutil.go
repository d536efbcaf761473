// Package testutil provides a fake Supabase backend for tests.
package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
)

// ServiceKey is the credential the fake accepts.
const ServiceKey = "test-service-key"

// Request is a request received by the fake, captured before routing.
type Request struct {
	Method   string
	Path     string
	RawQuery string
	Header   http.Header
	Body     []byte
}

// UploadedFile is the multipart "file" field of an upload.
type UploadedFile struct {
	Filename    string
	ContentType string
	Content     []byte
}

type failure struct {
	status int
	body   string
}

// FakeSupabase emulates the storage object API and a PostgREST table API.
type FakeSupabase struct {
	Server *httptest.Server

	mu       sync.Mutex
	requests []Request
	objects  map[string]UploadedFile
	rows     map[string]map[string]map[string]any
	failures map[string]failure
}

// NewFakeSupabase starts a fake backend that is closed when the test ends.
func NewFakeSupabase(t *testing.T) *FakeSupabase {
	t.Helper()
	f := &FakeSupabase{
		objects:  make(map[string]UploadedFile),
		rows:     make(map[string]map[string]map[string]any),
		failures: make(map[string]failure),
	}

	r := chi.NewRouter()
	r.Use(f.record)
	r.Use(f.authorize)
	r.Use(f.injectFailures)

	r.Post("/storage/v1/object/list/{bucket}", f.listObjects)
	r.Post("/storage/v1/object/{bucket}/*", f.uploadObject)
	r.Delete("/storage/v1/object/{bucket}/*", f.deleteObject)
	r.Post("/rest/v1/{table}", f.upsertRows)
	r.Get("/rest/v1/{table}", f.selectRows)
	r.Delete("/rest/v1/{table}", f.deleteRows)

	f.Server = httptest.NewServer(r)
	t.Cleanup(f.Server.Close)
	return f
}

// URL returns the base URL of the fake.
func (f *FakeSupabase) URL() string {
	return f.Server.URL
}

// FailOn makes every request whose method matches and whose path starts with
// pathPrefix answer with status and body.
func (f *FakeSupabase) FailOn(method, pathPrefix string, status int, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[method+" "+pathPrefix] = failure{status: status, body: body}
}

// Requests returns a copy of all requests seen so far.
func (f *FakeSupabase) Requests() []Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Request(nil), f.requests...)
}

// RequestsTo returns the recorded requests with the given method and path.
func (f *FakeSupabase) RequestsTo(method, path string) []Request {
	var out []Request
	for _, r := range f.Requests() {
		if r.Method == method && r.Path == path {
			out = append(out, r)
		}
	}
	return out
}

// Object returns the stored object at bucket/key.
func (f *FakeSupabase) Object(bucket, key string) (UploadedFile, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.objects[bucket+"/"+key]
	return o, ok
}

// PutObject seeds an object.
func (f *FakeSupabase) PutObject(bucket, key string, content []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[bucket+"/"+key] = UploadedFile{Filename: key, ContentType: "text/markdown", Content: content}
}

// Row returns the row with the given slug.
func (f *FakeSupabase) Row(table, slug string) (map[string]any, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[table][slug]
	return row, ok
}

// PutRow seeds a row keyed by its "slug" field.
func (f *FakeSupabase) PutRow(table string, row map[string]any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.putRowLocked(table, row)
}

func (f *FakeSupabase) putRowLocked(table string, row map[string]any) {
	slug, _ := row["slug"].(string)
	if f.rows[table] == nil {
		f.rows[table] = make(map[string]map[string]any)
	}
	merged := f.rows[table][slug]
	if merged == nil {
		merged = make(map[string]any)
	}
	for k, v := range row {
		merged[k] = v
	}
	f.rows[table][slug] = merged
}

func (f *FakeSupabase) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		r.Body = io.NopCloser(bytes.NewReader(body))

		f.mu.Lock()
		f.requests = append(f.requests, Request{
			Method:   r.Method,
			Path:     r.URL.Path,
			RawQuery: r.URL.RawQuery,
			Header:   r.Header.Clone(),
			Body:     body,
		})
		f.mu.Unlock()

		next.ServeHTTP(w, r)
	})
}

func (f *FakeSupabase) authorize(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+ServiceKey {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "invalid JWT"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (f *FakeSupabase) injectFailures(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		var hit failure
		found := false
		for key, fl := range f.failures {
			method, prefix, _ := strings.Cut(key, " ")
			if method == r.Method && strings.HasPrefix(r.URL.Path, prefix) {
				hit, found = fl, true
				break
			}
		}
		f.mu.Unlock()

		if found {
			w.WriteHeader(hit.status)
			_, _ = w.Write([]byte(hit.body))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (f *FakeSupabase) uploadObject(w http.ResponseWriter, r *http.Request) {
	bucket := chi.URLParam(r, "bucket")
	key := chi.URLParam(r, "*")

	if err := r.ParseMultipartForm(10 << 20); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	files := r.MultipartForm.File["file"]
	if len(files) != 1 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing file field"})
		return
	}
	fh := files[0]
	src, err := fh.Open()
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	defer src.Close()
	content, _ := io.ReadAll(src)

	f.mu.Lock()
	f.objects[bucket+"/"+key] = UploadedFile{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Content:     content,
	}
	f.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]string{"Key": bucket + "/" + key})
}

func (f *FakeSupabase) deleteObject(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "bucket") + "/" + chi.URLParam(r, "*")

	f.mu.Lock()
	_, ok := f.objects[id]
	delete(f.objects, id)
	f.mu.Unlock()

	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found", "message": "Object not found"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Successfully deleted"})
}

func (f *FakeSupabase) listObjects(w http.ResponseWriter, r *http.Request) {
	prefix := chi.URLParam(r, "bucket") + "/"

	f.mu.Lock()
	var names []string
	for id := range f.objects {
		if strings.HasPrefix(id, prefix) {
			names = append(names, strings.TrimPrefix(id, prefix))
		}
	}
	f.mu.Unlock()

	sort.Strings(names)
	out := make([]map[string]string, 0, len(names))
	for _, n := range names {
		out = append(out, map[string]string{"name": n})
	}
	writeJSON(w, http.StatusOK, out)
}

func (f *FakeSupabase) upsertRows(w http.ResponseWriter, r *http.Request) {
	table := chi.URLParam(r, "table")
	var rows []map[string]any
	if err := json.NewDecoder(r.Body).Decode(&rows); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	merge := strings.Contains(r.Header.Get("Prefer"), "resolution=merge-duplicates")
	for _, row := range rows {
		slug, _ := row["slug"].(string)
		if _, exists := f.rows[table][slug]; exists && !merge {
			writeJSON(w, http.StatusConflict, map[string]string{"code": "23505", "message": "duplicate key value"})
			return
		}
	}
	for _, row := range rows {
		f.putRowLocked(table, row)
	}
	w.WriteHeader(http.StatusCreated)
}

func (f *FakeSupabase) selectRows(w http.ResponseWriter, r *http.Request) {
	table := chi.URLParam(r, "table")
	column := r.URL.Query().Get("select")

	f.mu.Lock()
	out := make([]map[string]any, 0, len(f.rows[table]))
	for _, row := range f.rows[table] {
		out = append(out, map[string]any{column: row[column]})
	}
	f.mu.Unlock()

	writeJSON(w, http.StatusOK, out)
}

func (f *FakeSupabase) deleteRows(w http.ResponseWriter, r *http.Request) {
	table := chi.URLParam(r, "table")
	slug := strings.TrimPrefix(r.URL.Query().Get("slug"), "eq.")

	f.mu.Lock()
	delete(f.rows[table], slug)
	f.mu.Unlock()

	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WritePost writes a markdown file named name into a temp directory and returns its path.
func WritePost(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}
