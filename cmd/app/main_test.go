package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/starford/supamarker/internal/testutil"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := newRootCommand(&out).Run(context.Background(), append([]string{"supamarker"}, args...))
	return out.String(), err
}

func TestPublishAndDeleteCommands(t *testing.T) {
	fake := testutil.NewFakeSupabase(t)
	t.Setenv("SUPABASE_URL", fake.URL())
	t.Setenv("SUPABASE_SERVICE_KEY", testutil.ServiceKey)
	t.Setenv("SUPABASE_BUCKET", "")
	t.Setenv("SUPABASE_TABLE", "")
	path := testutil.WritePost(t, "post.md", "---\ntitle: Hello World\n---\n")

	out, err := runCLI(t, "publish", path)
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if !strings.Contains(out, "Published ✅: Hello World") {
		t.Errorf("publish output = %q", out)
	}

	out, err = runCLI(t, "delete", "--soft", "post")
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if !strings.Contains(out, "✓ Kept markdown in storage: blog/post") {
		t.Errorf("delete output = %q", out)
	}
	if _, ok := fake.Row("posts", "post"); ok {
		t.Error("row not deleted")
	}
}

func TestPublishRequiresPath(t *testing.T) {
	if _, err := runCLI(t, "publish"); err == nil {
		t.Fatal("publish without a path should fail")
	}
}

func TestMissingCredentials(t *testing.T) {
	t.Setenv("SUPABASE_URL", "")
	t.Setenv("SUPABASE_SERVICE_KEY", "")
	_, err := runCLI(t, "list")
	if err == nil || !strings.Contains(err.Error(), "SUPABASE_URL") {
		t.Fatalf("err = %v, want missing SUPABASE_URL", err)
	}
}
