package slug

import "testing"

func TestMake(t *testing.T) {
	cases := map[string]string{
		"Hello, World":          "hello-world",
		"My Post!":              "my-post",
		"  --Already-Slugged--": "already-slugged",
		"Café au lait":          "cafe-au-lait",
		"Go 1.25 release":       "go-1-25-release",
		"!!!":                   "",
		"":                      "",
	}
	for in, want := range cases {
		if got := Make(in); got != want {
			t.Errorf("Make(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestResolve_ExplicitWins(t *testing.T) {
	if got := Resolve("my-slug", "posts/Other Name.md", "Some Title"); got != "my-slug" {
		t.Errorf("got %q, want my-slug", got)
	}
}

func TestResolve_FileStem(t *testing.T) {
	if got := Resolve("", "drafts/My Post!.md", "Ignored Title"); got != "my-post" {
		t.Errorf("got %q, want my-post", got)
	}
}

func TestResolve_TitleFallback(t *testing.T) {
	if got := Resolve("", "", "Hello, World"); got != "hello-world" {
		t.Errorf("got %q, want hello-world", got)
	}
	// A stem with nothing sluggable falls through to the title too.
	if got := Resolve("", "!!!.md", "Hello, World"); got != "hello-world" {
		t.Errorf("got %q, want hello-world", got)
	}
}

func TestResolve_BlankExplicitIgnored(t *testing.T) {
	if got := Resolve("   ", "post.md", "T"); got != "post" {
		t.Errorf("got %q, want post", got)
	}
}

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"post.md":        "post",
		"nested/a.md":    "a",
		"plain":          "plain",
		"archive.tar.gz": "archive.tar",
	}
	for in, want := range cases {
		if got := Normalize(in); got != want {
			t.Errorf("Normalize(%q) = %q, want %q", in, got, want)
		}
	}
}
