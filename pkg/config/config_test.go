package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type sample struct {
	Name  string `yaml:"name"`
	Count int    `yaml:"count"`
}

type validated struct {
	Name string `yaml:"name"`
}

func (v *validated) Validate() error {
	if v.Name == "" {
		return errors.New("name is empty")
	}
	return nil
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestLoad_ExpandsEnvAndKeepsDefaults(t *testing.T) {
	t.Setenv("SAMPLE_NAME", "from-env")
	p := writeFile(t, "name: ${SAMPLE_NAME}\n")

	s := sample{Count: 7}
	if err := Load(p, &s); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Name != "from-env" {
		t.Errorf("name = %q", s.Name)
	}
	if s.Count != 7 {
		t.Errorf("count = %d, want default 7 kept", s.Count)
	}
}

func TestLoad_RunsValidator(t *testing.T) {
	p := writeFile(t, "name: \"\"\n")
	err := Load(p, &validated{})
	if err == nil || !strings.Contains(err.Error(), "name is empty") {
		t.Fatalf("err = %v, want validation failure", err)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if err := Load(filepath.Join(t.TempDir(), "nope.yaml"), &sample{}); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestSave_RoundTripAndNoOverwrite(t *testing.T) {
	p := filepath.Join(t.TempDir(), "out.yaml")
	if err := Save(p, "# sample\n", &sample{Name: "x", Count: 2}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	data, err := os.ReadFile(p)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "# sample\n") {
		t.Errorf("header missing: %q", data)
	}

	var got sample
	if err := Load(p, &got); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Name != "x" || got.Count != 2 {
		t.Errorf("got %+v", got)
	}

	if err := Save(p, "", &sample{}); !errors.Is(err, ErrExists) {
		t.Errorf("second Save err = %v, want ErrExists", err)
	}
}
