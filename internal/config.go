package internal

import (
	"log/slog"
	"os"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// Environment variables read by ApplyEnv.
const (
	EnvURL        = "SUPABASE_URL"
	EnvServiceKey = "SUPABASE_SERVICE_KEY"
	EnvBucket     = "SUPABASE_BUCKET"
	EnvTable      = "SUPABASE_TABLE"
)

// Defaults.
const (
	DefaultBucket = "blog"
	DefaultTable  = "posts"
)

// Config represents the application configuration.
type Config struct {
	App      ApplicationConfig `yaml:"app"`
	Supabase SupabaseConfig    `yaml:"supabase"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	return c.Supabase.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
}

// SupabaseConfig identifies the remote project and where posts are written.
type SupabaseConfig struct {
	URL        string `yaml:"url"`
	ServiceKey string `yaml:"service_key"`
	Bucket     string `yaml:"bucket"`
	Table      string `yaml:"table"`
}

// Validate validates the Supabase configuration.
func (c *SupabaseConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.URL,
			validation.Required.Error("is required (set "+EnvURL+", e.g. https://xxxxx.supabase.co)"),
			is.URL),
		validation.Field(&c.ServiceKey,
			validation.Required.Error("is required (set "+EnvServiceKey+" to the service role key)")),
		validation.Field(&c.Bucket, validation.Required),
		validation.Field(&c.Table, validation.Required),
	)
}

// ApplyEnv overrides fields with the SUPABASE_* variables that lookup finds.
// Unset or empty variables leave the current value alone.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	for name, field := range map[string]*string{
		EnvURL:        &c.Supabase.URL,
		EnvServiceKey: &c.Supabase.ServiceKey,
		EnvBucket:     &c.Supabase.Bucket,
		EnvTable:      &c.Supabase.Table,
	} {
		if v, ok := lookup(name); ok && v != "" {
			*field = v
		}
	}
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelWarn,
		},
		Supabase: SupabaseConfig{
			Bucket: DefaultBucket,
			Table:  DefaultTable,
		},
	}
}
