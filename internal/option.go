package internal

import (
	"io"
	"net/http"
)

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config     *Config
	stdout     io.Writer
	logOutput  io.Writer
	httpClient *http.Client
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithOutput sets where confirmation lines are printed.
func WithOutput(w io.Writer) Option {
	return func(a *application) {
		a.stdout = w
	}
}

// WithLogOutput sets where structured logs are written.
func WithLogOutput(w io.Writer) Option {
	return func(a *application) {
		a.logOutput = w
	}
}

// WithHTTPClient sets the client used for every remote call.
func WithHTTPClient(hc *http.Client) Option {
	return func(a *application) {
		a.httpClient = hc
	}
}
