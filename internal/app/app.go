package app

import (
	"github.com/firefly-engineering/skill-quiver/internal/config"
	"github.com/firefly-engineering/skill-quiver/internal/github"
	"github.com/firefly-engineering/skill-quiver/internal/manifest"
	"github.com/firefly-engineering/skill-quiver/internal/sync"
	"github.com/firefly-engineering/skill-quiver/internal/system"
	"github.com/firefly-engineering/skill-quiver/internal/transport"
)

// App holds the application dependencies
type App struct {
	// Config holds the loaded settings
	Config *config.Config

	// GitHub is the REST API client used for resolution and tarballs
	GitHub *github.Client

	// Executor runs external commands
	Executor system.CommandExecutor
}

// Option is a function that configures the App
type Option func(*App)

// WithConfig sets the settings
func WithConfig(cfg *config.Config) Option {
	return func(a *App) {
		a.Config = cfg
	}
}

// WithGitHub sets a custom GitHub client
func WithGitHub(client *github.Client) Option {
	return func(a *App) {
		a.GitHub = client
	}
}

// WithExecutor sets a custom command executor
func WithExecutor(exec system.CommandExecutor) Option {
	return func(a *App) {
		a.Executor = exec
	}
}

// New creates a new App with the given options.
// Missing dependencies are built from the config, which defaults to
// config.Default.
func New(opts ...Option) *App {
	app := &App{}

	for _, opt := range opts {
		opt(app)
	}

	if app.Config == nil {
		app.Config = config.Default()
	}
	if app.Executor == nil {
		app.Executor = system.DefaultExecutor()
	}
	if app.GitHub == nil {
		app.GitHub = newGitHubClient(app.Config)
	}

	return app
}

func newGitHubClient(cfg *config.Config) *github.Client {
	return github.NewClient(
		github.WithHTTPClient(github.NewHTTPClient(cfg.HTTP.ConnectTimeout, cfg.HTTP.Timeout)),
		github.WithBaseURL(cfg.GitHub.APIURL),
		github.WithToken(cfg.GitHub.Token),
		github.WithTimeout(cfg.HTTP.Timeout),
	)
}

// TransportOptions returns the sparse-checkout settings from the config.
func (a *App) TransportOptions() transport.Options {
	return transport.Options{
		GitBinary:  a.Config.Git.Binary,
		GitTimeout: a.Config.Git.Timeout,
	}
}

// Transport returns the strategy serving src.
func (a *App) Transport(src *manifest.Source) transport.Transport {
	return transport.Select(src, a.GitHub, a.Executor, a.TransportOptions())
}

// Engine builds a sync engine backed by the app's client and executor.
func (a *App) Engine(opts ...sync.EngineOption) *sync.Engine {
	return sync.NewEngine(sync.NewResolver(a.GitHub), a.Transport, opts...)
}

// Default is the default application instance
var Default = New()

// SetDefault sets the default application instance (used for testing)
func SetDefault(app *App) {
	Default = app
}

// ResetDefault resets to the default application instance
func ResetDefault() {
	Default = New()
}
