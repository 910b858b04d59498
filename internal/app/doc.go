// Package app provides the application context for quiv.
//
// This package manages application-wide dependencies using the functional
// options pattern, enabling easy testing through dependency injection.
//
// # App Context
//
// The App struct holds core dependencies:
//
//	type App struct {
//	    Config   *config.Config          // Loaded settings
//	    GitHub   *github.Client          // REST API client
//	    Executor system.CommandExecutor  // Runs git
//	}
//
// # Creating an App
//
//	// Production usage
//	cfg, err := config.Load("")
//	a := app.New(app.WithConfig(cfg))
//
//	// Testing against a fake API and a mock git
//	a := app.New(
//	    app.WithConfig(cfg),
//	    app.WithGitHub(github.NewClient(github.WithBaseURL(server.URL))),
//	    app.WithExecutor(system.NewMockExecutor()),
//	)
//
// Engine builds a sync engine whose resolver and transports share these
// dependencies.
package app
