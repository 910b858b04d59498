// Package config loads quiv settings.
//
// Settings come from, in increasing precedence: built-in defaults, a YAML
// config file, and environment variables. The config file is the path given
// with --config, or $XDG_CONFIG_HOME/quiv/config.yaml when it exists:
//
//	github:
//	  api_url: https://api.github.com
//	  token: ghp_...
//	http:
//	  connect_timeout: 10s
//	  timeout: 30s
//	git:
//	  binary: git
//	  timeout: 5m
//
// Environment variables use the QUIV_ prefix with dots replaced by
// underscores (QUIV_HTTP_TIMEOUT). The GitHub token is also read from
// GITHUB_TOKEN.
package config
