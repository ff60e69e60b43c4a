// Package config assembles run configuration. It is the only package that
// reads ambient process state; credentials are resolved here and passed
// explicitly into the provider constructors.
package config

import (
	"os"

	"github.com/0xshariq/timeline/internal/gateway"
)

// credentialEnv maps each platform to its well-known token variable.
var credentialEnv = map[gateway.Platform]string{
	gateway.GitHub:    "GITHUB_TOKEN",
	gateway.GitLab:    "GITLAB_TOKEN",
	gateway.Bitbucket: "BITBUCKET_TOKEN",
	gateway.SourceHut: "SRHT_TOKEN",
}

// Config carries everything one sweep needs.
type Config struct {
	Platform            gateway.Platform
	Identity            string
	Repositories        []string
	IncludeMergeCommits bool
	Concurrency         int
	Token               string
}

// Load builds a Config for the given platform and identity, resolving the
// platform's credential from its environment variable. An empty token is a
// valid state: anonymous access, subject to stricter rate limits.
func Load(platform gateway.Platform, identity string) *Config {
	return &Config{
		Platform:    platform,
		Identity:    identity,
		Concurrency: 1,
		Token:       getEnv(credentialEnv[platform], ""),
	}
}

// CredentialEnv returns the environment variable consulted for a
// platform's token.
func CredentialEnv(platform gateway.Platform) string {
	return credentialEnv[platform]
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
