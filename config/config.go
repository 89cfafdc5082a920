package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// File locations.
const (
	globalConfigDir  = "trackwork"
	globalConfigFile = "config.yaml"
	localConfigName  = ".trackwork.yaml"
	envPrefix        = "TRACKWORK_"
)

// Configuration keys.
const (
	KeyProvider       = "provider"
	KeyJiraProject    = "jira_project_key"
	KeyJiraIssueType  = "jira_issue_type"
	KeyGitHubRepo     = "github_repository"
	KeyGitLabProject  = "gitlab_project"
	KeyMaxResults     = "max_results"
	KeyNoColor        = "no_color"
	KeyNonInteractive = "non_interactive"
)

// defaults are the built-in values.
var defaults = map[string]string{
	KeyProvider:      "jira",
	KeyJiraIssueType: "Task",
	KeyMaxResults:    "20",
}

// KnownKeys lists every configuration key, sorted for display.
func KnownKeys() []string {
	return []string{
		KeyGitHubRepo,
		KeyGitLabProject,
		KeyJiraIssueType,
		KeyJiraProject,
		KeyMaxResults,
		KeyNoColor,
		KeyNonInteractive,
		KeyProvider,
	}
}

// Resolver merges trackwork settings from defaults, the global file,
// the local file, and the environment.
type Resolver struct {
	globalPath string
	localPath  string
	gitRoot    string
	errWriter  io.Writer

	// Warnings collects non-fatal issues during resolution.
	Warnings []string
}

// NewResolver creates a resolver rooted at the current directory.
func NewResolver() *Resolver {
	r := &Resolver{errWriter: os.Stderr}

	if root := findGitRoot("."); root != "" {
		r.gitRoot = root
		r.localPath = filepath.Join(root, localConfigName)
	}
	if home, err := os.UserHomeDir(); err == nil {
		r.globalPath = filepath.Join(home, ".config", globalConfigDir, globalConfigFile)
	}

	return r
}

// NewResolverWithPaths creates a resolver with explicit file paths,
// for tests.
func NewResolverWithPaths(globalPath, localPath string) *Resolver {
	return &Resolver{
		globalPath: globalPath,
		localPath:  localPath,
		errWriter:  os.Stderr,
	}
}

func (r *Resolver) warn(msg string) {
	r.Warnings = append(r.Warnings, msg)
	if r.errWriter != nil {
		fmt.Fprintf(r.errWriter, "Warning: %s\n", msg)
	}
}

// Resolved holds the final merged configuration with per-key
// provenance.
type Resolved struct {
	values  map[string]string
	sources map[string]Source
}

// Get returns the value for a key, or empty string if not set.
func (c *Resolved) Get(key string) string {
	return c.values[key]
}

// Source returns the source of a key's value.
func (c *Resolved) Source(key string) Source {
	return c.sources[key]
}

// GetWithSource returns both the value and its source.
func (c *Resolved) GetWithSource(key string) (string, Source) {
	return c.values[key], c.sources[key]
}

// All returns a copy of all key-value pairs.
func (c *Resolved) All() map[string]string {
	result := make(map[string]string, len(c.values))
	for k, v := range c.values {
		result[k] = v
	}
	return result
}

// Resolve builds the final config by merging all layers.
// Priority (highest to lowest): env > local > global > defaults.
func (r *Resolver) Resolve() *Resolved {
	cfg := &Resolved{
		values:  make(map[string]string),
		sources: make(map[string]Source),
	}

	for key, value := range defaults {
		cfg.values[key] = value
		cfg.sources[key] = SourceDefault
	}

	r.applyFile(cfg, r.globalPath, SourceGlobal)
	r.applyFile(cfg, r.localPath, SourceLocal)
	r.applyEnv(cfg)

	return cfg
}

// ResolveWithFlags resolves config and applies flag overrides on top.
func (r *Resolver) ResolveWithFlags(flags map[string]string) *Resolved {
	cfg := r.Resolve()

	for key, value := range flags {
		if value != "" {
			cfg.values[key] = value
			cfg.sources[key] = SourceFlag
		}
	}

	return cfg
}

func (r *Resolver) applyFile(cfg *Resolved, path string, source Source) {
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return // Missing file is fine
	}

	var parsed map[string]any
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		r.warn(fmt.Sprintf("could not parse %s: %v", path, err))
		return
	}

	for key, value := range parsed {
		if !knownKey(key) {
			r.warn(fmt.Sprintf("%s: unknown key %q", path, key))
			continue
		}
		if strVal := toString(value); strVal != "" {
			cfg.values[key] = strVal
			cfg.sources[key] = source
		}
	}
}

func (r *Resolver) applyEnv(cfg *Resolved) {
	for _, key := range KnownKeys() {
		envKey := envPrefix + strings.ToUpper(key)
		if value := os.Getenv(envKey); value != "" {
			cfg.values[key] = value
			cfg.sources[key] = SourceEnv
		}
	}

	if _, hasNoColor := os.LookupEnv("NO_COLOR"); hasNoColor {
		cfg.values[KeyNoColor] = "true"
		cfg.sources[KeyNoColor] = SourceEnv
	}
}

// GitRoot returns the detected git root directory.
func (r *Resolver) GitRoot() string {
	return r.gitRoot
}

// GlobalPath returns the path to the global config file.
func (r *Resolver) GlobalPath() string {
	return r.globalPath
}

// LocalPath returns the path to the local config file.
func (r *Resolver) LocalPath() string {
	return r.localPath
}

func knownKey(key string) bool {
	for _, k := range KnownKeys() {
		if k == key {
			return true
		}
	}
	return false
}

func toString(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case bool:
		if val {
			return "true"
		}
		return "false"
	case int, int64, float64:
		return fmt.Sprintf("%v", val)
	default:
		return ""
	}
}

// findGitRoot walks up from startDir looking for a .git directory.
func findGitRoot(startDir string) string {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return ""
	}

	for {
		if info, err := os.Stat(filepath.Join(dir, ".git")); err == nil && info.IsDir() {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}
