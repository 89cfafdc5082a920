package jira

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/randalmurphal/trackwork/credential"
	"github.com/randalmurphal/trackwork/prompt"
)

// AuthType represents the type of authentication to use.
type AuthType string

// Authentication types supported by the Jira client.
const (
	AuthAPIToken AuthType = "api_token" // Cloud: email + API token
	AuthBasic    AuthType = "basic"     // Server: username + password
	AuthPAT      AuthType = "pat"       // Server/DC: Personal Access Token
	AuthConnect  AuthType = "connect"   // Cloud: Atlassian Connect app JWT
)

// APIVersion selects which REST API version to talk to.
type APIVersion string

const (
	APIVersionAuto APIVersion = "auto" // v3 for *.atlassian.net, v2 otherwise
	APIVersionV2   APIVersion = "v2"   // Server/DC
	APIVersionV3   APIVersion = "v3"   // Cloud
)

// Config holds the configuration for the Jira client.
type Config struct {
	// URL is the base URL of the Jira instance.
	// For Cloud: https://your-domain.atlassian.net
	// For Server: https://jira.your-company.com
	URL string `yaml:"url"`

	// APIVersion specifies which API version to use. "auto" (default)
	// picks v3 for Cloud hostnames and v2 otherwise.
	APIVersion APIVersion `yaml:"api_version"`

	// Project is the default project key for creation and search.
	Project string `yaml:"project"`

	// IssueType is the issue type used for creation. Defaults to "Task".
	IssueType string `yaml:"issue_type"`

	// Auth contains authentication configuration.
	Auth AuthConfig `yaml:"auth"`

	// HTTP contains HTTP client configuration.
	HTTP HTTPConfig `yaml:"http"`
}

// AuthConfig holds authentication configuration.
type AuthConfig struct {
	// Type is the authentication method to use.
	Type AuthType `yaml:"type"`

	// Email is required for api_token auth (Cloud).
	Email string `yaml:"email"`

	// Token is the API token (Cloud) or PAT (Server/DC).
	Token string `yaml:"token"`

	// Username is required for basic auth.
	Username string `yaml:"username"`

	// Password is required for basic auth.
	Password string `yaml:"password"`

	// Atlassian Connect app credentials (connect auth).
	AppKey       string `yaml:"app_key"`
	SharedSecret string `yaml:"shared_secret"`
}

// HTTPConfig holds HTTP client configuration.
type HTTPConfig struct {
	// Timeout is the request timeout.
	Timeout time.Duration `yaml:"timeout"`

	// MaxRetries is the maximum number of retry attempts on transient
	// failures.
	MaxRetries int `yaml:"max_retries"`

	// RetryWait is the initial wait between retries, doubled per attempt.
	RetryWait time.Duration `yaml:"retry_wait"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		APIVersion: APIVersionAuto,
		IssueType:  "Task",
		Auth:       AuthConfig{Type: AuthAPIToken},
		HTTP: HTTPConfig{
			Timeout:    30 * time.Second,
			MaxRetries: 3,
			RetryWait:  1 * time.Second,
		},
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.URL == "" {
		return ErrConfigURLRequired
	}

	if c.Auth.Type == "" {
		return ErrConfigAuthTypeRequired
	}

	switch c.Auth.Type {
	case AuthAPIToken:
		if c.Auth.Email == "" || c.Auth.Token == "" {
			return ErrConfigAPITokenAuth
		}
	case AuthBasic:
		if c.Auth.Username == "" || c.Auth.Password == "" {
			return ErrConfigBasicAuth
		}
	case AuthPAT:
		if c.Auth.Token == "" {
			return ErrConfigPATAuth
		}
	case AuthConnect:
		if c.Auth.AppKey == "" || c.Auth.SharedSecret == "" {
			return ErrConfigConnectAuth
		}
	default:
		return ErrConfigAuthTypeInvalid
	}

	if c.APIVersion != "" && c.APIVersion != APIVersionAuto &&
		c.APIVersion != APIVersionV2 && c.APIVersion != APIVersionV3 {
		return ErrConfigVersionInvalid
	}

	return nil
}

// GetAPIVersion returns the effective API version. "auto" resolves to
// v3 for *.atlassian.net hosts and v2 for everything else.
func (c *Config) GetAPIVersion() APIVersion {
	if c.APIVersion != "" && c.APIVersion != APIVersionAuto {
		return c.APIVersion
	}
	if strings.Contains(c.URL, ".atlassian.net") {
		return APIVersionV3
	}
	return APIVersionV2
}

// Clone returns a copy of the config.
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}
	clone := *c
	return &clone
}

// Environment variables read by ConfigFromEnv.
const (
	EnvBaseURL   = "JIRA_BASE_URL"
	EnvUserEmail = "JIRA_USER_EMAIL"
	EnvAPIToken  = "JIRA_API_TOKEN"
	EnvAuthType  = "JIRA_AUTH_TYPE"
	EnvUsername  = "JIRA_USERNAME"
	EnvPassword  = "JIRA_PASSWORD"
	EnvProject   = "JIRA_PROJECT_KEY"
	EnvIssueType = "JIRA_ISSUE_TYPE"
)

// Keyring entry names used for stored Jira credentials.
const (
	credBaseURL = "jira_base_url"
	credEmail   = "jira_user_email"
	credToken   = "jira_api_token"
)

// ConfigFromEnv builds a Config from the environment. Each credential
// resolves in order: environment variable, OS keyring, then (when
// interactive) a terminal prompt. Prompted values are saved back to
// the keyring for the next run.
func ConfigFromEnv(interactive bool) (*Config, error) {
	cfg := DefaultConfig()

	if t := os.Getenv(EnvAuthType); t != "" {
		cfg.Auth.Type = AuthType(t)
	}
	cfg.Project = os.Getenv(EnvProject)
	if it := os.Getenv(EnvIssueType); it != "" {
		cfg.IssueType = it
	}

	p := prompt.New()
	res := &credentialResolver{interactive: interactive}

	url, err := res.lookup(EnvBaseURL, credBaseURL, func() (string, error) {
		return p.Line("Jira base URL (e.g. https://your-domain.atlassian.net): ")
	})
	if err != nil {
		return nil, err
	}
	cfg.URL = strings.TrimRight(url, "/")

	switch cfg.Auth.Type {
	case AuthAPIToken:
		cfg.Auth.Email, err = res.lookup(EnvUserEmail, credEmail, func() (string, error) {
			return p.Line("Jira account email: ")
		})
		if err != nil {
			return nil, err
		}
		cfg.Auth.Token, err = res.lookup(EnvAPIToken, credToken, func() (string, error) {
			return p.Password("Jira API token: ")
		})
		if err != nil {
			return nil, err
		}
	case AuthBasic:
		cfg.Auth.Username = os.Getenv(EnvUsername)
		cfg.Auth.Password = os.Getenv(EnvPassword)
	case AuthPAT:
		cfg.Auth.Token, err = res.lookup(EnvAPIToken, credToken, func() (string, error) {
			return p.Password("Jira personal access token: ")
		})
		if err != nil {
			return nil, err
		}
	}

	if err := res.missingErr(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("jira config: %w", err)
	}
	return cfg, nil
}

// ClearCredentials removes stored Jira credentials from the keyring.
func ClearCredentials() error {
	for _, name := range []string{credBaseURL, credEmail, credToken} {
		if err := credential.Delete(name); err != nil {
			return err
		}
	}
	return nil
}

// credentialResolver resolves credentials one at a time, recording the
// names it could not find instead of failing on the first one, so a
// non-interactive run reports everything that is missing at once.
type credentialResolver struct {
	interactive bool
	missing     []string
}

// lookup resolves one credential: env var first, then the OS keyring,
// then an interactive prompt. Prompted values are stored in the
// keyring; keyring failures degrade to the next source.
func (r *credentialResolver) lookup(envVar, keyName string, ask func() (string, error)) (string, error) {
	if v := os.Getenv(envVar); v != "" {
		return v, nil
	}

	if v, err := credential.Get(keyName); err == nil && v != "" {
		return v, nil
	}

	if !r.interactive {
		r.missing = append(r.missing, envVar)
		return "", nil
	}

	v, err := ask()
	if err != nil {
		return "", fmt.Errorf("jira config: read %s: %w", envVar, err)
	}
	v = strings.TrimSpace(v)
	if v == "" {
		r.missing = append(r.missing, envVar)
		return "", nil
	}

	_ = credential.Set(keyName, v)

	return v, nil
}

// missingErr reports every credential the pass could not resolve.
func (r *credentialResolver) missingErr() error {
	if len(r.missing) == 0 {
		return nil
	}
	return fmt.Errorf("jira config: missing required settings: %s", strings.Join(r.missing, ", "))
}
