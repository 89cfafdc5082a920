package tracker

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// OpenOptions configures provider construction.
type OpenOptions struct {
	// Interactive allows the provider to prompt the terminal for
	// credentials missing from the environment. When false, providers
	// rely solely on environment variables and stored credentials.
	Interactive bool
}

// Opener builds a configured Client for one provider from its
// environment.
type Opener func(ctx context.Context, opts OpenOptions) (Client, error)

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Opener)
)

// Register makes a provider available to Open under the given name.
// Provider packages call Register from init, so importing a provider
// package is enough to enable it:
//
//	import _ "github.com/randalmurphal/trackwork/jira"
func Register(name string, open Opener) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[strings.ToLower(name)] = open
}

// Open builds a client for the named provider.
func Open(ctx context.Context, name string, opts OpenOptions) (Client, error) {
	registryMu.RLock()
	open, ok := registry[strings.ToLower(name)]
	registryMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %q (registered: %s)",
			ErrUnknownProvider, name, strings.Join(Providers(), ", "))
	}
	return open(ctx, opts)
}

// Providers returns the registered provider names, sorted.
func Providers() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DetectProvider guesses the provider name from a tracker URL.
func DetectProvider(rawURL string) (string, error) {
	rawURL = strings.ToLower(rawURL)

	switch {
	case strings.Contains(rawURL, "atlassian.net") || strings.Contains(rawURL, "jira"):
		return "jira", nil
	case strings.Contains(rawURL, "github.com"):
		return "github", nil
	case strings.Contains(rawURL, "gitlab"):
		return "gitlab", nil
	}

	return "", fmt.Errorf("%w: cannot detect provider from %q", ErrUnknownProvider, rawURL)
}
