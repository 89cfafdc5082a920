package tracker

import (
	"context"
	"errors"
	"testing"
)

func TestOpenRegisteredProvider(t *testing.T) {
	mock := &MockClient{}
	Register("test-reg", func(ctx context.Context, opts OpenOptions) (Client, error) {
		return mock, nil
	})

	client, err := Open(context.Background(), "TEST-REG", OpenOptions{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if client != mock {
		t.Error("Open returned a different client")
	}
}

func TestOpenUnknownProvider(t *testing.T) {
	_, err := Open(context.Background(), "nonexistent", OpenOptions{})
	if !errors.Is(err, ErrUnknownProvider) {
		t.Errorf("Open(nonexistent) err = %v, want ErrUnknownProvider", err)
	}
}

func TestOpenPassesOptions(t *testing.T) {
	var got OpenOptions
	Register("test-opts", func(ctx context.Context, opts OpenOptions) (Client, error) {
		got = opts
		return &MockClient{}, nil
	})

	if _, err := Open(context.Background(), "test-opts", OpenOptions{Interactive: true}); err != nil {
		t.Fatalf("Open: %v", err)
	}
	if !got.Interactive {
		t.Error("Interactive option not forwarded")
	}
}

func TestDetectProvider(t *testing.T) {
	tests := []struct {
		url  string
		want string
		ok   bool
	}{
		{"https://acme.atlassian.net", "jira", true},
		{"https://jira.internal.example.com", "jira", true},
		{"https://github.com/acme/widgets", "github", true},
		{"https://gitlab.com/acme/widgets", "gitlab", true},
		{"https://gitlab.example.com/acme", "gitlab", true},
		{"https://tracker.example.com", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			got, err := DetectProvider(tt.url)
			if tt.ok && err != nil {
				t.Fatalf("DetectProvider(%q): %v", tt.url, err)
			}
			if !tt.ok && !errors.Is(err, ErrUnknownProvider) {
				t.Fatalf("DetectProvider(%q) err = %v, want ErrUnknownProvider", tt.url, err)
			}
			if got != tt.want {
				t.Errorf("DetectProvider(%q) = %q, want %q", tt.url, got, tt.want)
			}
		})
	}
}
