package jira

import (
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestQueryStringHash(t *testing.T) {
	// Canonical request per the Connect spec: method upper-cased,
	// query keys sorted.
	u1, _ := url.Parse("https://acme.atlassian.net/rest/api/3/search?startAt=0&jql=project%20%3D%20X")
	u2, _ := url.Parse("https://acme.atlassian.net/rest/api/3/search?jql=project%20%3D%20X&startAt=0")

	if QueryStringHash("get", u1) != QueryStringHash("GET", u2) {
		t.Error("qsh should be independent of query order and method case")
	}

	u3, _ := url.Parse("https://acme.atlassian.net/rest/api/3/search?jql=other")
	if QueryStringHash("GET", u1) == QueryStringHash("GET", u3) {
		t.Error("different queries produced the same qsh")
	}
}

func TestConnectTokenClaims(t *testing.T) {
	auth := NewConnectAuth("com.example.app", "shhh")
	auth.now = func() time.Time { return time.Unix(1700000000, 0) }

	u, _ := url.Parse("https://acme.atlassian.net/rest/api/3/issue/PROJ-1")
	signed, err := auth.Token("GET", u)
	if err != nil {
		t.Fatalf("Token: %v", err)
	}

	parsed, err := jwt.Parse(signed, func(tok *jwt.Token) (any, error) {
		return []byte("shhh"), nil
	}, jwt.WithValidMethods([]string{"HS256"}), jwt.WithoutClaimsValidation())
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}

	claims := parsed.Claims.(jwt.MapClaims)
	if claims["iss"] != "com.example.app" {
		t.Errorf("iss = %v", claims["iss"])
	}
	if claims["iat"].(float64) != 1700000000 {
		t.Errorf("iat = %v", claims["iat"])
	}
	if claims["exp"].(float64) != float64(1700000000+180) {
		t.Errorf("exp = %v", claims["exp"])
	}
	if claims["qsh"] != QueryStringHash("GET", u) {
		t.Errorf("qsh = %v", claims["qsh"])
	}
}

func TestConnectSignSetsHeader(t *testing.T) {
	auth := NewConnectAuth("com.example.app", "shhh")

	req, _ := http.NewRequest("GET", "https://acme.atlassian.net/rest/api/3/myself", nil)
	if err := auth.Sign(req); err != nil {
		t.Fatalf("Sign: %v", err)
	}

	if got := req.Header.Get("Authorization"); !strings.HasPrefix(got, "JWT ") {
		t.Errorf("Authorization = %q, want JWT prefix", got)
	}
}
