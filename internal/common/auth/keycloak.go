// Package auth verifies admin bearer tokens against Keycloak.
package auth

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	apperrors "advisor-routing/internal/common/errors"
	httpclient "advisor-routing/internal/common/http"
)

const maxCacheTTL = 30 * time.Second

// Principal is the verified identity behind an admin token.
type Principal struct {
	Subject  string
	Username string
	Email    string
	Roles    []string
}

func (p *Principal) HasRole(role string) bool {
	for _, r := range p.Roles {
		if r == role {
			return true
		}
	}
	return false
}

type introspection struct {
	Active            bool   `json:"active"`
	Subject           string `json:"sub"`
	PreferredUsername string `json:"preferred_username"`
	Email             string `json:"email"`
	ExpiresAt         int64  `json:"exp"`
	RealmAccess       struct {
		Roles []string `json:"roles"`
	} `json:"realm_access"`
}

type cachedPrincipal struct {
	principal *Principal
	expires   time.Time
}

// KeycloakClient introspects access tokens with the confidential client's
// credentials. Active tokens are cached briefly to spare Keycloak a round
// trip per admin request.
type KeycloakClient struct {
	baseURL      string
	realm        string
	clientID     string
	clientSecret string
	http         *httpclient.Client

	mu    sync.Mutex
	cache map[string]cachedPrincipal
	now   func() time.Time
}

func NewKeycloakClient(baseURL, realm, clientID, clientSecret string) *KeycloakClient {
	return &KeycloakClient{
		baseURL:      strings.TrimSuffix(baseURL, "/"),
		realm:        realm,
		clientID:     clientID,
		clientSecret: clientSecret,
		http:         httpclient.NewClient(10 * time.Second),
		cache:        make(map[string]cachedPrincipal),
		now:          time.Now,
	}
}

// Introspect returns the principal for an active token or an
// AUTHENTICATION_ERROR when the token is inactive or cannot be checked.
func (k *KeycloakClient) Introspect(ctx context.Context, token string) (*Principal, error) {
	if token == "" {
		return nil, apperrors.NewAuthenticationError("missing bearer token")
	}
	if p := k.cached(token); p != nil {
		return p, nil
	}

	form := url.Values{}
	form.Set("token", token)
	form.Set("client_id", k.clientID)
	form.Set("client_secret", k.clientSecret)

	endpoint := fmt.Sprintf("%s/realms/%s/protocol/openid-connect/token/introspect", k.baseURL, k.realm)
	var resp introspection
	if err := k.http.PostForm(ctx, endpoint, nil, form.Encode(), &resp); err != nil {
		return nil, apperrors.NewAuthenticationError(fmt.Sprintf("introspection failed: %v", err))
	}
	if !resp.Active {
		return nil, apperrors.NewAuthenticationError("token is not active")
	}

	p := &Principal{
		Subject:  resp.Subject,
		Username: resp.PreferredUsername,
		Email:    resp.Email,
		Roles:    resp.RealmAccess.Roles,
	}
	k.store(token, p, resp.ExpiresAt)
	return p, nil
}

func (k *KeycloakClient) cached(token string) *Principal {
	k.mu.Lock()
	defer k.mu.Unlock()
	entry, ok := k.cache[token]
	if !ok {
		return nil
	}
	if k.now().After(entry.expires) {
		delete(k.cache, token)
		return nil
	}
	return entry.principal
}

func (k *KeycloakClient) store(token string, p *Principal, exp int64) {
	expires := k.now().Add(maxCacheTTL)
	if exp > 0 {
		if tokenExp := time.Unix(exp, 0); tokenExp.Before(expires) {
			expires = tokenExp
		}
	}
	k.mu.Lock()
	k.cache[token] = cachedPrincipal{principal: p, expires: expires}
	k.mu.Unlock()
}
