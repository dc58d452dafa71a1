package muxhandlers

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/vitalvas/routedoc/mux"
)

var (
	// ErrNoAuthSource is returned when an authenticator config has neither
	// a validation callback nor static credentials.
	ErrNoAuthSource = errors.New("auth: at least one of ValidateFunc or Credentials must be set")

	// ErrNoProviders is returned when an authenticate node names no provider.
	ErrNoProviders = errors.New("auth: no providers")

	// ErrUnknownProvider is returned when an authenticate node names a
	// provider that was not registered.
	ErrUnknownProvider = errors.New("auth: unknown provider")
)

type principalKey struct{}

// PrincipalFromContext returns the principal stored by the authentication
// middleware. Returns an empty string for unauthenticated requests.
func PrincipalFromContext(ctx context.Context) string {
	if p, ok := ctx.Value(principalKey{}).(string); ok {
		return p
	}

	return ""
}

// Authenticator verifies the credentials of a request.
type Authenticator interface {
	// Authenticate returns the principal of the request and whether the
	// credentials were accepted.
	Authenticate(r *http.Request) (principal string, ok bool)

	// Challenge returns the WWW-Authenticate value sent on rejection.
	Challenge() string
}

// BasicAuthConfig configures HTTP Basic Authentication.
//
// Spec reference: https://www.rfc-editor.org/rfc/rfc7617
type BasicAuthConfig struct {
	// Realm is the authentication realm sent in the WWW-Authenticate header.
	// Defaults to "Restricted" when empty.
	Realm string

	// ValidateFunc is called to validate credentials dynamically.
	// Takes priority over Credentials when both are set.
	ValidateFunc func(username, password string) bool

	// Credentials is a static map of username -> password pairs, compared
	// in constant time.
	Credentials map[string]string
}

type basicAuth struct {
	challenge   string
	validate    func(username, password string) bool
	credentials map[string]string
}

// BasicAuth returns an Authenticator for HTTP Basic Authentication. The
// principal is the username.
//
// It returns ErrNoAuthSource if both ValidateFunc and Credentials are nil/empty.
func BasicAuth(cfg BasicAuthConfig) (Authenticator, error) {
	if cfg.ValidateFunc == nil && len(cfg.Credentials) == 0 {
		return nil, ErrNoAuthSource
	}

	return &basicAuth{
		challenge:   fmt.Sprintf("Basic realm=%q", realmOrDefault(cfg.Realm)),
		validate:    cfg.ValidateFunc,
		credentials: cfg.Credentials,
	}, nil
}

func (a *basicAuth) Authenticate(r *http.Request) (string, bool) {
	username, password, ok := r.BasicAuth()
	if !ok {
		return "", false
	}

	if a.validate != nil {
		return username, a.validate(username, password)
	}

	expected, exists := a.credentials[username]
	// Compare even for unknown users so the response time does not
	// reveal which usernames exist.
	match := constantTimeEqual(password, expected)
	return username, exists && match
}

func (a *basicAuth) Challenge() string { return a.challenge }

// BearerAuthConfig configures bearer token authentication.
//
// Spec reference: https://www.rfc-editor.org/rfc/rfc6750
type BearerAuthConfig struct {
	// Realm is the authentication realm sent in the WWW-Authenticate header.
	// Defaults to "Restricted" when empty.
	Realm string

	// ValidateFunc resolves a token to a principal.
	// Takes priority over Tokens when both are set.
	ValidateFunc func(token string) (principal string, ok bool)

	// Tokens is a static map of token -> principal pairs.
	Tokens map[string]string
}

type bearerAuth struct {
	challenge string
	validate  func(token string) (string, bool)
	tokens    map[string]string
}

// BearerAuth returns an Authenticator for bearer tokens carried in the
// Authorization header.
func BearerAuth(cfg BearerAuthConfig) (Authenticator, error) {
	if cfg.ValidateFunc == nil && len(cfg.Tokens) == 0 {
		return nil, ErrNoAuthSource
	}

	return &bearerAuth{
		challenge: fmt.Sprintf("Bearer realm=%q", realmOrDefault(cfg.Realm)),
		validate:  cfg.ValidateFunc,
		tokens:    cfg.Tokens,
	}, nil
}

func (a *bearerAuth) Authenticate(r *http.Request) (string, bool) {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", false
	}

	if a.validate != nil {
		return a.validate(token)
	}

	for candidate, principal := range a.tokens {
		if constantTimeEqual(token, candidate) {
			return principal, true
		}
	}
	return "", false
}

func (a *bearerAuth) Challenge() string { return a.challenge }

// AuthMiddleware returns a middleware that accepts a request when any of
// the authenticators accepts it. Rejected requests get 401 Unauthorized
// with one WWW-Authenticate header per authenticator.
func AuthMiddleware(authenticators ...Authenticator) (mux.MiddlewareFunc, error) {
	if len(authenticators) == 0 {
		return nil, ErrNoProviders
	}

	challenges := make([]string, len(authenticators))
	for i, a := range authenticators {
		challenges[i] = a.Challenge()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, a := range authenticators {
				if principal, ok := a.Authenticate(r); ok {
					ctx := context.WithValue(r.Context(), principalKey{}, principal)
					next.ServeHTTP(w, r.WithContext(ctx))
					return
				}
			}

			unauthorized(w, challenges)
		})
	}, nil
}

// ProtectRouter attaches AuthMiddleware to the subrouter of every
// Authenticate group of the router, using the providers the group names.
// It returns ErrUnknownProvider when a group names a provider missing from
// providers.
func ProtectRouter(r *mux.Router, providers map[string]Authenticator) error {
	return r.Walk(func(route *mux.Route, _ *mux.Router, _ []*mux.Route) error {
		if !route.IsAuthenticated() {
			return nil
		}
		names := route.Providers()

		authenticators := make([]Authenticator, 0, len(names))
		for _, name := range names {
			a, ok := providers[name]
			if !ok {
				return fmt.Errorf("%w %q at %s", ErrUnknownProvider, name, routeName(route))
			}
			authenticators = append(authenticators, a)
		}

		mw, err := AuthMiddleware(authenticators...)
		if err != nil {
			return fmt.Errorf("%s: %w", routeName(route), err)
		}
		route.GetSubrouter().Use(mw)
		return nil
	})
}

// routeName names a route in errors.
func routeName(route *mux.Route) string {
	if tpl, err := route.GetPathTemplate(); err == nil {
		return tpl
	}
	return "group without path"
}

func realmOrDefault(realm string) string {
	if realm == "" {
		return "Restricted"
	}
	return realm
}

// constantTimeEqual compares two strings in constant time by first hashing
// them with SHA-256, which also hides length differences.
func constantTimeEqual(a, b string) bool {
	aHash := sha256.Sum256([]byte(a))
	bHash := sha256.Sum256([]byte(b))

	return subtle.ConstantTimeCompare(aHash[:], bHash[:]) == 1
}

// unauthorized writes a 401 response with the WWW-Authenticate challenges
// and an empty body.
func unauthorized(w http.ResponseWriter, challenges []string) {
	for _, c := range challenges {
		w.Header().Add("WWW-Authenticate", c)
	}
	w.WriteHeader(http.StatusUnauthorized)
}
