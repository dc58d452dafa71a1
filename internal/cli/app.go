package cli

import (
	"log/slog"

	"github.com/vitalvas/routedoc/internal/config"
	"github.com/vitalvas/routedoc/internal/petstore"
	"github.com/vitalvas/routedoc/mux"
	"github.com/vitalvas/routedoc/muxhandlers"
	"github.com/vitalvas/routedoc/openapi"
)

// newApp wires the pet store API, its documentation and middleware.
func newApp(cfg *config.Config, logger *slog.Logger) (*mux.Router, *openapi.Spec, error) {
	specCfg := cfg.GeneratorConfig()
	specCfg.Logger = logger
	petstore.Configure(&specCfg)

	r := mux.NewRouter()
	r.Use(
		muxhandlers.RequestIDMiddleware(muxhandlers.RequestIDConfig{
			GenerateFunc: muxhandlers.GenerateUUIDv7,
			Logger:       logger,
		}),
		muxhandlers.AccessLogMiddleware(muxhandlers.AccessLogConfig{Logger: logger}),
		muxhandlers.RecoveryMiddleware(muxhandlers.RecoveryConfig{Logger: logger}),
		mux.CORSMethodMiddleware(r),
	)

	spec := openapi.NewSpec(specCfg)
	petstore.New(petstore.NewStore(), logger).Register(r, spec)

	if !cfg.Docs.Disable {
		spec.Handle(r, cfg.Docs.BasePath, cfg.HandleConfig())
	}

	providers, err := authenticators(cfg.Auth, logger)
	if err != nil {
		return nil, nil, err
	}
	if err := muxhandlers.ProtectRouter(r, providers); err != nil {
		return nil, nil, err
	}

	return r, spec, nil
}

// authenticators builds the "basic" and "bearer" providers. A provider
// without credentials rejects every request.
func authenticators(cfg config.AuthConfig, logger *slog.Logger) (map[string]muxhandlers.Authenticator, error) {
	basicCfg := muxhandlers.BasicAuthConfig{Realm: cfg.Realm, Credentials: cfg.Basic}
	if len(cfg.Basic) == 0 {
		logger.Warn("no basic credentials configured, basic auth rejects every request")
		basicCfg.ValidateFunc = func(string, string) bool { return false }
	}
	basic, err := muxhandlers.BasicAuth(basicCfg)
	if err != nil {
		return nil, err
	}

	bearerCfg := muxhandlers.BearerAuthConfig{Realm: cfg.Realm, Tokens: cfg.Tokens}
	if len(cfg.Tokens) == 0 {
		logger.Warn("no bearer tokens configured, bearer auth rejects every request")
		bearerCfg.ValidateFunc = func(string) (string, bool) { return "", false }
	}
	bearer, err := muxhandlers.BearerAuth(bearerCfg)
	if err != nil {
		return nil, err
	}

	return map[string]muxhandlers.Authenticator{
		"basic":  basic,
		"bearer": bearer,
	}, nil
}
