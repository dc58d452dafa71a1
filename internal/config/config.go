package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"slices"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/cobra"
	"github.com/vitalvas/routedoc/openapi"
)

// DefaultFile is loaded when no --config flag is given and it exists in the
// working directory.
const DefaultFile = "routedoc.yaml"

var ErrInvalid = errors.New("invalid config")

type Config struct {
	Listen  string        `koanf:"listen"`
	Docs    DocsConfig    `koanf:"docs"`
	Logging LoggingConfig `koanf:"logging"`
	OpenAPI OpenAPIConfig `koanf:"openapi"`
	Auth    AuthConfig    `koanf:"auth"`
}

type DocsConfig struct {
	BasePath     string `koanf:"base-path"`
	UI           string `koanf:"ui"`
	Title        string `koanf:"title"`
	JSONFilename string `koanf:"json-filename"`
	YAMLFilename string `koanf:"yaml-filename"`
	Disable      bool   `koanf:"disable"`
}

type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

type OpenAPIConfig struct {
	Title                  string                          `koanf:"title"`
	Version                string                          `koanf:"version"`
	Description            string                          `koanf:"description"`
	Servers                []ServerConfig                  `koanf:"servers"`
	Tags                   []TagConfig                     `koanf:"tags"`
	SecuritySchemes        map[string]SecuritySchemeConfig `koanf:"security-schemes"`
	DefaultSecuritySchemes []string                        `koanf:"default-security-schemes"`
	TagsFromPath           bool                            `koanf:"tags-from-path"`
}

type ServerConfig struct {
	URL         string `koanf:"url"`
	Description string `koanf:"description"`
}

type TagConfig struct {
	Name        string `koanf:"name"`
	Description string `koanf:"description"`
}

type SecuritySchemeConfig struct {
	Type         string `koanf:"type"`
	Scheme       string `koanf:"scheme"`
	BearerFormat string `koanf:"bearer-format"`
	In           string `koanf:"in"`
	Name         string `koanf:"name"`
	Description  string `koanf:"description"`
}

// AuthConfig holds the credentials of the demo API.
type AuthConfig struct {
	Realm  string            `koanf:"realm"`
	Basic  map[string]string `koanf:"basic"`
	Tokens map[string]string `koanf:"tokens"`
}

// Default returns the configuration used when neither a file nor flags
// set a value.
func Default() Config {
	return Config{
		Listen: ":8080",
		Docs: DocsConfig{
			BasePath: "/docs",
			UI:       "swagger",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		OpenAPI: OpenAPIConfig{
			Title:        "Pet Store",
			Version:      "1.0.0",
			TagsFromPath: true,
			SecuritySchemes: map[string]SecuritySchemeConfig{
				"basic":  {Type: "http", Scheme: "basic"},
				"bearer": {Type: "http", Scheme: "bearer"},
			},
			DefaultSecuritySchemes: []string{"bearer"},
		},
		Auth: AuthConfig{
			Realm: "routedoc",
		},
	}
}

// BindFlags binds the flags shared by every command.
func BindFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()

	flags.StringP("config", "c", "", "Config file path (default: "+DefaultFile+")")
	flags.String("log-level", "", "Log level: debug, info, warn, error")
	flags.String("log-format", "", "Log format: text, json")
	flags.String("title", "", "API title")
	flags.String("api-version", "", "API version")
}

// BindServeFlags binds the flags of the serve command.
func BindServeFlags(cmd *cobra.Command) {
	flags := cmd.Flags()

	flags.StringP("listen", "l", "", "Listen address")
	flags.String("docs-path", "", "Base path of the documentation endpoints")
	flags.String("docs-ui", "", "Documentation UI: swagger, rapidoc, redoc")
}

// Load reads the config file (if any) and overlays the flags of cmd on
// top of the defaults.
func Load(cmd *cobra.Command) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaultsMap(), "."), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	configFile, _ := cmd.Flags().GetString("config")
	if configFile == "" {
		configFile, _ = cmd.PersistentFlags().GetString("config")
	}
	if configFile == "" {
		if _, err := os.Stat(DefaultFile); err == nil {
			configFile = DefaultFile
		}
	}

	if configFile != "" {
		if err := k.Load(file.Provider(configFile), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	flagsMap := buildFlagsMap(cmd)
	if len(flagsMap) > 0 {
		if err := k.Load(confmap.Provider(flagsMap, "."), nil); err != nil {
			return nil, fmt.Errorf("loading flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func defaultsMap() map[string]any {
	d := Default()

	schemes := make(map[string]any, len(d.OpenAPI.SecuritySchemes))
	for name, s := range d.OpenAPI.SecuritySchemes {
		schemes[name] = map[string]any{"type": s.Type, "scheme": s.Scheme}
	}

	return map[string]any{
		"listen":                           d.Listen,
		"docs.base-path":                   d.Docs.BasePath,
		"docs.ui":                          d.Docs.UI,
		"logging.level":                    d.Logging.Level,
		"logging.format":                   d.Logging.Format,
		"openapi.title":                    d.OpenAPI.Title,
		"openapi.version":                  d.OpenAPI.Version,
		"openapi.tags-from-path":           d.OpenAPI.TagsFromPath,
		"openapi.security-schemes":         schemes,
		"openapi.default-security-schemes": d.OpenAPI.DefaultSecuritySchemes,
		"auth.realm":                       d.Auth.Realm,
	}
}

func buildFlagsMap(cmd *cobra.Command) map[string]any {
	m := make(map[string]any)

	getString := func(name string) string {
		if v, err := cmd.Flags().GetString(name); err == nil && v != "" {
			return v
		}
		if v, err := cmd.PersistentFlags().GetString(name); err == nil && v != "" {
			return v
		}
		return ""
	}

	mapping := []struct{ flag, key string }{
		{"listen", "listen"},
		{"docs-path", "docs.base-path"},
		{"docs-ui", "docs.ui"},
		{"log-level", "logging.level"},
		{"log-format", "logging.format"},
		{"title", "openapi.title"},
		{"api-version", "openapi.version"},
	}
	for _, f := range mapping {
		if v := getString(f.flag); v != "" {
			m[f.key] = v
		}
	}

	return m
}

func (c *Config) Validate() error {
	if c.Listen != "" {
		if _, _, err := net.SplitHostPort(c.Listen); err != nil {
			return fmt.Errorf("%w: listen address %q: %v", ErrInvalid, c.Listen, err)
		}
	}

	if c.Docs.BasePath != "" && !strings.HasPrefix(c.Docs.BasePath, "/") {
		return fmt.Errorf("%w: docs base path must start with /: %s", ErrInvalid, c.Docs.BasePath)
	}

	validUIs := map[string]bool{"": true, "swagger": true, "rapidoc": true, "redoc": true}
	if !validUIs[c.Docs.UI] {
		return fmt.Errorf("%w: docs ui: %s (valid: swagger, rapidoc, redoc)", ErrInvalid, c.Docs.UI)
	}

	validLevels := map[string]bool{"": true, "debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("%w: log level: %s (valid: debug, info, warn, error)", ErrInvalid, c.Logging.Level)
	}

	validFormats := map[string]bool{"": true, "text": true, "json": true}
	if !validFormats[c.Logging.Format] {
		return fmt.Errorf("%w: log format: %s (valid: text, json)", ErrInvalid, c.Logging.Format)
	}

	if c.OpenAPI.Title == "" {
		return fmt.Errorf("%w: openapi title is required", ErrInvalid)
	}

	for name, s := range c.OpenAPI.SecuritySchemes {
		if s.Type == "" {
			return fmt.Errorf("%w: security scheme %s: type is required", ErrInvalid, name)
		}
	}

	for _, name := range c.OpenAPI.DefaultSecuritySchemes {
		if _, ok := c.OpenAPI.SecuritySchemes[name]; !ok {
			return fmt.Errorf("%w: default security scheme %s is not declared", ErrInvalid, name)
		}
	}

	return nil
}

// Logger builds the slog logger described by the logging section.
func (c *Config) Logger(w io.Writer) *slog.Logger {
	var level slog.Level
	switch c.Logging.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if c.Logging.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// GeneratorConfig converts the openapi section into a generator configuration.
func (c *Config) GeneratorConfig() openapi.Config {
	src := c.OpenAPI

	cfg := openapi.Config{
		Info: openapi.Info{
			Title:       src.Title,
			Version:     src.Version,
			Description: src.Description,
		},
		DefaultSecuritySchemes: slices.Clone(src.DefaultSecuritySchemes),
	}

	for _, s := range src.Servers {
		cfg.Servers = append(cfg.Servers, openapi.Server{URL: s.URL, Description: s.Description})
	}

	for _, t := range src.Tags {
		cfg.Tags = append(cfg.Tags, openapi.Tag{Name: t.Name, Description: t.Description})
	}

	if len(src.SecuritySchemes) > 0 {
		cfg.SecuritySchemes = make(map[string]*openapi.SecurityScheme, len(src.SecuritySchemes))
		for name, s := range src.SecuritySchemes {
			cfg.SecuritySchemes[name] = &openapi.SecurityScheme{
				Type:         s.Type,
				Scheme:       s.Scheme,
				BearerFormat: s.BearerFormat,
				In:           s.In,
				Name:         s.Name,
				Description:  s.Description,
			}
		}
	}

	if src.TagsFromPath {
		cfg.TagGenerator = openapi.TagFromFirstSegment
	}

	return cfg
}

// HandleConfig converts the docs section into serving options.
func (c *Config) HandleConfig() *openapi.HandleConfig {
	hc := &openapi.HandleConfig{
		Title:        c.Docs.Title,
		JSONFilename: c.Docs.JSONFilename,
		YAMLFilename: c.Docs.YAMLFilename,
	}

	switch c.Docs.UI {
	case "rapidoc":
		hc.UI = openapi.DocsRapiDoc
	case "redoc":
		hc.UI = openapi.DocsRedoc
	default:
		hc.UI = openapi.DocsSwaggerUI
	}

	return hc
}
