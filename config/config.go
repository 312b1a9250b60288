package config

import (
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/randalmurphal/jirarest/auth"
	"github.com/randalmurphal/jirarest/jira"
)

// Configuration keys. Nested YAML maps are addressed with dotted keys, so
// "auth.type" is the type field of the auth section.
const (
	KeyURL              = "url"
	KeyAPIVersion       = "api_version"
	KeyAuthType         = "auth.type"
	KeyAuthEmail        = "auth.email"
	KeyAuthToken        = "auth.token"
	KeyAuthUsername     = "auth.username"
	KeyAuthPassword     = "auth.password"
	KeyAuthAccessToken  = "auth.access_token"
	KeyAuthClientID     = "auth.client_id"
	KeyAuthClientSecret = "auth.client_secret"
	KeyAuthTokenURL     = "auth.token_url"
	KeyAuthScopes       = "auth.scopes"
	KeyAuthAppKey       = "auth.app_key"
	KeyAuthSharedSecret = "auth.shared_secret"
	KeyHTTPTimeout      = "http.timeout"
	KeyHTTPMaxIdleConns = "http.max_idle_conns"
	KeyHTTPIdleTimeout  = "http.idle_conn_timeout"
	KeyHTTPUserAgent    = "http.user_agent"
	KeyNoColor          = "no_color"
)

// Keys lists every key the resolver understands.
var Keys = []string{
	KeyURL, KeyAPIVersion,
	KeyAuthType, KeyAuthEmail, KeyAuthToken, KeyAuthUsername, KeyAuthPassword,
	KeyAuthAccessToken, KeyAuthClientID, KeyAuthClientSecret, KeyAuthTokenURL,
	KeyAuthScopes, KeyAuthAppKey, KeyAuthSharedSecret,
	KeyHTTPTimeout, KeyHTTPMaxIdleConns, KeyHTTPIdleTimeout, KeyHTTPUserAgent,
	KeyNoColor,
}

var secretKeys = []string{
	KeyAuthToken, KeyAuthPassword, KeyAuthAccessToken, KeyAuthClientSecret, KeyAuthSharedSecret,
}

// IsSecret reports whether key holds a credential.
func IsSecret(key string) bool {
	return slices.Contains(secretKeys, key)
}

// ResolverConfig configures the hierarchical config resolver.
type ResolverConfig struct {
	// EnvPrefix is prepended to key names for environment variable lookup.
	// With EnvPrefix "JIRAREST_", key "auth.type" maps to JIRAREST_AUTH_TYPE.
	EnvPrefix string

	// GlobalConfigDir is the name of the directory under ~/.config/
	// where the global config is stored.
	GlobalConfigDir string

	// GlobalConfigFile is the filename for global config.
	// Defaults to "config.yaml" if empty.
	GlobalConfigFile string

	// LocalConfigName is the filename of the local config, looked up from
	// StartDir towards the filesystem root.
	LocalConfigName string

	// StartDir is where the local config search begins. Defaults to ".".
	StartDir string

	// Defaults provides the default values for configuration keys.
	Defaults map[string]string

	// ErrWriter is where warnings are written.
	// Defaults to os.Stderr if nil.
	ErrWriter io.Writer
}

// DefaultResolverConfig returns the settings used by the jirarest command:
// ~/.config/jirarest/config.yaml, the nearest .jirarest.yaml, and
// JIRAREST_* environment variables over the defaults of jira.DefaultConfig.
func DefaultResolverConfig() ResolverConfig {
	return ResolverConfig{
		EnvPrefix:       "JIRAREST_",
		GlobalConfigDir: "jirarest",
		LocalConfigName: ".jirarest.yaml",
		Defaults:        Flatten(jira.DefaultConfig()),
	}
}

func (c ResolverConfig) globalConfigFile() string {
	if c.GlobalConfigFile != "" {
		return c.GlobalConfigFile
	}
	return "config.yaml"
}

// Resolver handles hierarchical configuration resolution.
type Resolver struct {
	config     ResolverConfig
	globalPath string
	localPath  string

	// Warnings collects non-fatal issues during resolution.
	Warnings []string
}

// NewResolver creates a new configuration resolver.
func NewResolver(cfg ResolverConfig) *Resolver {
	resolver := &Resolver{config: cfg}

	if cfg.ErrWriter == nil {
		resolver.config.ErrWriter = os.Stderr
	}

	if cfg.LocalConfigName != "" {
		start := cfg.StartDir
		if start == "" {
			start = "."
		}
		resolver.localPath = findUp(start, cfg.LocalConfigName)
	}

	if cfg.GlobalConfigDir != "" {
		if home, err := os.UserHomeDir(); err == nil {
			resolver.globalPath = filepath.Join(
				home, ".config", cfg.GlobalConfigDir, cfg.globalConfigFile(),
			)
		}
	}

	return resolver
}

// NewResolverWithPaths creates a resolver with explicit global and local paths.
// Either path may be empty to skip that layer.
func NewResolverWithPaths(cfg ResolverConfig, globalPath, localPath string) *Resolver {
	resolver := &Resolver{
		config:     cfg,
		globalPath: globalPath,
		localPath:  localPath,
	}

	if cfg.ErrWriter == nil {
		resolver.config.ErrWriter = os.Stderr
	}

	return resolver
}

func (r *Resolver) warn(msg string) {
	r.Warnings = append(r.Warnings, msg)
	if r.config.ErrWriter != nil {
		fmt.Fprintf(r.config.ErrWriter, "Warning: %s\n", msg)
	}
}

// Resolved holds the final merged configuration.
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

// Display returns the value of key for printing, with secrets masked.
func (c *Resolved) Display(key string) string {
	if IsSecret(key) {
		return auth.MaskSecret(c.values[key])
	}
	return c.values[key]
}

// All returns a copy of all key-value pairs.
func (c *Resolved) All() map[string]string {
	return maps.Clone(c.values)
}

// Keys returns all configuration keys, sorted.
func (c *Resolved) Keys() []string {
	return slices.Sorted(maps.Keys(c.values))
}

// Resolve builds the final config by merging all sources.
// Priority (highest to lowest): env > local > global > defaults.
func (r *Resolver) Resolve() *Resolved {
	cfg := &Resolved{
		values:  make(map[string]string),
		sources: make(map[string]Source),
	}

	for key, value := range r.config.Defaults {
		cfg.values[key] = value
		cfg.sources[key] = SourceDefault
	}
	r.applyFile(cfg, r.globalPath, SourceGlobal)
	r.applyFile(cfg, r.localPath, SourceLocal)
	r.applyEnv(cfg)

	return cfg
}

// ResolveWithFlags resolves config and applies flag overrides.
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
		return // File doesn't exist - not an error
	}

	var parsed map[string]any
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		r.warn(fmt.Sprintf("could not parse %s: %v", path, err))
		return
	}

	for key, value := range flattenYAML("", parsed) {
		if !slices.Contains(Keys, key) {
			r.warn(fmt.Sprintf("%s: unknown key %q", path, key))
			continue
		}
		cfg.values[key] = value
		cfg.sources[key] = source
	}
}

func (r *Resolver) applyEnv(cfg *Resolved) {
	if r.config.EnvPrefix != "" {
		for _, key := range Keys {
			if value := os.Getenv(EnvName(r.config.EnvPrefix, key)); value != "" {
				cfg.values[key] = value
				cfg.sources[key] = SourceEnv
			}
		}
	}

	// NO_COLOR is honored regardless of prefix.
	if _, hasNoColor := os.LookupEnv("NO_COLOR"); hasNoColor {
		cfg.values[KeyNoColor] = "true"
		cfg.sources[KeyNoColor] = SourceEnv
	}
}

// EnvName returns the environment variable for key, e.g.
// EnvName("JIRAREST_", "auth.type") is "JIRAREST_AUTH_TYPE".
func EnvName(prefix, key string) string {
	return prefix + strings.ToUpper(strings.NewReplacer(".", "_", "-", "_").Replace(key))
}

// GlobalPath returns the path to the global config file.
func (r *Resolver) GlobalPath() string {
	return r.globalPath
}

// LocalPath returns the path to the local config file, empty when none
// was found.
func (r *Resolver) LocalPath() string {
	return r.localPath
}

// JiraConfig converts the resolved values into a client configuration.
// The result is not validated; jira.NewClient does that.
func (c *Resolved) JiraConfig() (*jira.Config, error) {
	cfg := &jira.Config{
		URL:        c.values[KeyURL],
		APIVersion: jira.APIVersion(c.values[KeyAPIVersion]),
		Auth: jira.AuthConfig{
			Type:         jira.AuthType(c.values[KeyAuthType]),
			Email:        c.values[KeyAuthEmail],
			Token:        c.values[KeyAuthToken],
			Username:     c.values[KeyAuthUsername],
			Password:     c.values[KeyAuthPassword],
			AccessToken:  c.values[KeyAuthAccessToken],
			ClientID:     c.values[KeyAuthClientID],
			ClientSecret: c.values[KeyAuthClientSecret],
			TokenURL:     c.values[KeyAuthTokenURL],
			AppKey:       c.values[KeyAuthAppKey],
			SharedSecret: c.values[KeyAuthSharedSecret],
		},
		HTTP: jira.HTTPConfig{UserAgent: c.values[KeyHTTPUserAgent]},
	}
	if scopes := c.values[KeyAuthScopes]; scopes != "" {
		for _, s := range strings.Split(scopes, ",") {
			if s = strings.TrimSpace(s); s != "" {
				cfg.Auth.Scopes = append(cfg.Auth.Scopes, s)
			}
		}
	}

	var err error
	if cfg.HTTP.Timeout, err = c.duration(KeyHTTPTimeout); err != nil {
		return nil, err
	}
	if cfg.HTTP.IdleConnTimeout, err = c.duration(KeyHTTPIdleTimeout); err != nil {
		return nil, err
	}
	if v := c.values[KeyHTTPMaxIdleConns]; v != "" {
		n, convErr := strconv.Atoi(v)
		if convErr != nil {
			return nil, fmt.Errorf("%s: %w", KeyHTTPMaxIdleConns, convErr)
		}
		cfg.HTTP.MaxIdleConns = n
	}
	return cfg, nil
}

func (c *Resolved) duration(key string) (time.Duration, error) {
	v := c.values[key]
	if v == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

// Flatten renders cfg as resolver values. Empty fields are omitted.
func Flatten(cfg *jira.Config) map[string]string {
	values := map[string]string{
		KeyURL:              cfg.URL,
		KeyAPIVersion:       string(cfg.APIVersion),
		KeyAuthType:         string(cfg.Auth.Type),
		KeyAuthEmail:        cfg.Auth.Email,
		KeyAuthToken:        cfg.Auth.Token,
		KeyAuthUsername:     cfg.Auth.Username,
		KeyAuthPassword:     cfg.Auth.Password,
		KeyAuthAccessToken:  cfg.Auth.AccessToken,
		KeyAuthClientID:     cfg.Auth.ClientID,
		KeyAuthClientSecret: cfg.Auth.ClientSecret,
		KeyAuthTokenURL:     cfg.Auth.TokenURL,
		KeyAuthScopes:       strings.Join(cfg.Auth.Scopes, ","),
		KeyAuthAppKey:       cfg.Auth.AppKey,
		KeyAuthSharedSecret: cfg.Auth.SharedSecret,
		KeyHTTPUserAgent:    cfg.HTTP.UserAgent,
	}
	if cfg.HTTP.Timeout > 0 {
		values[KeyHTTPTimeout] = cfg.HTTP.Timeout.String()
	}
	if cfg.HTTP.IdleConnTimeout > 0 {
		values[KeyHTTPIdleTimeout] = cfg.HTTP.IdleConnTimeout.String()
	}
	if cfg.HTTP.MaxIdleConns > 0 {
		values[KeyHTTPMaxIdleConns] = strconv.Itoa(cfg.HTTP.MaxIdleConns)
	}
	maps.DeleteFunc(values, func(_, v string) bool { return v == "" })
	return values
}

// flattenYAML turns nested maps into dotted keys.
func flattenYAML(prefix string, m map[string]any) map[string]string {
	out := make(map[string]string)
	for key, value := range m {
		full := key
		if prefix != "" {
			full = prefix + "." + key
		}
		if nested, ok := value.(map[string]any); ok {
			maps.Copy(out, flattenYAML(full, nested))
			continue
		}
		if s := toString(value); s != "" {
			out[full] = s
		}
	}
	return out
}

func toString(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case int, int64, float64:
		return fmt.Sprintf("%v", val)
	case []any:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			if s := toString(item); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ",")
	default:
		return ""
	}
}

// findUp returns the path of name in dir or its nearest ancestor, or ""
// when none exists.
func findUp(startDir, name string) string {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return ""
	}

	for {
		candidate := filepath.Join(dir, name)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}
