package config

import (
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/randalmurphal/mlkit/document"
)

// ResolverConfig configures the layered config resolver.
type ResolverConfig struct {
	// Files are config files applied in order, later files overriding earlier
	// ones. Missing files are skipped with a warning.
	Files []string

	// Defaults provides the lowest-priority values. Nested maps are allowed.
	Defaults map[string]any

	// EnvPrefix enables environment overrides. With EnvPrefix "MLKIT_",
	// MLKIT_TRAINING__EPOCHS=5 sets "training.epochs" to 5.
	// Double underscores separate path segments.
	EnvPrefix string

	// Environ returns the environment as KEY=VALUE pairs.
	// Defaults to os.Environ if nil.
	Environ func() []string

	// Logger receives load and warning messages. Defaults to slog.Default().
	Logger *slog.Logger
}

// Resolver handles layered configuration resolution.
type Resolver struct {
	config ResolverConfig
	loader *Loader

	// Warnings collects non-fatal issues during resolution.
	Warnings []string
}

// NewResolver creates a new configuration resolver.
func NewResolver(cfg ResolverConfig) *Resolver {
	if cfg.Environ == nil {
		cfg.Environ = os.Environ
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &Resolver{
		config: cfg,
		loader: NewLoader(cfg.Logger),
	}
}

// warn adds a warning and logs it.
func (r *Resolver) warn(msg string) {
	r.Warnings = append(r.Warnings, msg)
	r.config.Logger.Warn(msg)
}

// Resolved holds the final merged configuration.
type Resolved struct {
	doc     *document.Document
	sources map[string]Source
}

// Document returns the merged document.
func (c *Resolved) Document() *document.Document {
	return c.doc
}

// Get returns the value at a dotted path.
func (c *Resolved) Get(path string) (any, bool) {
	return c.doc.Get(path)
}

// Source returns the source of a leaf value, or "" if unset.
func (c *Resolved) Source(path string) Source {
	return c.sources[path]
}

// GetWithSource returns both the value and its source.
func (c *Resolved) GetWithSource(path string) (any, Source) {
	v, _ := c.doc.Get(path)
	return v, c.sources[path]
}

// Keys returns every leaf path in sorted order.
func (c *Resolved) Keys() []string {
	keys := make([]string, 0, len(c.sources))
	for k := range c.sources {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Resolve builds the final config by merging all sources.
// Priority (highest to lowest): env > files (last wins) > defaults.
func (r *Resolver) Resolve() (*Resolved, error) {
	return r.ResolveWithOverrides(nil)
}

// ResolveWithOverrides resolves config and applies explicit overrides on top.
// Override keys are dotted paths; values are parsed as YAML scalars.
func (r *Resolver) ResolveWithOverrides(overrides map[string]string) (*Resolved, error) {
	m := newMerger()

	// 1. Apply defaults (lowest priority)
	if len(r.config.Defaults) > 0 {
		m.merge("", m.root, document.New(r.config.Defaults).Map(), SourceDefault)
	}

	// 2. Apply config files in order
	if err := r.applyFiles(m); err != nil {
		return nil, err
	}

	// 3. Apply environment variables
	r.applyEnv(m)

	// 4. Apply explicit overrides (highest priority)
	for _, key := range sortedKeys(overrides) {
		m.set(key, parseScalar(overrides[key]), SourceOverride)
	}

	return &Resolved{
		doc:     document.New(m.root),
		sources: m.sources,
	}, nil
}

func (r *Resolver) applyFiles(m *merger) error {
	for _, path := range r.config.Files {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			r.warn(fmt.Sprintf("config file %s does not exist, skipping", path))
			continue
		}

		doc, err := r.loader.Read(path)
		if err != nil {
			return err
		}
		m.merge("", m.root, doc.Map(), SourceFile)
	}
	return nil
}

func (r *Resolver) applyEnv(m *merger) {
	if r.config.EnvPrefix == "" {
		return
	}

	var matched []string
	values := make(map[string]string)
	for _, kv := range r.config.Environ() {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || value == "" || !strings.HasPrefix(name, r.config.EnvPrefix) {
			continue
		}
		key := envKeyToPath(strings.TrimPrefix(name, r.config.EnvPrefix))
		if key == "" {
			continue
		}
		matched = append(matched, key)
		values[key] = value
	}

	sort.Strings(matched)
	for _, key := range matched {
		m.set(key, parseScalar(values[key]), SourceEnv)
	}
}

// envKeyToPath maps TRAINING__EPOCHS to training.epochs.
func envKeyToPath(name string) string {
	parts := strings.Split(strings.ToLower(name), "__")
	for _, p := range parts {
		if p == "" {
			return ""
		}
	}
	return strings.Join(parts, ".")
}

// parseScalar interprets a raw string as a YAML scalar so "5" becomes an int
// and "true" a bool. Anything that is not a scalar stays a string.
func parseScalar(raw string) any {
	var v any
	if err := yaml.Unmarshal([]byte(raw), &v); err != nil {
		return raw
	}
	switch v.(type) {
	case map[string]any, []any, nil:
		return raw
	default:
		return v
	}
}

// merger deep-merges mappings while tracking the source of every leaf.
type merger struct {
	root    map[string]any
	sources map[string]Source
}

func newMerger() *merger {
	return &merger{
		root:    make(map[string]any),
		sources: make(map[string]Source),
	}
}

func (m *merger) merge(prefix string, dst, src map[string]any, source Source) {
	for k, v := range src {
		path := joinPath(prefix, k)

		if sm, ok := v.(map[string]any); ok {
			dm, ok := dst[k].(map[string]any)
			if !ok {
				m.clear(path)
				dm = make(map[string]any)
				dst[k] = dm
			}
			if len(sm) == 0 {
				m.sources[path] = source
			}
			m.merge(path, dm, sm, source)
			continue
		}

		if _, wasMap := dst[k].(map[string]any); wasMap {
			m.clear(path)
		}
		dst[k] = v
		m.sources[path] = source
	}
}

// set writes a single value at a dotted path, creating intermediate mappings.
func (m *merger) set(path string, value any, source Source) {
	segments := strings.Split(path, ".")
	nested := map[string]any{segments[len(segments)-1]: value}
	for i := len(segments) - 2; i >= 0; i-- {
		nested = map[string]any{segments[i]: nested}
	}
	m.merge("", m.root, nested, source)
}

// clear drops source entries at or below path.
func (m *merger) clear(path string) {
	delete(m.sources, path)
	prefix := path + "."
	for k := range m.sources {
		if strings.HasPrefix(k, prefix) {
			delete(m.sources, k)
		}
	}
}

func joinPath(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
