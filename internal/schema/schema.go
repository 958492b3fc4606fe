// Package schema validates JSON documents against JSON Schemas. Compiled
// schemas are cached in a Cache; Default returns the process-wide cache.
package schema

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/jeremymeng/rushstack/internal/config"
	rerrors "github.com/jeremymeng/rushstack/internal/errors"
)

//go:embed schemas/rush-plugin-manifest.schema.json
var pluginManifestSchema []byte

// PluginManifestSchemaID identifies the built-in plugin manifest schema.
const PluginManifestSchemaID = "https://rushstack.io/schemas/rush-plugin-manifest.schema.json"

// DefaultCacheSize bounds how many compiled schemas a Cache keeps.
const DefaultCacheSize = 128

// Schema is a compiled JSON schema.
type Schema struct {
	id       string
	compiled *jsonschema.Schema
}

// ID returns the location the schema was compiled from.
func (s *Schema) ID() string { return s.id }

// Validate checks doc, a value produced by ParseJSON, and returns it unchanged
// on success.
func (s *Schema) Validate(doc any) (any, error) {
	if err := s.compiled.Validate(doc); err != nil {
		return nil, rerrors.SchemaValidationFailed(s.id, err)
	}
	return doc, nil
}

// ValidateBytes parses JSON (comments allowed) and validates it.
func (s *Schema) ValidateBytes(data []byte) (any, error) {
	doc, err := ParseJSON(data)
	if err != nil {
		return nil, rerrors.SchemaValidationFailed(s.id, err)
	}
	return s.Validate(doc)
}

// ParseJSON decodes JSON into the value representation the validator expects.
func ParseJSON(data []byte) (any, error) {
	std, err := config.StandardizeJSON(data)
	if err != nil {
		return nil, err
	}
	return jsonschema.UnmarshalJSON(bytes.NewReader(std))
}

// Cache compiles schemas once and hands out the compiled form thereafter.
type Cache struct {
	mu      sync.Mutex
	entries *lru.Cache[string, *Schema]
}

// NewCache returns an empty cache holding at most size schemas.
func NewCache(size int) *Cache {
	if size <= 0 {
		size = DefaultCacheSize
	}
	entries, err := lru.New[string, *Schema](size)
	if err != nil {
		// lru.New only fails for non-positive sizes.
		panic(err)
	}
	return &Cache{entries: entries}
}

var (
	defaultOnce  sync.Once
	defaultCache *Cache
)

// Default returns the process-wide cache. It is created on first use and
// shared by every caller that does not construct its own Cache.
func Default() *Cache {
	defaultOnce.Do(func() {
		defaultCache = NewCache(DefaultCacheSize)
	})
	return defaultCache
}

// PluginManifest returns the built-in plugin manifest schema.
func (c *Cache) PluginManifest() (*Schema, error) {
	return c.FromBytes(PluginManifestSchemaID, pluginManifestSchema)
}

// FromFile compiles the schema stored at path.
func (c *Cache) FromFile(path string) (*Schema, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	if s, ok := c.entries.Get(abs); ok {
		return s, nil
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("read schema %s: %w", abs, err)
	}
	return c.compile(abs, "file://"+filepath.ToSlash(abs), data)
}

// FromBytes compiles an in-memory schema registered under id.
func (c *Cache) FromBytes(id string, data []byte) (*Schema, error) {
	if s, ok := c.entries.Get(id); ok {
		return s, nil
	}
	return c.compile(id, id, data)
}

// Len reports how many compiled schemas are cached.
func (c *Cache) Len() int { return c.entries.Len() }

func (c *Cache) compile(key, url string, data []byte) (*Schema, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if s, ok := c.entries.Get(key); ok {
		return s, nil
	}

	doc, err := ParseJSON(data)
	if err != nil {
		return nil, fmt.Errorf("parse schema %s: %w", key, err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(url, doc); err != nil {
		return nil, fmt.Errorf("load schema %s: %w", key, err)
	}
	compiled, err := compiler.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile schema %s: %w", key, err)
	}

	s := &Schema{id: key, compiled: compiled}
	c.entries.Add(key, s)
	return s, nil
}
