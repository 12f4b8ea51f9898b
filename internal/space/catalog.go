// Package space defines the environment catalog: the fixed set of scene
// environments a room instance can be bound to.
package space

import (
	"fmt"
	"strings"
)

// Environment is one selectable scene environment.
type Environment struct {
	// Key is the identifier clients request at join time.
	Key string
	// Name is the human-readable label shown in space pickers.
	Name string
	// SceneRef is the asset reference the renderer loads. Opaque here.
	SceneRef string
}

// Catalog is the recognized environment set for a deployment. The first
// joiner of a room picks from this set; unrecognized requests fall back
// to the default key.
type Catalog struct {
	defaultKey string
	byKey      map[string]Environment
	order      []string
}

// NewCatalog builds a catalog from the given environments.
//
// Precondition: envs must be non-empty with unique, non-empty keys, and
// defaultKey must be one of them.
// Postcondition: Returns a validated Catalog or a non-nil error.
func NewCatalog(defaultKey string, envs []Environment) (*Catalog, error) {
	if len(envs) == 0 {
		return nil, fmt.Errorf("catalog must contain at least one environment")
	}
	c := &Catalog{
		defaultKey: defaultKey,
		byKey:      make(map[string]Environment, len(envs)),
	}
	var errs []string
	for _, env := range envs {
		if env.Key == "" {
			errs = append(errs, "environment key must not be empty")
			continue
		}
		if _, dup := c.byKey[env.Key]; dup {
			errs = append(errs, fmt.Sprintf("duplicate environment key %q", env.Key))
			continue
		}
		c.byKey[env.Key] = env
		c.order = append(c.order, env.Key)
	}
	if _, ok := c.byKey[defaultKey]; !ok {
		errs = append(errs, fmt.Sprintf("default key %q is not in the catalog", defaultKey))
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("invalid environment catalog: %s", strings.Join(errs, "; "))
	}
	return c, nil
}

// Default returns the built-in catalog matching the product's stock
// scenes. Used when no catalog file is configured.
func Default() *Catalog {
	c, err := NewCatalog("office", []Environment{
		{Key: "office", Name: "Office", SceneRef: "env_office"},
		{Key: "whitespace", Name: "Whitespace", SceneRef: "env_whitespace"},
	})
	if err != nil {
		panic(fmt.Sprintf("space: building default catalog: %v", err))
	}
	return c
}

// DefaultKey returns the fallback environment key.
func (c *Catalog) DefaultKey() string { return c.defaultKey }

// Has reports whether key is a recognized environment.
func (c *Catalog) Has(key string) bool {
	_, ok := c.byKey[key]
	return ok
}

// Resolve maps a requested environment key to a recognized one: the key
// itself when recognized, the default otherwise (including empty input).
func (c *Catalog) Resolve(requested string) string {
	if c.Has(requested) {
		return requested
	}
	return c.defaultKey
}

// Environments returns the catalog entries in declaration order.
func (c *Catalog) Environments() []Environment {
	envs := make([]Environment, 0, len(c.order))
	for _, key := range c.order {
		envs = append(envs, c.byKey[key])
	}
	return envs
}

// Len returns the number of recognized environments.
func (c *Catalog) Len() int { return len(c.byKey) }
