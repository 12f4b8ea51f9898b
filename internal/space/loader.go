package space

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// yamlCatalogFile is the top-level YAML structure for catalog files.
type yamlCatalogFile struct {
	Environments yamlCatalog `yaml:"environments"`
}

// yamlCatalog is the YAML representation of the environment catalog.
type yamlCatalog struct {
	Default string            `yaml:"default"`
	Scenes  []yamlEnvironment `yaml:"scenes"`
}

// yamlEnvironment is the YAML representation of one environment.
type yamlEnvironment struct {
	Key   string `yaml:"key"`
	Name  string `yaml:"name"`
	Scene string `yaml:"scene"`
}

// LoadCatalogFromFile reads and validates an environment catalog file.
//
// Precondition: path must point to a valid YAML catalog file.
// Postcondition: Returns a validated Catalog or a non-nil error.
func LoadCatalogFromFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog file %s: %w", path, err)
	}
	c, err := LoadCatalogFromBytes(data)
	if err != nil {
		return nil, fmt.Errorf("catalog file %s: %w", path, err)
	}
	return c, nil
}

// LoadCatalogFromBytes parses and validates a catalog from YAML bytes.
func LoadCatalogFromBytes(data []byte) (*Catalog, error) {
	var file yamlCatalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing catalog YAML: %w", err)
	}

	envs := make([]Environment, 0, len(file.Environments.Scenes))
	for _, e := range file.Environments.Scenes {
		envs = append(envs, Environment{Key: e.Key, Name: e.Name, SceneRef: e.Scene})
	}

	defaultKey := file.Environments.Default
	if defaultKey == "" && len(envs) > 0 {
		defaultKey = envs[0].Key
	}
	return NewCatalog(defaultKey, envs)
}
