package loader

import (
	"os"
	"strconv"
	"strings"
)

// EnvLoader loads configuration from environment variables.
//
// PREFIX_SHIFTWIDTH=4 becomes {"shiftwidth": 4} and PREFIX_LOG_LEVEL=debug
// becomes {"log": {"level": "debug"}}: the name is lower-cased and every
// underscore starts a nested section. A mapping overrides the path for a
// variable.
type EnvLoader struct {
	prefix  string
	mapping map[string]string
	environ func() []string
}

// NewEnvLoader creates an environment loader for variables with prefix.
func NewEnvLoader(prefix string) *EnvLoader {
	return &EnvLoader{prefix: prefix, environ: os.Environ}
}

// NewEnvLoaderWithMapping creates an environment loader with explicit
// variable to path mappings.
func NewEnvLoaderWithMapping(prefix string, mapping map[string]string) *EnvLoader {
	l := NewEnvLoader(prefix)
	l.mapping = mapping
	return l
}

// WithEnviron replaces the environment the loader reads, in os.Environ
// form.
func (l *EnvLoader) WithEnviron(environ func() []string) *EnvLoader {
	l.environ = environ
	return l
}

// Load reads all variables with the prefix.
func (l *EnvLoader) Load() (map[string]any, error) {
	config := make(map[string]any)
	for _, kv := range l.environ() {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(name, l.prefix) || name == l.prefix {
			continue
		}
		path, mapped := l.mapping[name]
		if !mapped {
			path = l.envToPath(name)
		}
		setByPath(config, path, parseValue(value))
	}
	return config, nil
}

// AddMapping adds a custom environment variable mapping.
func (l *EnvLoader) AddMapping(envVar, configPath string) {
	if l.mapping == nil {
		l.mapping = make(map[string]string)
	}
	l.mapping[envVar] = configPath
}

func (l *EnvLoader) envToPath(env string) string {
	name := strings.TrimPrefix(env, l.prefix)
	return strings.ReplaceAll(strings.ToLower(name), "_", ".")
}

// parseValue converts integers and booleans; everything else stays a
// string.
func parseValue(s string) any {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	switch strings.ToLower(s) {
	case "true", "yes", "on":
		return true
	case "false", "no", "off":
		return false
	}
	return s
}

// setByPath sets a value in a nested map using a dot-separated path.
func setByPath(data map[string]any, path string, value any) {
	parts := strings.Split(path, ".")
	current := data
	for _, part := range parts[:len(parts)-1] {
		next, ok := current[part].(map[string]any)
		if !ok {
			next = make(map[string]any)
			current[part] = next
		}
		current = next
	}
	current[parts[len(parts)-1]] = value
}
