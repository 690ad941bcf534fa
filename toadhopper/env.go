package toadhopper

import (
	"os"
	"strings"
)

// EnvSource supplies the process environment to the notifier. Tests swap in a
// MapEnv so notices don't depend on the machine they run on.
type EnvSource interface {
	Lookup(key string) (string, bool)
	All() map[string]string
}

// OSEnv reads the real process environment.
type OSEnv struct{}

func (OSEnv) Lookup(key string) (string, bool) {
	return os.LookupEnv(key)
}

func (OSEnv) All() map[string]string {
	env := make(map[string]string)
	for _, kv := range os.Environ() {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || key == "" {
			continue
		}
		env[key] = value
	}
	return env
}

// MapEnv is a fixed environment snapshot.
type MapEnv map[string]string

func (m MapEnv) Lookup(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}

func (m MapEnv) All() map[string]string {
	env := make(map[string]string, len(m))
	for k, v := range m {
		env[k] = v
	}
	return env
}
