package convention

import (
	"fmt"
	"sort"
	"strings"
)

// Options are custom key/value pairs made available to conventions. A key
// declared several times keeps every value, in order.
type Options map[string][]string

// ParseOptions parses "key=value" pairs.
func ParseOptions(pairs []string) (Options, error) {
	options := Options{}
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("option %q is not of the form key=value", pair)
		}
		options.Add(key, value)
	}
	return options, nil
}

func (o Options) Add(key, value string) {
	o[key] = append(o[key], value)
}

// Get returns every value declared for key.
func (o Options) Get(key string) []string {
	return o[key]
}

// Keys returns the declared keys, sorted.
func (o Options) Keys() []string {
	keys := make([]string, 0, len(o))
	for k := range o {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Env renders the options as environment variables. Multiple values for one
// key are joined with commas.
func (o Options) Env(prefix string) []string {
	var env []string
	for _, k := range o.Keys() {
		name := prefix + strings.ToUpper(strings.NewReplacer("-", "_", ".", "_").Replace(k))
		env = append(env, fmt.Sprintf("%s=%s", name, strings.Join(o[k], ",")))
	}
	return env
}
