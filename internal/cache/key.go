package cache

import (
	"net/url"
	"sort"
	"strings"
)

// Key builds the canonical cache key for a resource path and its query
// parameters. Parameter order never affects the result: entries are sorted
// bytewise by name, joined as name=value pairs with "&", and prefixed with the
// path. An empty parameter set yields just the path.
func Key(path string, params url.Values) string {
	if len(params) == 0 {
		return path
	}

	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString(path)
	b.WriteByte('?')
	for i, name := range names {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(name)
		b.WriteByte('=')
		b.WriteString(params.Get(name))
	}
	return b.String()
}
