package api

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/satonic/satonic-admin/internal/casing"
)

// Param is one filter entry of a Query
type Param struct {
	Key   string
	Value any
}

// Query is an ordered filter mapping. Keys are kept in the console's
// camelCase convention and converted to snake_case when encoded; insertion
// order is the order of the encoded pairs.
type Query []Param

// NewQuery builds a query from alternating key/value arguments
func NewQuery(kv ...any) Query {
	q := make(Query, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		q = q.Set(fmt.Sprint(kv[i]), kv[i+1])
	}
	return q
}

// Set adds key, replacing the value in place when key is already present
func (q Query) Set(key string, value any) Query {
	for i := range q {
		if q[i].Key == key {
			out := make(Query, len(q))
			copy(out, q)
			out[i].Value = value
			return out
		}
	}
	out := make(Query, len(q), len(q)+1)
	copy(out, q)
	return append(out, Param{Key: key, Value: value})
}

// Without returns a copy of q with key removed
func (q Query) Without(key string) Query {
	out := make(Query, 0, len(q))
	for _, p := range q {
		if p.Key != key {
			out = append(out, p)
		}
	}
	return out
}

// Get returns the formatted value stored under key
func (q Query) Get(key string) (string, bool) {
	for _, p := range q {
		if p.Key == key {
			return formatValue(p.Value), true
		}
	}
	return "", false
}

// Encode renders q as "?k1=v1&k2=v2" with backend-cased keys. An empty
// query encodes to the empty string.
func (q Query) Encode() string {
	if len(q) == 0 {
		return ""
	}

	var b strings.Builder
	for i, p := range q {
		if i == 0 {
			b.WriteByte('?')
		} else {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(casing.ToBackend(p.Key)))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(formatValue(p.Value)))
	}
	return b.String()
}

func formatValue(v any) string {
	switch typed := v.(type) {
	case nil:
		return ""
	case string:
		return typed
	case fmt.Stringer:
		return typed.String()
	default:
		return fmt.Sprint(typed)
	}
}
