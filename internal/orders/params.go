package orders

import (
	"fmt"
	"net/url"
	"strings"
)

// Params is an insertion-ordered parameter list. The exchange signs the
// canonical query string, so the serialization order must match the order the
// parameters were added in; url.Values sorts keys on Encode and cannot be used
// here.
type Params struct {
	keys   []string
	values map[string]string
}

func NewParams() *Params {
	return &Params{values: make(map[string]string)}
}

// Set adds the parameter, or overwrites it in place if the key already exists.
func (p *Params) Set(key, value string) *Params {
	if _, ok := p.values[key]; !ok {
		p.keys = append(p.keys, key)
	}
	p.values[key] = value
	return p
}

func (p *Params) Get(key string) (string, bool) {
	v, ok := p.values[key]
	return v, ok
}

func (p *Params) Len() int {
	return len(p.keys)
}

// Keys returns the keys in insertion order.
func (p *Params) Keys() []string {
	out := make([]string, len(p.keys))
	copy(out, p.keys)
	return out
}

// Encode serializes the parameters as a URL-escaped query string, preserving
// insertion order.
func (p *Params) Encode() string {
	var b strings.Builder
	for i, k := range p.keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(k))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(p.values[k]))
	}
	return b.String()
}

// ParseQuery decodes a query string produced by Encode, preserving the
// parameter order it appears in.
func ParseQuery(query string) (*Params, error) {
	p := NewParams()
	if query == "" {
		return p, nil
	}
	for _, pair := range strings.Split(query, "&") {
		key, value, found := strings.Cut(pair, "=")
		if !found {
			return nil, fmt.Errorf("malformed query pair: %q", pair)
		}
		k, err := url.QueryUnescape(key)
		if err != nil {
			return nil, fmt.Errorf("failed to unescape key %q: %w", key, err)
		}
		v, err := url.QueryUnescape(value)
		if err != nil {
			return nil, fmt.Errorf("failed to unescape value %q: %w", value, err)
		}
		p.Set(k, v)
	}
	return p, nil
}
