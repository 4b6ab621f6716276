package offline

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Manifest lists the assets installed into the cache. Paths are same-origin
// and resolved against the origin; External entries are absolute URLs.
type Manifest struct {
	Paths    []string `yaml:"paths" json:"paths"`
	External []string `yaml:"external" json:"external"`
}

// Resolve returns every manifest entry as an absolute URL, in order and
// without duplicates.
func (m Manifest) Resolve(origin *url.URL) ([]string, error) {
	if origin == nil {
		return nil, errors.New("offline: origin is required")
	}
	seen := make(map[string]struct{}, len(m.Paths)+len(m.External))
	out := make([]string, 0, len(m.Paths)+len(m.External))
	add := func(u string) {
		if _, ok := seen[u]; ok {
			return
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}

	for _, raw := range m.Paths {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		ref, err := url.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("offline: manifest path %q: %w", raw, err)
		}
		if ref.IsAbs() {
			return nil, fmt.Errorf("offline: manifest path %q must be same-origin", raw)
		}
		add(CacheKey(origin.ResolveReference(ref)))
	}
	for _, raw := range m.External {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		u, err := url.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("offline: manifest url %q: %w", raw, err)
		}
		if !u.IsAbs() {
			return nil, fmt.Errorf("offline: external manifest url %q must be absolute", raw)
		}
		add(CacheKey(u))
	}
	return out, nil
}

// CacheKey normalizes a URL into the key used by containers: fragments are
// dropped and an empty path becomes "/".
func CacheKey(u *url.URL) string {
	if u == nil {
		return ""
	}
	clone := *u
	clone.Fragment = ""
	clone.RawFragment = ""
	if clone.Path == "" && clone.Opaque == "" {
		clone.Path = "/"
	}
	return clone.String()
}

// ParseCacheKey parses raw and returns its CacheKey.
func ParseCacheKey(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", err
	}
	return CacheKey(u), nil
}
