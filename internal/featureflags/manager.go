// Package featureflags evaluates FEATURE_FLAGS rollouts.
package featureflags

import (
	"fmt"
	"hash/fnv"
	"strconv"
	"strings"
)

// ImagePreviews gates WebP previews for image scraps.
const ImagePreviews = "image_previews"

// Manager holds flags parsed from a list like "image_previews=on,profile_cache=25%".
type Manager struct {
	flags map[string]string
}

// NewManager parses a comma-separated name=value list. Malformed pairs are skipped.
func NewManager(raw string) *Manager {
	flags := make(map[string]string)
	for _, pair := range strings.Split(raw, ",") {
		name, value, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		name, value = normalize(name), normalize(value)
		if name == "" || value == "" {
			continue
		}
		flags[name] = value
	}
	return &Manager{flags: flags}
}

// Enabled evaluates a flag for one user. Values are on/true/1, off/false/0, or
// N% for a rollout bucketed by user id. Anonymous callers (id 0) only see
// flags that are fully on.
func (m *Manager) Enabled(name string, userID uint) bool {
	if m == nil {
		return false
	}
	value, ok := m.flags[normalize(name)]
	if !ok {
		return false
	}

	switch value {
	case "on", "true", "1":
		return true
	case "off", "false", "0":
		return false
	}

	pctRaw, isPct := strings.CutSuffix(value, "%")
	if !isPct {
		return false
	}
	pct, err := strconv.Atoi(pctRaw)
	switch {
	case err != nil, pct <= 0:
		return false
	case pct >= 100:
		return true
	case userID == 0:
		return false
	}
	return bucket(name, userID) < pct
}

// Gate binds a flag name to Enabled.
func (m *Manager) Gate(name string) func(userID uint) bool {
	return func(userID uint) bool { return m.Enabled(name, userID) }
}

// Snapshot evaluates every configured flag for one user.
func (m *Manager) Snapshot(userID uint) map[string]bool {
	out := make(map[string]bool)
	if m == nil {
		return out
	}
	for name := range m.flags {
		out[name] = m.Enabled(name, userID)
	}
	return out
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func bucket(name string, userID uint) int {
	h := fnv.New32a()
	_, _ = fmt.Fprintf(h, "%s:%d", normalize(name), userID)
	return int(h.Sum32() % 100)
}
