package launcher

import (
	"sort"
	"strings"
)

// MergeEnv overlays overrides on a KEY=VALUE environment. Overrides win and
// every key appears once; the order of base entries is preserved.
func MergeEnv(base []string, overrides map[string]string) []string {
	merged := make([]string, 0, len(base)+len(overrides))
	seen := make(map[string]int, len(base))

	for _, kv := range base {
		key := kv
		if i := strings.IndexByte(kv, '='); i >= 0 {
			key = kv[:i]
		}
		if _, ok := overrides[key]; ok {
			continue
		}
		if idx, dup := seen[key]; dup {
			// Last definition wins, as os/exec does
			merged[idx] = kv
			continue
		}
		seen[key] = len(merged)
		merged = append(merged, kv)
	}

	keys := make([]string, 0, len(overrides))
	for key := range overrides {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		merged = append(merged, key+"="+overrides[key])
	}

	return merged
}
