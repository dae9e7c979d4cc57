package headers

import (
	"strings"
)

// ParseHeaders converts an array of header strings into a map.
// Both "Key: Value" and "Key=Value" forms are accepted; entries
// without a separator are ignored.
func ParseHeaders(h []string) map[string]string {
	m := make(map[string]string)
	for _, hdr := range h {
		sep := ":"
		if !strings.Contains(hdr, ":") && strings.Contains(hdr, "=") {
			sep = "="
		}
		parts := strings.SplitN(hdr, sep, 2)
		if len(parts) == 2 {
			key := strings.TrimSpace(parts[0])
			if key == "" {
				continue
			}
			m[key] = strings.TrimSpace(parts[1])
		}
	}
	return m
}
