package ticker

import "strings"

// Sanitize normalizes a user supplied ticker list: trims, upper-cases, drops
// anything that is not 1-5 ASCII letters and removes duplicates while keeping
// first-seen order.
func Sanitize(symbols []string) []string {
	seen := make(map[string]struct{}, len(symbols))
	out := make([]string, 0, len(symbols))

	for _, s := range symbols {
		s = strings.ToUpper(strings.TrimSpace(s))
		if !isSymbol(s) {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

// ParseList splits a comma separated list and sanitizes it.
func ParseList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	return Sanitize(strings.Split(raw, ","))
}

func isSymbol(s string) bool {
	if len(s) == 0 || len(s) > 5 {
		return false
	}
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}
