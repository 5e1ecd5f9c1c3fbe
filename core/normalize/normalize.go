package normalize

import (
	"fmt"
	"strings"
	"unicode"
)

// Config holds data normalization settings.
type Config struct {
	// HostnameUppercase folds hostnames to uppercase when true, lowercase
	// otherwise. Both sources must use the same fold for the join to work.
	HostnameUppercase bool `mapstructure:"hostname_uppercase" default:"true"`
}

// Hostname normalizes a hostname for consistent matching: trims whitespace,
// truncates to the first DNS label, strips everything but word characters and
// hyphens, and case-folds per configuration.
func Hostname(hostname string, uppercase bool) string {
	if hostname == "" {
		return ""
	}

	normalized := strings.TrimSpace(hostname)
	if i := strings.IndexByte(normalized, '.'); i >= 0 {
		normalized = normalized[:i]
	}

	var b strings.Builder
	b.Grow(len(normalized))
	for _, r := range normalized {
		if isWordRune(r) || r == '-' {
			b.WriteRune(r)
		}
	}
	normalized = b.String()

	if uppercase {
		return strings.ToUpper(normalized)
	}
	return strings.ToLower(normalized)
}

// IP normalizes an IP address field: trims whitespace and keeps only the
// first entry of a comma-separated list.
func IP(ip string) string {
	ip = strings.TrimSpace(ip)
	if i := strings.IndexByte(ip, ','); i >= 0 {
		ip = strings.TrimSpace(ip[:i])
	}
	return ip
}

// CleanString converts a loosely typed value to a clean display string.
// Booleans become Yes/No, nil becomes the empty string.
func CleanString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case bool:
		if v {
			return "Yes"
		}
		return "No"
	case string:
		return strings.TrimSpace(v)
	default:
		return strings.TrimSpace(fmt.Sprintf("%v", v))
	}
}

// isWordRune matches word characters in the Unicode sense: letters, digits
// and the underscore.
func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
