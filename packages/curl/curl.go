// Package curl renders a resolved request as an equivalent curl command,
// for copy-paste debugging outside the tool.
package curl

import (
	"sort"
	"strings"

	"github.com/imhmg/purl/packages/http"
)

// Command builds the curl invocation for a resolved request.
func Command(req *http.Request) string {
	parts := []string{"curl", "-X", req.Method}

	if req.Insecure {
		parts = append(parts, "--insecure")
	}

	for _, key := range sortedKeys(req.Headers) {
		parts = append(parts, "-H", quote(key+": "+req.Headers[key]))
	}

	switch req.BodyType {
	case http.BodyMult:
		for _, field := range req.Multipart {
			if field.FilePath != "" {
				parts = append(parts, "-F", quote(field.Name+"=@"+field.FilePath))
			} else {
				parts = append(parts, "-F", quote(field.Name+"="+field.Value))
			}
		}
	case http.BodyNone:
	default:
		if req.Body != "" {
			parts = append(parts, "-d", quote(req.Body))
		}
	}

	parts = append(parts, quote(req.BuildURL()))
	return strings.Join(parts, " ")
}

// quote wraps s in single quotes, escaping embedded ones the POSIX way.
func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
