package cabme

import "strings"

// ResolveCreateOrderURL builds the create-order endpoint from the tenant
// base URL and the configured path. The path may be a full URL override
// (used verbatim) or a relative path joined onto the base. Joining
// normalizes slashes and drops a repeated version segment, so a base of
// ".../api/v1" and a path of "v1/request/create" resolve without
// duplicating "v1".
func ResolveCreateOrderURL(baseURL, path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}

	base := strings.TrimRight(baseURL, "/")
	rel := strings.Trim(path, "/")
	if rel == "" {
		return base
	}

	if i := strings.LastIndex(base, "/"); i >= 0 {
		last := base[i+1:]
		if last != "" && (rel == last || strings.HasPrefix(rel, last+"/")) {
			rel = strings.Trim(strings.TrimPrefix(rel, last), "/")
		}
	}
	if rel == "" {
		return base
	}
	return base + "/" + rel
}
