package sourcemap

import (
	"net/url"
	"path"
	"regexp"
	"strings"
)

// Source paths in a map are URLs relative to the map's sourceRoot, or plain
// slash-separated paths. The helpers below mirror how browsers resolve them.

// parseURL returns the parsed URL if s is an absolute or scheme-relative URL
// (containing "//" after the optional scheme), or nil otherwise.
func parseURL(s string) *url.URL {
	u, err := url.Parse(s)
	if err != nil || u.Opaque != "" {
		return nil
	}
	rest := s
	if u.Scheme != "" {
		rest = s[len(u.Scheme)+1:]
	}
	if !strings.HasPrefix(rest, "//") {
		return nil
	}
	return u
}

// normalizePath removes "." segments and resolves ".." segments where
// possible. URLs keep their scheme and host; only their path is normalized.
func normalizePath(p string) string {
	if u := parseURL(p); u != nil {
		if u.Path == "" {
			return p
		}
		u.Path = cleanKeepTrailing(u.Path)
		return u.String()
	}
	return cleanKeepTrailing(p)
}

func cleanKeepTrailing(p string) string {
	if p == "" {
		return "."
	}
	cleaned := path.Clean(p)
	if strings.HasSuffix(p, "/") && cleaned != "/" {
		cleaned += "/"
	}
	return cleaned
}

// joinPath resolves p against root. Absolute URLs, data URIs and absolute
// paths are returned unchanged.
func joinPath(root, p string) string {
	if root == "" {
		root = "."
	}
	if p == "" {
		p = "."
	}

	if u := parseURL(p); u != nil {
		if u.Scheme == "" {
			if r := parseURL(root); r != nil {
				u.Scheme = r.Scheme
			}
		}
		return u.String()
	}
	if strings.HasPrefix(p, "data:") {
		return p
	}

	if r := parseURL(root); r != nil {
		if path.IsAbs(p) {
			r.Path = path.Clean(p)
		} else {
			r.Path = path.Join("/", r.Path, p)
		}
		return r.String()
	}

	if path.IsAbs(p) {
		return p
	}
	return path.Join(root, p)
}

var rootOnly = regexp.MustCompile(`^([^/]+:/)?/*$`)

// relativePath makes p relative to root, climbing up with "../" as needed.
// If p doesn't share a prefix with root, it is returned unchanged.
func relativePath(root, p string) string {
	if root == "" {
		root = "."
	}
	root = strings.TrimSuffix(root, "/")

	level := 0
	for !strings.HasPrefix(p, root+"/") {
		idx := strings.LastIndexByte(root, '/')
		if idx < 0 {
			return p
		}
		root = root[:idx]
		if rootOnly.MatchString(root) {
			return p
		}
		level++
	}
	return strings.Repeat("../", level) + p[len(root)+1:]
}
