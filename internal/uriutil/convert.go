// Package uriutil converts between file paths and the file:// URIs used by
// editors.
package uriutil

import (
	"net/url"
	"path/filepath"
	"strings"
)

// PathToURI returns the file:// URI of path, made absolute first
func PathToURI(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	p := filepath.ToSlash(path)
	// windows drive letters become /C:/...
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	u := url.URL{Scheme: "file", Path: p}
	return u.String()
}

// URIToPath returns the file path of a file:// URI. Anything else is
// returned with a leading "file://" stripped.
func URIToPath(uri string) string {
	u, err := url.Parse(uri)
	if err != nil || u.Scheme != "file" {
		return filepath.FromSlash(strings.TrimPrefix(uri, "file://"))
	}
	p := u.Path
	if u.Host != "" && u.Host != "localhost" {
		p = "//" + u.Host + p
	}
	if len(p) >= 3 && p[0] == '/' && p[2] == ':' {
		p = p[1:]
	}
	return filepath.FromSlash(p)
}
