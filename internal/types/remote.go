package types

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// RemoteFile is a reference to a remotely hosted checklist or template,
// written as scheme://host[:port][/path][#fragment][::hash].
type RemoteFile struct {
	Scheme   string
	Host     string
	Port     int    // 0 when absent
	Path     string // Includes the leading slash
	Fragment string
	Hash     string // Pinned SHA-256 hex digest, empty when unpinned
}

// ParseRemoteFile parses a remote reference.
func ParseRemoteFile(ref string) (*RemoteFile, error) {
	scheme, rest, ok := strings.Cut(ref, "://")
	if !ok || scheme == "" {
		return nil, fmt.Errorf("invalid remote reference %q: missing scheme", ref)
	}

	r := &RemoteFile{Scheme: scheme}

	// An IPv6 literal host contains "::", so the pin is searched for after it.
	searchFrom := 0
	if strings.HasPrefix(rest, "[") {
		end := strings.Index(rest, "]")
		if end < 0 {
			return nil, fmt.Errorf("invalid remote reference %q: unterminated IPv6 host", ref)
		}
		searchFrom = end + 1
	}
	if i := strings.LastIndex(rest[searchFrom:], "::"); i >= 0 {
		i += searchFrom
		r.Hash = rest[i+2:]
		rest = rest[:i]
		if r.Hash == "" {
			return nil, fmt.Errorf("invalid remote reference %q: empty hash", ref)
		}
	}

	if i := strings.Index(rest, "#"); i >= 0 {
		r.Fragment = rest[i+1:]
		rest = rest[:i]
	}

	authority := rest
	if i := strings.Index(rest, "/"); i >= 0 {
		authority = rest[:i]
		r.Path = rest[i:]
	}

	host := authority
	portSearch := 0
	if strings.HasPrefix(authority, "[") {
		portSearch = strings.Index(authority, "]") + 1
	}
	if i := strings.LastIndex(authority[portSearch:], ":"); i >= 0 {
		i += portSearch
		port, err := strconv.Atoi(authority[i+1:])
		if err != nil || port <= 0 || port > 65535 {
			return nil, fmt.Errorf("invalid remote reference %q: bad port %q", ref, authority[i+1:])
		}
		r.Port = port
		host = authority[:i]
	}
	if host == "" {
		return nil, fmt.Errorf("invalid remote reference %q: missing host", ref)
	}
	r.Host = host
	return r, nil
}

// URL returns the fetchable URL without the pinned hash.
func (r *RemoteFile) URL() string {
	var b strings.Builder
	b.WriteString(r.Scheme)
	b.WriteString("://")
	b.WriteString(r.Host)
	if r.Port != 0 {
		b.WriteString(":")
		b.WriteString(strconv.Itoa(r.Port))
	}
	b.WriteString(r.Path)
	if r.Fragment != "" {
		b.WriteString("#")
		b.WriteString(r.Fragment)
	}
	return b.String()
}

// Name returns the last path segment, or the host when there is no path.
func (r *RemoteFile) Name() string {
	trimmed := strings.TrimRight(r.Path, "/")
	if trimmed == "" {
		return strings.Trim(r.Host, "[]")
	}
	return trimmed[strings.LastIndex(trimmed, "/")+1:]
}

// Pinned reports whether the reference carries a content hash.
func (r *RemoteFile) Pinned() bool { return r.Hash != "" }

// String returns the reference in its textual grammar.
func (r *RemoteFile) String() string {
	if r.Hash == "" {
		return r.URL()
	}
	return r.URL() + "::" + r.Hash
}

// MarshalYAML encodes the reference as a string.
func (r RemoteFile) MarshalYAML() (interface{}, error) {
	return r.String(), nil
}

// UnmarshalYAML decodes a reference from a string.
func (r *RemoteFile) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	parsed, err := ParseRemoteFile(s)
	if err != nil {
		return err
	}
	*r = *parsed
	return nil
}
