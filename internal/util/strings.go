package util

import "strings"

// SplitRepoPath extracts the "owner/name" pair from a repository URL or
// SSH address, e.g. "https://github.com/foo/bar.git" -> ("foo", "bar").
func SplitRepoPath(repository string) (string, string) {
	s := strings.TrimSuffix(repository, ".git")
	s = strings.TrimSuffix(s, "/")
	if i := strings.LastIndex(s, ":"); i != -1 && !strings.Contains(s[i:], "/") {
		// scp-like address with no path separator after the colon
		s = s[i+1:]
	}
	parts := strings.Split(s, "/")
	if len(parts) < 2 {
		return "", s
	}
	owner := parts[len(parts)-2]
	name := parts[len(parts)-1]
	if i := strings.LastIndex(owner, ":"); i != -1 {
		owner = owner[i+1:]
	}
	return owner, name
}
