package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitRepoPath(t *testing.T) {
	tests := []struct {
		repository string
		owner      string
		name       string
	}{
		{"https://github.com/foo/bar.git", "foo", "bar"},
		{"https://github.com/foo/bar", "foo", "bar"},
		{"git@github.com:foo/bar.git", "foo", "bar"},
		{"https://github.com/foo/bar/", "foo", "bar"},
	}
	for _, tt := range tests {
		t.Run(tt.repository, func(t *testing.T) {
			owner, name := SplitRepoPath(tt.repository)
			assert.Equal(t, tt.owner, owner)
			assert.Equal(t, tt.name, name)
		})
	}
}
