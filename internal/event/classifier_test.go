package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		rawRef string
		ref    string
		kind   RefKind
	}{
		{"refs/tags/v1.2.3", "v1.2.3", RefTag},
		{"refs/tags/v1.0.0", "v1.0.0", RefTag},
		{"refs/tags/1.0.0-beta", "1.0.0-beta", RefTag},
		{"refs/tags/2.3.4-rc1", "2.3.4-rc1", RefTag},
		{"refs/tags/nightly", "nightly", RefBranch},
		{"refs/heads/main", "main", RefBranch},
		{"refs/heads/feature/x", "feature/x", RefBranch},
		{"refs/heads/1.x", "1.x", RefBranch},
		{"main", "main", RefBranch},
		{"v1.2.3", "v1.2.3", RefTag},
	}
	for _, tt := range tests {
		t.Run(tt.rawRef, func(t *testing.T) {
			// act
			ev, err := Classify(tt.rawRef)

			// assert
			assert.NoError(t, err)
			assert.Equal(t, tt.ref, ev.Ref)
			assert.Equal(t, tt.kind, ev.Kind)
		})
	}

	t.Run("fail - empty ref is a malformed event", func(t *testing.T) {
		// act
		_, err := Classify("")

		// assert
		assert.Error(t, err)
		assert.IsType(t, ClassifyError{}, err)
	})

	t.Run("fail - ref prefix without a name", func(t *testing.T) {
		// act
		_, err := Classify("refs/heads/")

		// assert
		assert.Error(t, err)
		assert.IsType(t, ClassifyError{}, err)
	})
}
