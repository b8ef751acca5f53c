package release

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tagship/tagship/internal/event"
	"github.com/tagship/tagship/internal/toolchain"
)

func TestDecide(t *testing.T) {
	t.Run("success - branch push is skipped without a descriptor", func(t *testing.T) {
		// arrange
		ev := event.TriggerEvent{Ref: "main", Kind: event.RefBranch}
		artifact := toolchain.Artifact{Path: "target/wasm32-wasip1/release/plugin.wasm", Exists: true}

		// act
		decision := Decide(ev, artifact)

		// assert
		assert.Equal(t, OutcomeSkipped, decision.Outcome)
		assert.Nil(t, decision.Descriptor)
	})

	t.Run("success - tag push builds a draft descriptor", func(t *testing.T) {
		// arrange
		ev := event.TriggerEvent{Ref: "v1.2.3", Kind: event.RefTag}
		artifact := toolchain.Artifact{Path: "target/wasm32-wasip1/release/plugin.wasm", Exists: true}

		// act
		decision := Decide(ev, artifact)

		// assert
		assert.Equal(t, OutcomePublished, decision.Outcome)
		require.NotNil(t, decision.Descriptor)
		assert.Equal(t, "v1.2.3", decision.Descriptor.TagName)
		assert.True(t, decision.Descriptor.Draft)
		assert.False(t, decision.Descriptor.Prerelease)
		assert.Equal(t, []string{artifact.Path}, decision.Descriptor.Files)
	})
}
