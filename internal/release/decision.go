// Package release decides whether a build gets published and performs the
// draft release upload when it does.
package release

import (
	"github.com/tagship/tagship/internal/event"
	"github.com/tagship/tagship/internal/toolchain"
)

type Outcome string

const (
	OutcomePublished Outcome = "published"
	OutcomeSkipped   Outcome = "skipped"
)

// Descriptor describes the release to create. Drafts are deliberate:
// re-running the pipeline for the same tag produces another draft instead
// of touching an existing release, and a human promotes the right one.
type Descriptor struct {
	TagName    string
	Name       string
	Draft      bool
	Prerelease bool
	Files      []string
}

// Decision is the pipeline's single branch point, kept as a tagged variant
// so the ref kind stays attached to the choice at the call site.
type Decision struct {
	Outcome    Outcome
	Descriptor *Descriptor
}

// Decide returns the skip decision for branch events and a draft release
// descriptor for tag events. A descriptor is never constructed for a
// branch push.
func Decide(ev event.TriggerEvent, artifact toolchain.Artifact) Decision {
	if ev.Kind != event.RefTag {
		return Decision{Outcome: OutcomeSkipped}
	}
	return Decision{
		Outcome: OutcomePublished,
		Descriptor: &Descriptor{
			TagName:    ev.Ref,
			Name:       ev.Ref,
			Draft:      true,
			Prerelease: false,
			Files:      []string{artifact.Path},
		},
	}
}
