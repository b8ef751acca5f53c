// Package event classifies incoming push refs into branch or tag triggers.
package event

import (
	"regexp"
	"strings"
)

type RefKind string

const (
	RefBranch RefKind = "branch"
	RefTag    RefKind = "tag"
)

// TriggerEvent is created once per pipeline invocation and never mutated.
type TriggerEvent struct {
	Ref  string
	Kind RefKind
}

type ClassifyError struct {
	Message string
}

func (ce ClassifyError) Error() string {
	return ce.Message
}

// versionTagPattern matches an optional leading "v" followed by a numeric
// major component, with arbitrary trailing text (v1.2.3, 1.0.0-beta, ...).
var versionTagPattern = regexp.MustCompile(`^v?[0-9]`)

// Classify inspects a raw ref (refs/heads/main, refs/tags/v1.2.3, or a bare
// name) and returns the trigger event for it. A ref is a tag trigger iff,
// after stripping the refs/tags/ prefix, it matches the version tag pattern.
// An empty ref is a malformed event and fails before any build work starts.
func Classify(rawRef string) (TriggerEvent, error) {
	if rawRef == "" {
		return TriggerEvent{}, ClassifyError{Message: "event has no ref"}
	}

	if branch, ok := strings.CutPrefix(rawRef, "refs/heads/"); ok {
		if branch == "" {
			return TriggerEvent{}, ClassifyError{Message: "event ref has no name: " + rawRef}
		}
		return TriggerEvent{Ref: branch, Kind: RefBranch}, nil
	}

	name := strings.TrimPrefix(rawRef, "refs/tags/")
	if name == "" {
		return TriggerEvent{}, ClassifyError{Message: "event ref has no name: " + rawRef}
	}

	kind := RefBranch
	if versionTagPattern.MatchString(name) {
		kind = RefTag
	}
	return TriggerEvent{Ref: name, Kind: kind}, nil
}
