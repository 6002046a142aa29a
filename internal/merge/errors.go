package merge

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Kind classifies a merge failure.
type Kind string

const (
	// KindConfiguration marks inputs that are individually well formed but
	// cannot be merged as requested.
	KindConfiguration Kind = "configuration"

	// KindStructural marks inputs that should never have been passed
	// together, or output that breaks the slot invariants.
	KindStructural Kind = "structural"
)

// Sentinels for errors.Is. Every *Error matches the sentinel of its kind.
var (
	ErrConfiguration = errors.New("merge: configuration error")
	ErrStructural    = errors.New("merge: structural error")
)

// Error is a classified merge failure. All merge errors are fatal for the
// chain being assembled; nothing is retried.
type Error struct {
	Kind    Kind
	Chain   string
	Message string
	Context map[string]any
	Cause   error
}

func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "merge [%s]", e.Kind)
	if e.Chain != "" {
		fmt.Fprintf(&b, " %s", e.Chain)
	}
	b.WriteString(": ")
	b.WriteString(e.Message)
	if len(e.Context) > 0 {
		keys := slices.Sorted(maps.Keys(e.Context))
		b.WriteString(" (")
		for i, k := range keys {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%s=%v", k, e.Context[k])
		}
		b.WriteString(")")
	}
	if e.Cause != nil {
		fmt.Fprintf(&b, ": %v", e.Cause)
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Cause }

// Is matches the sentinel for e's kind.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrConfiguration:
		return e.Kind == KindConfiguration
	case ErrStructural:
		return e.Kind == KindStructural
	}
	return false
}

// With returns e with key=value added to its context.
func (e *Error) With(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

func configErrorf(chainName, format string, args ...any) *Error {
	return &Error{Kind: KindConfiguration, Chain: chainName, Message: fmt.Sprintf(format, args...)}
}

func structuralErrorf(chainName, format string, args ...any) *Error {
	return &Error{Kind: KindStructural, Chain: chainName, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of the first *Error in err's chain, or "" if there
// is none.
func KindOf(err error) Kind {
	var me *Error
	if errors.As(err, &me) {
		return me.Kind
	}
	return ""
}
