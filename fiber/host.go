package fiber

import "time"

// Handle is an opaque render-target node owned by exactly one fiber.
type Handle any

// Host is the render target the commit phase mutates. Props passed to a Host
// never include children.
type Host interface {
	CreateNode(tag string, props Props) (Handle, error)
	CreateText(value string) (Handle, error)
	// UpdateProps adds, changes and removes attributes so that h reflects
	// next instead of prev.
	UpdateProps(h Handle, prev, next Props) error
	AppendChild(parent, child Handle) error
	RemoveChild(parent, child Handle) error
}

// Deadline describes the time left in the current idle slice.
type Deadline interface {
	TimeRemaining() time.Duration
	// DidTimeout reports whether the slice expired before the callback ran.
	DidTimeout() bool
}

type unlimited struct{}

func (unlimited) TimeRemaining() time.Duration { return time.Duration(1<<63 - 1) }
func (unlimited) DidTimeout() bool             { return false }
