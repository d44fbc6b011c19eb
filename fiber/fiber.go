package fiber

type EffectTag uint8

const (
	None EffectTag = iota
	Placement
	Update
	Deletion
)

func (t EffectTag) String() string {
	switch t {
	case None:
		return "none"
	case Placement:
		return "placement"
	case Update:
		return "update"
	case Deletion:
		return "deletion"
	default:
		return "unknown"
	}
}

// Fiber is one node of the work tree. Child and Sibling own the subtree;
// Parent and Alternate are back-references. Alternate points at the fiber in
// the previously committed tree occupying the same position.
type Fiber struct {
	Type      Type
	Props     Props
	Children  []*Element
	Handle    Handle
	Parent    *Fiber
	Child     *Fiber
	Sibling   *Fiber
	Alternate *Fiber
	EffectTag EffectTag

	states  []*stateCell
	effects []*effectCell

	// bailout marks fibers cloned from the alternate by a memo hit. Their
	// components were not invoked this pass.
	bailout bool
}

type stateCell struct {
	value any
	queue []func(any) any

	// owner is the last committed fiber holding this cell.
	owner    *Fiber
	detached bool
	// dirty is set once queued updates were folded into value and cleared
	// when a commit publishes the fiber holding the cell.
	dirty bool
}

func (c *stateCell) drain() {
	if len(c.queue) == 0 {
		return
	}
	for _, update := range c.queue {
		c.value = update(c.value)
	}
	c.queue = nil
	c.dirty = true
}

type effectCell struct {
	callback EffectFunc
	deps     Deps
	cleanup  func()
}

func (f *Fiber) component() (*Component, bool) {
	c, ok := f.Type.(*Component)
	return c, ok
}

// Name returns the tag or component name of the fiber.
func (f *Fiber) Name() string {
	return typeName(f.Type)
}

// hostParent returns the nearest ancestor that owns a render-target handle.
func (f *Fiber) hostParent() *Fiber {
	p := f.Parent
	for p != nil && p.Handle == nil {
		p = p.Parent
	}
	return p
}

// walk visits f and its descendants in pre-order, children before siblings.
// Returning false from fn skips the fiber's children.
func (f *Fiber) walk(fn func(*Fiber) bool) {
	if f == nil {
		return
	}
	if fn(f) {
		for c := f.Child; c != nil; c = c.Sibling {
			c.walk(fn)
		}
	}
}
