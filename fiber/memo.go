package fiber

// PropsEqual reports whether a memoized component can skip rendering when
// its props change from prev to next.
type PropsEqual func(prev, next Props) bool

// Memo wraps c so that a re-render with equal props reuses the previously
// committed subtree instead of invoking c. A nil equal uses ShallowEqual.
func Memo(c *Component, equal PropsEqual) *Component {
	if equal == nil {
		equal = ShallowEqual
	}
	return &Component{
		Name:   "Memo(" + c.Name + ")",
		Render: c.Render,
		equal:  equal,
	}
}

// ShallowEqual compares props attribute by attribute with the same equality
// effect dependencies use. Children are not compared.
func ShallowEqual(prev, next Props) bool {
	if countAttrs(prev) != countAttrs(next) {
		return false
	}
	equal := true
	prev.Each(func(name string, v any) {
		if !equal || name == ChildrenProp {
			return
		}
		w, ok := next.Get(name)
		equal = ok && sameValue(v, w)
	})
	return equal
}

func countAttrs(p Props) int {
	n := p.Len()
	if p.Has(ChildrenProp) {
		n--
	}
	return n
}

func (r *Reconciler) canBailout(f *Fiber, c *Component) bool {
	alt := f.Alternate
	if alt == nil || alt.Type != f.Type {
		return false
	}
	if !c.equal(alt.Props, f.Props) {
		return false
	}
	// a drained update from an abandoned pass is still unpublished
	pending := false
	alt.walk(func(g *Fiber) bool {
		for _, cell := range g.states {
			if len(cell.queue) > 0 || cell.dirty {
				pending = true
			}
		}
		return !pending
	})
	return !pending
}

// bailout reuses the alternate's committed subtree. The clones carry
// handles, props and hook cells and are tagged None so the commit leaves the
// render target alone.
func (r *Reconciler) bailout(f *Fiber) {
	alt := f.Alternate
	f.states = alt.states
	f.effects = alt.effects
	f.bailout = true
	f.Child = cloneChildren(f, alt)
}

func cloneChildren(parent, alt *Fiber) *Fiber {
	var first, prev *Fiber
	for old := alt.Child; old != nil; old = old.Sibling {
		c := &Fiber{
			Type:      old.Type,
			Props:     old.Props,
			Children:  old.Children,
			Handle:    old.Handle,
			Parent:    parent,
			Alternate: old,
			states:    old.states,
			effects:   old.effects,
			bailout:   true,
		}
		c.Child = cloneChildren(c, old)
		if prev == nil {
			first = c
		} else {
			prev.Sibling = c
		}
		prev = c
	}
	return first
}
