package fiber

// reconcileChildren diffs elements against the alternate's child chain by
// position and rebuilds parent's child chain. Matching is index based: a
// reordered list produces a deletion and a placement per shifted element.
func (r *Reconciler) reconcileChildren(parent *Fiber, elements []*Element) {
	var old *Fiber
	if parent.Alternate != nil {
		old = parent.Alternate.Child
	}
	parent.Child = nil

	var prev *Fiber
	for i := 0; i < len(elements) || old != nil; i++ {
		var element *Element
		if i < len(elements) {
			element = elements[i]
		}

		same := old != nil && element != nil && sameType(old.Type, element.Type)

		var next *Fiber
		switch {
		case same:
			next = &Fiber{
				Type:      old.Type,
				Props:     element.Props,
				Children:  element.Children,
				Handle:    old.Handle,
				Parent:    parent,
				Alternate: old,
				EffectTag: Update,
			}
		case element != nil:
			next = &Fiber{
				Type:      element.Type,
				Props:     element.Props,
				Children:  element.Children,
				Parent:    parent,
				EffectTag: Placement,
			}
		}
		if old != nil && !same {
			old.EffectTag = Deletion
			r.deletions = append(r.deletions, old)
		}

		if old != nil {
			old = old.Sibling
		}

		if next == nil {
			continue
		}
		if prev == nil {
			parent.Child = next
		} else {
			prev.Sibling = next
		}
		prev = next
	}
}
