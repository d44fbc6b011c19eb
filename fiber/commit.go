package fiber

// commitRoot applies the finished pass to the render target, runs effects and
// promotes the pass to the committed tree. Deletions are applied before any
// placement or update, and every structural mutation precedes every effect.
func (r *Reconciler) commitRoot() error {
	root := r.wipRoot
	stats := CommitStats{Units: r.units}

	if r.passErr != nil {
		err := r.passErr
		r.dropPass()
		return err
	}

	for _, d := range r.deletions {
		if err := r.commitDeletion(d, &stats); err != nil {
			r.dropPass()
			return err
		}
		stats.Deletions++
	}

	var err error
	root.walk(func(f *Fiber) bool {
		if err != nil {
			return false
		}
		if err = r.commitWork(f, &stats); err != nil {
			return false
		}
		for _, cell := range f.states {
			cell.owner = f
			cell.dirty = false
		}
		if f.Alternate != nil {
			f.Alternate.Alternate = nil
		}
		return true
	})
	if err != nil {
		r.dropPass()
		return err
	}

	// Setters called from effects are deferred until the pass is promoted so
	// they arm against the tree that was just committed.
	r.startBatch()
	r.commitEffects(root, &stats)
	r.promote(root)
	r.stats = stats
	r.endBatch()
	return nil
}

func (r *Reconciler) commitWork(f *Fiber, stats *CommitStats) error {
	switch f.EffectTag {
	case Placement:
		stats.Placements++
		if f.Handle == nil {
			return nil
		}
		parent := f.hostParent()
		if parent == nil {
			return nil
		}
		if err := r.host.AppendChild(parent.Handle, f.Handle); err != nil {
			return &CommitError{Op: "append", Tag: f.Type, Err: err}
		}
	case Update:
		stats.Updates++
		if f.Handle == nil || f.Alternate == nil {
			return nil
		}
		if err := r.host.UpdateProps(f.Handle, f.Alternate.Props, f.Props); err != nil {
			return &CommitError{Op: "update", Tag: f.Type, Err: err}
		}
	}
	return nil
}

// commitDeletion runs every cleanup in the deleted subtree, then detaches its
// top-most render-target nodes from the nearest ancestor that has one.
func (r *Reconciler) commitDeletion(d *Fiber, stats *CommitStats) error {
	d.walk(func(f *Fiber) bool {
		for _, cell := range f.effects {
			if cell.cleanup != nil {
				r.runCleanup(f, cell)
				stats.Cleanups++
			}
		}
		for _, cell := range f.states {
			cell.detached = true
			cell.owner = nil
			cell.queue = nil
		}
		return true
	})

	parent := d.hostParent()
	if parent == nil {
		return nil
	}
	return r.removeHostNodes(d, parent.Handle)
}

func (r *Reconciler) removeHostNodes(f *Fiber, parent Handle) error {
	if f.Handle != nil {
		if err := r.host.RemoveChild(parent, f.Handle); err != nil {
			return &CommitError{Op: "remove", Tag: f.Type, Err: err}
		}
		return nil
	}
	for c := f.Child; c != nil; c = c.Sibling {
		if err := r.removeHostNodes(c, parent); err != nil {
			return err
		}
	}
	return nil
}

func (r *Reconciler) commitEffects(root *Fiber, stats *CommitStats) {
	root.walk(func(f *Fiber) bool {
		alt := f.Alternate
		if f.bailout || alt == nil {
			return true
		}
		for i, old := range alt.effects {
			var next Deps
			if i < len(f.effects) {
				next = f.effects[i].deps
			}
			if old.cleanup != nil && (old.deps == nil || !depsEqual(old.deps, next)) {
				r.runCleanup(f, old)
				stats.Cleanups++
			}
		}
		return true
	})

	root.walk(func(f *Fiber) bool {
		if f.bailout {
			return true
		}
		for i, cell := range f.effects {
			var old *effectCell
			if f.Alternate != nil && i < len(f.Alternate.effects) {
				old = f.Alternate.effects[i]
			}
			if old == nil || cell.deps == nil || !depsEqual(old.deps, cell.deps) {
				cell.cleanup = r.runEffect(f, cell)
				stats.Effects++
				continue
			}
			cell.cleanup = old.cleanup
		}
		return true
	})
}

func (r *Reconciler) runEffect(f *Fiber, cell *effectCell) (cleanup func()) {
	defer func() {
		if v := recover(); v != nil {
			cleanup = nil
			r.reportError(f, r.componentError(f, "effect", recoveredError(v)))
		}
	}()
	return cell.callback()
}

func (r *Reconciler) runCleanup(f *Fiber, cell *effectCell) {
	cleanup := cell.cleanup
	cell.cleanup = nil
	defer func() {
		if v := recover(); v != nil {
			r.reportError(f, r.componentError(f, "cleanup", recoveredError(v)))
		}
	}()
	cleanup()
}

func (r *Reconciler) componentError(f *Fiber, phase string, err error) error {
	c, _ := f.component()
	return &ComponentError{Component: c, Phase: phase, Err: err}
}

// promote makes root the committed tree. A pass rooted at a component is
// spliced into the committed tree in place of its alternate.
func (r *Reconciler) promote(root *Fiber) {
	if _, isComponent := root.component(); !isComponent {
		r.currentRoot = root
	} else if alt := root.Alternate; alt != nil {
		root.Sibling = alt.Sibling
		if parent := alt.Parent; parent != nil {
			if parent.Child == alt {
				parent.Child = root
			} else {
				for c := parent.Child; c != nil; c = c.Sibling {
					if c.Sibling == alt {
						c.Sibling = root
						break
					}
				}
			}
		}
		if r.currentRoot == alt {
			r.currentRoot = root
		}
	}
	r.wipRoot = nil
	r.nextUnit = nil
	r.deletions = nil
}

func (r *Reconciler) dropPass() {
	r.wipRoot = nil
	r.nextUnit = nil
	r.deletions = nil
	r.passErr = nil
}
