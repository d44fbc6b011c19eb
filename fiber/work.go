package fiber

import "fmt"

// performUnitOfWork renders one fiber and returns the next one in pre-order,
// or nil once the walk is back at the pass root.
func (r *Reconciler) performUnitOfWork(f *Fiber) *Fiber {
	r.units++

	skipChildren := false
	if c, ok := f.component(); ok {
		skipChildren = r.updateFunctionComponent(f, c)
	} else {
		r.updateHostComponent(f)
	}

	if f.Child != nil && !skipChildren {
		return f.Child
	}
	for next := f; next != nil && next != r.wipRoot; next = next.Parent {
		if next.Sibling != nil {
			return next.Sibling
		}
	}
	return nil
}

// updateFunctionComponent invokes the component and reconciles its child.
// It reports true when the memo wrapper bailed out and the cloned children
// must not be rendered again.
func (r *Reconciler) updateFunctionComponent(f *Fiber, c *Component) (bailedOut bool) {
	if c.equal != nil && r.canBailout(f, c) {
		r.bailout(f)
		return true
	}

	r.wipFiber = f
	r.hookIndex = 0
	f.states = nil
	f.effects = nil

	child, err := r.renderComponent(f, c)
	r.wipFiber = nil
	if err != nil {
		r.reportError(f, &ComponentError{Component: c, Phase: "render", Err: err})
		f.effects = nil
		r.reconcileChildren(f, nil)
		return false
	}

	var children []*Element
	if child != nil {
		children = []*Element{child}
	}
	r.reconcileChildren(f, children)
	return false
}

func (r *Reconciler) renderComponent(f *Fiber, c *Component) (child *Element, err error) {
	defer func() {
		if v := recover(); v != nil {
			err = recoveredError(v)
		}
	}()
	child = c.Render(r, f.Props)
	if verr := child.validate(); verr != nil {
		return nil, verr
	}
	return child, nil
}

func (r *Reconciler) updateHostComponent(f *Fiber) {
	if f.Handle == nil {
		h, err := r.createHandle(f)
		if err != nil && r.passErr == nil {
			r.passErr = &CommitError{Op: "create", Tag: f.Type, Err: err}
		}
		f.Handle = h
	}
	for _, child := range f.Children {
		if err := child.validate(); err != nil {
			r.reportError(f, err)
			r.reconcileChildren(f, nil)
			return
		}
	}
	r.reconcileChildren(f, f.Children)
}

func (r *Reconciler) createHandle(f *Fiber) (Handle, error) {
	tag, ok := f.Type.(Tag)
	if !ok {
		return nil, fmt.Errorf("%w: %T is not a primitive", ErrInvalidElement, f.Type)
	}
	if tag == TextTag {
		v, _ := f.Props.Get(NodeValueProp)
		return r.host.CreateText(FormatValue(v))
	}
	return r.host.CreateNode(string(tag), f.Props)
}
