package fiber

import "fmt"

// Setter enqueues updates onto a state cell and schedules a pass rooted at
// the component that owns it.
type Setter[T any] struct {
	r    *Reconciler
	cell *stateCell
}

// Set replaces the state with v at the next render.
func (s Setter[T]) Set(v T) {
	s.Update(func(T) T { return v })
}

// Update applies fn to the state at the next render. Queued updates are
// applied in call order.
func (s Setter[T]) Update(fn func(prev T) T) {
	s.cell.queue = append(s.cell.queue, func(prev any) any {
		v, _ := prev.(T)
		return fn(v)
	})
	s.r.scheduleUpdate(s.cell)
}

// UseState returns the current value of the component's next state cell and
// a setter for it. Hooks must be called unconditionally and in the same
// order on every render of a component.
func UseState[T any](r *Reconciler, initial T) (T, Setter[T]) {
	f := r.mustWipFiber()
	cell := r.nextStateCell(f, func() *stateCell {
		return &stateCell{value: initial}
	})
	cell.drain()
	v, ok := cell.value.(T)
	if !ok && cell.value != nil {
		panic(hookOrderError(f, r.hookIndex-1))
	}
	return v, Setter[T]{r: r, cell: cell}
}

// Ref is a mutable box that persists across renders without scheduling any.
type Ref[T any] struct {
	Current T
}

func UseRef[T any](r *Reconciler, initial T) *Ref[T] {
	f := r.mustWipFiber()
	cell := r.nextStateCell(f, func() *stateCell {
		return &stateCell{value: &Ref[T]{Current: initial}}
	})
	ref, ok := cell.value.(*Ref[T])
	if !ok {
		panic(hookOrderError(f, r.hookIndex-1))
	}
	return ref
}

// UseEffect registers fn to run after the component commits. A nil deps
// re-runs fn after every commit, an empty Deps runs it once on mount, and
// otherwise fn re-runs when any dependency changed since the last commit.
func UseEffect(r *Reconciler, fn EffectFunc, deps Deps) {
	f := r.mustWipFiber()
	f.effects = append(f.effects, &effectCell{
		callback: fn,
		deps:     deps,
	})
}

func (r *Reconciler) mustWipFiber() *Fiber {
	if r.wipFiber == nil {
		panic(ErrHookOutsideComponent)
	}
	return r.wipFiber
}

// nextStateCell carries the cell at the current hook index over from the
// alternate, or creates one on first render.
func (r *Reconciler) nextStateCell(f *Fiber, create func() *stateCell) *stateCell {
	var cell *stateCell
	if alt := f.Alternate; alt != nil && r.hookIndex < len(alt.states) {
		cell = alt.states[r.hookIndex]
	} else {
		cell = create()
	}
	r.hookIndex++
	f.states = append(f.states, cell)
	return cell
}

func hookOrderError(f *Fiber, index int) error {
	return fmt.Errorf("fiber: hook %d of %s changed kind between renders", index, f.Name())
}
