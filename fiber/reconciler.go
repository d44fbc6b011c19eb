package fiber

import (
	"fmt"
	"log"
)

// CommitStats describes what the last commit did.
type CommitStats struct {
	Placements int
	Updates    int
	Deletions  int
	Units      int
	Effects    int
	Cleanups   int
}

// Reconciler owns one render tree: the committed root, the in-flight
// work-in-progress pass and the hook cursor. It is not safe for concurrent
// use; drive it from a single goroutine such as an idle.Loop.
type Reconciler struct {
	host    Host
	onError OnErrorFunc
	logger  *log.Logger

	rootElement *Element
	container   Handle

	currentRoot *Fiber
	wipRoot     *Fiber
	nextUnit    *Fiber
	deletions   []*Fiber
	passErr     error

	wipFiber  *Fiber
	hookIndex int

	batchDepth int
	batchQueue []func()

	units int
	stats CommitStats
}

type Option func(*Reconciler)

func WithErrorHandler(fn OnErrorFunc) Option {
	return func(r *Reconciler) {
		r.onError = fn
	}
}

func WithLogger(l *log.Logger) Option {
	return func(r *Reconciler) {
		r.logger = l
	}
}

func New(host Host, opts ...Option) *Reconciler {
	r := &Reconciler{
		host:   host,
		logger: log.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.onError == nil {
		r.onError = func(f *Fiber, err error) {
			r.logger.Printf("fiber: %s: %v", f.Name(), err)
		}
	}
	return r
}

// Render arms a pass that reconciles element into container against the last
// committed tree. Nothing is rendered until the work loop runs.
func (r *Reconciler) Render(element *Element, container Handle) error {
	if container == nil {
		return ErrNoContainer
	}
	if err := element.validate(); err != nil {
		return err
	}
	r.rootElement = element
	r.container = container
	r.armRoot()
	return nil
}

func (r *Reconciler) armRoot() {
	var children []*Element
	if r.rootElement != nil {
		children = []*Element{r.rootElement}
	}
	r.wipRoot = &Fiber{
		Type:      RootTag,
		Children:  children,
		Handle:    r.container,
		Alternate: r.currentRoot,
	}
	r.deletions = nil
	r.passErr = nil
	r.units = 0
	r.nextUnit = r.wipRoot
}

// WorkLoop performs units of work until none remain or the deadline has no
// time left, and commits once the pass is complete. It is a no-op when there
// is nothing to do, so a host may call it on every idle slice.
func (r *Reconciler) WorkLoop(deadline Deadline) error {
	if r.nextUnit != nil && deadline.DidTimeout() {
		r.step()
	}
	for r.nextUnit != nil && deadline.TimeRemaining() > 0 {
		r.step()
	}
	if r.nextUnit == nil && r.wipRoot != nil {
		return r.commitRoot()
	}
	return nil
}

// step performs the next unit. A setter called during the unit may have
// re-armed the pass, in which case the new arming wins.
func (r *Reconciler) step() {
	root := r.wipRoot
	next := r.performUnitOfWork(r.nextUnit)
	if r.wipRoot == root {
		r.nextUnit = next
	}
}

// Flush runs the work loop without a deadline until all armed work is
// committed, including passes scheduled by effects during commit.
func (r *Reconciler) Flush() error {
	for r.Pending() {
		if err := r.WorkLoop(unlimited{}); err != nil {
			return err
		}
	}
	return nil
}

// Pending reports whether a pass is armed or in flight.
func (r *Reconciler) Pending() bool {
	return r.wipRoot != nil
}

// Current returns the root fiber of the committed tree.
func (r *Reconciler) Current() *Fiber {
	return r.currentRoot
}

func (r *Reconciler) Stats() CommitStats {
	return r.stats
}

// Batch runs fn and defers the passes scheduled by setters called inside it
// until the outermost Batch returns. Updates are still queued in call order.
func (r *Reconciler) Batch(fn func()) {
	r.startBatch()
	defer r.endBatch()
	fn()
}

func (r *Reconciler) startBatch() {
	r.batchDepth++
}

func (r *Reconciler) endBatch() {
	r.batchDepth--
	if r.batchDepth > 0 {
		return
	}
	for len(r.batchQueue) > 0 {
		schedule := r.batchQueue[0]
		r.batchQueue = r.batchQueue[1:]
		schedule()
	}
}

func (r *Reconciler) scheduleUpdate(cell *stateCell) {
	if r.batchDepth > 0 {
		r.batchQueue = append(r.batchQueue, func() { r.armUpdate(cell) })
		return
	}
	r.armUpdate(cell)
}

// armUpdate starts a pass rooted at a clone of the committed component
// owning cell. A pass already in flight is replaced by one rooted at the
// nearest position covering both, so the work it carried is not lost.
func (r *Reconciler) armUpdate(cell *stateCell) {
	if cell.detached {
		r.logger.Printf("fiber: state update on an unmounted component ignored")
		return
	}
	target := cell.owner
	if target != nil && r.wipRoot != nil {
		inflight := r.wipRoot.Alternate
		if r.wipRoot.Type == RootTag || !isAncestorOrSelf(inflight, target) {
			target = nil
		} else {
			target = inflight
		}
	}
	if target == nil {
		if r.container != nil {
			r.armRoot()
		}
		return
	}
	r.wipRoot = &Fiber{
		Type:      target.Type,
		Props:     target.Props,
		Parent:    target.Parent,
		Alternate: target,
	}
	r.deletions = nil
	r.passErr = nil
	r.units = 0
	r.nextUnit = r.wipRoot
}

func isAncestorOrSelf(ancestor, f *Fiber) bool {
	for ; f != nil; f = f.Parent {
		if f == ancestor {
			return true
		}
	}
	return false
}

func (r *Reconciler) reportError(f *Fiber, err error) {
	if r.onError != nil {
		r.onError(f, err)
	}
}

func (r *Reconciler) String() string {
	return fmt.Sprintf("Reconciler{pending: %v, stats: %+v}", r.Pending(), r.stats)
}
