package idle

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/delaneyj/fiberparty/fiber"
)

var ErrLoopRunning = errors.New("idle: loop is already running")

// Config controls slice sizing.
type Config struct {
	// Slice is the time budget handed to each callback.
	Slice time.Duration
	// Timeout is how long a registered callback may wait for a slice before
	// it is invoked with an expired deadline.
	Timeout time.Duration
	// Interval is the pause between slices when no task is posted.
	Interval time.Duration
}

func DefaultConfig() Config {
	return Config{
		Slice:    50 * time.Millisecond,
		Timeout:  50 * time.Millisecond,
		Interval: time.Millisecond,
	}
}

// Callback receives the deadline of one idle slice.
type Callback func(fiber.Deadline)

// Loop runs posted tasks and idle callbacks on a single goroutine. Tasks may
// be posted from any goroutine; everything else must happen on the loop.
type Loop struct {
	cfg Config

	mu      sync.Mutex
	ingress []func()
	running bool
	slices  int
	wake    chan struct{}

	callback    Callback
	requestedAt time.Time
}

func New(cfg Config) *Loop {
	def := DefaultConfig()
	if cfg.Slice <= 0 {
		cfg.Slice = def.Slice
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.Interval <= 0 {
		cfg.Interval = def.Interval
	}
	return &Loop{
		cfg:  cfg,
		wake: make(chan struct{}, 1),
	}
}

// Register requests an idle slice for cb, replacing any pending request.
// Like requestIdleCallback it fires once; cb must register again to keep
// receiving slices. Call it from the loop goroutine or before Run.
func (l *Loop) Register(cb Callback) {
	l.callback = cb
	l.requestedAt = time.Now()
}

// Post queues task to run on the loop goroutine before the next slice.
func (l *Loop) Post(task func()) {
	l.mu.Lock()
	l.ingress = append(l.ingress, task)
	l.mu.Unlock()
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Slices returns how many idle callbacks have run. It is safe to call from
// any goroutine.
func (l *Loop) Slices() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.slices
}

// Run blocks running tasks and slices until ctx is done.
func (l *Loop) Run(ctx context.Context) error {
	l.mu.Lock()
	if l.running {
		l.mu.Unlock()
		return ErrLoopRunning
	}
	l.running = true
	l.mu.Unlock()
	defer func() {
		l.mu.Lock()
		l.running = false
		l.mu.Unlock()
	}()

	timer := time.NewTimer(l.cfg.Interval)
	defer timer.Stop()
	for {
		l.runTasks()
		l.runSlice()

		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(l.cfg.Interval)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.wake:
		case <-timer.C:
		}
	}
}

func (l *Loop) runTasks() {
	l.mu.Lock()
	tasks := l.ingress
	l.ingress = nil
	l.mu.Unlock()
	for _, task := range tasks {
		task()
	}
}

func (l *Loop) runSlice() {
	cb := l.callback
	if cb == nil {
		return
	}
	l.callback = nil
	l.mu.Lock()
	l.slices++
	l.mu.Unlock()
	if time.Since(l.requestedAt) >= l.cfg.Timeout {
		cb(Expired())
		return
	}
	cb(Budget(l.cfg.Slice))
}

// WorkLooper is the part of *fiber.Reconciler the loop drives.
type WorkLooper interface {
	WorkLoop(fiber.Deadline) error
}

// Drive runs w's work loop once per slice and re-registers it after every
// slice whether or not work remained. Commit errors go to onErr, or are
// logged when onErr is nil.
func Drive(l *Loop, w WorkLooper, onErr func(error)) {
	var tick Callback
	tick = func(d fiber.Deadline) {
		defer l.Register(tick)
		if err := w.WorkLoop(d); err != nil {
			if onErr != nil {
				onErr(err)
				return
			}
			log.Printf("idle: work loop: %v", err)
		}
	}
	l.Register(tick)
}
