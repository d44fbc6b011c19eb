// Package bench builds synthetic component trees for measuring the
// reconciler. Each tree is width columns of depth nested levels ending in a
// stateful counter leaf.
package bench

import (
	"fmt"
	"time"

	"github.com/delaneyj/fiberparty/fiber"
	"github.com/delaneyj/fiberparty/idle"
	"github.com/delaneyj/fiberparty/memdom"
)

type Config struct {
	Name       string        `yaml:"name"`
	Width      int           `yaml:"width"`
	Depth      int           `yaml:"depth"`
	Iterations int           `yaml:"iterations"`
	Slice      time.Duration `yaml:"slice"`
}

func (cfg Config) Title() string {
	return fmt.Sprintf("%dx%d", cfg.Width, cfg.Depth)
}

type Harness struct {
	Doc       *memdom.Document
	Container *memdom.Node
	R         *fiber.Reconciler

	width, depth int
	slice        time.Duration
	setters      []fiber.Setter[int]
	app          *fiber.Component
	level        *fiber.Component
	leaf         *fiber.Component
}

// NewHarness renders the initial tree and commits it.
func NewHarness(cfg Config) (*Harness, error) {
	if cfg.Width <= 0 || cfg.Depth < 0 {
		return nil, fmt.Errorf("bench: invalid size %s", cfg.Title())
	}
	doc := memdom.New()
	h := &Harness{
		Doc:       doc,
		Container: doc.Container("body"),
		width:     cfg.Width,
		depth:     cfg.Depth,
		slice:     cfg.Slice,
		setters:   make([]fiber.Setter[int], cfg.Width),
	}
	h.R = fiber.New(doc, fiber.WithErrorHandler(func(f *fiber.Fiber, err error) {
		panic(fmt.Sprintf("bench: %s: %v", f.Name(), err))
	}))

	h.leaf = fiber.Define("Leaf", func(r *fiber.Reconciler, props fiber.Props) *fiber.Element {
		count, set := fiber.UseState(r, 0)
		idx, _ := props.Get("index")
		h.setters[idx.(int)] = set
		return fiber.H("span", fiber.P("class", "leaf"), count)
	})
	h.level = fiber.Define("Level", func(r *fiber.Reconciler, props fiber.Props) *fiber.Element {
		d, _ := props.Get("depth")
		idx, _ := props.Get("index")
		if d.(int) == 0 {
			return fiber.CreateElement(h.leaf, fiber.P("index", idx))
		}
		return fiber.H("div", fiber.P("class", "level"),
			fiber.CreateElement(h.level, fiber.P("depth", d.(int)-1, "index", idx)),
		)
	})
	h.app = fiber.Define("App", func(r *fiber.Reconciler, props fiber.Props) *fiber.Element {
		columns := make([]*fiber.Element, h.width)
		for i := range columns {
			columns[i] = fiber.CreateElement(h.level, fiber.P("depth", h.depth, "index", i))
		}
		return fiber.H("div", fiber.P("id", "app", "title", props.String("title")), columns)
	})

	if err := h.RerenderRoot(0); err != nil {
		return nil, err
	}
	return h, nil
}

// RerenderRoot renders the whole tree again with a changed root attribute.
func (h *Harness) RerenderRoot(i int) error {
	el := fiber.CreateElement(h.app, fiber.P("title", fmt.Sprintf("run %d", i)))
	if err := h.R.Render(el, h.Container); err != nil {
		return err
	}
	return h.flush()
}

// UpdateLeaf increments one leaf counter through its setter.
func (h *Harness) UpdateLeaf(i int) error {
	h.setters[i%h.width].Update(func(prev int) int { return prev + 1 })
	return h.flush()
}

func (h *Harness) flush() error {
	if h.slice <= 0 {
		return h.R.Flush()
	}
	for h.R.Pending() {
		if err := h.R.WorkLoop(idle.Budget(h.slice)); err != nil {
			return err
		}
	}
	return nil
}

// Nodes returns the number of render-target nodes a tree of this size holds,
// excluding the container.
func (cfg Config) Nodes() int {
	// app div, plus per column: depth level divs, a span and its text.
	return 1 + cfg.Width*(cfg.Depth+2)
}
