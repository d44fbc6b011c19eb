package fiber_test

import (
	"fmt"
	"testing"

	"github.com/delaneyj/fiberparty/fiber"
	"github.com/delaneyj/fiberparty/memdom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEffectDependencyGating(t *testing.T) {
	r, _, container := setup(t)

	var gated, once, always int
	comp := fiber.Define("Comp", func(r *fiber.Reconciler, props fiber.Props) *fiber.Element {
		x, _ := props.Get("x")
		fiber.UseEffect(r, func() func() { gated++; return nil }, fiber.Deps{x})
		fiber.UseEffect(r, func() func() { once++; return nil }, fiber.Deps{})
		fiber.UseEffect(r, func() func() { always++; return nil }, nil)
		return fiber.H("span", fiber.P(), x)
	})

	render(t, r, fiber.CreateElement(comp, fiber.P("x", 1)), container)
	assert.Equal(t, []int{1, 1, 1}, []int{gated, once, always})
	assert.Equal(t, 3, r.Stats().Effects)

	render(t, r, fiber.CreateElement(comp, fiber.P("x", 1)), container)
	assert.Equal(t, []int{1, 1, 2}, []int{gated, once, always})
	assert.Equal(t, 1, r.Stats().Effects)

	render(t, r, fiber.CreateElement(comp, fiber.P("x", 2)), container)
	assert.Equal(t, []int{2, 1, 3}, []int{gated, once, always})
}

func TestEffectCleanupOrder(t *testing.T) {
	r, _, container := setup(t)

	var events []string
	comp := fiber.Define("Comp", func(r *fiber.Reconciler, props fiber.Props) *fiber.Element {
		x := props.String("x")
		fiber.UseEffect(r, func() func() {
			events = append(events, "run "+x)
			return func() { events = append(events, "cleanup "+x) }
		}, fiber.Deps{x})
		return fiber.H("span", fiber.P(), x)
	})

	render(t, r, fiber.CreateElement(comp, fiber.P("x", "1")), container)
	render(t, r, fiber.CreateElement(comp, fiber.P("x", "1")), container)
	render(t, r, fiber.CreateElement(comp, fiber.P("x", "2")), container)
	assert.Equal(t, []string{"run 1", "cleanup 1", "run 2"}, events)

	require.NoError(t, r.Render(nil, container))
	require.NoError(t, r.Flush())
	assert.Equal(t, []string{"run 1", "cleanup 1", "run 2", "cleanup 2"}, events)
	assert.Equal(t, 1, r.Stats().Cleanups)
	assert.Equal(t, "", container.InnerHTML())
}

func TestEffectCleanupRunsBeforeDetach(t *testing.T) {
	r, _, container := setup(t)

	var span *memdom.Node
	attachedAtCleanup := false
	child := fiber.Define("Child", func(r *fiber.Reconciler, props fiber.Props) *fiber.Element {
		fiber.UseEffect(r, func() func() {
			return func() { attachedAtCleanup = span.Parent != nil }
		}, fiber.Deps{})
		return fiber.H("span", fiber.P(), "bye")
	})

	render(t, r, fiber.H("div", fiber.P(), fiber.CreateElement(child, fiber.P())), container)
	span = container.Children[0].Children[0]

	render(t, r, fiber.H("div", fiber.P()), container)
	assert.True(t, attachedAtCleanup)
	assert.Nil(t, span.Parent)
	assert.Equal(t, `<div></div>`, container.InnerHTML())
}

func TestUnmountRunsNestedCleanups(t *testing.T) {
	r, _, container := setup(t)

	var events []string
	withCleanup := func(r *fiber.Reconciler, name string) {
		fiber.UseEffect(r, func() func() {
			return func() { events = append(events, name) }
		}, fiber.Deps{})
	}
	inner := fiber.Define("Inner", func(r *fiber.Reconciler, props fiber.Props) *fiber.Element {
		withCleanup(r, "inner " + props.String("id"))
		return fiber.H("i", fiber.P())
	})
	outer := fiber.Define("Outer", func(r *fiber.Reconciler, props fiber.Props) *fiber.Element {
		withCleanup(r, "outer")
		return fiber.H("div", fiber.P(),
			fiber.CreateElement(inner, fiber.P("id", 1)),
			fiber.CreateElement(inner, fiber.P("id", 2)),
		)
	})

	render(t, r, fiber.H("main", fiber.P(), fiber.CreateElement(outer, fiber.P())), container)
	render(t, r, fiber.H("main", fiber.P()), container)

	assert.Equal(t, []string{"outer", "inner 1", "inner 2"}, events)
	assert.Equal(t, 3, r.Stats().Cleanups)
	assert.Equal(t, `<main></main>`, container.InnerHTML())
}

func TestEffectsRunAfterAllMutations(t *testing.T) {
	r, _, container := setup(t)

	var seen string
	first := fiber.Define("First", func(r *fiber.Reconciler, props fiber.Props) *fiber.Element {
		fiber.UseEffect(r, func() func() {
			seen = container.InnerHTML()
			return nil
		}, fiber.Deps{})
		return fiber.H("span", fiber.P(), "a")
	})

	render(t, r, fiber.H("div", fiber.P(),
		fiber.CreateElement(first, fiber.P()),
		fiber.H("p", fiber.P(), "b"),
	), container)
	assert.Equal(t, `<div><span>a</span><p>b</p></div>`, seen)
}

func TestEffectPanicIsReported(t *testing.T) {
	var errs []error
	r, _, container := setup(t, collect(&errs))

	cleanups := 0
	comp := fiber.Define("Comp", func(r *fiber.Reconciler, props fiber.Props) *fiber.Element {
		fiber.UseEffect(r, func() func() {
			panic(fmt.Sprintf("effect %s", props.String("n")))
		}, nil)
		fiber.UseEffect(r, func() func() {
			return func() { cleanups++ }
		}, nil)
		return fiber.H("p", fiber.P(), props.String("n"))
	})

	render(t, r, fiber.CreateElement(comp, fiber.P("n", "1")), container)
	assert.Equal(t, `<p>1</p>`, container.InnerHTML())
	require.Len(t, errs, 1)
	var compErr *fiber.ComponentError
	require.ErrorAs(t, errs[0], &compErr)
	assert.Equal(t, "effect", compErr.Phase)
	assert.EqualError(t, compErr.Err, "effect 1")

	render(t, r, fiber.CreateElement(comp, fiber.P("n", "2")), container)
	assert.Len(t, errs, 2)
	assert.Equal(t, 1, cleanups)
}

func TestEffectsSkipSameSlice(t *testing.T) {
	r, _, container := setup(t)

	items := []string{"a", "b"}
	runs := 0
	list := fiber.Define("List", func(r *fiber.Reconciler, props fiber.Props) *fiber.Element {
		v, _ := props.Get("items")
		fiber.UseEffect(r, func() func() { runs++; return nil }, fiber.Deps{v})
		return fiber.H("ul", fiber.P())
	})

	render(t, r, fiber.CreateElement(list, fiber.P("items", items)), container)
	render(t, r, fiber.CreateElement(list, fiber.P("items", items)), container)
	assert.Equal(t, 1, runs)

	render(t, r, fiber.CreateElement(list, fiber.P("items", append([]string(nil), items...))), container)
	assert.Equal(t, 2, runs)
}

func TestEffectDepsHoldingComposites(t *testing.T) {
	r, _, container := setup(t)

	runs := 0
	var set fiber.Setter[int]
	comp := fiber.Define("Comp", func(r *fiber.Reconciler, props fiber.Props) *fiber.Element {
		n, s := fiber.UseState(r, 0)
		set = s
		fiber.UseEffect(r, func() func() { runs++; return nil }, fiber.Deps{wrapped{V: []int{n}}, [1]any{n}})
		return fiber.H("span", fiber.P(), n)
	})

	render(t, r, fiber.CreateElement(comp, fiber.P()), container)
	assert.Equal(t, 1, runs)

	require.NotPanics(t, func() {
		set.Set(1)
		require.NoError(t, r.Flush())
	})
	assert.Equal(t, 2, runs)
	assert.Equal(t, `<span>1</span>`, container.InnerHTML())

	// a struct holding a slice never matches, even with the same contents
	render(t, r, fiber.CreateElement(comp, fiber.P()), container)
	assert.Equal(t, 3, runs)
}
