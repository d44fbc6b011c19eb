package fiber_test

import (
	"errors"
	"io"
	"log"
	"testing"

	"github.com/delaneyj/fiberparty/fiber"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func increment(prev int) int { return prev + 1 }

func TestUseStatePersists(t *testing.T) {
	r, _, container := setup(t)

	var set fiber.Setter[int]
	renders := 0
	counter := fiber.Define("Counter", func(r *fiber.Reconciler, props fiber.Props) *fiber.Element {
		renders++
		count, s := fiber.UseState(r, 0)
		set = s
		return fiber.H("span", fiber.P(), count)
	})
	tree := func() *fiber.Element {
		return fiber.H("div", fiber.P(),
			fiber.CreateElement(counter, fiber.P()),
			fiber.H("p", fiber.P(), "sibling"),
		)
	}

	render(t, r, tree(), container)
	assert.Equal(t, `<div><span>0</span><p>sibling</p></div>`, container.InnerHTML())

	set.Update(increment)
	assert.True(t, r.Pending())
	require.NoError(t, r.Flush())
	assert.Equal(t, `<div><span>1</span><p>sibling</p></div>`, container.InnerHTML())
	// only the counter, its span and the text re-render
	assert.Equal(t, 3, r.Stats().Units)

	set.Update(increment)
	require.NoError(t, r.Flush())
	assert.Equal(t, `<div><span>2</span><p>sibling</p></div>`, container.InnerHTML())
	assert.Equal(t, 3, renders)

	render(t, r, tree(), container)
	assert.Equal(t, `<div><span>2</span><p>sibling</p></div>`, container.InnerHTML())
	assert.Equal(t, 4, renders)
}

func TestUseStateSetReplaces(t *testing.T) {
	r, _, container := setup(t)

	var set fiber.Setter[string]
	label := fiber.Define("Label", func(r *fiber.Reconciler, props fiber.Props) *fiber.Element {
		v, s := fiber.UseState(r, "initial")
		set = s
		return fiber.H("em", fiber.P("title", v), v)
	})

	render(t, r, fiber.CreateElement(label, fiber.P()), container)
	set.Set("changed")
	require.NoError(t, r.Flush())
	assert.Equal(t, `<em title="changed">changed</em>`, container.InnerHTML())
}

func TestBatchCoalescesUpdates(t *testing.T) {
	r, _, container := setup(t)

	var set fiber.Setter[int]
	renders := 0
	counter := fiber.Define("Counter", func(r *fiber.Reconciler, props fiber.Props) *fiber.Element {
		renders++
		count, s := fiber.UseState(r, 0)
		set = s
		return fiber.H("span", fiber.P(), count)
	})
	render(t, r, fiber.CreateElement(counter, fiber.P()), container)

	r.Batch(func() {
		set.Update(increment)
		set.Update(increment)
		r.Batch(func() {
			set.Update(increment)
		})
		assert.False(t, r.Pending())
	})
	assert.True(t, r.Pending())
	require.NoError(t, r.Flush())

	assert.Equal(t, `<span>3</span>`, container.InnerHTML())
	assert.Equal(t, 2, renders)
}

func TestUnrelatedUpdatesEscalateToRoot(t *testing.T) {
	r, _, container := setup(t)

	setters := map[string]fiber.Setter[int]{}
	counter := fiber.Define("Counter", func(r *fiber.Reconciler, props fiber.Props) *fiber.Element {
		count, s := fiber.UseState(r, 0)
		setters[props.String("name")] = s
		return fiber.H("b", fiber.P(), count)
	})
	render(t, r, fiber.H("div", fiber.P(),
		fiber.CreateElement(counter, fiber.P("name", "a")),
		fiber.CreateElement(counter, fiber.P("name", "b")),
	), container)

	setters["a"].Set(1)
	setters["b"].Set(2)
	require.NoError(t, r.Flush())
	assert.Equal(t, `<div><b>1</b><b>2</b></div>`, container.InnerHTML())
}

func TestSetterFromEffect(t *testing.T) {
	r, _, container := setup(t)

	renders := 0
	loader := fiber.Define("Loader", func(r *fiber.Reconciler, props fiber.Props) *fiber.Element {
		renders++
		status, set := fiber.UseState(r, "loading")
		fiber.UseEffect(r, func() func() {
			set.Set("ready")
			return nil
		}, fiber.Deps{})
		return fiber.H("p", fiber.P(), status)
	})

	render(t, r, fiber.CreateElement(loader, fiber.P()), container)
	assert.Equal(t, `<p>ready</p>`, container.InnerHTML())
	assert.Equal(t, 2, renders)
	assert.False(t, r.Pending())
}

func TestSetterOnUnmountedComponentIsIgnored(t *testing.T) {
	r, _, container := setup(t, fiber.WithLogger(log.New(io.Discard, "", 0)))

	var set fiber.Setter[int]
	child := fiber.Define("Child", func(r *fiber.Reconciler, props fiber.Props) *fiber.Element {
		_, s := fiber.UseState(r, 0)
		set = s
		return fiber.H("i", fiber.P(), "child")
	})

	render(t, r, fiber.H("div", fiber.P(), fiber.CreateElement(child, fiber.P())), container)
	render(t, r, fiber.H("div", fiber.P()), container)

	set.Set(5)
	assert.False(t, r.Pending())
	assert.Equal(t, `<div></div>`, container.InnerHTML())
}

func TestUseRefPersistsWithoutRendering(t *testing.T) {
	r, _, container := setup(t)

	var refs []*fiber.Ref[int]
	counter := fiber.Define("Counter", func(r *fiber.Reconciler, props fiber.Props) *fiber.Element {
		ref := fiber.UseRef(r, 0)
		ref.Current++
		refs = append(refs, ref)
		return fiber.H("span", fiber.P(), ref.Current)
	})

	for i := 0; i < 3; i++ {
		render(t, r, fiber.CreateElement(counter, fiber.P()), container)
	}
	require.Len(t, refs, 3)
	assert.Same(t, refs[0], refs[2])
	assert.Equal(t, 3, refs[0].Current)
	assert.Equal(t, `<span>3</span>`, container.InnerHTML())

	refs[0].Current = 10
	assert.False(t, r.Pending())
}

func TestHookOutsideComponentPanics(t *testing.T) {
	r, _, _ := setup(t)

	assert.PanicsWithValue(t, fiber.ErrHookOutsideComponent, func() {
		fiber.UseState(r, 0)
	})
	assert.PanicsWithValue(t, fiber.ErrHookOutsideComponent, func() {
		fiber.UseEffect(r, func() func() { return nil }, nil)
	})
}

func TestHookKindChangeIsReported(t *testing.T) {
	var errs []error
	r, _, container := setup(t, collect(&errs))

	first := true
	fickle := fiber.Define("Fickle", func(r *fiber.Reconciler, props fiber.Props) *fiber.Element {
		if first {
			first = false
			n, _ := fiber.UseState(r, 1)
			return fiber.H("span", fiber.P(), n)
		}
		s, _ := fiber.UseState(r, "one")
		return fiber.H("span", fiber.P(), s)
	})

	render(t, r, fiber.CreateElement(fickle, fiber.P()), container)
	require.Empty(t, errs)
	render(t, r, fiber.CreateElement(fickle, fiber.P()), container)

	require.Len(t, errs, 1)
	var compErr *fiber.ComponentError
	require.True(t, errors.As(errs[0], &compErr))
	assert.Equal(t, "render", compErr.Phase)
	assert.Same(t, fickle, compErr.Component)
	assert.Equal(t, "", container.InnerHTML())
}

func TestComponentPanicIsIsolated(t *testing.T) {
	var errs []error
	r, _, container := setup(t, collect(&errs))

	bad := fiber.Define("Bad", func(r *fiber.Reconciler, props fiber.Props) *fiber.Element {
		panic(errBoom)
	})
	render(t, r, fiber.H("div", fiber.P(),
		fiber.CreateElement(bad, fiber.P()),
		fiber.H("p", fiber.P(), "ok"),
	), container)

	assert.Equal(t, `<div><p>ok</p></div>`, container.InnerHTML())
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], errBoom)
	var compErr *fiber.ComponentError
	require.ErrorAs(t, errs[0], &compErr)
	assert.Equal(t, "Bad", compErr.Component.Name)
}
