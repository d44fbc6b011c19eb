package fiber

import (
	"fmt"
	"strconv"
)

// Type identifies what an Element renders: a primitive Tag or a *Component.
type Type interface {
	isType()
}

// Tag is a primitive render-target node kind such as "div".
type Tag string

func (Tag) isType() {}

const (
	// TextTag is the tag given to normalized text children.
	TextTag Tag = "TEXT_ELEMENT"
	// RootTag is the tag of the synthetic fiber wrapping a render container.
	RootTag Tag = "#root"
)

// RenderFunc produces the single child element of a component. Hooks may be
// called through r while it runs. Returning nil renders nothing.
type RenderFunc func(r *Reconciler, props Props) *Element

// Component is a named render function. Components are compared by pointer,
// so declare each one once and reuse it.
type Component struct {
	Name   string
	Render RenderFunc

	equal PropsEqual
}

func (*Component) isType() {}

func Define(name string, render RenderFunc) *Component {
	return &Component{Name: name, Render: render}
}

func (c *Component) String() string {
	if c == nil {
		return "<nil component>"
	}
	return c.Name
}

// Element is an immutable description of a desired node.
type Element struct {
	Type     Type
	Props    Props
	Children []*Element
}

// CreateElement builds an element from children of mixed kinds. *Element
// values are kept, nil and bool values are dropped, slices are flattened, and
// anything else becomes a text element. Children of a component element are
// passed to it as the ChildrenProp prop.
func CreateElement(typ Type, props Props, children ...any) *Element {
	normalized := normalizeChildren(nil, children)
	if _, ok := typ.(*Component); ok {
		if len(normalized) > 0 {
			props = props.With(ChildrenProp, normalized)
		}
		return &Element{Type: typ, Props: props}
	}
	return &Element{
		Type:     typ,
		Props:    props,
		Children: normalized,
	}
}

// ChildrenOf returns the children passed to a component element.
func ChildrenOf(props Props) []*Element {
	v, _ := props.Get(ChildrenProp)
	children, _ := v.([]*Element)
	return children
}

// H is CreateElement for primitive tags.
func H(tag string, props Props, children ...any) *Element {
	return CreateElement(Tag(tag), props, children...)
}

func Text(v any) *Element {
	return &Element{
		Type:  TextTag,
		Props: NewProps(Attr{Name: NodeValueProp, Value: v}),
	}
}

func normalizeChildren(dst []*Element, children []any) []*Element {
	for _, child := range children {
		switch c := child.(type) {
		case nil, bool:
		case *Element:
			if c != nil {
				dst = append(dst, c)
			}
		case []*Element:
			for _, e := range c {
				if e != nil {
					dst = append(dst, e)
				}
			}
		case []any:
			dst = normalizeChildren(dst, c)
		default:
			dst = append(dst, Text(c))
		}
	}
	return dst
}

func (e *Element) validate() error {
	if e == nil {
		return nil
	}
	switch t := e.Type.(type) {
	case Tag:
		if t == "" {
			return fmt.Errorf("%w: empty tag", ErrInvalidElement)
		}
	case *Component:
		if t == nil || t.Render == nil {
			return fmt.Errorf("%w: component %v has no render function", ErrInvalidElement, t)
		}
	default:
		return fmt.Errorf("%w: unsupported type %T", ErrInvalidElement, e.Type)
	}
	return nil
}

func sameType(a, b Type) bool {
	return a != nil && b != nil && a == b
}

func formatValue(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(v)
	}
}

// FormatValue renders a prop value the way text nodes display it.
func FormatValue(v any) string {
	if v == nil {
		return ""
	}
	return formatValue(v)
}
