package fiber

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

const (
	// NodeValueProp is the prop that carries the literal value of a text element.
	NodeValueProp = "nodeValue"
	// ChildrenProp carries the children of a component element.
	ChildrenProp = "children"
)

// Attr is a single name/value pair used to build Props.
type Attr struct {
	Name  string
	Value any
}

// Props is an ordered attribute mapping. Iteration follows insertion order,
// which is also the order a render target sees new attributes in.
// The zero value is an empty, usable Props.
type Props struct {
	m *orderedmap.OrderedMap[string, any]
}

func NewProps(attrs ...Attr) Props {
	if len(attrs) == 0 {
		return Props{}
	}
	m := orderedmap.New[string, any]()
	for _, a := range attrs {
		m.Set(a.Name, a.Value)
	}
	return Props{m: m}
}

// P is shorthand for building Props from alternating name/value arguments.
// It panics on an odd argument count or a non-string name.
func P(kv ...any) Props {
	if len(kv)%2 != 0 {
		panic("fiber: P requires name/value pairs")
	}
	attrs := make([]Attr, 0, len(kv)/2)
	for i := 0; i < len(kv); i += 2 {
		name, ok := kv[i].(string)
		if !ok {
			panic("fiber: P attribute names must be strings")
		}
		attrs = append(attrs, Attr{Name: name, Value: kv[i+1]})
	}
	return NewProps(attrs...)
}

func (p Props) Len() int {
	if p.m == nil {
		return 0
	}
	return p.m.Len()
}

func (p Props) Get(name string) (any, bool) {
	if p.m == nil {
		return nil, false
	}
	return p.m.Get(name)
}

// String returns the named prop formatted as a string, or "" when absent.
func (p Props) String(name string) string {
	v, ok := p.Get(name)
	if !ok || v == nil {
		return ""
	}
	return formatValue(v)
}

func (p Props) Has(name string) bool {
	_, ok := p.Get(name)
	return ok
}

// Each calls fn for every attribute in insertion order.
func (p Props) Each(fn func(name string, value any)) {
	if p.m == nil {
		return
	}
	for pair := p.m.Oldest(); pair != nil; pair = pair.Next() {
		fn(pair.Key, pair.Value)
	}
}

// Attrs returns the attributes in insertion order.
func (p Props) Attrs() []Attr {
	attrs := make([]Attr, 0, p.Len())
	p.Each(func(name string, value any) {
		attrs = append(attrs, Attr{Name: name, Value: value})
	})
	return attrs
}

// With returns a copy of p with name set to value. An existing attribute
// keeps its position.
func (p Props) With(name string, value any) Props {
	m := orderedmap.New[string, any]()
	p.Each(func(k string, v any) {
		m.Set(k, v)
	})
	m.Set(name, value)
	return Props{m: m}
}

// Without returns a copy of p with name removed.
func (p Props) Without(name string) Props {
	if !p.Has(name) {
		return p
	}
	m := orderedmap.New[string, any]()
	p.Each(func(k string, v any) {
		if k != name {
			m.Set(k, v)
		}
	})
	return Props{m: m}
}
