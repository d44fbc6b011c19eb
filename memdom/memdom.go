// Package memdom is an in-memory render target for the fiber reconciler. It
// keeps a DOM-like tree of nodes, records every mutation it receives and can
// serialize a subtree as HTML.
package memdom

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/delaneyj/fiberparty/fiber"
	"github.com/valyala/quicktemplate"
)

var (
	ErrUnknownHandle = errors.New("memdom: handle is not a live node")
	ErrNotChild      = errors.New("memdom: node is not a child of parent")
	ErrTextChildren  = errors.New("memdom: text nodes cannot have children")
)

type OpKind string

const (
	OpCreate OpKind = "create"
	OpText   OpKind = "text"
	OpUpdate OpKind = "update"
	OpAppend OpKind = "append"
	OpRemove OpKind = "remove"
)

// Op is one mutation received from the reconciler.
type Op struct {
	Kind   OpKind
	Target *Node
	Child  *Node
}

// Document owns every node it created. Nodes removed from their parent are
// no longer live and further operations on them fail.
type Document struct {
	live mapset.Set[*Node]
	ops  []Op
}

func New() *Document {
	return &Document{
		live: mapset.NewThreadUnsafeSet[*Node](),
	}
}

// Container creates a detached, live element to render into.
func (d *Document) Container(tag string) *Node {
	n := &Node{Tag: tag}
	d.live.Add(n)
	return n
}

func (d *Document) CreateNode(tag string, props fiber.Props) (fiber.Handle, error) {
	n := &Node{Tag: tag}
	n.apply(fiber.Props{}, props)
	d.live.Add(n)
	d.ops = append(d.ops, Op{Kind: OpCreate, Target: n})
	return n, nil
}

func (d *Document) CreateText(value string) (fiber.Handle, error) {
	n := &Node{Text: value, isText: true}
	d.live.Add(n)
	d.ops = append(d.ops, Op{Kind: OpText, Target: n})
	return n, nil
}

func (d *Document) UpdateProps(h fiber.Handle, prev, next fiber.Props) error {
	n, err := d.node(h)
	if err != nil {
		return err
	}
	n.apply(prev, next)
	d.ops = append(d.ops, Op{Kind: OpUpdate, Target: n})
	return nil
}

func (d *Document) AppendChild(parent, child fiber.Handle) error {
	p, err := d.node(parent)
	if err != nil {
		return err
	}
	c, err := d.node(child)
	if err != nil {
		return err
	}
	if p.isText {
		return ErrTextChildren
	}
	if c.Parent != nil {
		c.Parent.detach(c)
	}
	c.Parent = p
	p.Children = append(p.Children, c)
	d.ops = append(d.ops, Op{Kind: OpAppend, Target: p, Child: c})
	return nil
}

func (d *Document) RemoveChild(parent, child fiber.Handle) error {
	p, err := d.node(parent)
	if err != nil {
		return err
	}
	c, err := d.node(child)
	if err != nil {
		return err
	}
	if c.Parent != p || !p.detach(c) {
		return fmt.Errorf("%w: <%s> under <%s>", ErrNotChild, c.name(), p.name())
	}
	c.Parent = nil
	d.release(c)
	d.ops = append(d.ops, Op{Kind: OpRemove, Target: p, Child: c})
	return nil
}

func (d *Document) node(h fiber.Handle) (*Node, error) {
	n, ok := h.(*Node)
	if !ok || n == nil || !d.live.Contains(n) {
		return nil, fmt.Errorf("%w: %T", ErrUnknownHandle, h)
	}
	return n, nil
}

func (d *Document) release(n *Node) {
	d.live.Remove(n)
	for _, c := range n.Children {
		d.release(c)
	}
}

// Ops returns the mutations received since the last ResetOps.
func (d *Document) Ops() []Op {
	return d.ops
}

// Count returns how many mutations of kind were received since the last
// ResetOps.
func (d *Document) Count(kind OpKind) int {
	n := 0
	for _, op := range d.ops {
		if op.Kind == kind {
			n++
		}
	}
	return n
}

func (d *Document) ResetOps() {
	d.ops = nil
}

// Live reports how many nodes, including containers, are still attached or
// awaiting attachment.
func (d *Document) Live() int {
	return d.live.Cardinality()
}

// Fingerprint hashes the serialized subtree under n.
func (d *Document) Fingerprint(n *Node) uint64 {
	return xxhash.Sum64String(n.OuterHTML())
}

// Node is an element or text node.
type Node struct {
	Tag      string
	Text     string
	Attrs    []Attr
	Parent   *Node
	Children []*Node

	isText    bool
	listeners map[string]func()
}

type Attr struct {
	Name  string
	Value string
}

func (n *Node) IsText() bool {
	return n.isText
}

// Attr returns the value of the named attribute.
func (n *Node) Attr(name string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// Dispatch invokes the listener registered for event through an on* prop,
// e.g. "click" for onClick. It reports whether a listener ran.
func (n *Node) Dispatch(event string) bool {
	fn, ok := n.listeners[strings.ToLower(event)]
	if !ok {
		return false
	}
	fn()
	return true
}

// apply makes n reflect next instead of prev: stale attributes and
// listeners are removed first, then new or changed ones are set in next's
// order.
func (n *Node) apply(prev, next fiber.Props) {
	prev.Each(func(name string, v any) {
		if name == fiber.ChildrenProp {
			return
		}
		w, ok := next.Get(name)
		if event, isEvent := eventName(name); isEvent {
			if !ok || !sameListener(v, w) {
				delete(n.listeners, event)
			}
			return
		}
		if !ok {
			n.removeAttr(name)
		}
	})
	next.Each(func(name string, v any) {
		if name == fiber.ChildrenProp {
			return
		}
		if event, isEvent := eventName(name); isEvent {
			if fn, ok := v.(func()); ok {
				if n.listeners == nil {
					n.listeners = map[string]func(){}
				}
				n.listeners[event] = fn
			}
			return
		}
		if name == fiber.NodeValueProp {
			if n.isText {
				n.Text = fiber.FormatValue(v)
			}
			return
		}
		if v == nil {
			n.removeAttr(name)
			return
		}
		n.setAttr(name, fiber.FormatValue(v))
	})
}

func (n *Node) setAttr(name, value string) {
	for i := range n.Attrs {
		if n.Attrs[i].Name == name {
			n.Attrs[i].Value = value
			return
		}
	}
	n.Attrs = append(n.Attrs, Attr{Name: name, Value: value})
}

func (n *Node) removeAttr(name string) {
	for i := range n.Attrs {
		if n.Attrs[i].Name == name {
			n.Attrs = append(n.Attrs[:i], n.Attrs[i+1:]...)
			return
		}
	}
}

func (n *Node) detach(c *Node) bool {
	for i, child := range n.Children {
		if child == c {
			n.Children = append(n.Children[:i], n.Children[i+1:]...)
			return true
		}
	}
	return false
}

func (n *Node) name() string {
	if n.isText {
		return "#text"
	}
	return n.Tag
}

func eventName(prop string) (string, bool) {
	if len(prop) > 2 && strings.HasPrefix(prop, "on") {
		return strings.ToLower(prop[2:]), true
	}
	return "", false
}

// Listeners cannot be compared; an on* prop present in next is always
// re-registered.
func sameListener(a, b any) bool {
	return a == nil && b == nil
}

// InnerHTML serializes the children of n.
func (n *Node) InnerHTML() string {
	var sb strings.Builder
	qw := quicktemplate.AcquireWriter(&sb)
	for _, c := range n.Children {
		c.writeHTML(qw)
	}
	quicktemplate.ReleaseWriter(qw)
	return sb.String()
}

// OuterHTML serializes n and its subtree.
func (n *Node) OuterHTML() string {
	var sb strings.Builder
	qw := quicktemplate.AcquireWriter(&sb)
	n.writeHTML(qw)
	quicktemplate.ReleaseWriter(qw)
	return sb.String()
}

// Text and attribute values go through the escaping writer, markup through
// the raw one.
func (n *Node) writeHTML(qw *quicktemplate.Writer) {
	if n.isText {
		qw.E().S(n.Text)
		return
	}
	raw := qw.N()
	raw.S("<")
	raw.S(n.Tag)
	for _, a := range n.Attrs {
		raw.S(" ")
		raw.S(a.Name)
		raw.S(`="`)
		qw.E().S(a.Value)
		raw.S(`"`)
	}
	raw.S(">")
	for _, c := range n.Children {
		c.writeHTML(qw)
	}
	raw.S("</")
	raw.S(n.Tag)
	raw.S(">")
}

// Tree is a plain-value copy of a subtree, convenient for structural
// comparison.
type Tree struct {
	Tag      string
	Text     string
	Attrs    []Attr
	Children []Tree
}

func (n *Node) Tree() Tree {
	t := Tree{Tag: n.Tag, Text: n.Text}
	if len(n.Attrs) > 0 {
		t.Attrs = append([]Attr(nil), n.Attrs...)
	}
	for _, c := range n.Children {
		t.Children = append(t.Children, c.Tree())
	}
	return t
}
