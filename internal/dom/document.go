// Package dom models a live, mutable HTML document. All structural changes
// go through Document methods, which coalesce them into batches and deliver
// each batch synchronously to subscribed handlers. Mutations raised while a
// handler runs (for example a handler injecting its own nodes) are queued
// and delivered as a fresh batch after the current handler returns, so
// batch handlers always run to completion without interleaving.
//
// A Document, like the html.Node tree it wraps, is not safe for concurrent
// use. Drive it from a single goroutine.
package dom

import (
	"io"
	"net/url"
	"strings"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

// MutationType distinguishes structural change kinds.
type MutationType int

const (
	// NodeAdded means the node was attached to the document tree.
	NodeAdded MutationType = iota
	// NodeRemoved means the node was detached from the document tree.
	// The node keeps its own subtree, so removed descendants can still
	// be walked.
	NodeRemoved
)

// Mutation is one structural change. Parent is the node's parent at the
// time of the change (the old parent for removals).
type Mutation struct {
	Type   MutationType
	Node   *html.Node
	Parent *html.Node
}

// Batch is an ordered group of mutations delivered together.
type Batch []Mutation

// Handler receives mutation batches. It must not block.
type Handler func(Batch)

// Document wraps a parsed HTML tree with a location and a mutation feed.
type Document struct {
	root *html.Node
	base *url.URL

	handlers   []Handler
	pending    Batch
	batching   int
	delivering bool
}

// Parse reads an HTML document and its location URL. An unparseable or
// empty baseURL leaves the document without a location; extraction then
// falls back to empty-string URLs.
func Parse(r io.Reader, baseURL string) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, err
	}
	d := &Document{root: root}
	if baseURL != "" {
		if u, err := url.Parse(baseURL); err == nil {
			d.base = u
		}
	}
	return d, nil
}

// ParseString is Parse over an in-memory document.
func ParseString(src, baseURL string) (*Document, error) {
	return Parse(strings.NewReader(src), baseURL)
}

// Root returns the document root node.
func (d *Document) Root() *html.Node { return d.root }

// Base returns the document location, or nil if none was given.
func (d *Document) Base() *url.URL { return d.base }

// Host returns the hostname of the document location, or "".
func (d *Document) Host() string {
	if d.base == nil {
		return ""
	}
	return d.base.Hostname()
}

// Location returns the document location as a string, or "".
func (d *Document) Location() string {
	if d.base == nil {
		return ""
	}
	return d.base.String()
}

// Title returns the text of the first <title> element, or "".
func (d *Document) Title() string {
	t := FindFirst(d.root, func(n *html.Node) bool { return Tag(n) == "title" })
	return Text(t)
}

// MetaImage returns the document-level shareable image URL from the first
// og:image or twitter:image meta tag, or "".
func (d *Document) MetaImage() string {
	meta := FindFirst(d.root, func(n *html.Node) bool {
		if Tag(n) != "meta" {
			return false
		}
		switch Attr(n, "property") {
		case "og:image":
			return true
		}
		switch Attr(n, "name") {
		case "twitter:image", "og:image":
			return true
		}
		return false
	})
	return Attr(meta, "content")
}

// ResolveURL resolves href against the document location and returns its
// absolute form. Unresolvable hrefs are returned unchanged.
func (d *Document) ResolveURL(href string) string {
	if d.base == nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return d.base.ResolveReference(ref).String()
}

// Body returns the <body> element, or the root if none exists.
func (d *Document) Body() *html.Node {
	if b := FindFirst(d.root, func(n *html.Node) bool { return Tag(n) == "body" }); b != nil {
		return b
	}
	return d.root
}

// QueryAll returns all elements in the document matching the selector.
func (d *Document) QueryAll(sel cascadia.Selector) []*html.Node {
	return sel.MatchAll(d.root)
}

// Subscribe registers a batch handler. Handlers are invoked in
// registration order, on the goroutine performing the mutation.
func (d *Document) Subscribe(h Handler) {
	d.handlers = append(d.handlers, h)
}

// AppendChild attaches n as the last child of parent and records the
// mutation. If n is currently attached elsewhere it is detached first,
// recording a removal.
func (d *Document) AppendChild(parent, n *html.Node) {
	if n.Parent != nil {
		d.record(Mutation{Type: NodeRemoved, Node: n, Parent: n.Parent})
		n.Parent.RemoveChild(n)
	}
	parent.AppendChild(n)
	d.record(Mutation{Type: NodeAdded, Node: n, Parent: parent})
	d.dispatch()
}

// RemoveNode detaches n from its parent and records the mutation. The
// removed node keeps its subtree. Removing an already-detached node is a
// no-op.
func (d *Document) RemoveNode(n *html.Node) {
	if n.Parent == nil {
		return
	}
	parent := n.Parent
	parent.RemoveChild(n)
	d.record(Mutation{Type: NodeRemoved, Node: n, Parent: parent})
	d.dispatch()
}

// Batch groups every mutation performed inside fn into a single delivered
// batch, mirroring how the platform coalesces observer callbacks. Batch
// calls may nest; delivery happens when the outermost call returns.
func (d *Document) Batch(fn func()) {
	d.batching++
	fn()
	d.batching--
	d.dispatch()
}

func (d *Document) record(m Mutation) {
	d.pending = append(d.pending, m)
}

// dispatch drains pending mutations into handler calls. Re-entrant
// mutations performed by a handler land in pending and are drained as
// follow-up batches by the outer loop, never interleaving with the batch
// currently being handled.
func (d *Document) dispatch() {
	if d.batching > 0 || d.delivering {
		return
	}
	d.delivering = true
	defer func() { d.delivering = false }()

	for len(d.pending) > 0 {
		batch := d.pending
		d.pending = nil
		for _, h := range d.handlers {
			h(batch)
		}
	}
}
