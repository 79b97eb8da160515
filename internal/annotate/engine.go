// Package annotate implements the save-affordance engine: it finds
// video-bearing elements in a live document, attaches exactly one save
// control per element, keeps control identity stable across re-renders,
// and removes controls when their elements leave the document.
package annotate

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"golang.org/x/net/html"

	"github.com/asadsehto/savetube/internal/dom"
	"github.com/asadsehto/savetube/internal/model"
)

// Saver accepts a VideoRecord candidate for persistence. The HTTP client
// in internal/msg and the in-process save service both implement it.
type Saver interface {
	SaveVideo(ctx context.Context, candidate model.VideoRecord) (model.SaveStatus, error)
}

// ErrUnknownAffordance is returned by Activate for an id with no live
// affordance.
var ErrUnknownAffordance = errors.New("annotate: unknown affordance id")

// affordance is the live state behind one injected save control. The
// button and container are remembered so detach works even after the
// target has already been unlinked from its parent.
type affordance struct {
	target    Target
	button    *html.Node
	container *html.Node
}

// Affordance is the read-only view of a live affordance, for listings.
type Affordance struct {
	ID   string
	Kind Kind
	Meta model.VideoRecord
}

// Engine scans a document for video-bearing elements and maintains their
// save affordances as the document mutates. It is single-threaded: Start,
// Scan, Detach, and Activate must all be called from the goroutine that
// mutates the document.
type Engine struct {
	doc         *dom.Document
	reg         *Registry
	platform    *Platform
	saver       Saver
	log         zerolog.Logger
	affordances map[string]*affordance
}

// Option configures an Engine.
type Option func(*Engine)

// WithPlatforms sets the platform definitions used to recognize thumbnail
// links. The engine picks the one claiming the document's host, if any.
func WithPlatforms(platforms ...*Platform) Option {
	return func(e *Engine) {
		e.platform = ForHost(platforms, e.doc.Host())
	}
}

// WithLogger sets the engine logger.
func WithLogger(log zerolog.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// NewEngine builds an engine over doc. Without WithPlatforms only native
// media elements are annotated.
func NewEngine(doc *dom.Document, saver Saver, opts ...Option) *Engine {
	e := &Engine{
		doc:         doc,
		reg:         NewRegistry(),
		saver:       saver,
		log:         zerolog.Nop(),
		affordances: make(map[string]*affordance),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Start performs the initial full-document scan and subscribes the engine
// to the document's mutation feed.
func (e *Engine) Start() {
	e.Scan(e.doc.Body())
	e.doc.Subscribe(e.handleBatch)
}

// Scan finds every video-bearing element under root and ensures exactly
// one affordance exists for each. Re-scanning annotated elements is a
// no-op.
func (e *Engine) Scan(root *html.Node) {
	for _, n := range dom.FindAll(root, e.isTarget) {
		if t, ok := DetectTarget(n, e.platform); ok {
			e.annotate(t)
		}
	}
}

func (e *Engine) isTarget(n *html.Node) bool {
	_, ok := DetectTarget(n, e.platform)
	return ok
}

// annotate attaches a save button for the target unless one already
// exists for its stable id.
func (e *Engine) annotate(t Target) {
	container := t.Container()
	if container == nil {
		return
	}
	markContainer(container)

	id := e.reg.EnsureID(t.Node)
	if _, ok := e.affordances[id]; ok {
		return
	}

	button := dom.NewElement("button",
		"type", "button",
		"class", ButtonClass,
		"aria-label", "Save video",
		TargetAttr, id,
	)
	e.doc.AppendChild(container, button)

	e.affordances[id] = &affordance{target: t, button: button, container: container}
	e.log.Debug().Str("id", id).Str("kind", t.Kind.String()).Msg("affordance attached")
}

// Detach removes the element's affordance and releases its registry
// entry. Safe to call on elements that were never annotated.
func (e *Engine) Detach(n *html.Node) {
	id, ok := e.reg.ID(n)
	if !ok {
		return
	}
	if a, ok := e.affordances[id]; ok {
		e.doc.RemoveNode(a.button)
		delete(e.affordances, id)
	}
	e.reg.Release(n)
	e.log.Debug().Str("id", id).Msg("affordance detached")
}

// handleBatch reacts to one mutation batch. Added video-bearing nodes are
// annotated directly; other added subtrees are scanned. Removed
// video-bearing nodes are detached directly; removed subtrees are walked
// for tracked descendants. Both operations are idempotent, so nodes added
// and removed within one batch resolve correctly.
func (e *Engine) handleBatch(batch dom.Batch) {
	for _, m := range batch {
		switch m.Type {
		case dom.NodeAdded:
			if t, ok := DetectTarget(m.Node, e.platform); ok {
				e.annotate(t)
			} else if dom.HasChildElements(m.Node) {
				e.Scan(m.Node)
			}
		case dom.NodeRemoved:
			if _, tracked := e.reg.ID(m.Node); tracked {
				e.Detach(m.Node)
				continue
			}
			for _, n := range dom.FindAll(m.Node, func(c *html.Node) bool {
				_, ok := e.reg.ID(c)
				return ok
			}) {
				e.Detach(n)
			}
		}
	}
}

// Activate triggers the affordance with the given id: metadata is
// extracted and, when a URL could be derived, handed to the saver. A
// candidate without a URL suppresses the save and returns an empty
// status with no error. The affordance itself holds no state, so
// repeated activations are safe.
func (e *Engine) Activate(ctx context.Context, id string) (model.SaveStatus, error) {
	a, ok := e.affordances[id]
	if !ok {
		return "", ErrUnknownAffordance
	}
	candidate := Extract(e.doc, a.target)
	if !candidate.Candidate() {
		e.log.Debug().Str("id", id).Msg("no url derivable, save suppressed")
		return "", nil
	}
	return e.saver.SaveVideo(ctx, candidate)
}

// Affordances lists the live affordances with their extracted metadata,
// in no particular order.
func (e *Engine) Affordances() []Affordance {
	out := make([]Affordance, 0, len(e.affordances))
	for id, a := range e.affordances {
		out = append(out, Affordance{
			ID:   id,
			Kind: a.target.Kind,
			Meta: Extract(e.doc, a.target),
		})
	}
	return out
}

// AffordanceCount reports how many affordances are live.
func (e *Engine) AffordanceCount() int { return len(e.affordances) }
