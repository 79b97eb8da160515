package annotate

import (
	"strconv"
	"time"

	"golang.org/x/net/html"

	"github.com/asadsehto/savetube/internal/dom"
)

// Attributes written onto the observed document.
const (
	// IDAttr carries an element's stable id.
	IDAttr = "data-video-saver-id"
	// ContainerAttr tags an element as an overlay anchor.
	ContainerAttr = "data-video-saver-container"
	// TargetAttr on an affordance button names the stable id of the
	// element it saves.
	TargetAttr = "data-target-video"
	// ButtonClass identifies injected affordance buttons.
	ButtonClass = "video-saver-button"
)

// Registry assigns session-unique stable identifiers to live elements.
// Identifiers are a timestamp/counter composite; the counter alone makes
// them monotonically unique within a session, so a released id is never
// minted again for a different element.
//
// A Registry is driven from the engine's goroutine and is not safe for
// concurrent use.
type Registry struct {
	ids     map[*html.Node]string
	counter uint64
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{ids: make(map[*html.Node]string)}
}

// EnsureID returns the element's stable id, minting and recording one on
// first call. The id is also written to the element's IDAttr attribute so
// injected controls can reference it.
func (r *Registry) EnsureID(n *html.Node) string {
	if id, ok := r.ids[n]; ok {
		return id
	}
	r.counter++
	id := "vs-" + strconv.FormatInt(time.Now().UnixMilli(), 36) + "-" + strconv.FormatUint(r.counter, 10)
	r.ids[n] = id
	dom.SetAttr(n, IDAttr, id)
	return id
}

// ID returns the element's stable id without minting one.
func (r *Registry) ID(n *html.Node) (string, bool) {
	id, ok := r.ids[n]
	return id, ok
}

// Release clears the id association for an element that left the document.
// Releasing an untracked element is a no-op.
func (r *Registry) Release(n *html.Node) {
	if _, ok := r.ids[n]; !ok {
		return
	}
	delete(r.ids, n)
	dom.RemoveAttr(n, IDAttr)
}

// Len reports the number of tracked elements.
func (r *Registry) Len() int { return len(r.ids) }

// ResolveContainer finds the nearest ancestor suitable for anchoring an
// overlay control: an element already tagged as a container, else the
// element's parent.
func ResolveContainer(n *html.Node) *html.Node {
	if n == nil {
		return nil
	}
	if tagged := dom.Closest(n, func(c *html.Node) bool {
		return dom.Attr(c, ContainerAttr) == "true"
	}); tagged != nil {
		return tagged
	}
	return dom.ParentElement(n)
}

// markContainer tags an element so later container lookups resolve to it.
func markContainer(n *html.Node) {
	if n == nil {
		return
	}
	if dom.Attr(n, ContainerAttr) != "true" {
		dom.SetAttr(n, ContainerAttr, "true")
	}
}
