package annotate

import (
	"golang.org/x/net/html"

	"github.com/asadsehto/savetube/internal/dom"
)

// Kind tags the two categories of video-bearing element. The engine treats
// both uniformly for id assignment, container resolution, and
// attach/detach; only metadata extraction differs.
type Kind int

const (
	// KindNativeMedia is a <video> element.
	KindNativeMedia Kind = iota
	// KindThumbnailLink is a platform-specific anchor linking to a video.
	KindThumbnailLink
)

func (k Kind) String() string {
	switch k {
	case KindNativeMedia:
		return "native-media"
	case KindThumbnailLink:
		return "thumbnail-link"
	}
	return "unknown"
}

// Target is a video-bearing element detected in the document. Platform is
// nil for native media elements.
type Target struct {
	Kind     Kind
	Node     *html.Node
	Platform *Platform
}

// DetectTarget classifies a node. platform may be nil when the document's
// host is unrecognized, in which case only native media elements match.
func DetectTarget(n *html.Node, platform *Platform) (Target, bool) {
	if !dom.IsElement(n) {
		return Target{}, false
	}
	if dom.Tag(n) == "video" {
		return Target{Kind: KindNativeMedia, Node: n}, true
	}
	if platform != nil && platform.thumbSel != nil && platform.thumbSel.Match(n) {
		if platform.IsVideoLink(dom.Attr(n, "href")) {
			return Target{Kind: KindThumbnailLink, Node: n, Platform: platform}, true
		}
	}
	return Target{}, false
}

// Container resolves the overlay anchor for this target. Thumbnail links
// prefer the platform's renderer ancestor and fall back to the anchor
// itself; native media elements use the generic container resolution.
func (t Target) Container() *html.Node {
	if t.Kind == KindThumbnailLink {
		if t.Platform != nil && t.Platform.containerSel != nil {
			if c := dom.Closest(t.Node, t.Platform.containerSel.Match); c != nil {
				return c
			}
		}
		return t.Node
	}
	return ResolveContainer(t.Node)
}
