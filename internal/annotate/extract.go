package annotate

import (
	"golang.org/x/net/html"

	"github.com/asadsehto/savetube/internal/dom"
	"github.com/asadsehto/savetube/internal/model"
)

// Extract derives a VideoRecord candidate from a target. It never fails:
// every field degrades to an empty string or a document-level fallback.
// A candidate without a URL is later suppressed by the save path.
func Extract(doc *dom.Document, t Target) model.VideoRecord {
	switch t.Kind {
	case KindThumbnailLink:
		return extractThumbnailLink(doc, t)
	default:
		return extractNativeMedia(doc, t)
	}
}

func extractNativeMedia(doc *dom.Document, t Target) model.VideoRecord {
	return model.VideoRecord{
		URL:       doc.Location(),
		Title:     nativeTitle(doc, t.Node),
		Thumbnail: nativeThumbnail(doc, t),
	}
}

// nativeTitle prefers a caption near the element, then its accessible
// label, then the document title.
func nativeTitle(doc *dom.Document, n *html.Node) string {
	if figure := dom.Closest(n, func(c *html.Node) bool { return dom.Tag(c) == "figure" }); figure != nil {
		caption := dom.FindFirst(figure, func(c *html.Node) bool { return dom.Tag(c) == "figcaption" })
		if text := dom.Text(caption); text != "" {
			return text
		}
	}
	if label := dom.Attr(n, "aria-label"); label != "" {
		return label
	}
	return doc.Title()
}

// nativeThumbnail tries, in order: a deterministic platform thumbnail
// derived from the page URL, the element's poster, its resolved source,
// the nearest ancestor's embedded image, and the document's share image.
func nativeThumbnail(doc *dom.Document, t Target) string {
	if p := t.Platform; p != nil {
		if thumb := p.ThumbnailURL(p.VideoID(doc.Location())); thumb != "" {
			return thumb
		}
	}
	n := t.Node
	if poster := dom.Attr(n, "poster"); poster != "" {
		return doc.ResolveURL(poster)
	}
	if src := mediaSource(n); src != "" {
		return doc.ResolveURL(src)
	}
	if img := ancestorImage(n); img != "" {
		return doc.ResolveURL(img)
	}
	return doc.MetaImage()
}

// mediaSource returns the media element's current source: its src
// attribute, or the first nested <source> with one.
func mediaSource(n *html.Node) string {
	if src := dom.Attr(n, "src"); src != "" {
		return src
	}
	source := dom.FindFirst(n, func(c *html.Node) bool {
		return dom.Tag(c) == "source" && dom.Attr(c, "src") != ""
	})
	return dom.Attr(source, "src")
}

// ancestorImage finds an image embedded in the nearest article, div, or
// section ancestor.
func ancestorImage(n *html.Node) string {
	scope := dom.Closest(n.Parent, func(c *html.Node) bool {
		switch dom.Tag(c) {
		case "article", "div", "section":
			return true
		}
		return false
	})
	if scope == nil {
		return ""
	}
	img := dom.FindFirst(scope, func(c *html.Node) bool {
		return dom.Tag(c) == "img" && dom.Attr(c, "src") != ""
	})
	return dom.Attr(img, "src")
}

func extractThumbnailLink(doc *dom.Document, t Target) model.VideoRecord {
	p := t.Platform
	href := dom.Attr(t.Node, "href")
	absURL := doc.ResolveURL(href)
	if absURL == "" {
		absURL = doc.Location()
	}

	thumb := anchorImageSource(t.Node)
	if thumb == "" && p != nil {
		thumb = p.ThumbnailURL(p.VideoID(absURL))
	}

	return model.VideoRecord{
		URL:       absURL,
		Title:     thumbnailTitle(doc, t),
		Thumbnail: thumb,
	}
}

// anchorImageSource reads the nested thumbnail image, checking the lazy
// loading data attributes platforms swap in before src is populated.
func anchorImageSource(anchor *html.Node) string {
	img := dom.FindFirst(anchor, func(c *html.Node) bool { return dom.Tag(c) == "img" })
	if img == nil {
		return ""
	}
	for _, key := range []string{"src", "data-thumb", "data-src", "data-loaded"} {
		if v := dom.Attr(img, key); v != "" {
			return v
		}
	}
	return ""
}

// thumbnailTitle looks for the platform's title element inside the nearest
// renderer ancestor, then the nested image's alt text, then the document
// title.
func thumbnailTitle(doc *dom.Document, t Target) string {
	p := t.Platform
	if p != nil && p.titleScopeSel != nil && p.titleSel != nil {
		if scope := dom.Closest(t.Node, p.titleScopeSel.Match); scope != nil {
			if title := dom.Text(p.titleSel.MatchFirst(scope)); title != "" {
				return title
			}
		}
	}
	img := dom.FindFirst(t.Node, func(c *html.Node) bool { return dom.Tag(c) == "img" })
	if alt := dom.Attr(img, "alt"); alt != "" {
		return alt
	}
	return doc.Title()
}
