package annotate

import (
	"testing"

	"golang.org/x/net/html"

	"github.com/asadsehto/savetube/internal/dom"
)

func parseDoc(t *testing.T, src, base string) *dom.Document {
	t.Helper()
	doc, err := dom.ParseString(src, base)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return doc
}

func findVideo(t *testing.T, doc *dom.Document) *html.Node {
	t.Helper()
	n := dom.FindFirst(doc.Root(), func(c *html.Node) bool { return dom.Tag(c) == "video" })
	if n == nil {
		t.Fatal("no <video> in fixture")
	}
	return n
}

func findAnchor(t *testing.T, doc *dom.Document) *html.Node {
	t.Helper()
	n := dom.FindFirst(doc.Root(), func(c *html.Node) bool { return dom.Tag(c) == "a" })
	if n == nil {
		t.Fatal("no <a> in fixture")
	}
	return n
}

func TestExtract_NativeMedia_PosterAndAriaLabel(t *testing.T) {
	doc := parseDoc(t, `<html><head><title>Page</title></head><body>
<video poster="/thumbs/cover.jpg" aria-label="Launch recap"></video>
</body></html>`, "https://example.com/articles/launch")

	rec := Extract(doc, Target{Kind: KindNativeMedia, Node: findVideo(t, doc)})

	if rec.URL != "https://example.com/articles/launch" {
		t.Errorf("url = %q", rec.URL)
	}
	if rec.Title != "Launch recap" {
		t.Errorf("title = %q, want aria-label", rec.Title)
	}
	if rec.Thumbnail != "https://example.com/thumbs/cover.jpg" {
		t.Errorf("thumbnail = %q, want resolved poster", rec.Thumbnail)
	}
}

func TestExtract_NativeMedia_FigcaptionBeatsAriaLabel(t *testing.T) {
	doc := parseDoc(t, `<html><head><title>Page</title></head><body>
<figure>
  <video aria-label="generic label"></video>
  <figcaption> The real caption </figcaption>
</figure>
</body></html>`, "https://example.com/")

	rec := Extract(doc, Target{Kind: KindNativeMedia, Node: findVideo(t, doc)})
	if rec.Title != "The real caption" {
		t.Errorf("title = %q, want figcaption text", rec.Title)
	}
}

func TestExtract_NativeMedia_TitleFallsBackToDocument(t *testing.T) {
	doc := parseDoc(t, `<html><head><title>Page Title</title></head><body>
<video src="/v.mp4"></video>
</body></html>`, "https://example.com/")

	rec := Extract(doc, Target{Kind: KindNativeMedia, Node: findVideo(t, doc)})
	if rec.Title != "Page Title" {
		t.Errorf("title = %q, want document title", rec.Title)
	}
}

func TestExtract_NativeMedia_ThumbnailChain(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			"src when no poster",
			`<video src="/v.mp4"></video>`,
			"https://example.com/v.mp4",
		},
		{
			"nested source element",
			`<video><source src="/v.webm"></video>`,
			"https://example.com/v.webm",
		},
		{
			"ancestor image",
			`<div><img src="/still.png"><video></video></div>`,
			"https://example.com/still.png",
		},
		{
			"meta image last resort",
			`<video></video>`,
			"https://example.com/og.png",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := parseDoc(t, `<html><head><meta property="og:image" content="https://example.com/og.png"></head><body>`+tt.body+`</body></html>`,
				"https://example.com/")
			rec := Extract(doc, Target{Kind: KindNativeMedia, Node: findVideo(t, doc)})
			if rec.Thumbnail != tt.want {
				t.Errorf("thumbnail = %q, want %q", rec.Thumbnail, tt.want)
			}
		})
	}
}

func TestExtract_NativeMedia_PlatformThumbnailFromPageURL(t *testing.T) {
	doc := parseDoc(t, `<html><body><video src="blob:stream"></video></body></html>`,
		"https://www.youtube.com/watch?v=abc123")

	rec := Extract(doc, Target{Kind: KindNativeMedia, Node: findVideo(t, doc), Platform: YouTube()})
	if rec.Thumbnail != "https://img.youtube.com/vi/abc123/hqdefault.jpg" {
		t.Errorf("thumbnail = %q, want the deterministic platform thumbnail", rec.Thumbnail)
	}
}

func TestExtract_ThumbnailLink_LazyImageAttributes(t *testing.T) {
	doc := parseDoc(t, `<html><head><title>YouTube</title></head><body>
<a id="thumbnail" href="/watch?v=lazy01"><img data-thumb="https://i.ytimg.com/vi/lazy01/hq720.jpg" alt="Lazy clip"></a>
</body></html>`, "https://www.youtube.com/")

	rec := Extract(doc, Target{Kind: KindThumbnailLink, Node: findAnchor(t, doc), Platform: YouTube()})

	if rec.URL != "https://www.youtube.com/watch?v=lazy01" {
		t.Errorf("url = %q", rec.URL)
	}
	if rec.Thumbnail != "https://i.ytimg.com/vi/lazy01/hq720.jpg" {
		t.Errorf("thumbnail = %q, want the data-thumb value", rec.Thumbnail)
	}
	if rec.Title != "Lazy clip" {
		t.Errorf("title = %q, want the img alt", rec.Title)
	}
}

func TestExtract_ThumbnailLink_TemplateWhenNoImage(t *testing.T) {
	doc := parseDoc(t, `<html><head><title>YouTube</title></head><body>
<a id="thumbnail" href="/shorts/short77"></a>
</body></html>`, "https://www.youtube.com/")

	rec := Extract(doc, Target{Kind: KindThumbnailLink, Node: findAnchor(t, doc), Platform: YouTube()})

	if rec.Thumbnail != "https://img.youtube.com/vi/short77/hqdefault.jpg" {
		t.Errorf("thumbnail = %q, want the template fallback", rec.Thumbnail)
	}
	if rec.Title != "YouTube" {
		t.Errorf("title = %q, want the document title", rec.Title)
	}
}

func TestExtract_ThumbnailLink_RendererTitleWins(t *testing.T) {
	doc := parseDoc(t, `<html><head><title>YouTube</title></head><body>
<ytd-video-renderer>
  <a id="thumbnail" href="/watch?v=t1"><img src="/t.jpg" alt="alt text"></a>
  <div id="video-title"> Renderer title </div>
</ytd-video-renderer>
</body></html>`, "https://www.youtube.com/results")

	rec := Extract(doc, Target{Kind: KindThumbnailLink, Node: findAnchor(t, doc), Platform: YouTube()})
	if rec.Title != "Renderer title" {
		t.Errorf("title = %q, want the renderer's title element", rec.Title)
	}
}

func TestExtract_NeverFails(t *testing.T) {
	// A detached, attribute-less video on a document with no location
	// extracts to an empty candidate rather than an error.
	doc := parseDoc(t, `<html><body><video></video></body></html>`, "")

	rec := Extract(doc, Target{Kind: KindNativeMedia, Node: findVideo(t, doc)})
	if rec.URL != "" {
		t.Errorf("url = %q, want empty", rec.URL)
	}
	if rec.Candidate() {
		t.Error("a url-less record must not be a save candidate")
	}
}
