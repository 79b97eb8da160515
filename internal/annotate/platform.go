package annotate

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/andybalholm/cascadia"
)

// Platform describes one video site's thumbnail-link conventions: how to
// find thumbnail anchors, how to tell a video link from any other link,
// and how to derive a deterministic thumbnail URL from a video id.
// Definitions are data so users can add sites from the config file; the
// built-in definition covers YouTube.
type Platform struct {
	Name string `toml:"name"`
	// Hosts are hostname substrings the platform claims.
	Hosts []string `toml:"hosts"`
	// ThumbnailSelector matches candidate anchor elements.
	ThumbnailSelector string `toml:"thumbnail_selector"`
	// PathContains / PathPrefixes qualify an anchor's href as a video
	// link (substring match and prefix match respectively).
	PathContains []string `toml:"path_contains"`
	PathPrefixes []string `toml:"path_prefixes"`
	// VideoIDParam is the query parameter carrying the video id.
	VideoIDParam string `toml:"video_id_param"`
	// VideoIDPathPrefix is a path prefix stripped to recover the id.
	VideoIDPathPrefix string `toml:"video_id_path_prefix"`
	// ThumbnailURLTemplate formats a video id into a thumbnail URL.
	ThumbnailURLTemplate string `toml:"thumbnail_url_template"`
	// ContainerSelector matches the preferred overlay anchor ancestor.
	ContainerSelector string `toml:"container_selector"`
	// TitleScopeSelector matches the ancestor holding the title element;
	// TitleSelector finds the title element inside that scope.
	TitleScopeSelector string `toml:"title_scope_selector"`
	TitleSelector      string `toml:"title_selector"`

	thumbSel      cascadia.Selector
	containerSel  cascadia.Selector
	titleScopeSel cascadia.Selector
	titleSel      cascadia.Selector
}

// YouTube returns the built-in YouTube platform definition.
func YouTube() *Platform {
	p := &Platform{
		Name:                 "youtube",
		Hosts:                []string{"youtube.com"},
		ThumbnailSelector:    "a#thumbnail",
		PathContains:         []string{"/watch"},
		PathPrefixes:         []string{"/shorts"},
		VideoIDParam:         "v",
		VideoIDPathPrefix:    "/shorts/",
		ThumbnailURLTemplate: "https://img.youtube.com/vi/%s/hqdefault.jpg",
		ContainerSelector:    "ytd-thumbnail, ytd-player, yt-thumbnail-view-model",
		TitleScopeSelector:   "ytd-rich-grid-media, ytd-compact-video-renderer, ytd-video-renderer, ytd-grid-video-renderer",
		TitleSelector:        "#video-title",
	}
	if err := p.Compile(); err != nil {
		// Built-in selectors are static; a failure here is a programming error.
		panic(err)
	}
	return p
}

// Compile parses the platform's CSS selectors. Must be called before the
// platform is given to an Engine.
func (p *Platform) Compile() error {
	var err error
	if p.thumbSel, err = cascadia.Compile(p.ThumbnailSelector); err != nil {
		return fmt.Errorf("platform %s: thumbnail selector: %w", p.Name, err)
	}
	compileOptional := func(s string) (cascadia.Selector, error) {
		if s == "" {
			return nil, nil
		}
		return cascadia.Compile(s)
	}
	if p.containerSel, err = compileOptional(p.ContainerSelector); err != nil {
		return fmt.Errorf("platform %s: container selector: %w", p.Name, err)
	}
	if p.titleScopeSel, err = compileOptional(p.TitleScopeSelector); err != nil {
		return fmt.Errorf("platform %s: title scope selector: %w", p.Name, err)
	}
	if p.titleSel, err = compileOptional(p.TitleSelector); err != nil {
		return fmt.Errorf("platform %s: title selector: %w", p.Name, err)
	}
	return nil
}

// MatchesHost reports whether the platform claims the given hostname.
func (p *Platform) MatchesHost(host string) bool {
	for _, h := range p.Hosts {
		if h != "" && strings.Contains(host, h) {
			return true
		}
	}
	return false
}

// IsVideoLink reports whether an anchor href has the path shape of a
// video link on this platform.
func (p *Platform) IsVideoLink(href string) bool {
	for _, sub := range p.PathContains {
		if strings.Contains(href, sub) {
			return true
		}
	}
	for _, prefix := range p.PathPrefixes {
		if strings.HasPrefix(href, prefix) {
			return true
		}
	}
	return false
}

// VideoID extracts the platform video id from an absolute video URL,
// or "" when no recognized id pattern is present.
func (p *Platform) VideoID(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	if p.VideoIDParam != "" {
		if id := u.Query().Get(p.VideoIDParam); id != "" {
			return id
		}
	}
	if p.VideoIDPathPrefix != "" && strings.HasPrefix(u.Path, p.VideoIDPathPrefix) {
		return strings.Trim(strings.TrimPrefix(u.Path, p.VideoIDPathPrefix), "/")
	}
	return ""
}

// ThumbnailURL derives the deterministic thumbnail URL for a video id,
// or "" when the platform has no template or the id is empty.
func (p *Platform) ThumbnailURL(videoID string) string {
	if videoID == "" || p.ThumbnailURLTemplate == "" {
		return ""
	}
	return fmt.Sprintf(p.ThumbnailURLTemplate, videoID)
}

// ForHost returns the first platform claiming host, or nil.
func ForHost(platforms []*Platform, host string) *Platform {
	if host == "" {
		return nil
	}
	for _, p := range platforms {
		if p.MatchesHost(host) {
			return p
		}
	}
	return nil
}
