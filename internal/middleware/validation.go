package middleware

import (
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v3"
)

// Field length limits for save requests. Oversized metadata is a sign of
// a broken extractor, not a legitimate save.
const (
	MaxURLLen       = 2048
	MaxTitleLen     = 512
	MaxThumbnailLen = 2048
)

// ErrorResponse is a helper that returns a standard API error response.
func ErrorResponse(c fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    code,
			"message": message,
		},
	})
}

// ValidateVideoURL checks that a video URL is present, absolute, and
// within limits. Returns the trimmed URL and an empty message on success.
func ValidateVideoURL(raw string) (string, string) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", "data.url is required"
	}
	if len(raw) > MaxURLLen {
		return "", "data.url is too long"
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "", "data.url must be an absolute URL"
	}
	switch u.Scheme {
	case "http", "https":
	default:
		return "", "data.url must use http or https"
	}
	return raw, ""
}

// ValidateTitle trims and caps a save request title. Empty titles are
// allowed (extraction is best-effort).
func ValidateTitle(title string) string {
	title = strings.TrimSpace(title)
	if len(title) > MaxTitleLen {
		return title[:MaxTitleLen]
	}
	return title
}

// ValidateThumbnail drops thumbnail values that are oversized or not
// URL-shaped; a bad thumbnail degrades to none.
func ValidateThumbnail(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || len(raw) > MaxThumbnailLen {
		return ""
	}
	if _, err := url.Parse(raw); err != nil {
		return ""
	}
	return raw
}
