package validation

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/avolkoff/ytscript/errors"
)

// videoIDPattern matches the platform's 11-character video IDs.
var videoIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

type Validator struct{}

func NewValidator() *Validator {
	return &Validator{}
}

// VideoID extracts and validates a video ID from a raw reference: a
// bare ID or any of the common URL forms.
func (v *Validator) VideoID(ref string) (string, error) {
	const op = "Validator.VideoID"

	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", errors.InvalidInput(op, nil, "video reference is required")
	}

	if videoIDPattern.MatchString(ref) {
		return ref, nil
	}

	id, err := idFromURL(ref)
	if err != nil {
		return "", errors.InvalidInput(op, err, "could not extract a video ID from the reference")
	}
	if !videoIDPattern.MatchString(id) {
		return "", errors.InvalidInput(op, nil, "video ID must be 11 characters of [A-Za-z0-9_-]")
	}
	return id, nil
}

func idFromURL(ref string) (string, error) {
	const op = "validation.idFromURL"

	parsed, err := url.Parse(ref)
	if err != nil {
		return "", err
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", errors.InvalidInput(op, nil, "URL must use HTTP or HTTPS")
	}

	host := strings.TrimPrefix(parsed.Hostname(), "www.")
	switch host {
	case "youtu.be":
		return firstPathSegment(parsed.Path), nil
	case "youtube.com", "m.youtube.com", "music.youtube.com":
		return idFromYouTubePath(parsed), nil
	}
	return "", errors.InvalidInput(op, nil, "only YouTube URLs are supported")
}

func idFromYouTubePath(u *url.URL) string {
	if id := u.Query().Get("v"); id != "" {
		return id
	}
	for _, prefix := range []string{"/shorts/", "/embed/", "/live/", "/v/"} {
		if strings.HasPrefix(u.Path, prefix) {
			return firstPathSegment(strings.TrimPrefix(u.Path, prefix))
		}
	}
	return ""
}

func firstPathSegment(path string) string {
	path = strings.TrimPrefix(path, "/")
	if i := strings.IndexByte(path, '/'); i >= 0 {
		return path[:i]
	}
	return path
}
