package youtube

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/avolkoff/ytscript/models"
)

// playerResponse is the slice of the platform's player response both
// the watch page and the player API embed. Field names follow the wire
// format.
type playerResponse struct {
	PlayabilityStatus struct {
		Status string `json:"status"`
		Reason string `json:"reason"`
	} `json:"playabilityStatus"`
	VideoDetails struct {
		VideoID          string `json:"videoId"`
		Title            string `json:"title"`
		LengthSeconds    string `json:"lengthSeconds"`
		ShortDescription string `json:"shortDescription"`
		IsLiveContent    bool   `json:"isLiveContent"`
		IsLive           bool   `json:"isLive"`
		IsUpcoming       bool   `json:"isUpcoming"`
		IsPrivate        bool   `json:"isPrivate"`
	} `json:"videoDetails"`
	Captions struct {
		PlayerCaptionsTracklistRenderer struct {
			CaptionTracks []captionTrackJSON `json:"captionTracks"`
		} `json:"playerCaptionsTracklistRenderer"`
	} `json:"captions"`
	Microformat struct {
		PlayerMicroformatRenderer struct {
			LiveBroadcastDetails struct {
				IsLiveNow      bool   `json:"isLiveNow"`
				StartTimestamp string `json:"startTimestamp"`
			} `json:"liveBroadcastDetails"`
		} `json:"playerMicroformatRenderer"`
	} `json:"microformat"`
}

// Metadata fetches what the strategy layer needs to know about a
// video. Unavailable videos surface as the sentinel errors.
func (c *Client) Metadata(ctx context.Context, videoID string) (models.VideoMetadata, error) {
	pr, err := c.watchPlayerResponse(ctx, videoID)
	if err != nil {
		return models.VideoMetadata{}, err
	}
	if err := classifyPlayability(pr); err != nil {
		return models.VideoMetadata{}, err
	}

	md := models.VideoMetadata{
		ID:          videoID,
		Title:       pr.VideoDetails.Title,
		Description: pr.VideoDetails.ShortDescription,
		IsLive:      pr.VideoDetails.IsLive || pr.Microformat.PlayerMicroformatRenderer.LiveBroadcastDetails.IsLiveNow,
		IsUpcoming:  pr.VideoDetails.IsUpcoming || pr.PlayabilityStatus.Status == "LIVE_STREAM_OFFLINE",
	}
	if secs, err := strconv.ParseFloat(pr.VideoDetails.LengthSeconds, 64); err == nil {
		md.Duration = secs
	}
	for _, track := range pr.Captions.PlayerCaptionsTracklistRenderer.CaptionTracks {
		code := strings.ToLower(strings.TrimSpace(track.LanguageCode))
		if code == "" {
			continue
		}
		md.CaptionLanguages = append(md.CaptionLanguages, code)
	}
	md.HasCaptions = len(md.CaptionLanguages) > 0
	return md, nil
}

// watchPlayerResponse scrapes the player response out of the watch
// page HTML.
func (c *Client) watchPlayerResponse(ctx context.Context, videoID string) (*playerResponse, error) {
	body, err := c.get(ctx, c.watchURL(videoID))
	if err != nil {
		return nil, err
	}
	page := string(body)

	if strings.Contains(page, `class="g-recaptcha"`) {
		return nil, ErrThrottled
	}
	if strings.Contains(page, `action="https://consent.youtube.com/s"`) {
		return nil, errors.New("blocked by consent form")
	}

	raw, err := extractObject(page, "ytInitialPlayerResponse")
	if err != nil {
		return nil, errors.Wrapf(err, "scraping watch page for %s", videoID)
	}

	var pr playerResponse
	if err := json.Unmarshal([]byte(raw), &pr); err != nil {
		return nil, errors.Wrap(err, "decoding player response")
	}
	return &pr, nil
}

// classifyPlayability turns the playability status into the sentinel
// errors. LIVE_STREAM_OFFLINE is not an error; it marks an upcoming
// stream the caller may still want metadata for.
func classifyPlayability(pr *playerResponse) error {
	status := pr.PlayabilityStatus.Status
	reason := strings.ToLower(pr.PlayabilityStatus.Reason)
	switch status {
	case "", "OK", "LIVE_STREAM_OFFLINE", "CONTENT_CHECK_REQUIRED":
		return nil
	case "LOGIN_REQUIRED":
		if pr.VideoDetails.IsPrivate || strings.Contains(reason, "private") {
			return ErrPrivate
		}
		return ErrRestricted
	case "UNPLAYABLE", "AGE_CHECK_REQUIRED":
		return ErrRestricted
	case "ERROR":
		if strings.Contains(reason, "unavailable") || strings.Contains(reason, "removed") {
			return ErrNotFound
		}
		return errors.Wrapf(ErrNotFound, "playability %s: %s", status, pr.PlayabilityStatus.Reason)
	default:
		return errors.Errorf("unexpected playability status %s: %s", status, pr.PlayabilityStatus.Reason)
	}
}

// extractObject finds `marker` in the page and returns the balanced
// JSON object that follows it. String literals and escapes are honored
// so braces inside titles do not end the scan early.
func extractObject(page, marker string) (string, error) {
	idx := strings.Index(page, marker)
	if idx < 0 {
		return "", errors.Errorf("marker %q not found", marker)
	}
	start := strings.IndexByte(page[idx:], '{')
	if start < 0 {
		return "", errors.Errorf("no object after marker %q", marker)
	}
	start += idx

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(page); i++ {
		ch := page[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return page[start : i+1], nil
			}
		}
	}
	return "", errors.Errorf("unterminated object after marker %q", marker)
}
