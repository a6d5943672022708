package youtube

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"html"
	"math"
	"net/url"
	"strings"

	"github.com/pkg/errors"

	"github.com/avolkoff/ytscript/models"
)

// CaptionTrack is one downloadable caption track for a video.
type CaptionTrack struct {
	BaseURL      string
	LanguageCode string
	Name         string
	// Kind is "asr" for auto-generated tracks, empty for manual ones.
	Kind string
}

// Generated reports whether the track is machine-generated.
func (t CaptionTrack) Generated() bool { return t.Kind == "asr" }

// captionTrackJSON covers both wire shapes of a caption track: the
// watch page uses name.simpleText, the player API uses name.runs.
type captionTrackJSON struct {
	BaseURL string `json:"baseUrl"`
	Name    struct {
		SimpleText string `json:"simpleText"`
		Runs       []struct {
			Text string `json:"text"`
		} `json:"runs"`
	} `json:"name"`
	LanguageCode string `json:"languageCode"`
	Kind         string `json:"kind"`
}

func (j captionTrackJSON) track() CaptionTrack {
	name := j.Name.SimpleText
	if name == "" && len(j.Name.Runs) > 0 {
		name = j.Name.Runs[0].Text
	}
	return CaptionTrack{
		BaseURL:      j.BaseURL,
		LanguageCode: strings.ToLower(strings.TrimSpace(j.LanguageCode)),
		Name:         name,
		Kind:         j.Kind,
	}
}

// CaptionTracks lists the tracks declared on the watch page.
func (c *Client) CaptionTracks(ctx context.Context, videoID string) ([]CaptionTrack, error) {
	pr, err := c.watchPlayerResponse(ctx, videoID)
	if err != nil {
		return nil, err
	}
	if err := classifyPlayability(pr); err != nil {
		return nil, err
	}
	tracks := convertTracks(pr.Captions.PlayerCaptionsTracklistRenderer.CaptionTracks)
	if len(tracks) == 0 {
		return nil, ErrNoCaptions
	}
	return tracks, nil
}

func convertTracks(raw []captionTrackJSON) []CaptionTrack {
	tracks := make([]CaptionTrack, 0, len(raw))
	for _, j := range raw {
		t := j.track()
		if t.BaseURL == "" || t.LanguageCode == "" {
			continue
		}
		tracks = append(tracks, t)
	}
	return tracks
}

// FindTrack picks the track for a language, preferring manual tracks
// over auto-generated ones. Matching is case-insensitive.
func FindTrack(tracks []CaptionTrack, lang string) (CaptionTrack, bool) {
	want := strings.ToLower(strings.TrimSpace(lang))
	var generated CaptionTrack
	var haveGenerated bool
	for _, t := range tracks {
		if t.LanguageCode != want {
			continue
		}
		if !t.Generated() {
			return t, true
		}
		if !haveGenerated {
			generated, haveGenerated = t, true
		}
	}
	return generated, haveGenerated
}

// timedtextXML is the default caption wire format: one <text> element
// per cue with float seconds in the attributes.
type timedtextXML struct {
	Entries []struct {
		Text  string  `xml:",chardata"`
		Start float64 `xml:"start,attr"`
		Dur   float64 `xml:"dur,attr"`
	} `xml:"text"`
}

// DownloadTrack fetches a track in the XML timed-text format and
// converts it to millisecond segments.
func (c *Client) DownloadTrack(ctx context.Context, track CaptionTrack) ([]models.Segment, error) {
	if track.BaseURL == "" {
		return nil, errors.New("caption track has no URL")
	}
	body, err := c.get(ctx, track.BaseURL)
	if err != nil {
		return nil, err
	}

	var tt timedtextXML
	if err := xml.Unmarshal(body, &tt); err != nil {
		return nil, errors.Wrap(err, "decoding timed text")
	}

	segments := make([]models.Segment, 0, len(tt.Entries))
	for _, e := range tt.Entries {
		text := html.UnescapeString(strings.TrimSpace(e.Text))
		if text == "" {
			continue
		}
		segments = append(segments, models.Segment{
			Text:       text,
			StartMS:    int64(math.Round(e.Start * 1000)),
			DurationMS: int64(math.Round(e.Dur * 1000)),
		})
	}
	if len(segments) == 0 {
		return nil, errors.Wrapf(ErrNoCaptions, "track %s is empty", track.LanguageCode)
	}
	return segments, nil
}

// json3Body is the player API caption format: millisecond-native
// events whose text is split across seg runs.
type json3Body struct {
	Events []struct {
		TStartMS    int64 `json:"tStartMs"`
		DDurationMS int64 `json:"dDurationMs"`
		Segs        []struct {
			UTF8 string `json:"utf8"`
		} `json:"segs"`
	} `json:"events"`
}

// DownloadTrackJSON3 fetches a track in the json3 format used by the
// player API.
func (c *Client) DownloadTrackJSON3(ctx context.Context, track CaptionTrack) ([]models.Segment, error) {
	if track.BaseURL == "" {
		return nil, errors.New("caption track has no URL")
	}
	body, err := c.get(ctx, withFormat(track.BaseURL, "json3"))
	if err != nil {
		return nil, err
	}

	var j3 json3Body
	if err := json.Unmarshal(body, &j3); err != nil {
		return nil, errors.Wrap(err, "decoding json3 captions")
	}

	segments := make([]models.Segment, 0, len(j3.Events))
	for _, ev := range j3.Events {
		var b strings.Builder
		for _, seg := range ev.Segs {
			b.WriteString(seg.UTF8)
		}
		text := html.UnescapeString(strings.TrimSpace(b.String()))
		if text == "" {
			continue
		}
		segments = append(segments, models.Segment{
			Text:       text,
			StartMS:    ev.TStartMS,
			DurationMS: ev.DDurationMS,
		})
	}
	if len(segments) == 0 {
		return nil, errors.Wrapf(ErrNoCaptions, "track %s is empty", track.LanguageCode)
	}
	return segments, nil
}

// withFormat adds or replaces the fmt query parameter on a track URL.
func withFormat(trackURL, format string) string {
	u, err := url.Parse(trackURL)
	if err != nil {
		return trackURL
	}
	q := u.Query()
	q.Set("fmt", format)
	u.RawQuery = q.Encode()
	return u.String()
}
