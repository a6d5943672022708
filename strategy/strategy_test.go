package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/avolkoff/ytscript/models"
)

func prefs() models.Preferences {
	return models.DefaultPreferences()
}

func TestPlanWithCaptions(t *testing.T) {
	md := models.VideoMetadata{
		ID:               "dQw4w9WgXcQ",
		Duration:         212,
		HasCaptions:      true,
		CaptionLanguages: []string{"en"},
	}
	assert.Equal(t,
		[]models.Method{models.MethodCaptions, models.MethodPlayer, models.MethodSpeech},
		Plan(md, prefs()))
}

func TestPlanWithoutSpeechFallback(t *testing.T) {
	md := models.VideoMetadata{ID: "dQw4w9WgXcQ", Duration: 212, HasCaptions: true}
	p := prefs()
	p.SpeechFallback = false
	assert.Equal(t, []models.Method{models.MethodCaptions, models.MethodPlayer}, Plan(md, p))
}

func TestPlanLiveVideo(t *testing.T) {
	md := models.VideoMetadata{ID: "live1234567", IsLive: true, HasCaptions: true}
	assert.Equal(t, []models.Method{models.MethodSpeech}, Plan(md, prefs()))

	p := prefs()
	p.SpeechFallback = false
	assert.Empty(t, Plan(md, p))
}

func TestPlanUpcomingVideo(t *testing.T) {
	md := models.VideoMetadata{ID: "soon1234567", IsUpcoming: true, HasCaptions: true}
	assert.Equal(t, []models.Method{models.MethodSpeech}, Plan(md, prefs()))
}

func TestPlanShortVideo(t *testing.T) {
	md := models.VideoMetadata{ID: "short123456", Duration: 8, HasCaptions: true}
	assert.Equal(t, []models.Method{models.MethodSpeech}, Plan(md, prefs()))
}

func TestPlanNoCaptionsDeclared(t *testing.T) {
	md := models.VideoMetadata{ID: "nocc1234567", Duration: 120}
	assert.Equal(t, []models.Method{models.MethodSpeech}, Plan(md, prefs()))
}

func TestPlanNeverDuplicates(t *testing.T) {
	mds := []models.VideoMetadata{
		{Duration: 120, HasCaptions: true},
		{IsLive: true},
		{Duration: 5},
		{},
	}
	for _, md := range mds {
		for _, fallback := range []bool{true, false} {
			p := prefs()
			p.SpeechFallback = fallback
			plan := Plan(md, p)
			seen := map[models.Method]bool{}
			for _, m := range plan {
				assert.False(t, seen[m], "method %s appears twice in %v", m, plan)
				seen[m] = true
			}
		}
	}
}

func TestForcedPlan(t *testing.T) {
	assert.Equal(t,
		[]models.Method{models.MethodPlayer, models.MethodSpeech},
		ForcedPlan(models.MethodPlayer, prefs()))

	// Forcing speech never doubles it up.
	assert.Equal(t,
		[]models.Method{models.MethodSpeech},
		ForcedPlan(models.MethodSpeech, prefs()))

	p := prefs()
	p.SpeechFallback = false
	assert.Equal(t, []models.Method{models.MethodCaptions}, ForcedPlan(models.MethodCaptions, p))
}

func TestPrimary(t *testing.T) {
	md := models.VideoMetadata{Duration: 120, HasCaptions: true}
	m, ok := Primary(md, prefs())
	assert.True(t, ok)
	assert.Equal(t, models.MethodCaptions, m)

	p := prefs()
	p.SpeechFallback = false
	_, ok = Primary(models.VideoMetadata{IsLive: true}, p)
	assert.False(t, ok)
}

func TestMethodConfigCaptions(t *testing.T) {
	md := models.VideoMetadata{
		Duration:         300,
		HasCaptions:      true,
		CaptionLanguages: []string{"de", "en"},
	}
	cfg, err := MethodConfig(models.MethodCaptions, md, prefs())
	assert.NoError(t, err)
	assert.Equal(t, models.MethodCaptions, cfg.Method)
	assert.Equal(t, "en", cfg.Language)
	assert.NotNil(t, cfg.Captions)
	assert.Equal(t, "US", cfg.Captions.Country)
	assert.Nil(t, cfg.Player)
	assert.Nil(t, cfg.Speech)
	// Variants of the match first, then the remaining languages.
	assert.Equal(t, []string{"en-us", "en-gb", "en-ca", "en-au", "de"}, cfg.Fallbacks)
}

func TestMethodConfigPlayer(t *testing.T) {
	md := models.VideoMetadata{CaptionLanguages: []string{"ja", "en"}}
	cfg, err := MethodConfig(models.MethodPlayer, md, prefs())
	assert.NoError(t, err)
	assert.NotNil(t, cfg.Player)
	assert.Equal(t, []string{"ja", "en"}, cfg.Player.Available)
}

func TestMethodConfigSpeechHintGating(t *testing.T) {
	md := models.VideoMetadata{
		Title:            "Talk",
		Duration:         900,
		HasCaptions:      true,
		CaptionLanguages: []string{"en"},
	}
	cfg, err := MethodConfig(models.MethodSpeech, md, prefs())
	assert.NoError(t, err)
	assert.NotNil(t, cfg.Speech)
	// Exact match carries confidence 1.0, above the hint gate.
	assert.Equal(t, "en", cfg.Speech.LanguageHint)
	assert.Equal(t, speechModel, cfg.Speech.Model)
	assert.Equal(t, "Talk", cfg.Speech.Title)
	assert.Equal(t, 900.0, cfg.Speech.Duration)

	// Priority match carries 0.6, below the gate: no hint.
	md.CaptionLanguages = []string{"fr"}
	p := prefs()
	p.Language = "sv"
	cfg, err = MethodConfig(models.MethodSpeech, md, p)
	assert.NoError(t, err)
	assert.Empty(t, cfg.Speech.LanguageHint)
}

func TestMethodConfigFormatHint(t *testing.T) {
	md := models.VideoMetadata{CaptionLanguages: []string{"en"}}

	p := prefs()
	cfg, _ := MethodConfig(models.MethodSpeech, md, p)
	assert.Equal(t, "json", cfg.Speech.FormatHint)

	p.Format = models.FormatSRT
	cfg, _ = MethodConfig(models.MethodSpeech, md, p)
	assert.Equal(t, "verbose_json", cfg.Speech.FormatHint)

	p.Format = models.FormatJSON
	cfg, _ = MethodConfig(models.MethodSpeech, md, p)
	assert.Equal(t, "verbose_json", cfg.Speech.FormatHint)
}

func TestMethodConfigUnknownMethod(t *testing.T) {
	_, err := MethodConfig(models.Method("osmosis"), models.VideoMetadata{}, prefs())
	assert.Error(t, err)
}

func TestEstimateSeconds(t *testing.T) {
	short := models.VideoMetadata{Duration: 100}
	long := models.VideoMetadata{Duration: 7200}
	unknown := models.VideoMetadata{}

	assert.Equal(t, 2.0, EstimateSeconds(models.MethodCaptions, short))
	assert.Equal(t, 3.0, EstimateSeconds(models.MethodPlayer, short))
	assert.Equal(t, 40.0, EstimateSeconds(models.MethodSpeech, short))

	// Caps hold for arbitrarily long videos.
	assert.Equal(t, 10.0, EstimateSeconds(models.MethodCaptions, long))
	assert.Equal(t, 15.0, EstimateSeconds(models.MethodPlayer, long))
	assert.Equal(t, 300.0, EstimateSeconds(models.MethodSpeech, long))

	// Unknown duration uses the default length.
	assert.Equal(t, 6.0, EstimateSeconds(models.MethodCaptions, unknown))
	assert.Equal(t, 9.0, EstimateSeconds(models.MethodPlayer, unknown))
	assert.Equal(t, 60.0, EstimateSeconds(models.MethodSpeech, unknown))
}

func TestEstimateOrdering(t *testing.T) {
	// Captions are always estimated cheaper than player, player
	// cheaper than speech, for any duration.
	for _, dur := range []float64{0, 1, 30, 300, 3600, 100000} {
		md := models.VideoMetadata{Duration: dur}
		c := EstimateSeconds(models.MethodCaptions, md)
		p := EstimateSeconds(models.MethodPlayer, md)
		s := EstimateSeconds(models.MethodSpeech, md)
		assert.Less(t, c, p, "duration %v", dur)
		assert.Less(t, p, s, "duration %v", dur)
	}
}
