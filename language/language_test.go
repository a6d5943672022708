package language

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveExact(t *testing.T) {
	m := Resolve([]string{"fr", "en", "de"}, "en")
	assert.Equal(t, "en", m.Language)
	assert.Equal(t, MatchExact, m.Kind)
	assert.Equal(t, 1.0, m.Confidence)
	assert.Equal(t, []string{"fr", "de"}, m.Alternates)
}

func TestResolveFamily(t *testing.T) {
	m := Resolve([]string{"en-GB", "fr"}, "en")
	assert.Equal(t, "en-gb", m.Language)
	assert.Equal(t, MatchFamily, m.Kind)
	assert.Equal(t, 0.8, m.Confidence)

	// The other direction: regional preference, bare code available.
	m = Resolve([]string{"en", "fr"}, "en-US")
	assert.Equal(t, "en", m.Language)
	assert.Equal(t, MatchFamily, m.Kind)
}

func TestResolvePriority(t *testing.T) {
	// Neither sv nor a variant exists; es is the earliest priority hit.
	m := Resolve([]string{"nl", "es", "fr"}, "sv")
	assert.Equal(t, "es", m.Language)
	assert.Equal(t, MatchPriority, m.Kind)
	assert.Equal(t, 0.6, m.Confidence)
	assert.Equal(t, []string{"nl", "fr"}, m.Alternates)
}

func TestResolveFirstAvailable(t *testing.T) {
	m := Resolve([]string{"fi", "hu"}, "ja")
	assert.Equal(t, "fi", m.Language)
	assert.Equal(t, MatchFirstAvailable, m.Kind)
	assert.Equal(t, 0.3, m.Confidence)
	assert.Equal(t, []string{"hu"}, m.Alternates)
}

func TestResolveNone(t *testing.T) {
	m := Resolve(nil, "ja")
	assert.Equal(t, "ja", m.Language)
	assert.Equal(t, MatchNone, m.Kind)
	assert.Equal(t, 0.0, m.Confidence)
	assert.Empty(t, m.Alternates)
}

func TestResolveConfidenceOrdering(t *testing.T) {
	exact := Resolve([]string{"en"}, "en")
	family := Resolve([]string{"en-gb"}, "en")
	priority := Resolve([]string{"fr"}, "sv")
	first := Resolve([]string{"fi"}, "sv")
	none := Resolve(nil, "sv")

	assert.Greater(t, exact.Confidence, family.Confidence)
	assert.Greater(t, family.Confidence, priority.Confidence)
	assert.Greater(t, priority.Confidence, first.Confidence)
	assert.Greater(t, first.Confidence, none.Confidence)
}

func TestResolveCleansAvailable(t *testing.T) {
	m := Resolve([]string{" EN ", "", "en", "FR"}, "fr")
	assert.Equal(t, "fr", m.Language)
	assert.Equal(t, MatchExact, m.Kind)
	// Duplicates and empties are dropped before matching.
	assert.Equal(t, []string{"en"}, m.Alternates)
}

func TestResolveEmptyPreferredDefaultsToEnglish(t *testing.T) {
	m := Resolve([]string{"de", "en"}, "")
	assert.Equal(t, "en", m.Language)
	assert.Equal(t, MatchExact, m.Kind)
}

func TestVariants(t *testing.T) {
	assert.Equal(t, []string{"en", "en-us", "en-gb", "en-ca", "en-au"}, Variants("en"))
	assert.Equal(t, []string{"pt", "pt-br", "pt-pt"}, Variants("PT"))
	assert.Equal(t, []string{"xx"}, Variants("xx"))
	assert.Equal(t, []string{"en-gb"}, Variants("en-GB"))
	assert.Equal(t, []string{"en"}, Variants(""))
}

func TestVariantsReturnsCopy(t *testing.T) {
	v := Variants("en")
	v[0] = "mutated"
	assert.Equal(t, "en", Variants("en")[0])
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"EN", "en"},
		{" fr ", "fr"},
		{"en-US", "en-us"},
		{"", "en"},
		{"klingon", "en"},
		{"zz", "en"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Normalize(tt.input), "input %q", tt.input)
	}
}

func TestPrimarySubtag(t *testing.T) {
	assert.Equal(t, "en", PrimarySubtag("en-GB"))
	assert.Equal(t, "zh", PrimarySubtag("zh_Hant"))
	assert.Equal(t, "fr", PrimarySubtag("fr"))
}
