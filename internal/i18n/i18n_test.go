package i18n_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-jyoti/internal/config"
	"github.com/tartampluch/go-jyoti/internal/i18n"
)

var allKeys = []string{
	config.TKeyErrInvalidDate,
	config.TKeyErrFutureLMP,
	config.TKeyErrFutureBirth,
	config.TKeyErrInvalidNumber,
	config.TKeyErrMissingInput,
	config.TKeyErrBadReminder,
	config.TKeyErrEmptyMessage,
	config.TKeyErrBodyTooLarge,
	config.TKeyErrInvalidBody,
	config.TKeyErrNotFound,
	config.TKeyErrInternal,
	config.TKeyDangerTitle,
	config.TKeyDangerBleeding,
	config.TKeyDangerSwelling,
	config.TKeyDangerHeadache,
	config.TKeyDangerMovement,
	config.TKeyDangerReferral,
	config.TKeyPromptDangers,
	config.TKeyPromptVaccines,
	config.TKeyPromptLMPToEDD,
	config.TKeyAssistantGreet,
	config.TKeyAssistantTag,
	config.TKeyUnitYears,
	config.TKeyUnitMonths,
	config.TKeyUnitWeeks,
	config.TKeyUnitDays,
	config.TKeyEvtVaccination,
}

func newTranslator(t *testing.T) *i18n.Translator {
	t.Helper()
	tr, err := i18n.New(config.DefaultLanguage)
	require.NoError(t, err)
	return tr
}

// TestIntegrity ensures every key declared in config resolves in every locale.
func TestIntegrity(t *testing.T) {
	tr := newTranslator(t)
	assert.ElementsMatch(t, config.SupportedLanguages, tr.Languages())

	for _, lang := range tr.Languages() {
		for _, key := range allKeys {
			msg := tr.Msg(lang, key, map[string]any{"Field": "x", "Name": "n", "Vaccine": "v"})
			assert.NotEqualf(t, key, msg, "key %q is missing in %s", key, lang)
		}
	}
}

func TestLanguages_DefaultFirst(t *testing.T) {
	tr, err := i18n.New("hi")
	require.NoError(t, err)
	assert.Equal(t, "hi", tr.Languages()[0])
	assert.Equal(t, "hi", tr.Negotiate("fr"))
}

func TestNegotiate(t *testing.T) {
	tr := newTranslator(t)

	tests := []struct {
		name  string
		prefs []string
		want  string
	}{
		{"nothing", nil, "en"},
		{"empty", []string{""}, "en"},
		{"hindi header", []string{"hi-IN,hi;q=0.9,en;q=0.8"}, "hi"},
		{"unsupported", []string{"fr-FR"}, "en"},
		{"query wins over header", []string{"hi", "en-US"}, "hi"},
		{"empty query falls to header", []string{"", "hi"}, "hi"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tr.Negotiate(tt.prefs...))
		})
	}
}

func TestMsg(t *testing.T) {
	tr := newTranslator(t)

	assert.Equal(t, "तारीख गलत है।", tr.Msg("hi", config.TKeyErrInvalidDate, nil))
	assert.Equal(t, "LMP भविष्य की नहीं हो सकती।", tr.Msg("hi", config.TKeyErrFutureLMP, nil))
	assert.Equal(t, "जन्म तिथि गलत है।", tr.Msg("hi", config.TKeyErrFutureBirth, nil))
	assert.Equal(t, "Invalid date.", tr.Msg("en", config.TKeyErrInvalidDate, nil))

	assert.Equal(t, "Asha: BCG", tr.Msg("en", config.TKeyEvtVaccination,
		map[string]any{"Name": "Asha", "Vaccine": "BCG"}))

	// Unknown language uses the default, unknown key comes back as-is.
	assert.Equal(t, "Invalid date.", tr.Msg("de", config.TKeyErrInvalidDate, nil))
	assert.Equal(t, "no_such_key", tr.Msg("en", "no_such_key", nil))
}

func TestNew_BadDefault(t *testing.T) {
	_, err := i18n.New("!!")
	assert.Error(t, err)
}

// Raw locale files must stay flat string maps.
func TestLocaleFiles_Flat(t *testing.T) {
	for _, lang := range config.SupportedLanguages {
		raw, err := i18n.LocaleFile(lang)
		require.NoError(t, err)

		var m map[string]string
		require.NoError(t, json.Unmarshal(raw, &m), lang)
		assert.Len(t, m, len(allKeys), lang)
	}
}
