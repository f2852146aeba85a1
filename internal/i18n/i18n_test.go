package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetFallsBackToFinnish(t *testing.T) {
	assert.Equal(t, fiTable, Get("sv"))
	assert.Equal(t, fiTable, Get(""))
}

func TestGetPerLanguage(t *testing.T) {
	assert.Equal(t, etTable, Get(Estonian))
	assert.Equal(t, enTable, Get(English))
	assert.Equal(t, fiTable, Get(Finnish))
}

func TestValid(t *testing.T) {
	assert.True(t, Valid(Finnish))
	assert.True(t, Valid(Estonian))
	assert.True(t, Valid(English))
	assert.False(t, Valid("sv"))
	assert.False(t, Valid(""))
}

func TestTablesAreComplete(t *testing.T) {
	for _, lang := range []Language{Finnish, Estonian, English} {
		tab := Get(lang)
		assert.NotEmpty(t, tab.ReadyToListen, "lang %s", lang)
		assert.NotEmpty(t, tab.RecordingFailed, "lang %s", lang)
		assert.NotEmpty(t, tab.VoiceAnswer, "lang %s", lang)
		assert.NotEmpty(t, tab.SavedOffline, "lang %s", lang)
	}
}
