package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToStoreStatus(t *testing.T) {
	tests := []struct {
		name     string
		status   ReadingStatus
		expected string
	}{
		{"want_to_read maps to historical to-read spelling", StatusWantToRead, "to-read"},
		{"reading maps to reading", StatusReading, "reading"},
		{"completed maps to completed", StatusCompleted, "completed"},
		{"unknown status falls back to to-read", ReadingStatus("abandoned"), "to-read"},
		{"empty status falls back to to-read", ReadingStatus(""), "to-read"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ToStoreStatus(tt.status))
		})
	}
}

func TestFromStoreStatus(t *testing.T) {
	tests := []struct {
		name      string
		persisted string
		expected  ReadingStatus
	}{
		{"to-read maps to want_to_read", "to-read", StatusWantToRead},
		{"reading maps to reading", "reading", StatusReading},
		{"completed maps to completed", "completed", StatusCompleted},
		{"unknown persisted value maps to want_to_read", "paused", StatusWantToRead},
		{"legacy want_to_read spelling maps to want_to_read", "want_to_read", StatusWantToRead},
		{"empty value maps to want_to_read", "", StatusWantToRead},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FromStoreStatus(tt.persisted))
		})
	}
}

func TestStatusRoundTrip(t *testing.T) {
	// The mapping must be idempotent under composition: translating a status
	// to the store vocabulary, back, and to the store again yields the same
	// persisted value.
	for _, s := range []ReadingStatus{StatusWantToRead, StatusReading, StatusCompleted} {
		once := ToStoreStatus(s)
		again := ToStoreStatus(FromStoreStatus(once))
		assert.Equal(t, once, again, "status %s does not round-trip", s)
	}
}

func TestReadingStatusValid(t *testing.T) {
	assert.True(t, StatusWantToRead.Valid())
	assert.True(t, StatusReading.Valid())
	assert.True(t, StatusCompleted.Valid())
	assert.False(t, ReadingStatus("to-read").Valid(), "persisted vocabulary is not valid UI vocabulary")
	assert.False(t, ReadingStatus("").Valid())
}

func TestBookThemeList(t *testing.T) {
	var b Book
	assert.Nil(t, b.ThemeList())

	b.SetThemeList([]string{"resilience", "colonialism"})
	assert.Equal(t, []string{"resilience", "colonialism"}, b.ThemeList())

	b.Themes = "{not json"
	assert.Nil(t, b.ThemeList())

	b.SetThemeList(nil)
	assert.Empty(t, b.Themes)
}
