package main

import (
	"strings"
	"testing"
	"time"
	"unicode/utf16"

	"github.com/stretchr/testify/assert"
)

func TestTruncateUTF16(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		limit int
		want  string
	}{
		{"short", "abc", 10, "abc"},
		{"exact", "abcd", 4, "abcd"},
		{"cut", "abcdef", 3, "abc"},
		{"empty", "", 5, ""},
		{"surrogate kept whole", "ab\U0001F50A", 4, "ab\U0001F50A"},
		{"surrogate not split", "ab\U0001F50A", 3, "ab"},
		{"bmp multibyte", "ééé", 2, "éé"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncateUTF16(tt.in, tt.limit)
			assert.LessOrEqual(t, len(got), tt.limit)
			assert.Equal(t, tt.want, string(utf16.Decode(got)))
		})
	}
}

func TestFillUTF16(t *testing.T) {
	buf := make([]uint16, 6)
	for i := range buf {
		buf[i] = 'x'
	}

	fillUTF16(buf, "hi")
	assert.Equal(t, []uint16{'h', 'i', 0, 0, 0, 0}, buf)

	fillUTF16(buf, "overflowing")
	assert.Equal(t, []uint16{'o', 'v', 'e', 'r', 'f', 0}, buf, "last unit stays NUL")

	fillUTF16(nil, "ignored")
}

func TestNormalizeTooltip(t *testing.T) {
	assert.Equal(t, appName, normalizeTooltip(""))
	assert.Equal(t, appName, normalizeTooltip("   \n"))
	assert.Equal(t, "VolumeSyncer", normalizeTooltip("  VolumeSyncer  "))

	long := strings.Repeat("a", 300)
	assert.Len(t, normalizeTooltip(long), maxTooltipUnits)
}

func TestFormatTooltip(t *testing.T) {
	assert.Equal(t, appName, formatTooltip(nil))

	c := Correction{Timestamp: time.Date(2024, 1, 2, 15, 4, 0, 0, time.Local), Level: 0.42}
	assert.Equal(t, "VolumeSyncer\nLast balanced: 42% at 15:04", formatTooltip(&c))
	assert.LessOrEqual(t, len(utf16.Encode([]rune(formatTooltip(&c)))), maxTooltipUnits)
}

func TestMessages(t *testing.T) {
	assert.Equal(t, "Audio channels balanced to 70%", correctionMessage(0.7))
	assert.Equal(t, "Notifications enabled", notificationsToggledMessage(true))
	assert.Equal(t, "Notifications disabled", notificationsToggledMessage(false))
}

func TestNotifierFunc(t *testing.T) {
	var got notification
	var n Notifier = NotifierFunc(func(title, message string) {
		got = notification{title, message}
	})
	n.Notify("t", "m")
	assert.Equal(t, notification{"t", "m"}, got)
}
