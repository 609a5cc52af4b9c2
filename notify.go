package main

import (
	"fmt"
	"strings"
	"unicode/utf16"

	"github.com/gen2brain/beeep"
)

// Shell_NotifyIcon buffer sizes in UTF-16 units, excluding the terminator.
const (
	maxTooltipUnits   = 127
	maxInfoTitleUnits = 63
	maxInfoUnits      = 255
)

const (
	notifierBalloon = "balloon"
	notifierToast   = "toast"
)

// Notifier delivers a user-visible message. Delivery is fire-and-forget.
type Notifier interface {
	Notify(title, message string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(title, message string)

func (f NotifierFunc) Notify(title, message string) { f(title, message) }

// toastNotifier shows Windows toasts instead of tray balloons.
type toastNotifier struct {
	onError func(error)
}

func newToastNotifier(onError func(error)) *toastNotifier {
	beeep.AppName = appName
	return &toastNotifier{onError: onError}
}

func (t *toastNotifier) Notify(title, message string) {
	title = string(utf16.Decode(truncateUTF16(title, maxInfoTitleUnits)))
	message = string(utf16.Decode(truncateUTF16(message, maxInfoUnits)))
	go func() {
		if err := beeep.Notify(title, message, ""); err != nil && t.onError != nil {
			t.onError(err)
		}
	}()
}

// truncateUTF16 encodes s and cuts it to at most limit UTF-16 units without
// splitting a surrogate pair.
func truncateUTF16(s string, limit int) []uint16 {
	units := utf16.Encode([]rune(s))
	if len(units) <= limit {
		return units
	}
	units = units[:limit]
	if n := len(units); n > 0 && utf16.IsSurrogate(rune(units[n-1])) && units[n-1] < 0xDC00 {
		units = units[:n-1]
	}
	return units
}

// fillUTF16 copies s into a fixed, NUL-terminated Win32 buffer, truncating
// silently.
func fillUTF16(dst []uint16, s string) {
	for i := range dst {
		dst[i] = 0
	}
	if len(dst) == 0 {
		return
	}
	copy(dst, truncateUTF16(s, len(dst)-1))
}

func normalizeTooltip(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		text = appName
	}
	return string(utf16.Decode(truncateUTF16(text, maxTooltipUnits)))
}

func formatTooltip(last *Correction) string {
	if last == nil {
		return appName
	}
	return fmt.Sprintf("%s\nLast balanced: %s at %s", appName, levelPercent(last.Level), last.Timestamp.Format("15:04"))
}

func correctionMessage(level float32) string {
	return "Audio channels balanced to " + levelPercent(level)
}

func notificationsToggledMessage(enabled bool) string {
	if enabled {
		return "Notifications enabled"
	}
	return "Notifications disabled"
}
