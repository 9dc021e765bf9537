// Package format renders relay payloads into the fixed Telegram message
// templates. Values are sanitized and HTML-escaped so user-controlled
// strings cannot break the Bot API's HTML parse mode.
package format

import (
	"fmt"
	"html"
	"strings"

	"github.com/okonenko/pharos/internal/models"
	"github.com/okonenko/pharos/pkg/validator"
)

// webglRendererBudget keeps long renderer strings from dominating the
// notification.
const webglRendererBudget = 50

const placeholder = "N/A"

var deviceEmoji = map[models.DeviceType]string{
	models.DeviceMobile:  "📱",
	models.DeviceTablet:  "📱",
	models.DeviceDesktop: "💻",
}

// VisitorMessage renders a visitor record into the sectioned notification
// template. Absent optional fields render as the N/A placeholder; a
// partially collected record is formatted exactly like a full one.
func VisitorMessage(rec *models.VisitorRecord) string {
	devEmoji, ok := deviceEmoji[rec.DeviceType]
	if !ok {
		devEmoji = "💻"
	}

	country := orNA(rec.Country)
	if rec.CountryCode != "" {
		country = fmt.Sprintf("%s (%s)", country, esc(rec.CountryCode))
	}

	city := orNA(rec.City)
	if rec.Region != "" {
		city = fmt.Sprintf("%s, %s", city, esc(rec.Region))
	}

	lines := []string{
		"🔔 <b>New visitor!</b>",
		"",
		"<b>━━━ 🌍 Geolocation ━━━</b>",
		fmt.Sprintf("📍 IP: <code>%s</code>", orNA(rec.IP)),
		fmt.Sprintf("🏳️ Country: %s", country),
		fmt.Sprintf("🏙️ City: %s", city),
		fmt.Sprintf("🌐 ISP: %s", orNA(rec.ISP)),
		"",
		fmt.Sprintf("<b>━━━ %s Device ━━━</b>", devEmoji),
		fmt.Sprintf("📟 Type: %s", rec.DeviceType),
		fmt.Sprintf("🖥️ Platform: %s", orNA(rec.Platform)),
		fmt.Sprintf("📐 Screen: %dx%d", rec.ScreenWidth, rec.ScreenHeight),
		fmt.Sprintf("📏 Viewport: %dx%d", rec.ViewportWidth, rec.ViewportHeight),
		fmt.Sprintf("🔋 Battery: %s", batteryLine(rec)),
		"",
		"<b>━━━ 🌐 Browser ━━━</b>",
		fmt.Sprintf("🔍 Browser: %s %s", esc(rec.BrowserName), esc(rec.BrowserVersion)),
		fmt.Sprintf("🗣️ Language: %s", orNA(rec.Language)),
		fmt.Sprintf("🍪 Cookies: %s", checkmark(rec.CookiesEnabled)),
		fmt.Sprintf("🔒 DNT: %s", dntLine(rec.DoNotTrack)),
		"",
		"<b>━━━ 📶 Network ━━━</b>",
		fmt.Sprintf("📡 Type: %s", orNA(rec.ConnectionType)),
		fmt.Sprintf("⚡ Speed: %s", speedLine(rec.ConnectionSpeed)),
		fmt.Sprintf("📊 RTT: %s", rttLine(rec.ConnectionRTT)),
		fmt.Sprintf("🌐 Online: %s", checkmark(rec.Online)),
		"",
		"<b>━━━ 🔗 Session ━━━</b>",
		fmt.Sprintf("📄 Page: %s", orNA(rec.Pathname)),
		fmt.Sprintf("🔙 Referrer: %s", orNA(rec.Referrer)),
		fmt.Sprintf("⏰ Time: %s", orNA(rec.LocalTime)),
		fmt.Sprintf("🌍 Timezone: %s", orNA(rec.Timezone)),
	}

	if rec.UTMSource != "" || rec.UTMMedium != "" || rec.UTMCampaign != "" {
		lines = append(lines, "", "<b>━━━ 📊 UTM ━━━</b>")
		for _, utm := range []struct{ label, value string }{
			{"Source", rec.UTMSource},
			{"Medium", rec.UTMMedium},
			{"Campaign", rec.UTMCampaign},
			{"Term", rec.UTMTerm},
			{"Content", rec.UTMContent},
		} {
			if utm.value != "" {
				lines = append(lines, fmt.Sprintf("📌 %s: %s", utm.label, esc(utm.value)))
			}
		}
	}

	lines = append(lines,
		"",
		"<b>━━━ 🔐 Fingerprints ━━━</b>",
		fmt.Sprintf("🎨 Canvas: <code>%s</code>", orNA(rec.CanvasFingerprint)),
		fmt.Sprintf("🎵 Audio: <code>%s</code>", orNA(rec.AudioFingerprint)),
		fmt.Sprintf("🎮 WebGL: %s", webglLine(rec.WebGLRenderer)),
		"",
		"<b>━━━ ⚙️ Hardware ━━━</b>",
		fmt.Sprintf("🧠 CPU cores: %d", rec.CPUCores),
		fmt.Sprintf("💾 RAM: %s", memoryLine(rec.DeviceMemory)),
		fmt.Sprintf("👆 Touch: %s", touchLine(rec)),
		"",
		"<b>━━━ 🚩 Flags ━━━</b>",
		fmt.Sprintf("🛡️ AdBlock: %s", detectedLine(rec.AdBlockDetected)),
		fmt.Sprintf("👤 Incognito: %s", incognitoLine(rec.IncognitoLikely)),
		fmt.Sprintf("📜 History: %d entries", rec.HistoryLength),
	)

	return strings.Join(lines, "\n")
}

// StoryMessage renders the freeform story-submission payload.
func StoryMessage(story *models.StorySubmission) string {
	lines := []string{
		"📖 <b>Story submission</b>",
		"",
		fmt.Sprintf("📑 Chapter: %d", story.ChapterID),
		fmt.Sprintf("⏰ Time: %s", orNA(story.Timestamp)),
		"",
		esc(story.Text),
	}
	return strings.Join(lines, "\n")
}

func esc(s string) string {
	return html.EscapeString(validator.SanitizeString(s))
}

func orNA(s string) string {
	if s == "" {
		return placeholder
	}
	return esc(s)
}

func checkmark(v bool) string {
	if v {
		return "✅"
	}
	return "❌"
}

func batteryLine(rec *models.VisitorRecord) string {
	if rec.BatteryLevel == nil {
		return placeholder
	}
	line := fmt.Sprintf("%d%%", *rec.BatteryLevel)
	if rec.BatteryCharging != nil && *rec.BatteryCharging {
		line += " ⚡"
	}
	return line
}

func dntLine(dnt *string) string {
	if dnt == nil {
		return placeholder
	}
	return orNA(*dnt)
}

func speedLine(speed *float64) string {
	if speed == nil {
		return placeholder
	}
	return fmt.Sprintf("%g Mbps", *speed)
}

func rttLine(rtt *int) string {
	if rtt == nil {
		return placeholder
	}
	return fmt.Sprintf("%dms", *rtt)
}

func webglLine(renderer string) string {
	if renderer == "" {
		return placeholder
	}
	return esc(validator.Truncate(renderer, webglRendererBudget))
}

func memoryLine(mem *float64) string {
	if mem == nil {
		return placeholder
	}
	return fmt.Sprintf("~%gGB", *mem)
}

func touchLine(rec *models.VisitorRecord) string {
	if !rec.TouchSupport {
		return "❌"
	}
	return fmt.Sprintf("✅ (%d points)", rec.MaxTouchPoints)
}

func detectedLine(v bool) string {
	if v {
		return "✅ Detected"
	}
	return "❌ No"
}

func incognitoLine(v bool) string {
	if v {
		return "⚠️ Likely"
	}
	return "❌ No"
}
