package format

import (
	"strings"
	"testing"

	"github.com/okonenko/pharos/internal/models"
)

func TestVisitorMessage(t *testing.T) {
	lat := -34.6037
	speed := 10.0
	rtt := 50
	level := 87
	charging := true

	rec := &models.VisitorRecord{
		IP:                "1.2.3.4",
		Country:           "Argentina",
		CountryCode:       "AR",
		Region:            "Buenos Aires",
		City:              "Buenos Aires",
		Latitude:          &lat,
		ISP:               "Example ISP",
		BrowserName:       "Chrome",
		BrowserVersion:    "120.0.0.0",
		Language:          "es-AR",
		CookiesEnabled:    true,
		DeviceType:        models.DeviceDesktop,
		Platform:          "Win32",
		ScreenWidth:       1920,
		ScreenHeight:      1080,
		ConnectionType:    "4g",
		ConnectionSpeed:   &speed,
		ConnectionRTT:     &rtt,
		Online:            true,
		BatteryLevel:      &level,
		BatteryCharging:   &charging,
		Pathname:          "/greeting",
		Referrer:          "direct",
		LocalTime:         "15.01.2026, 10:30:00",
		Timezone:          "America/Argentina/Buenos_Aires",
		CanvasFingerprint: "5f2a91c",
		AudioFingerprint:  "1b3d7",
		WebGLRenderer:     "ANGLE (NVIDIA GeForce)",
		CPUCores:          8,
		TouchSupport:      false,
		HistoryLength:     3,
	}

	msg := VisitorMessage(rec)

	for _, want := range []string{
		"New visitor!",
		"<code>1.2.3.4</code>",
		"Argentina (AR)",
		"Buenos Aires, Buenos Aires",
		"Example ISP",
		"desktop",
		"Chrome 120.0.0.0",
		"1920x1080",
		"87% ⚡",
		"10 Mbps",
		"50ms",
		"<code>5f2a91c</code>",
		"ANGLE (NVIDIA GeForce)",
		"👆 Touch: ❌",
		"3 entries",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("message missing %q\n%s", want, msg)
		}
	}

	if strings.Contains(msg, "UTM") {
		t.Error("UTM section rendered without any UTM value")
	}
}

func TestVisitorMessagePartialRecord(t *testing.T) {
	rec := &models.VisitorRecord{
		BrowserName:    "Unknown",
		BrowserVersion: "Unknown",
		DeviceType:     models.DeviceDesktop,
	}

	msg := VisitorMessage(rec)

	for _, want := range []string{
		"📍 IP: <code>N/A</code>",
		"🏳️ Country: N/A",
		"🌐 ISP: N/A",
		"🔋 Battery: N/A",
		"⚡ Speed: N/A",
		"📊 RTT: N/A",
		"🔒 DNT: N/A",
		"💾 RAM: N/A",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("partial record missing placeholder line %q", want)
		}
	}
}

func TestVisitorMessageUTMSection(t *testing.T) {
	rec := &models.VisitorRecord{
		DeviceType: models.DeviceMobile,
		UTMSource:  "qr",
		UTMMedium:  "print",
	}

	msg := VisitorMessage(rec)
	if !strings.Contains(msg, "📊 UTM") {
		t.Fatal("UTM section missing")
	}
	if !strings.Contains(msg, "Source: qr") || !strings.Contains(msg, "Medium: print") {
		t.Error("UTM values missing")
	}
	if strings.Contains(msg, "Campaign:") {
		t.Error("empty UTM values must not render")
	}
}

func TestVisitorMessageEscapesHTML(t *testing.T) {
	rec := &models.VisitorRecord{
		DeviceType:  models.DeviceDesktop,
		BrowserName: "<script>alert(1)</script>",
		City:        "a<b>c",
	}

	msg := VisitorMessage(rec)
	if strings.Contains(msg, "<script>") || strings.Contains(msg, "<b>c") {
		t.Error("user-controlled markup leaked unescaped")
	}
	if !strings.Contains(msg, "&lt;script&gt;") {
		t.Error("escaped browser name missing")
	}
}

func TestVisitorMessageTruncatesRenderer(t *testing.T) {
	rec := &models.VisitorRecord{
		DeviceType:    models.DeviceDesktop,
		WebGLRenderer: strings.Repeat("R", 80),
	}

	msg := VisitorMessage(rec)
	if strings.Contains(msg, strings.Repeat("R", 51)) {
		t.Error("renderer string not truncated")
	}
	if !strings.Contains(msg, strings.Repeat("R", 50)) {
		t.Error("truncated renderer missing")
	}
}

func TestStoryMessage(t *testing.T) {
	story := &models.StorySubmission{
		ChapterID: 2,
		Text:      "once <upon> a time",
		Timestamp: "2026-01-15T12:00:00Z",
	}

	msg := StoryMessage(story)
	for _, want := range []string{
		"Story submission",
		"Chapter: 2",
		"2026-01-15T12:00:00Z",
		"once &lt;upon&gt; a time",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("story message missing %q\n%s", want, msg)
		}
	}
}
