package models

import (
	"encoding/json"
	"fmt"
)

// DeviceType is the coarse device class derived from the user agent.
type DeviceType string

const (
	DeviceMobile  DeviceType = "mobile"
	DeviceTablet  DeviceType = "tablet"
	DeviceDesktop DeviceType = "desktop"
)

// VisitorRecord is the flat telemetry record assembled once per page view.
// Optional groups (geo, battery, network link, UTM) are pointer-typed or
// omitempty and absent from the wire form when the underlying probe degraded.
type VisitorRecord struct {
	// time
	Timestamp string  `json:"timestamp"`
	Timezone  string  `json:"timezone"`
	UTCOffset float64 `json:"utc_offset"`
	LocalTime string  `json:"local_time"`

	// ip / geo (best-effort external lookup)
	IP          string   `json:"ip,omitempty"`
	Country     string   `json:"country,omitempty"`
	CountryCode string   `json:"country_code,omitempty"`
	Region      string   `json:"region,omitempty"`
	City        string   `json:"city,omitempty"`
	Postal      string   `json:"postal,omitempty"`
	Latitude    *float64 `json:"latitude,omitempty"`
	Longitude   *float64 `json:"longitude,omitempty"`
	ISP         string   `json:"isp,omitempty"`

	// browser
	UserAgent      string   `json:"user_agent"`
	BrowserName    string   `json:"browser_name"`
	BrowserVersion string   `json:"browser_version"`
	Language       string   `json:"language"`
	Languages      []string `json:"languages"`
	CookiesEnabled bool     `json:"cookies_enabled"`
	DoNotTrack     *string  `json:"do_not_track"`

	// device
	Platform       string     `json:"platform"`
	DeviceType     DeviceType `json:"device_type"`
	Vendor         string     `json:"vendor"`
	CPUCores       int        `json:"cpu_cores"`
	DeviceMemory   *float64   `json:"device_memory"`
	TouchSupport   bool       `json:"touch_support"`
	MaxTouchPoints int        `json:"max_touch_points"`

	// screen
	ScreenWidth      int     `json:"screen_width"`
	ScreenHeight     int     `json:"screen_height"`
	ScreenColorDepth int     `json:"screen_color_depth"`
	ViewportWidth    int     `json:"viewport_width"`
	ViewportHeight   int     `json:"viewport_height"`
	DevicePixelRatio float64 `json:"device_pixel_ratio"`
	Orientation      string  `json:"orientation"`

	// network link
	ConnectionType  string   `json:"connection_type,omitempty"`
	ConnectionSpeed *float64 `json:"connection_speed,omitempty"`
	ConnectionRTT   *int     `json:"connection_rtt,omitempty"`
	SaveData        *bool    `json:"save_data,omitempty"`
	Online          bool     `json:"online"`

	// battery
	BatteryLevel    *int  `json:"battery_level,omitempty"`
	BatteryCharging *bool `json:"battery_charging,omitempty"`

	// session
	Referrer    string            `json:"referrer"`
	CurrentPage string            `json:"current_page"`
	PageTitle   string            `json:"page_title"`
	Pathname    string            `json:"pathname"`
	QueryParams map[string]string `json:"query_params"`

	// utm
	UTMSource   string `json:"utm_source,omitempty"`
	UTMMedium   string `json:"utm_medium,omitempty"`
	UTMCampaign string `json:"utm_campaign,omitempty"`
	UTMTerm     string `json:"utm_term,omitempty"`
	UTMContent  string `json:"utm_content,omitempty"`

	// fingerprints
	CanvasFingerprint string `json:"canvas_fingerprint"`
	WebGLVendor       string `json:"webgl_vendor"`
	WebGLRenderer     string `json:"webgl_renderer"`
	AudioFingerprint  string `json:"audio_fingerprint"`

	// capabilities
	WebGLSupported         bool `json:"webgl_supported"`
	WebRTCSupported        bool `json:"webrtc_supported"`
	WebAssemblySupported   bool `json:"webassembly_supported"`
	ServiceWorkerSupported bool `json:"service_worker_supported"`
	NotificationsSupported bool `json:"notifications_supported"`
	GeolocationSupported   bool `json:"geolocation_supported"`

	// storage
	LocalStorageSupported   bool `json:"local_storage_supported"`
	SessionStorageSupported bool `json:"session_storage_supported"`
	IndexedDBSupported      bool `json:"indexed_db_supported"`

	Plugins       []string `json:"plugins"`
	FontsDetected []string `json:"fonts_detected"`

	// heuristics
	AdBlockDetected bool `json:"adblock_detected"`
	IncognitoLikely bool `json:"incognito_likely"`
	HistoryLength   int  `json:"history_length"`
}

// StorySubmission is the secondary freeform payload sharing the relay endpoint.
type StorySubmission struct {
	Type      string `json:"type"`
	ChapterID int    `json:"chapter_id"`
	Text      string `json:"text"`
	Timestamp string `json:"timestamp"`
}

// EventStorySubmission tags the story payload in the relay's input union.
const EventStorySubmission = "story_submission"

// envelope peeks at the discriminator without committing to a shape.
type envelope struct {
	Type string `json:"type"`
}

// ParseEvent decodes a relay request body into its concrete event shape.
// The input is a tagged union discriminated by "type"; a missing or empty
// tag selects the default visitor-record shape.
func ParseEvent(body []byte) (any, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("decode event envelope: %w", err)
	}

	switch env.Type {
	case "":
		var rec VisitorRecord
		if err := json.Unmarshal(body, &rec); err != nil {
			return nil, fmt.Errorf("decode visitor record: %w", err)
		}
		return &rec, nil
	case EventStorySubmission:
		var story StorySubmission
		if err := json.Unmarshal(body, &story); err != nil {
			return nil, fmt.Errorf("decode story submission: %w", err)
		}
		return &story, nil
	default:
		return nil, fmt.Errorf("unknown event type %q", env.Type)
	}
}
