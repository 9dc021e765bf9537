// Package probe implements the independent leaf probes that read one class
// of host signal each. Every probe degrades internally: it never panics and
// never returns an error past its own boundary. Raw host signals are
// supplied through the small per-concern interfaces below so each probe can
// be exercised in isolation.
package probe

import (
	"context"
	"errors"
	"time"
)

// ErrUnsupported reports that the underlying host API does not exist at all.
// Probes collapse it to the "unsupported" sentinel; any other error means the
// API exists but failed, which collapses to "error".
var ErrUnsupported = errors.New("probe: unsupported")

// Sentinel values emitted by degraded probes.
const (
	SentinelUnsupported = "unsupported"
	SentinelError       = "error"
	SentinelUnknown     = "unknown"
)

// DeviceEnv supplies identity and hardware signals.
type DeviceEnv interface {
	UserAgent() string
	Platform() string
	Vendor() string
	Language() string
	Languages() []string
	CookiesEnabled() bool
	// DoNotTrack is tri-state: nil when the preference is unset.
	DoNotTrack() *string
	HardwareConcurrency() int
	// DeviceMemory is the approximate RAM in GB, nil when not exposed.
	DeviceMemory() *float64
	MaxTouchPoints() int
	TouchEvents() bool
}

// ScreenInfo describes the physical screen and current viewport.
type ScreenInfo struct {
	Width          int
	Height         int
	ColorDepth     int
	ViewportWidth  int
	ViewportHeight int
	PixelRatio     float64
	Orientation    string
}

type ScreenEnv interface {
	Screen() ScreenInfo
}

// WebGLInfo is the raw report from the host's WebGL surface. DebugInfo is
// false when the debug-renderer extension is not exposed, in which case
// Vendor and Renderer are meaningless.
type WebGLInfo struct {
	Vendor    string
	Renderer  string
	DebugInfo bool
}

// RenderEnv supplies the rendering-derived raw material for the canvas and
// WebGL fingerprints and for font width-probing.
type RenderEnv interface {
	// CanvasData returns the serialized pixels of the fixed fingerprint
	// scene, e.g. a data URL.
	CanvasData() (string, error)
	WebGL() (WebGLInfo, error)
	// MeasureText returns the rendered width of the fixed test string under
	// the given font stack.
	MeasureText(font string) (float64, error)
}

type AudioEnv interface {
	// AudioSamples returns the frequency-bin readout of the fixed offscreen
	// audio graph.
	AudioSamples() ([]float64, error)
}

// ConnectionInfo mirrors the non-standard network-information surface.
type ConnectionInfo struct {
	Type     string
	Downlink float64
	RTT      int
	SaveData bool
}

type ConnectionEnv interface {
	// Connection reports false when the API is not exposed; that is not an
	// error condition.
	Connection() (ConnectionInfo, bool)
	Online() bool
}

// BatteryState is the raw battery readout. Level is in the 0..1 range.
type BatteryState struct {
	Level    float64
	Charging bool
}

type BatteryEnv interface {
	Battery(ctx context.Context) (BatteryState, error)
}

// StorageSupport holds the independently probed storage capability flags.
type StorageSupport struct {
	LocalStorage   bool
	SessionStorage bool
	IndexedDB      bool
}

type StorageEnv interface {
	// StorageQuota returns the estimated quota in bytes.
	StorageQuota(ctx context.Context) (int64, error)
	// LegacyFileSystem probes the legacy filesystem API; restricted means
	// the API refused access, a private-browsing tell on older engines.
	LegacyFileSystem(ctx context.Context) (restricted bool, err error)
	StorageSupport() StorageSupport
}

// Bait is a planted ad-shaped element used by the ad-block heuristic.
type Bait interface {
	// Height is the rendered height after content blockers had a chance to
	// collapse the element.
	Height() int
	Remove()
}

type DOMEnv interface {
	PlantBait() (Bait, error)
}

// Capabilities holds the feature-presence flags read synchronously.
type Capabilities struct {
	WebRTC        bool
	WebAssembly   bool
	ServiceWorker bool
	Notifications bool
	Geolocation   bool
}

type CapabilityEnv interface {
	Capabilities() Capabilities
}

// SessionEnv supplies the navigation context of the current page view.
type SessionEnv interface {
	Referrer() string
	PageURL() string
	PageTitle() string
	HistoryLength() int
	Plugins() []string
	Now() time.Time
	TimezoneName() string
}

// Environment is the full probe surface consumed by the aggregator.
type Environment interface {
	DeviceEnv
	ScreenEnv
	RenderEnv
	AudioEnv
	ConnectionEnv
	BatteryEnv
	StorageEnv
	DOMEnv
	CapabilityEnv
	SessionEnv
}
