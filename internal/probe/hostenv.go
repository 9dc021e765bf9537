package probe

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"
)

// HostEnv adapts the local process environment to the probe surface. It
// backs the standalone collector binary: host-readable signals (CPU count,
// locale, timezone) come from the runtime, and every browser-only API
// degrades through ErrUnsupported exactly as an absent API would in a
// browser.
type HostEnv struct {
	pageURL   string
	userAgent string
}

func NewHostEnv(pageURL string) *HostEnv {
	return &HostEnv{
		pageURL:   pageURL,
		userAgent: fmt.Sprintf("pharos-collector/1.0 (%s; %s)", runtime.GOOS, runtime.GOARCH),
	}
}

func (h *HostEnv) UserAgent() string { return h.userAgent }
func (h *HostEnv) Platform() string  { return runtime.GOOS }
func (h *HostEnv) Vendor() string    { return "" }

func (h *HostEnv) Language() string {
	lang := os.Getenv("LANG")
	if lang == "" {
		return "en-US"
	}
	// "en_US.UTF-8" -> "en-US"
	if i := strings.IndexByte(lang, '.'); i >= 0 {
		lang = lang[:i]
	}
	return strings.ReplaceAll(lang, "_", "-")
}

func (h *HostEnv) Languages() []string      { return []string{h.Language()} }
func (h *HostEnv) CookiesEnabled() bool     { return false }
func (h *HostEnv) DoNotTrack() *string      { return nil }
func (h *HostEnv) HardwareConcurrency() int { return runtime.NumCPU() }
func (h *HostEnv) DeviceMemory() *float64   { return nil }
func (h *HostEnv) MaxTouchPoints() int      { return 0 }
func (h *HostEnv) TouchEvents() bool        { return false }

func (h *HostEnv) Screen() ScreenInfo {
	return ScreenInfo{Orientation: SentinelUnknown}
}

func (h *HostEnv) CanvasData() (string, error)         { return "", ErrUnsupported }
func (h *HostEnv) WebGL() (WebGLInfo, error)           { return WebGLInfo{}, ErrUnsupported }
func (h *HostEnv) MeasureText(string) (float64, error) { return 0, ErrUnsupported }
func (h *HostEnv) AudioSamples() ([]float64, error)    { return nil, ErrUnsupported }
func (h *HostEnv) Connection() (ConnectionInfo, bool)  { return ConnectionInfo{}, false }
func (h *HostEnv) Online() bool                        { return true }

func (h *HostEnv) Battery(context.Context) (BatteryState, error) {
	return BatteryState{}, ErrUnsupported
}

func (h *HostEnv) StorageQuota(context.Context) (int64, error) { return 0, ErrUnsupported }
func (h *HostEnv) LegacyFileSystem(context.Context) (bool, error) {
	return false, ErrUnsupported
}
func (h *HostEnv) StorageSupport() StorageSupport { return StorageSupport{} }

func (h *HostEnv) PlantBait() (Bait, error) { return nil, ErrUnsupported }

func (h *HostEnv) Capabilities() Capabilities { return Capabilities{} }

func (h *HostEnv) Referrer() string   { return "" }
func (h *HostEnv) PageURL() string    { return h.pageURL }
func (h *HostEnv) PageTitle() string  { return "" }
func (h *HostEnv) HistoryLength() int { return 0 }
func (h *HostEnv) Plugins() []string  { return nil }
func (h *HostEnv) Now() time.Time     { return time.Now() }

func (h *HostEnv) TimezoneName() string {
	return time.Now().Location().String()
}
