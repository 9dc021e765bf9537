package collector

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/okonenko/pharos/internal/models"
	"github.com/okonenko/pharos/internal/probe"
)

// fakeEnv implements probe.Environment for tests. The zero value behaves
// like a headless host: every browser-only surface reports unsupported.
type fakeEnv struct {
	userAgent string
	platform  string
	vendor    string
	language  string
	languages []string
	cookies   bool
	dnt       *string
	cores     int
	memory    *float64
	touch     int

	screen probe.ScreenInfo

	canvasData string
	webgl      probe.WebGLInfo
	webglOK    bool
	audio      []float64

	conn   probe.ConnectionInfo
	connOK bool
	online bool

	battery   probe.BatteryState
	batteryOK bool

	quota      int64
	quotaOK    bool
	fsOK       bool
	restricted bool
	storage    probe.StorageSupport

	baitHeight int
	baitOK     bool

	caps probe.Capabilities

	referrer  string
	pageURL   string
	pageTitle string
	history   int
	plugins   []string
	now       time.Time
	timezone  string
}

func (e *fakeEnv) UserAgent() string        { return e.userAgent }
func (e *fakeEnv) Platform() string         { return e.platform }
func (e *fakeEnv) Vendor() string           { return e.vendor }
func (e *fakeEnv) Language() string         { return e.language }
func (e *fakeEnv) Languages() []string      { return e.languages }
func (e *fakeEnv) CookiesEnabled() bool     { return e.cookies }
func (e *fakeEnv) DoNotTrack() *string      { return e.dnt }
func (e *fakeEnv) HardwareConcurrency() int { return e.cores }
func (e *fakeEnv) DeviceMemory() *float64   { return e.memory }
func (e *fakeEnv) MaxTouchPoints() int      { return e.touch }
func (e *fakeEnv) TouchEvents() bool        { return e.touch > 0 }

func (e *fakeEnv) Screen() probe.ScreenInfo { return e.screen }

func (e *fakeEnv) CanvasData() (string, error) {
	if e.canvasData == "" {
		return "", probe.ErrUnsupported
	}
	return e.canvasData, nil
}

func (e *fakeEnv) WebGL() (probe.WebGLInfo, error) {
	if !e.webglOK {
		return probe.WebGLInfo{}, probe.ErrUnsupported
	}
	return e.webgl, nil
}

func (e *fakeEnv) MeasureText(string) (float64, error) {
	return 0, probe.ErrUnsupported
}

func (e *fakeEnv) AudioSamples() ([]float64, error) {
	if e.audio == nil {
		return nil, probe.ErrUnsupported
	}
	return e.audio, nil
}

func (e *fakeEnv) Connection() (probe.ConnectionInfo, bool) { return e.conn, e.connOK }
func (e *fakeEnv) Online() bool                             { return e.online }

func (e *fakeEnv) Battery(context.Context) (probe.BatteryState, error) {
	if !e.batteryOK {
		return probe.BatteryState{}, probe.ErrUnsupported
	}
	return e.battery, nil
}

func (e *fakeEnv) StorageQuota(context.Context) (int64, error) {
	if !e.quotaOK {
		return 0, probe.ErrUnsupported
	}
	return e.quota, nil
}

func (e *fakeEnv) LegacyFileSystem(context.Context) (bool, error) {
	if !e.fsOK {
		return false, probe.ErrUnsupported
	}
	return e.restricted, nil
}

func (e *fakeEnv) StorageSupport() probe.StorageSupport { return e.storage }

type staticBait struct{ height int }

func (b staticBait) Height() int { return b.height }
func (b staticBait) Remove()     {}

func (e *fakeEnv) PlantBait() (probe.Bait, error) {
	if !e.baitOK {
		return nil, probe.ErrUnsupported
	}
	return staticBait{height: e.baitHeight}, nil
}

func (e *fakeEnv) Capabilities() probe.Capabilities { return e.caps }

func (e *fakeEnv) Referrer() string   { return e.referrer }
func (e *fakeEnv) PageURL() string    { return e.pageURL }
func (e *fakeEnv) PageTitle() string  { return e.pageTitle }
func (e *fakeEnv) HistoryLength() int { return e.history }
func (e *fakeEnv) Plugins() []string  { return e.plugins }

func (e *fakeEnv) Now() time.Time {
	if e.now.IsZero() {
		return time.Now()
	}
	return e.now
}

func (e *fakeEnv) TimezoneName() string { return e.timezone }

func richEnv() *fakeEnv {
	mem := 8.0
	return &fakeEnv{
		userAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		platform:  "Win32",
		vendor:    "Google Inc.",
		language:  "es-AR",
		languages: []string{"es-AR", "es", "en"},
		cookies:   true,
		cores:     8,
		memory:    &mem,

		screen: probe.ScreenInfo{
			Width: 1920, Height: 1080, ColorDepth: 24,
			ViewportWidth: 1903, ViewportHeight: 937,
			PixelRatio: 1, Orientation: "landscape-primary",
		},

		canvasData: "data:image/png;base64,iVBORw0KGgo",
		webgl:      probe.WebGLInfo{Vendor: "Google Inc.", Renderer: "ANGLE (NVIDIA GeForce)", DebugInfo: true},
		webglOK:    true,
		audio:      []float64{-120.1, -118.4, -60.2},

		conn:   probe.ConnectionInfo{Type: "4g", Downlink: 10, RTT: 50},
		connOK: true,
		online: true,

		battery:   probe.BatteryState{Level: 0.87, Charging: true},
		batteryOK: true,

		quota:   2_000_000_000,
		quotaOK: true,
		storage: probe.StorageSupport{LocalStorage: true, SessionStorage: true, IndexedDB: true},

		baitHeight: 0,
		baitOK:     true,

		caps: probe.Capabilities{
			WebRTC: true, WebAssembly: true, ServiceWorker: true,
			Notifications: true, Geolocation: true,
		},

		referrer:  "https://search.example.com/",
		pageURL:   "https://cards.example.com/greeting?utm_source=qr&utm_medium=print&ref=x",
		pageTitle: "A Greeting",
		history:   3,
		plugins:   []string{"PDF Viewer"},
		now:       time.Date(2026, 1, 15, 10, 30, 0, 0, time.FixedZone("ART", -3*3600)),
		timezone:  "America/Argentina/Buenos_Aires",
	}
}

func geoServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(body))
	}))
}

func deadGeo() *probe.GeoLookup {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()
	return probe.NewGeoLookup(srv.URL, srv.URL, 100*time.Millisecond, 100*time.Millisecond)
}

func TestCollectFullEnvironment(t *testing.T) {
	srv := geoServer(t, `{"ip":"1.2.3.4","country":"AR","region":"Buenos Aires","city":"Buenos Aires","postal":"C1000","loc":"-34.6037,-58.3816","org":"AS1234 Example ISP"}`)
	defer srv.Close()

	geo := probe.NewGeoLookup(srv.URL, srv.URL, time.Second, time.Second)
	rec := Collect(context.Background(), richEnv(), geo)

	if rec.BrowserName != "Chrome" || rec.BrowserVersion != "120.0.0.0" {
		t.Errorf("browser = %s %s", rec.BrowserName, rec.BrowserVersion)
	}
	if rec.DeviceType != models.DeviceDesktop {
		t.Errorf("device type = %s, want desktop", rec.DeviceType)
	}
	if rec.IP != "1.2.3.4" || rec.City != "Buenos Aires" || rec.ISP != "AS1234 Example ISP" {
		t.Errorf("geo fields = %s / %s / %s", rec.IP, rec.City, rec.ISP)
	}
	if rec.Latitude == nil || *rec.Latitude != -34.6037 {
		t.Error("latitude missing or wrong")
	}
	if rec.Timestamp != "2026-01-15T13:30:00.000Z" {
		t.Errorf("timestamp = %s", rec.Timestamp)
	}
	if rec.UTCOffset != -3 {
		t.Errorf("utc offset = %v, want -3", rec.UTCOffset)
	}
	if rec.LocalTime != "15.01.2026, 10:30:00" {
		t.Errorf("local time = %s", rec.LocalTime)
	}
	if rec.Pathname != "/greeting" {
		t.Errorf("pathname = %s", rec.Pathname)
	}
	if rec.QueryParams["ref"] != "x" || rec.QueryParams["utm_source"] != "qr" {
		t.Errorf("query params = %v", rec.QueryParams)
	}
	if rec.UTMSource != "qr" || rec.UTMMedium != "print" || rec.UTMCampaign != "" {
		t.Errorf("utm = %s / %s / %s", rec.UTMSource, rec.UTMMedium, rec.UTMCampaign)
	}
	if rec.Referrer != "https://search.example.com/" {
		t.Errorf("referrer = %s", rec.Referrer)
	}
	if rec.CanvasFingerprint == probe.SentinelUnsupported || rec.CanvasFingerprint == "" {
		t.Errorf("canvas fingerprint = %q", rec.CanvasFingerprint)
	}
	if rec.WebGLRenderer != "ANGLE (NVIDIA GeForce)" || !rec.WebGLSupported {
		t.Errorf("webgl = %s supported=%v", rec.WebGLRenderer, rec.WebGLSupported)
	}
	if rec.BatteryLevel == nil || *rec.BatteryLevel != 87 {
		t.Error("battery level missing or wrong")
	}
	if rec.BatteryCharging == nil || !*rec.BatteryCharging {
		t.Error("battery charging flag missing or wrong")
	}
	if rec.ConnectionSpeed == nil || *rec.ConnectionSpeed != 10 {
		t.Error("connection speed missing or wrong")
	}
	if !rec.AdBlockDetected {
		t.Error("collapsed bait should read as ad block")
	}
	if rec.IncognitoLikely {
		t.Error("large quota should not read as incognito")
	}
	if !rec.CookiesEnabled || !rec.Online || rec.CPUCores != 8 {
		t.Error("device basics lost in assembly")
	}
}

func TestCollectDegradedEnvironment(t *testing.T) {
	env := &fakeEnv{
		userAgent: "curl/8.4.0",
		pageURL:   "https://cards.example.com/",
		timezone:  "UTC",
		now:       time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC),
	}

	rec := Collect(context.Background(), env, deadGeo())

	if rec.Timestamp == "" || rec.LocalTime == "" {
		t.Error("time fields must always be present")
	}
	if rec.IP != "" || rec.Latitude != nil {
		t.Errorf("geo should be absent when both tiers fail, got ip=%q", rec.IP)
	}
	if rec.BrowserName != "Unknown" || rec.BrowserVersion != "Unknown" {
		t.Errorf("browser = %s %s, want Unknown Unknown", rec.BrowserName, rec.BrowserVersion)
	}
	if rec.CanvasFingerprint != probe.SentinelUnsupported {
		t.Errorf("canvas = %q, want %q", rec.CanvasFingerprint, probe.SentinelUnsupported)
	}
	if rec.WebGLVendor != probe.SentinelUnsupported || rec.AudioFingerprint != probe.SentinelUnsupported {
		t.Errorf("webgl/audio = %q / %q", rec.WebGLVendor, rec.AudioFingerprint)
	}
	if rec.Referrer != "direct" {
		t.Errorf("referrer = %q, want direct", rec.Referrer)
	}
	if rec.QueryParams == nil {
		t.Error("query params must be a map, not null")
	}
	if rec.BatteryLevel != nil || rec.ConnectionSpeed != nil {
		t.Error("degraded optional groups must stay absent")
	}
	if rec.AdBlockDetected || rec.IncognitoLikely {
		t.Error("heuristics must read negative without signals")
	}
}

func TestSplitPageUnparseable(t *testing.T) {
	path, query := splitPage("://not a url")
	if path != "://not a url" {
		t.Errorf("path = %q", path)
	}
	if len(query) != 0 {
		t.Errorf("query = %v, want empty", query)
	}
}
