// Package collector assembles exactly one VisitorRecord per invocation from
// the probe environment and delivers it to the relay, fire and forget.
package collector

import (
	"context"
	"net/url"
	"sync"

	"github.com/okonenko/pharos/internal/models"
	"github.com/okonenko/pharos/internal/probe"
)

const localTimeLayout = "02.01.2006, 15:04:05"

// Collect builds the visitor record. Synchronous probes run inline; the four
// network- or delay-bound probes (geo, battery, ad-block, incognito) fan out
// concurrently and are joined before assembly. Every probe degrades
// internally, so Collect itself has no failure path.
func Collect(ctx context.Context, env probe.Environment, geo *probe.GeoLookup) *models.VisitorRecord {
	ua := env.UserAgent()
	browser := probe.ParseUserAgent(ua)
	webgl := probe.WebGL(env)
	scr := env.Screen()
	caps := env.Capabilities()
	storage := env.StorageSupport()
	conn, connOK := env.Connection()

	var (
		geoInfo   probe.GeoInfo
		battery   probe.BatteryReading
		batteryOK bool
		adBlock   bool
		incognito bool
	)

	var wg sync.WaitGroup
	wg.Add(4)
	go func() {
		defer wg.Done()
		geoInfo = geo.Lookup(ctx)
	}()
	go func() {
		defer wg.Done()
		battery, batteryOK = probe.Battery(ctx, env)
	}()
	go func() {
		defer wg.Done()
		adBlock = probe.DetectAdBlock(ctx, env)
	}()
	go func() {
		defer wg.Done()
		incognito = probe.DetectIncognito(ctx, env)
	}()
	wg.Wait()

	now := env.Now()
	_, offsetSec := now.Zone()

	pageURL := env.PageURL()
	pathname, query := splitPage(pageURL)

	rec := &models.VisitorRecord{
		Timestamp: now.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		Timezone:  env.TimezoneName(),
		UTCOffset: float64(offsetSec) / 3600,
		LocalTime: now.Format(localTimeLayout),

		IP:          geoInfo.IP,
		Country:     geoInfo.Country,
		CountryCode: geoInfo.CountryCode,
		Region:      geoInfo.Region,
		City:        geoInfo.City,
		Postal:      geoInfo.Postal,
		Latitude:    geoInfo.Latitude,
		Longitude:   geoInfo.Longitude,
		ISP:         geoInfo.ISP,

		UserAgent:      ua,
		BrowserName:    browser.Name,
		BrowserVersion: browser.Version,
		Language:       env.Language(),
		Languages:      env.Languages(),
		CookiesEnabled: env.CookiesEnabled(),
		DoNotTrack:     env.DoNotTrack(),

		Platform:       env.Platform(),
		DeviceType:     probe.DeviceType(ua),
		Vendor:         env.Vendor(),
		CPUCores:       env.HardwareConcurrency(),
		DeviceMemory:   env.DeviceMemory(),
		TouchSupport:   env.TouchEvents() || env.MaxTouchPoints() > 0,
		MaxTouchPoints: env.MaxTouchPoints(),

		ScreenWidth:      scr.Width,
		ScreenHeight:     scr.Height,
		ScreenColorDepth: scr.ColorDepth,
		ViewportWidth:    scr.ViewportWidth,
		ViewportHeight:   scr.ViewportHeight,
		DevicePixelRatio: scr.PixelRatio,
		Orientation:      scr.Orientation,

		Online: env.Online(),

		Referrer:    referrerOrDirect(env.Referrer()),
		CurrentPage: pageURL,
		PageTitle:   env.PageTitle(),
		Pathname:    pathname,
		QueryParams: flattenQuery(query),

		UTMSource:   query.Get("utm_source"),
		UTMMedium:   query.Get("utm_medium"),
		UTMCampaign: query.Get("utm_campaign"),
		UTMTerm:     query.Get("utm_term"),
		UTMContent:  query.Get("utm_content"),

		CanvasFingerprint: probe.CanvasFingerprint(env),
		WebGLVendor:       webgl.Vendor,
		WebGLRenderer:     webgl.Renderer,
		AudioFingerprint:  probe.AudioFingerprint(env),

		WebGLSupported:         webgl.Supported,
		WebRTCSupported:        caps.WebRTC,
		WebAssemblySupported:   caps.WebAssembly,
		ServiceWorkerSupported: caps.ServiceWorker,
		NotificationsSupported: caps.Notifications,
		GeolocationSupported:   caps.Geolocation,

		LocalStorageSupported:   storage.LocalStorage,
		SessionStorageSupported: storage.SessionStorage,
		IndexedDBSupported:      storage.IndexedDB,

		Plugins:       env.Plugins(),
		FontsDetected: probe.DetectFonts(env),

		AdBlockDetected: adBlock,
		IncognitoLikely: incognito,
		HistoryLength:   env.HistoryLength(),
	}

	if connOK {
		rec.ConnectionType = conn.Type
		rec.ConnectionSpeed = &conn.Downlink
		rec.ConnectionRTT = &conn.RTT
		rec.SaveData = &conn.SaveData
	}

	if batteryOK {
		level := battery.Level
		charging := battery.Charging
		rec.BatteryLevel = &level
		rec.BatteryCharging = &charging
	}

	return rec
}

func referrerOrDirect(ref string) string {
	if ref == "" {
		return "direct"
	}
	return ref
}

// splitPage extracts the path and query from the page URL. An unparseable
// URL yields the raw string as the path and no query.
func splitPage(pageURL string) (string, url.Values) {
	u, err := url.Parse(pageURL)
	if err != nil {
		return pageURL, url.Values{}
	}
	return u.Path, u.Query()
}

func flattenQuery(query url.Values) map[string]string {
	params := make(map[string]string, len(query))
	for key, values := range query {
		if len(values) > 0 {
			params[key] = values[0]
		}
	}
	return params
}
