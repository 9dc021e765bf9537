package probe

import (
	"regexp"

	"github.com/okonenko/pharos/internal/models"
)

// Browser is the parsed user-agent identity.
type Browser struct {
	Name    string
	Version string
}

// browserSignatures is priority-ordered: more specific tokens first, so a
// Chrome-based Edge UA resolves to Edge rather than Chrome.
var browserSignatures = []struct {
	name string
	re   *regexp.Regexp
}{
	{"Edge", regexp.MustCompile(`Edg(?:e|A|iOS)?/(\d+[\d.]*)`)},
	{"Opera", regexp.MustCompile(`(?:OPR|Opera)/(\d+[\d.]*)`)},
	{"Chrome", regexp.MustCompile(`Chrome/(\d+[\d.]*)`)},
	{"Firefox", regexp.MustCompile(`Firefox/(\d+[\d.]*)`)},
	{"Safari", regexp.MustCompile(`Version/(\d+[\d.]*).*Safari`)},
	{"IE", regexp.MustCompile(`(?:MSIE |rv:)(\d+[\d.]*)`)},
}

var (
	tabletRe = regexp.MustCompile(`(?i)tablet|ipad|playbook|silk`)
	mobileRe = regexp.MustCompile(`(?i)mobile|iphone|ipod|android.*mobile|windows phone|blackberry`)
)

// ParseUserAgent identifies the browser name and version from a raw UA
// string. Unknown UAs yield {Unknown, Unknown}.
func ParseUserAgent(ua string) Browser {
	for _, sig := range browserSignatures {
		if m := sig.re.FindStringSubmatch(ua); m != nil {
			return Browser{Name: sig.name, Version: m[1]}
		}
	}
	return Browser{Name: "Unknown", Version: "Unknown"}
}

// DeviceType classifies a UA as mobile, tablet or desktop. Tablet patterns
// are checked first because tablet UAs often also match the generic mobile
// substrings.
func DeviceType(ua string) models.DeviceType {
	switch {
	case tabletRe.MatchString(ua):
		return models.DeviceTablet
	case mobileRe.MatchString(ua):
		return models.DeviceMobile
	default:
		return models.DeviceDesktop
	}
}
