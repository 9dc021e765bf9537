package probe

import (
	"errors"
	"fmt"

	"github.com/okonenko/pharos/pkg/fphash"
)

// fontCandidates is the fixed list probed by DetectFonts. Widening it makes
// the font fingerprint more discriminating but slows the synchronous path.
var fontCandidates = []string{
	"Arial", "Helvetica", "Times New Roman", "Courier New", "Verdana",
	"Georgia", "Comic Sans MS", "Impact", "Trebuchet MS", "Arial Black",
	"Roboto", "Open Sans", "Segoe UI", "San Francisco", "Ubuntu",
}

const fontBaseline = "monospace"

// CanvasFingerprint folds the serialized canvas scene into a 32-bit hash.
// The hash is stable per rendering stack and varies with GPU, driver and
// font substitution.
func CanvasFingerprint(env RenderEnv) string {
	data, err := env.CanvasData()
	switch {
	case errors.Is(err, ErrUnsupported):
		return SentinelUnsupported
	case err != nil:
		return SentinelError
	}
	return fphash.FoldString(data)
}

// AudioFingerprint folds the frequency-bin readout of the offscreen audio
// graph into a 32-bit hash.
func AudioFingerprint(env AudioEnv) string {
	samples, err := env.AudioSamples()
	switch {
	case errors.Is(err, ErrUnsupported):
		return SentinelUnsupported
	case err != nil:
		return SentinelError
	}
	return fphash.FoldFloats(samples)
}

// WebGLReport is the degraded-safe WebGL probe result.
type WebGLReport struct {
	Vendor    string
	Renderer  string
	Supported bool
}

// WebGL reads the unmasked vendor and renderer strings. When WebGL works but
// the debug extension is hidden, both strings degrade to "unknown" while
// Supported stays true.
func WebGL(env RenderEnv) WebGLReport {
	info, err := env.WebGL()
	switch {
	case errors.Is(err, ErrUnsupported):
		return WebGLReport{Vendor: SentinelUnsupported, Renderer: SentinelUnsupported}
	case err != nil:
		return WebGLReport{Vendor: SentinelError, Renderer: SentinelError}
	case !info.DebugInfo:
		return WebGLReport{Vendor: SentinelUnknown, Renderer: SentinelUnknown, Supported: true}
	}
	return WebGLReport{Vendor: info.Vendor, Renderer: info.Renderer, Supported: true}
}

// DetectFonts width-probes the candidate list against the monospace
// baseline. A width differing from the baseline implies the candidate font
// resolved, i.e. is installed. Heuristic only.
func DetectFonts(env RenderEnv) []string {
	base, err := env.MeasureText(fontBaseline)
	if err != nil {
		return nil
	}

	var detected []string
	for _, font := range fontCandidates {
		w, err := env.MeasureText(fmt.Sprintf("%q, %s", font, fontBaseline))
		if err != nil {
			continue
		}
		if w != base {
			detected = append(detected, font)
		}
	}
	return detected
}
