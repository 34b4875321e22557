// Package vision holds the vision-impairment profile catalog and the capture
// engine that renders a page through each profile.
package vision

import (
	"strings"

	"github.com/hazyhaar/aodacheck/report"
)

// Profile is an immutable simulated impairment.
type Profile struct {
	ID          string
	Name        string
	Description string
	// Filter is a CSS filter expression applied to the root element, or "none".
	Filter string
	// Overlay is optional CSS, typically a body::before layer.
	Overlay     string
	Explanation string
}

// CSS returns the stylesheet that renders the page through p.
func (p Profile) CSS() string {
	var b strings.Builder
	if p.Filter != "" && p.Filter != "none" {
		b.WriteString("html { filter: ")
		b.WriteString(p.Filter)
		b.WriteString(" !important; }\n")
	}
	b.WriteString(p.Overlay)
	return b.String()
}

func overlay(top, left, width, height, background string) string {
	return "body::before { content: ''; position: fixed; top: " + top + "; left: " + left +
		"; width: " + width + "; height: " + height + "; background: " + background +
		"; pointer-events: none; z-index: 9999; }"
}

// Report-only baseline views.
const (
	Original     = "original"
	ColorBlind   = "colorBlind"
	BlurryVision = "blurryVision"
)

const deuteranopiaMatrix = `url('data:image/svg+xml;utf8,<svg xmlns="http://www.w3.org/2000/svg"><defs><filter id="deuteranopia"><feColorMatrix values="0.43 0.72 -.15 0 0 0.34 0.57 0.09 0 0 -.02 0.03 1.00 0 0 0 0 0 1 0"/></filter></defs></svg>#deuteranopia')`

// public is ordered as exposed by Types.
var public = []Profile{
	{
		ID:          "normal",
		Name:        "Normal Vision",
		Description: "How the website appears to users with normal vision",
		Filter:      "none",
		Explanation: "This is the baseline view that most users see.",
	},
	{
		ID:          "protanopia",
		Name:        "Protanopia",
		Description: "Red-blind color vision deficiency (1% of men)",
		Filter:      "sepia(100%) hue-rotate(180deg) saturate(0.8)",
		Explanation: "Users cannot distinguish between red and green colors. Ensure information is not conveyed through color alone.",
	},
	{
		ID:          "deuteranopia",
		Name:        "Deuteranopia",
		Description: "Green-blind color vision deficiency (1% of men)",
		Filter:      "sepia(100%) hue-rotate(90deg) saturate(0.6)",
		Explanation: "The most common form of color blindness. Red and green colors appear similar or identical.",
	},
	{
		ID:          "tritanopia",
		Name:        "Tritanopia",
		Description: "Blue-blind color vision deficiency (rare)",
		Filter:      "sepia(100%) hue-rotate(270deg) saturate(0.7)",
		Explanation: "Users have difficulty distinguishing between blue and green, and between yellow and red.",
	},
	{
		ID:          "achromatopsia",
		Name:        "Achromatopsia",
		Description: "Complete color blindness (very rare)",
		Filter:      "grayscale(100%)",
		Explanation: "Users see the world in shades of gray. All design must work without any color information.",
	},
	{
		ID:          "lowVision",
		Name:        "Low Vision",
		Description: "Blurred vision and reduced contrast sensitivity",
		Filter:      "blur(2px) contrast(0.6) brightness(0.8)",
		Explanation: "Users have significantly reduced visual acuity. Text must be large and high contrast.",
	},
	{
		ID:          "cataracts",
		Name:        "Cataracts",
		Description: "Cloudy, hazy vision with glare sensitivity",
		Filter:      "blur(1px) contrast(0.5) brightness(1.5) saturate(0.8)",
		Explanation: "Vision is cloudy and hazy, with increased sensitivity to bright lights and glare.",
	},
	{
		ID:          "diabeticRetinopathy",
		Name:        "Diabetic Retinopathy",
		Description: "Dark spots and blurred central vision",
		Filter:      "blur(1.5px) contrast(0.7)",
		Overlay:     overlay("40%", "40%", "20%", "20%", "radial-gradient(circle, rgba(0,0,0,0.7) 30%, transparent 70%)"),
		Explanation: "Dark spots in central vision with overall blurriness. Critical information should not be centrally located.",
	},
	{
		ID:          "glaucoma",
		Name:        "Glaucoma",
		Description: "Peripheral vision loss (tunnel vision)",
		Filter:      "none",
		Overlay:     overlay("0", "0", "100%", "100%", "radial-gradient(circle at center, transparent 25%, rgba(0,0,0,0.8) 60%)"),
		Explanation: "Severe peripheral vision loss creating tunnel vision. Important UI elements should be centrally located.",
	},
	{
		ID:          "maculaDegeneration",
		Name:        "Macular Degeneration",
		Description: "Central vision loss with dark spot",
		Filter:      "contrast(0.8)",
		Overlay:     overlay("45%", "45%", "10%", "10%", "radial-gradient(circle, rgba(0,0,0,0.9) 50%, transparent 80%)"),
		Explanation: "Central vision is blocked by a dark spot. Users rely on peripheral vision for navigation.",
	},
}

var baseline = []Profile{
	{ID: Original, Name: "Original", Description: "Unfiltered page", Filter: "none"},
	{ID: ColorBlind, Name: "Color Blind", Description: "Deuteranopia colour matrix", Filter: deuteranopiaMatrix},
	{ID: BlurryVision, Name: "Blurry Vision", Description: "Blur with reduced contrast", Filter: "blur(3px) contrast(0.7)"},
}

var index = func() map[string]Profile {
	m := make(map[string]Profile, len(public)+len(baseline))
	for _, p := range public {
		m[p.ID] = p
	}
	for _, p := range baseline {
		m[p.ID] = p
	}
	return m
}()

// Lookup returns the profile registered under id, including the
// report-only baseline views.
func Lookup(id string) (Profile, bool) {
	p, ok := index[id]
	return p, ok
}

// Catalog returns a copy of the public profiles in display order.
func Catalog() []Profile {
	return append([]Profile(nil), public...)
}

// IDs lists the public profile ids in display order.
func IDs() []string {
	ids := make([]string, len(public))
	for i, p := range public {
		ids[i] = p.ID
	}
	return ids
}

// Types returns the public catalog as wire entries.
func Types() []report.VisionType {
	out := make([]report.VisionType, len(public))
	for i, p := range public {
		out[i] = report.VisionType{ID: p.ID, Name: p.Name, Description: p.Description, Explanation: p.Explanation}
	}
	return out
}
