package detection

import (
	"math"
	"strings"
)

// Result is the outcome of a screenshot-likelihood classification.
// Confidence is in [0,1]; Reasons lists the signals that contributed,
// in evaluation order.
type Result struct {
	IsScreenshot bool     `json:"is_screenshot"`
	Confidence   float64  `json:"confidence"`
	Reasons      []string `json:"reasons"`
}

// Signal weights and the decision threshold. The weights are additive
// and the sum is capped at 1.0.
const (
	keywordScore      = 0.6
	aspectRatioScore  = 0.3
	widescreenBonus   = 0.1
	extensionScore    = 0.1
	confidenceCeiling = 1.0

	// Threshold at which a classification counts as a screenshot.
	Threshold = 0.3

	// Relative tolerance when comparing aspect ratios.
	aspectTolerance = 0.01
)

// Filename substrings that indicate a screen capture, covering the
// platform-default names in the most common locales.
var screenshotKeywords = []string{
	"screenshot",
	"スクリーンショット", // Japanese
	"屏幕截图",      // Chinese (Simplified)
	"화면 캡처",     // Korean
	"captura de pantalla", // Spanish
	"capture d'écran",     // French
	"screencap",
	"screen cap",
	"screen-capture",
	"screen_capture",
}

// aspectRatio is a named device aspect ratio. Lookup order matters:
// the first entry within tolerance wins.
type aspectRatio struct {
	ratio float64
	name  string
}

var commonAspectRatios = []aspectRatio{
	{19.5 / 9, "iPhone X/11/12/13/14"},
	{20.0 / 9, "Ultra-wide phones"},
	{16.0 / 9, "Standard widescreen"},
	{3.0 / 2, "Traditional 4:6"},
	{4.0 / 3, "Traditional 3:4"},
	{1.0, "Square"},
}

var validExtensions = map[string]struct{}{
	"png":  {},
	"jpg":  {},
	"jpeg": {},
	"webp": {},
	"heic": {},
}

// Classify judges whether an image is likely a screen capture from its
// filename and optional pixel dimensions. Dimensions are treated as
// absent when either is zero or negative. The function is pure: same
// inputs always produce the same Result, and it never fails.
func Classify(fileName string, width, height int) Result {
	reasons := []string{}
	confidence := 0.0

	lower := strings.ToLower(fileName)
	for _, keyword := range screenshotKeywords {
		if strings.Contains(lower, strings.ToLower(keyword)) {
			confidence += keywordScore
			reasons = append(reasons, "Filename contains screenshot keyword")
			break
		}
	}

	if width > 0 && height > 0 {
		ratio := float64(width) / float64(height)

		for _, ar := range commonAspectRatios {
			if withinTolerance(ratio, ar.ratio) {
				confidence += aspectRatioScore
				reasons = append(reasons, "Aspect ratio matches common device ratios")
				break
			}
		}

		// 16:9 is overwhelmingly the most common capture ratio, so it
		// earns an extra bump on top of the generic match.
		if withinTolerance(ratio, 16.0/9) {
			confidence += widescreenBonus
			reasons = append(reasons, "16:9 aspect ratio (very common)")
		}
	}

	if _, ok := validExtensions[extension(lower)]; ok {
		confidence += extensionScore
		reasons = append(reasons, "Valid image file extension")
	}

	confidence = math.Min(confidence, confidenceCeiling)

	return Result{
		IsScreenshot: confidence >= Threshold,
		Confidence:   confidence,
		Reasons:      reasons,
	}
}

// AspectRatioName returns the name of the first catalog entry within
// tolerance of width/height, or "Custom" when none matches.
func AspectRatioName(width, height int) string {
	if width <= 0 || height <= 0 {
		return "Custom"
	}

	ratio := float64(width) / float64(height)
	for _, ar := range commonAspectRatios {
		if withinTolerance(ratio, ar.ratio) {
			return ar.name
		}
	}
	return "Custom"
}

func withinTolerance(ratio, known float64) bool {
	return math.Abs(ratio-known) < known*aspectTolerance
}

// extension returns the lower-cased substring after the last dot, or
// "" when the name has no dot.
func extension(lowerName string) string {
	idx := strings.LastIndex(lowerName, ".")
	if idx < 0 || idx == len(lowerName)-1 {
		return ""
	}
	return lowerName[idx+1:]
}
