package cli

import (
	"fmt"
	"os"
	"sync/atomic"
)

const (
	ResetCode = "\033[0m"
	BoldCode  = "\033[1m"
	DimCode   = "\033[2m"
	Red       = "\033[31m"
	Green     = "\033[32m"
	Yellow    = "\033[33m"
	Blue      = "\033[34m"
	Purple    = "\033[35m"
	Cyan      = "\033[36m"
	White     = "\033[37m"
)

// RGB represents a TrueColor
type RGB struct {
	R, G, B float64
}

var (
	BrandBlue   = RGB{0, 120, 255}
	BrandPurple = RGB{189, 52, 235}
)

var colorEnabled atomic.Bool

func init() {
	_, noColor := os.LookupEnv("NO_COLOR")
	colorEnabled.Store(!noColor)
}

// Enabled reports whether ANSI output is on.
func Enabled() bool {
	return colorEnabled.Load()
}

// SetEnabled forces colors on or off, e.g. for --no-color or piped output.
func SetEnabled(on bool) {
	colorEnabled.Store(on)
}

// Style wraps text in a specific color code
func Style(text string, colorCode string) string {
	if !Enabled() {
		return text
	}
	return fmt.Sprintf("%s%s%s", colorCode, text, ResetCode)
}

// ColorizeRGB returns text wrapped in ANSI TrueColor escape codes
func ColorizeRGB(text string, c RGB) string {
	if !Enabled() {
		return text
	}
	return fmt.Sprintf("\033[38;2;%d;%d;%dm%s\033[0m", int(c.R), int(c.G), int(c.B), text)
}

// Gradient colors text by linear interpolation between start and end at progress (0.0 to 1.0).
func Gradient(text string, start, end RGB, progress float64) string {
	if !Enabled() {
		return text
	}
	r := start.R + (end.R-start.R)*progress
	g := start.G + (end.G-start.G)*progress
	b := start.B + (end.B-start.B)*progress

	return ColorizeRGB(text, RGB{r, g, b})
}

func CheckMark() string {
	return Style("✔", Green)
}

func Arrow() string {
	return Style("➜", Blue)
}

func CrossMark() string {
	return Style("✘", Red)
}
