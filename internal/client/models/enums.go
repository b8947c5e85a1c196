package models

import "fmt"

// Icon classifies a document.
type Icon string

const (
	IconPassport      Icon = "passport"
	IconDriver        Icon = "driver"
	IconGovernment    Icon = "government"
	IconInternational Icon = "international"
	IconTag           Icon = "tag"
)

var Icons = []Icon{IconPassport, IconDriver, IconGovernment, IconInternational, IconTag}

// Color is a document's color tag.
type Color string

const (
	ColorNone   Color = "none"
	ColorRed    Color = "red"
	ColorGreen  Color = "green"
	ColorYellow Color = "yellow"
)

var Colors = []Color{ColorNone, ColorRed, ColorGreen, ColorYellow}

func ParseIcon(s string) (Icon, error) {
	for _, i := range Icons {
		if string(i) == s {
			return i, nil
		}
	}
	return "", fmt.Errorf("unknown icon %q", s)
}

func ParseColor(s string) (Color, error) {
	if s == "" {
		return ColorNone, nil
	}
	for _, c := range Colors {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown color %q", s)
}
