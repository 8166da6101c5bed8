package tracker

import (
	"fmt"
	"strings"

	"github.com/ironsheep/retrotape-tracker/internal/detection"
)

// Serial message styles.
const (
	StyleTerse  = "terse"
	StyleNormal = "normal"
	StyleDetail = "detail"
)

// targetID names the object in normal and detail messages.
const targetID = "tape"

// FormatSerial renders a target as a standardized serial message:
//
//	terse:  T2 x y
//	normal: N2 tape x y w h
//	detail: D2 tape 4 x1 y1 x2 y2 x3 y3 x4 y4
//
// Detail corners run clockwise from the top-left. A nil target yields "".
func FormatSerial(style string, t *detection.Target) string {
	if t == nil {
		return ""
	}
	switch style {
	case StyleNormal:
		w, h := t.StdSize()
		return fmt.Sprintf("N2 %s %d %d %d %d", targetID, t.Std.X, t.Std.Y, w, h)
	case StyleDetail:
		var b strings.Builder
		fmt.Fprintf(&b, "D2 %s 4", targetID)
		for _, c := range t.StdCorners() {
			fmt.Fprintf(&b, " %d %d", c.X, c.Y)
		}
		return b.String()
	default:
		return fmt.Sprintf("T2 %d %d", t.Std.X, t.Std.Y)
	}
}
