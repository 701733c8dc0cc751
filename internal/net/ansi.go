package net

import (
	"strings"

	"github.com/gridmud/server/internal/world"
)

// ANSI color per message group. Plain informational text stays in the
// terminal's default color.
var groupColors = map[world.MessageGroup]string{
	world.GroupSystem: "\x1b[33m", // yellow
	world.GroupCombat: "\x1b[31m", // red
	world.GroupChat:   "\x1b[36m", // cyan
}

const ansiReset = "\x1b[0m"

// renderLine produces one wire-ready line: group color applied when the
// session wants it, newlines normalized to CRLF, CRLF terminated.
func renderLine(text string, group world.MessageGroup, color bool) []byte {
	text = strings.ReplaceAll(text, "\n", "\r\n")
	if color {
		if code, ok := groupColors[group]; ok {
			return []byte(code + text + ansiReset + "\r\n")
		}
	}
	return []byte(text + "\r\n")
}

// SGR foreground codes for the map palette.
var colorCodes = map[world.Color]string{
	world.ColorBlack:   "30",
	world.ColorRed:     "31",
	world.ColorGreen:   "32",
	world.ColorYellow:  "33",
	world.ColorBlue:    "34",
	world.ColorMagenta: "35",
	world.ColorCyan:    "36",
	world.ColorWhite:   "37",
	world.ColorGray:    "90",
}

// Colorize wraps text in an ANSI foreground color. The default palette
// entry passes through untouched.
func Colorize(text string, c world.Color) string {
	code, ok := colorCodes[c]
	if !ok {
		return text
	}
	return "\x1b[" + code + "m" + text + ansiReset
}
