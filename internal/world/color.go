package world

// Color names a map-display color. Serialized by name, never by index, so
// saves stay readable and reorderable.
type Color uint8

const (
	ColorDefault Color = iota // rendered as white
	ColorBlack
	ColorRed
	ColorGreen
	ColorYellow
	ColorBlue
	ColorMagenta
	ColorCyan
	ColorWhite
	ColorGray
)

var colorNames = []string{
	ColorDefault: "white",
	ColorBlack:   "black",
	ColorRed:     "red",
	ColorGreen:   "green",
	ColorYellow:  "yellow",
	ColorBlue:    "blue",
	ColorMagenta: "magenta",
	ColorCyan:    "cyan",
	ColorWhite:   "white",
	ColorGray:    "gray",
}

func (c Color) String() string {
	if int(c) < len(colorNames) {
		return colorNames[c]
	}
	return "white"
}

// ParseColor matches a color name; unknown names report false.
func ParseColor(name string) (Color, bool) {
	switch name {
	case "black":
		return ColorBlack, true
	case "red":
		return ColorRed, true
	case "green":
		return ColorGreen, true
	case "yellow":
		return ColorYellow, true
	case "blue":
		return ColorBlue, true
	case "magenta":
		return ColorMagenta, true
	case "cyan":
		return ColorCyan, true
	case "white":
		return ColorWhite, true
	case "gray", "grey":
		return ColorGray, true
	}
	return ColorDefault, false
}
