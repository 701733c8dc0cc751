package world

import (
	"fmt"
	"strconv"
	"strings"
)

// Stable reference forms used in saves and data files.
//
// Room refs:     "@<dungeonId>{x,y,z}"     e.g. "@midgar{3,2,0}"
// Template refs: "@<dungeonId>:<templateId>" for cross-dungeon resolution;
// a plain template id resolves within the current dungeon.

// ValidateDungeonID rejects empty ids and ids containing the reference
// delimiters '{', '}' and ':'.
func ValidateDungeonID(id string) error {
	if id == "" {
		return fmt.Errorf("dungeon id must not be empty")
	}
	if strings.ContainsAny(id, "{}:") {
		return fmt.Errorf("dungeon id %q must not contain '{', '}' or ':'", id)
	}
	return nil
}

// FormatRoomRef renders the stable on-disk form of a room address.
func FormatRoomRef(dungeonID string, c Coordinate) string {
	return fmt.Sprintf("@%s{%d,%d,%d}", dungeonID, c.X, c.Y, c.Z)
}

// ParseRoomRef parses "@<dungeonId>{x,y,z}".
func ParseRoomRef(ref string) (dungeonID string, c Coordinate, err error) {
	if !strings.HasPrefix(ref, "@") {
		return "", Coordinate{}, fmt.Errorf("room ref %q: missing '@' prefix", ref)
	}
	open := strings.IndexByte(ref, '{')
	if open < 0 || !strings.HasSuffix(ref, "}") {
		return "", Coordinate{}, fmt.Errorf("room ref %q: missing coordinate block", ref)
	}
	dungeonID = ref[1:open]
	if err := ValidateDungeonID(dungeonID); err != nil {
		return "", Coordinate{}, fmt.Errorf("room ref %q: %w", ref, err)
	}
	parts := strings.Split(ref[open+1:len(ref)-1], ",")
	if len(parts) != 3 {
		return "", Coordinate{}, fmt.Errorf("room ref %q: want three coordinates", ref)
	}
	vals := [3]int{}
	for i, p := range parts {
		v, convErr := strconv.Atoi(strings.TrimSpace(p))
		if convErr != nil {
			return "", Coordinate{}, fmt.Errorf("room ref %q: bad coordinate %q", ref, p)
		}
		vals[i] = v
	}
	return dungeonID, Coordinate{X: vals[0], Y: vals[1], Z: vals[2]}, nil
}

// ParseTemplateRef splits the globalized form "@<dungeonId>:<templateId>".
// Plain ids return ok=false.
func ParseTemplateRef(ref string) (dungeonID, templateID string, ok bool) {
	if !strings.HasPrefix(ref, "@") {
		return "", "", false
	}
	colon := strings.IndexByte(ref, ':')
	if colon < 0 {
		return "", "", false
	}
	return ref[1:colon], ref[colon+1:], true
}

// ResolveRoomRef parses ref and looks the room up through the dungeon
// registry. Returns nil for unknown dungeons or empty cells.
func (w *World) ResolveRoomRef(ref string) *Room {
	dngID, c, err := ParseRoomRef(ref)
	if err != nil {
		return nil
	}
	d := w.DungeonByID(dngID)
	if d == nil {
		return nil
	}
	return d.Room(c)
}
