package data

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/gridmud/server/internal/world"
)

// DungeonFile is one parsed dungeon definition. Building happens in two
// phases: every dungeon's rooms, templates and resets first, then links,
// because links may cross dungeon boundaries.
type DungeonFile struct {
	Path string

	ID           string         `yaml:"id"`
	Name         string         `yaml:"name"`
	Description  string         `yaml:"description"`
	ResetMessage string         `yaml:"reset_message"`
	Dimensions   dimensionsYAML `yaml:"dimensions"`
	Fill         *roomYAML      `yaml:"fill"`
	Rooms        []roomYAML     `yaml:"rooms"`
	Templates    []templateYAML `yaml:"templates"`
	Resets       []resetYAML    `yaml:"resets"`
	Links        []linkYAML     `yaml:"links"`
}

type dimensionsYAML struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
	Layers int `yaml:"layers"`
}

type roomYAML struct {
	X           int      `yaml:"x"`
	Y           int      `yaml:"y"`
	Z           int      `yaml:"z"`
	Keywords    string   `yaml:"keywords"`
	Display     string   `yaml:"display"`
	Description string   `yaml:"description"`
	MapText     string   `yaml:"map_text"`
	MapColor    string   `yaml:"map_color"`
	Exits       []string `yaml:"exits"`
	Dense       bool     `yaml:"dense"`
}

type templateYAML struct {
	ID     string         `yaml:"id"`
	Type   string         `yaml:"type"` // serialized type tag, e.g. Mob, Weapon
	Fields map[string]any `yaml:"fields"`
}

type resetYAML struct {
	Template  string   `yaml:"template"`
	Room      string   `yaml:"room"`
	Min       int      `yaml:"min"`
	Max       int      `yaml:"max"`
	Equipped  []string `yaml:"equipped"`
	Inventory []string `yaml:"inventory"`
}

type linkYAML struct {
	From   string `yaml:"from"`
	Dir    string `yaml:"dir"`
	To     string `yaml:"to"`
	ToDir  string `yaml:"to_dir"`
	OneWay bool   `yaml:"one_way"`
}

// LoadDungeonFile parses and statically validates one dungeon YAML file.
func LoadDungeonFile(path string) (*DungeonFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dungeon: %w", err)
	}
	var f DungeonFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse dungeon %s: %w", path, err)
	}
	f.Path = path
	if err := f.validate(); err != nil {
		return nil, fmt.Errorf("dungeon %s: %w", path, err)
	}
	return &f, nil
}

// LoadDungeonDir parses every *.yaml file in dir, sorted by name so boot
// order is stable.
func LoadDungeonDir(dir string) ([]*DungeonFile, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("scan dungeons: %w", err)
	}
	sort.Strings(paths)
	if len(paths) == 0 {
		return nil, fmt.Errorf("no dungeon files in %s", dir)
	}
	files := make([]*DungeonFile, 0, len(paths))
	for _, p := range paths {
		f, err := LoadDungeonFile(p)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, nil
}

func (f *DungeonFile) validate() error {
	if err := world.ValidateDungeonID(f.ID); err != nil {
		return err
	}
	if f.Name == "" {
		return fmt.Errorf("missing name")
	}
	dims := f.dims()
	if dims.Width < 1 || dims.Height < 1 || dims.Layers < 1 {
		return fmt.Errorf("dimensions must be positive, got %dx%dx%d",
			dims.Width, dims.Height, dims.Layers)
	}
	seen := make(map[world.Coordinate]bool, len(f.Rooms))
	for i := range f.Rooms {
		r := &f.Rooms[i]
		c := world.Coordinate{X: r.X, Y: r.Y, Z: r.Z}
		if !dims.Contains(c) {
			return fmt.Errorf("room %v outside %dx%dx%d grid", c, dims.Width, dims.Height, dims.Layers)
		}
		if seen[c] {
			return fmt.Errorf("duplicate room at %v", c)
		}
		seen[c] = true
		if _, err := parseExits(r.Exits); err != nil {
			return fmt.Errorf("room %v: %w", c, err)
		}
		if _, err := parseMapColor(r.MapColor); err != nil {
			return fmt.Errorf("room %v: %w", c, err)
		}
	}
	tpl := make(map[string]bool, len(f.Templates))
	for i := range f.Templates {
		t := &f.Templates[i]
		if t.ID == "" {
			return fmt.Errorf("template #%d: missing id", i)
		}
		if tpl[t.ID] {
			return fmt.Errorf("duplicate template id %q", t.ID)
		}
		tpl[t.ID] = true
		if _, ok := world.KindFromTag(t.Type); !ok {
			return fmt.Errorf("template %q: unknown type %q", t.ID, t.Type)
		}
	}
	for i := range f.Resets {
		r := &f.Resets[i]
		if r.Template == "" {
			return fmt.Errorf("reset #%d: missing template", i)
		}
		if _, _, err := world.ParseRoomRef(r.Room); err != nil {
			return fmt.Errorf("reset #%d: %w", i, err)
		}
		if r.Min < 0 || r.Max < r.Min {
			return fmt.Errorf("reset #%d: bad population range %d..%d", i, r.Min, r.Max)
		}
	}
	for i := range f.Links {
		l := &f.Links[i]
		if _, _, err := world.ParseRoomRef(l.From); err != nil {
			return fmt.Errorf("link #%d: %w", i, err)
		}
		if _, _, err := world.ParseRoomRef(l.To); err != nil {
			return fmt.Errorf("link #%d: %w", i, err)
		}
		if _, ok := world.ParseDirection(l.Dir); !ok {
			return fmt.Errorf("link #%d: unknown direction %q", i, l.Dir)
		}
		if l.ToDir != "" {
			if _, ok := world.ParseDirection(l.ToDir); !ok {
				return fmt.Errorf("link #%d: unknown direction %q", i, l.ToDir)
			}
		}
	}
	return nil
}

func (f *DungeonFile) dims() world.MapDimensions {
	return world.MapDimensions{
		Width:  f.Dimensions.Width,
		Height: f.Dimensions.Height,
		Layers: f.Dimensions.Layers,
	}
}

// BuildDungeon realizes a parsed file: the dungeon itself, its explicit
// rooms, the fill pass, local templates and reset rules. Links are not
// wired here; call WireLinks once every dungeon exists.
func BuildDungeon(w *world.World, f *DungeonFile) (*world.Dungeon, error) {
	d := world.NewDungeon(w, world.DungeonOptions{
		ID:           f.ID,
		Name:         f.Name,
		Description:  f.Description,
		ResetMessage: f.ResetMessage,
		Dimensions:   f.dims(),
	})
	for i := range f.Rooms {
		r := &f.Rooms[i]
		opts, err := roomOptions(r)
		if err != nil {
			return nil, fmt.Errorf("dungeon %s: %w", f.ID, err)
		}
		d.CreateRoom(opts)
	}
	if f.Fill != nil {
		opts, err := roomOptions(f.Fill)
		if err != nil {
			return nil, fmt.Errorf("dungeon %s fill: %w", f.ID, err)
		}
		d.GenerateRooms(opts)
	}
	for i := range f.Templates {
		t := &f.Templates[i]
		kind, _ := world.KindFromTag(t.Type)
		fields, err := canonicalRecord(t.Fields)
		if err != nil {
			return nil, fmt.Errorf("dungeon %s template %q: %w", f.ID, t.ID, err)
		}
		d.AddTemplate(world.NewTemplate(t.ID, kind, fields))
	}
	for i := range f.Resets {
		r := &f.Resets[i]
		d.AddReset(world.NewReset(w, world.ResetOptions{
			TemplateID: r.Template,
			RoomRef:    r.Room,
			MinCount:   r.Min,
			MaxCount:   r.Max,
			Equipped:   r.Equipped,
			Inventory:  r.Inventory,
		}))
	}
	return d, nil
}

// WireLinks builds every link from every file. Must run after all dungeons
// are built; a link to a missing room is an error.
func WireLinks(w *world.World, files []*DungeonFile) (int, error) {
	n := 0
	for _, f := range files {
		for i := range f.Links {
			l := &f.Links[i]
			from := w.ResolveRoomRef(l.From)
			if from == nil {
				return n, fmt.Errorf("dungeon %s link #%d: no room at %s", f.ID, i, l.From)
			}
			to := w.ResolveRoomRef(l.To)
			if to == nil {
				return n, fmt.Errorf("dungeon %s link #%d: no room at %s", f.ID, i, l.To)
			}
			dir, _ := world.ParseDirection(l.Dir)
			var toDir world.Direction
			if l.ToDir != "" {
				toDir, _ = world.ParseDirection(l.ToDir)
			}
			world.NewRoomLink(w, world.LinkOptions{
				From:   from,
				Dir:    dir,
				To:     to,
				ToDir:  toDir,
				OneWay: l.OneWay,
			})
			n++
		}
	}
	return n, nil
}

// BuildWorld loads the dungeon directory and realizes everything into w.
func BuildWorld(w *world.World, dir string) ([]*world.Dungeon, error) {
	files, err := LoadDungeonDir(dir)
	if err != nil {
		return nil, err
	}
	dungeons := make([]*world.Dungeon, 0, len(files))
	for _, f := range files {
		d, err := BuildDungeon(w, f)
		if err != nil {
			return nil, err
		}
		dungeons = append(dungeons, d)
	}
	if _, err := WireLinks(w, files); err != nil {
		return nil, err
	}
	return dungeons, nil
}

func roomOptions(r *roomYAML) (world.RoomOptions, error) {
	exits, err := parseExits(r.Exits)
	if err != nil {
		return world.RoomOptions{}, err
	}
	color, err := parseMapColor(r.MapColor)
	if err != nil {
		return world.RoomOptions{}, err
	}
	return world.RoomOptions{
		ObjectOptions: world.ObjectOptions{
			Keywords:    r.Keywords,
			Display:     r.Display,
			Description: r.Description,
			MapText:     r.MapText,
			MapColor:    color,
		},
		Coordinates:  world.Coordinate{X: r.X, Y: r.Y, Z: r.Z},
		AllowedExits: exits,
		Dense:        r.Dense,
	}, nil
}

// parseExits folds direction names into an exit mask. Nil means the room
// default; the single name "all" opens every direction including vertical.
func parseExits(names []string) (world.Direction, error) {
	if len(names) == 0 {
		return world.DirNone, nil
	}
	if len(names) == 1 && names[0] == "all" {
		return world.AllExits, nil
	}
	mask := world.DirNone
	for _, n := range names {
		d, ok := world.ParseDirection(n)
		if !ok {
			return world.DirNone, fmt.Errorf("unknown exit direction %q", n)
		}
		mask |= d
	}
	return mask, nil
}

func parseMapColor(name string) (world.Color, error) {
	if name == "" {
		return world.ColorDefault, nil
	}
	c, ok := world.ParseColor(name)
	if !ok {
		return world.ColorDefault, fmt.Errorf("unknown map color %q", name)
	}
	return c, nil
}

// canonicalRecord converts YAML-decoded template fields to the JSON-canonical
// forms the serializer works in: float64 numbers, []any, map[string]any.
func canonicalRecord(fields map[string]any) (world.Record, error) {
	if fields == nil {
		return world.Record{}, nil
	}
	rec := make(world.Record, len(fields))
	for k, v := range fields {
		cv, err := canonicalValue(v)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", k, err)
		}
		rec[k] = cv
	}
	return rec, nil
}

func canonicalValue(v any) (any, error) {
	switch t := v.(type) {
	case nil, bool, string, float64:
		return t, nil
	case int:
		return float64(t), nil
	case int64:
		return float64(t), nil
	case uint64:
		return float64(t), nil
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			ce, err := canonicalValue(e)
			if err != nil {
				return nil, err
			}
			out[i] = ce
		}
		return out, nil
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			ce, err := canonicalValue(e)
			if err != nil {
				return nil, err
			}
			out[k] = ce
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported value type %T", v)
	}
}
