package world

// Template is a spawn recipe: a type tag plus the field overrides that
// distinguish this template from the bare type. The overlay of those fields
// on the type baseline doubles as the compression baseline for instances
// spawned from it.
type Template struct {
	id     string
	kind   Kind
	fields Record
	base   Record
}

// NewTemplate builds a template from explicit override fields. Values must
// be JSON-canonical (string, bool, float64, []any, map[string]any).
func NewTemplate(id string, kind Kind, fields Record) *Template {
	if fields == nil {
		fields = Record{}
	}
	return &Template{id: id, kind: kind, fields: fields}
}

func (t *Template) ID() string { return t.id }
func (t *Template) Kind() Kind { return t.kind }

// Fields deep-copies the override map.
func (t *Template) Fields() Record { return cloneRecord(t.fields) }

// Field reads one override value.
func (t *Template) Field(key string) (any, bool) {
	v, ok := t.fields[key]
	return v, ok
}

// BaseSerialized is the type baseline with this template's overrides
// applied. Built once and cached; callers must not mutate it.
func (t *Template) BaseSerialized() Record {
	if t.base == nil {
		t.base = overlayRecord(typeBaseline(t.kind), t.fields)
	}
	return t.base
}

// TemplateFromEntity derives a template from a live object: serialize it,
// keep only the fields that differ from the type default, and drop instance
// identity (oid, location, contents, the source's own template tag).
func TemplateFromEntity(id string, e Entity) *Template {
	rec := Serialize(e)
	kind := e.Kind()
	base := typeBaseline(kind)
	fields := Record{}
	for k, v := range rec {
		switch k {
		case "type", "version", "oid", "location", "contents", "templateId":
			continue
		}
		if bv, ok := base[k]; ok && deepEqual(bv, v) {
			continue
		}
		fields[k] = cloneValue(v)
	}
	return NewTemplate(id, kind, fields)
}
