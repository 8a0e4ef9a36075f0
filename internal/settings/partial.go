package settings

import (
	"bytes"
	"encoding/json"
	"sort"
	"strings"
)

// Partial is any subset of Document's fields. A nil field (or nil Languages
// map) carries no opinion and leaves the merge base untouched.
//
// Extra holds keys outside the canonical shape, including legacy names that
// Migrate consumes. Extra is never merged into a Document.
//
// Invalid holds canonical fields whose JSON type was wrong, keyed by field
// name ("languages.<lang>" for a single language record). They are never
// merged either; the load path reports them and updates reject them.
type Partial struct {
	File          *string
	Theme         *Theme
	ID            *string
	LastProject   *string
	Languages     map[Language]Record
	StdoutMaxSize *int
	Extra         map[string]json.RawMessage
	Invalid       map[string]json.RawMessage
}

// IsEmpty reports whether p carries no canonical fields and no extra keys.
func (p Partial) IsEmpty() bool {
	return p.File == nil && p.Theme == nil && p.ID == nil && p.LastProject == nil &&
		p.Languages == nil && p.StdoutMaxSize == nil && len(p.Extra) == 0 && len(p.Invalid) == 0
}

// Clone returns a deep copy of p.
func (p Partial) Clone() Partial {
	out := Partial{
		File:          clonePtr(p.File),
		Theme:         clonePtr(p.Theme),
		ID:            clonePtr(p.ID),
		LastProject:   clonePtr(p.LastProject),
		Languages:     cloneLanguages(p.Languages),
		StdoutMaxSize: clonePtr(p.StdoutMaxSize),
	}
	out.Extra = cloneRaw(p.Extra)
	out.Invalid = cloneRaw(p.Invalid)
	return out
}

// InvalidKeys lists the wrong-typed fields in p, sorted.
func (p Partial) InvalidKeys() []string {
	if len(p.Invalid) == 0 {
		return nil
	}
	keys := make([]string, 0, len(p.Invalid))
	for k := range p.Invalid {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (p *Partial) markInvalid(key string, raw json.RawMessage) {
	if p.Invalid == nil {
		p.Invalid = make(map[string]json.RawMessage)
	}
	p.Invalid[key] = raw
}

func cloneRaw(in map[string]json.RawMessage) map[string]json.RawMessage {
	if in == nil {
		return nil
	}
	out := make(map[string]json.RawMessage, len(in))
	for k, v := range in {
		out[k] = append(json.RawMessage(nil), v...)
	}
	return out
}

// UnmarshalJSON decodes a JSON object into p. JSON null at the top level or
// for a field means "absent". Language keys outside the supported enumeration
// are dropped. Canonical fields holding the wrong JSON type land in Invalid;
// only input that is not a JSON object is an error.
func (p *Partial) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	var out Partial
	for key, raw := range fields {
		var err error
		switch key {
		case "file":
			out.File, err = decodeOptional[string](raw)
		case "theme":
			out.Theme, err = decodeOptional[Theme](raw)
		case "id":
			out.ID, err = decodeOptional[string](raw)
		case "lastProject":
			out.LastProject, err = decodeOptional[string](raw)
		case "languages":
			out.Languages, err = out.decodeLanguages(raw)
		case "stdoutMaxSize":
			out.StdoutMaxSize, err = decodeOptional[int](raw)
		default:
			if out.Extra == nil {
				out.Extra = make(map[string]json.RawMessage)
			}
			out.Extra[key] = raw
		}
		if err != nil {
			out.markInvalid(key, raw)
		}
	}
	*p = out
	return nil
}

// MarshalJSON encodes the present fields of p, extra keys included.
func (p Partial) MarshalJSON() ([]byte, error) {
	fields := make(map[string]any, 6+len(p.Extra))
	for k, v := range p.Extra {
		fields[k] = v
	}
	if p.File != nil {
		fields["file"] = *p.File
	}
	if p.Theme != nil {
		fields["theme"] = *p.Theme
	}
	if p.ID != nil {
		fields["id"] = *p.ID
	}
	if p.LastProject != nil {
		fields["lastProject"] = *p.LastProject
	}
	if p.StdoutMaxSize != nil {
		fields["stdoutMaxSize"] = *p.StdoutMaxSize
	}
	langs := make(map[string]any, len(p.Languages))
	for lang, record := range p.Languages {
		langs[string(lang)] = record
	}
	for key, raw := range p.Invalid {
		if lang, ok := strings.CutPrefix(key, "languages."); ok {
			langs[lang] = raw
			continue
		}
		fields[key] = raw
	}
	if p.Languages != nil || len(langs) > 0 {
		fields["languages"] = langs
	}
	return json.Marshal(fields)
}

// Keys lists the top-level keys present in p, sorted.
func (p Partial) Keys() []string {
	var keys []string
	add := func(present bool, key string) {
		if present {
			keys = append(keys, key)
		}
	}
	add(p.File != nil, "file")
	add(p.Theme != nil, "theme")
	add(p.ID != nil, "id")
	add(p.LastProject != nil, "lastProject")
	add(p.Languages != nil, "languages")
	add(p.StdoutMaxSize != nil, "stdoutMaxSize")
	for k := range p.Extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func decodeOptional[T any](raw json.RawMessage) (*T, error) {
	if isNull(raw) {
		return nil, nil
	}
	var value T
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil, err
	}
	return &value, nil
}

// decodeLanguages returns an error only when raw is not an object; records
// of the wrong type are marked invalid individually.
func (p *Partial) decodeLanguages(raw json.RawMessage) (map[Language]Record, error) {
	if isNull(raw) {
		return nil, nil
	}
	var entries map[string]json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, err
	}
	out := make(map[Language]Record, len(entries))
	for key, value := range entries {
		lang, ok := ParseLanguage(key)
		if !ok || isNull(value) {
			continue
		}
		var record Record
		if err := json.Unmarshal(value, &record); err != nil {
			p.markInvalid("languages."+key, value)
			continue
		}
		out[lang] = record
	}
	return out, nil
}

func clonePtr[T any](v *T) *T {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}
