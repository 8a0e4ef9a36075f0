package settings

// Merge returns base with p merged on top. Fields present in p replace base's
// values, except mapping-typed values which merge recursively. base is not
// modified.
func Merge(base Document, p Partial) Document {
	out := base.Clone()
	out.Apply(p)
	return out
}

// Apply merges p onto d in place.
func (d *Document) Apply(p Partial) {
	if p.File != nil {
		d.File = *p.File
	}
	if p.Theme != nil {
		d.Theme = *p.Theme
	}
	if p.ID != nil {
		d.ID = *p.ID
	}
	if p.LastProject != nil {
		d.LastProject = *p.LastProject
	}
	if p.StdoutMaxSize != nil {
		d.StdoutMaxSize = *p.StdoutMaxSize
	}
	if p.Languages != nil {
		if d.Languages == nil {
			d.Languages = make(map[Language]Record, len(p.Languages))
		}
		for lang, record := range p.Languages {
			d.Languages[lang] = mergeRecord(d.Languages[lang], record)
		}
	}
}

// mergeRecord merges over onto base and returns the result. Nested maps merge
// recursively; any other value, slices included, replaces base's value.
// Neither argument is modified and the result shares no containers with over.
func mergeRecord(base, over Record) Record {
	if base == nil && over == nil {
		return nil
	}
	out := make(Record, len(base)+len(over))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range over {
		baseMap, baseIsMap := asMap(out[k])
		overMap, overIsMap := asMap(v)
		if baseIsMap && overIsMap {
			out[k] = map[string]any(mergeRecord(baseMap, overMap))
			continue
		}
		out[k] = cloneValue(v)
	}
	return out
}

func asMap(v any) (Record, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, m != nil
	case Record:
		return m, m != nil
	default:
		return nil, false
	}
}

func cloneLanguages(in map[Language]Record) map[Language]Record {
	if in == nil {
		return nil
	}
	out := make(map[Language]Record, len(in))
	for lang, record := range in {
		out[lang] = cloneRecord(record)
	}
	return out
}

func cloneRecord(in Record) Record {
	if in == nil {
		return nil
	}
	out := make(Record, len(in))
	for k, v := range in {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		if t == nil {
			return t
		}
		return map[string]any(cloneRecord(t))
	case Record:
		return cloneRecord(t)
	case []any:
		if t == nil {
			return t
		}
		out := make([]any, len(t))
		for i, elem := range t {
			out[i] = cloneValue(elem)
		}
		return out
	default:
		return v
	}
}
