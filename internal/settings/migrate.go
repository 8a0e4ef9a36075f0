package settings

import (
	"bytes"
	"encoding/json"
)

// MigrationStep renames one legacy key forward. Apply only reads raw, the
// value stored under LegacyKey, and writes canonical fields of p; Migrate
// removes the legacy key afterwards. Steps never touch each other's keys, so
// their order does not matter.
type MigrationStep struct {
	LegacyKey string
	Apply     func(raw json.RawMessage, p *Partial)
}

// Migrations lists the legacy-field rules applied on load.
var Migrations = []MigrationStep{
	{LegacyKey: "uid", Apply: migrateUID},
}

// Migrate applies every registered step to a copy of p and returns the copy
// along with the legacy keys it consumed. Documents without legacy keys come
// back unchanged.
func Migrate(p Partial) (Partial, []string) {
	return MigrateWith(p, Migrations)
}

// MigrateWith is Migrate over an explicit step list.
func MigrateWith(p Partial, steps []MigrationStep) (Partial, []string) {
	out := p.Clone()
	var applied []string
	for _, step := range steps {
		raw, ok := out.Extra[step.LegacyKey]
		if !ok {
			continue
		}
		if step.Apply != nil {
			step.Apply(raw, &out)
		}
		delete(out.Extra, step.LegacyKey)
		applied = append(applied, step.LegacyKey)
	}
	if len(out.Extra) == 0 {
		out.Extra = nil
	}
	return out, applied
}

// migrateUID carries the identifier saved by older releases under "uid". A
// non-empty string or a non-zero number wins over any id in the same
// document; numbers keep their JSON spelling. Other values are dropped.
func migrateUID(raw json.RawMessage, p *Partial) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var value any
	if err := dec.Decode(&value); err != nil {
		return
	}
	var uid string
	switch v := value.(type) {
	case string:
		uid = v
	case json.Number:
		if f, err := v.Float64(); err != nil || f == 0 {
			return
		}
		uid = v.String()
	}
	if uid == "" {
		return
	}
	p.ID = &uid
}
