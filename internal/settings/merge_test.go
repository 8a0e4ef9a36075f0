package settings

import (
	"reflect"
	"testing"
)

func ptr[T any](v T) *T { return &v }

func sampleBase() Document {
	doc := New("/tmp/.settings", ThemeDark)
	doc.ID = "base-id"
	doc.LastProject = "/home/u/project.dsproj"
	doc.Languages = map[Language]Record{
		LanguagePython: {
			"path": "/usr/bin/python3",
			"env":  map[string]any{"PYTHONPATH": "/opt/lib", "LANG": "C"},
			"args": []any{"-u"},
		},
		LanguageRuby: {"path": "/usr/bin/ruby"},
	}
	return doc
}

func TestMergeKeepsKeysAbsentFromPartial(t *testing.T) {
	base := sampleBase()
	got := Merge(base, Partial{StdoutMaxSize: ptr(10)})

	if got.StdoutMaxSize != 10 {
		t.Fatalf("expected stdoutMaxSize 10, got %d", got.StdoutMaxSize)
	}
	want := base.Clone()
	want.StdoutMaxSize = 10
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unrelated fields changed:\n got %#v\nwant %#v", got, want)
	}
}

func TestMergeIsRightBiased(t *testing.T) {
	base := sampleBase()
	p := Partial{
		Theme:       ptr(ThemeLight),
		ID:          ptr("override"),
		LastProject: ptr(""),
		Languages: map[Language]Record{
			LanguagePython: {"path": "/opt/python"},
		},
	}
	got := Merge(base, p)

	if got.Theme != ThemeLight || got.ID != "override" || got.LastProject != "" {
		t.Fatalf("scalar overrides not applied: %#v", got)
	}
	if got.Languages[LanguagePython]["path"] != "/opt/python" {
		t.Fatalf("nested override not applied: %#v", got.Languages[LanguagePython])
	}
}

func TestMergeRecursesIntoNestedMaps(t *testing.T) {
	base := sampleBase()
	p := Partial{Languages: map[Language]Record{
		LanguagePython: {"env": map[string]any{"LANG": "en_US.UTF-8"}},
		LanguageJulia:  {"path": "/usr/bin/julia"},
	}}
	got := Merge(base, p)

	python := got.Languages[LanguagePython]
	if python["path"] != "/usr/bin/python3" {
		t.Fatalf("sibling key lost: %#v", python)
	}
	env, ok := python["env"].(map[string]any)
	if !ok {
		t.Fatalf("env should remain a map, got %T", python["env"])
	}
	if env["LANG"] != "en_US.UTF-8" || env["PYTHONPATH"] != "/opt/lib" {
		t.Fatalf("nested merge mismatch: %#v", env)
	}
	if got.Languages[LanguageRuby]["path"] != "/usr/bin/ruby" {
		t.Fatal("language absent from partial should be untouched")
	}
	if got.Languages[LanguageJulia]["path"] != "/usr/bin/julia" {
		t.Fatal("new language should be added")
	}
}

func TestMergeReplacesSlicesOutright(t *testing.T) {
	base := sampleBase()
	got := Merge(base, Partial{Languages: map[Language]Record{
		LanguagePython: {"args": []any{"-X", "dev"}},
	}})
	args := got.Languages[LanguagePython]["args"]
	if !reflect.DeepEqual(args, []any{"-X", "dev"}) {
		t.Fatalf("expected slice replacement, got %#v", args)
	}
}

func TestMergeReplacesMapWithScalar(t *testing.T) {
	base := sampleBase()
	got := Merge(base, Partial{Languages: map[Language]Record{
		LanguagePython: {"env": "inherit"},
	}})
	if got.Languages[LanguagePython]["env"] != "inherit" {
		t.Fatalf("scalar should replace map, got %#v", got.Languages[LanguagePython]["env"])
	}
}

func TestMergeDoesNotMutateBaseOrPartial(t *testing.T) {
	base := sampleBase()
	snapshot := base.Clone()
	p := Partial{Languages: map[Language]Record{
		LanguagePython: {"env": map[string]any{"NEW": "1"}, "args": []any{"-v"}},
	}}
	pSnapshot := p.Clone()

	got := Merge(base, p)
	got.Languages[LanguagePython]["env"].(map[string]any)["MUTATED"] = true
	got.Languages[LanguagePython]["args"].([]any)[0] = "changed"
	got.Languages[LanguageRuby]["path"] = "changed"

	if !reflect.DeepEqual(base, snapshot) {
		t.Fatalf("base mutated:\n got %#v\nwant %#v", base, snapshot)
	}
	if !reflect.DeepEqual(p, pSnapshot) {
		t.Fatalf("partial mutated:\n got %#v\nwant %#v", p, pSnapshot)
	}
}

func TestMergeEmptyPartialIsIdentity(t *testing.T) {
	base := sampleBase()
	if got := Merge(base, Partial{}); !reflect.DeepEqual(got, base) {
		t.Fatalf("empty partial changed document:\n got %#v\nwant %#v", got, base)
	}
}

func TestApplyOntoNilLanguages(t *testing.T) {
	doc := Document{Theme: ThemeLight}
	doc.Apply(Partial{Languages: map[Language]Record{LanguageR: {"path": "/usr/bin/R"}}})
	if doc.Languages[LanguageR]["path"] != "/usr/bin/R" {
		t.Fatalf("expected language to be added, got %#v", doc.Languages)
	}
}
