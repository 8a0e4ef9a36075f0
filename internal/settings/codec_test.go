package settings

import (
	"errors"
	"reflect"
	"testing"
)

func TestDecodeEmptyInput(t *testing.T) {
	for _, input := range []string{"", "   \n\t", "null"} {
		p, err := Decode([]byte(input))
		if err != nil {
			t.Fatalf("Decode(%q) returned error: %v", input, err)
		}
		if !p.IsEmpty() {
			t.Fatalf("Decode(%q) expected empty partial, got %#v", input, p)
		}
	}
}

func TestDecodeCorruption(t *testing.T) {
	cases := map[string]string{
		"truncated": `{"theme": "dark"`,
		"not json":  `theme = dark`,
		"array":     `[1, 2, 3]`,
		"number":    `42`,
		"string":    `"dark"`,
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Decode([]byte(input))
			var corrupt *CorruptionError
			if !errors.As(err, &corrupt) {
				t.Fatalf("expected CorruptionError, got %v", err)
			}
		})
	}
}

func TestDecodeDropsWrongTypedFields(t *testing.T) {
	cases := map[string]struct {
		input   string
		invalid []string
	}{
		"size as string":   {`{"theme": "dark", "stdoutMaxSize": "lots"}`, []string{"stdoutMaxSize"}},
		"id as number":     {`{"theme": "dark", "id": 42}`, []string{"id"}},
		"languages array":  {`{"theme": "dark", "languages": ["python"]}`, []string{"languages"}},
		"record as scalar": {`{"theme": "dark", "languages": {"python": 7, "ruby": {"path": "/r"}}}`, []string{"languages.python"}},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			p, err := Decode([]byte(tc.input))
			if err != nil {
				t.Fatalf("Decode returned error: %v", err)
			}
			if got := p.InvalidKeys(); !reflect.DeepEqual(got, tc.invalid) {
				t.Fatalf("invalid keys = %v, want %v", got, tc.invalid)
			}
			if p.Theme == nil || *p.Theme != ThemeDark {
				t.Fatalf("sibling theme lost: %#v", p)
			}
		})
	}

	p, _ := Decode([]byte(`{"languages": {"python": 7, "ruby": {"path": "/r"}}}`))
	if !reflect.DeepEqual(p.Languages, map[Language]Record{LanguageRuby: {"path": "/r"}}) {
		t.Fatalf("sibling language records lost: %#v", p.Languages)
	}
}

func TestDecodeFields(t *testing.T) {
	input := `{
		"file": "/somewhere/.settings",
		"theme": "dark",
		"id": "abc",
		"lastProject": "demo",
		"stdoutMaxSize": 250,
		"languages": {"python": {"path": "/usr/bin/python3"}, "cobol": {"path": "x"}, "ruby": null},
		"uid": "legacy",
		"autocompleteDisabled": true
	}`
	p, err := Decode([]byte(input))
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	if *p.File != "/somewhere/.settings" || *p.Theme != ThemeDark || *p.ID != "abc" || *p.LastProject != "demo" || *p.StdoutMaxSize != 250 {
		t.Fatalf("unexpected scalar fields: %#v", p)
	}
	wantLangs := map[Language]Record{LanguagePython: {"path": "/usr/bin/python3"}}
	if !reflect.DeepEqual(p.Languages, wantLangs) {
		t.Fatalf("languages mismatch: got %#v", p.Languages)
	}
	if _, ok := p.Extra["uid"]; !ok {
		t.Fatal("legacy key should be kept in Extra")
	}
	if _, ok := p.Extra["autocompleteDisabled"]; !ok {
		t.Fatal("unknown key should be kept in Extra")
	}
}

func TestDecodeNullFieldIsAbsent(t *testing.T) {
	p, err := Decode([]byte(`{"id": null, "theme": "light"}`))
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	if p.ID != nil {
		t.Fatalf("expected null id to be absent, got %q", *p.ID)
	}
	if got := p.Keys(); !reflect.DeepEqual(got, []string{"theme"}) {
		t.Fatalf("unexpected keys %v", got)
	}
}

func TestEncodeWritesCanonicalFieldsOnly(t *testing.T) {
	doc := New("/tmp/.settings", ThemeLight)
	doc.Languages = nil
	data, err := Encode(doc)
	if err != nil {
		t.Fatalf("Encode returned error: %v", err)
	}
	p, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode of encoded document failed: %v", err)
	}
	if len(p.Extra) != 0 {
		t.Fatalf("encoded document carried extra keys: %v", p.Keys())
	}
	want := []string{"file", "id", "languages", "lastProject", "stdoutMaxSize", "theme"}
	if got := p.Keys(); !reflect.DeepEqual(got, want) {
		t.Fatalf("encoded keys = %v, want %v", got, want)
	}
	if p.Languages == nil {
		t.Fatal("languages should encode as an empty object")
	}
}

func TestPartialJSONRoundTripKeepsExtra(t *testing.T) {
	p, err := Decode([]byte(`{"uid": "abc", "stdoutMaxSize": 9}`))
	if err != nil {
		t.Fatal(err)
	}
	data, err := p.MarshalJSON()
	if err != nil {
		t.Fatal(err)
	}
	again, err := Decode(data)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(p, again) {
		t.Fatalf("round trip mismatch:\n got %#v\nwant %#v", again, p)
	}
}
