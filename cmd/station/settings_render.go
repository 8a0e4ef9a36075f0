package main

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"station/internal/settings"
)

func settingsRows(doc settings.Document) []fieldRow {
	rows := []fieldRow{
		{Field: "file", Value: doc.File},
		{Field: "theme", Value: string(doc.Theme)},
		{Field: "id", Value: orNone(doc.ID)},
		{Field: "lastProject", Value: orNone(doc.LastProject)},
		{Field: "stdoutMaxSize", Value: strconv.Itoa(doc.StdoutMaxSize)},
	}

	langs := make([]settings.Language, 0, len(doc.Languages))
	for lang := range doc.Languages {
		langs = append(langs, lang)
	}
	sort.Slice(langs, func(i, j int) bool { return langs[i] < langs[j] })
	for _, lang := range langs {
		rows = append(rows, fieldRow{
			Field: fmt.Sprintf("languages.%s (%s)", lang, lang.DisplayName()),
			Value: compactJSON(doc.Languages[lang]),
		})
	}
	return rows
}

func orNone(value string) string {
	if value == "" {
		return "-"
	}
	return value
}

func compactJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(data)
}
