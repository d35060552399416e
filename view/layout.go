package view

import (
	"fmt"
	"sort"
)

// Layout is the cosmetic arrangement of the form.
type Layout struct {
	Columns    int
	Padding    int
	ShowHeader bool
}

// Presets reproduce the page variants the form has shipped with.
var Presets = map[string]Layout{
	"classic": {Columns: 5, Padding: 30, ShowHeader: true},
	"compact": {Columns: 5, Padding: 16, ShowHeader: false},
	"dense":   {Columns: 6, Padding: 20, ShowHeader: true},
	"narrow":  {Columns: 3, Padding: 30, ShowHeader: true},
}

func PresetNames() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ResolveLayout starts from the named preset and applies any non-zero
// overrides.
func ResolveLayout(preset string, columns, padding int, showHeader *bool) (Layout, error) {
	layout, ok := Presets[preset]
	if !ok {
		return Layout{}, fmt.Errorf("unknown layout %q (want one of %v)", preset, PresetNames())
	}
	if columns < 0 || padding < 0 {
		return Layout{}, fmt.Errorf("layout columns and padding must not be negative")
	}
	if columns > 0 {
		layout.Columns = columns
	}
	if padding > 0 {
		layout.Padding = padding
	}
	if showHeader != nil {
		layout.ShowHeader = *showHeader
	}
	return layout, nil
}
