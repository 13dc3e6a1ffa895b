package layout

import "sort"

// presets maps target triples to their data layout strings. The strings
// follow the same grammar Parse accepts; anything a preset leaves out is
// covered by the seeded defaults.
var presets = map[string]string{
	"x86_64-linux-gnu":  "e-p:64:64:64-i64:64:64-f64:64:64",
	"i386-linux-gnu":    "e-p:32:32:32-i64:32:64-f64:32:64",
	"armv7-linux-gnu":   "e-p:32:32:32-i64:64:64-v128:64:128",
	"aarch64-linux-gnu": "e-p:64:64:64-i64:64:64-f64:64:64",
	"sparcv9-sun":       "E-p:64:64:64-i64:64:64-f64:64:64",
	"generic-be64":      "E-p:64:64:64",
}

// Preset returns the data layout string registered for a target triple.
func Preset(triple string) (string, bool) {
	spec, ok := presets[triple]
	return spec, ok
}

// PresetNames returns the known target triples in sorted order.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
