// Package geo maps dataset country labels onto the world-atlas topology names
// the map view renders with.
//
// The mapping is an explicit enumerated table, not inferred: dataset labels
// and topology names disagree in small, deliberate ways ("USA" vs
// "United States of America") and guessing would silently drop countries off
// the map. Lookup is tolerant of case and diacritics.
package geo

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// TopologyAliases maps dataset country labels to the display names used by
// the world-atlas topology. Labels already matching the topology name are
// omitted; Resolve falls back to the input.
var TopologyAliases = map[string]string{
	"USA":                  "United States of America",
	"United States":        "United States of America",
	"UK":                   "United Kingdom",
	"Great Britain":        "United Kingdom",
	"England":              "United Kingdom",
	"Scotland":             "United Kingdom",
	"South Korea":          "South Korea",
	"Korea":                "South Korea",
	"Russia":               "Russia",
	"Russian Federation":   "Russia",
	"Czech Republic":       "Czechia",
	"UAE":                  "United Arab Emirates",
	"Ivory Coast":          "Côte d'Ivoire",
	"Cote d'Ivoire":        "Côte d'Ivoire",
	"DR Congo":             "Dem. Rep. Congo",
	"Congo (Kinshasa)":     "Dem. Rep. Congo",
	"Congo (Brazzaville)":  "Congo",
	"Burma":                "Myanmar",
	"Bosnia":               "Bosnia and Herz.",
	"Bosnia and Herzegovina": "Bosnia and Herz.",
	"Macedonia":            "North Macedonia",
	"Dominican Republic":   "Dominican Rep.",
	"Central African Republic": "Central African Rep.",
	"Holland":              "Netherlands",
	"The Netherlands":      "Netherlands",
	"Vietnam":              "Vietnam",
	"Viet Nam":             "Vietnam",
	"Taiwan":               "Taiwan",
	"Hong Kong":            "China",
	"Palestine":            "Palestine",
	"Swaziland":            "eSwatini",
	"Cape Verde":           "Cabo Verde",
	"East Timor":           "Timor-Leste",
}

// folded is TopologyAliases keyed by the folded form, built once at init.
var folded = func() map[string]string {
	m := make(map[string]string, len(TopologyAliases))
	for label, name := range TopologyAliases {
		m[fold(label)] = name
	}
	return m
}()

// Resolve returns the topology display name for a dataset country label.
// Unknown labels resolve to themselves so a new country in the data degrades
// to a possible map miss instead of an error.
func Resolve(label string) string {
	label = strings.TrimSpace(label)
	if label == "" {
		return ""
	}
	if name, ok := TopologyAliases[label]; ok {
		return name
	}
	if name, ok := folded[fold(label)]; ok {
		return name
	}
	return label
}

// fold lowercases and strips diacritics so "côte d'ivoire" and
// "Cote D'Ivoire" collide.
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(out)
}
