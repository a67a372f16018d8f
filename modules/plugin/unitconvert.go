package plugin

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/fathomsearch/fathom/modules/result"
	"github.com/fathomsearch/fathom/modules/search"
)

// UnitConverter answers queries of the form "<value> <unit> to <unit>".
type UnitConverter struct{}

func (UnitConverter) Name() string        { return "unit_converter" }
func (UnitConverter) Description() string { return "Converts between measurement units" }

var unitQueryRe = regexp.MustCompile(`^(\d+\.?\d*)\s*([a-zA-Z°]+)\s+(?:to|in|as)\s+([a-zA-Z°]+)$`)

// unitFamilies maps unit aliases to a linear factor into the family's base
// unit. Temperatures are affine and handled separately.
var unitFamilies = []map[string]float64{
	// length, base meter
	{
		"mm": 0.001, "millimeter": 0.001, "millimeters": 0.001,
		"cm": 0.01, "centimeter": 0.01, "centimeters": 0.01,
		"m": 1, "meter": 1, "meters": 1,
		"km": 1000, "kilometer": 1000, "kilometers": 1000,
		"in": 0.0254, "inch": 0.0254, "inches": 0.0254,
		"ft": 0.3048, "foot": 0.3048, "feet": 0.3048,
		"yd": 0.9144, "yard": 0.9144, "yards": 0.9144,
		"mi": 1609.344, "mile": 1609.344, "miles": 1609.344,
	},
	// mass, base kilogram
	{
		"mg": 1e-6, "g": 0.001, "gram": 0.001, "grams": 0.001,
		"kg": 1, "kilogram": 1, "kilograms": 1,
		"t": 1000, "tonne": 1000, "tonnes": 1000,
		"oz": 0.028349523125, "ounce": 0.028349523125, "ounces": 0.028349523125,
		"lb": 0.45359237, "lbs": 0.45359237, "pound": 0.45359237, "pounds": 0.45359237,
	},
	// volume, base liter
	{
		"ml": 0.001, "milliliter": 0.001, "milliliters": 0.001,
		"l": 1, "liter": 1, "liters": 1, "litre": 1, "litres": 1,
		"pt": 0.473176473, "pint": 0.473176473, "pints": 0.473176473,
		"qt": 0.946352946, "quart": 0.946352946, "quarts": 0.946352946,
		"gal": 3.785411784, "gallon": 3.785411784, "gallons": 3.785411784,
	},
	// area, base square meter
	{
		"sqm": 1, "m2": 1,
		"sqkm": 1e6, "km2": 1e6,
		"sqft": 0.09290304, "ft2": 0.09290304,
		"acre": 4046.8564224, "acres": 4046.8564224,
		"ha": 10000, "hectare": 10000, "hectares": 10000,
	},
	// speed, base meter per second
	{
		"kmh": 1.0 / 3.6, "kph": 1.0 / 3.6,
		"mph": 0.44704,
		"knot": 0.514444, "knots": 0.514444,
	},
	// data, base byte, powers of 1024
	{
		"b": 1, "byte": 1, "bytes": 1,
		"kb": 1 << 10, "kib": 1 << 10,
		"mb": 1 << 20, "mib": 1 << 20,
		"gb": 1 << 30, "gib": 1 << 30,
		"tb": 1 << 40, "tib": 1 << 40,
	},
}

var temperatureUnits = map[string]string{
	"c": "c", "°c": "c", "celsius": "c",
	"f": "f", "°f": "f", "fahrenheit": "f",
	"k": "k", "kelvin": "k",
}

func (u UnitConverter) PreSearch(q *search.Query) PreResult {
	m := unitQueryRe.FindStringSubmatch(strings.TrimSpace(q.CleanQuery))
	if m == nil {
		return Continue
	}

	value, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return Continue
	}
	from, to := strings.ToLower(m[2]), strings.ToLower(m[3])

	converted, ok := convertUnits(value, from, to)
	if !ok {
		return Continue
	}

	return PreResult{
		Verdict: VerdictAnswer,
		Answer: &result.Answer{
			Text:   fmt.Sprintf("%.4f %s = %.4f %s", value, from, converted, to),
			Engine: "unit_converter",
		},
	}
}

func convertUnits(value float64, from, to string) (float64, bool) {
	if fu, ok := temperatureUnits[from]; ok {
		tu, ok := temperatureUnits[to]
		if !ok {
			return 0, false
		}
		return convertTemperature(value, fu, tu), true
	}

	for _, family := range unitFamilies {
		ff, okFrom := family[from]
		tf, okTo := family[to]
		if okFrom && okTo {
			return value * ff / tf, true
		}
	}
	return 0, false
}

// convertTemperature goes through celsius.
func convertTemperature(v float64, from, to string) float64 {
	var c float64
	switch from {
	case "c":
		c = v
	case "f":
		c = (v - 32) * 5 / 9
	case "k":
		c = v - 273.15
	}

	switch to {
	case "f":
		return c*9/5 + 32
	case "k":
		return c + 273.15
	default:
		return c
	}
}
