// Package weather resolves place names and current conditions through the
// Open-Meteo geocoding and forecast APIs and maps WMO weather codes to text.
package weather

import "fmt"

var conditions = map[int]string{
	0:  "Clear sky",
	1:  "Mainly clear",
	2:  "Partly cloudy",
	3:  "Overcast",
	45: "Fog",
	48: "Depositing rime fog",
	51: "Drizzle: Light intensity",
	53: "Drizzle: Moderate intensity",
	55: "Drizzle: Dense intensity",
	56: "Freezing Drizzle: Light intensity",
	57: "Freezing Drizzle: Dense intensity",
	61: "Rain: Slight intensity",
	63: "Rain: Moderate intensity",
	65: "Rain: Heavy intensity",
	66: "Freezing Rain: Light intensity",
	67: "Freezing Rain: Heavy intensity",
	71: "Snow fall: Slight intensity",
	73: "Snow fall: Moderate intensity",
	75: "Snow fall: Heavy intensity",
	77: "Snow grains",
	80: "Rain showers: Slight intensity",
	81: "Rain showers: Moderate intensity",
	82: "Rain showers: Violent intensity",
	85: "Snow showers: Slight intensity",
	86: "Snow showers: Heavy intensity",
	95: "Thunderstorm: Slight or moderate",
	96: "Thunderstorm with slight hail",
	99: "Thunderstorm with heavy hail",
}

// Lookup returns the description of a WMO code and whether the code is known.
func Lookup(code int) (string, bool) {
	desc, ok := conditions[code]
	return desc, ok
}

// Describe returns the description of code, degrading to an "unknown
// condition" text for codes outside the table.
func Describe(code int) string {
	if desc, ok := conditions[code]; ok {
		return desc
	}
	return fmt.Sprintf("Unknown condition (code %d)", code)
}

// Codes returns the number of mapped codes.
func Codes() int { return len(conditions) }
