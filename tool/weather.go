package tool

import (
	"context"
	"fmt"
	"strconv"

	"github.com/hupe1980/fashionagent/core"
	"github.com/hupe1980/fashionagent/weather"
)

const msgNoWeather = "There is no weather information for this location. Use default value."

func (t *Toolset) currentWeather(ctx context.Context, call core.ToolCall, a WeatherArgs) core.ToolResult {
	if t.opts.Geocoder == nil || t.opts.Weather == nil {
		return failure(call, CodeBadRequest, msgNoWeather)
	}

	coords, found, err := t.opts.Geocoder.Lookup(ctx, a.LocationName)
	if err != nil || !found {
		t.opts.Logger.Warn("tool.weather.location_not_found", "location", a.LocationName, "error", err)
		return failure(call, CodeNotFound, fmt.Sprintf("Error: Could not find location %s", a.LocationName))
	}

	current, err := t.opts.Weather.Current(ctx, coords)
	if err != nil {
		t.opts.Logger.Warn("tool.weather.unavailable", "location", a.LocationName, "error", err)
		return failure(call, CodeBadRequest, msgNoWeather)
	}

	desc, known := weather.Lookup(current.ConditionCode)
	if !known {
		t.opts.Logger.Warn("tool.weather.unmapped_code", "code", current.ConditionCode)
		desc = weather.Describe(current.ConditionCode)
	}

	return success(call, fmt.Sprintf("Temperature is %s in Fahrenheit. The weather description is %s",
		strconv.FormatFloat(current.Temperature, 'f', -1, 64), desc))
}
