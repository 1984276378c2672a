package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/hupe1980/fashionagent/core"
	"github.com/hupe1980/fashionagent/logging"
)

const (
	// DefaultGeocodingURL is the Open-Meteo geocoding search endpoint.
	DefaultGeocodingURL = "https://geocoding-api.open-meteo.com/v1/search"
	// DefaultForecastURL is the Open-Meteo forecast endpoint.
	DefaultForecastURL = "https://api.open-meteo.com/v1/forecast"
	// DefaultTimeout bounds each HTTP round trip.
	DefaultTimeout = 10 * time.Second
)

// Options configures a Client.
type Options struct {
	GeocodingURL string
	ForecastURL  string
	Timeout      time.Duration
	HTTPClient   *http.Client
	Logger       logging.Logger
}

// Client talks to Open-Meteo. It implements core.Geocoder and
// core.WeatherService. Temperatures are requested in Fahrenheit.
type Client struct {
	opts   Options
	client *http.Client
}

var (
	_ core.Geocoder       = (*Client)(nil)
	_ core.WeatherService = (*Client)(nil)
)

// NewClient creates an Open-Meteo client.
func NewClient(optFns ...func(o *Options)) *Client {
	opts := Options{
		GeocodingURL: DefaultGeocodingURL,
		ForecastURL:  DefaultForecastURL,
		Timeout:      DefaultTimeout,
		Logger:       logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}

	return &Client{opts: opts, client: client}
}

type geocodingResponse struct {
	Results []struct {
		Name      string  `json:"name"`
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	} `json:"results"`
}

// Lookup resolves place to the coordinates of the first match. A response
// without results reports found=false.
func (c *Client) Lookup(ctx context.Context, place string) (core.Coordinates, bool, error) {
	q := url.Values{}
	q.Set("name", place)

	var resp geocodingResponse
	if err := c.getJSON(ctx, c.opts.GeocodingURL+"?"+q.Encode(), &resp); err != nil {
		return core.Coordinates{}, false, core.E("weather.geocode", core.KindUpstream, err)
	}

	if len(resp.Results) == 0 {
		c.opts.Logger.Debug("weather.geocode.not_found", "place", place)
		return core.Coordinates{}, false, nil
	}

	r := resp.Results[0]
	return core.Coordinates{Latitude: r.Latitude, Longitude: r.Longitude}, true, nil
}

type forecastResponse struct {
	CurrentWeather *struct {
		Temperature float64 `json:"temperature"`
		WeatherCode int     `json:"weathercode"`
	} `json:"current_weather"`
}

// Current returns the current temperature (Fahrenheit) and WMO code at a position.
func (c *Client) Current(ctx context.Context, at core.Coordinates) (core.CurrentWeather, error) {
	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(at.Latitude, 'f', -1, 64))
	q.Set("longitude", strconv.FormatFloat(at.Longitude, 'f', -1, 64))
	q.Set("current_weather", "true")
	q.Set("temperature_unit", "fahrenheit")

	var resp forecastResponse
	if err := c.getJSON(ctx, c.opts.ForecastURL+"?"+q.Encode(), &resp); err != nil {
		return core.CurrentWeather{}, core.E("weather.current", core.KindUpstream, err)
	}
	if resp.CurrentWeather == nil {
		return core.CurrentWeather{}, core.Errorf("weather.current", core.KindUpstream, "response has no current_weather")
	}

	return core.CurrentWeather{
		Temperature:   resp.CurrentWeather.Temperature,
		ConditionCode: resp.CurrentWeather.WeatherCode,
	}, nil
}

func (c *Client) getJSON(ctx context.Context, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("open-meteo request failed: %w", err)
	}
	defer resp.Body.Close()

	c.opts.Logger.Debug("weather.http.response", "status", resp.StatusCode, "duration_ms", time.Since(start).Milliseconds())

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("open-meteo returned status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
