package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"
)

// ErrCityNotFound means the weather provider doesn't know the city.
var ErrCityNotFound = errors.New("city not found")

// Weather is the subset of the OpenWeather response the chatbot reports.
type Weather struct {
	City        string
	Temp        float64
	FeelsLike   float64
	Description string
	Humidity    int
	Wind        float64
}

type WeatherService struct {
	apiKey     string
	apiURL     string
	httpClient *http.Client
}

func NewWeatherService(apiKey, apiURL string, timeout time.Duration) *WeatherService {
	return &WeatherService{
		apiKey: apiKey,
		apiURL: apiURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type openWeatherResponse struct {
	Name string `json:"name"`
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Humidity  int     `json:"humidity"`
	} `json:"main"`
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
}

// Lookup fetches current weather for a city in metric units. Unknown cities
// (and an unconfigured API key) come back as ErrCityNotFound.
func (s *WeatherService) Lookup(ctx context.Context, city string) (*Weather, error) {
	endpoint := fmt.Sprintf("%s?q=%s&appid=%s&units=metric",
		s.apiURL, url.QueryEscape(city), url.QueryEscape(s.apiKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("building weather request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("weather request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusUnauthorized {
		return nil, ErrCityNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("weather provider returned status %d", resp.StatusCode)
	}

	var payload openWeatherResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decoding weather response: %w", err)
	}

	description := ""
	if len(payload.Weather) > 0 {
		description = payload.Weather[0].Description
	}

	return &Weather{
		City:        payload.Name,
		Temp:        payload.Main.Temp,
		FeelsLike:   payload.Main.FeelsLike,
		Description: description,
		Humidity:    payload.Main.Humidity,
		Wind:        payload.Wind.Speed,
	}, nil
}

var (
	cityAfterIn       = regexp.MustCompile(`(weather?:\s+forecast)?\s+in\s+([a-zA-Z\s]+)`)
	cityTrailingIn    = regexp.MustCompile(`in\s+([a-zA-Z\s]+)$`)
	cityAfterForecast = regexp.MustCompile(`forecast\s+for\s+([a-zA-Z\s]+)`)
)

// ExtractCity pulls a city name out of free text, best effort. Returns ""
// when no pattern matches.
func ExtractCity(text string) string {
	text = strings.ToLower(text)

	if m := cityAfterIn.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[2])
	}

	if m := cityTrailingIn.FindStringSubmatch(text); m != nil && strings.Contains(text, "weather") {
		return strings.TrimSpace(m[1])
	}

	if m := cityAfterForecast.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}

	return ""
}
