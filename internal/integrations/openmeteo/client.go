package openmeteo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const (
	dateLayout = "2006-01-02"

	// DefaultHorizonDays горизонт прогноза Open-Meteo
	DefaultHorizonDays = 15
)

// Client клиент для получения времени рассвета и заката из Open-Meteo
type Client struct {
	baseURL      string
	httpClient   *http.Client
	horizonDays  int
	timeProvider TimeProvider
	log          Logger
}

// NewClient создает новый экземпляр клиента Open-Meteo
func NewClient(baseURL string, timeout time.Duration, horizonDays int, log Logger) *Client {
	if horizonDays <= 0 {
		horizonDays = DefaultHorizonDays
	}
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		horizonDays:  horizonDays,
		timeProvider: &RealTimeProvider{},
		log:          log,
	}
}

// WithTimeProvider подменяет источник текущего времени
func (c *Client) WithTimeProvider(tp TimeProvider) *Client {
	c.timeProvider = tp
	return c
}

// FetchDaily получает рассвет и закат на диапазон дат
// Конец диапазона обрезается горизонтом прогноза; если весь диапазон за горизонтом, запрос не выполняется
func (c *Client) FetchDaily(ctx context.Context, req DailyRequest) (*DailyResponse, error) {
	loc, err := time.LoadLocation(req.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("%w: FetchDaily - time zone %q: %v", ErrInvalidRequest, req.TimeZone, err)
	}
	start, err := time.ParseInLocation(dateLayout, req.StartDate, loc)
	if err != nil {
		return nil, fmt.Errorf("%w: FetchDaily - start date: %v", ErrInvalidRequest, err)
	}
	end, err := time.ParseInLocation(dateLayout, req.EndDate, loc)
	if err != nil {
		return nil, fmt.Errorf("%w: FetchDaily - end date: %v", ErrInvalidRequest, err)
	}

	now := c.timeProvider.Now().In(loc)
	horizon := time.Date(now.Year(), now.Month(), now.Day()+c.horizonDays, 0, 0, 0, 0, loc)
	if start.After(horizon) {
		c.log.Info("FetchDaily: range %s..%s is beyond forecast horizon %s, skipping request",
			req.StartDate, req.EndDate, horizon.Format(dateLayout))
		return &DailyResponse{}, nil
	}
	if end.After(horizon) {
		end = horizon
	}

	query := url.Values{}
	query.Set("latitude", strconv.FormatFloat(req.Latitude, 'f', 4, 64))
	query.Set("longitude", strconv.FormatFloat(req.Longitude, 'f', 4, 64))
	query.Set("daily", "sunrise,sunset")
	query.Set("timezone", req.TimeZone)
	query.Set("start_date", req.StartDate)
	query.Set("end_date", end.Format(dateLayout))

	reqURL := fmt.Sprintf("%s/v1/forecast?%s", c.baseURL, query.Encode())

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", ErrInternal, err)
	}
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to execute request: %v", ErrInternal, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusBadRequest:
		var apiErr errorResponse
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		return nil, fmt.Errorf("%w: bad request: %s", ErrInvalidResponse, apiErr.Reason)
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("%w: unexpected status code %d: %s", ErrInvalidResponse, resp.StatusCode, string(body))
	}

	var raw forecastResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %v", ErrInvalidResponse, err)
	}

	result := &DailyResponse{}
	for i, date := range raw.Daily.Time {
		// Полярный день или ночь: Open-Meteo возвращает null, такие дни пропускаем
		if i >= len(raw.Daily.Sunrise) || i >= len(raw.Daily.Sunset) {
			break
		}
		if raw.Daily.Sunrise[i] == nil || raw.Daily.Sunset[i] == nil {
			continue
		}
		result.Dates = append(result.Dates, date)
		result.SunriseLocal = append(result.SunriseLocal, *raw.Daily.Sunrise[i])
		result.SunsetLocal = append(result.SunsetLocal, *raw.Daily.Sunset[i])
	}

	c.log.Info("FetchDaily: received %d days for %s..%s (tz=%s)",
		result.Len(), req.StartDate, end.Format(dateLayout), req.TimeZone)

	return result, nil
}
