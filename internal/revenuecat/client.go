// Package revenuecat - клиент REST API биллинг-провайдера RevenueCat.
// Используется только чтение каталога предложений.
package revenuecat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/magabrotheeeer/boost-admin/internal/config"
	"github.com/magabrotheeeer/boost-admin/internal/lib/apperr"
)

// ErrNotConfigured возвращается, если ключ API не задан. Запрос при этом не выполняется.
var ErrNotConfigured = errors.New("revenuecat: api key is not configured")

// StatusError - ответ провайдера с кодом вне диапазона 2xx.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("revenuecat: unexpected status %d: %s", e.StatusCode, e.Body)
}

func (e *StatusError) Unwrap() error {
	return apperr.ErrExternalService
}

const (
	defaultTimeout      = 5 * time.Second
	defaultMaxRedirects = 5
	maxErrorBody        = 1 << 10
)

// Client выполняет запросы к API RevenueCat.
type Client struct {
	apiKey     string
	projectID  string
	apiURL     string
	httpClient *http.Client
}

// NewClient создаёт клиент по настройкам. Таймаут и число редиректов
// ограничены значениями из конфига (по умолчанию 5 с и 5 редиректов).
func NewClient(cfg config.RevenueCat) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	maxRedirects := cfg.MaxRedirects
	if maxRedirects <= 0 {
		maxRedirects = defaultMaxRedirects
	}

	return &Client{
		apiKey:    cfg.APIKey,
		projectID: cfg.ProjectID,
		apiURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(_ *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return fmt.Errorf("revenuecat: stopped after %d redirects", maxRedirects)
				}
				return nil
			},
		},
	}
}

// Configured сообщает, задан ли ключ API.
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

// GetOfferings возвращает каталог предложений проекта.
func (c *Client) GetOfferings(ctx context.Context) (*OfferingsResponse, error) {
	const op = "revenuecat.GetOfferings"

	if !c.Configured() {
		return nil, ErrNotConfigured
	}

	req, err := c.newRequest(ctx, http.MethodGet, "/projects/"+url.PathEscape(c.projectID)+"/offerings")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, apperr.ErrExternalService, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, fmt.Errorf("%s: %w", op, &StatusError{StatusCode: resp.StatusCode, Body: string(body)})
	}

	var offerings OfferingsResponse
	if err := json.NewDecoder(resp.Body).Decode(&offerings); err != nil {
		return nil, fmt.Errorf("%s: decode: %w: %w", op, apperr.ErrExternalService, err)
	}
	return &offerings, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.apiURL+path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")
	return req, nil
}
