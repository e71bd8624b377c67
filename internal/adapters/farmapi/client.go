// Package farmapi queries a remote farm API for plants. It lets a map
// session load progressively from a deployed server instead of a database.
package farmapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/samirrijal/farmmap/internal/core/domain"
	"github.com/samirrijal/farmmap/internal/core/usecases"
)

const userAgent = "farmmap-client/1"

// envelope is the response shape of the mapview endpoint.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Total   int             `json:"total"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Client implements ports.PlantQuery over HTTP.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// New returns a client for baseURL. hc may be nil.
func New(baseURL, token string, timeout time.Duration, hc *http.Client) *Client {
	if hc == nil {
		hc = &http.Client{Timeout: timeout}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), token: token, http: hc}
}

// MapviewURL builds the mapview request URL; nil bounds omits the box.
func (c *Client) MapviewURL(bounds *domain.ViewportBounds) string {
	u := c.baseURL + "/v1/plants/mapview"
	if bounds == nil {
		return u
	}
	f := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
	q := url.Values{}
	q.Set("swLng", f(bounds.SW.Lon))
	q.Set("swLat", f(bounds.SW.Lat))
	q.Set("neLng", f(bounds.NE.Lon))
	q.Set("neLat", f(bounds.NE.Lat))
	return u + "?" + q.Encode()
}

// FetchPlants returns the plants inside bounds.
func (c *Client) FetchPlants(ctx context.Context, bounds *domain.ViewportBounds) ([]domain.Plant, error) {
	req, err := c.newRequest(ctx, http.MethodGet, c.MapviewURL(bounds), http.NoBody)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("mapview request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<20))
	if err != nil {
		return nil, fmt.Errorf("read mapview response: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("decode mapview response (status %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK || !env.Success {
		msg := http.StatusText(resp.StatusCode)
		if env.Error != nil {
			msg = env.Error.Message
		}
		return nil, fmt.Errorf("mapview failed with status %d: %s", resp.StatusCode, msg)
	}

	var wire []remotePlant
	if err := json.Unmarshal(env.Data, &wire); err != nil {
		return nil, fmt.Errorf("decode plants: %w", err)
	}
	plants := make([]domain.Plant, 0, len(wire))
	for _, rp := range wire {
		plants = append(plants, rp.plant())
	}
	return plants, nil
}

// remotePlant is a mapview record whose id and parent fields may be raw ids,
// Mongo style "_id" keys or populated references.
type remotePlant struct {
	domain.Plant
	ID             domain.Ref `json:"id"`
	MongoID        domain.Ref `json:"_id"`
	PlotID         domain.Ref `json:"plot_id"`
	DomainID       domain.Ref `json:"domain_id"`
	OrganizationID domain.Ref `json:"organization_id"`
}

func (rp remotePlant) plant() domain.Plant {
	p := rp.Plant
	p.ID = string(rp.ID)
	if p.ID == "" {
		p.ID = string(rp.MongoID)
	}
	p.PlotID = string(rp.PlotID)
	p.DomainID = string(rp.DomainID)
	p.OrganizationID = string(rp.OrganizationID)
	return p
}

// Validate asks the server whether req is an acceptable placement.
func (c *Client) Validate(ctx context.Context, vr usecases.ValidateRequest) (domain.ValidationResult, error) {
	var res domain.ValidationResult
	payload, err := json.Marshal(vr)
	if err != nil {
		return res, err
	}
	req, err := c.newRequest(ctx, http.MethodPost, c.baseURL+"/v1/locations/validate", bytes.NewReader(payload))
	if err != nil {
		return res, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return res, fmt.Errorf("validate request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var apiErr struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		return res, fmt.Errorf("validate failed with status %d: %s", resp.StatusCode, apiErr.Message)
	}
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return res, fmt.Errorf("decode validation result: %w", err)
	}
	return res, nil
}

func (c *Client) newRequest(ctx context.Context, method, target string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}
