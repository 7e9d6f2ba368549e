// Package collab talks to the collaborator REST API that owns towers,
// defenses and users, and resolves the records a view needs.
package collab

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"siegemap/internal/domain"
)

const defaultTimeout = 30 * time.Second

// Client is a JSON client for the collaborator API.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	logger  *slog.Logger
}

// New creates a client for the API rooted at baseURL. token, when set, is
// sent as a bearer token on every request.
func New(baseURL, token string, logger *slog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: defaultTimeout},
		logger:  logger,
	}
}

// GetDefense fetches one defense. A missing defense matches ErrNotFound.
func (c *Client) GetDefense(ctx context.Context, id string) (domain.Defense, error) {
	var d domain.Defense
	err := c.do(ctx, http.MethodGet, "/api/defenses/"+url.PathEscape(id), nil, &d)
	return d, err
}

// ListUsers fetches every user.
func (c *Client) ListUsers(ctx context.Context) ([]domain.User, error) {
	var users []domain.User
	if err := c.do(ctx, http.MethodGet, "/api/users", nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// ListAssignments fetches which users are eligible for which defense.
func (c *Client) ListAssignments(ctx context.Context) ([]domain.EligibleAssignment, error) {
	var resp domain.AssignmentsResponse
	if err := c.do(ctx, http.MethodGet, "/api/gestion/assignments", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Assignments, nil
}

// ListTowers fetches the towers of one map in creation order.
func (c *Client) ListTowers(ctx context.Context, mapName string) ([]domain.Tower, error) {
	var towers []domain.Tower
	path := "/api/map/towers?" + url.Values{"mapName": {mapName}}.Encode()
	if err := c.do(ctx, http.MethodGet, path, nil, &towers); err != nil {
		return nil, err
	}
	return towers, nil
}

// GetTower fetches one tower.
func (c *Client) GetTower(ctx context.Context, id string) (domain.Tower, error) {
	var t domain.Tower
	err := c.do(ctx, http.MethodGet, "/api/map/towers/"+url.PathEscape(id), nil, &t)
	return t, err
}

// CreateTower creates a tower and returns the stored record.
func (c *Client) CreateTower(ctx context.Context, req domain.CreateTowerRequest) (domain.Tower, error) {
	var t domain.Tower
	err := c.do(ctx, http.MethodPost, "/api/map/towers", req, &t)
	return t, err
}

// UpdateTower saves number, stars, color and assignments in one request and
// returns the server's representation.
func (c *Client) UpdateTower(ctx context.Context, id string, update domain.TowerUpdate) (domain.Tower, error) {
	var t domain.Tower
	err := c.do(ctx, http.MethodPut, "/api/map/towers/"+url.PathEscape(id), update, &t)
	return t, err
}

// UpdateGeometry commits a drag or resize.
func (c *Client) UpdateGeometry(ctx context.Context, id string, update domain.GeometryUpdate) (domain.Tower, error) {
	var t domain.Tower
	err := c.do(ctx, http.MethodPatch, "/api/map/towers/"+url.PathEscape(id)+"/geometry", update, &t)
	return t, err
}

// DeleteTower removes a tower.
func (c *Client) DeleteTower(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/map/towers/"+url.PathEscape(id), nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	c.logger.Debug("collab request", "method", method, "path", path)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e domain.ErrorResponse
		_ = json.Unmarshal(data, &e)
		return &APIError{Status: resp.StatusCode, Message: e.Error}
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}
