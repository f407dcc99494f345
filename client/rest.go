package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"chat-sync/auth"
	"chat-sync/domain"
	"chat-sync/errors"
)

// RestClient talks to the chat service HTTP API. It implements the
// contract.QueryService and contract.CommandService consumed by the
// coordinator.
type RestClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewRestClient creates a client for the given base URL, e.g.
// "http://localhost:8080".
func NewRestClient(baseURL string) *RestClient {
	return &RestClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// SetToken sets the bearer token for authenticated requests.
func (c *RestClient) SetToken(token string) {
	c.token = token
}

type credentialsRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

type createRoomRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type createMessageRequest struct {
	Content string `json:"content"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Login authenticates and returns the user with its bearer token.
func (c *RestClient) Login(ctx context.Context, name, password string) (domain.User, string, error) {
	var resp tokenResponse
	err := c.post(ctx, "/api/login", credentialsRequest{Name: name, Password: password}, &resp, false)
	if err != nil {
		return domain.User{}, "", err
	}
	return resp.User, resp.Token, nil
}

// Register creates an account and returns the user with its bearer token.
func (c *RestClient) Register(ctx context.Context, req auth.RegisterRequest) (domain.User, string, error) {
	var resp tokenResponse
	if err := c.post(ctx, "/api/register", req, &resp, false); err != nil {
		return domain.User{}, "", err
	}
	return resp.User, resp.Token, nil
}

func (c *RestClient) GetMessages(ctx context.Context, room domain.RoomID) ([]domain.Message, error) {
	var resp []domain.Message
	path := fmt.Sprintf("/api/rooms/%s/messages", room)
	if err := c.get(ctx, path, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *RestClient) GetRoom(ctx context.Context, room domain.RoomID) (domain.Room, error) {
	var resp domain.Room
	if err := c.get(ctx, "/api/rooms/"+string(room), &resp); err != nil {
		return domain.Room{}, err
	}
	return resp, nil
}

func (c *RestClient) ListRooms(ctx context.Context) ([]domain.Room, error) {
	var resp []domain.Room
	if err := c.get(ctx, "/api/rooms", &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *RestClient) CreateRoom(ctx context.Context, name, description string) (domain.Room, error) {
	var resp domain.Room
	req := createRoomRequest{Name: name, Description: description}
	if err := c.post(ctx, "/api/rooms", req, &resp, true); err != nil {
		return domain.Room{}, err
	}
	return resp, nil
}

// CreateMessage persists a message. Failures come back as ErrCommandFailed:
// the caller surfaces them and publishes nothing.
func (c *RestClient) CreateMessage(ctx context.Context, room domain.RoomID, content string) (domain.Message, error) {
	var resp domain.Message
	path := fmt.Sprintf("/api/rooms/%s/messages", room)
	if err := c.post(ctx, path, createMessageRequest{Content: content}, &resp, true); err != nil {
		return domain.Message{}, fmt.Errorf("%w: %v", errors.ErrCommandFailed, err)
	}
	return resp, nil
}

func (c *RestClient) DeleteMessage(ctx context.Context, id string) error {
	return c.delete(ctx, "/api/messages/"+id)
}

func (c *RestClient) DeleteRoom(ctx context.Context, room domain.RoomID) error {
	return c.delete(ctx, "/api/rooms/"+string(room))
}

func (c *RestClient) post(ctx context.Context, path string, body, dest any, requireAuth bool) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if requireAuth && c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return c.do(req, dest)
}

func (c *RestClient) get(ctx context.Context, path string, dest any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, http.NoBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return c.do(req, dest)
}

func (c *RestClient) delete(ctx context.Context, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+path, http.NoBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return c.do(req, nil)
}

func (c *RestClient) do(req *http.Request, dest any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var errResp errorResponse
		if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
			return fmt.Errorf("api error (status %d): %s", resp.StatusCode, errResp.Error)
		}
		return fmt.Errorf("http error: %s (status %d)", string(body), resp.StatusCode)
	}

	if dest != nil {
		if err := json.Unmarshal(body, dest); err != nil {
			return fmt.Errorf("unmarshal response: %w", err)
		}
	}
	return nil
}
