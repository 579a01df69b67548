package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"sigil/internal/domain"
)

// maxErrorBody bounds how much of an error response is read.
const maxErrorBody = 4 << 10

// StatusError is returned for any non-2xx response.
type StatusError struct {
	Method  string
	Path    string
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s %s: %d %s: %s", e.Method, e.Path, e.Status, http.StatusText(e.Status), e.Message)
	}
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.Status, http.StatusText(e.Status))
}

// Tally is the vote count for one rumor.
type Tally struct {
	RumorID string `json:"rumorId"`
	Up      int    `json:"up"`
	Down    int    `json:"down"`
}

// Invite is the invite code the service issues for a user.
type Invite struct {
	InviteCode string `json:"inviteCode"`
}

// HTTP talks to a sigil identity and action service.
type HTTP struct {
	Base string
	HTTP *http.Client
}

// NewHTTP returns a client for the service at base. A zero timeout means no
// client-side timeout; callers can still bound requests with a context.
func NewHTTP(base string, timeout time.Duration) *HTTP {
	return &HTTP{
		Base: strings.TrimRight(base, "/"),
		HTTP: &http.Client{Timeout: timeout},
	}
}

// Register creates a new identity on the service.
func (c *HTTP) Register(
	ctx context.Context,
	req domain.RegisterRequest,
) (domain.RegisterResponse, error) {
	var out domain.RegisterResponse
	if err := c.do(ctx, http.MethodPost, "/api/join", "", req, &out); err != nil {
		return domain.RegisterResponse{}, err
	}
	return out, nil
}

// Login authenticates and returns the sealed envelope for local unsealing.
func (c *HTTP) Login(ctx context.Context, req domain.LoginRequest) (domain.LoginResponse, error) {
	var out domain.LoginResponse
	if err := c.do(ctx, http.MethodPost, "/api/login", "", req, &out); err != nil {
		return domain.LoginResponse{}, err
	}
	return out, nil
}

// Rekey replaces the stored auth key and envelope after a password change.
func (c *HTTP) Rekey(ctx context.Context, token string, req domain.RekeyRequest) error {
	return c.do(ctx, http.MethodPost, "/api/rekey", token, req, nil)
}

// SubmitAction posts a signed vote using the bearer token from login.
func (c *HTTP) SubmitAction(
	ctx context.Context,
	token string,
	req domain.ActionRequest,
) (domain.ActionResponse, error) {
	var out domain.ActionResponse
	if err := c.do(ctx, http.MethodPost, "/api/vote", token, req, &out); err != nil {
		return domain.ActionResponse{}, err
	}
	return out, nil
}

// PostRumor submits a signed rumor using the bearer token from login.
func (c *HTTP) PostRumor(
	ctx context.Context,
	token string,
	req domain.RumorRequest,
) (domain.RumorResponse, error) {
	var out domain.RumorResponse
	if err := c.do(ctx, http.MethodPost, "/api/rumor", token, req, &out); err != nil {
		return domain.RumorResponse{}, err
	}
	return out, nil
}

// Invite fetches the invite code for userID.
func (c *HTTP) Invite(ctx context.Context, userID domain.UserID) (Invite, error) {
	var out Invite
	path := "/api/generate-invite/" + url.PathEscape(string(userID))
	if err := c.do(ctx, http.MethodGet, path, "", nil, &out); err != nil {
		return Invite{}, err
	}
	return out, nil
}

// Tally fetches the vote count for rumorID.
func (c *HTTP) Tally(ctx context.Context, rumorID string) (Tally, error) {
	var out Tally
	path := "/api/rumors/" + url.PathEscape(rumorID) + "/tally"
	if err := c.do(ctx, http.MethodGet, path, "", nil, &out); err != nil {
		return Tally{}, err
	}
	return out, nil
}

func (c *HTTP) do(ctx context.Context, method, path, token string, in, out any) error {
	var body io.Reader
	if in != nil {
		buf := new(bytes.Buffer)
		if err := json.NewEncoder(buf).Encode(in); err != nil {
			return err
		}
		body = buf
	}
	req, err := http.NewRequestWithContext(ctx, method, c.Base+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return statusError(method, path, resp)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("%s %s: decode response: %w", method, path, err)
		}
	}
	return nil
}

func statusError(method, path string, resp *http.Response) error {
	e := &StatusError{Method: method, Path: path, Status: resp.StatusCode}
	var msg struct {
		Error string `json:"error"`
	}
	b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if json.Unmarshal(b, &msg) == nil {
		e.Message = msg.Error
	}
	return e
}

var (
	_ domain.IdentityClient = (*HTTP)(nil)
	_ domain.ActionClient   = (*HTTP)(nil)
)
