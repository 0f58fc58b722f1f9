package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/accountkeeper/internal/client/models"
	"github.com/dmitrijs2005/accountkeeper/internal/common"
)

var (
	ErrUnavailable = errors.New("server unavailable")
	ErrNotLoggedIn = errors.New("not logged in")
	ErrBadResponse = errors.New("unexpected server response")
)

// Client is the subset of the account service API used by the CLI.
type Client interface {
	Register(ctx context.Context, email string, password []byte, firstName, lastName string) (*models.Account, error)
	Login(ctx context.Context, email string, password []byte, rememberMe bool) (*models.Account, error)
	Logout(ctx context.Context) error
	GetAccountByEmail(ctx context.Context, email string) (*models.Account, error)
	AddLoyaltyPoints(ctx context.Context, id string, points int64) (*models.Account, error)
	Exists(ctx context.Context, email string) (bool, error)
	Ping(ctx context.Context) error
}

// Error is a non-2xx answer of the server.
type Error struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s (%d %s)", e.Message, e.StatusCode, e.Code)
	}
	return fmt.Sprintf("%s (%d)", e.Message, e.StatusCode)
}

// Is maps the server answer back onto the shared sentinel errors.
func (e *Error) Is(target error) bool {
	switch target {
	case common.ErrInvalidCredential:
		return e.Code == "INVALID_CREDENTIALS" || e.Message == "Invalid email or password"
	case common.ErrAccountDisabled:
		return e.Code == "ACCOUNT_DISABLED" || e.Message == "Account is deactivated"
	case common.ErrDuplicateEmail:
		return e.StatusCode == http.StatusConflict || e.Message == "User with this email already exists"
	case common.ErrorNotFound:
		return e.StatusCode == http.StatusNotFound
	case common.ErrTokenExpired:
		return e.Code == "TOKEN_EXPIRED"
	case common.ErrorUnauthorized:
		return e.StatusCode == http.StatusUnauthorized
	case common.ErrorValidation:
		return e.StatusCode == http.StatusBadRequest
	}
	return false
}

type HTTPClient struct {
	baseURL string
	http    *http.Client

	mu      sync.Mutex
	session *models.Session
}

func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// Session returns a copy of the current session, or nil.
func (c *HTTPClient) Session() *models.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return nil
	}
	s := *c.session
	return &s
}

func (c *HTTPClient) setSession(s *models.Session) {
	c.mu.Lock()
	c.session = s
	c.mu.Unlock()
}

type envelope struct {
	Success      bool            `json:"success"`
	Message      string          `json:"message"`
	Token        string          `json:"token"`
	RefreshToken string          `json:"refreshToken"`
	Account      *models.Account `json:"account"`
	ExpiresIn    int64           `json:"expiresIn"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (c *HTTPClient) Register(ctx context.Context, email string, password []byte, firstName, lastName string) (*models.Account, error) {
	req := map[string]any{"email": email, "password": string(password)}
	if firstName != "" {
		req["firstName"] = firstName
	}
	if lastName != "" {
		req["lastName"] = lastName
	}
	return c.authenticate(ctx, "/auth/register", req)
}

func (c *HTTPClient) Login(ctx context.Context, email string, password []byte, rememberMe bool) (*models.Account, error) {
	return c.authenticate(ctx, "/auth/login", map[string]any{
		"email":      email,
		"password":   string(password),
		"rememberMe": rememberMe,
	})
}

func (c *HTTPClient) authenticate(ctx context.Context, path string, body any) (*models.Account, error) {
	env, err := c.postEnvelope(ctx, path, body)
	if err != nil {
		return nil, err
	}
	c.setSession(&models.Session{
		Token:        env.Token,
		RefreshToken: env.RefreshToken,
		ExpiresIn:    time.Duration(env.ExpiresIn) * time.Second,
	})
	return env.Account, nil
}

// refresh redeems the stored refresh token and replaces the session.
func (c *HTTPClient) refresh(ctx context.Context) error {
	s := c.Session()
	if s == nil || s.RefreshToken == "" {
		return ErrNotLoggedIn
	}
	env, err := c.postEnvelope(ctx, "/auth/refresh", map[string]string{"refreshToken": s.RefreshToken})
	if err != nil {
		return err
	}
	c.setSession(&models.Session{
		Token:        env.Token,
		RefreshToken: env.RefreshToken,
		ExpiresIn:    time.Duration(env.ExpiresIn) * time.Second,
	})
	return nil
}

// postEnvelope calls one of the /auth endpoints. Failures are reported by
// success=false whatever the status code, so both server modes work.
func (c *HTTPClient) postEnvelope(ctx context.Context, path string, body any) (*envelope, error) {
	resp, err := c.send(ctx, http.MethodPost, path, "", body)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadResponse, err)
	}
	if !env.Success {
		return nil, &Error{StatusCode: resp.StatusCode, Message: env.Message}
	}
	return &env, nil
}

// Logout revokes the session on the server and forgets it locally. The local
// session is dropped even when the server call fails.
func (c *HTTPClient) Logout(ctx context.Context) error {
	s := c.Session()
	if s == nil {
		return ErrNotLoggedIn
	}
	defer c.setSession(nil)
	return c.doJSON(ctx, http.MethodPost, "/auth/logout", map[string]string{"refreshToken": s.RefreshToken}, nil)
}

func (c *HTTPClient) GetAccountByEmail(ctx context.Context, email string) (*models.Account, error) {
	var a models.Account
	if err := c.doJSON(ctx, http.MethodGet, "/accounts/email/"+url.PathEscape(email), nil, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

func (c *HTTPClient) AddLoyaltyPoints(ctx context.Context, id string, points int64) (*models.Account, error) {
	var a models.Account
	if err := c.doJSON(ctx, http.MethodPost, "/accounts/"+url.PathEscape(id)+"/loyalty-points", map[string]int64{"points": points}, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

func (c *HTTPClient) Exists(ctx context.Context, email string) (bool, error) {
	var out struct {
		Exists bool `json:"exists"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/accounts/exists/"+url.PathEscape(email), nil, &out); err != nil {
		return false, err
	}
	return out.Exists, nil
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodGet, "/health", nil, nil)
}

// doJSON sends an authenticated request and decodes a 2xx body into out.
// A TOKEN_EXPIRED answer triggers one refresh and one retry.
func (c *HTTPClient) doJSON(ctx context.Context, method, path string, body, out any) error {
	err := c.doOnce(ctx, method, path, body, out)
	if err == nil || !errors.Is(err, common.ErrTokenExpired) {
		return err
	}
	if rerr := c.refresh(ctx); rerr != nil {
		return err
	}
	return c.doOnce(ctx, method, path, body, out)
}

func (c *HTTPClient) doOnce(ctx context.Context, method, path string, body, out any) error {
	token := ""
	if s := c.Session(); s != nil {
		token = s.Token
	}

	resp, err := c.send(ctx, method, path, token, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", ErrBadResponse, err)
	}
	return nil
}

func (c *HTTPClient) send(ctx context.Context, method, path, token string, body any) (*http.Response, error) {
	var rd io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		rd = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return resp, nil
}

func decodeError(resp *http.Response) error {
	var eb errorBody
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err := json.Unmarshal(data, &eb); err != nil || eb.Message == "" {
		eb.Message = http.StatusText(resp.StatusCode)
	}
	return &Error{StatusCode: resp.StatusCode, Code: eb.Code, Message: eb.Message}
}
