package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

// Handle is a live connection to the backend: row storage plus the auth session.
type Handle interface {
	Config() Config

	Select(ctx context.Context, table string, q Query, dest any) error
	Insert(ctx context.Context, table string, row any, dest any) error
	InsertMany(ctx context.Context, table string, rows any, dest any) error
	Update(ctx context.Context, table string, id uuid.UUID, patch any) error
	Delete(ctx context.Context, table string, id uuid.UUID) error

	SignIn(ctx context.Context, email, password string) (*Session, error)
	SignUp(ctx context.Context, email, password string) (*Session, error)
	SignOut(ctx context.Context) error
	Session(ctx context.Context) (*Session, error)
	OnAuthStateChange(fn AuthListener) (unsubscribe func())
}

type Filter struct {
	Column string
	Op     string // eq, gte, lte, ilike...
	Value  string
}

type Query struct {
	Order   string
	Asc     bool
	Filters []Filter
}

func (q Query) values() url.Values {
	v := url.Values{}
	v.Set("select", "*")

	if q.Order != "" {
		dir := "desc"
		if q.Asc {
			dir = "asc"
		}

		v.Set("order", q.Order+"."+dir)
	}

	for _, f := range q.Filters {
		v.Add(f.Column, f.Op+"."+f.Value)
	}

	return v
}

type Client struct {
	cfg      Config
	http     *http.Client
	sessions SessionStore
	now      func() time.Time

	refreshes singleflight.Group

	mu        sync.Mutex
	session   *Session
	listeners map[int]AuthListener
	nextID    int
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithSessionStore(s SessionStore) Option {
	return func(c *Client) { c.sessions = s }
}

func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// NewClient builds a client for cfg and hydrates the persisted session, if any.
// No network call is made until the first operation.
func NewClient(cfg Config, opts ...Option) *Client {
	c := &Client{
		cfg:       cfg,
		http:      &http.Client{Timeout: 30 * time.Second},
		now:       time.Now,
		listeners: make(map[int]AuthListener),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.sessions != nil {
		s, err := c.sessions.LoadSession()
		if err != nil {
			slog.Warn("failed to restore session", "error", err)
		} else {
			c.session = s
		}
	}

	return c
}

func (c *Client) Config() Config {
	return c.cfg
}

func (c *Client) Select(ctx context.Context, table string, q Query, dest any) error {
	token, err := c.accessToken(ctx)
	if err != nil {
		return err
	}

	if err := c.do(ctx, http.MethodGet, "/rest/v1/"+table, q.values(), nil, nil, token, dest); err != nil {
		return fmt.Errorf("selecting %s: %w", table, err)
	}

	return nil
}

// Insert writes a single row and decodes the stored representation into dest.
func (c *Client) Insert(ctx context.Context, table string, row any, dest any) error {
	var rows []json.RawMessage
	if err := c.insert(ctx, table, []any{row}, &rows); err != nil {
		return err
	}

	if dest == nil {
		return nil
	}

	if len(rows) == 0 {
		return fmt.Errorf("inserting into %s: empty representation", table)
	}

	if err := json.Unmarshal(rows[0], dest); err != nil {
		return fmt.Errorf("decoding %s row: %w", table, err)
	}

	return nil
}

// InsertMany writes rows (a slice) in one request. dest, when set, must be a pointer to a slice.
func (c *Client) InsertMany(ctx context.Context, table string, rows any, dest any) error {
	return c.insert(ctx, table, rows, dest)
}

func (c *Client) insert(ctx context.Context, table string, body any, dest any) error {
	token, err := c.accessToken(ctx)
	if err != nil {
		return err
	}

	prefer := "return=minimal"
	if dest != nil {
		prefer = "return=representation"
	}

	header := http.Header{"Prefer": []string{prefer}}
	if err := c.do(ctx, http.MethodPost, "/rest/v1/"+table, nil, body, header, token, dest); err != nil {
		return fmt.Errorf("inserting into %s: %w", table, err)
	}

	return nil
}

func (c *Client) Update(ctx context.Context, table string, id uuid.UUID, patch any) error {
	token, err := c.accessToken(ctx)
	if err != nil {
		return err
	}

	q := url.Values{"id": []string{"eq." + id.String()}}
	header := http.Header{"Prefer": []string{"return=minimal"}}

	if err := c.do(ctx, http.MethodPatch, "/rest/v1/"+table, q, patch, header, token, nil); err != nil {
		return fmt.Errorf("updating %s: %w", table, err)
	}

	return nil
}

func (c *Client) Delete(ctx context.Context, table string, id uuid.UUID) error {
	token, err := c.accessToken(ctx)
	if err != nil {
		return err
	}

	q := url.Values{"id": []string{"eq." + id.String()}}
	if err := c.do(ctx, http.MethodDelete, "/rest/v1/"+table, q, nil, nil, token, nil); err != nil {
		return fmt.Errorf("deleting from %s: %w", table, err)
	}

	return nil
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (c *Client) SignIn(ctx context.Context, email, password string) (*Session, error) {
	q := url.Values{"grant_type": []string{"password"}}

	var resp tokenResponse
	if err := c.do(ctx, http.MethodPost, "/auth/v1/token", q, credentials{email, password}, nil, c.cfg.AnonKey, &resp); err != nil {
		return nil, fmt.Errorf("signing in: %w", err)
	}

	s, err := newSession(resp)
	if err != nil {
		return nil, fmt.Errorf("signing in: %w", err)
	}

	c.setSession(s, EventSignedIn)

	return s, nil
}

// SignUp registers a new account. The returned session is nil when the
// backend requires email confirmation before the first sign-in.
func (c *Client) SignUp(ctx context.Context, email, password string) (*Session, error) {
	var resp tokenResponse
	if err := c.do(ctx, http.MethodPost, "/auth/v1/signup", nil, credentials{email, password}, nil, c.cfg.AnonKey, &resp); err != nil {
		return nil, fmt.Errorf("signing up: %w", err)
	}

	if resp.AccessToken == "" {
		return nil, nil
	}

	s, err := newSession(resp)
	if err != nil {
		return nil, fmt.Errorf("signing up: %w", err)
	}

	c.setSession(s, EventSignedIn)

	return s, nil
}

// SignOut revokes the session remotely and always forgets it locally.
func (c *Client) SignOut(ctx context.Context) error {
	c.mu.Lock()
	s := c.session
	c.mu.Unlock()

	if s == nil {
		return nil
	}

	var err error
	if !s.Expired(c.now()) {
		err = c.do(ctx, http.MethodPost, "/auth/v1/logout", nil, nil, nil, s.AccessToken, nil)
		if IsAuthError(err) {
			err = nil
		}
	}

	c.setSession(nil, EventSignedOut)

	if err != nil {
		return fmt.Errorf("signing out: %w", err)
	}

	return nil
}

// Session returns the current session, refreshing it first when the access
// token has expired. A nil session with a nil error means signed out.
// Concurrent callers share one refresh request per refresh token.
func (c *Client) Session(ctx context.Context) (*Session, error) {
	c.mu.Lock()
	s := c.session
	c.mu.Unlock()

	if s == nil || !s.Expired(c.now()) {
		return s, nil
	}

	v, err, _ := c.refreshes.Do(s.RefreshToken, func() (any, error) {
		return c.refreshSession(context.WithoutCancel(ctx), s)
	})
	if err != nil {
		return nil, err
	}

	return v.(*Session), nil
}

func (c *Client) refreshSession(ctx context.Context, stale *Session) (*Session, error) {
	c.mu.Lock()
	current := c.session
	c.mu.Unlock()

	// Another flight already rotated or ended this session.
	if current == nil || current.RefreshToken != stale.RefreshToken {
		return current, nil
	}

	refreshed, err := c.refresh(ctx, stale.RefreshToken)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Status < http.StatusInternalServerError {
			slog.Info("session ended", "reason", apiErr.Message)
			c.setSession(nil, EventSignedOut)

			return (*Session)(nil), nil
		}

		return nil, fmt.Errorf("refreshing session: %w", err)
	}

	c.setSession(refreshed, EventTokenRefreshed)

	return refreshed, nil
}

// OnAuthStateChange registers fn and immediately reports the current session
// to it as EventInitialSession.
func (c *Client) OnAuthStateChange(fn AuthListener) func() {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = fn
	s := c.session
	c.mu.Unlock()

	fn(EventInitialSession, s)

	return func() {
		c.mu.Lock()
		delete(c.listeners, id)
		c.mu.Unlock()
	}
}

func (c *Client) refresh(ctx context.Context, refreshToken string) (*Session, error) {
	q := url.Values{"grant_type": []string{"refresh_token"}}
	body := map[string]string{"refresh_token": refreshToken}

	var resp tokenResponse
	if err := c.do(ctx, http.MethodPost, "/auth/v1/token", q, body, nil, c.cfg.AnonKey, &resp); err != nil {
		return nil, err
	}

	return newSession(resp)
}

func (c *Client) accessToken(ctx context.Context) (string, error) {
	s, err := c.Session(ctx)
	if err != nil {
		return "", err
	}

	if s == nil {
		return c.cfg.AnonKey, nil
	}

	return s.AccessToken, nil
}

func (c *Client) setSession(s *Session, event AuthEvent) {
	c.mu.Lock()
	c.session = s
	listeners := make([]AuthListener, 0, len(c.listeners))

	for _, fn := range c.listeners {
		listeners = append(listeners, fn)
	}
	c.mu.Unlock()

	if c.sessions != nil {
		var err error
		if s == nil {
			err = c.sessions.ClearSession()
		} else {
			err = c.sessions.SaveSession(s)
		}

		if err != nil {
			slog.Warn("failed to persist session", "error", err)
		}
	}

	for _, fn := range listeners {
		fn(event, s)
	}
}

func (c *Client) do(
	ctx context.Context,
	method, path string,
	query url.Values,
	body any,
	header http.Header,
	token string,
	dest any,
) error {
	u := strings.TrimRight(c.cfg.URL, "/") + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader

	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}

		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("apikey", c.cfg.AnonKey)
	req.Header.Set("Authorization", "Bearer "+token)

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		return decodeError(resp)
	}

	if dest == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}

	return nil
}

// errorBody covers both the REST and the auth error shapes.
type errorBody struct {
	Code             json.RawMessage `json:"code"`
	ErrorCode        string          `json:"error_code"`
	Message          string          `json:"message"`
	Msg              string          `json:"msg"`
	Error            string          `json:"error"`
	ErrorDescription string          `json:"error_description"`
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}

	var body errorBody
	if err := json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&body); err != nil {
		apiErr.Message = http.StatusText(resp.StatusCode)
		return apiErr
	}

	var code string
	if len(body.Code) > 0 && body.Code[0] == '"' {
		_ = json.Unmarshal(body.Code, &code)
	}

	apiErr.Code = firstNonEmpty(body.ErrorCode, code, body.Error)
	apiErr.Message = firstNonEmpty(body.Message, body.Msg, body.ErrorDescription, http.StatusText(resp.StatusCode))

	return apiErr
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}

	return ""
}
