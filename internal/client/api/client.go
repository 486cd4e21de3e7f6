package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/elibrary/internal/client/models"
	"github.com/dmitrijs2005/elibrary/internal/common"
	"github.com/dmitrijs2005/elibrary/internal/logging"
	"github.com/google/uuid"
)

const (
	DefaultTimeout       = 30 * time.Second
	DefaultUploadTimeout = 60 * time.Second

	refreshPath = "/auth/refresh"
)

// maxBodyBytes caps how much of a response body is read.
var maxBodyBytes int64 = 64 << 20

// ErrResponseTooLarge is the cause of a KindUnexpected error for bodies over
// the read cap.
var ErrResponseTooLarge = errors.New("response too large")

// TokenStore is the credential storage the client reads and, in reaction to
// authorization failures, mutates.
type TokenStore interface {
	Access(ctx context.Context) (string, bool)
	Refresh(ctx context.Context) (string, bool)
	Set(ctx context.Context, accessToken, refreshToken string) error
	Clear(ctx context.Context) error
}

// AuthLost describes a hard logout. Redirect is false when the host said it
// is already showing a login screen.
type AuthLost struct {
	Cause    error
	Redirect bool
}

type Client struct {
	baseURL     string
	http        *http.Client
	upload      *http.Client
	tokens      TokenStore
	log         logging.Logger
	onAuthLost  func(ctx context.Context, ev AuthLost)
	loginScreen func() bool
}

type Option func(*Client)

// WithHTTPClient replaces the transport used for regular and upload calls;
// their timeouts are kept.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http.Transport = hc.Transport
		c.upload.Transport = hc.Transport
	}
}

func WithTimeouts(request, upload time.Duration) Option {
	return func(c *Client) {
		if request > 0 {
			c.http.Timeout = request
		}
		if upload > 0 {
			c.upload.Timeout = upload
		}
	}
}

// WithAuthLost registers the hard-logout callback.
func WithAuthLost(fn func(ctx context.Context, ev AuthLost)) Option {
	return func(c *Client) { c.onAuthLost = fn }
}

// WithLoginScreen tells the client whether the host is on a login screen,
// which suppresses the redirect of a hard logout.
func WithLoginScreen(fn func() bool) Option {
	return func(c *Client) { c.loginScreen = fn }
}

func New(baseURL string, tokens TokenStore, log logging.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: DefaultTimeout},
		upload:  &http.Client{Timeout: DefaultUploadTimeout},
		tokens:  tokens,
		log:     log.With("component", "api"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetAuthLost replaces the hard-logout callback after construction, for
// hosts whose session controller is built on top of this client. It must be
// called before the first Do.
func (c *Client) SetAuthLost(fn func(ctx context.Context, ev AuthLost)) {
	c.onAuthLost = fn
}

// Do sends req with the current access token and runs the refresh protocol
// on 401. A returned envelope may still carry success=false; use
// Envelope.Err or Decode.
func (c *Client) Do(ctx context.Context, req *Request) (*Envelope, error) {
	token, _ := c.tokens.Access(ctx)

	env, err := c.send(ctx, req, token)
	if err == nil || StatusOf(err) != http.StatusUnauthorized || req.retried {
		return env, err
	}

	req.retried = true

	refreshToken, ok := c.tokens.Refresh(ctx)
	if !ok {
		c.hardLogout(ctx, err)
		return nil, err
	}

	pair, refreshErr := c.refresh(ctx, refreshToken)
	if refreshErr != nil {
		c.log.Error(ctx, "token refresh failed", "error", refreshErr)
		c.hardLogout(ctx, refreshErr)
		return nil, refreshErr
	}

	if err := c.tokens.Set(ctx, pair.AccessToken, pair.RefreshToken); err != nil {
		c.log.Warn(ctx, "storing refreshed tokens failed", "error", err)
	}

	return c.send(ctx, req, pair.AccessToken)
}

func (c *Client) hardLogout(ctx context.Context, cause error) {
	if err := c.tokens.Clear(ctx); err != nil {
		c.log.Warn(ctx, "clearing tokens failed", "error", err)
	}
	redirect := c.loginScreen == nil || !c.loginScreen()
	if c.onAuthLost != nil {
		c.onAuthLost(ctx, AuthLost{Cause: cause, Redirect: redirect})
	}
}

// refresh exchanges a refresh token for a new pair. It bypasses Do so a
// failing refresh can never recurse into another refresh.
func (c *Client) refresh(ctx context.Context, refreshToken string) (*models.TokenPair, error) {
	req := &Request{
		Method:  http.MethodPost,
		Path:    refreshPath,
		Body:    map[string]string{"refreshToken": refreshToken},
		retried: true,
	}
	env, err := c.send(ctx, req, "")
	if err != nil {
		var e *Error
		if errors.As(err, &e) && e.Kind == KindBusiness {
			e.Kind = KindAuthorization
		}
		return nil, err
	}

	pair, err := Decode[models.TokenPair](env)
	if err != nil {
		var e *Error
		if errors.As(err, &e) && e.Kind == KindBusiness {
			e.Kind = KindAuthorization
		}
		return nil, err
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		return nil, &Error{
			Kind:   KindAuthorization,
			Status: env.Status,
			Method: req.Method,
			Path:   req.Path,
			Err:    errors.New("refresh response without tokens"),
		}
	}
	return &pair, nil
}

func (c *Client) send(ctx context.Context, req *Request, token string) (*Envelope, error) {
	fail := func(kind Kind, status int, msg string, err error) *Error {
		return &Error{Kind: kind, Status: status, Message: msg, Method: req.Method, Path: req.Path, Err: err}
	}

	target := c.baseURL + req.Path
	q, err := req.encodeQuery()
	if err != nil {
		return nil, fail(KindUnexpected, 0, "", err)
	}
	if q != "" {
		target += "?" + q
	}

	body, contentType, err := req.encodeBody()
	if err != nil {
		return nil, fail(KindUnexpected, 0, "", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		return nil, fail(KindUnexpected, 0, "", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		httpReq.Header.Set(common.AuthorizationHeader, common.BearerPrefix+token)
	}
	requestID := uuid.NewString()
	httpReq.Header.Set(common.RequestIDHeader, requestID)

	hc := c.http
	if req.Form != nil {
		hc = c.upload
	}

	resp, err := hc.Do(httpReq)
	if err != nil {
		c.log.Warn(ctx, "no response from server", "method", req.Method, "path", req.Path, "request_id", requestID, "error", err)
		return nil, fail(KindNetwork, 0, "", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes+1))
	if err != nil {
		return nil, fail(KindNetwork, resp.StatusCode, "", fmt.Errorf("read body: %w", err))
	}
	if int64(len(raw)) > maxBodyBytes {
		c.log.Warn(ctx, "response body over limit", "method", req.Method, "path", req.Path,
			"request_id", requestID, "limit", maxBodyBytes)
		return nil, fail(KindUnexpected, resp.StatusCode, ErrResponseTooLarge.Error(), ErrResponseTooLarge)
	}

	env := &Envelope{Status: resp.StatusCode, Method: req.Method, Path: req.Path}
	decodeErr := decodeEnvelope(raw, env)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		kind := KindBusiness
		if resp.StatusCode == http.StatusUnauthorized {
			kind = KindAuthorization
		}
		c.log.Warn(ctx, "api error", "method", req.Method, "path", req.Path, "status", resp.StatusCode,
			"request_id", requestID, "message", env.Message)
		return nil, fail(kind, resp.StatusCode, env.Message, nil)
	}

	if decodeErr != nil {
		return nil, fail(KindUnexpected, resp.StatusCode, "", decodeErr)
	}
	return env, nil
}

func decodeEnvelope(raw []byte, env *Envelope) error {
	if len(bytes.TrimSpace(raw)) == 0 {
		return errors.New("empty response body")
	}
	if err := json.Unmarshal(raw, env); err != nil {
		return fmt.Errorf("decode envelope: %w", err)
	}
	return nil
}
