// Package client is a Go gateway to the social API. It stores the session
// token after Login and treats a TOKEN_EXPIRED answer as a forced logout.
package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
)

// ErrSessionExpired matches an *APIError for a 401 TOKEN_EXPIRED answer.
// The token store is already cleared when it is returned.
var ErrSessionExpired = errors.New("session expired")

const codeTokenExpired = "TOKEN_EXPIRED"

type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("api status %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("api status %d (%s): %s", e.Status, e.Code, e.Message)
}

func (e *APIError) Is(target error) bool {
	return target == ErrSessionExpired && e.Status == http.StatusUnauthorized && e.Code == codeTokenExpired
}

type TokenStore interface {
	Token() string
	SetToken(token string)
	Clear()
}

type MemoryTokenStore struct {
	mu    sync.RWMutex
	token string
}

func (s *MemoryTokenStore) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *MemoryTokenStore) SetToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
}

func (s *MemoryTokenStore) Clear() {
	s.SetToken("")
}

type User struct {
	ID             uint      `json:"id"`
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	ProfilePicture *string   `json:"profile_picture"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type Post struct {
	ID             uint      `json:"id"`
	UserID         uint      `json:"user_id"`
	Content        string    `json:"content"`
	ImageURL       *string   `json:"image_url"`
	Username       string    `json:"username"`
	ProfilePicture *string   `json:"profile_picture"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type LoginResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      User      `json:"user"`
}

// File is an image attached to a multipart request.
type File struct {
	Name string
	Data io.Reader
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithTokenStore(store TokenStore) Option {
	return func(c *Client) { c.tokens = store }
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenStore
}

// New builds a client for the server at baseURL, e.g. http://localhost:8080.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		tokens:     &MemoryTokenStore{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Tokens() TokenStore {
	return c.tokens
}

func (c *Client) Register(ctx context.Context, username, email, password string, avatar *File) (*User, error) {
	fields := map[string]string{"username": username, "email": email, "password": password}

	var user User
	var err error
	if avatar == nil {
		err = c.doJSON(ctx, http.MethodPost, "/auth/register", fields, &user)
	} else {
		err = c.doMultipart(ctx, http.MethodPost, "/auth/register", fields, "profile_picture", avatar, &user)
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Login stores the returned token for subsequent calls.
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	var result LoginResult
	err := c.doJSON(ctx, http.MethodPost, "/auth/login", map[string]string{
		"username": username,
		"password": password,
	}, &result)
	if err != nil {
		return nil, err
	}
	c.tokens.SetToken(result.Token)
	return &result, nil
}

func (c *Client) Logout() {
	c.tokens.Clear()
}

// ListPosts pages through the feed; a zero limit fetches every post.
func (c *Client) ListPosts(ctx context.Context, limit, offset int) ([]Post, error) {
	query := url.Values{}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	if offset > 0 {
		query.Set("offset", strconv.Itoa(offset))
	}
	path := "/posts"
	if len(query) > 0 {
		path += "?" + query.Encode()
	}
	var posts []Post
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func (c *Client) GetPost(ctx context.Context, id uint) (*Post, error) {
	var post Post
	if err := c.doJSON(ctx, http.MethodGet, "/posts/"+uintString(id), nil, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

func (c *Client) ListUserPosts(ctx context.Context, userID uint) ([]Post, error) {
	var posts []Post
	if err := c.doJSON(ctx, http.MethodGet, "/posts/user/"+uintString(userID), nil, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func (c *Client) CreatePost(ctx context.Context, content string, image *File) (*Post, error) {
	var post Post
	fields := map[string]string{"content": content}
	if err := c.doMultipart(ctx, http.MethodPost, "/posts", fields, "image", image, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

// UpdatePost sends content only when non-nil and the image only when set.
func (c *Client) UpdatePost(ctx context.Context, id uint, content *string, image *File) (*Post, error) {
	fields := map[string]string{}
	if content != nil {
		fields["content"] = *content
	}
	var post Post
	if err := c.doMultipart(ctx, http.MethodPut, "/posts/"+uintString(id), fields, "image", image, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

func (c *Client) DeletePost(ctx context.Context, id uint) error {
	return c.doJSON(ctx, http.MethodDelete, "/posts/"+uintString(id), nil, nil)
}

func (c *Client) GetProfile(ctx context.Context) (*User, error) {
	var user User
	if err := c.doJSON(ctx, http.MethodGet, "/users/profile", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) GetUser(ctx context.Context, id uint) (*User, error) {
	var user User
	if err := c.doJSON(ctx, http.MethodGet, "/users/"+uintString(id), nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

type ProfileUpdate struct {
	Username *string
	Email    *string
	Password *string
	Avatar   *File
}

func (c *Client) UpdateProfile(ctx context.Context, update ProfileUpdate) (*User, error) {
	fields := map[string]string{}
	if update.Username != nil {
		fields["username"] = *update.Username
	}
	if update.Email != nil {
		fields["email"] = *update.Email
	}
	if update.Password != nil {
		fields["password"] = *update.Password
	}
	var user User
	if err := c.doMultipart(ctx, http.MethodPut, "/users/profile", fields, "profile_picture", update.Avatar, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request failed: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+"/api/v1"+path, reader)
	if err != nil {
		return fmt.Errorf("build request failed: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(req, out)
}

func (c *Client) doMultipart(ctx context.Context, method, path string, fields map[string]string, fileField string, file *File, out interface{}) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return fmt.Errorf("write form field failed: %w", err)
		}
	}
	if file != nil {
		fw, err := mw.CreateFormFile(fileField, file.Name)
		if err != nil {
			return fmt.Errorf("create form file failed: %w", err)
		}
		if _, err := io.Copy(fw, file.Data); err != nil {
			return fmt.Errorf("copy form file failed: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("close multipart writer failed: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+"/api/v1"+path, &buf)
	if err != nil {
		return fmt.Errorf("build request failed: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return c.send(req, out)
}

func (c *Client) send(req *http.Request, out interface{}) error {
	req.Header.Set("Accept", "application/json")
	if token := c.tokens.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s failed: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response failed: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := decodeAPIError(resp.StatusCode, raw)
		if errors.Is(apiErr, ErrSessionExpired) {
			c.tokens.Clear()
		}
		return apiErr
	}

	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response failed: %w", err)
	}
	return nil
}

// decodeAPIError prefers the body's message, then its error, then a generic
// text.
func decodeAPIError(status int, raw []byte) *APIError {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
		Code    string `json:"code"`
	}
	_ = json.Unmarshal(raw, &body)

	message := body.Message
	if message == "" {
		message = body.Error
	}
	if message == "" {
		message = "Request failed"
	}
	return &APIError{Status: status, Code: body.Code, Message: message}
}

func uintString(v uint) string {
	return strconv.FormatUint(uint64(v), 10)
}
