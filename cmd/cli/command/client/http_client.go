package client

// http_client.go talks to the yamdb REST API on behalf of the CLI.

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"yamdb/internal/microservices/http-api/dto"
)

// APIError is a non-2xx answer from the server.
type APIError struct {
	StatusCode int
	Message    string
	Field      string
	Fields     map[string]string
}

func (e *APIError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d %s", e.StatusCode, http.StatusText(e.StatusCode))
	if e.Message != "" {
		b.WriteString(": " + e.Message)
	}
	if e.Field != "" {
		b.WriteString(" (" + e.Field + ")")
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, "\n  %s: %s", k, e.Fields[k])
	}
	return b.String()
}

type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
	token      string
}

func NewHTTPClient(apiURL string) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(apiURL, "/") + "/api/v1",
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *HTTPClient) SetToken(token string) {
	c.token = token
}

// do sends body as JSON and decodes a 2xx answer into out (when non-nil).
func (c *HTTPClient) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var payload struct {
			Error  string            `json:"error"`
			Field  string            `json:"field"`
			Fields map[string]string `json:"fields"`
		}
		// best effort; a non-JSON body still yields the status
		_ = json.NewDecoder(resp.Body).Decode(&payload)
		return &APIError{StatusCode: resp.StatusCode, Message: payload.Error, Field: payload.Field, Fields: payload.Fields}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func pageQuery(q url.Values, page, pageSize int) string {
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if pageSize > 0 {
		q.Set("page_size", strconv.Itoa(pageSize))
	}
	if len(q) == 0 {
		return ""
	}
	return "?" + q.Encode()
}

// Auth

func (c *HTTPClient) Signup(ctx context.Context, email, username string) (*dto.SignupRequest, error) {
	var out dto.SignupRequest
	err := c.do(ctx, http.MethodPost, "/auth/signup", dto.SignupRequest{Email: email, Username: username}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) Token(ctx context.Context, username, code string) (string, error) {
	var out dto.TokenResponse
	err := c.do(ctx, http.MethodPost, "/auth/token", dto.TokenRequest{Username: username, ConfirmationCode: code}, &out)
	if err != nil {
		return "", err
	}
	return out.Token, nil
}

func (c *HTTPClient) Me(ctx context.Context) (*dto.UserResponse, error) {
	var out dto.UserResponse
	if err := c.do(ctx, http.MethodGet, "/users/me", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Categories and genres share one shape; kind is "categories" or "genres".

func (c *HTTPClient) ListSlugs(ctx context.Context, kind, search string, page, pageSize int) (*dto.Paginated[dto.SlugResponse], error) {
	q := url.Values{}
	if search != "" {
		q.Set("search", search)
	}
	var out dto.Paginated[dto.SlugResponse]
	if err := c.do(ctx, http.MethodGet, "/"+kind+pageQuery(q, page, pageSize), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) CreateSlug(ctx context.Context, kind, name, slug string) (*dto.SlugResponse, error) {
	var out dto.SlugResponse
	if err := c.do(ctx, http.MethodPost, "/"+kind, dto.CreateSlugDTO{Name: name, Slug: slug}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) DeleteSlug(ctx context.Context, kind, slug string) error {
	return c.do(ctx, http.MethodDelete, "/"+kind+"/"+url.PathEscape(slug), nil, nil)
}

// Titles

type TitleFilter struct {
	Name     string
	Year     int
	Genre    string
	Category string
}

func (c *HTTPClient) ListTitles(ctx context.Context, f TitleFilter, page, pageSize int) (*dto.Paginated[dto.TitleResponse], error) {
	q := url.Values{}
	if f.Name != "" {
		q.Set("name", f.Name)
	}
	if f.Year != 0 {
		q.Set("year", strconv.Itoa(f.Year))
	}
	if f.Genre != "" {
		q.Set("genre", f.Genre)
	}
	if f.Category != "" {
		q.Set("category", f.Category)
	}
	var out dto.Paginated[dto.TitleResponse]
	if err := c.do(ctx, http.MethodGet, "/titles"+pageQuery(q, page, pageSize), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) GetTitle(ctx context.Context, id int64) (*dto.TitleResponse, error) {
	var out dto.TitleResponse
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/titles/%d", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) CreateTitle(ctx context.Context, req dto.CreateTitleDTO) (*dto.TitleResponse, error) {
	var out dto.TitleResponse
	if err := c.do(ctx, http.MethodPost, "/titles", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) DeleteTitle(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/titles/%d", id), nil, nil)
}

// Reviews

func (c *HTTPClient) ListReviews(ctx context.Context, titleID int64, page, pageSize int) (*dto.Paginated[dto.ReviewResponse], error) {
	var out dto.Paginated[dto.ReviewResponse]
	path := fmt.Sprintf("/titles/%d/reviews", titleID) + pageQuery(url.Values{}, page, pageSize)
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) CreateReview(ctx context.Context, titleID int64, text string, score int) (*dto.ReviewResponse, error) {
	var out dto.ReviewResponse
	path := fmt.Sprintf("/titles/%d/reviews", titleID)
	if err := c.do(ctx, http.MethodPost, path, dto.CreateReviewDTO{Text: text, Score: score}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) DeleteReview(ctx context.Context, titleID, reviewID int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/titles/%d/reviews/%d", titleID, reviewID), nil, nil)
}

// Comments

func (c *HTTPClient) ListComments(ctx context.Context, titleID, reviewID int64, page, pageSize int) (*dto.Paginated[dto.CommentResponse], error) {
	var out dto.Paginated[dto.CommentResponse]
	path := fmt.Sprintf("/titles/%d/reviews/%d/comments", titleID, reviewID) + pageQuery(url.Values{}, page, pageSize)
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) CreateComment(ctx context.Context, titleID, reviewID int64, text string) (*dto.CommentResponse, error) {
	var out dto.CommentResponse
	path := fmt.Sprintf("/titles/%d/reviews/%d/comments", titleID, reviewID)
	if err := c.do(ctx, http.MethodPost, path, dto.CreateCommentDTO{Text: text}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
