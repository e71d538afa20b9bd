package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"imagesearch/common/models"
)

const (
	// DefaultBaseURL is where the relay serves the proxy route during local development
	DefaultBaseURL = "http://localhost:8080/api/proxy"

	// DefaultTimeout is the default timeout for HTTP requests
	DefaultTimeout = 60 * time.Second

	// ImageField is the multipart field the backend reads the upload from
	ImageField = "image"
)

// Client talks to the backend endpoints through the relay
type Client struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string
}

// Option is a function that configures the client
type Option func(*Client)

// New creates a new client for the relay at baseURL
func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: "imagesearch/1.0",
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithTimeout sets a custom timeout for HTTP requests
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithUserAgent sets a custom user agent for requests
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		c.userAgent = userAgent
	}
}

// Upload is an image file selected by the user
type Upload struct {
	Name        string
	ContentType string
	Data        []byte
}

// ClassifyImage sends the image to the classify-image endpoint
func (c *Client) ClassifyImage(ctx context.Context, img Upload) (*models.ClassificationResult, error) {
	var result models.ClassificationResult
	if err := c.postImage(ctx, "/classify-image", img, &result); err != nil {
		return nil, err
	}
	if err := result.Validate(); err != nil {
		return nil, fmt.Errorf("unexpected response shape: %w", err)
	}
	return &result, nil
}

// SearchSimilarImages sends the image to the search-similar-images endpoint
func (c *Client) SearchSimilarImages(ctx context.Context, img Upload) (*models.SimilarImagesResult, error) {
	var result models.SimilarImagesResult
	if err := c.postImage(ctx, "/search-similar-images", img, &result); err != nil {
		return nil, err
	}
	if err := result.Validate(); err != nil {
		return nil, fmt.Errorf("unexpected response shape: %w", err)
	}
	return &result, nil
}

// SearchImagesByText queries the search-images-by-text endpoint and returns
// the images unwrapped from the response envelope
func (c *Client) SearchImagesByText(ctx context.Context, query string) ([]models.ImageEntry, error) {
	params := url.Values{}
	params.Set("query", query)

	req, err := c.newRequest(ctx, http.MethodGet, "/search-images-by-text?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	var result models.TextSearchResult
	if err := c.do(req, &result); err != nil {
		return nil, err
	}
	if err := result.Validate(); err != nil {
		return nil, fmt.Errorf("unexpected response shape: %w", err)
	}
	return result.Images, nil
}

func (c *Client) postImage(ctx context.Context, endpoint string, img Upload, out interface{}) error {
	body, contentType, err := encodeUpload(img)
	if err != nil {
		return err
	}

	req, err := c.newRequest(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", contentType)

	return c.do(req, out)
}

// encodeUpload builds the multipart form carrying the image under ImageField
func encodeUpload(img Upload) (io.Reader, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	name := img.Name
	if name == "" {
		name = "upload"
	}
	contentType := img.ContentType
	if contentType == "" {
		contentType = http.DetectContentType(img.Data)
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, ImageField, escapeQuotes(name)))
	header.Set("Content-Type", contentType)

	part, err := mw.CreatePart(header)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create form part: %w", err)
	}
	if _, err := part.Write(img.Data); err != nil {
		return nil, "", fmt.Errorf("failed to write image: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to close form: %w", err)
	}

	return &buf, mw.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}

func (c *Client) newRequest(ctx context.Context, method, endpoint string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", uuid.NewString())
	return req, nil
}

// do performs the request and decodes a 2xx JSON body into out
func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to perform request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newAPIError(resp.StatusCode, body)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
