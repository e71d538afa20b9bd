package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"

	"imagesearch/common/models"
)

// Backend sub-paths the clients address through the relay
const (
	PathClassifyImage       = "/classify-image"
	PathSearchSimilarImages = "/search-similar-images"
	PathSearchImagesByText  = "/search-images-by-text"
)

// RequestIDHeader carries the id that ties a relayed request to its log lines
const RequestIDHeader = "X-Request-ID"

// errNotJSON marks a backend response whose body could not be parsed as JSON
var errNotJSON = errors.New("backend returned a non-JSON body")

// Relay forwards client requests to the backend with the API key attached
type Relay struct {
	backend   *url.URL
	apiKey    string
	timeout   time.Duration
	transport http.RoundTripper
	logger    hclog.Logger
}

// Option is a function that configures the relay
type Option func(*Relay)

// WithTimeout bounds each backend round trip. Zero disables the bound.
func WithTimeout(timeout time.Duration) Option {
	return func(r *Relay) {
		r.timeout = timeout
	}
}

// WithTransport sets the transport used for backend calls
func WithTransport(transport http.RoundTripper) Option {
	return func(r *Relay) {
		r.transport = transport
	}
}

// WithLogger sets the relay logger
func WithLogger(logger hclog.Logger) Option {
	return func(r *Relay) {
		r.logger = logger
	}
}

// New creates a relay for the given backend origin and bearer token
func New(backendURL, apiKey string, opts ...Option) (*Relay, error) {
	target, err := url.Parse(backendURL)
	if err != nil {
		return nil, fmt.Errorf("invalid backend url: %w", err)
	}
	if target.Scheme == "" || target.Host == "" {
		return nil, fmt.Errorf("invalid backend url %q: scheme and host are required", backendURL)
	}

	r := &Relay{
		backend: target,
		apiKey:  apiKey,
		logger:  hclog.NewNullLogger(),
	}
	for _, opt := range opts {
		opt(r)
	}

	if apiKey == "" {
		r.logger.Warn("backend api key is empty, requests will carry an empty bearer token")
	}
	return r, nil
}

// Handler returns the gin handler that relays /api/proxy/*path to the backend
//
// @Summary      Relay a request to the image backend
// @Description  Forwards the request to the backend sub-path with the API key attached and relays status and JSON body
// @Tags         proxy
// @Accept       json,mpfd
// @Produce      json
// @Param        path  path      string  true  "Backend sub-path, e.g. classify-image"
// @Success      200   {object}  object
// @Failure      400   {object}  models.ErrorResponse
// @Failure      502   {object}  models.ErrorResponse
// @Failure      504   {object}  models.ErrorResponse
// @Router       /proxy/{path} [post]
func (r *Relay) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Param("path")
		if path == "" {
			path = "/"
		}

		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header(RequestIDHeader, requestID)
		logger := r.logger.With("request_id", requestID, "method", c.Request.Method, "path", path)

		defer func() {
			label := metricPath(path)
			ProxyRequests.WithLabelValues(label, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
			ProxyDuration.WithLabelValues(label).Observe(time.Since(start).Seconds())
		}()

		if err := normalizeJSONBody(c.Request); err != nil {
			logger.Warn("rejecting malformed JSON body", "error", err)
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Status:    http.StatusBadRequest,
				Message:   "Request body is not valid JSON",
				Error:     err.Error(),
				RequestID: requestID,
			})
			return
		}

		// ReverseProxy falls back to CloseNotify when the context cannot be
		// cancelled, which not every gin writer supports
		ctx, cancel := context.WithCancel(c.Request.Context())
		defer cancel()
		if r.timeout > 0 {
			var cancelTimeout context.CancelFunc
			ctx, cancelTimeout = context.WithTimeout(ctx, r.timeout)
			defer cancelTimeout()
		}
		c.Request = c.Request.WithContext(ctx)

		proxy := &httputil.ReverseProxy{
			Director: func(req *http.Request) {
				req.URL.Scheme = r.backend.Scheme
				req.URL.Host = r.backend.Host
				req.URL.Path = strings.TrimRight(r.backend.Path, "/") + path
				req.URL.RawPath = ""
				req.Host = r.backend.Host

				// The inbound Authorization header never reaches the backend
				req.Header.Set("Authorization", "Bearer "+r.apiKey)
				req.Header.Set(RequestIDHeader, requestID)
				req.Header.Del("Cookie")
				// Let the transport negotiate compression so the body can be parsed
				req.Header.Del("Accept-Encoding")

				logger.Debug("forwarding request", "target", req.URL.String(), "query", req.URL.RawQuery)
			},
			Transport: r.transport,
			ModifyResponse: func(resp *http.Response) error {
				if err := reencodeJSON(resp); err != nil {
					return err
				}
				logger.Info("relayed response", "status", resp.StatusCode)
				return nil
			},
			ErrorHandler: func(w http.ResponseWriter, req *http.Request, err error) {
				status, reason, message := classifyFailure(err)
				BackendFailures.WithLabelValues(reason).Inc()
				logger.Error("proxy error", "error", err, "status", status)
				c.JSON(status, models.ErrorResponse{
					Status:    status,
					Message:   message,
					Error:     err.Error(),
					RequestID: requestID,
				})
			},
		}

		proxy.ServeHTTP(c.Writer, c.Request)
	}
}

// Register mounts the relay under /api/proxy
func (r *Relay) Register(router gin.IRouter) {
	router.Any("/api/proxy/*path", r.Handler())
}

func classifyFailure(err error) (status int, reason, message string) {
	switch {
	case errors.Is(err, errNotJSON):
		return http.StatusBadGateway, "invalid_body", "Backend returned an invalid response"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "timeout", "Backend did not respond in time"
	default:
		return http.StatusBadGateway, "unreachable", "Failed to proxy request"
	}
}

// normalizeJSONBody re-encodes a JSON request body in place. Any other body,
// multipart uploads included, is left for the proxy to stream untouched.
func normalizeJSONBody(req *http.Request) error {
	if req.Body == nil || req.Body == http.NoBody {
		return nil
	}
	mediaType, _, err := mime.ParseMediaType(req.Header.Get("Content-Type"))
	if err != nil || mediaType != "application/json" {
		return nil
	}

	raw, err := io.ReadAll(req.Body)
	req.Body.Close()
	if err != nil {
		return fmt.Errorf("failed to read request body: %w", err)
	}

	var buf bytes.Buffer
	if len(raw) > 0 {
		if err := json.Compact(&buf, raw); err != nil {
			return err
		}
	}

	req.Body = io.NopCloser(&buf)
	req.ContentLength = int64(buf.Len())
	req.Header.Set("Content-Length", strconv.Itoa(buf.Len()))
	req.Header.Set("Content-Type", "application/json")
	return nil
}

// reencodeJSON replaces the backend body with its compact JSON encoding. The
// status code is left as the backend sent it.
func reencodeJSON(resp *http.Response) error {
	if resp.StatusCode == http.StatusNoContent || resp.StatusCode == http.StatusNotModified ||
		resp.Request != nil && resp.Request.Method == http.MethodHead {
		return nil
	}

	raw, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return fmt.Errorf("failed to read backend response: %w", err)
	}

	var buf bytes.Buffer
	if len(bytes.TrimSpace(raw)) == 0 {
		buf.WriteString("{}")
	} else if err := json.Compact(&buf, raw); err != nil {
		return fmt.Errorf("%w: %v", errNotJSON, err)
	}

	resp.Body = io.NopCloser(&buf)
	resp.ContentLength = int64(buf.Len())
	resp.Header.Set("Content-Length", strconv.Itoa(buf.Len()))
	resp.Header.Set("Content-Type", "application/json; charset=utf-8")
	resp.Header.Del("Content-Encoding")
	return nil
}
