package swapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const tracerName = "github.com/s0up4200/holocron/swapi"

// Client represents a SWAPI client bound to one base URL
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	tracer     trace.Tracer
	logger     zerolog.Logger
}

// NewClient creates a new SWAPI client. The base URL is the API root,
// e.g. https://swapi.dev/api, and every reference URL is resolved against it.
func NewClient(baseURL string, logger zerolog.Logger, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("%w: base URL is required", ErrInvalidConfig)
	}
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		return nil, fmt.Errorf("%w: base URL must be http(s): %s", ErrInvalidConfig, baseURL)
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	httpClient := o.httpClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: o.timeout}
	}

	var tracer trace.Tracer = noop.NewTracerProvider().Tracer(tracerName)
	if o.tracing {
		instrumented := *httpClient
		base := instrumented.Transport
		if base == nil {
			base = http.DefaultTransport
		}
		instrumented.Transport = otelhttp.NewTransport(base,
			otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
				return fmt.Sprintf("HTTP %s %s", r.Method, r.URL.Path)
			}),
		)
		httpClient = &instrumented
		tracer = otel.Tracer(tracerName)
	}

	return &Client{
		baseURL:    baseURL,
		userAgent:  o.userAgent,
		httpClient: httpClient,
		tracer:     tracer,
		logger:     logger,
	}, nil
}

// BaseURL returns the configured API root
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Get fetches endpoint (a path relative to the base URL, or an absolute URL)
// and decodes the JSON body into v.
func (c *Client) Get(ctx context.Context, endpoint string, v any) error {
	requestURL := c.resolve(endpoint)

	ctx, span := c.tracer.Start(ctx, "swapi.Get",
		trace.WithAttributes(attribute.String("swapi.endpoint", endpoint)))
	defer span.End()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", requestID)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "request failed")
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	c.logger.Debug().
		Str("url", requestURL).
		Str("request_id", requestID).
		Int("status", resp.StatusCode).
		Dur("took", time.Since(start)).
		Msg("SWAPI request")

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, resp.Body)
		span.SetStatus(codes.Error, resp.Status)
		return &FetchError{
			Status:     resp.StatusCode,
			StatusText: statusText(resp),
			URL:        requestURL,
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to parse response: %w", err)
	}

	return nil
}

// TestConnection tests the connection to SWAPI
func (c *Client) TestConnection(ctx context.Context) error {
	var root map[string]string
	if err := c.Get(ctx, "/", &root); err != nil {
		return err
	}

	c.logger.Debug().Int("resources", len(root)).Msg("Successfully connected to SWAPI")
	return nil
}

// Planets fetches one page of planets, optionally filtered by name
func (c *Client) Planets(ctx context.Context, search string, page int) (*Page[Planet], error) {
	return FetchCollection[Planet](ctx, c, ResourcePlanets, search, page)
}

// Planet fetches a single planet by its identifier
func (c *Client) Planet(ctx context.Context, id string) (Planet, error) {
	if id == "" {
		return Planet{}, ErrEmptyID
	}
	return FetchOne[Planet](ctx, c, ResourcePlanets.Path()+"/"+id+"/")
}

// EndpointFor converts an absolute reference URL into a path relative to the
// base URL. References pointing elsewhere are returned unchanged and will be
// requested as absolute URLs.
func (c *Client) EndpointFor(referenceURL string) string {
	rest, ok := strings.CutPrefix(referenceURL, c.baseURL)
	if !ok {
		return referenceURL
	}
	// the prefix must end on a path boundary: /api is not a prefix of /apiary
	if rest != "" && !strings.HasPrefix(rest, "/") && !strings.HasPrefix(rest, "?") {
		return referenceURL
	}
	return rest
}

// resolve turns an endpoint into a full request URL
func (c *Client) resolve(endpoint string) string {
	if strings.HasPrefix(endpoint, "http://") || strings.HasPrefix(endpoint, "https://") {
		return endpoint
	}
	if !strings.HasPrefix(endpoint, "/") {
		endpoint = "/" + endpoint
	}
	return c.baseURL + endpoint
}

func statusText(resp *http.Response) string {
	if text := http.StatusText(resp.StatusCode); text != "" {
		return text
	}
	return resp.Status
}
