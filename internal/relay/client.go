package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
)

// GeneratePath is the route of the relay endpoint.
const GeneratePath = "/api/generate-image"

type ClientOptions struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
	Logger     zerolog.Logger
}

// Client is the relay action: it forwards a prompt to the relay endpoint and
// folds every failure into a Result.
type Client struct {
	httpClient *http.Client
	endpoint   string
	apiKey     string
	logger     zerolog.Logger
}

func NewClient(opts ClientOptions) *Client {
	client := opts.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	return &Client{
		httpClient: client,
		endpoint:   strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/") + GeneratePath,
		apiKey:     opts.APIKey,
		logger:     opts.Logger,
	}
}

// HeaderForwardedFor carries the end user's address on calls made by the action.
const HeaderForwardedFor = "X-Forwarded-For"

type callerIPKey struct{}

// WithCallerIP records the address of the user the action runs for. The
// client forwards it so the endpoint rate-limits that user, not this server.
func WithCallerIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, callerIPKey{}, ip)
}

// CallerIP returns the address stored by WithCallerIP.
func CallerIP(ctx context.Context) string {
	ip, _ := ctx.Value(callerIPKey{}).(string)
	return ip
}

var errInvalidResponse = errors.New("invalid response")

// Generate never returns an error: failures come back as Failed results.
func (c *Client) Generate(ctx context.Context, prompt string) Result {
	res, err := c.generate(ctx, prompt)
	if err != nil {
		c.logger.Error().Err(err).Str("kind", KindOf(err).String()).Msg("error generating image")
		return Failed(causeMessage(err))
	}
	return res
}

// causeMessage strips the relay classification so callers see the underlying
// reason, e.g. "Failed to generate image: Unauthorized".
func causeMessage(err error) string {
	var relayErr *Error
	if errors.As(err, &relayErr) && relayErr.Err != nil {
		return relayErr.Err.Error()
	}
	return err.Error()
}

func (c *Client) generate(ctx context.Context, prompt string) (Result, error) {
	body, err := json.Marshal(GenerateRequest{Text: prompt})
	if err != nil {
		return Result{}, newError(KindParse, "encode", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return Result{}, newError(KindTransport, "request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(HeaderClientAPIKey, c.apiKey)
	if ip := CallerIP(ctx); ip != "" {
		req.Header.Set(HeaderForwardedFor, ip)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Result{}, newError(KindTransport, "request", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		kind := KindUpstream
		if resp.StatusCode == http.StatusUnauthorized {
			kind = KindUnauthorized
		}
		return Result{}, &Error{Kind: kind, Op: "request", Err: statusError(resp.StatusCode)}
	}

	var out Result
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Result{}, newError(KindParse, "decode", err)
	}
	// Exactly one of imageUrl and error must be set.
	switch {
	case out.Success && out.ImageURL != "":
		return Succeeded(out.ImageURL), nil
	case !out.Success && out.Error != "":
		return Failed(out.Error), nil
	default:
		return Result{}, newError(KindParse, "decode", errInvalidResponse)
	}
}

// statusError keeps the message callers see close to the HTTP status text.
type statusError int

func (s statusError) Error() string {
	return fmt.Sprintf("Failed to generate image: %s", http.StatusText(int(s)))
}
