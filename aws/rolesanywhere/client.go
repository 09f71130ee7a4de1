package rolesanywhere

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/go-http-utils/headers"
	"github.com/guaranteeops/reconbot/aws/credentials"
	"github.com/guaranteeops/reconbot/constants"
	"github.com/guaranteeops/reconbot/sign"
)

const DefaultDurationSeconds = 3600

// CreateSessionInput identifies the trust configuration under which the
// certificate is exchanged for temporary credentials.
type CreateSessionInput struct {
	TrustAnchorArn  string
	ProfileArn      string
	RoleArn         string
	DurationSeconds int
}

//Field order matters for nobody but it mirrors the API documentation
type createSessionPayload struct {
	DurationSeconds int    `json:"durationSeconds"`
	RoleArn         string `json:"roleArn"`
	TrustAnchorArn  string `json:"trustAnchorArn"`
	ProfileArn      string `json:"profileArn"`
}

type createSessionResponse struct {
	CredentialSet []struct {
		Credentials credentials.AWSCredentials `json:"credentials"`
	} `json:"credentialSet"`
}

// Client exchanges a client certificate for temporary credentials against
// the regional credential exchange endpoint. It keeps no state between
// calls; retrying a failed exchange is up to the caller.
type Client struct {
	httpClient *http.Client
	host       string
	endpoint   string
	region     string

	//Overridable for deterministic tests
	now func() time.Time
}

type ClientOption func(*Client)

// WithEndpoint overrides the endpoint base URL, mostly for tests. The host
// part of the URL is what ends up in the signed host header, so an endpoint
// it cannot be taken from is a configuration error.
func WithEndpoint(endpoint string) ClientOption {
	return func(c *Client) {
		u, err := url.Parse(endpoint)
		if err != nil || u.Host == "" {
			panic(fmt.Sprintf("invalid exchange endpoint %q: %v", endpoint, err))
		}
		c.endpoint = endpoint
		c.host = u.Host
	}
}

func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = httpClient }
}

func WithClock(now func() time.Time) ClientOption {
	return func(c *Client) { c.now = now }
}

func NewClient(region string, opts ...ClientOption) *Client {
	host := fmt.Sprintf("rolesanywhere.%s.amazonaws.com", region)
	c := &Client{
		httpClient: http.DefaultClient,
		host:       host,
		endpoint:   "https://" + host,
		region:     region,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CreateSession signs and sends the exchange request and returns the first
// credential set of the response.
func (c *Client) CreateSession(ctx context.Context, identity *SigningIdentity, input CreateSessionInput) (*credentials.AWSCredentials, error) {
	if input.DurationSeconds <= 0 {
		input.DurationSeconds = DefaultDurationSeconds
	}
	payload, err := json.Marshal(createSessionPayload{
		DurationSeconds: input.DurationSeconds,
		RoleArn:         input.RoleArn,
		TrustAnchorArn:  input.TrustAnchorArn,
		ProfileArn:      input.ProfileArn,
	})
	if err != nil {
		return nil, err
	}

	key := identity.Key()
	signingTime := c.now().UTC()
	signingRequest := sign.SigningRequest{
		Method: http.MethodPost,
		Host:   c.host,
		Path:   constants.SessionsPath,
		Headers: map[string]string{
			"content-type": "application/json",
			"host":         c.host,
			"x-amz-date":   signingTime.Format(constants.TimeFormat),
			"x-amz-x509":   key.CertificateDerB64(),
		},
		Payload:   payload,
		Timestamp: signingTime,
	}
	if chain := key.ChainDerB64(); chain != "" {
		signingRequest.Headers["x-amz-x509-chain"] = chain
	}

	authorization, err := sign.BuildAuthorization(signingRequest, key, c.region, constants.RolesAnywhereService)
	if err != nil {
		return nil, fmt.Errorf("could not sign exchange request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+constants.SessionsPath, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set(headers.ContentType, "application/json")
	req.Header.Set(headers.Authorization, authorization.Authorization)
	req.Header.Set(constants.AmzDateKey, authorization.AmzDate)
	req.Header.Set(constants.AmzX509Key, authorization.AmzX509)
	if authorization.AmzX509Chain != "" {
		req.Header.Set(constants.AmzX509ChainKey, authorization.AmzX509Chain)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("credential exchange failed: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("could not read exchange response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("credential exchange got HTTP %d: %s", resp.StatusCode, string(body))
	}

	var sessionResponse createSessionResponse
	if err := json.Unmarshal(body, &sessionResponse); err != nil {
		return nil, fmt.Errorf("could not parse exchange response: %w", err)
	}
	if len(sessionResponse.CredentialSet) == 0 {
		return nil, fmt.Errorf("exchange response contained no credential set")
	}
	creds := sessionResponse.CredentialSet[0].Credentials
	if err := creds.IsValid(); err != nil {
		return nil, fmt.Errorf("exchange returned unusable credentials: %w", err)
	}
	slog.DebugContext(ctx, "Obtained temporary credentials", "expiration", creds.Expiration)
	return &creds, nil
}
