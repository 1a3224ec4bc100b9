// Package recaptcha verifies reCAPTCHA v3 tokens submitted with forms.
package recaptcha

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

// DefaultEndpoint is Google's token verification endpoint.
const DefaultEndpoint = "https://www.google.com/recaptcha/api/siteverify"

var (
	// ErrDisabled is returned when no secret key is configured.
	ErrDisabled = errors.New("recaptcha: not configured")

	// ErrRejected is returned when the token is invalid or scores below the
	// configured minimum.
	ErrRejected = errors.New("recaptcha: verification rejected")
)

// Settings holds the site's reCAPTCHA keys and the score a submission must
// reach to be accepted.
type Settings struct {
	SiteKey      string  `split_words:"true"`
	SecretKey    string  `split_words:"true"`
	MinimumScore float64 `split_words:"true" default:"0.5"`
}

// Enabled reports whether tokens can be verified.
func (s Settings) Enabled() bool {
	return s.SiteKey != "" && s.SecretKey != ""
}

// SetDefaults fills in a zero MinimumScore.
func (s *Settings) SetDefaults() {
	if s.MinimumScore == 0 {
		s.MinimumScore = 0.5
	}
}

// Result is the decoded siteverify response.
type Result struct {
	Success     bool      `json:"success"`
	Score       float64   `json:"score"`
	Action      string    `json:"action"`
	ChallengeTS time.Time `json:"challenge_ts"`
	Hostname    string    `json:"hostname"`
	ErrorCodes  []string  `json:"error-codes"`
}

// Verifier checks tokens against the siteverify endpoint.
type Verifier struct {
	settings Settings
	endpoint string
	client   *retryablehttp.Client
}

// VerifierOption configures a Verifier.
type VerifierOption func(*Verifier)

// WithEndpoint points the verifier at a different siteverify URL.
func WithEndpoint(u string) VerifierOption {
	return func(v *Verifier) {
		v.endpoint = u
	}
}

// NewVerifier returns a Verifier for settings. Transient failures of the
// endpoint are retried twice.
func NewVerifier(settings Settings, opts ...VerifierOption) *Verifier {
	settings.SetDefaults()
	c := retryablehttp.NewClient()
	c.RetryMax = 2
	c.RetryWaitMin = 100 * time.Millisecond
	c.RetryWaitMax = time.Second
	c.HTTPClient.Timeout = 5 * time.Second
	c.Logger = nil
	v := &Verifier{settings: settings, endpoint: DefaultEndpoint, client: c}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// SiteKey is the public key embedded in forms.
func (v *Verifier) SiteKey() string {
	return v.settings.SiteKey
}

// Enabled reports whether the verifier has keys to work with.
func (v *Verifier) Enabled() bool {
	return v.settings.Enabled()
}

// Verify checks token and returns the decoded result. A token that fails or
// scores under the minimum returns the result together with ErrRejected.
func (v *Verifier) Verify(ctx context.Context, token, remoteIP string) (Result, error) {
	if !v.Enabled() {
		return Result{}, ErrDisabled
	}
	if strings.TrimSpace(token) == "" {
		return Result{}, fmt.Errorf("%w: missing token", ErrRejected)
	}
	form := url.Values{
		"secret":   {v.settings.SecretKey},
		"response": {token},
	}
	if remoteIP != "" {
		form.Set("remoteip", remoteIP)
	}
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, v.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return Result{}, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := v.client.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("recaptcha: verify: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Result{}, fmt.Errorf("recaptcha: verify: unexpected status %d", resp.StatusCode)
	}
	var res Result
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return Result{}, fmt.Errorf("recaptcha: decode response: %w", err)
	}
	if !res.Success {
		return res, fmt.Errorf("%w: %s", ErrRejected, strings.Join(res.ErrorCodes, ","))
	}
	if res.Score < v.settings.MinimumScore {
		return res, fmt.Errorf("%w: score %.2f below %.2f", ErrRejected, res.Score, v.settings.MinimumScore)
	}
	return res, nil
}
