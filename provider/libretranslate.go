package provider

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/ZaguanLabs/autotranslate"
	"github.com/go-resty/resty/v2"
	"github.com/goccy/go-json"
)

// Defaults of the LibreTranslate client.
const (
	DefaultLibreTranslateURL = "http://localhost:5000"
	DefaultConnectTimeout    = 5 * time.Second
	DefaultReadTimeout       = 10 * time.Second
)

// LibreTranslateConfig holds configuration for the LibreTranslate backend.
type LibreTranslateConfig struct {
	BaseURL        string        // Default: http://localhost:5000
	APIKey         string        // Optional, sent as api_key
	ConnectTimeout time.Duration // Dial timeout (default: 5s)
	ReadTimeout    time.Duration // Bound on waiting for headers, then on reading the body (default: 10s)
}

// LibreTranslateProvider calls a LibreTranslate-compatible HTTP API.
type LibreTranslateProvider struct {
	http   *resty.Client
	apiKey string
}

type libreRequest struct {
	Q      string `json:"q"`
	Source string `json:"source"`
	Target string `json:"target"`
	Format string `json:"format"`
	APIKey string `json:"api_key,omitempty"`
}

type libreResponse struct {
	TranslatedText *string `json:"translatedText"`
	Error          string  `json:"error,omitempty"`
}

// NewLibreTranslateProvider creates a LibreTranslate backend.
func NewLibreTranslateProvider(cfg LibreTranslateConfig) *LibreTranslateProvider {
	connect := cfg.ConnectTimeout
	if connect <= 0 {
		connect = DefaultConnectTimeout
	}
	read := cfg.ReadTimeout
	if read <= 0 {
		read = DefaultReadTimeout
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultLibreTranslateURL
	}

	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: connect, KeepAlive: 30 * time.Second}).DialContext,
		ResponseHeaderTimeout: read,
		MaxIdleConnsPerHost:   16,
		IdleConnTimeout:       90 * time.Second,
	}

	client := resty.New().
		SetTransport(bodyDeadline{next: transport, read: read}).
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetHeader("User-Agent", autotranslate.UserAgent()).
		SetJSONMarshaler(json.Marshal).
		SetJSONUnmarshaler(json.Unmarshal)

	return &LibreTranslateProvider{http: client, apiKey: cfg.APIKey}
}

// Translate sends one text to POST /translate.
func (p *LibreTranslateProvider) Translate(ctx context.Context, req TranslateRequest) (string, error) {
	format := req.Format
	if format == "" {
		format = "text"
	}

	var result libreResponse
	resp, err := p.http.R().
		SetContext(ctx).
		SetBody(libreRequest{
			Q:      req.Text,
			Source: req.SourceLang,
			Target: req.TargetLang,
			Format: format,
			APIKey: p.apiKey,
		}).
		SetResult(&result).
		SetError(&result).
		ForceContentType("application/json").
		Post("/translate")
	if err != nil {
		return "", &autotranslate.ProviderError{
			Message:   "LibreTranslate request failed",
			Cause:     err,
			Retryable: isTimeout(err),
		}
	}

	if resp.IsError() {
		msg := "LibreTranslate returned " + resp.Status()
		if result.Error != "" {
			msg += ": " + result.Error
		}
		return "", &autotranslate.ProviderError{
			Message:    msg,
			StatusCode: resp.StatusCode(),
			Retryable:  resp.StatusCode() == http.StatusTooManyRequests || resp.StatusCode() >= 500,
		}
	}

	if result.TranslatedText == nil {
		return "", &autotranslate.ProviderError{
			Message:    "response has no translatedText",
			StatusCode: resp.StatusCode(),
		}
	}

	return *result.TranslatedText, nil
}

// isTimeout reports whether err is a network timeout.
func isTimeout(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}

// bodyDeadline gives the response body the same read budget the transport
// gives the headers. The request is cancelled when the body is not fully
// read in time.
type bodyDeadline struct {
	next http.RoundTripper
	read time.Duration
}

func (t bodyDeadline) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx, cancel := context.WithCancel(req.Context())
	resp, err := t.next.RoundTrip(req.WithContext(ctx))
	if err != nil {
		cancel()
		return nil, err
	}

	body := &timedBody{ReadCloser: resp.Body, cancel: cancel}
	body.timer = time.AfterFunc(t.read, func() {
		body.expired.Store(true)
		cancel()
	})
	resp.Body = body
	return resp, nil
}

type timedBody struct {
	io.ReadCloser
	cancel  context.CancelFunc
	timer   *time.Timer
	expired atomic.Bool
}

func (b *timedBody) Read(p []byte) (int, error) {
	n, err := b.ReadCloser.Read(p)
	if err != nil && err != io.EOF && b.expired.Load() {
		return n, errBodyTimeout
	}
	return n, err
}

func (b *timedBody) Close() error {
	b.timer.Stop()
	defer b.cancel()
	return b.ReadCloser.Close()
}

// errBodyTimeout is a net.Error so callers classify it as a timeout.
var errBodyTimeout net.Error = bodyTimeoutError{}

type bodyTimeoutError struct{}

func (bodyTimeoutError) Error() string   { return "response body read timeout" }
func (bodyTimeoutError) Timeout() bool   { return true }
func (bodyTimeoutError) Temporary() bool { return true }

var _ Backend = (*LibreTranslateProvider)(nil)
