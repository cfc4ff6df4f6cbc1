// Package httppredictor provides a predictor.Client backed by the HTTP
// scoring service (POST /predict).
package httppredictor

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"phishguard/pkg/predictor"
	"phishguard/pkg/serrors"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"golang.org/x/time/rate"
)

// maxBodyBytes bounds how much of a response is read.
const maxBodyBytes = 1 << 20

// Options configure the client.
type Options struct {
	// BaseURL is the scoring service root, e.g. "http://127.0.0.1:5000".
	BaseURL string
	// Limiter, when set, paces requests across all callers of this client.
	Limiter *rate.Limiter
}

// Client talks to the scoring service. It is safe for concurrent use.
type Client struct {
	httpClient *http.Client // httpClient performs HTTP requests; its Timeout bounds each call
	endpoint   string       // endpoint is the absolute /predict URL
	limiter    *rate.Limiter
}

// New constructs a Client.
func New(httpClient *http.Client, opts Options) (*Client, error) {
	endpoint, err := url.JoinPath(opts.BaseURL, "predict")
	if err != nil {
		return nil, fmt.Errorf("could not build predict endpoint: %w", err)
	}
	u, err := url.Parse(endpoint)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid predictor base URL %q", opts.BaseURL)
	}

	return &Client{
		httpClient: httpClient,
		endpoint:   endpoint,
		limiter:    opts.Limiter,
	}, nil
}

// Predict scores URL with one request and no retries.
//
// Failures are reported by kind:
//   - serrors.ErrNetworkFailure: the request could not be completed (including timeouts)
//   - serrors.ErrBadResponse: the service answered with a non-2xx status
//   - serrors.ErrMalformedPayload: the body is not JSON or lacks a boolean "phishing"
func (c *Client) Predict(ctx context.Context, URL string) (predictor.Prediction, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return predictor.Prediction{}, serrors.Wrap(serrors.ErrNetworkFailure, err, "could not wait for rate limit")
		}
	}

	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("url")
	e.Str(URL)
	e.ObjEnd()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(e.Bytes()))
	if err != nil {
		return predictor.Prediction{}, fmt.Errorf("could not create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return predictor.Prediction{}, serrors.Wrap(serrors.ErrNetworkFailure, err, "could not send request")
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return predictor.Prediction{}, serrors.Wrap(serrors.ErrNetworkFailure, err, "could not read response body")
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return predictor.Prediction{}, serrors.With(serrors.ErrBadResponse,
			"prediction failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}

	p, err := DecodePrediction(b)
	if err != nil {
		return predictor.Prediction{}, serrors.Wrap(serrors.ErrMalformedPayload, err, "could not decode response")
	}

	return p, nil
}

// DecodePrediction parses a {"phishing": bool, "confidence": number} body.
// "phishing" is required and must be a boolean. "confidence" is coerced:
// numbers and numeric strings are used as-is, booleans become 1 or 0, and
// anything else (absent, null, non-numeric) becomes 0.
func DecodePrediction(b []byte) (predictor.Prediction, error) {
	var (
		p       predictor.Prediction
		hasFlag bool
	)

	d := jx.DecodeBytes(b)
	if d.Next() != jx.Object {
		return p, errors.New("response is not a JSON object")
	}
	if err := d.ObjBytes(func(d *jx.Decoder, key []byte) error {
		switch string(key) {
		case "phishing":
			if d.Next() != jx.Bool {
				return errors.New(`"phishing" is not a boolean`)
			}
			v, err := d.Bool()
			if err != nil {
				return errors.Wrap(err, `decode "phishing"`)
			}
			p.Phishing = v
			hasFlag = true
		case "confidence":
			v, err := decodeConfidence(d)
			if err != nil {
				return errors.Wrap(err, `decode "confidence"`)
			}
			p.Confidence = v
		default:
			return d.Skip()
		}

		return nil
	}); err != nil {
		return predictor.Prediction{}, errors.Wrap(err, "decode prediction")
	}
	if !hasFlag {
		return predictor.Prediction{}, errors.New(`"phishing" is missing`)
	}

	return p, nil
}

func decodeConfidence(d *jx.Decoder) (float64, error) {
	switch d.Next() {
	case jx.Number:
		return d.Float64()
	case jx.String:
		s, err := d.Str()
		if err != nil {
			return 0, err
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, nil
		}

		return v, nil
	case jx.Bool:
		v, err := d.Bool()
		if err != nil || !v {
			return 0, err
		}

		return 1, nil
	default:
		return 0, d.Skip()
	}
}

// Ensure Client conforms to the predictor.Client interface at compile time.
var _ predictor.Client = (*Client)(nil)
