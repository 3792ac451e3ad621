package restproxy

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	jsoniter "github.com/json-iterator/go"

	"vane/internal/logging"
	"vane/internal/telemetry"
)

var json = jsoniter.ConfigFastest

// Failure classes. Every error returned by the client wraps one of these
// (or the caller's context error), so callers can tell a broken transport
// from a misbehaving proxy with errors.Is.
var (
	ErrConnect  = errors.New("rest proxy unreachable")
	ErrProtocol = errors.New("rest proxy protocol error")
)

const contentType = "application/vnd.kafka.json.v2+json"

// Record is one message as returned by the proxy's records endpoint. Value
// stays an untyped map; interpreting the payload is the caller's concern.
type Record struct {
	Topic     string         `json:"topic"`
	Partition int32          `json:"partition"`
	Offset    int64          `json:"offset"`
	Key       any            `json:"key"`
	Value     map[string]any `json:"value"`
}

type createResponse struct {
	InstanceID string `json:"instance_id"`
	BaseURI    string `json:"base_uri"`
}

// session addresses one consumer instance on the proxy. It lives for a
// single Consume call and is never shared or reused.
type session struct {
	group   string
	name    string
	baseURI string
}

type Client struct {
	cfg  Config
	http *http.Client
}

func NewClient(cfg Config) *Client {
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.RequestTimeout},
	}
}

// Consume runs one full consumer cycle against the proxy: create an
// instance under group, subscribe it to topic, poll for records until a
// non-empty batch arrives or PollAttempts run out, and delete the
// instance. The instance is deleted on every path once it exists, caller
// cancellation included. A (nil, nil) return means the session worked but
// no records showed up.
func (c *Client) Consume(ctx context.Context, topic, group, consumer string) ([]Record, error) {
	sess, err := c.createConsumer(ctx, group, consumer)
	if err != nil {
		telemetry.SessionFailures.WithLabelValues("create").Inc()
		return nil, err
	}
	defer c.deleteConsumer(ctx, sess)

	if err := c.subscribe(ctx, sess, topic); err != nil {
		telemetry.SessionFailures.WithLabelValues("subscribe").Inc()
		return nil, err
	}

	recs, err := c.pollBatch(ctx, sess, topic)
	if err != nil {
		telemetry.SessionFailures.WithLabelValues("poll").Inc()
		return nil, err
	}
	return recs, nil
}

/* ──────────────────────────── session stages ─────────────────────────── */

func (c *Client) createConsumer(ctx context.Context, group, name string) (*session, error) {
	url := fmt.Sprintf("%s/consumers/%s", c.cfg.BaseURL, group)
	body := map[string]any{
		"name":              name,
		"format":            "json",
		"auto.offset.reset": "earliest",
	}
	res, data, err := c.do(ctx, "create", http.MethodPost, url, body)
	if err != nil {
		return nil, err
	}
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("create consumer %s/%s: %w: status %d", group, name, ErrProtocol, res.StatusCode)
	}
	var cr createResponse
	if err := json.Unmarshal(data, &cr); err != nil || cr.BaseURI == "" {
		// No usable base_uri means there is nothing we can address, not
		// even for cleanup.
		return nil, fmt.Errorf("create consumer %s/%s: %w: no base_uri in response", group, name, ErrProtocol)
	}
	telemetry.SessionsCreated.Inc()
	logging.L().Debug("restproxy: consumer created", "group", group, "name", name)
	return &session{group: group, name: name, baseURI: cr.BaseURI}, nil
}

func (c *Client) subscribe(ctx context.Context, sess *session, topic string) error {
	body := map[string]any{"topics": []string{topic}}
	res, _, err := c.do(ctx, "subscribe", http.MethodPost, sess.baseURI+"/subscription", body)
	if err != nil {
		return err
	}
	if res.StatusCode != http.StatusNoContent {
		return fmt.Errorf("subscribe %s: %w: status %d", topic, ErrProtocol, res.StatusCode)
	}
	return nil
}

// pollBatch fetches records until a non-empty batch arrives. Empty
// responses and non-OK statuses are retried after PollInterval; transport
// failures and undecodable bodies abort the cycle. Running out of
// attempts is not an error.
func (c *Client) pollBatch(ctx context.Context, sess *session, topic string) ([]Record, error) {
	for attempt := 1; attempt <= c.cfg.PollAttempts; attempt++ {
		telemetry.PollAttempts.Inc()
		recs, err := c.pollOnce(ctx, sess)
		if err != nil {
			return nil, err
		}
		if len(recs) > 0 {
			telemetry.RecordsFetched.WithLabelValues(topic).Add(float64(len(recs)))
			return recs, nil
		}
		if attempt == c.cfg.PollAttempts {
			break
		}
		if err := sleep(ctx, c.cfg.PollInterval); err != nil {
			return nil, fmt.Errorf("poll wait: %w", err)
		}
	}
	logging.L().Debug("restproxy: no records", "topic", topic, "attempts", c.cfg.PollAttempts)
	return nil, nil
}

func (c *Client) pollOnce(ctx context.Context, sess *session) ([]Record, error) {
	res, data, err := c.do(ctx, "poll", http.MethodGet, sess.baseURI+"/records", nil)
	if err != nil {
		return nil, err
	}
	if res.StatusCode != http.StatusOK {
		logging.L().Debug("restproxy: poll rejected", "status", res.StatusCode)
		return nil, nil
	}
	var recs []Record
	if err := json.Unmarshal(data, &recs); err != nil {
		return nil, fmt.Errorf("poll: %w: undecodable record batch", ErrProtocol)
	}
	return recs, nil
}

// deleteConsumer releases the proxy-side instance. Best effort: failures
// are logged, never returned. The call runs on a context detached from
// the caller's so cancellation cannot leak a remote consumer.
func (c *Client) deleteConsumer(ctx context.Context, sess *session) {
	dctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.cfg.RequestTimeout)
	defer cancel()

	res, _, err := c.do(dctx, "delete", http.MethodDelete, sess.baseURI, nil)
	if err != nil {
		logging.L().Warn("restproxy: consumer delete failed", "group", sess.group, "name", sess.name, "err", err)
		return
	}
	if res.StatusCode >= http.StatusMultipleChoices {
		logging.L().Warn("restproxy: consumer delete rejected", "group", sess.group, "name", sess.name, "status", res.StatusCode)
		return
	}
	telemetry.SessionsDeleted.Inc()
}

/* ──────────────────────────── http plumbing ──────────────────────────── */

// do issues one proxy request and returns the response with its fully
// read body. The response body is already closed.
func (c *Client) do(ctx context.Context, op, method, url string, body any) (*http.Response, []byte, error) {
	var rd io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: encode body: %w", op, err)
		}
		rd = bytes.NewReader(buf)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, rd)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", contentType)

	start := time.Now()
	res, err := c.http.Do(req)
	telemetry.RequestSeconds.WithLabelValues(op).Observe(time.Since(start).Seconds())
	if err != nil {
		// Caller cancellation is not a proxy failure.
		if ctx.Err() != nil {
			return nil, nil, fmt.Errorf("%s: %w", op, ctx.Err())
		}
		return nil, nil, fmt.Errorf("%s %s: %w: %v", op, url, ErrConnect, err)
	}
	defer res.Body.Close()

	data, err := io.ReadAll(res.Body)
	if err != nil {
		if ctx.Err() != nil {
			return nil, nil, fmt.Errorf("%s: %w", op, ctx.Err())
		}
		return nil, nil, fmt.Errorf("%s: read body: %w", op, ErrConnect)
	}
	return res, data, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
