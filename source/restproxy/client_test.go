package restproxy

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

// fakeProxy scripts a Kafka REST proxy and counts calls per endpoint.
type fakeProxy struct {
	created    int32
	subscribed int32
	polls      int32
	deletes    int32

	createStatus int
	createBody   string // overrides the generated base_uri payload
	subStatus    int
	pollStatus   []int    // per attempt, defaults to 200
	pollBodies   []string // per attempt, defaults to []
	onPoll       func(n int32)

	srv *httptest.Server
}

func newFakeProxy(t *testing.T) *fakeProxy {
	f := &fakeProxy{createStatus: http.StatusOK, subStatus: http.StatusNoContent}
	f.srv = httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeProxy) handle(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/subscription"):
		atomic.AddInt32(&f.subscribed, 1)
		w.WriteHeader(f.subStatus)

	case r.Method == http.MethodGet && strings.HasSuffix(r.URL.Path, "/records"):
		n := atomic.AddInt32(&f.polls, 1)
		if f.onPoll != nil {
			f.onPoll(n)
		}
		status, body := http.StatusOK, "[]"
		if int(n) <= len(f.pollStatus) {
			status = f.pollStatus[n-1]
		}
		if int(n) <= len(f.pollBodies) {
			body = f.pollBodies[n-1]
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))

	case r.Method == http.MethodDelete:
		atomic.AddInt32(&f.deletes, 1)
		w.WriteHeader(http.StatusNoContent)

	case r.Method == http.MethodPost:
		atomic.AddInt32(&f.created, 1)
		if f.createStatus != http.StatusOK {
			w.WriteHeader(f.createStatus)
			return
		}
		body := f.createBody
		if body == "" {
			base := f.srv.URL + r.URL.Path + "/instances/inst-1"
			body = fmt.Sprintf(`{"instance_id":"inst-1","base_uri":%q}`, base)
		}
		_, _ = w.Write([]byte(body))

	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func testConfig(base string) Config {
	return Config{
		BaseURL:        base,
		RequestTimeout: 2 * time.Second,
		PollAttempts:   3,
		PollInterval:   5 * time.Millisecond,
	}
}

func TestClient_Consume_FirstNonEmptyBatchWins(t *testing.T) {
	f := newFakeProxy(t)
	f.pollBodies = []string{
		"[]",
		`[{"topic":"weather","partition":0,"offset":7,"value":{"city_id":"city_1"}},
		  {"topic":"weather","partition":0,"offset":8,"value":{"city_id":"city_2"}}]`,
	}

	c := NewClient(testConfig(f.srv.URL))
	recs, err := c.Consume(context.Background(), "weather", "g1", "n1")
	if err != nil {
		t.Fatalf("Consume: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("expected 2 records, got %d", len(recs))
	}
	if recs[0].Offset != 7 || recs[0].Value["city_id"] != "city_1" {
		t.Fatalf("unexpected first record: %+v", recs[0])
	}
	if f.polls != 2 {
		t.Fatalf("expected polling to stop after first non-empty batch, got %d polls", f.polls)
	}
	if f.deletes != 1 {
		t.Fatalf("expected exactly 1 delete, got %d", f.deletes)
	}
}

func TestClient_Consume_CreateRejected(t *testing.T) {
	f := newFakeProxy(t)
	f.createStatus = http.StatusInternalServerError

	c := NewClient(testConfig(f.srv.URL))
	_, err := c.Consume(context.Background(), "weather", "g1", "n1")
	if !errors.Is(err, ErrProtocol) {
		t.Fatalf("expected ErrProtocol, got %v", err)
	}
	if f.subscribed != 0 || f.polls != 0 || f.deletes != 0 {
		t.Fatalf("expected no follow-up calls after failed create, got sub=%d polls=%d deletes=%d",
			f.subscribed, f.polls, f.deletes)
	}
}

func TestClient_Consume_MissingBaseURI(t *testing.T) {
	f := newFakeProxy(t)
	f.createBody = `{"instance_id":"inst-1"}`

	c := NewClient(testConfig(f.srv.URL))
	_, err := c.Consume(context.Background(), "weather", "g1", "n1")
	if !errors.Is(err, ErrProtocol) {
		t.Fatalf("expected ErrProtocol, got %v", err)
	}
	if f.deletes != 0 {
		t.Fatalf("expected no delete without a base_uri, got %d", f.deletes)
	}
}

func TestClient_Consume_SubscribeRejected(t *testing.T) {
	f := newFakeProxy(t)
	f.subStatus = http.StatusConflict

	c := NewClient(testConfig(f.srv.URL))
	_, err := c.Consume(context.Background(), "weather", "g1", "n1")
	if !errors.Is(err, ErrProtocol) {
		t.Fatalf("expected ErrProtocol, got %v", err)
	}
	if f.polls != 0 {
		t.Fatalf("expected no polls after failed subscribe, got %d", f.polls)
	}
	if f.deletes != 1 {
		t.Fatalf("expected the instance to be deleted after failed subscribe, got %d deletes", f.deletes)
	}
}

func TestClient_Consume_NoRecordsIsNotAnError(t *testing.T) {
	f := newFakeProxy(t)

	cfg := testConfig(f.srv.URL)
	c := NewClient(cfg)
	recs, err := c.Consume(context.Background(), "weather", "g1", "n1")
	if err != nil {
		t.Fatalf("Consume: %v", err)
	}
	if recs != nil {
		t.Fatalf("expected nil batch, got %d records", len(recs))
	}
	if int(f.polls) != cfg.PollAttempts {
		t.Fatalf("expected exactly %d polls, got %d", cfg.PollAttempts, f.polls)
	}
	if f.deletes != 1 {
		t.Fatalf("expected exactly 1 delete, got %d", f.deletes)
	}
}

func TestClient_Consume_PollRejectedThenRetried(t *testing.T) {
	f := newFakeProxy(t)
	f.pollStatus = []int{http.StatusInternalServerError, http.StatusOK}
	f.pollBodies = []string{"", `[{"topic":"weather","partition":1,"offset":3,"value":{"city_id":"city_3"}}]`}

	c := NewClient(testConfig(f.srv.URL))
	recs, err := c.Consume(context.Background(), "weather", "g1", "n1")
	if err != nil {
		t.Fatalf("Consume: %v", err)
	}
	if len(recs) != 1 || recs[0].Partition != 1 {
		t.Fatalf("unexpected batch: %+v", recs)
	}
	if f.polls != 2 {
		t.Fatalf("expected 2 polls, got %d", f.polls)
	}
}

func TestClient_Consume_MalformedBatchAborts(t *testing.T) {
	f := newFakeProxy(t)
	f.pollBodies = []string{`{"not":"an array"}`}

	c := NewClient(testConfig(f.srv.URL))
	_, err := c.Consume(context.Background(), "weather", "g1", "n1")
	if !errors.Is(err, ErrProtocol) {
		t.Fatalf("expected ErrProtocol, got %v", err)
	}
	if f.polls != 1 {
		t.Fatalf("expected polling to abort on first malformed body, got %d polls", f.polls)
	}
	if f.deletes != 1 {
		t.Fatalf("expected exactly 1 delete, got %d", f.deletes)
	}
}

func TestClient_Consume_CancelStillDeletes(t *testing.T) {
	f := newFakeProxy(t)
	ctx, cancel := context.WithCancel(context.Background())
	f.onPoll = func(int32) { cancel() }

	c := NewClient(testConfig(f.srv.URL))
	_, err := c.Consume(ctx, "weather", "g1", "n1")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if f.polls != 1 {
		t.Fatalf("expected 1 poll before cancellation, got %d", f.polls)
	}
	if f.deletes != 1 {
		t.Fatalf("expected the instance to be deleted despite cancellation, got %d deletes", f.deletes)
	}
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func TestClient_Consume_TransportError(t *testing.T) {
	c := NewClient(testConfig("http://proxy.invalid"))
	c.http = &http.Client{Transport: roundTripFunc(func(*http.Request) (*http.Response, error) {
		return nil, errors.New("connection refused")
	})}

	_, err := c.Consume(context.Background(), "weather", "g1", "n1")
	if !errors.Is(err, ErrConnect) {
		t.Fatalf("expected ErrConnect, got %v", err)
	}
}
