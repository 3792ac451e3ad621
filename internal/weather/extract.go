package weather

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"

	"vane/source/restproxy"
)

// ErrNoData reports that a live fetch completed but produced no usable
// readings.
var ErrNoData = errors.New("no weather data available")

// Subscription names one proxy feed.
type Subscription struct {
	Topic    string
	Group    string
	Consumer string // base instance name, suffixed per cycle
}

// instanceName derives a unique consumer instance name for one cycle.
// Fresh names keep overlapping cycles from colliding on the proxy.
func (s Subscription) instanceName() string {
	return s.Consumer + "-" + uuid.NewString()
}

// Consumer runs one consumer session cycle against the proxy and returns
// whatever batch it yielded. *restproxy.Client satisfies this.
type Consumer interface {
	Consume(ctx context.Context, topic, group, consumer string) ([]restproxy.Record, error)
}

// Extractor turns raw feed batches into Readings.
type Extractor struct {
	consumer Consumer
	now      func() time.Time
}

func NewExtractor(c Consumer) *Extractor {
	return &Extractor{consumer: c, now: time.Now}
}

// Latest fetches the live feed and returns up to n of the most recent
// readings in delivery order. A session that yields no usable readings
// returns ErrNoData; session failures pass through unchanged.
func (e *Extractor) Latest(ctx context.Context, sub Subscription, n int) ([]Reading, error) {
	recs, err := e.consumer.Consume(ctx, sub.Topic, sub.Group, sub.instanceName())
	if err != nil {
		return nil, err
	}
	if len(recs) > n {
		recs = recs[len(recs)-n:]
	}
	out := make([]Reading, 0, len(recs))
	for _, rec := range recs {
		r, ok := project(rec.Value)
		if !ok {
			continue
		}
		out = append(out, r)
	}
	if len(out) == 0 {
		return nil, ErrNoData
	}
	return out, nil
}

// Window fetches the history feed and returns the readings no older than
// the trailing window, sorted by station id then timestamp. An empty
// result is valid and distinct from a session failure. Records without a
// station id or a parseable timestamp are dropped.
func (e *Extractor) Window(ctx context.Context, sub Subscription, window time.Duration) ([]Reading, error) {
	recs, err := e.consumer.Consume(ctx, sub.Topic, sub.Group, sub.instanceName())
	if err != nil {
		return nil, err
	}
	cutoff := e.now().Add(-window)
	out := make([]Reading, 0, len(recs))
	for _, rec := range recs {
		r, ok := project(rec.Value)
		if !ok || r.Timestamp.IsZero() {
			continue
		}
		if r.Timestamp.Before(cutoff) {
			continue
		}
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].StationID != out[j].StationID {
			return out[i].StationID < out[j].StationID
		}
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out, nil
}
