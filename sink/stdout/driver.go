package stdout

import (
	"fmt"
	"sync/atomic"

	"vane/sink"
)

/* ────────── public config ────────── */
type Config struct {
	PrintCounter  bool `yaml:"print_counter"`   // prepend seq#
	ValueMaxBytes int  `yaml:"value_max_bytes"` // 0 = unlimited
}

/* ────────── driver ────────── */
type driver struct {
	cfg Config
}

var seq uint64

/* ────────── sink.Adapter ────────── */
func (d *driver) Configure(raw any) error {
	c, ok := raw.(Config)
	if !ok {
		return fmt.Errorf("stdout-sink: expected Config, got %T", raw)
	}
	d.cfg = c
	return nil
}

func (d *driver) Push(m sink.Message) error {
	val := m.Value
	if d.cfg.ValueMaxBytes > 0 && len(val) > d.cfg.ValueMaxBytes {
		val = val[:d.cfg.ValueMaxBytes]
	}
	if d.cfg.PrintCounter {
		fmt.Printf("[sink %06d] %s key=%s %s\n", atomic.AddUint64(&seq, 1), m.Topic, m.Key, val)
		return nil
	}
	fmt.Printf("[sink] %s key=%s %s\n", m.Topic, m.Key, val)
	return nil
}

func (d *driver) Close() error { return nil }

/* ────────── auto-register ────────── */
func init() {
	sink.Register("stdout", func() sink.Adapter { return &driver{} })
}
