package sink

import "fmt"

// Message is one encoded reading on its way to a feed topic.
type Message struct {
	Topic string
	Key   []byte
	Value []byte
}

// Adapter is the common behaviour every publisher exposes.
type Adapter interface {
	Configure(any) error // driver-specific config ⇒ struct
	Push(Message) error  // publish one message
	Close() error        // idempotent
}

/*──────── registry ───────*/

type factory = func() Adapter

var reg = map[string]factory{}

func Register(name string, f factory) { reg[name] = f }

func NewAdapter(name string) (Adapter, error) {
	if f, ok := reg[name]; ok {
		return f(), nil
	}
	return nil, fmt.Errorf("unknown sink %q", name)
}
