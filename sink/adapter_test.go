package sink

import "testing"

type nopAdapter struct{ pushed []Message }

func (n *nopAdapter) Configure(any) error { return nil }
func (n *nopAdapter) Push(m Message) error {
	n.pushed = append(n.pushed, m)
	return nil
}
func (n *nopAdapter) Close() error { return nil }

func TestRegistry_RoundTrip(t *testing.T) {
	Register("nop", func() Adapter { return &nopAdapter{} })

	a, err := NewAdapter("nop")
	if err != nil {
		t.Fatalf("NewAdapter: %v", err)
	}
	if err := a.Push(Message{Topic: "weather", Key: []byte("city_1"), Value: []byte("{}")}); err != nil {
		t.Fatalf("Push: %v", err)
	}
	if got := a.(*nopAdapter).pushed; len(got) != 1 || got[0].Topic != "weather" {
		t.Fatalf("unexpected pushed messages: %+v", got)
	}
}

func TestRegistry_UnknownDriver(t *testing.T) {
	if _, err := NewAdapter("bogus"); err == nil {
		t.Fatal("expected an error for an unknown driver")
	}
}
