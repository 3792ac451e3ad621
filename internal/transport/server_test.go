package transport

import (
	"context"
	"net/http"
	"testing"
	"time"

	"vane/internal/dashboard"
)

type fakeSnapshotter struct {
	snap  dashboard.Snapshot
	calls int
}

func (f *fakeSnapshotter) Snapshot(context.Context) dashboard.Snapshot {
	f.calls++
	return f.snap
}

func startTestServer(t *testing.T, snaps Snapshotter) *Server {
	t.Helper()
	srv, err := StartServer(0, snaps)
	if err != nil {
		t.Fatalf("StartServer: %v", err)
	}
	done := make(chan error, 1)
	go func() { done <- srv.Serve() }()
	t.Cleanup(func() {
		srv.Stop()
		if err := <-done; err != nil {
			t.Errorf("Serve: %v", err)
		}
	})
	return srv
}

func TestServer_SnapshotRoundTrip(t *testing.T) {
	f := &fakeSnapshotter{snap: dashboard.Snapshot{
		Available: true,
		UpdatedAt: time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC),
		Stations: []dashboard.StationPanel{
			{ID: "city_1", Name: "Station 1", Temperature: 22.5},
		},
	}}
	srv := startTestServer(t, f)

	got, err := Dial("http://" + srv.Addr()).Snapshot(context.Background())
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if !got.Available {
		t.Fatal("expected an available snapshot")
	}
	if len(got.Stations) != 1 || got.Stations[0].Temperature != 22.5 {
		t.Fatalf("unexpected panels: %+v", got.Stations)
	}
	if !got.UpdatedAt.Equal(f.snap.UpdatedAt) {
		t.Fatalf("timestamp mangled in transit: %v", got.UpdatedAt)
	}
	if f.calls != 1 {
		t.Fatalf("expected 1 provider call, got %d", f.calls)
	}
}

func TestServer_UnavailableSnapshotIsStill200(t *testing.T) {
	srv := startTestServer(t, &fakeSnapshotter{snap: dashboard.Snapshot{Available: false}})

	res, err := http.Get("http://" + srv.Addr() + "/api/v1/snapshot")
	if err != nil {
		t.Fatalf("GET snapshot: %v", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 for an unavailable snapshot, got %d", res.StatusCode)
	}
	if ct := res.Header.Get("Content-Type"); ct != "application/json" {
		t.Fatalf("unexpected content type %q", ct)
	}
}

func TestServer_SnapshotRejectsNonGET(t *testing.T) {
	srv := startTestServer(t, &fakeSnapshotter{})

	res, err := http.Post("http://"+srv.Addr()+"/api/v1/snapshot", "application/json", nil)
	if err != nil {
		t.Fatalf("POST snapshot: %v", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", res.StatusCode)
	}
}

func TestServer_Healthz(t *testing.T) {
	srv := startTestServer(t, &fakeSnapshotter{})

	res, err := http.Get("http://" + srv.Addr() + "/healthz")
	if err != nil {
		t.Fatalf("GET healthz: %v", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}
}
