package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"vane/internal/dashboard"
	"vane/internal/logging"
)

// Snapshotter hands out the current dashboard snapshot.
// *dashboard.Provider satisfies this.
type Snapshotter interface {
	Snapshot(ctx context.Context) dashboard.Snapshot
}

type Server struct {
	http *http.Server
	lis  net.Listener
}

// StartServer binds the API listener; serving begins with Serve. An
// unavailable snapshot is still served as 200 — availability travels
// in-band, and the dashboard renders it as empty panels.
func StartServer(port int, snaps Snapshotter) (*Server, error) {
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/snapshot", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		writeJSON(w, http.StatusOK, snaps.Snapshot(r.Context()))
	})
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})

	return &Server{
		http: &http.Server{Handler: mux},
		lis:  lis,
	}, nil
}

// Addr reports the bound listener address.
func (s *Server) Addr() string { return s.lis.Addr().String() }

func (s *Server) Serve() error {
	logging.L().Info("api: serving", "addr", s.Addr())
	if err := s.http.Serve(s.lis); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = s.http.Shutdown(ctx)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
