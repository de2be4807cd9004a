package telemetry

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/routeforge/vrpcore/evolution"
	"github.com/routeforge/vrpcore/population"
)

// ProgressSnapshot is the JSON payload pushed to every connected
// dashboard client after a generation completes.
type ProgressSnapshot struct {
	Generation     int       `json:"generation"`
	PopulationSize int       `json:"population_size"`
	BestFitness    []float64 `json:"best_fitness"`
	Progress       float64   `json:"progress"`
	ElapsedSeconds float64   `json:"elapsed_seconds"`
}

// Dashboard serves a single websocket endpoint broadcasting
// ProgressSnapshots to every connected client, fanning generation
// updates out over mux-routed HTTP.
//
// Grounded on github.com/niceyeti-tabular's server/server.go: the same
// "upgrade to websocket, write-JSON-per-update, ping to detect
// disconnect" shape, generalized from a single-client RL viewer to a
// broadcast-to-N dashboard (this solver's runs are unattended batch
// jobs that may have zero or many observers, not one interactive
// session).
type Dashboard struct {
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
}

// NewDashboard returns a Dashboard with no clients yet connected.
func NewDashboard() *Dashboard {
	return &Dashboard{clients: make(map[*websocket.Conn]struct{})}
}

// Router returns the mux.Router serving the dashboard's websocket route.
func (d *Dashboard) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/progress", d.serveWebsocket)
	return r
}

func (d *Dashboard) serveWebsocket(w http.ResponseWriter, r *http.Request) {
	conn, err := d.upgrader.Upgrade(w, r, nil)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	d.mu.Lock()
	d.clients[conn] = struct{}{}
	d.mu.Unlock()
}

// Broadcast pushes snapshot to every connected client, dropping (and
// closing) any connection that errors on write.
func (d *Dashboard) Broadcast(snapshot ProgressSnapshot) {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	for conn := range d.clients {
		_ = conn.SetWriteDeadline(time.Now().Add(time.Second))
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			conn.Close()
			delete(d.clients, conn)
		}
	}
}

// Serve runs an HTTP server on addr hosting the dashboard's router until
// ctx is cancelled.
func (d *Dashboard) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: d.Router()}
	go func() {
		<-ctx.Done()
		_ = srv.Close()
	}()
	err := srv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// DashboardHook adapts Dashboard to evolution.GenerationHook.
type DashboardHook struct {
	Dashboard *Dashboard
}

func (h DashboardHook) OnGeneration(gen int, pop population.Population, term evolution.Termination, started time.Time) {
	ranked := pop.Ranked()
	var best []float64
	if len(ranked) > 0 {
		best = ranked[0].Fitness
	}
	h.Dashboard.Broadcast(ProgressSnapshot{
		Generation:     gen,
		PopulationSize: pop.Size(),
		BestFitness:    best,
		Progress:       term.Estimate(gen, started, pop),
		ElapsedSeconds: time.Since(started).Seconds(),
	})
}
