package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/napolitain/citysim/internal/journal"
	"github.com/napolitain/citysim/internal/metrics"
	"github.com/napolitain/citysim/internal/models"
)

func testBaseConfig() *models.Config {
	cfg := models.DefaultConfig()
	cfg.Size = 10
	cfg.Budget = 5000
	cfg.TownHall = false
	cfg.Timeline = models.TimelineConfig{
		RobberyNotice: 1, Burn: 1, HospitalReduction: 1, HouseReduction: 1, Plague: 1,
		MarketDeduction: 1000, Festival: 1000, ConcertStoppage: 1000, SeasonalReduction: 1000,
	}
	return cfg
}

type testEnv struct {
	srv *httptest.Server
	mgr *Manager
}

func newTestEnv(t *testing.T, withJournal bool) *testEnv {
	t.Helper()
	lg := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := DefaultConfig()
	cfg.TickInterval = 0

	var store *journal.Store
	if withJournal {
		var err error
		store, err = journal.Open(filepath.Join(t.TempDir(), "journal.db"))
		if err != nil {
			t.Fatalf("journal.Open: %v", err)
		}
		t.Cleanup(func() { store.Close() })
	}

	m := metrics.NewMetrics(prometheus.NewRegistry())
	mgr := NewManager(testBaseConfig(), cfg, m, store, lg)
	s := New(cfg, lg, mgr, m, nil)
	ts := httptest.NewServer(s.http.Handler)
	t.Cleanup(func() {
		ts.Close()
		mgr.CloseAll()
	})
	return &testEnv{srv: ts, mgr: mgr}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) (int, map[string]any) {
	t.Helper()
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		r = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, e.srv.URL+path, r)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	var out map[string]any
	data, _ := io.ReadAll(resp.Body)
	if len(data) > 0 && strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(data, &out); err != nil {
			t.Fatalf("decode %s %s: %v (%s)", method, path, err, data)
		}
	}
	return resp.StatusCode, out
}

func (e *testEnv) createCity(t *testing.T) string {
	t.Helper()
	status, body := e.do(t, http.MethodPost, "/cities", nil)
	if status != http.StatusCreated {
		t.Fatalf("create city: status %d, body %v", status, body)
	}
	return body["id"].(string)
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, false)
	resp, err := http.Get(env.srv.URL + "/health")
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}
}

func TestPlaceAndBulldoze(t *testing.T) {
	env := newTestEnv(t, false)
	id := env.createCity(t)

	status, body := env.do(t, http.MethodPost, "/cities/"+id+"/buildings",
		placeRequest{X: 1, Y: 1, Type: models.Residential})
	if status != http.StatusCreated {
		t.Fatalf("place: status %d, body %v", status, body)
	}
	if body["budget"].(float64) != 4700 {
		t.Errorf("budget = %v, want 4700", body["budget"])
	}
	if n := len(body["buildings"].([]any)); n != 1 {
		t.Errorf("%d buildings, want 1", n)
	}

	status, body = env.do(t, http.MethodDelete, "/cities/"+id+"/buildings/1/1", nil)
	if status != http.StatusOK {
		t.Fatalf("bulldoze: status %d, body %v", status, body)
	}
	if body["budget"].(float64) != 4850 {
		t.Errorf("budget = %v, want 4850", body["budget"])
	}
	if body["cooldownSeconds"].(float64) != 180 {
		t.Errorf("cooldown = %v, want 180", body["cooldownSeconds"])
	}
}

func TestErrorStatusMapping(t *testing.T) {
	env := newTestEnv(t, false)
	id := env.createCity(t)
	env.do(t, http.MethodPost, "/cities/"+id+"/buildings", placeRequest{X: 0, Y: 0, Type: models.MiniMart})

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		status int
		code   string
	}{
		{"out of bounds", http.MethodPost, "/buildings", placeRequest{X: 50, Y: 0, Type: models.Road}, http.StatusBadRequest, "out_of_bounds"},
		{"invalid type", http.MethodPost, "/buildings", placeRequest{X: 2, Y: 2, Type: "castle"}, http.StatusBadRequest, "invalid_type"},
		{"occupied", http.MethodPost, "/buildings", placeRequest{X: 0, Y: 0, Type: models.Road}, http.StatusConflict, "tile_occupied"},
		{"first bank", http.MethodPost, "/buildings", placeRequest{X: 3, Y: 3, Type: models.Bank}, http.StatusCreated, ""},
		{"second bank", http.MethodPost, "/buildings", placeRequest{X: 4, Y: 4, Type: models.Bank}, http.StatusCreated, ""},
		{"insufficient", http.MethodPost, "/buildings", placeRequest{X: 5, Y: 5, Type: models.Bank}, http.StatusConflict, "insufficient_funds"},
		{"no building", http.MethodDelete, "/buildings/7/7", nil, http.StatusNotFound, "no_building"},
		{"stabilize non special", http.MethodPost, "/buildings/0/0/stabilize", nil, http.StatusBadRequest, "invalid_type"},
		{"unknown prompt", http.MethodPost, "/prompts/nope", promptRequest{Accept: true}, http.StatusNotFound, "unknown_prompt"},
		{"bad steps", http.MethodPost, "/tick", tickRequest{Steps: -1}, http.StatusBadRequest, "bad_request"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := env.do(t, tt.method, "/cities/"+id+tt.path, tt.body)
			if status != tt.status {
				t.Fatalf("status = %d, want %d (body %v)", status, tt.status, body)
			}
			if tt.code != "" && body["code"] != tt.code {
				t.Errorf("code = %v, want %s", body["code"], tt.code)
			}
		})
	}

	status, body := env.do(t, http.MethodGet, "/cities/missing", nil)
	if status != http.StatusNotFound || body["code"] != "session_not_found" {
		t.Errorf("missing session: status %d, body %v", status, body)
	}
}

func TestTickAndPrompt(t *testing.T) {
	env := newTestEnv(t, false)
	id := env.createCity(t)

	status, body := env.do(t, http.MethodPost, "/cities/"+id+"/tick", tickRequest{Steps: 60})
	if status != http.StatusOK {
		t.Fatalf("tick: status %d", status)
	}
	if body["clockSeconds"].(float64) != 60 {
		t.Errorf("clock = %v, want 60", body["clockSeconds"])
	}
	prompts := body["prompts"].([]any)
	if len(prompts) != 1 {
		t.Fatalf("%d prompts, want 1", len(prompts))
	}
	pid := prompts[0].(map[string]any)["id"].(string)

	status, body = env.do(t, http.MethodPost, "/cities/"+id+"/prompts/"+pid, promptRequest{Accept: true})
	if status != http.StatusOK {
		t.Fatalf("resolve: status %d, body %v", status, body)
	}
	if body["budget"].(float64) != 2500 {
		t.Errorf("budget = %v, want 2500", body["budget"])
	}

	status, body = env.do(t, http.MethodPost, "/cities/"+id+"/prompts/"+pid, promptRequest{Accept: true})
	if status != http.StatusConflict || body["code"] != "prompt_closed" {
		t.Errorf("second resolve: status %d, body %v", status, body)
	}
}

func TestCreateWithOverrides(t *testing.T) {
	env := newTestEnv(t, false)
	size := 4
	status, body := env.do(t, http.MethodPost, "/cities", CreateOptions{Size: &size, Paused: true})
	if status != http.StatusCreated {
		t.Fatalf("status %d, body %v", status, body)
	}
	if body["size"].(float64) != 4 || body["paused"] != true {
		t.Errorf("body = %v", body)
	}

	for _, bad := range []int{0, models.MaxGridSize + 1, 1 << 20} {
		status, body = env.do(t, http.MethodPost, "/cities", CreateOptions{Size: &bad})
		if status != http.StatusBadRequest {
			t.Errorf("size %d: status %d, want 400 (body %v)", bad, status, body)
		}
	}
}

func TestSessionCapUnderConcurrentCreates(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TickInterval = 0
	cfg.MaxSessions = 3
	mgr := NewManager(testBaseConfig(), cfg, nil, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
	t.Cleanup(mgr.CloseAll)

	const workers = 20
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created int
		refused int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := mgr.Create(CreateOptions{})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				created++
			case errors.Is(err, ErrTooManySessions):
				refused++
			default:
				t.Errorf("Create: %v", err)
			}
		}()
	}
	wg.Wait()

	if created != cfg.MaxSessions || refused != workers-cfg.MaxSessions {
		t.Errorf("created %d, refused %d; want %d and %d", created, refused, cfg.MaxSessions, workers-cfg.MaxSessions)
	}
	if n := len(mgr.IDs()); n != cfg.MaxSessions {
		t.Errorf("%d live sessions, want %d", n, cfg.MaxSessions)
	}
}

func TestDeleteCity(t *testing.T) {
	env := newTestEnv(t, false)
	id := env.createCity(t)
	if status, _ := env.do(t, http.MethodDelete, "/cities/"+id, nil); status != http.StatusNoContent {
		t.Fatalf("delete: status %d", status)
	}
	if status, _ := env.do(t, http.MethodGet, "/cities/"+id, nil); status != http.StatusNotFound {
		t.Errorf("get after delete: status %d", status)
	}
}

func TestJournalEndpoint(t *testing.T) {
	env := newTestEnv(t, true)
	id := env.createCity(t)
	env.do(t, http.MethodPost, "/cities/"+id+"/buildings", placeRequest{X: 0, Y: 0, Type: models.Road})

	resp, err := http.Get(env.srv.URL + "/cities/" + id + "/events")
	if err != nil {
		t.Fatalf("GET events: %v", err)
	}
	defer resp.Body.Close()
	var entries []journal.Entry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(entries) != 4 {
		t.Errorf("%d journal entries, want 4 tile notifications", len(entries))
	}
}

func TestFeedStreamsEvents(t *testing.T) {
	env := newTestEnv(t, false)
	id := env.createCity(t)

	url := "ws" + strings.TrimPrefix(env.srv.URL, "http") + "/cities/" + id + "/feed"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	sess, _ := env.mgr.Get(id)
	deadline := time.Now().Add(2 * time.Second)
	for sess.Hub.Clients() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}

	env.do(t, http.MethodPost, "/cities/"+id+"/buildings", placeRequest{X: 5, Y: 5, Type: models.Road})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var event map[string]any
	if err := json.Unmarshal(msg, &event); err != nil {
		t.Fatalf("decode event: %v", err)
	}
	if event["kind"] != "TileChanged" {
		t.Errorf("first event kind = %v, want TileChanged", event["kind"])
	}
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t, false)
	id := env.createCity(t)
	env.do(t, http.MethodPost, "/cities/"+id+"/buildings", placeRequest{X: 0, Y: 0, Type: models.Road})

	resp, err := http.Get(env.srv.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(data), `citysim_placements_total{result="ok"} 1`) {
		t.Errorf("metrics missing placement counter:\n%s", data)
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv("CITYSIM_ADDR", ":9999")
	t.Setenv("CITYSIM_TICK", "250ms")
	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if cfg.Addr != ":9999" || cfg.TickInterval != 250*time.Millisecond {
		t.Errorf("cfg = %+v", cfg)
	}

	t.Setenv("CITYSIM_TICK", "soon")
	if _, err := FromEnv(); err == nil {
		t.Error("expected error for bad tick")
	}
}
