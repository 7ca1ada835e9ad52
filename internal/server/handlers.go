package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/napolitain/citysim/internal/models"
	"github.com/napolitain/citysim/internal/sim"
)

// maxTickSteps bounds one manual tick request
const maxTickSteps = 24 * 60 * 60

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

type placeRequest struct {
	X    int                 `json:"x"`
	Y    int                 `json:"y"`
	Type models.BuildingType `json:"type"`
}

type promptRequest struct {
	Accept bool `json:"accept"`
}

type tickRequest struct {
	Steps int `json:"steps"`
}

type pauseRequest struct {
	Paused bool `json:"paused"`
}

type cityResponse struct {
	ID     string `json:"id"`
	Paused bool   `json:"paused"`
	sim.Snapshot
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// statusFor maps city and session errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, sim.ErrOutOfBounds), errors.Is(err, sim.ErrInvalidType):
		return http.StatusBadRequest
	case errors.Is(err, sim.ErrTileOccupied), errors.Is(err, sim.ErrPlacementLocked),
		errors.Is(err, sim.ErrInsufficientFunds), errors.Is(err, sim.ErrPromptClosed):
		return http.StatusConflict
	case errors.Is(err, sim.ErrNoBuildingPresent), errors.Is(err, sim.ErrUnknownPrompt),
		errors.Is(err, ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrTooManySessions):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	code := sim.Code(err)
	if errors.Is(err, ErrSessionNotFound) {
		code = "session_not_found"
	} else if errors.Is(err, ErrTooManySessions) {
		code = "too_many_sessions"
	}
	if status == http.StatusInternalServerError {
		s.lg.Error("request failed", "error", err)
	}
	writeJSON(w, status, errorResponse{Error: err.Error(), Code: code})
}

func (s *Server) badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: msg, Code: "bad_request"})
}

func (s *Server) session(w http.ResponseWriter, r *http.Request) (*Session, bool) {
	sess, err := s.mgr.Get(mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, err)
		return nil, false
	}
	return sess, true
}

func coords(r *http.Request) (int, int) {
	vars := mux.Vars(r)
	// the route patterns only admit integers
	x, _ := strconv.Atoi(vars["x"])
	y, _ := strconv.Atoi(vars["y"])
	return x, y
}

func respond(sess *Session) cityResponse {
	return cityResponse{ID: sess.ID, Paused: sess.Paused(), Snapshot: sess.Snapshot()}
}

func (s *Server) getHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func (s *Server) getCatalog(w http.ResponseWriter, r *http.Request) {
	catalog := s.mgr.base.Catalog
	type entry struct {
		Type models.BuildingType `json:"type"`
		models.BuildingSpec
	}
	entries := make([]entry, 0, len(catalog))
	for _, bt := range catalog.Types() {
		entries = append(entries, entry{Type: bt, BuildingSpec: catalog[bt]})
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) postCity(w http.ResponseWriter, r *http.Request) {
	var opts CreateOptions
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&opts); err != nil {
			s.badRequest(w, "invalid JSON body: "+err.Error())
			return
		}
	}
	sess, err := s.mgr.Create(opts)
	if err != nil {
		if errors.Is(err, ErrTooManySessions) {
			s.writeError(w, err)
			return
		}
		s.badRequest(w, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, respond(sess))
}

func (s *Server) listCities(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"ids": s.mgr.IDs()})
}

func (s *Server) getCity(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, respond(sess))
}

func (s *Server) deleteCity(w http.ResponseWriter, r *http.Request) {
	if err := s.mgr.Close(mux.Vars(r)["id"]); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) postBuilding(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req placeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.badRequest(w, "invalid JSON body: "+err.Error())
		return
	}
	err := sess.Do(func(c *sim.City) error {
		return c.PlaceBuilding(req.X, req.Y, req.Type)
	})
	s.metrics.RecordPlacement(err)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, respond(sess))
}

func (s *Server) mutateAt(w http.ResponseWriter, r *http.Request, op func(c *sim.City, x, y int) error) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	x, y := coords(r)
	if err := sess.Do(func(c *sim.City) error { return op(c, x, y) }); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, respond(sess))
}

func (s *Server) deleteBuilding(w http.ResponseWriter, r *http.Request) {
	s.mutateAt(w, r, (*sim.City).Bulldoze)
}

func (s *Server) postRepair(w http.ResponseWriter, r *http.Request) {
	s.mutateAt(w, r, (*sim.City).RepairBuilding)
}

func (s *Server) postStabilize(w http.ResponseWriter, r *http.Request) {
	s.mutateAt(w, r, (*sim.City).StabilizeBuilding)
}

func (s *Server) postPrompt(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req promptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.badRequest(w, "invalid JSON body: "+err.Error())
		return
	}
	pid := mux.Vars(r)["pid"]
	if err := sess.Do(func(c *sim.City) error { return c.ResolvePrompt(pid, req.Accept) }); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, respond(sess))
}

func (s *Server) postTick(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	req := tickRequest{Steps: 1}
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.badRequest(w, "invalid JSON body: "+err.Error())
			return
		}
	}
	if req.Steps < 1 || req.Steps > maxTickSteps {
		s.badRequest(w, "steps must be between 1 and "+strconv.Itoa(maxTickSteps))
		return
	}
	sess.Do(func(c *sim.City) error {
		c.Step(req.Steps)
		return nil
	})
	writeJSON(w, http.StatusOK, respond(sess))
}

func (s *Server) postPause(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req pauseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.badRequest(w, "invalid JSON body: "+err.Error())
		return
	}
	sess.SetPaused(req.Paused)
	writeJSON(w, http.StatusOK, respond(sess))
}

func (s *Server) getEvents(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	store := s.mgr.Store()
	if store == nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "journal disabled", Code: "journal_disabled"})
		return
	}
	entries, err := store.Events(r.Context(), sess.ID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) getFeed(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.lg.Warn("websocket upgrade failed", "session", sess.ID, "error", err)
		return
	}
	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}
	if !sess.Hub.join(c) {
		conn.Close()
		return
	}
	go c.writePump()
	go c.readPump(sess.Hub)
}
