package tui

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/napolitain/citysim/internal/models"
	"github.com/napolitain/citysim/internal/scenario"
	"github.com/napolitain/citysim/internal/sim"
)

func newTestModel(t *testing.T) Model {
	t.Helper()
	cfg := models.DefaultConfig()
	cfg.Size = 5
	cfg.Budget = 1000
	cfg.TownHall = false
	city, err := sim.NewCity(cfg)
	if err != nil {
		t.Fatalf("NewCity: %v", err)
	}
	return New(city, time.Second)
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func send(t *testing.T, m Model, msgs ...tea.Msg) Model {
	t.Helper()
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		m = next.(Model)
	}
	return m
}

func TestCursorStaysOnGrid(t *testing.T) {
	m := newTestModel(t)
	m = send(t, m, tea.KeyMsg{Type: tea.KeyUp}, tea.KeyMsg{Type: tea.KeyLeft})
	if got := m.Cursor(); got != (models.Coord{}) {
		t.Errorf("cursor = %+v, want origin", got)
	}
	for i := 0; i < 10; i++ {
		m = send(t, m, tea.KeyMsg{Type: tea.KeyRight}, tea.KeyMsg{Type: tea.KeyDown})
	}
	if got := m.Cursor(); got != (models.Coord{X: 4, Y: 4}) {
		t.Errorf("cursor = %+v, want (4,4)", got)
	}
}

func TestSelectAndPlace(t *testing.T) {
	m := newTestModel(t)
	m = send(t, m, runes("1"))
	if m.Selected() != models.Residential {
		t.Fatalf("selected = %s, want %s", m.Selected(), models.Residential)
	}
	m = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.Err() != nil {
		t.Fatalf("place: %v", m.Err())
	}
	if m.city.Budget() != 700 {
		t.Errorf("budget = %.2f, want 700", m.city.Budget())
	}

	m = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if !errors.Is(m.Err(), sim.ErrTileOccupied) {
		t.Errorf("err = %v, want ErrTileOccupied", m.Err())
	}

	m = send(t, m, runes("d"))
	if m.Err() != nil {
		t.Fatalf("bulldoze: %v", m.Err())
	}
	if m.city.Cooldown() == 0 {
		t.Error("expected placement lockout after bulldoze")
	}
}

func TestTabCyclesTypes(t *testing.T) {
	m := newTestModel(t)
	m = send(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	if want := m.types[len(m.types)-1]; m.Selected() != want {
		t.Errorf("selected = %s, want %s", m.Selected(), want)
	}
	m = send(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if m.Selected() != m.types[0] {
		t.Errorf("selected = %s, want %s", m.Selected(), m.types[0])
	}
}

func TestTickRespectsPauseAndSpeed(t *testing.T) {
	m := newTestModel(t)
	m = send(t, m, runes("+"), runes("+"))
	if m.Speed() != 4 {
		t.Fatalf("speed = %d, want 4", m.Speed())
	}
	m = send(t, m, tickMsg(time.Now()))
	if m.city.Clock() != 4*time.Second {
		t.Errorf("clock = %s, want 4s", m.city.Clock())
	}

	m = send(t, m, runes(" "), tickMsg(time.Now()))
	if !m.Paused() {
		t.Fatal("expected paused")
	}
	if m.city.Clock() != 4*time.Second {
		t.Errorf("clock advanced while paused: %s", m.city.Clock())
	}

	m = send(t, m, runes("-"), runes("-"), runes("-"))
	if m.Speed() != minSpeed {
		t.Errorf("speed = %d, want %d", m.Speed(), minSpeed)
	}
}

func TestPromptKeys(t *testing.T) {
	cfg := models.DefaultConfig()
	cfg.Size = 5
	cfg.Budget = 3000
	cfg.TownHall = false
	cfg.Timeline = models.TimelineConfig{
		RobberyNotice: 1, Burn: 1, HospitalReduction: 1, HouseReduction: 1, Plague: 1,
		MarketDeduction: 100, Festival: 100, ConcertStoppage: 100, SeasonalReduction: 100,
	}
	city, err := sim.NewCity(cfg)
	if err != nil {
		t.Fatalf("NewCity: %v", err)
	}
	m := New(city, time.Second)
	city.Step(60)
	if n := len(city.PendingPrompts()); n != 1 {
		t.Fatalf("%d pending prompts, want 1", n)
	}
	if !strings.Contains(m.View(), "[y/n]") {
		t.Error("view does not show the pending prompt")
	}

	m = send(t, m, runes("y"))
	if m.Err() != nil {
		t.Fatalf("accept: %v", m.Err())
	}
	if city.Budget() != 500 {
		t.Errorf("budget = %.2f, want 500", city.Budget())
	}
	if n := len(city.PendingPrompts()); n != 0 {
		t.Errorf("%d pending prompts after accept", n)
	}
}

func TestQuit(t *testing.T) {
	m := newTestModel(t)
	_, cmd := m.Update(runes("q"))
	if cmd == nil {
		t.Fatal("expected a quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q did not quit")
	}
}

func TestViewMarksBuildings(t *testing.T) {
	m := newTestModel(t)
	m = send(t, m, runes("1"), tea.KeyMsg{Type: tea.KeyEnter})
	view := m.View()
	if !strings.Contains(view, "h . . . .") {
		t.Error("view does not show the placed house")
	}
	if !strings.Contains(view, "budget 700") {
		t.Errorf("status bar missing budget:\n%s", view)
	}
}

func TestRunnerDrivesTicks(t *testing.T) {
	cfg := models.DefaultConfig()
	cfg.Size = 5
	cfg.TownHall = false
	city, err := sim.NewCity(cfg)
	if err != nil {
		t.Fatalf("NewCity: %v", err)
	}
	r, err := scenario.NewRunner(city, &models.Scenario{
		Name:     "tui",
		Duration: 3 * time.Second,
		Actions: []models.ScenarioAction{
			{At: time.Second, Action: models.ActionPlace, X: 2, Y: 2, Type: models.Road},
		},
	}, nil)
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}

	m := New(city, time.Second).WithRunner(r)
	m = send(t, m, runes("+"), tickMsg(time.Now()))
	if city.Clock() != 2*time.Second {
		t.Fatalf("clock = %s, want 2s", city.Clock())
	}
	if tile, _ := city.GetTile(2, 2); !tile.Occupied() {
		t.Error("scripted road not placed")
	}

	m = send(t, m, tickMsg(time.Now()), tickMsg(time.Now()))
	if city.Clock() != 3*time.Second {
		t.Errorf("clock = %s, want the scenario to stop at 3s", city.Clock())
	}
	if !strings.Contains(m.View(), "FINISHED") {
		t.Error("view does not report the finished scenario")
	}
}
