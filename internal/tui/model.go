// Package tui is a live terminal view of a city.
package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/napolitain/citysim/internal/models"
	"github.com/napolitain/citysim/internal/scenario"
	"github.com/napolitain/citysim/internal/sim"
)

const (
	minSpeed = 1
	maxSpeed = 3600
)

var glyphs = map[models.BuildingType]rune{
	models.Residential:    'h',
	models.TwoBHK:         '2',
	models.ThreeBHK:       '3',
	models.MiniMart:       'm',
	models.MacroMart:      'M',
	models.LargeOffice:    'O',
	models.Bank:           '$',
	models.FireStation:    'F',
	models.Hospital:       '+',
	models.PoliceStation:  'P',
	models.School:         'S',
	models.ShoppingMall:   'W',
	models.ConcertHall:    'C',
	models.Restaurant:     'R',
	models.TownHall:       'T',
	models.Road:           '#',
	models.Market:         'k',
	models.SeasonalMarket: 'K',
}

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
	emptyStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	builtStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	burnedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	statusStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	promptStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("13")).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	paletteStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
)

type tickMsg time.Time

// Model drives one city from the keyboard. Every tick advances the city by
// speed steps unless paused.
type Model struct {
	city     *sim.City
	runner   *scenario.Runner
	types    []models.BuildingType
	selected int
	cursor   models.Coord
	interval time.Duration
	speed    int
	paused   bool
	message  string
	err      error
}

// New returns a model over city, ticking every interval of wall time
func New(city *sim.City, interval time.Duration) Model {
	return Model{
		city:     city,
		types:    city.Config().Catalog.Types(),
		interval: interval,
		speed:    minSpeed,
	}
}

// WithRunner drives the city through a scripted scenario: ticks go through
// the runner, which applies due actions and answers prompts, and stop once
// the scenario is done. Keys still act on the city directly.
func (m Model) WithRunner(r *scenario.Runner) Model {
	m.runner = r
	return m
}

func (m *Model) advance() {
	if m.runner == nil {
		m.city.Step(m.speed)
		return
	}
	for i := 0; i < m.speed && m.runner.Next(); i++ {
	}
}

func tick(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// Init starts the ticker
func (m Model) Init() tea.Cmd {
	if m.interval <= 0 {
		return nil
	}
	return tick(m.interval)
}

// Update handles keys and ticks
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		if !m.paused {
			m.advance()
		}
		return m, tick(m.interval)
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	size := m.city.Size()
	key := msg.String()
	switch key {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		m.cursor.Y = max(0, m.cursor.Y-1)
	case "down", "j":
		m.cursor.Y = min(size-1, m.cursor.Y+1)
	case "left", "h":
		m.cursor.X = max(0, m.cursor.X-1)
	case "right", "l":
		m.cursor.X = min(size-1, m.cursor.X+1)
	case "tab":
		m.selected = (m.selected + 1) % len(m.types)
	case "shift+tab":
		m.selected = (m.selected + len(m.types) - 1) % len(m.types)
	case "enter":
		bt := m.types[m.selected]
		m.report(m.city.PlaceBuilding(m.cursor.X, m.cursor.Y, bt), "placed "+string(bt))
	case "d":
		m.report(m.city.Bulldoze(m.cursor.X, m.cursor.Y), "bulldozed")
	case "r":
		m.report(m.city.RepairBuilding(m.cursor.X, m.cursor.Y), "repaired")
	case "s":
		m.report(m.city.StabilizeBuilding(m.cursor.X, m.cursor.Y), "stabilized")
	case "y", "n":
		prompts := m.city.PendingPrompts()
		if len(prompts) == 0 {
			return m, nil
		}
		p := prompts[0]
		verb := "declined "
		if key == "y" {
			verb = "accepted "
		}
		m.report(m.city.ResolvePrompt(p.ID, key == "y"), verb+string(p.Kind))
	case " ":
		m.paused = !m.paused
	case "+", "=":
		m.speed = min(maxSpeed, m.speed*2)
	case "-":
		m.speed = max(minSpeed, m.speed/2)
	default:
		if len(key) == 1 && key[0] >= '0' && key[0] <= '9' {
			i := int(key[0]-'0') - 1
			if key == "0" {
				i = 9
			}
			if i < len(m.types) {
				m.selected = i
			}
		}
	}
	return m, nil
}

func (m *Model) report(err error, ok string) {
	m.err = err
	if err == nil {
		m.message = ok
		return
	}
	m.message = ""
}

// Selected returns the building type placed by enter
func (m Model) Selected() models.BuildingType { return m.types[m.selected] }

// Cursor returns the highlighted tile
func (m Model) Cursor() models.Coord { return m.cursor }

// Paused reports whether ticks are ignored
func (m Model) Paused() bool { return m.paused }

// Speed returns the steps simulated per tick
func (m Model) Speed() int { return m.speed }

// Err returns the error of the last command, if any
func (m Model) Err() error { return m.err }

// View renders the grid, status bar, pending prompt and help
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("citysim"))
	b.WriteString("\n\n")

	size := m.city.Size()
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			b.WriteString(m.cell(x, y))
		}
		b.WriteByte('\n')
	}
	b.WriteByte('\n')

	state := m.city.State()
	status := fmt.Sprintf("budget %.0f  pop %d  clock %s  revenue %.0f  stages %d",
		m.city.Budget(), m.city.Population(), clock(m.city.Clock()), m.city.LastRevenue().Total,
		len(state.Timeline.ActiveStages()))
	if cd := m.city.Cooldown(); cd > 0 {
		status += fmt.Sprintf("  locked %s", clock(cd))
	}
	if m.runner != nil && m.runner.Done() {
		status += "  FINISHED"
	} else if m.paused {
		status += "  PAUSED"
	} else {
		status += fmt.Sprintf("  x%d", m.speed)
	}
	b.WriteString(statusStyle.Render(status))
	b.WriteByte('\n')

	b.WriteString(m.palette())
	b.WriteByte('\n')

	if prompts := m.city.PendingPrompts(); len(prompts) > 0 {
		b.WriteString(promptStyle.Render(prompts[0].Message + " [y/n]"))
		b.WriteByte('\n')
	}
	if m.err != nil {
		b.WriteString(errorStyle.Render(m.err.Error()))
		b.WriteByte('\n')
	} else if m.message != "" {
		b.WriteString(m.message)
		b.WriteByte('\n')
	}

	b.WriteString(helpStyle.Render("arrows move · 1-0/tab type · enter place · d bulldoze · r repair · s stabilize · space pause · +/- speed · q quit"))
	b.WriteByte('\n')
	return b.String()
}

func (m Model) cell(x, y int) string {
	glyph := "."
	style := emptyStyle
	if t, ok := m.city.GetTile(x, y); ok && t.Occupied() {
		b := t.Building()
		glyph = string(glyphFor(b.Type))
		style = builtStyle
		if b.Burned {
			style = burnedStyle
		}
	}
	if x == m.cursor.X && y == m.cursor.Y {
		style = style.Reverse(true)
	}
	return style.Render(glyph + " ")
}

func (m Model) palette() string {
	parts := make([]string, 0, len(m.types))
	for i, bt := range m.types {
		label := fmt.Sprintf("%c %s", glyphFor(bt), bt)
		if i < 10 {
			label = fmt.Sprintf("%d:%s", (i+1)%10, label)
		}
		if i == m.selected {
			label = paletteStyle.Render("[" + label + "]")
		}
		parts = append(parts, label)
	}
	return strings.Join(parts, " ")
}

func glyphFor(bt models.BuildingType) rune {
	if g, ok := glyphs[bt]; ok {
		return g
	}
	return '?'
}

func clock(d time.Duration) string {
	s := int(d.Seconds())
	return fmt.Sprintf("%02d:%02d:%02d", s/3600, (s%3600)/60, s%60)
}
