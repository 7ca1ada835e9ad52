package scenario

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/napolitain/citysim/internal/models"
	"github.com/napolitain/citysim/internal/sim"
)

// ctxCheckEvery is how many steps run between context checks
const ctxCheckEvery = 600

// Runner plays a scenario against a city, one step at a time
type Runner struct {
	city     *sim.City
	scenario *models.Scenario
	queue    *EventQueue
	logger   *slog.Logger

	// OnStep, when set, is called after every step
	OnStep func(c *sim.City)

	report  *Report
	outcome map[string]*PromptOutcome
	done    bool
}

// NewRunner schedules every scripted action against city. The runner
// subscribes to the city's events to build its report.
func NewRunner(city *sim.City, s *models.Scenario, logger *slog.Logger) (*Runner, error) {
	if err := models.ValidateScenario(s); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	r := &Runner{
		city:     city,
		scenario: s,
		queue:    NewEventQueue(),
		logger:   logger,
		report:   &Report{Name: s.Name},
		outcome:  make(map[string]*PromptOutcome),
	}
	for i, sa := range s.Actions {
		a, err := NewAction(sa)
		if err != nil {
			return nil, fmt.Errorf("action %d: %w", i, err)
		}
		r.queue.Push(sa.At, a)
	}
	city.Subscribe(sim.ObserverFunc(r.observe))
	return r, nil
}

// Run steps the city until the scenario duration is reached. Due actions
// are applied and open prompts answered before each step.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	for steps := 0; ; steps++ {
		if steps%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("scenario %s interrupted at %s: %w", r.scenario.Name, r.city.Clock(), err)
			}
		}
		if !r.Next() {
			break
		}
	}
	return r.Report(), nil
}

// Next applies due actions, answers prompts and runs one step. It returns
// false once the scenario duration has been reached; the city is not
// advanced past it.
func (r *Runner) Next() bool {
	if r.done {
		return false
	}
	r.applyDue()
	r.answerPrompts()
	if r.city.Clock() >= r.scenario.Duration {
		r.done = true
		r.finish()
		return false
	}

	step := r.city.Config().StepDuration
	r.city.Simulate(min(step, r.scenario.Duration-r.city.Clock()))
	if r.OnStep != nil {
		r.OnStep(r.city)
	}
	return true
}

// Done reports whether the scenario has finished
func (r *Runner) Done() bool { return r.done }

// Report returns the run report. Final totals are filled in once the
// scenario is done.
func (r *Runner) Report() *Report { return r.report }

func (r *Runner) applyDue() {
	now := r.city.Clock()
	for _, e := range r.queue.PopDue(now) {
		outcome := ActionOutcome{
			At:          e.Time,
			AppliedAt:   now,
			Kind:        e.Action.Kind(),
			Description: e.Action.Description(),
		}
		if err := e.Action.Apply(r.city); err != nil {
			outcome.Error = err.Error()
			r.logger.Debug("scenario action failed", "action", outcome.Description, "clock", now, "error", err)
		}
		r.report.Actions = append(r.report.Actions, outcome)
	}
}

func (r *Runner) answerPrompts() {
	for _, p := range r.city.PendingPrompts() {
		err := r.city.ResolvePrompt(p.ID, r.scenario.AcceptPrompts)
		if errors.Is(err, sim.ErrInsufficientFunds) {
			// stays open; retried once the budget allows
			continue
		}
		if err != nil {
			r.logger.Warn("resolving prompt", "prompt", p.ID, "error", err)
		}
	}
}

func (r *Runner) observe(e sim.Event) {
	switch e.Kind {
	case sim.EventRevenueCredited:
		r.report.Revenue = append(r.report.Revenue, RevenueCredit{Clock: e.Clock, Amount: e.Amount})
		r.report.TotalRevenue += e.Amount
	case sim.EventPromptRaised:
		po := &PromptOutcome{Kind: e.Prompt.Kind, Cost: e.Prompt.Cost, RaisedAt: e.Clock, Status: PromptPending}
		r.outcome[e.Prompt.ID] = po
		r.report.Prompts = append(r.report.Prompts, po)
	case sim.EventPromptResolved:
		if po, ok := r.outcome[e.Prompt.ID]; ok {
			po.ResolvedAt = e.Clock
			po.Status = PromptDeclined
			if e.Accepted {
				po.Status = PromptAccepted
			}
		}
	case sim.EventBuildingBurned:
		r.report.Burned = append(r.report.Burned, e.Coord)
	}
}

func (r *Runner) finish() {
	c := r.city
	r.report.Budget = c.Budget()
	r.report.Population = c.Population()
	r.report.Clock = c.Clock()
	r.report.Buildings = len(c.Buildings())

	state := c.State()
	for _, s := range state.Timeline.ActiveStages() {
		r.report.Stages = append(r.report.Stages, StageReport{
			Stage:       s.String(),
			ActivatedAt: state.Timeline.State(s).ActivatedAt,
		})
	}
}

// Run is a convenience wrapper: build a city from cfg and play s on it
func Run(ctx context.Context, cfg *models.Config, s *models.Scenario, opts ...sim.Option) (*Report, *sim.City, error) {
	city, err := sim.NewCity(cfg, opts...)
	if err != nil {
		return nil, nil, err
	}
	r, err := NewRunner(city, s, nil)
	if err != nil {
		return nil, nil, err
	}
	report, err := r.Run(ctx)
	if err != nil {
		return nil, nil, err
	}
	return report, city, nil
}

// Elapsed formats a clock value for reports
func Elapsed(d time.Duration) string {
	return d.Truncate(time.Second).String()
}
