package sim

import "time"

// Step runs n ticks of the configured step duration
func (c *City) Step(n int) {
	for i := 0; i < n; i++ {
		c.tick(c.cfg.StepDuration)
	}
}

// Simulate advances the city by delta. The delta is split into ticks of at
// most one step, so Simulate(n*step) and Step(n) leave identical cities.
func (c *City) Simulate(delta time.Duration) {
	step := c.cfg.StepDuration
	for delta > 0 {
		d := min(delta, step)
		c.tick(d)
		delta -= d
	}
}

func (c *City) tick(delta time.Duration) {
	fired := c.state.Advance(delta)

	if c.state.Timeline.NoticeDue(c.state.Clock) {
		c.emit(Event{Kind: EventNotice, Message: robberyNotice})
	}
	for _, stage := range fired {
		c.activate(stage)
	}

	for _, s := range c.services {
		s.Simulate(c, delta)
	}

	c.grid.Each(func(t *Tile) {
		t.simulate(c, delta)
	})

	if c.state.RevenueDue(c.cfg.RevenueInterval) {
		c.UpdateBudget()
	}
}

// activate runs the one-shot side effects of a stage
func (c *City) activate(stage Stage) {
	c.emit(Event{Kind: EventStageActivated, Stage: stage, Message: stageNotices[stage]})

	switch stage {
	case StagePlague:
		c.raise(PromptVaccine, c.cfg.Prices.Vaccine)
	case StageMarketDeduction:
		c.raise(PromptCashPayment, c.cfg.Prices.CashPayment)
	case StageFestival:
		if c.state.MarkFestivalPaid() {
			c.credit(c.cfg.Prices.FestivalCredit)
			c.emit(Event{Kind: EventNotice, Amount: c.cfg.Prices.FestivalCredit, Message: "festival grant credited"})
		}
	}
}

func (c *City) raise(kind PromptKind, cost float64) {
	if c.state.Resolved(kind) {
		return
	}
	p := c.prompts.raise(kind, promptMessage(kind, cost), cost, c.state.Clock)
	c.emit(Event{Kind: EventPromptRaised, Prompt: &p, Amount: cost, Message: p.Message})
}

// UpdateBudget runs a revenue pass now and credits the result
func (c *City) UpdateBudget() float64 {
	report := c.revenue.Compute(c.grid, c.proximity, &c.state)
	c.state.MarkRevenue()
	c.lastRevenue = report

	for _, coord := range report.Burned {
		e := Event{Kind: EventBuildingBurned, Coord: coord, Occupied: true}
		if t, ok := c.grid.Tile(coord.X, coord.Y); ok && t.Occupied() {
			e.Building = t.Building().Type
		}
		c.emit(e)
	}

	c.credit(report.Total)
	c.emit(Event{Kind: EventRevenueCredited, Amount: report.Total})
	return report.Total
}
