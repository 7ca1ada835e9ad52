package sim

// StageView is the external view of one stage machine
type StageView struct {
	Stage            string  `json:"stage"`
	Active           bool    `json:"active"`
	ThresholdMinutes float64 `json:"thresholdMinutes"`
	ActivatedAt      float64 `json:"activatedAtSeconds,omitempty"`
}

// Snapshot is a read-only copy of the externally visible city state
type Snapshot struct {
	Size            int         `json:"size"`
	Budget          float64     `json:"budget"`
	Population      int         `json:"population"`
	ClockSeconds    float64     `json:"clockSeconds"`
	CooldownSeconds float64     `json:"cooldownSeconds"`
	Stages          []StageView `json:"stages"`
	Buildings       []Building  `json:"buildings"`
	Prompts         []Prompt    `json:"prompts"`
}

// Snapshot copies the current state
func (c *City) Snapshot() Snapshot {
	s := Snapshot{
		Size:            c.Size(),
		Budget:          c.budget,
		Population:      c.Population(),
		ClockSeconds:    c.state.Clock.Seconds(),
		CooldownSeconds: c.state.Cooldown.Seconds(),
		Buildings:       []Building{},
		Prompts:         c.PendingPrompts(),
	}
	for _, stage := range AllStages() {
		st := c.state.Timeline.State(stage)
		view := StageView{
			Stage:            stage.String(),
			Active:           st.Active(),
			ThresholdMinutes: st.Threshold.Minutes(),
		}
		if st.Active() {
			view.ActivatedAt = st.ActivatedAt.Seconds()
		}
		s.Stages = append(s.Stages, view)
	}
	for _, b := range c.Buildings() {
		s.Buildings = append(s.Buildings, *b)
	}
	if s.Prompts == nil {
		s.Prompts = []Prompt{}
	}
	return s
}
