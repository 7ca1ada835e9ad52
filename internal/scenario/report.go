package scenario

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/napolitain/citysim/internal/models"
	"github.com/napolitain/citysim/internal/sim"
)

// PromptStatus is the final state of a prompt
type PromptStatus string

const (
	PromptPending  PromptStatus = "pending"
	PromptAccepted PromptStatus = "accepted"
	PromptDeclined PromptStatus = "declined"
)

// ActionOutcome records one applied action
type ActionOutcome struct {
	At          time.Duration     `json:"at"`
	AppliedAt   time.Duration     `json:"appliedAt"`
	Kind        models.ActionKind `json:"kind"`
	Description string            `json:"description"`
	Error       string            `json:"error,omitempty"`
}

// OK reports whether the action succeeded
func (o ActionOutcome) OK() bool { return o.Error == "" }

// RevenueCredit is one revenue pass
type RevenueCredit struct {
	Clock  time.Duration `json:"clock"`
	Amount float64       `json:"amount"`
}

// PromptOutcome records how a prompt was answered
type PromptOutcome struct {
	Kind       sim.PromptKind `json:"kind"`
	Cost       float64        `json:"cost"`
	RaisedAt   time.Duration  `json:"raisedAt"`
	ResolvedAt time.Duration  `json:"resolvedAt,omitempty"`
	Status     PromptStatus   `json:"status"`
}

// StageReport records an activated stage
type StageReport struct {
	Stage       string        `json:"stage"`
	ActivatedAt time.Duration `json:"activatedAt"`
}

// Report is the deterministic outcome of a scenario run
type Report struct {
	Name         string           `json:"name"`
	Budget       float64          `json:"budget"`
	Population   int              `json:"population"`
	Buildings    int              `json:"buildings"`
	Clock        time.Duration    `json:"clock"`
	TotalRevenue float64          `json:"totalRevenue"`
	Stages       []StageReport    `json:"stages"`
	Actions      []ActionOutcome  `json:"actions"`
	Prompts      []*PromptOutcome `json:"prompts"`
	Revenue      []RevenueCredit  `json:"revenue"`
	Burned       []models.Coord   `json:"burned,omitempty"`
}

// Failed returns the actions that returned an error
func (r *Report) Failed() []ActionOutcome {
	var failed []ActionOutcome
	for _, a := range r.Actions {
		if !a.OK() {
			failed = append(failed, a)
		}
	}
	return failed
}

// Hash returns a SHA-256 of the JSON report, for comparing runs
func (r *Report) Hash() (string, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
