package sim

import (
	"fmt"
	"time"
)

// PromptKind identifies a player decision
type PromptKind string

const (
	PromptVaccine     PromptKind = "vaccine_purchase"
	PromptCashPayment PromptKind = "cash_payment"
)

// Prompt is a pending decision raised by a stage. The tick loop never waits
// on it; the player answers through City.ResolvePrompt.
type Prompt struct {
	ID       string        `json:"id"`
	Kind     PromptKind    `json:"kind"`
	Message  string        `json:"message"`
	Cost     float64       `json:"cost"`
	RaisedAt time.Duration `json:"raisedAt"`
}

// promptQueue holds open prompts in raise order and remembers closed ids
type promptQueue struct {
	open   []Prompt
	closed map[string]bool
	seq    int
	nextID func() string
}

func newPromptQueue(nextID func() string) promptQueue {
	return promptQueue{closed: make(map[string]bool), nextID: nextID}
}

func (q *promptQueue) raise(kind PromptKind, message string, cost float64, now time.Duration) Prompt {
	q.seq++
	id := fmt.Sprintf("prompt-%d", q.seq)
	if q.nextID != nil {
		id = q.nextID()
	}
	p := Prompt{ID: id, Kind: kind, Message: message, Cost: cost, RaisedAt: now}
	q.open = append(q.open, p)
	return p
}

// find returns the open prompt, or the error explaining why there is none
func (q *promptQueue) find(id string) (Prompt, error) {
	for _, p := range q.open {
		if p.ID == id {
			return p, nil
		}
	}
	if q.closed[id] {
		return Prompt{}, fmt.Errorf("prompt %s: %w", id, ErrPromptClosed)
	}
	return Prompt{}, fmt.Errorf("prompt %s: %w", id, ErrUnknownPrompt)
}

func (q *promptQueue) close(id string) {
	for i, p := range q.open {
		if p.ID == id {
			q.open = append(q.open[:i:i], q.open[i+1:]...)
			q.closed[id] = true
			return
		}
	}
}

func (q *promptQueue) pending() []Prompt {
	return append([]Prompt(nil), q.open...)
}
