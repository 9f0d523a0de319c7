// internal/chain/view.go
//
// Read-only presentation snapshot of an Orchestrator.
// The current target is only revealed once its round is over.

package chain

import (
	"time"

	"github.com/robalobadob/hurdle/internal/game"
)

// RoundView is the player-facing state of the current round. TargetWord stays
// empty until the round is over.
type RoundView struct {
	HurdleNumber      int              `json:"hurdleNumber"`
	Guesses           []game.Guess     `json:"guesses"`
	MaxAttempts       int              `json:"maxAttempts"`
	RemainingAttempts int              `json:"remainingAttempts"`
	Status            game.RoundStatus `json:"status"`
	HardMode          bool             `json:"hardMode"`
	TargetWord        string           `json:"targetWord,omitempty"`
}

// View is a read-only copy of everything a presentation layer needs.
// Mutating it never affects the orchestrator.
type View struct {
	SessionID           string            `json:"sessionId"`
	StartTime           time.Time         `json:"startTime"`
	EndTime             *time.Time        `json:"endTime,omitempty"`
	Active              bool              `json:"active"`
	CurrentHurdleNumber int               `json:"currentHurdleNumber"`
	CompletedCount      int               `json:"completedCount"`
	TotalScore          int               `json:"totalScore"`
	CompletedHurdles    []CompletedHurdle `json:"completedHurdles"`
	Round               *RoundView        `json:"round,omitempty"`
	EndReason           EndReason         `json:"endReason,omitempty"`
	FinalAnswer         string            `json:"finalAnswer,omitempty"`
}

// View builds a presentation snapshot.
func (o *Orchestrator) View() View {
	v := View{
		CurrentHurdleNumber: o.state.CurrentHurdleNumber(),
		CompletedCount:      o.state.CompletedCount(),
		TotalScore:          o.state.TotalScore(),
		CompletedHurdles:    o.state.CompletedHurdles(),
	}
	if o.session != nil {
		s := o.session.Copy()
		v.SessionID = s.ID
		v.StartTime = s.StartTime
		v.EndTime = s.EndTime
		v.Active = !s.Closed()
		v.EndReason = s.EndReason
		v.FinalAnswer = s.FinalAnswer
	}
	if r := o.controller.Round(); r != nil {
		hurdle := o.state.CurrentHurdleNumber()
		if r == o.lastCompleted {
			hurdle--
		}
		rv := &RoundView{
			HurdleNumber:      hurdle,
			Guesses:           r.Guesses(),
			MaxAttempts:       r.MaxAttempts(),
			RemainingAttempts: r.RemainingAttempts(),
			Status:            r.Status(),
			HardMode:          o.controller.HardMode(),
		}
		if r.IsOver() {
			rv.TargetWord = r.Target()
		}
		v.Round = rv
	}
	return v
}
