package arena

import (
	"sync"

	"github.com/kdimtricp/videoarena/internal/models"
)

type PanelID string

const (
	PanelLeft  PanelID = "left"
	PanelRight PanelID = "right"
)

func (id PanelID) Valid() bool {
	return id == PanelLeft || id == PanelRight
}

type PanelStatus string

const (
	StatusIdle                 PanelStatus = "idle"
	StatusQueued               PanelStatus = "queued"
	StatusGenerating           PanelStatus = "generating"
	StatusPolling              PanelStatus = "polling"
	StatusAwaitingConfirmation PanelStatus = "awaiting_confirmation"
	StatusCompleted            PanelStatus = "completed"
	StatusFailed               PanelStatus = "failed"
)

// Terminal reports whether no further automatic transition occurs.
func (s PanelStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Busy reports whether a generation task currently owns the panel.
func (s PanelStatus) Busy() bool {
	return s != StatusIdle && !s.Terminal()
}

// PanelState is the observable per-slot state consumed by the display layer.
// Result is non-nil iff Status is completed; Error is non-empty iff failed.
type PanelState struct {
	Status   PanelStatus         `json:"status"`
	Progress int                 `json:"progress"`
	Message  string              `json:"message"`
	Result   *models.VideoResult `json:"result"`
	Error    string              `json:"error,omitempty"`
}

// panel owns one generation slot. The updates channel is recreated on every
// run and closed once the run reaches a terminal state, so a consumer draining
// it observes exactly one run's transitions.
type panel struct {
	id PanelID

	mu       sync.Mutex
	state    PanelState
	updates  chan PanelState
	confirm  chan bool
	artifact string
}

func newPanel(id PanelID) *panel {
	updates := make(chan PanelState)
	close(updates)

	return &panel{
		id:      id,
		state:   PanelState{Status: StatusIdle},
		updates: updates,
		confirm: make(chan bool, 1),
	}
}

// set applies a mutation to the panel state under the lock and publishes a
// snapshot. Sends never block: a slow or absent consumer only loses
// intermediate snapshots, the current state stays queryable.
func (p *panel) set(mutate func(*PanelState)) PanelState {
	p.mu.Lock()
	mutate(&p.state)
	snapshot := p.state
	ch := p.updates
	p.mu.Unlock()

	select {
	case ch <- snapshot:
	default:
	}
	return snapshot
}

func (p *panel) snapshot() PanelState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// reset prepares the panel for a new run: idle first, then queued, with a
// fresh updates stream and a drained confirmation channel. It returns the new
// run's channel; the run that receives it is its sole owner and the only one
// allowed to close it. A panel turns observably non-busy at the terminal set,
// before the previous run's goroutine has finished, so closing through
// p.updates would let that late goroutine close a successor run's channel.
func (p *panel) reset() chan PanelState {
	p.mu.Lock()
	updates := make(chan PanelState, 64)
	p.state = PanelState{Status: StatusIdle}
	p.updates = updates
	select {
	case <-p.confirm:
	default:
	}
	p.mu.Unlock()

	p.set(func(s *PanelState) {
		s.Status = StatusQueued
		s.Message = "queued"
	})
	return updates
}
