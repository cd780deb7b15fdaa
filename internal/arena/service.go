package arena

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kdimtricp/videoarena/internal/models"
	"github.com/kdimtricp/videoarena/internal/provider"
	"github.com/kdimtricp/videoarena/internal/storage"
)

var (
	// ErrPanelBusy is returned when a run targets a panel that still owns an
	// in-flight generation task.
	ErrPanelBusy = errors.New("panel has a generation in progress")

	// ErrNotAwaitingConfirmation is returned when a confirmation arrives for
	// a panel that is not suspended on the quota prompt.
	ErrNotAwaitingConfirmation = errors.New("panel is not awaiting confirmation")

	ErrUnknownPanel = errors.New("unknown panel")
)

// Request carries one generation trigger's prompt and settings. Panels
// launched from the same request share it; it is never mutated after creation.
type Request struct {
	Prompt      string
	ImageBytes  []byte
	ImageMIME   string
	AspectRatio models.AspectRatio
	Duration    models.VideoDuration
}

// Selection binds a panel slot to the model that should fill it.
type Selection struct {
	Panel PanelID
	Model models.ModelType
}

// Service orchestrates up to two concurrent generation jobs, one per panel,
// normalizing both providers' progress and failure signals into the shared
// PanelState shape. Each panel's lifecycle is independent: one panel failing
// never cancels or alters its sibling.
type Service struct {
	providers  map[models.ModelFamily]provider.VideoProvider
	store      storage.Storage
	keys       *Keyring
	freeVeoKey string
	logger     *zap.Logger

	panels map[PanelID]*panel

	historyMu    sync.Mutex
	history      []models.VideoResult
	hasGenerated bool
}

func NewService(
	providers map[models.ModelFamily]provider.VideoProvider,
	store storage.Storage,
	keys *Keyring,
	freeVeoKey string,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if keys == nil {
		keys = NewKeyring()
	}

	return &Service{
		providers:  providers,
		store:      store,
		keys:       keys,
		freeVeoKey: freeVeoKey,
		logger:     logger,
		panels: map[PanelID]*panel{
			PanelLeft:  newPanel(PanelLeft),
			PanelRight: newPanel(PanelRight),
		},
	}
}

// RunGeneration fans out one generation task per selection and returns once
// the targeted panels are queued; the tasks themselves run in the background
// and report through the panels' update streams. ctx bounds the whole run.
func (s *Service) RunGeneration(ctx context.Context, req Request, selections []Selection) error {
	if err := s.validate(req, selections); err != nil {
		return err
	}

	targets := make([]*panel, 0, len(selections))
	for _, sel := range selections {
		p := s.panels[sel.Panel]
		if p.snapshot().Status.Busy() {
			return fmt.Errorf("%w: %s", ErrPanelBusy, sel.Panel)
		}
		targets = append(targets, p)
	}

	updates := make([]chan PanelState, len(targets))
	for i, p := range targets {
		updates[i] = p.reset()
	}

	go func() {
		var g errgroup.Group
		for i, sel := range selections {
			p := targets[i]
			ch := updates[i]
			sel := sel
			g.Go(func() error {
				s.runPanel(ctx, p, sel, req, ch)
				return nil
			})
		}
		g.Wait()
	}()

	return nil
}

// RunSingle regenerates one panel alone, reusing the identical per-task path.
// It exists so the user can re-run one side of a comparison after the other
// side already finished.
func (s *Service) RunSingle(ctx context.Context, req Request, sel Selection) error {
	return s.RunGeneration(ctx, req, []Selection{sel})
}

func (s *Service) validate(req Request, selections []Selection) error {
	if strings.TrimSpace(req.Prompt) == "" {
		return fmt.Errorf("prompt is required")
	}
	if !req.AspectRatio.Valid() {
		return fmt.Errorf("invalid aspect ratio: %s", req.AspectRatio)
	}
	if !req.Duration.Valid() {
		return fmt.Errorf("invalid duration: %s", req.Duration)
	}
	if len(selections) == 0 || len(selections) > len(s.panels) {
		return fmt.Errorf("expected 1 or 2 selections, got %d", len(selections))
	}

	seen := make(map[PanelID]bool, len(selections))
	for _, sel := range selections {
		if _, ok := s.panels[sel.Panel]; !ok {
			return fmt.Errorf("%w: %s", ErrUnknownPanel, sel.Panel)
		}
		if seen[sel.Panel] {
			return fmt.Errorf("panel selected twice: %s", sel.Panel)
		}
		seen[sel.Panel] = true
		if !sel.Model.Valid() {
			return fmt.Errorf("unknown model: %s", sel.Model)
		}
		if _, ok := s.providers[sel.Model.Family()]; !ok {
			return fmt.Errorf("no provider configured for model %s", sel.Model)
		}
	}
	return nil
}

// runPanel executes one full generation task for one panel, including the
// quota confirmation protocol, and always leaves the panel in a terminal
// state before closing its update stream. updates is this run's own channel
// from reset; closing the captured channel rather than the panel's current one
// keeps a finishing run from touching the stream of a run that was accepted
// the moment the terminal snapshot became visible.
func (s *Service) runPanel(ctx context.Context, p *panel, sel Selection, req Request, updates chan PanelState) {
	defer close(updates)

	prov := s.providers[sel.Model.Family()]
	job := provider.Job{
		Model:       sel.Model,
		Prompt:      req.Prompt,
		ImageBytes:  req.ImageBytes,
		ImageMIME:   req.ImageMIME,
		AspectRatio: req.AspectRatio,
		Duration:    req.Duration,
	}

	switch sel.Model.Family() {
	case models.FamilyVeo:
		job.APIKey = s.freeVeoKey
	case models.FamilySora:
		job.APIKey = s.keys.SoraKey()
	}

	filename, err := s.generateOnce(ctx, prov, job, p)

	// Veo only: a free-tier quota failure suspends the task until the user
	// decides whether to spend their own credential. One retry at most.
	var quotaErr *provider.QuotaExceededError
	if err != nil && sel.Model.Family() == models.FamilyVeo && errors.As(err, &quotaErr) {
		userKey := s.keys.GoogleKey()
		if userKey == "" {
			s.fail(p, "free tier quota exceeded and no API key is configured in settings")
			return
		}

		p.set(func(st *PanelState) {
			st.Status = StatusAwaitingConfirmation
			st.Message = "free tier quota exceeded, confirm to retry with your own API key"
		})

		accepted, confirmErr := s.awaitConfirmation(ctx, p)
		if confirmErr != nil {
			s.fail(p, confirmErr.Error())
			return
		}
		if !accepted {
			s.fail(p, "generation cancelled")
			return
		}

		p.set(func(st *PanelState) {
			st.Status = StatusGenerating
			st.Progress = 5
			st.Message = "retrying with your API key"
		})

		job.APIKey = userKey
		filename, err = s.generateOnce(ctx, prov, job, p)
	}

	if err != nil {
		s.logger.Error("generation failed",
			zap.String("panel", string(p.id)),
			zap.String("model", string(sel.Model)),
			zap.Error(err))
		s.fail(p, err.Error())
		return
	}

	s.complete(p, sel.Model, filename)
}

// generateOnce runs a single provider attempt and stores the downloaded clip,
// returning the artifact filename.
func (s *Service) generateOnce(ctx context.Context, prov provider.VideoProvider, job provider.Job, p *panel) (string, error) {
	report := func(u provider.ProgressUpdate) {
		p.set(func(st *PanelState) {
			switch u.Stage {
			case provider.StagePolling:
				st.Status = StatusPolling
			default:
				st.Status = StatusGenerating
			}
			st.Progress = u.Progress
			if u.Message != "" {
				st.Message = u.Message
			}
		})
	}

	body, err := provider.Generate(ctx, prov, job, report, s.logger)
	if err != nil {
		return "", err
	}
	defer body.Close()

	filename, err := s.store.SaveVideo(body)
	if err != nil {
		return "", fmt.Errorf("storing video artifact: %w", err)
	}
	return filename, nil
}

func (s *Service) awaitConfirmation(ctx context.Context, p *panel) (bool, error) {
	select {
	case accepted := <-p.confirm:
		return accepted, nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

func (s *Service) complete(p *panel, model models.ModelType, filename string) {
	// The panel owns at most one stored artifact; release the previous one
	// before installing the new result.
	p.mu.Lock()
	previous := p.artifact
	p.artifact = filename
	p.mu.Unlock()
	if previous != "" {
		if err := s.store.DeleteVideo(previous); err != nil {
			s.logger.Warn("failed to release previous artifact",
				zap.String("panel", string(p.id)),
				zap.String("artifact", previous),
				zap.Error(err))
		}
	}

	result := models.NewVideoResult("/videos/"+filename, model)
	p.set(func(st *PanelState) {
		st.Status = StatusCompleted
		st.Progress = 100
		st.Message = "generation complete"
		st.Result = result
		st.Error = ""
	})

	s.historyMu.Lock()
	s.history = append([]models.VideoResult{*result}, s.history...)
	s.hasGenerated = true
	s.historyMu.Unlock()

	s.logger.Info("generation completed",
		zap.String("panel", string(p.id)),
		zap.String("model", string(model)),
		zap.String("result_id", result.ID))
}

func (s *Service) fail(p *panel, message string) {
	p.set(func(st *PanelState) {
		st.Status = StatusFailed
		st.Error = message
		st.Result = nil
	})
}

// PanelState returns the current state of a panel.
func (s *Service) PanelState(id PanelID) (PanelState, error) {
	p, ok := s.panels[id]
	if !ok {
		return PanelState{}, fmt.Errorf("%w: %s", ErrUnknownPanel, id)
	}
	return p.snapshot(), nil
}

// Updates returns the panel's current run stream. The channel closes when the
// run reaches a terminal state; between runs it is already closed.
func (s *Service) Updates(id PanelID) (<-chan PanelState, error) {
	p, ok := s.panels[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPanel, id)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.updates, nil
}

// Confirm resolves a panel suspended on the quota prompt.
func (s *Service) Confirm(id PanelID, accepted bool) error {
	p, ok := s.panels[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownPanel, id)
	}
	if p.snapshot().Status != StatusAwaitingConfirmation {
		return ErrNotAwaitingConfirmation
	}

	select {
	case p.confirm <- accepted:
		return nil
	default:
		return ErrNotAwaitingConfirmation
	}
}

// History returns the session history, most recent first.
func (s *Service) History() []models.VideoResult {
	s.historyMu.Lock()
	defer s.historyMu.Unlock()
	out := make([]models.VideoResult, len(s.history))
	copy(out, s.history)
	return out
}

// HasGenerated reports whether at least one generation completed this
// session; the ratings view stays locked until it has.
func (s *Service) HasGenerated() bool {
	s.historyMu.Lock()
	defer s.historyMu.Unlock()
	return s.hasGenerated
}

// Keys exposes the in-memory credential ring for the settings surface.
func (s *Service) Keys() *Keyring {
	return s.keys
}
