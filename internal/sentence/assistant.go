package sentence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/metalagman/paradox/internal/llm"
	"github.com/metalagman/paradox/internal/openaiapi"
	"github.com/rs/zerolog/log"
)

const (
	// DefaultPollInterval is the fixed delay between run status checks.
	DefaultPollInterval = 300 * time.Millisecond
	// DefaultMaxWait caps the total time spent waiting for a run.
	DefaultMaxWait = 25 * time.Second
)

const (
	runStatusQueued     = "queued"
	runStatusInProgress = "in_progress"
	runStatusCompleted  = "completed"
)

// ThreadClient is the assistants API surface used by AssistantGenerator.
type ThreadClient interface {
	CreateThread(ctx context.Context) (string, error)
	AddUserMessage(ctx context.Context, threadID, text string) error
	StartRun(ctx context.Context, threadID, assistantID string) (openaiapi.Run, error)
	GetRun(ctx context.Context, threadID, runID string) (openaiapi.Run, error)
	LatestMessageText(ctx context.Context, threadID string) (string, error)
}

// AssistantGenerator produces a sentence through a thread, message and run of a
// pre-configured assistant, polling the run at a fixed interval.
type AssistantGenerator struct {
	Client       ThreadClient
	AssistantID  string
	Fallback     string
	PollInterval time.Duration
	MaxWait      time.Duration
}

// Generate implements Generator.
func (g *AssistantGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	threadID, err := g.Client.CreateThread(ctx)
	if err != nil {
		return "", err
	}
	if err := g.Client.AddUserMessage(ctx, threadID, prompt); err != nil {
		return "", err
	}
	run, err := g.Client.StartRun(ctx, threadID, g.AssistantID)
	if err != nil {
		return "", err
	}

	run, err = g.waitForRun(ctx, threadID, run)
	if err != nil {
		return "", err
	}
	if run.Status != runStatusCompleted {
		log.Warn().Str("thread_id", threadID).Str("run_id", run.ID).Str("status", run.Status).Msg("assistant run ended without completing")
	}

	text, err := g.Client.LatestMessageText(ctx, threadID)
	if err != nil {
		if !errors.Is(err, llm.ErrNoOutputText) {
			return "", err
		}
		log.Warn().Err(err).Str("thread_id", threadID).Msg("thread had no extractable text, using fallback sentence")
		text = ""
	}

	return Normalize(text, fallbackOr(g.Fallback)), nil
}

func (g *AssistantGenerator) waitForRun(ctx context.Context, threadID string, run openaiapi.Run) (openaiapi.Run, error) {
	interval := g.PollInterval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	maxWait := g.MaxWait
	if maxWait <= 0 {
		maxWait = DefaultMaxWait
	}

	deadline := time.NewTimer(maxWait)
	defer deadline.Stop()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	polls := 0
	for run.Status == runStatusQueued || run.Status == runStatusInProgress {
		select {
		case <-ctx.Done():
			return run, ctx.Err()
		case <-deadline.C:
			return run, fmt.Errorf("run %s still %s after %s (%d polls): %w", run.ID, run.Status, maxWait, polls, ErrGenerationTimedOut)
		case <-ticker.C:
		}

		next, err := g.Client.GetRun(ctx, threadID, run.ID)
		if err != nil {
			return run, err
		}
		run = next
		polls++
		log.Debug().Str("run_id", run.ID).Str("status", run.Status).Int("poll", polls).Msg("polled assistant run")
	}
	return run, nil
}
