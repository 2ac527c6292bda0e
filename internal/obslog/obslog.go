// Package obslog carries fit-time progress reporting out of the training
// loop and into an injected sink, replacing the source's global
// console-logging/progress-iterator coupling (see design notes on
// observability). Callers that don't care about progress use Noop; the
// CLI and long-running fits use ZerologObserver.
package obslog

import (
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// RoundStats summarizes one accepted merge round of a training loop.
type RoundStats struct {
	RunID         string
	Round         int
	AcceptedPairs int
	CorpusTokens  int
	Elapsed       time.Duration
}

// RoundObserver receives progress notifications during Fit.
type RoundObserver interface {
	OnRound(stats RoundStats)
	OnProgress(n, total int)
}

// Noop discards every notification. It is the zero value default so Fit
// never requires a caller to wire an observer.
type Noop struct{}

func (Noop) OnRound(RoundStats)  {}
func (Noop) OnProgress(int, int) {}

// ZerologObserver logs round and progress events through zerolog, stamping
// every line from a single Fit run with a shared RunID for correlation.
type ZerologObserver struct {
	logger zerolog.Logger
	runID  string
}

// NewZerologObserver returns an observer writing structured logs to
// stderr, timestamped, with a fresh RunID.
func NewZerologObserver() *ZerologObserver {
	return &ZerologObserver{
		logger: zerolog.New(os.Stderr).With().Timestamp().Logger(),
		runID:  uuid.NewString(),
	}
}

func (z *ZerologObserver) OnRound(stats RoundStats) {
	stats.RunID = z.runID
	z.logger.Info().
		Str("run_id", stats.RunID).
		Int("round", stats.Round).
		Int("accepted_pairs", stats.AcceptedPairs).
		Int("corpus_tokens", stats.CorpusTokens).
		Dur("elapsed", stats.Elapsed).
		Msg("merge round complete")
}

func (z *ZerologObserver) OnProgress(n, total int) {
	z.logger.Debug().
		Str("run_id", z.runID).
		Int("n", n).
		Int("total", total).
		Msg("fit progress")
}
