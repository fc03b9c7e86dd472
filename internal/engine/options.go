package engine

import "time"

// Default pacing delays used when a round is streamed to a client.
const (
	DefaultCastDelay       = 600 * time.Millisecond
	DefaultReactionDelay   = 300 * time.Millisecond
	DefaultPostEffectDelay = 200 * time.Millisecond
)

// Options controls pacing and logging of a round. Delays only slow the round
// down for presentation; zero delays produce identical results.
type Options struct {
	CastDelay       time.Duration
	ReactionDelay   time.Duration
	PostEffectDelay time.Duration
	// SpeedMultiplier divides every delay. Values <= 0 disable pacing.
	SpeedMultiplier float64
	// Quiet suppresses per-step debug logging.
	Quiet bool
	// Priority decides who acts first on ties next round. Nil uses
	// LowerHealthFirst.
	Priority PriorityPolicy
	// Sleep replaces time.Sleep, mainly for tests.
	Sleep func(time.Duration)
	// OnStep, when set, sees every step as it is emitted. Seq is relative to
	// the round.
	OnStep func(Step)
}

// DefaultOptions returns presentation pacing at normal speed.
func DefaultOptions() Options {
	return Options{
		CastDelay:       DefaultCastDelay,
		ReactionDelay:   DefaultReactionDelay,
		PostEffectDelay: DefaultPostEffectDelay,
		SpeedMultiplier: 1,
	}
}

// Instant returns options with every delay set to zero and logging quiet,
// for simulations.
func Instant() Options {
	return Options{Quiet: true}
}

func (o Options) pause(d time.Duration) {
	if d <= 0 || o.SpeedMultiplier <= 0 {
		return
	}
	scaled := time.Duration(float64(d) / o.SpeedMultiplier)
	if scaled <= 0 {
		return
	}
	if o.Sleep != nil {
		o.Sleep(scaled)
		return
	}
	time.Sleep(scaled)
}

func (o Options) priorityPolicy() PriorityPolicy {
	if o.Priority == nil {
		return LowerHealthFirst
	}
	return o.Priority
}
