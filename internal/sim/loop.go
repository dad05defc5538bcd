package sim

import (
	"time"

	"go.uber.org/zap"
)

// Ticker runs one logical tick. core/system.Runner satisfies it.
type Ticker interface {
	Tick(tick uint64)
}

type LoopOptions struct {
	TickDuration     time.Duration
	MaxTicksPerFrame int
}

// Loop is the fixed-timestep driver. The host calls Frame with the real time
// elapsed since its previous call; Loop converts that into whole ticks.
type Loop struct {
	ticker  Ticker
	opts    LoopOptions
	metrics *Metrics
	log     *zap.Logger

	acc     time.Duration
	tick    uint64
	stopped bool
}

func NewLoop(ticker Ticker, opts LoopOptions, metrics *Metrics, log *zap.Logger) *Loop {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.TickDuration <= 0 {
		opts.TickDuration = time.Second / 35
	}
	if opts.MaxTicksPerFrame <= 0 {
		opts.MaxTicksPerFrame = 1
	}
	return &Loop{ticker: ticker, opts: opts, metrics: metrics, log: log}
}

// Frame accumulates elapsed and runs at most MaxTicksPerFrame whole ticks.
// When the time left over is still worth a full frame of ticks the host has
// stalled and the backlog is dropped. It returns the number of ticks run.
func (l *Loop) Frame(elapsed time.Duration) int {
	if l.stopped {
		return 0
	}
	if elapsed > 0 {
		l.acc += elapsed
	}
	if l.metrics != nil {
		l.metrics.frames.Inc()
	}

	ran := 0
	for l.acc >= l.opts.TickDuration && ran < l.opts.MaxTicksPerFrame && !l.stopped {
		l.acc -= l.opts.TickDuration
		l.tick++
		l.ticker.Tick(l.tick)
		ran++
		if l.metrics != nil {
			l.metrics.ticks.Inc()
		}
	}

	if backlog := time.Duration(l.opts.MaxTicksPerFrame) * l.opts.TickDuration; l.acc >= backlog {
		l.log.Warn("tick loop stalled, dropping backlog",
			zap.Duration("backlog", l.acc),
			zap.Uint64("tick", l.tick))
		l.acc = 0
		if l.metrics != nil {
			l.metrics.stalls.Inc()
		}
	}
	return ran
}

// Stop makes every later Frame a no-op. A tick already running completes.
func (l *Loop) Stop() { l.stopped = true }

func (l *Loop) Stopped() bool { return l.stopped }

// Tick is the number of ticks run so far.
func (l *Loop) Tick() uint64 { return l.tick }

// Pending is the time accumulated but not yet spent on ticks.
func (l *Loop) Pending() time.Duration { return l.acc }
