package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/fixedtick/levelsim/internal/config"
	"github.com/fixedtick/levelsim/internal/core/event"
	coresys "github.com/fixedtick/levelsim/internal/core/system"
	"github.com/fixedtick/levelsim/internal/fixed"
	"github.com/fixedtick/levelsim/internal/level"
	"github.com/fixedtick/levelsim/internal/machine"
	"github.com/fixedtick/levelsim/internal/movement"
	"github.com/fixedtick/levelsim/internal/scripting"
	"github.com/fixedtick/levelsim/internal/sim"
	"github.com/fixedtick/levelsim/internal/system"
	"github.com/fixedtick/levelsim/internal/trig"
	"github.com/fixedtick/levelsim/internal/trigger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Startup display helpers ────────────────────────────────────────

func printBanner(levelName string) {
	fmt.Println()
	fmt.Println("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Println("\033[36;1m  │\033[0m              levelsim  v0.1.0             \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  │\033[0m     fixed-point level simulation core     \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
	fmt.Printf("  \033[1mlevel:\033[0m %s\n\n", levelName)
}

func printSection(title string) {
	lineLen := 46 - len(title) - 1
	if lineLen < 3 {
		lineLen = 3
	}
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(label string, count int) {
	numStr := fmt.Sprintf("%d", count)
	dotsLen := 42 - len(label) - len(numStr)
	if dotsLen < 3 {
		dotsLen = 3
	}
	fmt.Printf("  %s \033[90m%s\033[0m \033[32m%s\033[0m\n", label, strings.Repeat("·", dotsLen), numStr)
}

func printOK(msg string) {
	fmt.Printf("  \033[32m✓\033[0m %s\n", msg)
}

func printReady(msg string) {
	fmt.Printf("  \033[32m▶\033[0m %s\n", msg)
}

// ── Main simulation logic ─────────────────────────────────────────

func run() error {
	// 1. Load config
	cfgPath := "config/levelsim.toml"
	if p := os.Getenv("LEVELSIM_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	// 3. Level geometry
	lvl, err := level.Load(cfg.Sim.Level, log.Named("level"))
	if err != nil {
		return fmt.Errorf("load level: %w", err)
	}
	printBanner(lvl.Name)

	printSection("level")
	printStat("vertices", len(lvl.Vertices))
	printStat("lines", len(lvl.Lines))
	printStat("sectors", len(lvl.Sectors))
	printStat("subsectors", len(lvl.SubSectors))
	printStat("nodes", len(lvl.Nodes))
	printStat("things", len(lvl.Things))
	fmt.Println()

	// 4. Line specials, scripts and input
	printSection("data")
	opts := worldOptions(cfg)
	if cfg.Sim.Specials != "" {
		table, err := trigger.LoadTable(cfg.Sim.Specials)
		if err != nil {
			return fmt.Errorf("load specials: %w", err)
		}
		opts.Specials = table
		printStat("line specials", len(table))
	} else {
		printOK("built-in line specials")
	}

	opts.Tables = trig.New()
	scripts, err := scripting.NewEngine(cfg.Scripting.Dir, opts.Tables, log.Named("lua"))
	if err != nil {
		return fmt.Errorf("load scripts: %w", err)
	}
	defer scripts.Close()
	opts.Scripts = scripts
	printOK(fmt.Sprintf("Lua scripts loaded from %s", cfg.Scripting.Dir))

	var input sim.InputSource = sim.IdleInput{}
	if cfg.Sim.Input != "" {
		rec, err := sim.LoadRecordedInput(cfg.Sim.Input)
		if err != nil {
			return fmt.Errorf("load input: %w", err)
		}
		input = rec
		printOK(fmt.Sprintf("recorded input through tick %d", rec.Last()))
	}
	fmt.Println()

	// 5. World and tick pipeline
	w, err := sim.NewWorld(lvl, opts, log.Named("sim"))
	if err != nil {
		return fmt.Errorf("build world: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	metrics := sim.NewMetrics(reg)

	runner := coresys.NewRunner()
	system.RegisterAll(runner, w, input, metrics, log.Named("system"))
	watch(w, log.Named("events"))

	loop := sim.NewLoop(runner, sim.LoopOptions{
		TickDuration:     cfg.TickDuration(),
		MaxTicksPerFrame: cfg.Sim.MaxTicksPerFrame,
	}, metrics, log.Named("loop"))

	if cfg.Metrics.Enabled {
		srv := sim.ServeMetrics(cfg.Metrics.BindAddress, reg, log)
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(ctx)
		}()
		printOK(fmt.Sprintf("metrics on http://%s/metrics", cfg.Metrics.BindAddress))
	}

	// 6. Frame loop
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(cfg.Sim.FrameInterval)
	defer ticker.Stop()

	printSection("running")
	printStat("actors", w.Mobjs.Len())
	printStat("thinkers", w.Thinkers.Len())
	printReady(fmt.Sprintf("tick loop started (%d Hz, frame %s)", cfg.Sim.TickRate, cfg.Sim.FrameInterval))
	fmt.Println()

	last := time.Now()
	for {
		select {
		case now := <-ticker.C:
			loop.Frame(now.Sub(last))
			last = now
			if cfg.Sim.MaxTicks > 0 && loop.Tick() >= cfg.Sim.MaxTicks {
				loop.Stop()
				log.Info("tick limit reached", zap.Uint64("tick", loop.Tick()))
				return nil
			}
		case sig := <-shutdownCh:
			loop.Stop()
			log.Info("shutdown signal received",
				zap.String("signal", sig.String()),
				zap.Uint64("tick", loop.Tick()))
			return nil
		}
	}
}

// worldOptions converts the file configuration into simulation constants.
func worldOptions(cfg *config.Config) sim.Options {
	u := fixed.FromInt[int]
	p, d, pl := cfg.Physics, cfg.Doors, cfg.Platforms

	opts := sim.DefaultOptions()
	opts.Movement = movement.Params{
		MaxStep:   u(p.MaxStepHeight),
		MaxMove:   u(p.MaxMove),
		Friction:  fixed.Fixed(p.FrictionRaw),
		StopSpeed: fixed.Fixed(p.StopSpeedRaw),
		Gravity:   fixed.Fixed(p.GravityRaw),
	}
	opts.Machines = machine.Config{
		DoorSpeed:  [4]fixed.Fixed{u(d.Speed), u(d.Speed), u(d.FastSpeed), u(d.VeryFastSpeed)},
		DoorWait:   d.WaitTicks,
		DoorReopen: d.CloseWaitOpenTicks,
		PlatSpeed:  [4]fixed.Fixed{u(pl.Speed), u(pl.LiftSpeed), u(pl.FastSpeed), u(pl.FastSpeed)},
		PlatWait:   pl.WaitTicks,
	}
	opts.Triggers = trigger.Params{UseRange: u(p.UseRange)}
	opts.PlayerRadius = u(p.PlayerRadius)
	opts.PlayerHeight = u(p.PlayerHeight)
	opts.MonsterRadius = u(p.MonsterRadius)
	opts.ForwardMove = fixed.Fixed(p.ForwardMove)
	opts.SideMove = fixed.Fixed(p.SideMove)
	return opts
}

// watch logs the outbound events at debug level.
func watch(w *sim.World, log *zap.Logger) {
	event.Subscribe(w.Bus, func(ev event.HeightChanged) {
		log.Debug("height changed",
			zap.Uint64("tick", ev.Tick),
			zap.Int("sector", ev.Sector),
			zap.Stringer("surface", ev.Surface),
			zap.Int32("height_raw", int32(ev.Height)))
	})
	event.Subscribe(w.Bus, func(ev event.LineActivated) {
		log.Info("line activated",
			zap.Uint64("tick", ev.Tick),
			zap.Int("line", ev.Line),
			zap.Uint64("entity", uint64(ev.Entity)),
			zap.Bool("walk", ev.Walk))
	})
	event.Subscribe(w.Bus, func(ev event.EntityRemoved) {
		log.Debug("entity removed", zap.Uint64("tick", ev.Tick), zap.Uint64("entity", uint64(ev.Entity)))
	})
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
