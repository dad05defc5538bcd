// Package sim is the simulation context and the fixed-timestep tick loop.
//
// World owns every per-level component: trig tables, geometry and its BSP
// index, the mover, the sector machines, the trigger system, the thinker
// scheduler, the outbound event bus and the entity stores. The per-phase
// operations here are invoked by the systems in internal/system, in the
// order fixed by the core runner.
package sim

import (
	"errors"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/fixedtick/levelsim/internal/bsp"
	"github.com/fixedtick/levelsim/internal/core/ecs"
	"github.com/fixedtick/levelsim/internal/core/event"
	"github.com/fixedtick/levelsim/internal/fixed"
	"github.com/fixedtick/levelsim/internal/level"
	"github.com/fixedtick/levelsim/internal/machine"
	"github.com/fixedtick/levelsim/internal/mobj"
	"github.com/fixedtick/levelsim/internal/movement"
	"github.com/fixedtick/levelsim/internal/scripting"
	"github.com/fixedtick/levelsim/internal/thinker"
	"github.com/fixedtick/levelsim/internal/trig"
	"github.com/fixedtick/levelsim/internal/trigger"
)

var (
	ErrOutsideLevel  = errors.New("position resolves to no sector")
	ErrUnknownScript = errors.New("unknown thinker script")
)

type Options struct {
	Movement movement.Params
	Machines machine.Config
	Triggers trigger.Params
	Specials trigger.Table // nil means the built-in table

	PlayerRadius  fixed.Fixed
	PlayerHeight  fixed.Fixed
	MonsterRadius fixed.Fixed
	ForwardMove   fixed.Fixed // thrust per unit of Command.Forward
	SideMove      fixed.Fixed // thrust per unit of Command.Strafe

	Scripts *scripting.Engine // optional
	Tables  *trig.Tables      // shared with Scripts; nil builds a fresh set
}

func DefaultOptions() Options {
	return Options{
		Movement:      movement.DefaultParams(),
		Machines:      machine.DefaultConfig(),
		Triggers:      trigger.DefaultParams(),
		PlayerRadius:  fixed.FromInt(16),
		PlayerHeight:  fixed.FromInt(56),
		MonsterRadius: fixed.FromInt(20),
		ForwardMove:   0x800,
		SideMove:      0x600,
	}
}

// Controller marks an input-driven actor.
type Controller struct {
	Player  int
	useHeld bool
}

// Brain ties an actor to its thinker registration.
type Brain struct {
	Script string
	Handle thinker.Handle
}

// trail is an actor's position at the start of the current tick.
type trail struct {
	X, Y fixed.Fixed
}

type World struct {
	Tables   *trig.Tables
	Level    *level.Level
	Index    *bsp.Index
	Mover    *movement.Mover
	Machines *machine.Manager
	Triggers *trigger.System
	Thinkers *thinker.Scheduler[ecs.EntityID]
	Bus      *event.Bus
	Entities *ecs.World

	Mobjs       *ecs.PtrComponentStore[mobj.Mobj]
	Controllers *ecs.PtrComponentStore[Controller]
	Brains      *ecs.PtrComponentStore[Brain]
	trails      *ecs.PtrComponentStore[trail]

	opts    Options
	scripts *scripting.Engine
	log     *zap.Logger
	tick    uint64
	players int
	removed []ecs.EntityID
}

// NewWorld builds the simulation context for lvl and spawns its things.
// Things that cannot be placed are reported and skipped.
func NewWorld(lvl *level.Level, opts Options, log *zap.Logger) (*World, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.Specials == nil {
		table, err := trigger.DefaultTable()
		if err != nil {
			return nil, fmt.Errorf("line specials: %w", err)
		}
		opts.Specials = table
	}
	if opts.Tables == nil {
		opts.Tables = trig.New()
	}

	w := &World{
		Tables:   opts.Tables,
		Level:    lvl,
		Bus:      event.NewBus(),
		Entities: ecs.NewWorld(),
		Thinkers: thinker.New[ecs.EntityID](),

		Mobjs:       ecs.NewPtrComponentStore[mobj.Mobj](),
		Controllers: ecs.NewPtrComponentStore[Controller](),
		Brains:      ecs.NewPtrComponentStore[Brain](),
		trails:      ecs.NewPtrComponentStore[trail](),

		opts:    opts,
		scripts: opts.Scripts,
		log:     log,
	}
	reg := w.Entities.Registry()
	reg.Register(w.Mobjs)
	reg.Register(w.Controllers)
	reg.Register(w.Brains)
	reg.Register(w.trails)

	w.Index = bsp.New(lvl, log.Named("bsp"))
	w.Mover = movement.New(lvl, w.Index, opts.Movement, log.Named("movement"))
	w.Machines = machine.NewManager(lvl, opts.Machines, log.Named("machine"))
	w.Machines.SetObstruction(w)
	w.Triggers = trigger.New(lvl, w.Machines, opts.Specials, w.Tables, opts.Triggers, log.Named("trigger"))

	for i, th := range lvl.Things {
		if _, err := w.SpawnThing(th); err != nil {
			log.Warn("thing not spawned", zap.Int("thing", i), zap.Error(err))
		}
	}
	return w, nil
}

// Tick is the number of the last tick started.
func (w *World) Tick() uint64 { return w.tick }

// BeginTick advances the tick counter and records where every actor starts.
func (w *World) BeginTick(tick uint64) {
	w.tick = tick
	ecs.Each2(w.Mobjs, w.trails, func(_ ecs.EntityID, mo *mobj.Mobj, tr *trail) {
		tr.X, tr.Y = mo.X, mo.Y
	})
}

// SpawnThing spawns a level spawn point.
func (w *World) SpawnThing(th level.Thing) (ecs.EntityID, error) {
	var kind mobj.Type
	switch th.Kind {
	case level.ThingPlayer:
		kind = mobj.Player
	case level.ThingMonster:
		kind = mobj.Monster
	default:
		kind = mobj.Decoration
	}
	return w.Spawn(kind, th.X, th.Y, th.Angle, th.Script)
}

// Spawn places a new actor on the floor of the sector containing (x,y).
// Players become input-driven; monsters and projectiles get a thinker that
// runs script (if any) and then integrates movement; decorations only think
// when given a script.
func (w *World) Spawn(kind mobj.Type, x, y fixed.Fixed, angle fixed.Angle, script string) (ecs.EntityID, error) {
	radius, height := w.opts.MonsterRadius, w.opts.PlayerHeight
	if kind == mobj.Player {
		radius = w.opts.PlayerRadius
	}
	mo := mobj.New(kind, x, y, radius, height)
	mo.Angle = angle
	if !w.Mover.Place(mo) {
		return 0, fmt.Errorf("spawn %s at (%d,%d): %w", kind, x.Int(), y.Int(), ErrOutsideLevel)
	}
	if script != "" && (w.scripts == nil || !w.scripts.Has(script)) {
		return 0, fmt.Errorf("spawn %s: %w %q", kind, ErrUnknownScript, script)
	}

	id := w.Entities.CreateEntity()
	mo.ID = id
	w.Mobjs.Set(id, mo)
	w.trails.Set(id, &trail{X: mo.X, Y: mo.Y})

	switch {
	case kind == mobj.Player:
		w.Controllers.Set(id, &Controller{Player: w.players})
		w.players++
	case kind != mobj.Decoration || script != "":
		h := w.Thinkers.Register(id, w.think)
		w.Brains.Set(id, &Brain{Script: script, Handle: h})
	}
	w.log.Debug("spawned",
		zap.Uint64("id", uint64(id)),
		zap.Stringer("type", kind),
		zap.Int("sector", mo.Sector))
	return id, nil
}

// Mobj returns a live actor.
func (w *World) Mobj(id ecs.EntityID) (*mobj.Mobj, bool) {
	return w.Mobjs.Get(id)
}

// Players lists input-driven actors in spawn order.
func (w *World) Players() []ecs.EntityID {
	var ids []ecs.EntityID
	w.Controllers.Each(func(id ecs.EntityID, _ *Controller) { ids = append(ids, id) })
	return ids
}

// Remove stops an actor's thinker now and destroys it in the cleanup phase.
func (w *World) Remove(id ecs.EntityID) {
	if b, ok := w.Brains.Get(id); ok {
		w.Thinkers.Unregister(b.Handle)
	}
	w.Entities.MarkForDestruction(id)
	w.removed = append(w.removed, id)
}

func (w *World) think(h thinker.Handle, id ecs.EntityID) {
	mo, ok := w.Mobjs.Get(id)
	if !ok {
		w.Thinkers.Unregister(h)
		return
	}
	if b, ok := w.Brains.Get(id); ok && b.Script != "" {
		if w.scripts.Think(b.Script, w.tick, mo) {
			w.Remove(id)
			return
		}
	}
	w.Mover.Integrate(mo)
}

// ApplyCommand turns and thrusts a controlled actor and handles the use
// button, which fires on press only.
func (w *World) ApplyCommand(id ecs.EntityID, cmd Command) {
	mo, ok := w.Mobjs.Get(id)
	ctrl, ok2 := w.Controllers.Get(id)
	if !ok || !ok2 {
		return
	}
	mo.Angle = mo.Angle.Turn(int32(cmd.Turn) << 16)
	if mo.OnFloor() {
		if cmd.Forward != 0 {
			w.Mover.Thrust(mo, mo.Angle, fixed.Fixed(cmd.Forward)*w.opts.ForwardMove, w.Tables)
		}
		if cmd.Strafe != 0 {
			w.Mover.Thrust(mo, mo.Angle-fixed.Ang90, fixed.Fixed(cmd.Strafe)*w.opts.SideMove, w.Tables)
		}
	}
	pressed := cmd.Buttons&ButtonUse != 0
	if pressed && !ctrl.useHeld {
		w.Triggers.UseLines(mo)
	}
	ctrl.useHeld = pressed
}

// MoveControlled integrates every input-driven actor.
func (w *World) MoveControlled() {
	ecs.Each2(w.Controllers, w.Mobjs, func(_ ecs.EntityID, _ *Controller, mo *mobj.Mobj) {
		w.Mover.Integrate(mo)
	})
}

// RunThinkers runs one scheduler pass.
func (w *World) RunThinkers() {
	w.Thinkers.RunTick()
}

// RunMachines ticks the sector machines, moves resting actors with the
// surfaces that changed and queues the height events on the bus.
func (w *World) RunMachines() {
	w.Machines.Tick()
	for _, ev := range w.Machines.Drain() {
		ev.Tick = w.tick
		w.follow(ev)
		event.Emit(w.Bus, ev)
	}
}

func (w *World) follow(ev event.HeightChanged) {
	w.Mobjs.Each(func(_ ecs.EntityID, mo *mobj.Mobj) {
		if mo.Sector != ev.Sector {
			return
		}
		switch ev.Surface {
		case event.Floor:
			resting := mo.Z <= mo.FloorZ
			mo.FloorZ = ev.Height
			if resting || mo.Z < mo.FloorZ {
				mo.Z = mo.FloorZ
			}
		case event.Ceiling:
			mo.CeilingZ = ev.Height
			if mo.Z+mo.Height > mo.CeilingZ {
				mo.Z = fixed.Max(mo.FloorZ, mo.CeilingZ-mo.Height)
			}
		}
	})
}

// Fits reports whether every solid actor in sector still fits between floor
// and ceiling.
func (w *World) Fits(sector int, floor, ceiling fixed.Fixed) bool {
	fits := true
	w.Mobjs.Each(func(_ ecs.EntityID, mo *mobj.Mobj) {
		if mo.Sector == sector && mo.Flags.Has(mobj.Solid) && ceiling-floor < mo.Height {
			fits = false
		}
	})
	return fits
}

// CheckCrossings runs walk triggers for every actor that moved this tick,
// in spawn order, and returns the activations recorded since the last call,
// including uses from the input phase.
func (w *World) CheckCrossings() []trigger.Activation {
	ecs.Each2(w.Mobjs, w.trails, func(_ ecs.EntityID, mo *mobj.Mobj, tr *trail) {
		if mo.X != tr.X || mo.Y != tr.Y {
			w.Triggers.CheckWalkCrossings(mo, tr.X, tr.Y)
		}
	})
	acts := w.Triggers.Drain()
	for _, a := range acts {
		if a.Accepted {
			event.Emit(w.Bus, event.LineActivated{Tick: w.tick, Line: a.Line, Entity: a.Entity, Walk: a.Class == trigger.ClassWalk})
		}
	}
	return acts
}

// Flush destroys actors removed during the tick and queues their removal
// events. It returns how many were destroyed.
func (w *World) Flush() int {
	if w.Entities.Pending() == 0 {
		return 0
	}
	var doomed []ecs.EntityID
	for _, id := range w.removed {
		if w.Entities.Alive(id) && !slices.Contains(doomed, id) {
			doomed = append(doomed, id)
		}
	}
	w.removed = w.removed[:0]
	n := w.Entities.FlushDestroyQueue()
	for _, id := range doomed {
		event.Emit(w.Bus, event.EntityRemoved{Tick: w.tick, Entity: id})
	}
	return n
}
