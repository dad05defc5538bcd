package trigger

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/fixedtick/levelsim/internal/level"
	"github.com/fixedtick/levelsim/internal/machine"
	"github.com/fixedtick/levelsim/internal/mobj"
)

//go:embed specials.yaml
var defaultSpecials []byte

// Class says how a special is triggered. The use and walk classes are
// disjoint: a code belongs to exactly one.
type Class string

const (
	ClassUse  Class = "use"
	ClassWalk Class = "walk"
)

type Action string

const (
	ActionDoor              Action = "door"
	ActionDoorOpen          Action = "door-open"
	ActionDoorClose         Action = "door-close"
	ActionDoorCloseWaitOpen Action = "door-close-wait-open"
	ActionLift              Action = "lift"
	ActionPlatPerpetual     Action = "plat-perpetual"
	ActionPlatStop          Action = "plat-stop"
)

var validActions = map[Action]bool{
	ActionDoor: true, ActionDoorOpen: true, ActionDoorClose: true, ActionDoorCloseWaitOpen: true,
	ActionLift: true, ActionPlatPerpetual: true, ActionPlatStop: true,
}

var speedMap = map[string]machine.Speed{
	"":          machine.SpeedNormal,
	"slow":      machine.SpeedSlow,
	"normal":    machine.SpeedNormal,
	"fast":      machine.SpeedFast,
	"very-fast": machine.SpeedVeryFast,
}

var keyMap = map[string]mobj.Keys{
	"":       0,
	"blue":   mobj.BlueKey,
	"yellow": mobj.YellowKey,
	"red":    mobj.RedKey,
}

// Special is one decoded line special.
type Special struct {
	Class    Class
	Once     bool
	Manual   bool
	Action   Action
	Speed    machine.Speed
	Key      mobj.Keys
	Monsters bool
}

// Table maps a line's special code to its behaviour.
type Table map[int]Special

type specialEntry struct {
	Class    Class  `yaml:"class"`
	Once     bool   `yaml:"once"`
	Manual   bool   `yaml:"manual"`
	Action   Action `yaml:"action"`
	Speed    string `yaml:"speed"`
	Key      string `yaml:"key"`
	Monsters bool   `yaml:"monsters"`
}

// DefaultTable is the built-in set of classic specials.
func DefaultTable() (Table, error) {
	return ParseTable(defaultSpecials)
}

// DefaultTableSource is the YAML the built-in table is parsed from.
func DefaultTableSource() []byte {
	return append([]byte(nil), defaultSpecials...)
}

// LoadTable reads a special table from a YAML file.
func LoadTable(path string) (Table, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read specials: %w", err)
	}
	t, err := ParseTable(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

func ParseTable(raw []byte) (Table, error) {
	var entries map[int]specialEntry
	if err := yaml.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("parse specials: %w", err)
	}
	t := make(Table, len(entries))
	for code, e := range entries {
		if code <= 0 {
			return nil, fmt.Errorf("special %d: code must be positive", code)
		}
		if e.Class != ClassUse && e.Class != ClassWalk {
			return nil, fmt.Errorf("special %d: unknown class %q", code, e.Class)
		}
		if !validActions[e.Action] {
			return nil, fmt.Errorf("special %d: unknown action %q", code, e.Action)
		}
		speed, ok := speedMap[e.Speed]
		if !ok {
			return nil, fmt.Errorf("special %d: unknown speed %q", code, e.Speed)
		}
		key, ok := keyMap[e.Key]
		if !ok {
			return nil, fmt.Errorf("special %d: unknown key %q", code, e.Key)
		}
		t[code] = Special{
			Class:    e.Class,
			Once:     e.Once,
			Manual:   e.Manual,
			Action:   e.Action,
			Speed:    speed,
			Key:      key,
			Monsters: e.Monsters,
		}
	}
	return t, nil
}

// Lint lists the line specials in lvl that can never fire with this table:
// unknown codes, manual specials without a sector behind them and tagged
// specials whose tag matches no sector.
func (t Table) Lint(lvl *level.Level) []string {
	var problems []string
	for i, ln := range lvl.Lines {
		if ln.Special == 0 {
			continue
		}
		sp, ok := t[ln.Special]
		switch {
		case !ok:
			problems = append(problems, fmt.Sprintf("line %d: unknown special %d", i, ln.Special))
		case sp.Manual:
			if lvl.SideSector(i, 1) < 0 {
				problems = append(problems, fmt.Sprintf("line %d: manual special %d on a one-sided line", i, ln.Special))
			}
		case ln.Tag == 0:
			problems = append(problems, fmt.Sprintf("line %d: special %d has no tag", i, ln.Special))
		case len(lvl.SectorsByTag(ln.Tag)) == 0:
			problems = append(problems, fmt.Sprintf("line %d: special %d tag %d matches no sector", i, ln.Special, ln.Tag))
		}
	}
	return problems
}
