package sim

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Buttons uint8

const (
	ButtonUse Buttons = 1 << iota
)

// Command is one player's sampled input for one tick. Forward and Strafe are
// scaled by the configured move speeds; Turn is applied as Turn<<16 of a
// binary angle.
type Command struct {
	Forward int8
	Strafe  int8
	Turn    int16
	Buttons Buttons
}

// InputSource supplies the command of each player for a tick. It is sampled
// once per player per tick, at the start of the tick.
type InputSource interface {
	Sample(tick uint64, player int) Command
}

// IdleInput never presses anything.
type IdleInput struct{}

func (IdleInput) Sample(uint64, int) Command { return Command{} }

type recordedSpan struct {
	From    uint64 `yaml:"from"`
	To      uint64 `yaml:"to"` // inclusive, 0 = same as from
	Player  int    `yaml:"player"`
	Forward int8   `yaml:"forward"`
	Strafe  int8   `yaml:"strafe"`
	Turn    int16  `yaml:"turn"`
	Use     bool   `yaml:"use"`
}

// RecordedInput replays commands from a YAML list of tick spans. Where spans
// overlap the later one wins; ticks outside every span are idle.
type RecordedInput struct {
	spans []recordedSpan
}

func LoadRecordedInput(path string) (*RecordedInput, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	in, err := ParseRecordedInput(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return in, nil
}

func ParseRecordedInput(raw []byte) (*RecordedInput, error) {
	var spans []recordedSpan
	if err := yaml.Unmarshal(raw, &spans); err != nil {
		return nil, fmt.Errorf("parse input: %w", err)
	}
	for i := range spans {
		if spans[i].To == 0 {
			spans[i].To = spans[i].From
		}
		if spans[i].To < spans[i].From {
			return nil, fmt.Errorf("input span %d: to %d before from %d", i, spans[i].To, spans[i].From)
		}
	}
	return &RecordedInput{spans: spans}, nil
}

func (r *RecordedInput) Sample(tick uint64, player int) Command {
	var cmd Command
	for _, s := range r.spans {
		if s.Player != player || tick < s.From || tick > s.To {
			continue
		}
		cmd = Command{Forward: s.Forward, Strafe: s.Strafe, Turn: s.Turn}
		if s.Use {
			cmd.Buttons |= ButtonUse
		}
	}
	return cmd
}

// Last is the final tick any span covers.
func (r *RecordedInput) Last() uint64 {
	var last uint64
	for _, s := range r.spans {
		last = max(last, s.To)
	}
	return last
}
