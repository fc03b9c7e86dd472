package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/lawnchairsociety/gridclash/internal/engine"
	"github.com/lawnchairsociety/gridclash/internal/logger"
)

// Matchup is the YAML file read by the play command.
type Matchup struct {
	A         engine.Lineup `yaml:"a"`
	B         engine.Lineup `yaml:"b"`
	MaxRounds int           `yaml:"max_rounds"`
}

func loadMatchup(path string) (*Matchup, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m Matchup
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if len(m.A) == 0 || len(m.B) == 0 {
		return nil, fmt.Errorf("%s: both sides need at least one hero", path)
	}
	return &m, nil
}

func runPlay(args []string) {
	fs := flag.NewFlagSet("play", flag.ExitOnError)
	c := commonFlags(fs)
	matchupFile := fs.String("matchup", "data/matchup.yaml", "Path to the matchup YAML file")
	speed := fs.Float64("speed", 0, "Override the pacing speed multiplier (0 keeps the config value, negative disables pacing)")
	fs.Parse(args)

	cfg, cat := c.load()
	defer logger.Close()

	m, err := loadMatchup(*matchupFile)
	if err != nil {
		log.Fatalf("Failed to load matchup: %v", err)
	}

	opts, err := cfg.Engine.Options()
	if err != nil {
		log.Fatalf("Invalid engine config: %v", err)
	}
	if *speed != 0 {
		opts.SpeedMultiplier = *speed
	}
	opts.Quiet = true
	opts.OnStep = func(s engine.Step) { printStep(os.Stdout, s) }

	eng := engine.New(cat)
	state, err := eng.Setup(m.A, m.B)
	if err != nil {
		log.Fatalf("Invalid matchup: %v", err)
	}

	maxRounds := m.MaxRounds
	if maxRounds <= 0 {
		maxRounds = cfg.Engine.MaxRounds
	}
	res, err := eng.RunBattle(state, opts, maxRounds)
	if err != nil {
		log.Fatalf("Battle failed: %v", err)
	}

	switch {
	case res.TimedOut:
		fmt.Printf("\nDraw after %d rounds (round limit reached)\n", res.Rounds)
	case res.Draw:
		fmt.Printf("\nDraw after %d rounds\n", res.Rounds)
	default:
		fmt.Printf("\nSide %s wins after %d rounds\n", *res.Winner, res.Rounds)
	}
}

// printStep writes a one-line description of s.
func printStep(w io.Writer, s engine.Step) {
	fmt.Fprintln(w, describeStep(s))
}

func describeStep(s engine.Step) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[r%d] ", s.Round)

	targets := make([]string, len(s.Targets))
	for i, t := range s.Targets {
		targets[i] = t.String()
	}
	on := strings.Join(targets, ",")

	switch s.Type {
	case engine.StepRoundStart:
		fmt.Fprintf(&b, "round %d begins, side %s has priority", s.Round, *s.Priority)
	case engine.StepCast:
		fmt.Fprintf(&b, "%s casts %s", s.Actor, s.Spell)
		if on != "" {
			fmt.Fprintf(&b, " on %s", on)
		}
	case engine.StepDamage:
		fmt.Fprintf(&b, "%s takes %d damage (%d left)", on, s.Amount, s.Value)
	case engine.StepHeal:
		fmt.Fprintf(&b, "%s heals %d (%d now)", on, s.Amount, s.Value)
	case engine.StepEnergy:
		fmt.Fprintf(&b, "%s energy %+d (%d now)", on, s.Amount, s.Value)
	case engine.StepStat:
		fmt.Fprintf(&b, "%s %s %+d (%d now)", on, s.Stat, s.Amount, s.Value)
	case engine.StepEffectApply:
		fmt.Fprintf(&b, "%s gains %s (%s)", on, s.Effect, s.Outcome)
	case engine.StepEffectExpire:
		fmt.Fprintf(&b, "%s on %s expires", s.Effect, on)
	case engine.StepEffectRemove:
		if s.Outcome == engine.OutcomeConsumed {
			fmt.Fprintf(&b, "%s on %s is spent", s.Effect, on)
			break
		}
		fmt.Fprintf(&b, "%s removed from %s", s.Effect, on)
	case engine.StepSurvive:
		fmt.Fprintf(&b, "%s survives a lethal blow", on)
	case engine.StepDeath:
		fmt.Fprintf(&b, "%s dies", on)
	case engine.StepRevive:
		fmt.Fprintf(&b, "%s is revived with %d health", on, s.Value)
	case engine.StepCorpseConsumed:
		fmt.Fprintf(&b, "corpse at %s is consumed", on)
	case engine.StepReaction:
		fmt.Fprintf(&b, "%s reacts with %s", s.Actor, s.Effect)
		if on != "" {
			fmt.Fprintf(&b, " on %s", on)
		}
	case engine.StepRoundComplete:
		fmt.Fprintf(&b, "round complete, %d casts", s.Amount)
	case engine.StepGameEnd:
		if s.Draw || s.Winner == nil {
			b.WriteString("game over: draw")
		} else {
			fmt.Fprintf(&b, "game over: side %s wins", *s.Winner)
		}
	default:
		fmt.Fprintf(&b, "%s", s.Type)
	}
	return b.String()
}
