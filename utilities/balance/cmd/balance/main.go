// balance is a self-play simulator for testing hero and spell balance in
// GridClash.
//
// Usage:
//
//	balance [command] [options]
//
// Commands:
//
//	sim     - Play many random battles and report hero and spell statistics
//	duels   - Play every hero against every other hero one on one
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"

	"github.com/lawnchairsociety/gridclash/internal/catalog"
	"github.com/lawnchairsociety/gridclash/internal/config"
	"github.com/lawnchairsociety/gridclash/internal/database"
	"github.com/lawnchairsociety/gridclash/internal/engine"
	"github.com/lawnchairsociety/gridclash/internal/logger"
	"github.com/lawnchairsociety/gridclash/internal/server"
	"github.com/lawnchairsociety/gridclash/utilities/balance"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "sim":
		runSim()
	case "duels":
		runDuels()
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`GridClash Balance Simulator

Plays battles against the loaded catalog and reports how heroes and spells
perform.

Usage: balance <command> [options]

Commands:
  sim      Play many random battles and report hero and spell statistics
  duels    Play every hero against every other hero one on one

Examples:
  balance sim -battles=5000 -workers=8 -seed=7
  balance sim -battles=200 -save
  balance duels -max-rounds=30

Use "balance <command> -h" for more information about a command.`)
}

// env is what both commands load before running.
type env struct {
	cfg *config.ServerConfig
	eng *engine.Engine
}

func setup(fs *flag.FlagSet) func() env {
	dataDir := fs.String("data-dir", "data", "Path to the catalog directory")
	serverConfig := fs.String("config", "data/server.yaml", "Path to server config YAML file")
	return func() env {
		// Simulations run quiet; only warnings reach the console.
		logCfg := logger.DefaultConfig()
		logCfg.Level = "WARNING"
		logger.Initialize(logCfg)

		cfg, err := config.LoadConfig(*serverConfig)
		if err != nil {
			logger.Warning("Failed to load server config, using defaults", "path", *serverConfig, "error", err)
		}
		cat, err := catalog.LoadDir(*dataDir)
		if err != nil {
			log.Fatalf("Failed to load catalog: %v", err)
		}
		return env{cfg: cfg, eng: engine.New(cat)}
	}
}

func runSim() {
	fs := flag.NewFlagSet("sim", flag.ExitOnError)
	load := setup(fs)
	battles := fs.Int("battles", 0, "Number of battles (0 uses the config value)")
	workers := fs.Int("workers", 0, "Parallel workers (0 uses the config value)")
	seed := fs.Int64("seed", 0, "Lineup seed (0 uses the config value)")
	maxRounds := fs.Int("max-rounds", 0, "Round cap per battle (0 uses the config value)")
	minHeroes := fs.Int("min-heroes", 3, "Minimum heroes per side")
	maxHeroes := fs.Int("max-heroes", 5, "Maximum heroes per side")
	reserve := fs.Float64("reserve", 0.25, "Chance each reserve slot is filled (0.0-1.0)")
	save := fs.Bool("save", false, "Store every battle in the configured database")
	fs.Parse(os.Args[2:])

	e := load()
	sim := &balance.Simulator{
		Engine:    e.eng,
		Options:   engine.Instant(),
		Lineups:   balance.LineupConfig{MinHeroes: *minHeroes, MaxHeroes: *maxHeroes, ReserveOdd: *reserve},
		MaxRounds: pick(*maxRounds, e.cfg.Engine.MaxRounds),
		Workers:   pick(*workers, e.cfg.Simulation.Workers),
		Seed:      *seed,
	}
	if sim.Seed == 0 {
		sim.Seed = e.cfg.Simulation.Seed
	}
	if policy, err := engine.PolicyByName(e.cfg.Engine.Priority); err == nil {
		sim.Options.Priority = policy
	}
	n := pick(*battles, e.cfg.Simulation.Battles)

	if *save {
		db, err := database.OpenWithConfig(e.cfg.Database.Store())
		if err != nil {
			log.Fatalf("Failed to open database: %v", err)
		}
		defer db.Close()
		sim.Record = func(ctx context.Context, a, b engine.Lineup, res *engine.BattleResult) error {
			rec, err := server.NewBattleRecord(a, b, res)
			if err != nil {
				return err
			}
			return db.SaveBattle(ctx, rec)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Println("=== Self-Play Simulation ===")
	fmt.Println()
	fmt.Printf("Battles: %s, Workers: %d, Seed: %d, Round cap: %d\n",
		humanize.Comma(int64(n)), sim.Workers, sim.Seed, sim.MaxRounds)
	fmt.Println()

	start := time.Now()
	res, err := sim.Run(ctx, n)
	if err != nil {
		log.Fatalf("Simulation failed: %v", err)
	}
	elapsed := time.Since(start)

	printSimulationResult(res, elapsed)
	if *save {
		fmt.Printf("\nStored %s battles\n", humanize.Comma(int64(res.Battles)))
	}
}

func printSimulationResult(r *balance.SimulationResult, elapsed time.Duration) {
	fmt.Printf("Results (%s battles in %s):\n", humanize.Comma(int64(r.Battles)), elapsed.Round(time.Millisecond))
	fmt.Printf("  Side A Wins:   %s (%.1f%%)\n", humanize.Comma(int64(r.WinsA)), percent(r.WinsA, r.Battles))
	fmt.Printf("  Side B Wins:   %s (%.1f%%)\n", humanize.Comma(int64(r.WinsB)), percent(r.WinsB, r.Battles))
	fmt.Printf("  Draws:         %s (%s hit the round cap)\n", humanize.Comma(int64(r.Draws)), humanize.Comma(int64(r.TimedOut)))
	fmt.Printf("  Avg Rounds:    %.1f (min: %d, max: %d)\n", r.AvgRounds, r.MinRounds, r.MaxRounds)
	fmt.Printf("  Avg Steps:     %s\n", humanize.FormatFloat("#,###.#", r.AvgSteps))
	fmt.Println()

	fmt.Println("Heroes:")
	fmt.Printf("  %-16s %10s %8s %10s  %s\n", "Hero", "Picks", "Win %", "Survived", "Assessment")
	for _, h := range r.SortedHeroes() {
		fmt.Printf("  %-16s %10s %7.1f%% %10s  %s\n",
			h.HeroID, humanize.Comma(int64(h.Picks)), h.WinRate(), humanize.Comma(int64(h.Survived)), assess(h.WinRate()))
	}
	fmt.Println()

	fmt.Println("Spells:")
	fmt.Printf("  %-16s %-8s %10s %10s %10s %8s %10s\n", "Spell", "Role", "Casts", "Damage", "Healing", "Kills", "Per Cast")
	for _, s := range r.SortedSpells() {
		fmt.Printf("  %-16s %-8s %10s %10s %10s %8s %10.1f\n",
			s.SpellID, s.Role, humanize.Comma(int64(s.Casts)), humanize.Comma(int64(s.Damage)),
			humanize.Comma(int64(s.Healing)), humanize.Comma(int64(s.Kills)), s.PerCast())
	}
}

func runDuels() {
	fs := flag.NewFlagSet("duels", flag.ExitOnError)
	load := setup(fs)
	workers := fs.Int("workers", 0, "Parallel workers (0 uses the config value)")
	maxRounds := fs.Int("max-rounds", 0, "Round cap per duel (0 uses the config value)")
	fs.Parse(os.Args[2:])

	e := load()
	opts := engine.Instant()
	if policy, err := engine.PolicyByName(e.cfg.Engine.Priority); err == nil {
		opts.Priority = policy
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	duels, err := balance.RunDuels(ctx, e.eng, opts, pick(*maxRounds, e.cfg.Engine.MaxRounds), pick(*workers, e.cfg.Simulation.Workers))
	if err != nil {
		log.Fatalf("Duels failed: %v", err)
	}

	fmt.Println("=== Duels ===")
	fmt.Println()
	for _, d := range duels {
		winner := d.Winner
		if winner == "" {
			winner = "draw"
		}
		fmt.Printf("  %-16s vs %-16s -> %-16s (%d rounds)\n", d.A, d.B, winner, d.Rounds)
	}
	fmt.Println()

	scores := balance.DuelScores(duels)
	ids := make([]string, 0, len(scores))
	for id := range scores {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if scores[ids[i]] != scores[ids[j]] {
			return scores[ids[i]] > scores[ids[j]]
		}
		return ids[i] < ids[j]
	})

	played := 2*len(ids) - 1
	fmt.Println("Duel wins:")
	for i, id := range ids {
		rate := percent(scores[id], played)
		fmt.Printf("  %s %-16s %3d/%d  %s\n", humanize.Ordinal(i+1), id, scores[id], played, assess(rate))
	}
}

func pick(flagValue, configValue int) int {
	if flagValue > 0 {
		return flagValue
	}
	return configValue
}

func percent(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return float64(part) / float64(whole) * 100
}

// assess grades a win rate against the 50% a balanced hero should hold.
func assess(winRate float64) string {
	var assessment string
	switch {
	case winRate < 30:
		assessment = "TOO WEAK"
	case winRate < 45:
		assessment = "WEAK"
	case winRate <= 55:
		assessment = "BALANCED"
	case winRate <= 70:
		assessment = "STRONG"
	default:
		assessment = "TOO STRONG"
	}

	if !isTerminal() {
		return assessment
	}
	color := ""
	switch assessment {
	case "TOO WEAK", "TOO STRONG":
		color = "\033[31m" // Red
	case "WEAK", "STRONG":
		color = "\033[33m" // Yellow
	case "BALANCED":
		color = "\033[32m" // Green
	}
	return color + assessment + "\033[0m"
}

func isTerminal() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}
