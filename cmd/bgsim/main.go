// Command bgsim plays random legal games and prints a summary.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/yourusername/bgrules/internal/config"
	"github.com/yourusername/bgrules/pkg/sim"
)

func main() {
	games := flag.Int("games", 1000, "Number of games to play")
	seed := flag.Int64("seed", 0, "Random seed (0 = random)")
	workers := flag.Int("workers", 0, "Parallel workers (0 = GOMAXPROCS)")
	maxTurns := flag.Int("max-turns", sim.DefaultMaxTurns, "Turns before a game is abandoned")
	quiet := flag.Bool("quiet", false, "Do not print progress")
	flag.Parse()

	if *games <= 0 {
		config.Exitf("bgsim: -games must be positive")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Println("=== bgrules random self-play ===")
	fmt.Println()

	step := *games / 10
	if step == 0 {
		step = 1
	}
	progress := func(p sim.Progress) {
		if *quiet || (p.Completed%step != 0 && p.Completed != p.Total) {
			return
		}
		fmt.Printf("   %5d/%d games (%.0f%%)\n", p.Completed, p.Total, p.Percent)
	}

	res, err := sim.Run(ctx, sim.Options{
		Games:    *games,
		Seed:     *seed,
		Workers:  *workers,
		MaxTurns: *maxTurns,
	}, progress)
	if err != nil {
		config.Exitf("bgsim: %v", err)
	}

	fmt.Println()
	fmt.Printf("Seed:           %d\n", res.Seed)
	fmt.Printf("Games:          %d\n", res.Games)
	fmt.Printf("Side A wins:    %d (%.1f%%)\n", res.WinsA, percent(res.WinsA, res.Games))
	fmt.Printf("Side B wins:    %d (%.1f%%)\n", res.WinsB, percent(res.WinsB, res.Games))
	if res.Unfinished > 0 {
		fmt.Printf("Unfinished:     %d\n", res.Unfinished)
	}
	fmt.Printf("Turns:          mean %.1f, std dev %.1f, median %.0f\n", res.MeanTurns, res.StdDevTurns, res.MedianTurns)
	fmt.Printf("Hits per game:  %.2f\n", res.MeanCaptures)
}

func percent(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return 100 * float64(n) / float64(total)
}
