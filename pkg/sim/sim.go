// Package sim plays random legal games to exercise the rules and summarize
// game length and hitting.
package sim

import (
	"context"
	"math/rand"
	"runtime"
	"sort"
	"sync"

	"github.com/pkg/errors"
	"github.com/yourusername/bgrules/pkg/dice"
	"github.com/yourusername/bgrules/pkg/game"
	"github.com/yourusername/bgrules/pkg/rules"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// DefaultMaxTurns caps a single playout.
const DefaultMaxTurns = 2000

// Options controls a simulation run.
type Options struct {
	Games    int   // Number of games to play (default 100)
	Seed     int64 // RNG seed (0 = random)
	Workers  int   // Parallel workers (0 = GOMAXPROCS)
	MaxTurns int   // Turns before a game is abandoned (0 = DefaultMaxTurns)
}

// Progress is reported after every finished game.
type Progress struct {
	Completed int
	Total     int
	Percent   float64
}

// ProgressCallback receives progress updates. It is called from a single
// goroutine.
type ProgressCallback func(Progress)

// Result summarizes a run.
type Result struct {
	Games        int     `json:"games"`
	WinsA        int     `json:"wins_a"`
	WinsB        int     `json:"wins_b"`
	Unfinished   int     `json:"unfinished"`
	MeanTurns    float64 `json:"mean_turns"`
	StdDevTurns  float64 `json:"stddev_turns"`
	MedianTurns  float64 `json:"median_turns"`
	MeanCaptures float64 `json:"mean_captures"`
	Seed         int64   `json:"seed"`
}

// Outcome is the result of one playout.
type Outcome struct {
	Finished bool
	Winner   rules.Side
	Turns    int
	Captures int
}

// Run plays opts.Games random games spread over opts.Workers goroutines.
func Run(ctx context.Context, opts Options, progress ProgressCallback) (*Result, error) {
	if opts.Games <= 0 {
		opts.Games = 100
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	if opts.Workers > opts.Games {
		opts.Workers = opts.Games
	}
	if opts.MaxTurns <= 0 {
		opts.MaxTurns = DefaultMaxTurns
	}
	if opts.Seed == 0 {
		seed, err := dice.NewSeed()
		if err != nil {
			return nil, err
		}
		opts.Seed = seed
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	perWorker := opts.Games / opts.Workers
	extra := opts.Games % opts.Workers

	outcomes := make(chan Outcome, opts.Workers)
	errs := make(chan error, opts.Workers)
	var wg sync.WaitGroup

	for i := 0; i < opts.Workers; i++ {
		wg.Add(1)
		games := perWorker
		if i < extra {
			games++
		}
		seed := opts.Seed + int64(i)*1000000

		go func(games int, seed int64) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed))
			for n := 0; n < games; n++ {
				if ctx.Err() != nil {
					return
				}
				out, err := Playout(rng, opts.MaxTurns)
				if err != nil {
					errs <- err
					cancel()
					return
				}
				select {
				case outcomes <- out:
				case <-ctx.Done():
					return
				}
			}
		}(games, seed)
	}

	go func() {
		wg.Wait()
		close(outcomes)
	}()

	res := aggregate(outcomes, opts.Games, progress)
	res.Seed = opts.Seed

	select {
	case err := <-errs:
		return nil, err
	default:
	}
	if err := ctx.Err(); err != nil && res.Games < opts.Games {
		return nil, err
	}
	return res, nil
}

// Playout plays one game from the opening with random legal choices: a random
// movable checker, then a random destination for it.
func Playout(rng *rand.Rand, maxTurns int) (Outcome, error) {
	g, err := game.New("", "", rng)
	if err != nil {
		return Outcome{}, err
	}

	var out Outcome
	for g.Phase() != game.Finished {
		if g.Plies() >= maxTurns {
			out.Turns = g.Plies()
			return out, nil
		}
		if g.Phase() == game.AwaitingRoll {
			if _, err := g.Roll(); err != nil {
				return Outcome{}, err
			}
			continue
		}

		movable := g.Movable()
		if len(movable) == 0 {
			if err := g.Pass(); err != nil {
				return Outcome{}, err
			}
			continue
		}
		dests, err := g.Select(movable[rng.Intn(len(movable))])
		if err != nil {
			return Outcome{}, err
		}
		rails := dests.Rails()
		res, err := g.Play(rails[rng.Intn(len(rails))])
		if err != nil {
			return Outcome{}, err
		}
		out.Captures += res.Captures
	}

	if err := g.Board.Validate(); err != nil {
		return Outcome{}, errors.WithMessage(err, "finished board invalid")
	}
	out.Finished = true
	out.Winner, _ = g.Winner()
	out.Turns = g.Plies()
	return out, nil
}

func aggregate(outcomes <-chan Outcome, total int, progress ProgressCallback) *Result {
	res := &Result{}
	var turns, captures []float64

	for out := range outcomes {
		res.Games++
		if !out.Finished {
			res.Unfinished++
		} else {
			if out.Winner == rules.SideA {
				res.WinsA++
			} else {
				res.WinsB++
			}
			turns = append(turns, float64(out.Turns))
		}
		captures = append(captures, float64(out.Captures))

		if progress != nil {
			progress(Progress{
				Completed: res.Games,
				Total:     total,
				Percent:   100.0 * float64(res.Games) / float64(total),
			})
		}
	}

	if len(turns) > 0 {
		sort.Float64s(turns)
		res.MeanTurns, res.StdDevTurns = stat.MeanStdDev(turns, nil)
		res.MedianTurns = stat.Quantile(0.5, stat.Empirical, turns, nil)
	}
	if len(captures) > 0 {
		res.MeanCaptures = floats.Sum(captures) / float64(len(captures))
	}
	return res
}
