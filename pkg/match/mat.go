package match

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/yourusername/bgrules/pkg/rules"
)

// MAT format is the Jellyfish/gnubg match format.
// Example format:
//
//	; [Player 1 "name1"]
//	; [Player 2 "name2"]
//	Unlimited match
//
//	Game 1
//	name1 : 0            name2 : 0
//	1) 31: 8/5 6/5       52: 24/22 13/8
//	2) 43: 24/20 13/10   ...
//
// Points are numbered from each player's own side: a checker on rail r sits
// on point 25-r.

// columnWidth is the width of side A's column.
const columnWidth = 28

// ExportMAT writes g in MAT format.
func ExportMAT(w io.Writer, g *Game) error {
	ew := &errWriter{w: w}

	ew.printf(" ; [Player 1 \"%s\"]\n", g.Players[rules.SideA])
	ew.printf(" ; [Player 2 \"%s\"]\n", g.Players[rules.SideB])
	if g.Date != "" {
		ew.printf(" ; [Date \"%s\"]\n", g.Date)
	}
	ew.printf(" Unlimited match\n\n")

	number := g.Number
	if number <= 0 {
		number = 1
	}
	ew.printf(" Game %d\n", number)
	ew.printf(" %-*s%s : 0\n", columnWidth+4, g.Players[rules.SideA]+" : 0", g.Players[rules.SideB])

	// Side A's text waits in pending until the line closes, so it is only
	// padded when side B's reply follows on the same line.
	moveNum := 0
	pending := ""
	lineOpen := false
	closeLine := func(reply string) {
		if reply == "" {
			ew.printf("%3d) %s\n", moveNum, pending)
		} else {
			ew.printf("%3d) %-*s%s\n", moveNum, columnWidth, pending, reply)
		}
		pending, lineOpen = "", false
	}
	for _, turn := range g.Turns {
		text := fmt.Sprintf("%d%d: %s", turn.Dice[0], turn.Dice[1], formatPlays(turn.Plays))
		if turn.Side == rules.SideA {
			if lineOpen {
				closeLine("")
			}
			moveNum++
			pending, lineOpen = text, true
			continue
		}
		if !lineOpen {
			moveNum++
		}
		closeLine(text)
	}
	if lineOpen {
		closeLine("")
	}

	if g.Winner != nil {
		indent := 5
		if *g.Winner == rules.SideB {
			indent += columnWidth
		}
		ew.printf("%*sWins 1 point\n", indent, "")
	}
	ew.printf("\n")
	return ew.err
}

// formatPlays writes each die of each play as its own from/to step.
func formatPlays(plays []Play) string {
	var parts []string
	for _, p := range plays {
		cur := p.From
		for _, die := range p.Dice {
			next := cur + die
			if next > rules.NumPoints {
				next = rules.OffIndex
			}
			parts = append(parts, formatPoint(cur)+"/"+formatPoint(next))
			cur = next
		}
	}
	return strings.Join(parts, " ")
}

// formatPoint converts a rail index to MAT point notation.
func formatPoint(rail int) string {
	switch {
	case rail <= rules.BarIndex:
		return "bar"
	case rail >= rules.OffIndex:
		return "off"
	}
	return strconv.Itoa(rules.OffIndex - rail)
}

type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...interface{}) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}
