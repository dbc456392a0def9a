package rules

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// Validate checks the board invariants and reports every violation found.
func (b *Board) Validate() error {
	var errs *multierror.Error

	for i, p := range b.points {
		rail := i + 1
		switch {
		case p.Count < 0:
			errs = multierror.Append(errs, fmt.Errorf("rail %d (side A): negative count %d", rail, p.Count))
		case p.Count == 0 && p.Occupant != Empty:
			errs = multierror.Append(errs, fmt.Errorf("rail %d (side A): empty point owned by %s", rail, p.Occupant))
		case p.Count > 0 && p.Occupant == Empty:
			errs = multierror.Append(errs, fmt.Errorf("rail %d (side A): %d checkers without an owner", rail, p.Count))
		}
	}

	for _, side := range []Side{SideA, SideB} {
		if b.bar[side] < 0 {
			errs = multierror.Append(errs, fmt.Errorf("side %s: negative bar count %d", side, b.bar[side]))
		}
		if b.off[side] < 0 {
			errs = multierror.Append(errs, fmt.Errorf("side %s: negative off count %d", side, b.off[side]))
		}
		if total := b.Total(side); total != TotalCheckers {
			errs = multierror.Append(errs, fmt.Errorf("side %s: %d checkers, want %d", side, total, TotalCheckers))
		}
	}

	if b.selected != NoSelection {
		if b.selected < BarIndex || b.selected > NumPoints {
			errs = multierror.Append(errs, fmt.Errorf("selected rail %d out of range", b.selected))
		} else if b.selected != BarIndex && b.Point(b.selected, b.selectedSide).Mark != MarkSelected {
			errs = multierror.Append(errs, fmt.Errorf("selected rail %d is not marked", b.selected))
		}
	}

	return errs.ErrorOrNil()
}
