package game

import (
	"strings"
	"unicode"

	"github.com/pkg/errors"
	"github.com/yourusername/bgrules/pkg/rules"
)

// Player name limits.
const (
	MinNameLength = 3
	MaxNameLength = 7
	minLetters    = 3
)

var (
	// ErrInvalidName is returned for names that break the length or
	// character rules.
	ErrInvalidName = errors.New("invalid player name")
	// ErrDuplicateName is returned when both players would share a name.
	ErrDuplicateName = errors.New("player name already taken by the opponent")
)

// Player is one of the two participants.
type Player struct {
	Name string     `json:"name"`
	Side rules.Side `json:"side"`
}

// NormalizeName validates name and returns it in upper case. A name has 3-7
// letters or digits, at least three of them letters.
func NormalizeName(name string) (string, error) {
	n := len([]rune(name))
	if n < MinNameLength || n > MaxNameLength {
		return "", errors.Wrapf(ErrInvalidName, "%q must have between %d and %d characters", name, MinNameLength, MaxNameLength)
	}
	letters := 0
	for _, r := range name {
		switch {
		case unicode.IsLetter(r):
			letters++
		case unicode.IsDigit(r):
		default:
			return "", errors.Wrapf(ErrInvalidName, "%q may only contain letters and digits", name)
		}
	}
	if letters < minLetters {
		return "", errors.Wrapf(ErrInvalidName, "%q must contain at least %d letters", name, minLetters)
	}
	return strings.ToUpper(name), nil
}

// defaultNames are used when a game is created without names.
var defaultNames = [2]string{"WHITE", "BLACK"}
