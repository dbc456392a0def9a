// Package positionid converts boards to and from GNU Backgammon position IDs.
//
// A position ID is a 14-character base64 string packing the checkers of the
// player on roll followed by those of the opponent. Each player's checkers are
// listed from that player's deepest home point out to the bar: for every
// point, one 1-bit per checker and a terminating 0-bit.
package positionid

import (
	"errors"

	"github.com/yourusername/bgrules/pkg/rules"
)

// PositionIDLength is the length of a position ID string.
const PositionIDLength = 14

// Base64 alphabet used for position ID encoding
const base64Chars = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"

// barSlot is the bar's index in a per-player point list.
const barSlot = 24

// tanBoard lists checker counts per player: index 0 is the player on roll,
// points 0-23 run from that player's deepest home point outward and 24 is the
// bar.
type tanBoard [2][25]uint8

// oldPositionKey is the 80-bit packed form behind the base64 string.
type oldPositionKey struct {
	Data [10]uint8
}

// ErrInvalidPositionID is returned when a position ID is invalid
var ErrInvalidPositionID = errors.New("invalid position ID")

// Encode returns the position ID of board with onRoll to move.
func Encode(board *rules.Board, onRoll rules.Side) string {
	return positionIDFromOldKey(makeOldPositionKey(toTan(board, onRoll)))
}

// Decode builds a board from a position ID. Checkers missing from the ID are
// placed in their side's off-tray.
func Decode(posID string, onRoll rules.Side) (*rules.Board, error) {
	tan, err := tanFromPositionID(posID)
	if err != nil {
		return nil, err
	}

	board := rules.NewEmptyBoard()
	for player, side := range []rules.Side{onRoll, onRoll.Opponent()} {
		for i := 0; i < barSlot; i++ {
			if n := int(tan[player][i]); n > 0 {
				board.SetPoint(railOf(i), side, rules.Checkers(side, n))
			}
		}
		board.SetBar(side, int(tan[player][barSlot]))
	}
	board.Rebalance()

	if err := board.Validate(); err != nil {
		return nil, ErrInvalidPositionID
	}
	return board, nil
}

// railOf maps a point index 0-23 to the owner's rail index.
func railOf(i int) int {
	return rules.NumPoints - i
}

func toTan(board *rules.Board, onRoll rules.Side) tanBoard {
	var tan tanBoard
	for player, side := range []rules.Side{onRoll, onRoll.Opponent()} {
		for i := 0; i < barSlot; i++ {
			if p := board.Point(railOf(i), side); p.Holds(side) {
				tan[player][i] = uint8(p.Count)
			}
		}
		tan[player][barSlot] = uint8(board.Bar(side))
	}
	return tan
}

// addBits adds nBits 1-bits to the old position key starting at bitPos
func addBits(key *oldPositionKey, bitPos, nBits uint32) {
	k := bitPos / 8
	r := bitPos & 0x7
	b := ((uint32(1) << nBits) - 1) << r

	key.Data[k] |= uint8(b)

	if k < 8 {
		key.Data[k+1] |= uint8(b >> 8)
		key.Data[k+2] |= uint8(b >> 16)
	} else if k == 8 {
		key.Data[k+1] |= uint8(b >> 8)
	}
}

func makeOldPositionKey(tan tanBoard) oldPositionKey {
	var key oldPositionKey
	var bitPos uint32

	for i := 0; i < 2; i++ {
		for j := 0; j < 25; j++ {
			nc := uint32(tan[i][j])
			if nc > 0 {
				addBits(&key, bitPos, nc)
				bitPos += nc + 1
			} else {
				bitPos++
			}
		}
	}

	return key
}

func tanFromOldKey(key oldPositionKey) tanBoard {
	var tan tanBoard
	i, j := 0, 0

	for a := 0; a < 10; a++ {
		cur := key.Data[a]

		for k := 0; k < 8; k++ {
			if cur&0x1 != 0 {
				if i >= 2 || j >= 25 {
					// Malformed key, caught by checkPosition.
					return tan
				}
				tan[i][j]++
			} else {
				j++
				if j == 25 {
					i++
					j = 0
				}
			}
			cur >>= 1
		}
	}

	return tan
}

func positionIDFromOldKey(key oldPositionKey) string {
	result := make([]byte, PositionIDLength)
	puch := key.Data[:]

	for i := 0; i < 3; i++ {
		result[i*4] = base64Chars[puch[0]>>2]
		result[i*4+1] = base64Chars[((puch[0]&0x03)<<4)|(puch[1]>>4)]
		result[i*4+2] = base64Chars[((puch[1]&0x0F)<<2)|(puch[2]>>6)]
		result[i*4+3] = base64Chars[puch[2]&0x3F]
		puch = puch[3:]
	}

	result[12] = base64Chars[puch[0]>>2]
	result[13] = base64Chars[(puch[0]&0x03)<<4]

	return string(result)
}

// base64Decode decodes a base64 character to its value
func base64Decode(ch byte) uint8 {
	switch {
	case ch >= 'A' && ch <= 'Z':
		return ch - 'A'
	case ch >= 'a' && ch <= 'z':
		return ch - 'a' + 26
	case ch >= '0' && ch <= '9':
		return ch - '0' + 52
	case ch == '+':
		return 62
	case ch == '/':
		return 63
	}
	return 255
}

func tanFromPositionID(posID string) (tanBoard, error) {
	var key oldPositionKey

	if len(posID) != PositionIDLength {
		return tanBoard{}, ErrInvalidPositionID
	}

	ach := make([]uint8, PositionIDLength)
	for i := 0; i < PositionIDLength; i++ {
		ach[i] = base64Decode(posID[i])
		if ach[i] == 255 {
			return tanBoard{}, ErrInvalidPositionID
		}
	}

	pch := ach
	puchIdx := 0
	for i := 0; i < 3; i++ {
		key.Data[puchIdx] = (pch[0] << 2) | (pch[1] >> 4)
		key.Data[puchIdx+1] = (pch[1] << 4) | (pch[2] >> 2)
		key.Data[puchIdx+2] = (pch[2] << 6) | pch[3]
		puchIdx += 3
		pch = pch[4:]
	}
	key.Data[9] = (pch[0] << 2) | (pch[1] >> 4)

	tan := tanFromOldKey(key)
	if !checkPosition(tan) {
		return tanBoard{}, ErrInvalidPositionID
	}
	return tan, nil
}

// checkPosition rejects boards with more than 15 checkers for a player or
// both players on one point.
func checkPosition(tan tanBoard) bool {
	var ac [2]uint32

	for i := 0; i < 25; i++ {
		ac[0] += uint32(tan[0][i])
		ac[1] += uint32(tan[1][i])
		if ac[0] > rules.TotalCheckers || ac[1] > rules.TotalCheckers {
			return false
		}
	}

	for i := 0; i < barSlot; i++ {
		if tan[0][i] > 0 && tan[1][23-i] > 0 {
			return false
		}
	}

	return true
}
