// Package board is the seam between the match engine and chess: the board
// and move-selector contracts, a notnil/chess implementation, and the move
// selectors the engine can plug in.
package board

import (
	"context"
	"errors"
	"fmt"

	"github.com/nathoo/metaleague/types"
)

// PieceType is a lower-case piece letter: p, n, b, r, q or k.
type PieceType byte

const (
	Pawn   PieceType = 'p'
	Knight PieceType = 'n'
	Bishop PieceType = 'b'
	Rook   PieceType = 'r'
	Queen  PieceType = 'q'
	King   PieceType = 'k'
)

// Piece is what occupies a square.
type Piece struct {
	Type  PieceType
	White bool
}

// Board results.
const (
	WhiteWon   = "1-0"
	BlackWon   = "0-1"
	DrawResult = "1/2-1/2"
	NoResult   = "*"
)

// ErrNoMoves is returned when a board has no legal move left.
var ErrNoMoves = errors.New("no legal moves")

// Board is one character's chess game. Moves are UCI strings ("e2e4").
type Board interface {
	LegalMoves() []string
	Push(move string) error
	PieceAt(square string) (Piece, bool)
	// Material is the summed piece value for one side.
	Material(white bool) int
	IsGameOver() bool
	Result() string
	WhiteToMove() bool
	Clone() Board
}

// Adapter creates boards. The character is passed so implementations can
// vary the starting position.
type Adapter interface {
	NewBoard(c *types.Character) Board
}

// AdapterFunc turns a function into an Adapter.
type AdapterFunc func(c *types.Character) Board

func (f AdapterFunc) NewBoard(c *types.Character) Board { return f(c) }

// MoveSelector picks the next move for the side to move on b.
type MoveSelector interface {
	SelectMove(ctx context.Context, b Board, c *types.Character) (string, error)
}

// Squares lists every square name, a1 through h8, rank by rank.
var Squares = func() []string {
	out := make([]string, 0, 64)
	for rank := 1; rank <= 8; rank++ {
		for file := 'a'; file <= 'h'; file++ {
			out = append(out, fmt.Sprintf("%c%d", file, rank))
		}
	}
	return out
}()

// PieceValue is the conventional material value of a piece type.
func PieceValue(t PieceType) int {
	switch t {
	case Pawn:
		return 1
	case Knight, Bishop:
		return 3
	case Rook:
		return 5
	case Queen:
		return 9
	default:
		return 0
	}
}

// Balance is White's material lead on b.
func Balance(b Board) int {
	return b.Material(true) - b.Material(false)
}

// OfficerSquares returns the squares holding a non-pawn piece of either colour.
func OfficerSquares(b Board) []string {
	var out []string
	for _, sq := range Squares {
		if p, ok := b.PieceAt(sq); ok && p.Type != Pawn {
			out = append(out, sq)
		}
	}
	return out
}

// Contains reports whether move is among b's legal moves.
func Contains(b Board, move string) bool {
	for _, m := range b.LegalMoves() {
		if m == move {
			return true
		}
	}
	return false
}
