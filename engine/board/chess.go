package board

import (
	"fmt"

	"github.com/notnil/chess"

	"github.com/nathoo/metaleague/types"
)

// Chess is a Board backed by github.com/notnil/chess.
type Chess struct {
	game *chess.Game
}

// NewChess returns a board in the standard starting position.
func NewChess() *Chess {
	return &Chess{game: chess.NewGame()}
}

// ChessAdapter creates standard boards for every character.
type ChessAdapter struct{}

func (ChessAdapter) NewBoard(*types.Character) Board { return NewChess() }

var squareIndex = func() map[string]chess.Square {
	m := make(map[string]chess.Square, 64)
	for i := 0; i < 64; i++ {
		sq := chess.Square(i)
		m[sq.String()] = sq
	}
	return m
}()

func (b *Chess) LegalMoves() []string {
	moves := b.game.ValidMoves()
	out := make([]string, len(moves))
	for i, m := range moves {
		out[i] = m.String()
	}
	return out
}

func (b *Chess) Push(move string) error {
	m, err := chess.UCINotation{}.Decode(b.game.Position(), move)
	if err != nil {
		return fmt.Errorf("decoding move %q: %w", move, err)
	}
	if err := b.game.Move(m); err != nil {
		return fmt.Errorf("playing move %q: %w", move, err)
	}
	return nil
}

func (b *Chess) PieceAt(square string) (Piece, bool) {
	sq, ok := squareIndex[square]
	if !ok {
		return Piece{}, false
	}
	p := b.game.Position().Board().Piece(sq)
	if p == chess.NoPiece {
		return Piece{}, false
	}
	return Piece{Type: pieceType(p.Type()), White: p.Color() == chess.White}, true
}

func (b *Chess) Material(white bool) int {
	want := chess.Black
	if white {
		want = chess.White
	}
	total := 0
	for _, p := range b.game.Position().Board().SquareMap() {
		if p.Color() == want {
			total += PieceValue(pieceType(p.Type()))
		}
	}
	return total
}

func (b *Chess) IsGameOver() bool {
	return b.game.Outcome() != chess.NoOutcome
}

func (b *Chess) Result() string {
	return string(b.game.Outcome())
}

func (b *Chess) WhiteToMove() bool {
	return b.game.Position().Turn() == chess.White
}

func (b *Chess) Clone() Board {
	return &Chess{game: b.game.Clone()}
}

// Position exposes the underlying position for UCI engines.
func (b *Chess) Position() *chess.Position {
	return b.game.Position()
}

// ClaimDraw ends the game if a threefold repetition or fifty-move draw is
// available. Returns whether it did.
func (b *Chess) ClaimDraw() bool {
	for _, method := range b.game.EligibleDraws() {
		if method != chess.ThreefoldRepetition && method != chess.FiftyMoveRule {
			continue
		}
		if err := b.game.Draw(method); err == nil {
			return true
		}
	}
	return false
}

func pieceType(t chess.PieceType) PieceType {
	switch t {
	case chess.Pawn:
		return Pawn
	case chess.Knight:
		return Knight
	case chess.Bishop:
		return Bishop
	case chess.Rook:
		return Rook
	case chess.Queen:
		return Queen
	case chess.King:
		return King
	default:
		return 0
	}
}
