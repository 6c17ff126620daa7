package game

import (
	"ctchen222/morpion/internal/apperror"
	"fmt"
	"math/rand/v2"
	"strings"
)

// PlayerMark represents the mark of a player (X, O) or an empty cell.
type PlayerMark string

// Result is the outcome of a board: a winning mark, a draw, or none yet.
type Result string

// StartingMarker selects which mark moves first after every reset.
type StartingMarker string

const (
	// Player marks
	None    PlayerMark = ""
	PlayerX PlayerMark = "X"
	PlayerO PlayerMark = "O"

	// Game results
	ResultNone Result = ""
	ResultX    Result = "X"
	ResultO    Result = "O"
	Draw       Result = "DRAW"

	// Starting marker policies
	StartX      StartingMarker = "x"
	StartO      StartingMarker = "o"
	StartRandom StartingMarker = "random"

	// Board boundaries
	BorderMin = 0
	BorderMax = 2

	// Serialization
	CellDelimiter = "|"
	RowDelimiter  = "\n"
	emptyCell     = " "
)

// lines lists every winning line in scan order: rows, columns, diagonals.
var lines = [8][3][2]int{
	{{0, 0}, {0, 1}, {0, 2}},
	{{1, 0}, {1, 1}, {1, 2}},
	{{2, 0}, {2, 1}, {2, 2}},
	{{0, 0}, {1, 0}, {2, 0}},
	{{0, 1}, {1, 1}, {2, 1}},
	{{0, 2}, {1, 2}, {2, 2}},
	{{0, 0}, {1, 1}, {2, 2}},
	{{0, 2}, {1, 1}, {2, 0}},
}

// Lines returns every winning line in scan order.
func Lines() [8][3][2]int { return lines }

// Board is the state machine of a single game. It has no locking of its own;
// the owning room serializes every call.
type Board struct {
	cells    [3][3]PlayerMark
	turn     PlayerMark
	first    PlayerMark
	result   Result
	starting StartingMarker
}

// NewBoard returns a cleared board whose first turn follows the given policy.
func NewBoard(starting StartingMarker) *Board {
	b := &Board{starting: starting}
	b.Reset()
	return b
}

// ParseStartingMarker validates a configured policy name.
func ParseStartingMarker(s string) (StartingMarker, error) {
	switch m := StartingMarker(strings.ToLower(s)); m {
	case StartX, StartO, StartRandom:
		return m, nil
	case "":
		return StartX, nil
	default:
		return "", fmt.Errorf("unknown starting marker %q", s)
	}
}

// Reset clears every cell and picks the starting mark.
func (b *Board) Reset() {
	b.cells = [3][3]PlayerMark{}
	b.result = ResultNone
	switch b.starting {
	case StartO:
		b.first = PlayerO
	case StartRandom:
		b.first = randomlyChooseFirstPlayer()
	default:
		b.first = PlayerX
	}
	b.turn = b.first
}

// ApplyMove places mark at (row, col). A rejected move leaves the board
// untouched and returns one of the apperror validation sentinels.
func (b *Board) ApplyMove(row, col int, mark PlayerMark) error {
	if row < BorderMin || row > BorderMax || col < BorderMin || col > BorderMax {
		return apperror.ErrOutOfRange
	}
	if b.cells[row][col] != None {
		return apperror.ErrCellOccupied
	}
	if b.result != ResultNone {
		return apperror.ErrAlreadyOver
	}
	if mark != b.turn {
		return apperror.ErrNotYourTurn
	}

	b.cells[row][col] = mark
	b.result = b.checkTerminal()
	if b.result == ResultNone {
		b.turn = Opponent(mark)
	}
	return nil
}

func (b *Board) checkTerminal() Result {
	for _, line := range lines {
		a := b.cells[line[0][0]][line[0][1]]
		if a != None && a == b.cells[line[1][0]][line[1][1]] && a == b.cells[line[2][0]][line[2][1]] {
			return Result(a)
		}
	}
	if IsBoardFull(b.cells) {
		return Draw
	}
	return ResultNone
}

// Turn returns the mark expected to move next.
func (b *Board) Turn() PlayerMark { return b.turn }

// Result returns the outcome, ResultNone while the game is running.
func (b *Board) Result() Result { return b.result }

// Terminal reports whether no further move is possible.
func (b *Board) Terminal() bool { return b.result != ResultNone }

// Cells returns a copy of the grid.
func (b *Board) Cells() [3][3]PlayerMark { return b.cells }

// String renders the board in its wire format: three cells per row joined by
// CellDelimiter, rows joined by RowDelimiter, a space for an empty cell.
func (b *Board) String() string {
	return FormatCells(b.cells)
}

// FormatCells renders a grid in the board wire format.
func FormatCells(cells [3][3]PlayerMark) string {
	rows := make([]string, 0, 3)
	for _, row := range cells {
		parts := make([]string, 0, 3)
		for _, cell := range row {
			if cell == None {
				parts = append(parts, emptyCell)
			} else {
				parts = append(parts, string(cell))
			}
		}
		rows = append(rows, strings.Join(parts, CellDelimiter))
	}
	return strings.Join(rows, RowDelimiter)
}

// ParseBoard is the inverse of FormatCells.
func ParseBoard(s string) ([3][3]PlayerMark, error) {
	var cells [3][3]PlayerMark
	rows := strings.Split(s, RowDelimiter)
	if len(rows) != 3 {
		return cells, fmt.Errorf("board has %d rows, want 3", len(rows))
	}
	for r, row := range rows {
		parts := strings.Split(row, CellDelimiter)
		if len(parts) != 3 {
			return cells, fmt.Errorf("row %d has %d cells, want 3", r, len(parts))
		}
		for c, part := range parts {
			switch part {
			case emptyCell:
				cells[r][c] = None
			case string(PlayerX), string(PlayerO):
				cells[r][c] = PlayerMark(part)
			default:
				return cells, fmt.Errorf("invalid cell %q at %d,%d", part, r, c)
			}
		}
	}
	return cells, nil
}

// CheckInvariants verifies the mark counts against the strict alternation
// implied by the starting mark.
func (b *Board) CheckInvariants() error {
	counts := map[PlayerMark]int{}
	for _, row := range b.cells {
		for _, cell := range row {
			counts[cell]++
		}
	}
	diff := counts[b.first] - counts[Opponent(b.first)]
	if diff != 0 && diff != 1 {
		return fmt.Errorf("mark counts out of balance: %s=%d %s=%d", b.first, counts[b.first], Opponent(b.first), counts[Opponent(b.first)])
	}
	return nil
}

// IsBoardFull reports whether no empty cell remains.
func IsBoardFull(cells [3][3]PlayerMark) bool {
	for r := range [3]int{} {
		for c := range [3]int{} {
			if cells[r][c] == None {
				return false
			}
		}
	}
	return true
}

// Opponent returns the other mark.
func Opponent(mark PlayerMark) PlayerMark {
	if mark == PlayerX {
		return PlayerO
	}
	return PlayerX
}

func randomlyChooseFirstPlayer() PlayerMark {
	if rand.IntN(2) == 0 {
		return PlayerX
	}
	return PlayerO
}
