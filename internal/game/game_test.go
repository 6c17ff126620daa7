package game

import (
	"ctchen222/morpion/internal/apperror"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boardWith(cells [3][3]PlayerMark) *Board {
	b := NewBoard(StartX)
	b.cells = cells
	return b
}

func TestCheckTerminal(t *testing.T) {
	tests := []struct {
		name  string
		board [3][3]PlayerMark
		want  Result
	}{
		{
			name:  "No winner - empty board",
			board: [3][3]PlayerMark{},
			want:  ResultNone,
		},
		{
			name: "No winner - partial board",
			board: [3][3]PlayerMark{
				{PlayerX, None, None},
				{None, PlayerO, None},
				{None, None, None},
			},
			want: ResultNone,
		},
		{
			name: "X wins - first row",
			board: [3][3]PlayerMark{
				{PlayerX, PlayerX, PlayerX},
				{None, PlayerO, None},
				{None, None, PlayerO},
			},
			want: ResultX,
		},
		{
			name: "O wins - second column",
			board: [3][3]PlayerMark{
				{PlayerX, PlayerO, None},
				{PlayerX, PlayerO, None},
				{None, PlayerO, None},
			},
			want: ResultO,
		},
		{
			name: "X wins - main diagonal",
			board: [3][3]PlayerMark{
				{PlayerX, None, None},
				{None, PlayerX, None},
				{None, None, PlayerX},
			},
			want: ResultX,
		},
		{
			name: "O wins - anti-diagonal",
			board: [3][3]PlayerMark{
				{None, None, PlayerO},
				{None, PlayerO, None},
				{PlayerO, None, None},
			},
			want: ResultO,
		},
		{
			name: "X wins on a full board",
			board: [3][3]PlayerMark{
				{PlayerX, PlayerX, PlayerX},
				{PlayerO, PlayerO, PlayerX},
				{PlayerO, PlayerX, PlayerO},
			},
			want: ResultX,
		},
		{
			name: "Draw - full board",
			board: [3][3]PlayerMark{
				{PlayerX, PlayerO, PlayerX},
				{PlayerX, PlayerO, PlayerO},
				{PlayerO, PlayerX, PlayerX},
			},
			want: Draw,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := boardWith(tt.board).checkTerminal(); got != tt.want {
				t.Errorf("checkTerminal() got = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCheckTerminal_EveryLine(t *testing.T) {
	for i, line := range lines {
		var cells [3][3]PlayerMark
		for _, cell := range line {
			cells[cell[0]][cell[1]] = PlayerO
		}
		assert.Equal(t, ResultO, boardWith(cells).checkTerminal(), "line %d", i)
	}
}

func TestIsBoardFull(t *testing.T) {
	tests := []struct {
		name  string
		board [3][3]PlayerMark
		want  bool
	}{
		{
			name:  "Empty board is not full",
			board: [3][3]PlayerMark{},
			want:  false,
		},
		{
			name: "Partial board is not full",
			board: [3][3]PlayerMark{
				{PlayerX, None, None},
				{None, PlayerO, None},
				{None, None, None},
			},
			want: false,
		},
		{
			name: "Full board is full",
			board: [3][3]PlayerMark{
				{PlayerX, PlayerO, PlayerX},
				{PlayerX, PlayerO, PlayerO},
				{PlayerO, PlayerX, PlayerX},
			},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsBoardFull(tt.board); got != tt.want {
				t.Errorf("IsBoardFull() got = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestApplyMove_Rejections(t *testing.T) {
	b := NewBoard(StartX)
	require.NoError(t, b.ApplyMove(0, 0, PlayerX))
	before := b.String()

	tests := []struct {
		name     string
		row, col int
		mark     PlayerMark
		want     error
	}{
		{name: "row too low", row: -1, col: 0, mark: PlayerO, want: apperror.ErrOutOfRange},
		{name: "col too high", row: 0, col: 3, mark: PlayerO, want: apperror.ErrOutOfRange},
		{name: "occupied by the right player", row: 0, col: 0, mark: PlayerO, want: apperror.ErrCellOccupied},
		{name: "occupied by the wrong player", row: 0, col: 0, mark: PlayerX, want: apperror.ErrCellOccupied},
		{name: "wrong turn", row: 1, col: 1, mark: PlayerX, want: apperror.ErrNotYourTurn},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := b.ApplyMove(tt.row, tt.col, tt.mark)
			require.ErrorIs(t, err, tt.want)
			assert.Equal(t, before, b.String())
			assert.Equal(t, PlayerO, b.Turn())
		})
	}
}

func TestApplyMove_AlreadyOver(t *testing.T) {
	b := NewBoard(StartX)
	for _, m := range [][2]int{{0, 0}, {1, 0}, {0, 1}, {1, 1}, {0, 2}} {
		require.NoError(t, b.ApplyMove(m[0], m[1], b.Turn()))
	}
	require.True(t, b.Terminal())
	assert.Equal(t, ResultX, b.Result())

	err := b.ApplyMove(2, 2, PlayerO)
	assert.ErrorIs(t, err, apperror.ErrAlreadyOver)
	assert.Equal(t, None, b.Cells()[2][2])
}

func TestApplyMove_DrawSequence(t *testing.T) {
	// X O X / X O O / O X X
	moves := [][2]int{{0, 0}, {0, 1}, {0, 2}, {1, 1}, {1, 0}, {1, 2}, {2, 1}, {2, 0}, {2, 2}}
	b := NewBoard(StartX)
	for i, m := range moves {
		require.False(t, b.Terminal(), "terminal before move %d", i)
		require.NoError(t, b.ApplyMove(m[0], m[1], b.Turn()))
		require.NoError(t, b.CheckInvariants())
	}
	assert.True(t, b.Terminal())
	assert.Equal(t, Draw, b.Result())
}

func TestApplyMove_StartingMarkerO(t *testing.T) {
	b := NewBoard(StartO)
	assert.Equal(t, PlayerO, b.Turn())
	assert.ErrorIs(t, b.ApplyMove(1, 1, PlayerX), apperror.ErrNotYourTurn)
	require.NoError(t, b.ApplyMove(1, 1, PlayerO))
	assert.Equal(t, PlayerX, b.Turn())
	assert.NoError(t, b.CheckInvariants())
}

func TestReset(t *testing.T) {
	b := NewBoard(StartX)
	require.NoError(t, b.ApplyMove(1, 1, PlayerX))
	b.Reset()
	assert.Equal(t, [3][3]PlayerMark{}, b.Cells())
	assert.Equal(t, PlayerX, b.Turn())
	assert.False(t, b.Terminal())
}

func TestString(t *testing.T) {
	b := NewBoard(StartX)
	assert.Equal(t, " | | \n | | \n | | ", b.String())

	require.NoError(t, b.ApplyMove(0, 0, PlayerX))
	require.NoError(t, b.ApplyMove(2, 1, PlayerO))
	assert.Equal(t, "X| | \n | | \n |O| ", b.String())
}

func TestParseBoard(t *testing.T) {
	cells, err := ParseBoard("X| |O\n |X| \nO| | ")
	require.NoError(t, err)
	assert.Equal(t, PlayerX, cells[0][0])
	assert.Equal(t, PlayerO, cells[0][2])
	assert.Equal(t, None, cells[2][2])
	assert.Equal(t, "X| |O\n |X| \nO| | ", FormatCells(cells))

	_, err = ParseBoard("X|O\n | | \n | | ")
	assert.Error(t, err)
	_, err = ParseBoard("Z| | \n | | \n | | ")
	assert.Error(t, err)
}

func TestParseStartingMarker(t *testing.T) {
	m, err := ParseStartingMarker("RANDOM")
	require.NoError(t, err)
	assert.Equal(t, StartRandom, m)

	m, err = ParseStartingMarker("")
	require.NoError(t, err)
	assert.Equal(t, StartX, m)

	_, err = ParseStartingMarker("z")
	assert.Error(t, err)
}

func TestRandomlyChooseFirstPlayer(t *testing.T) {
	// Not a statistical test, only checks that both values show up
	seenX := false
	seenO := false
	for i := 0; i < 100; i++ {
		b := NewBoard(StartRandom)
		switch b.Turn() {
		case PlayerX:
			seenX = true
		case PlayerO:
			seenO = true
		default:
			t.Fatalf("random start produced invalid mark: %v", b.Turn())
		}
	}

	if !seenX || !seenO {
		t.Errorf("random start did not return both marks over 100 runs. Seen X: %v, Seen O: %v", seenX, seenO)
	}
}
