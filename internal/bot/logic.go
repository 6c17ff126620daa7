package bot

import (
	"ctchen222/morpion/internal/game"
	"fmt"
	"math/rand/v2"
	"strings"
)

// Difficulty selects the bot's strategy.
type Difficulty string

const (
	Easy   Difficulty = "easy"
	Medium Difficulty = "medium"
	Hard   Difficulty = "hard"
)

// ParseDifficulty validates a difficulty name; empty means Hard.
func ParseDifficulty(s string) (Difficulty, error) {
	switch d := Difficulty(strings.ToLower(s)); d {
	case Easy, Medium, Hard:
		return d, nil
	case "":
		return Hard, nil
	default:
		return "", fmt.Errorf("unknown bot difficulty %q", s)
	}
}

var (
	corners = [][2]int{{0, 0}, {0, 2}, {2, 0}, {2, 2}}
	sides   = [][2]int{{0, 1}, {1, 0}, {1, 2}, {2, 1}}
)

// CalculateNextMove determines the bot's next move based on the specified difficulty.
// It returns -1, -1 when the board is full.
func CalculateNextMove(board [3][3]game.PlayerMark, botMark game.PlayerMark, difficulty Difficulty) (row, col int) {
	switch difficulty {
	case Easy:
		return easyMove(board)
	case Medium:
		return mediumMove(board, botMark)
	default:
		return hardMove(board, botMark)
	}
}

// easyMove makes a completely random move.
func easyMove(board [3][3]game.PlayerMark) (row, col int) {
	var available [][2]int
	for r, rowData := range board {
		for c, cell := range rowData {
			if cell == game.None {
				available = append(available, [2]int{r, c})
			}
		}
	}
	return pick(available)
}

// mediumMove will win if it can, block if it must, otherwise move randomly.
func mediumMove(board [3][3]game.PlayerMark, botMark game.PlayerMark) (row, col int) {
	if r, c, ok := winOrBlock(board, botMark); ok {
		return r, c
	}
	return easyMove(board)
}

// hardMove wins, blocks, then prefers center, corners and sides in that order.
func hardMove(board [3][3]game.PlayerMark, botMark game.PlayerMark) (row, col int) {
	if r, c, ok := winOrBlock(board, botMark); ok {
		return r, c
	}
	if board[1][1] == game.None {
		return 1, 1
	}
	if r, c := pick(free(board, corners)); r != -1 {
		return r, c
	}
	return pick(free(board, sides))
}

func winOrBlock(board [3][3]game.PlayerMark, botMark game.PlayerMark) (row, col int, found bool) {
	if r, c, ok := findWinningMove(board, botMark); ok {
		return r, c, true
	}
	return findWinningMove(board, game.Opponent(botMark))
}

// findWinningMove looks for a line holding two of mark and one empty cell.
func findWinningMove(board [3][3]game.PlayerMark, mark game.PlayerMark) (row, col int, found bool) {
	for _, line := range game.Lines() {
		owned, empty := 0, [2]int{-1, -1}
		for _, cell := range line {
			switch board[cell[0]][cell[1]] {
			case mark:
				owned++
			case game.None:
				empty = cell
			}
		}
		if owned == 2 && empty[0] != -1 {
			return empty[0], empty[1], true
		}
	}
	return -1, -1, false
}

func free(board [3][3]game.PlayerMark, cells [][2]int) [][2]int {
	var out [][2]int
	for _, cell := range cells {
		if board[cell[0]][cell[1]] == game.None {
			out = append(out, cell)
		}
	}
	return out
}

func pick(cells [][2]int) (row, col int) {
	if len(cells) == 0 {
		return -1, -1
	}
	cell := cells[rand.IntN(len(cells))]
	return cell[0], cell[1]
}
