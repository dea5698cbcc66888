package entity

// BoardSize - the fixed side of the grid. The game is defined on 19x19 only.
const BoardSize = 19

const winRun = 5

const (
	StoneNone Stone = ""
	StoneX    Stone = "X"
	StoneO    Stone = "O"
)

// Stone - the mark occupying one cell of the board.
type Stone string

// Board - a 19x19 grid of stones plus a move counter. Pure data and
// algorithm, no I/O. MoveCount always equals the number of non-empty cells.
type Board struct {
	Cells     [BoardSize][BoardSize]Stone `json:"cells"`
	MoveCount int                         `json:"move_count"`
}

func NewBoard() *Board {
	return &Board{}
}

// Place - marks a cell with the given stone. Returns false without touching
// the board when the position is out of bounds or the cell is occupied.
func (that *Board) Place(stone Stone, row, col int) bool {
	if !isValidPosition(row) || !isValidPosition(col) {
		return false
	}

	if that.Cells[row][col] != StoneNone {
		return false
	}

	that.Cells[row][col] = stone
	that.MoveCount++

	return true
}

func (that *Board) IsFull() bool {
	return that.MoveCount == BoardSize*BoardSize
}

// CheckWin - reports whether the stone just played at (row, col) completes a
// run of exactly five on any of the four axes through that cell. A run of six
// or more does not win: the streak must measure exactly five inside the
// examined window.
func (that *Board) CheckWin(row, col int, stone Stone) bool {
	return that.hasWinByRow(row, col, stone) ||
		that.hasWinByColumn(row, col, stone) ||
		that.hasWinByMainDiagonal(row, col, stone) ||
		that.hasWinByCounterDiagonal(row, col, stone)
}

// hasWinByRow - scans the horizontal window of up to 9 cells centered on the
// move, clamped to the board edges.
func (that *Board) hasWinByRow(row, col int, stone Stone) bool {
	colStart := clampPosition(col - winRun + 1)
	colEnd := clampPosition(col + winRun - 1)

	currentStreak, maxStreak := 0, 0
	for c := colStart; c <= colEnd; c++ {
		if that.Cells[row][c] != stone {
			maxStreak = max(currentStreak, maxStreak)
			currentStreak = 0
			continue
		}
		currentStreak++
	}
	maxStreak = max(currentStreak, maxStreak)

	return maxStreak == winRun
}

func (that *Board) hasWinByColumn(row, col int, stone Stone) bool {
	rowStart := clampPosition(row - winRun + 1)
	rowEnd := clampPosition(row + winRun - 1)

	currentStreak, maxStreak := 0, 0
	for r := rowStart; r <= rowEnd; r++ {
		if that.Cells[r][col] != stone {
			maxStreak = max(currentStreak, maxStreak)
			currentStreak = 0
			continue
		}
		currentStreak++
	}
	maxStreak = max(currentStreak, maxStreak)

	return maxStreak == winRun
}

// hasWinByMainDiagonal - scans offsets -4..4 along the top-left to
// bottom-right diagonal. Out-of-range coordinates are skipped, they do not
// break the streak.
func (that *Board) hasWinByMainDiagonal(row, col int, stone Stone) bool {
	currentStreak, maxStreak := 0, 0
	for i := -(winRun - 1); i <= winRun-1; i++ {
		r, c := row+i, col+i
		if !isValidPosition(r) || !isValidPosition(c) {
			continue
		}
		if that.Cells[r][c] != stone {
			maxStreak = max(currentStreak, maxStreak)
			currentStreak = 0
			continue
		}
		currentStreak++
	}
	maxStreak = max(currentStreak, maxStreak)

	return maxStreak == winRun
}

func (that *Board) hasWinByCounterDiagonal(row, col int, stone Stone) bool {
	currentStreak, maxStreak := 0, 0
	for i := -(winRun - 1); i <= winRun-1; i++ {
		r, c := row+i, col-i
		if !isValidPosition(r) || !isValidPosition(c) {
			continue
		}
		if that.Cells[r][c] != stone {
			maxStreak = max(currentStreak, maxStreak)
			currentStreak = 0
			continue
		}
		currentStreak++
	}
	maxStreak = max(currentStreak, maxStreak)

	return maxStreak == winRun
}

func isValidPosition(n int) bool {
	return n >= 0 && n < BoardSize
}

func clampPosition(n int) int {
	return max(0, min(n, BoardSize-1))
}
