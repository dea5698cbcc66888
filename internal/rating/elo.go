package rating

import "math"

// KFactor - the fixed Elo K-factor used for every game.
const KFactor = 16

// Outcome - the result of a finished game, seen from player 1.
type Outcome int

const (
	OutcomeDraw Outcome = iota
	OutcomePlayer1Win
	OutcomePlayer2Win
)

// Elo - the zero-sum rating formula. Stateless, safe for concurrent use.
type Elo struct{}

func NewElo() *Elo {
	return &Elo{}
}

// Compute - returns the post-game ratings for both players, rounded to the
// nearest integer.
func (that *Elo) Compute(rating1, rating2 int, outcome Outcome) (int, int) {
	p1 := probability(rating1, rating2)
	p2 := probability(rating2, rating1)

	score1, score2 := 0.5, 0.5
	switch outcome {
	case OutcomePlayer1Win:
		score1, score2 = 1, 0
	case OutcomePlayer2Win:
		score1, score2 = 0, 1
	case OutcomeDraw:
	}

	newRating1 := float64(rating1) + KFactor*(score1-p1)
	newRating2 := float64(rating2) + KFactor*(score2-p2)

	return int(math.Round(newRating1)), int(math.Round(newRating2))
}

// Preview - returns the rating swings a pairing would produce before the
// game is played: high is the points at stake when the underdog wins, low
// when the favorite wins, and draw the favorite's loss on a draw.
func (that *Elo) Preview(rating1, rating2 int) (high, low, draw int) {
	p1 := probability(rating1, rating2)
	p2 := probability(rating2, rating1)

	highP := math.Max(p1, p2)
	lowP := math.Min(p1, p2)

	high = int(math.Round(KFactor * highP))
	low = int(math.Round(KFactor * lowP))
	draw = int(math.Round(KFactor * (0.5 - lowP)))

	return high, low, draw
}

// probability - the expected score of rating1 against rating2.
func probability(rating1, rating2 int) float64 {
	return 1 / (1 + math.Pow(10, float64(rating2-rating1)/400))
}
