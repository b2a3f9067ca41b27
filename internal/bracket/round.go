package bracket

import "fmt"

// Persisted round numbers encode the side of a double elimination bracket.
// Nothing outside this file should do arithmetic on them.
const (
	loserRoundOffset  = 100
	GrandFinalRound   = 200
	BracketResetRound = 201
)

// LoserRound converts a loser bracket round (1-based) to its stored round number.
func LoserRound(round int) int {
	return loserRoundOffset + round
}

// LoserRoundIndex is the inverse of LoserRound.
func LoserRoundIndex(roundNumber int) int {
	return roundNumber - loserRoundOffset
}

// Coord addresses a match slot inside a bracket. Round is the stored round
// number, so loser bracket coordinates already carry the offset.
type Coord struct {
	Side  BracketSide
	Round int
	Order int
}

func (c Coord) String() string {
	if c.Side == LoserSide {
		return fmt.Sprintf("%s/L%d/%d", c.Side, LoserRoundIndex(c.Round), c.Order)
	}
	return fmt.Sprintf("%s/%d/%d", c.Side, c.Round, c.Order)
}

func GrandFinal() Coord {
	return Coord{Side: ChampionshipSide, Round: GrandFinalRound, Order: 1}
}

func BracketReset() Coord {
	return Coord{Side: ChampionshipSide, Round: BracketResetRound, Order: 1}
}

func (c Coord) IsGrandFinal() bool {
	return c == GrandFinal()
}

func (c Coord) IsBracketReset() bool {
	return c == BracketReset()
}

// Target is one team position (1 or 2) of a downstream match.
type Target struct {
	Coord
	Position int
}

func (t Target) String() string {
	return fmt.Sprintf("%s#%d", t.Coord, t.Position)
}
