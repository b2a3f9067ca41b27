package bracket

import "math"

// MaxEliminationTeams bounds single and double elimination brackets.
const MaxEliminationTeams = 256

type InputKind int

const (
	// InputNone marks a slot filled by a rule outside the successor map,
	// i.e. the bracket reset copying the grand final teams.
	InputNone InputKind = iota
	InputSeed
	InputWinner
	InputLoser
	InputStanding
)

// Input describes where one team position of a slot gets its team from.
type Input struct {
	Kind InputKind
	Seed int   // 0-based seed index, InputSeed only
	Rank int   // 1-based standings rank, InputStanding only
	From Coord // upstream match, InputWinner and InputLoser only

	// Phantom inputs can never receive a real team.
	Phantom bool
}

// Slot is one pre-allocated match of a bracket.
type Slot struct {
	Coord
	Inputs [2]Input
	// Status the match row is created with.
	Status MatchStatus
	// PhantomWinner is set on byes that no real team can ever reach.
	PhantomWinner bool
}

func (s Slot) IsBye() bool {
	return s.Status == MatchBye
}

type Successors struct {
	Winner *Target
	Loser  *Target
}

// Topology is the static shape of a bracket: every slot and the mapping
// from a match to the slots its winner and loser feed.
type Topology struct {
	Type      EliminationType
	TeamCount int
	// Size is the padded bracket size for elimination formats.
	Size int
	// Rounds is the number of winner bracket or round robin rounds.
	Rounds int
	Slots  []Slot

	index      map[Coord]int
	successors map[Coord]Successors
}

// Resolve computes the topology for a format and team count.
func Resolve(t EliminationType, teamCount int) (*Topology, error) {
	if !t.Valid() {
		return nil, NewValidationError("elimination_type", "unsupported format %q", t)
	}
	if teamCount < 2 {
		return nil, NewValidationError("team_count", "need at least 2 teams, got %d", teamCount)
	}

	topo := &Topology{
		Type:       t,
		TeamCount:  teamCount,
		index:      make(map[Coord]int),
		successors: make(map[Coord]Successors),
	}

	switch t {
	case SingleElimination, DoubleElimination:
		if teamCount > MaxEliminationTeams {
			return nil, NewValidationError("team_count", "elimination brackets support at most %d teams, got %d", MaxEliminationTeams, teamCount)
		}
		topo.buildWinnerBracket()
		if t == DoubleElimination {
			topo.buildLoserBracket()
			topo.buildChampionship()
		}
		topo.propagatePhantoms()
	case RoundRobin:
		topo.buildRoundRobin()
	case RoundRobinKnockout:
		if teamCount < 4 {
			return nil, NewValidationError("team_count", "round robin with knockout needs at least 4 teams, got %d", teamCount)
		}
		topo.buildRoundRobin()
		topo.buildKnockout()
	}

	return topo, nil
}

func (t *Topology) Slot(c Coord) (Slot, bool) {
	i, ok := t.index[c]
	if !ok {
		return Slot{}, false
	}
	return t.Slots[i], true
}

// Successor returns the downstream targets of a match. Terminal matches
// return the zero value.
func (t *Topology) Successor(c Coord) Successors {
	return t.successors[c]
}

// PlayableCount is the number of matches that will actually be played,
// excluding byes and hidden slots.
func (t *Topology) PlayableCount() int {
	n := 0
	for _, s := range t.Slots {
		if s.Status != MatchBye && s.Status != MatchHidden {
			n++
		}
	}
	return n
}

func (t *Topology) SemifinalCoord(order int) Coord {
	return Coord{Side: KnockoutSemifinal, Round: t.Rounds + 1, Order: order}
}

func (t *Topology) FinalCoord() Coord {
	return Coord{Side: KnockoutFinal, Round: t.Rounds + 2, Order: 1}
}

func (t *Topology) ThirdPlaceCoord() Coord {
	return Coord{Side: KnockoutThirdPlace, Round: t.Rounds + 2, Order: 2}
}

func (t *Topology) add(s Slot) {
	t.index[s.Coord] = len(t.Slots)
	t.Slots = append(t.Slots, s)
}

func (t *Topology) slot(c Coord) *Slot {
	return &t.Slots[t.index[c]]
}

// link routes the winner (or loser) of from into a team position of to.
func (t *Topology) link(from Coord, loser bool, to Target) {
	succ := t.successors[from]
	kind := InputWinner
	if loser {
		succ.Loser = &to
		kind = InputLoser
	} else {
		succ.Winner = &to
	}
	t.successors[from] = succ
	t.slot(to.Coord).Inputs[to.Position-1] = Input{Kind: kind, From: from}
}

// Gets the nearest power of 2 while rounding up, so with input 5 it returns 8 and so on
func calcBracketSize(count int) int {
	if count <= 0 {
		return 0
	}

	// Log2 -> Ceil -> 2^^log2 to round up
	log2 := math.Ceil(math.Log2(float64(count)))
	return int(math.Pow(2, log2))
}

// generateRound1Pairs returns 0-based seed pairs for round 1 so that the top
// seeds can only meet in the late rounds: 1v8, 4v5, 2v7, 3v6 for eight.
func generateRound1Pairs(bracketSize int) [][2]int {
	if bracketSize == 0 {
		return [][2]int{}
	}

	rounds := []int{0}
	for len(rounds) < bracketSize {
		var nextRound []int
		currentCount := len(rounds) * 2

		for _, seed := range rounds {
			nextRound = append(nextRound, seed)
			nextRound = append(nextRound, (currentCount-1)-seed)
		}
		rounds = nextRound
	}

	pairs := make([][2]int, 0, bracketSize/2)
	for i := 0; i < len(rounds); i += 2 {
		pairs = append(pairs, [2]int{rounds[i], rounds[i+1]})
	}

	return pairs
}

// feederPosition is the team position an upstream match of the given order
// fills when two matches feed one.
func feederPosition(order int) int {
	if order%2 != 0 {
		return 1
	}
	return 2
}

func (t *Topology) buildWinnerBracket() {
	t.Size = calcBracketSize(t.TeamCount)
	t.Rounds = int(math.Log2(float64(t.Size)))

	for r := 1; r <= t.Rounds; r++ {
		status := MatchPending
		if r == 1 {
			status = MatchScheduled
		}
		for o := 1; o <= t.Size>>r; o++ {
			t.add(Slot{Coord: Coord{Side: WinnerSide, Round: r, Order: o}, Status: status})
		}
	}

	for i, pair := range generateRound1Pairs(t.Size) {
		s := t.slot(Coord{Side: WinnerSide, Round: 1, Order: i + 1})
		s.Inputs[0] = Input{Kind: InputSeed, Seed: pair[0]}
		s.Inputs[1] = Input{Kind: InputSeed, Seed: pair[1]}
	}

	for r := 1; r < t.Rounds; r++ {
		for o := 1; o <= t.Size>>r; o++ {
			next := Coord{Side: WinnerSide, Round: r + 1, Order: (o + 1) / 2}
			t.link(Coord{Side: WinnerSide, Round: r, Order: o}, false, Target{Coord: next, Position: feederPosition(o)})
		}
	}
}

// loserRoundSize is the number of matches in loser round j. Odd rounds
// pair survivors with each other (round 1 pairs winner bracket round 1
// losers), even rounds take a fresh drop from the winner bracket.
func loserRoundSize(size, j int) int {
	if j%2 == 1 {
		return size >> ((j+1)/2 + 1)
	}
	return size >> (j/2 + 1)
}

func (t *Topology) buildLoserBracket() {
	k := t.Rounds
	last := 2 * (k - 1)

	for j := 1; j <= last; j++ {
		for o := 1; o <= loserRoundSize(t.Size, j); o++ {
			t.add(Slot{Coord: Coord{Side: LoserSide, Round: LoserRound(j), Order: o}, Status: MatchPending})
		}
	}
	if last == 0 {
		return
	}

	for o := 1; o <= t.Size>>1; o++ {
		to := Coord{Side: LoserSide, Round: LoserRound(1), Order: (o + 1) / 2}
		t.link(Coord{Side: WinnerSide, Round: 1, Order: o}, true, Target{Coord: to, Position: feederPosition(o)})
	}
	for r := 2; r <= k; r++ {
		count := t.Size >> r
		for o := 1; o <= count; o++ {
			// Reversing every other drop keeps rematches apart.
			order := o
			if r%2 == 0 {
				order = count + 1 - o
			}
			to := Coord{Side: LoserSide, Round: LoserRound(2 * (r - 1)), Order: order}
			t.link(Coord{Side: WinnerSide, Round: r, Order: o}, true, Target{Coord: to, Position: 2})
		}
	}

	for j := 1; j < last; j++ {
		for o := 1; o <= loserRoundSize(t.Size, j); o++ {
			from := Coord{Side: LoserSide, Round: LoserRound(j), Order: o}
			if j%2 == 1 {
				t.link(from, false, Target{Coord: Coord{Side: LoserSide, Round: LoserRound(j + 1), Order: o}, Position: 1})
			} else {
				next := Coord{Side: LoserSide, Round: LoserRound(j + 1), Order: (o + 1) / 2}
				t.link(from, false, Target{Coord: next, Position: feederPosition(o)})
			}
		}
	}
}

func (t *Topology) buildChampionship() {
	k := t.Rounds
	t.add(Slot{Coord: GrandFinal(), Status: MatchPending})
	t.add(Slot{Coord: BracketReset(), Status: MatchHidden})

	t.link(Coord{Side: WinnerSide, Round: k, Order: 1}, false, Target{Coord: GrandFinal(), Position: 1})
	if k == 1 {
		t.link(Coord{Side: WinnerSide, Round: 1, Order: 1}, true, Target{Coord: GrandFinal(), Position: 2})
		return
	}
	t.link(Coord{Side: LoserSide, Round: LoserRound(2 * (k - 1)), Order: 1}, false, Target{Coord: GrandFinal(), Position: 2})
}

// propagatePhantoms turns every slot with a padding input into a bye. Slots
// are stored upstream first, so one forward pass settles the whole bracket.
func (t *Topology) propagatePhantoms() {
	phantomWinner := make(map[Coord]bool)

	for i := range t.Slots {
		s := &t.Slots[i]
		phantoms := 0
		for p := range s.Inputs {
			in := &s.Inputs[p]
			switch in.Kind {
			case InputSeed:
				in.Phantom = in.Seed >= t.TeamCount
			case InputWinner:
				in.Phantom = phantomWinner[in.From]
			case InputLoser:
				// A bye never has a real loser.
				in.Phantom = t.Slots[t.index[in.From]].IsBye()
			}
			if in.Phantom {
				phantoms++
			}
		}
		if phantoms > 0 {
			s.Status = MatchBye
			s.PhantomWinner = phantoms == 2
			phantomWinner[s.Coord] = s.PhantomWinner
		}
	}
}

// buildRoundRobin schedules an all-play-all with the circle method: seat 0
// stays put while the others rotate, and an odd field gets an empty seat.
func (t *Topology) buildRoundRobin() {
	seats := make([]int, t.TeamCount)
	for i := range seats {
		seats[i] = i
	}
	if len(seats)%2 == 1 {
		seats = append(seats, -1)
	}
	n := len(seats)
	t.Rounds = n - 1

	for r := 1; r <= t.Rounds; r++ {
		order := 0
		for i := 0; i < n/2; i++ {
			a, b := seats[i], seats[n-1-i]
			if a < 0 || b < 0 {
				continue
			}
			order++
			t.add(Slot{
				Coord:  Coord{Side: RoundRobinSide, Round: r, Order: order},
				Inputs: [2]Input{{Kind: InputSeed, Seed: a}, {Kind: InputSeed, Seed: b}},
				Status: MatchScheduled,
			})
		}

		last := seats[n-1]
		copy(seats[2:], seats[1:n-1])
		seats[1] = last
	}
}

// buildKnockout appends semifinals (1v4, 2v3 by standings), a final and a
// third place match after the round robin rounds.
func (t *Topology) buildKnockout() {
	for o, ranks := range [][2]int{{1, 4}, {2, 3}} {
		t.add(Slot{
			Coord: t.SemifinalCoord(o + 1),
			Inputs: [2]Input{
				{Kind: InputStanding, Rank: ranks[0]},
				{Kind: InputStanding, Rank: ranks[1]},
			},
			Status: MatchHidden,
		})
	}
	t.add(Slot{Coord: t.FinalCoord(), Status: MatchHidden})
	t.add(Slot{Coord: t.ThirdPlaceCoord(), Status: MatchHidden})

	for o := 1; o <= 2; o++ {
		from := t.SemifinalCoord(o)
		t.link(from, false, Target{Coord: t.FinalCoord(), Position: o})
		t.link(from, true, Target{Coord: t.ThirdPlaceCoord(), Position: o})
	}
}
