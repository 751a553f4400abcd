package bracket

import "math/bits"

// AssignSeeds gives registrants seeds 1..n in registration order. The result
// only depends on the input order, so replays build identical brackets.
func AssignSeeds(registered []Participant) []Participant {
	seeded := make([]Participant, len(registered))
	for i, p := range registered {
		p.Seed = i + 1
		seeded[i] = p
	}
	return seeded
}

// SeedingPolicy decides who meets whom in round 0. Pairs returns seat indexes
// (0-based seed positions) for each round-0 match, in slot order.
type SeedingPolicy interface {
	Name() string
	Pairs(bracketSize int) [][2]int
}

const (
	AdjacentSeedingName = "adjacent"
	StandardSeedingName = "standard"
)

// AdjacentSeeding pairs 1v2, 3v4, ...
type AdjacentSeeding struct{}

func (AdjacentSeeding) Name() string { return AdjacentSeedingName }

func (AdjacentSeeding) Pairs(bracketSize int) [][2]int {
	pairs := make([][2]int, 0, bracketSize/2)
	for i := 0; i+1 < bracketSize; i += 2 {
		pairs = append(pairs, [2]int{i, i + 1})
	}
	return pairs
}

// StandardSeeding pairs 1 vs n and folds the draw so the top seeds can only
// meet in the last rounds.
type StandardSeeding struct{}

func (StandardSeeding) Name() string { return StandardSeedingName }

func (StandardSeeding) Pairs(bracketSize int) [][2]int {
	if bracketSize == 0 {
		return [][2]int{}
	}

	order := []int{0}
	for len(order) < bracketSize {
		next := make([]int, 0, len(order)*2)
		currentCount := len(order) * 2

		for _, seed := range order {
			next = append(next, seed, (currentCount-1)-seed)
		}
		order = next
	}

	pairs := make([][2]int, 0, bracketSize/2)
	for i := 0; i < len(order); i += 2 {
		pairs = append(pairs, [2]int{order[i], order[i+1]})
	}
	return pairs
}

func SeedingByName(name string) (SeedingPolicy, error) {
	switch name {
	case "", AdjacentSeedingName:
		return AdjacentSeeding{}, nil
	case StandardSeedingName:
		return StandardSeeding{}, nil
	default:
		return nil, ErrUnknownSeeding.Withf("%q", name)
	}
}

// ValidateSize checks that n seats can form a bracket.
func ValidateSize(n int) error {
	if n < 4 || n&(n-1) != 0 {
		return ErrInvalidParticipantCount.Withf("got %d", n)
	}
	return nil
}

// BracketSize rounds count up to the next power of two, with a floor of 4.
func BracketSize(count int) int {
	if count <= 4 {
		return 4
	}
	return 1 << bits.Len(uint(count-1))
}

func log2(n int) int {
	return bits.Len(uint(n)) - 1
}
