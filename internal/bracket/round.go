package bracket

import "fmt"

type RoundStatus string

const (
	RoundWaiting   RoundStatus = "waiting"
	RoundActive    RoundStatus = "active"
	RoundCompleted RoundStatus = "completed"
)

type Round struct {
	Index   int         `json:"index"`
	Name    string      `json:"name"`
	Section Section     `json:"section"`
	Status  RoundStatus `json:"status"`
	Matches []*Match    `json:"matches"`
}

func (r *Round) completed() bool {
	for _, m := range r.Matches {
		if m.Status != MatchCompleted {
			return false
		}
	}
	return true
}

func (r *Round) clone() *Round {
	c := *r
	c.Matches = make([]*Match, len(r.Matches))
	for i, m := range r.Matches {
		c.Matches[i] = m.clone()
	}
	return &c
}

// roundName names a round by its distance to the last round of its section.
func roundName(format Format, section Section, index, total int) string {
	var name string
	switch total - 1 - index {
	case 0:
		name = "Final"
	case 1:
		name = "Semi-Finals"
	case 2:
		name = "Quarter-Finals"
	default:
		name = fmt.Sprintf("Round %d", index+1)
	}

	if format == SingleElimination {
		return name
	}

	switch section {
	case WinnersSection:
		return "Winners " + name
	case LosersSection:
		if index == total-1 {
			return "Losers Final"
		}
		return fmt.Sprintf("Losers Round %d", index+1)
	default:
		if index == 0 {
			return "Grand Final"
		}
		return "Grand Final Reset"
	}
}
