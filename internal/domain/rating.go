package domain

import "fmt"

// Rating is the user's recall quality for a single review. The meaning
// of a value depends on the Scale it is drawn from; the named constants
// below belong to the canonical 0-5 SM-2 scale.
type Rating int

const (
	Blackout  Rating = 0 // complete blackout, no recall
	Incorrect Rating = 1 // wrong, but recognized the answer
	Familiar  Rating = 2 // wrong, but the answer felt familiar
	Hard      Rating = 3 // correct with significant effort
	Good      Rating = 4 // correct after some hesitation
	Easy      Rating = 5 // perfect recall
)

// Scale is an ordered discrete rating scale, fixed at integration time.
// Ratings at or above Pass count as successful recall; anything below
// is a lapse.
type Scale struct {
	Min  Rating
	Max  Rating
	Pass Rating
}

// FiveLevelScale is the canonical SM-2 quality scale (0-5, pass at 3).
func FiveLevelScale() Scale {
	return Scale{Min: Blackout, Max: Easy, Pass: Hard}
}

// FourLevelScale is the collapsed Again/Hard/Good/Easy scale (1-4,
// pass at 2: only Again counts as a lapse).
func FourLevelScale() Scale {
	return Scale{Min: 1, Max: 4, Pass: 2}
}

// Contains reports whether r is a valid rating on the scale.
func (s Scale) Contains(r Rating) bool {
	return r >= s.Min && r <= s.Max
}

// Passing reports whether r counts as successful recall.
func (s Scale) Passing(r Rating) bool {
	return r >= s.Pass
}

// Normalize maps r linearly onto the canonical 0-5 range used by the
// SM-2 ease formula. The five-level scale maps to itself.
func (s Scale) Normalize(r Rating) float64 {
	span := s.Max - s.Min
	if span == 0 {
		return 5
	}
	return 5 * float64(r-s.Min) / float64(span)
}

func (s Scale) String() string {
	return fmt.Sprintf("[%d,%d] pass>=%d", s.Min, s.Max, s.Pass)
}
