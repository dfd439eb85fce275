package game

// RoundMatrix is the fixed rotation schedule for one game: for every round it
// maps each player index to the story that player works on. It is generated
// once at game start and never changes.
//
// Construction: stories[r][p] = (p - r) mod n. Round 0 is the identity, so
// everyone starts their own story, and over n rounds every player touches
// every story exactly once.
type RoundMatrix struct {
	stories [][]int // stories[round][playerIdx] = storyIdx
	players [][]int // players[round][storyIdx] = playerIdx (inverse)
}

func NewRoundMatrix(n int) (*RoundMatrix, error) {
	if n < 2 {
		return nil, ErrTooFewPlayers
	}

	m := &RoundMatrix{
		stories: make([][]int, n),
		players: make([][]int, n),
	}
	for r := 0; r < n; r++ {
		m.stories[r] = make([]int, n)
		m.players[r] = make([]int, n)
		for p := 0; p < n; p++ {
			s := ((p-r)%n + n) % n
			m.stories[r][p] = s
			m.players[r][s] = p
		}
	}
	return m, nil
}

// Rounds is also the number of players and the number of stories.
func (m *RoundMatrix) Rounds() int { return len(m.stories) }

// StoryFor returns the story the given player works on in the given round.
func (m *RoundMatrix) StoryFor(round, playerIdx int) int {
	return m.stories[round][playerIdx]
}

// PlayerFor returns the player that works on the given story in the given
// round. This is the precomputed inverse of StoryFor.
func (m *RoundMatrix) PlayerFor(round, storyIdx int) int {
	return m.players[round][storyIdx]
}

// IsTypeRound reports whether the given round takes text submissions.
// Even rounds are typing rounds, odd rounds are drawing rounds.
func IsTypeRound(round int) bool {
	return round%2 == 0
}
