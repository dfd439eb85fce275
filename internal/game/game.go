package game

type State string

const (
	StateWaiting  State = "waitingForPlayers"
	StateStarted  State = "started"
	StateFinished State = "finished"
)

// Game is the state machine for one session. It knows nothing about clients
// or transport; the session actor serializes all calls into it.
//
// Lifecycle: WaitingForPlayers -> Started -> Finished, forward only. The
// round matrix and the stories are allocated at Start for the player count at
// that moment, after which the roster is frozen.
type Game struct {
	id      string
	state   State
	roster  *Roster
	round   int
	matrix  *RoundMatrix
	stories *StorySet
}

func New(id string, creator *Player) *Game {
	creator.Creator = true
	g := &Game{
		id:     id,
		state:  StateWaiting,
		roster: &Roster{},
	}
	g.roster.Add(creator)
	return g
}

func (g *Game) ID() string         { return g.id }
func (g *Game) State() State       { return g.state }
func (g *Game) Round() int         { return g.round }
func (g *Game) Players() []*Player { return g.roster.Players() }

func (g *Game) FindPlayer(id string) *Player { return g.roster.Find(id) }

// Join adds a new non-creator player while the game is waiting. Joining again
// with a known id is idempotent: the existing player is returned with
// already=true and the roster is unchanged.
func (g *Game) Join(id, name, avatar string) (p *Player, already bool, err error) {
	if g.state != StateWaiting {
		return nil, false, ErrWrongState
	}
	if p := g.roster.Find(id); p != nil {
		return p, true, nil
	}
	p = &Player{ID: id, Name: name, Avatar: avatar}
	g.roster.Add(p)
	return p, false, nil
}

// RemovePlayer drops a player from the roster. Only legal while waiting, and
// never for the creator.
func (g *Game) RemovePlayer(p *Player) bool {
	if g.state != StateWaiting || p.Creator {
		return false
	}
	g.roster.Remove(p)
	return true
}

// Start moves the game to Started: generates the round matrix for the current
// player count and allocates the (empty) stories. Only the creator may start,
// only from the waiting state, and only with at least two players.
func (g *Game) Start(by *Player) error {
	if g.state != StateWaiting {
		return ErrWrongState
	}
	if !by.Creator {
		return ErrNotCreator
	}

	m, err := NewRoundMatrix(g.roster.Len())
	if err != nil {
		return err
	}
	g.matrix = m
	g.stories = NewStorySet(g.roster.Len(), m.Rounds())
	g.state = StateStarted
	g.round = 0
	return nil
}

// TypeRound reports whether the current round takes text submissions.
func (g *Game) TypeRound() bool { return IsTypeRound(g.round) }

// PlayerFinishedRound reports whether the player has already filled their
// current-round element.
func (g *Game) PlayerFinishedRound(p *Player) bool {
	return g.stories.ElementAt(g.currentStoryIndex(p), g.round) != nil
}

func (g *Game) currentStoryIndex(p *Player) int {
	return g.matrix.StoryFor(g.round, g.roster.IndexOf(p))
}

// SubmitText records a text element for the story currently assigned to the
// player and advances the round if this submission completed it.
func (g *Game) SubmitText(p *Player, text string) error {
	if g.state != StateStarted {
		return ErrWrongState
	}
	if !g.TypeRound() {
		return ErrWrongRound
	}
	if text == "" {
		return ErrEmptyText
	}
	if err := g.stories.SetElement(g.currentStoryIndex(p), g.round, TextElement(text)); err != nil {
		return err
	}
	g.advanceIfRoundComplete()
	return nil
}

// CanSubmitImage runs the submission checks without mutating anything. The
// session calls it before writing the image bytes to storage, so a stale or
// duplicate submission never reaches the store.
func (g *Game) CanSubmitImage(p *Player) error {
	if g.state != StateStarted {
		return ErrWrongState
	}
	if g.TypeRound() {
		return ErrWrongRound
	}
	if g.PlayerFinishedRound(p) {
		return ErrElementFilled
	}
	return nil
}

// SubmitImage records a stored-image element for the story currently assigned
// to the player and advances the round if this submission completed it.
func (g *Game) SubmitImage(p *Player, ref string) error {
	if err := g.CanSubmitImage(p); err != nil {
		return err
	}
	if err := g.stories.SetElement(g.currentStoryIndex(p), g.round, ImageElement(ref)); err != nil {
		return err
	}
	g.advanceIfRoundComplete()
	return nil
}

func (g *Game) advanceIfRoundComplete() {
	if !g.stories.RoundComplete(g.round) {
		return
	}
	g.round++
	if g.round >= g.matrix.Rounds() {
		g.state = StateFinished
	}
}
