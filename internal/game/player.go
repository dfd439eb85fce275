package game

// Player identity within one game. The ID is an opaque value the client keeps
// across reconnects; it is never exposed to other players.
type Player struct {
	ID      string
	Name    string
	Avatar  string
	Creator bool
}

// Roster is the insertion-ordered list of players. Order matters: a player's
// index is their column in the round matrix.
type Roster struct {
	players []*Player
}

func (r *Roster) Len() int { return len(r.players) }

func (r *Roster) Players() []*Player { return r.players }

func (r *Roster) Find(id string) *Player {
	for _, p := range r.players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (r *Roster) IndexOf(p *Player) int {
	for i, q := range r.players {
		if q == p {
			return i
		}
	}
	return -1
}

func (r *Roster) Add(p *Player) error {
	if r.Find(p.ID) != nil {
		return ErrDuplicatePlayer
	}
	r.players = append(r.players, p)
	return nil
}

func (r *Roster) Remove(p *Player) {
	for i, q := range r.players {
		if q == p {
			r.players = append(r.players[:i], r.players[i+1:]...)
			return
		}
	}
}
