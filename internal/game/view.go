package game

import "fmt"

// View is what one player observes at one moment. Every view kind carries a
// "state" discriminator the webapp switches on.
type View interface{ isView() }

// PlayerInfo is the public shape of a player. Ids stay server-side.
type PlayerInfo struct {
	Name    string `json:"name"`
	Avatar  string `json:"avatar"`
	Creator bool   `json:"isCreator"`
}

// JoinPromptView asks an unknown client to join a waiting game.
type JoinPromptView struct {
	State string `json:"state"` // "join"
}

// AlreadyStartedView tells an unknown client the game is closed to new players.
type AlreadyStartedView struct {
	State string `json:"state"` // "alreadyStarted"
}

// WaitForPlayersView is the creator's waiting-room view (with start control).
type WaitForPlayersView struct {
	State   string       `json:"state"` // "waitForPlayers"
	Players []PlayerInfo `json:"players"`
}

// WaitForGameStartView is a guest's waiting-room view.
type WaitForGameStartView struct {
	State   string       `json:"state"` // "waitForGameStart"
	Players []PlayerInfo `json:"players"`
}

// TypeView prompts for a text submission. PreviousImage and PreviousPlayer
// are unset in round 0, where the player opens a fresh story.
type TypeView struct {
	State          string      `json:"state"` // "type"
	Round          int         `json:"round"` // 1-based for display
	Rounds         int         `json:"rounds"`
	PreviousImage  string      `json:"previousImage,omitempty"`
	PreviousPlayer *PlayerInfo `json:"previousPlayer,omitempty"`
}

// DrawView prompts for an image submission for the preceding text.
type DrawView struct {
	State          string     `json:"state"` // "draw"
	Round          int        `json:"round"`
	Rounds         int        `json:"rounds"`
	Text           string     `json:"text"`
	PreviousPlayer PlayerInfo `json:"previousPlayer"`
}

// WaitForRoundFinishView is shown to players that already submitted this round.
type WaitForRoundFinishView struct {
	State              string       `json:"state"` // "waitForRoundFinish"
	PlayersNotFinished []PlayerInfo `json:"playersNotFinished"`
	TypeRound          bool         `json:"typeRound"`
}

// StoriesView is the final view: all stories with contributor annotations.
type StoriesView struct {
	State   string      `json:"state"` // "stories"
	Stories []StoryView `json:"stories"`
}

type StoryView struct {
	Elements []StoryElementView `json:"elements"`
}

type StoryElementView struct {
	Type    string     `json:"type"`
	Content string     `json:"content"`
	Player  PlayerInfo `json:"player"`
}

func (JoinPromptView) isView()         {}
func (AlreadyStartedView) isView()     {}
func (WaitForPlayersView) isView()     {}
func (WaitForGameStartView) isView()   {}
func (TypeView) isView()               {}
func (DrawView) isView()               {}
func (WaitForRoundFinishView) isView() {}
func (StoriesView) isView()            {}

// NewPlayerView is what a client gets when it accesses with an id the game
// does not know: a join prompt while waiting, a closed-door notice once
// started, the finished stories afterwards.
func (g *Game) NewPlayerView() View {
	switch g.state {
	case StateWaiting:
		return JoinPromptView{State: "join"}
	case StateStarted:
		return AlreadyStartedView{State: "alreadyStarted"}
	case StateFinished:
		return g.storiesView()
	default:
		panic(fmt.Sprintf("game %s: unknown state %q", g.id, g.state))
	}
}

// ViewFor projects the current session state onto one player.
func (g *Game) ViewFor(p *Player) View {
	switch g.state {
	case StateWaiting:
		return g.waitingView(p)
	case StateStarted:
		return g.startedView(p)
	case StateFinished:
		return g.storiesView()
	default:
		panic(fmt.Sprintf("game %s: unknown state %q", g.id, g.state))
	}
}

func (g *Game) waitingView(p *Player) View {
	infos := playerInfos(g.roster.Players())
	if p.Creator {
		return WaitForPlayersView{State: "waitForPlayers", Players: infos}
	}
	return WaitForGameStartView{State: "waitForGameStart", Players: infos}
}

func (g *Game) startedView(p *Player) View {
	if g.PlayerFinishedRound(p) {
		return WaitForRoundFinishView{
			State:              "waitForRoundFinish",
			PlayersNotFinished: playerInfos(g.notFinishedPlayers()),
			TypeRound:          g.TypeRound(),
		}
	}
	if g.TypeRound() {
		return g.typeView(p)
	}
	return g.drawView(p)
}

func (g *Game) typeView(p *Player) View {
	v := TypeView{
		State:  "type",
		Round:  g.round + 1,
		Rounds: g.matrix.Rounds(),
	}
	if g.round == 0 {
		return v
	}
	storyIdx := g.currentStoryIndex(p)
	v.PreviousImage = g.imageSrc(g.stories.ElementAt(storyIdx, g.round-1).Content)
	prev := playerInfo(g.previousContributor(storyIdx))
	v.PreviousPlayer = &prev
	return v
}

func (g *Game) drawView(p *Player) View {
	storyIdx := g.currentStoryIndex(p)
	return DrawView{
		State:          "draw",
		Round:          g.round + 1,
		Rounds:         g.matrix.Rounds(),
		Text:           g.stories.ElementAt(storyIdx, g.round-1).Content,
		PreviousPlayer: playerInfo(g.previousContributor(storyIdx)),
	}
}

func (g *Game) storiesView() View {
	stories := make([]StoryView, g.stories.Len())
	for s := range stories {
		elements := make([]StoryElementView, g.matrix.Rounds())
		for r := range elements {
			el := g.stories.ElementAt(s, r)
			content := el.Content
			if el.Kind == ElementImage {
				content = g.imageSrc(content)
			}
			elements[r] = StoryElementView{
				Type:    string(el.Kind),
				Content: content,
				Player:  playerInfo(g.contributor(s, r)),
			}
		}
		stories[s] = StoryView{Elements: elements}
	}
	return StoriesView{State: "stories", Stories: stories}
}

// contributor is the player that worked on the given story in the given round.
func (g *Game) contributor(storyIdx, round int) *Player {
	return g.roster.Players()[g.matrix.PlayerFor(round, storyIdx)]
}

func (g *Game) previousContributor(storyIdx int) *Player {
	return g.contributor(storyIdx, g.round-1)
}

func (g *Game) notFinishedPlayers() []*Player {
	var out []*Player
	for _, p := range g.roster.Players() {
		if !g.PlayerFinishedRound(p) {
			out = append(out, p)
		}
	}
	return out
}

func (g *Game) imageSrc(ref string) string {
	return "/api/image/" + g.id + "/" + ref
}

func playerInfo(p *Player) PlayerInfo {
	return PlayerInfo{Name: p.Name, Avatar: p.Avatar, Creator: p.Creator}
}

func playerInfos(players []*Player) []PlayerInfo {
	infos := make([]PlayerInfo, len(players))
	for i, p := range players {
		infos[i] = playerInfo(p)
	}
	return infos
}
