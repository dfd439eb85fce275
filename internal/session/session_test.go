package session

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/typedraw/typedraw-server/internal/game"
)

// helper: receive one view with a timeout so tests never hang
func recvView(t *testing.T, ch <-chan game.View, within time.Duration) game.View {
	t.Helper()
	select {
	case v, ok := <-ch:
		if !ok {
			t.Fatalf("client outbox closed unexpectedly")
		}
		return v
	case <-time.After(within):
		t.Fatalf("timed out waiting for view")
		return nil // unreachable
	}
}

func recvNoView(t *testing.T, ch <-chan game.View, within time.Duration) {
	t.Helper()
	select {
	case v, ok := <-ch:
		if !ok {
			// channel closed → that's fine; no further views possible
			return
		}
		t.Fatalf("expected no view within %v, but got: %+v", within, v)
	case <-time.After(within):
		// good: no view
	}
}

func recvSnapshot(t *testing.T, ch <-chan Snapshot, within time.Duration) Snapshot {
	t.Helper()
	select {
	case s := <-ch:
		return s
	case <-time.After(within):
		t.Fatalf("timed out waiting for snapshot")
		return Snapshot{} // unreachable
	}
}

type fakeStore struct {
	stored int
	err    error
}

func (f *fakeStore) Store(gameID string, data []byte) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.stored++
	return fmt.Sprintf("img-%d.png", f.stored), nil
}

func newTestSession(t *testing.T) (*Session, *fakeStore) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	fs := &fakeStore{}
	g := game.New("g1", &game.Player{ID: "a", Name: "A", Avatar: "A"})
	return NewSession(ctx, g, fs, zap.NewNop()), fs
}

// connect registers an outbox and returns it.
func connect(s *Session, clientID string, buf int) chan game.View {
	out := make(chan game.View, buf)
	s.Inbox() <- Connect{ClientID: clientID, Outbox: out}
	return out
}

func snapshot(t *testing.T, s *Session) Snapshot {
	t.Helper()
	reply := make(chan Snapshot, 1)
	s.Inbox() <- GetState{Reply: reply}
	return recvSnapshot(t, reply, 100*time.Millisecond)
}

func TestSession_AccessByUnknownPlayerGetsJoinPrompt(t *testing.T) {
	s, _ := newTestSession(t)

	out := connect(s, "c1", 2)
	s.Inbox() <- Access{ClientID: "c1", PlayerID: "nobody"}

	v := recvView(t, out, 100*time.Millisecond)
	if _, ok := v.(game.JoinPromptView); !ok {
		t.Fatalf("expected JoinPromptView, got %T", v)
	}

	if snap := snapshot(t, s); snap.NumPlayers != 1 {
		t.Fatalf("access must not mutate membership; players=%d", snap.NumPlayers)
	}
}

func TestSession_AccessByCreatorBindsAndPushesView(t *testing.T) {
	s, _ := newTestSession(t)

	out := connect(s, "c1", 2)
	s.Inbox() <- Access{ClientID: "c1", PlayerID: "a"}

	v := recvView(t, out, 100*time.Millisecond)
	wv, ok := v.(game.WaitForPlayersView)
	if !ok {
		t.Fatalf("expected WaitForPlayersView, got %T", v)
	}
	if len(wv.Players) != 1 || wv.Players[0].Name != "A" {
		t.Fatalf("unexpected roster: %+v", wv.Players)
	}
}

func TestSession_JoinBroadcastsRosterToEveryone(t *testing.T) {
	s, _ := newTestSession(t)

	creatorOut := connect(s, "c1", 4)
	s.Inbox() <- Access{ClientID: "c1", PlayerID: "a"}
	recvView(t, creatorOut, 100*time.Millisecond)

	guestOut := connect(s, "c2", 4)
	s.Inbox() <- Join{ClientID: "c2", PlayerID: "b", Name: "B", Avatar: "B"}

	gv := recvView(t, guestOut, 100*time.Millisecond)
	if v, ok := gv.(game.WaitForGameStartView); !ok || len(v.Players) != 2 {
		t.Fatalf("guest view wrong: %+v", gv)
	}

	cv := recvView(t, creatorOut, 100*time.Millisecond)
	if v, ok := cv.(game.WaitForPlayersView); !ok || len(v.Players) != 2 {
		t.Fatalf("creator view not refreshed: %+v", cv)
	}
}

func TestSession_StartWithOnePlayerRefreshesWaitingView(t *testing.T) {
	s, _ := newTestSession(t)

	out := connect(s, "c1", 4)
	s.Inbox() <- Access{ClientID: "c1", PlayerID: "a"}
	recvView(t, out, 100*time.Millisecond)

	s.Inbox() <- Start{ClientID: "c1"}

	v := recvView(t, out, 100*time.Millisecond)
	if _, ok := v.(game.WaitForPlayersView); !ok {
		t.Fatalf("expected refreshed WaitForPlayersView, got %T", v)
	}
	if snap := snapshot(t, s); snap.State != game.StateWaiting {
		t.Fatalf("state must stay waiting, got %s", snap.State)
	}
}

// Two players, two clients, full game driven through the actor.
func TestSession_FullGame(t *testing.T) {
	s, _ := newTestSession(t)

	aOut := connect(s, "ca", 16)
	s.Inbox() <- Access{ClientID: "ca", PlayerID: "a"}
	recvView(t, aOut, 100*time.Millisecond)

	bOut := connect(s, "cb", 16)
	s.Inbox() <- Join{ClientID: "cb", PlayerID: "b", Name: "B", Avatar: "B"}
	recvView(t, bOut, 100*time.Millisecond)
	recvView(t, aOut, 100*time.Millisecond) // join broadcast

	s.Inbox() <- Start{ClientID: "ca"}
	if v, ok := recvView(t, aOut, 100*time.Millisecond).(game.TypeView); !ok || v.Round != 1 {
		t.Fatalf("expected round 1 TypeView for a, got %+v", v)
	}
	if v, ok := recvView(t, bOut, 100*time.Millisecond).(game.TypeView); !ok || v.Round != 1 {
		t.Fatalf("expected round 1 TypeView for b, got %+v", v)
	}

	s.Inbox() <- SubmitText{ClientID: "ca", Text: "hello"}
	if v, ok := recvView(t, aOut, 100*time.Millisecond).(game.WaitForRoundFinishView); !ok || len(v.PlayersNotFinished) != 1 {
		t.Fatalf("expected a to wait for b, got %+v", v)
	}
	recvView(t, bOut, 100*time.Millisecond) // b re-sees the type prompt

	s.Inbox() <- SubmitText{ClientID: "cb", Text: "world"}
	av := recvView(t, aOut, 100*time.Millisecond)
	if v, ok := av.(game.DrawView); !ok || v.Text != "world" {
		t.Fatalf("a should draw for b's text, got %+v", av)
	}
	bv := recvView(t, bOut, 100*time.Millisecond)
	if v, ok := bv.(game.DrawView); !ok || v.Text != "hello" {
		t.Fatalf("b should draw for a's text, got %+v", bv)
	}

	s.Inbox() <- SubmitImage{ClientID: "ca", Data: []byte("png-a")}
	recvView(t, aOut, 100*time.Millisecond)
	recvView(t, bOut, 100*time.Millisecond)

	s.Inbox() <- SubmitImage{ClientID: "cb", Data: []byte("png-b")}
	fv := recvView(t, aOut, 100*time.Millisecond)
	sv, ok := fv.(game.StoriesView)
	if !ok {
		t.Fatalf("expected StoriesView, got %T", fv)
	}
	if len(sv.Stories) != 2 {
		t.Fatalf("expected 2 stories, got %d", len(sv.Stories))
	}
	recvView(t, bOut, 100*time.Millisecond)

	snap := snapshot(t, s)
	if snap.State != game.StateFinished || snap.Round != 2 {
		t.Fatalf("expected finished at round 2, got %+v", snap)
	}
}

func TestSession_ImageStoreFailureAbortsSubmission(t *testing.T) {
	s, fs := newTestSession(t)

	aOut := connect(s, "ca", 16)
	s.Inbox() <- Access{ClientID: "ca", PlayerID: "a"}
	bOut := connect(s, "cb", 16)
	s.Inbox() <- Join{ClientID: "cb", PlayerID: "b", Name: "B", Avatar: "B"}
	s.Inbox() <- Start{ClientID: "ca"}
	s.Inbox() <- SubmitText{ClientID: "ca", Text: "hello"}
	s.Inbox() <- SubmitText{ClientID: "cb", Text: "world"}

	// sync on the actor, then drain everything sent so far
	if snap := snapshot(t, s); snap.Round != 1 {
		t.Fatalf("expected draw round, got %+v", snap)
	}
	drain(aOut)
	drain(bOut)

	fs.err = errors.New("disk full")
	s.Inbox() <- SubmitImage{ClientID: "ca", Data: []byte("png")}

	recvNoView(t, aOut, 50*time.Millisecond)
	recvNoView(t, bOut, 50*time.Millisecond)
	if snap := snapshot(t, s); snap.Round != 1 {
		t.Fatalf("failed store write must not advance the round; got %+v", snap)
	}

	// the write works on retry
	fs.err = nil
	s.Inbox() <- SubmitImage{ClientID: "ca", Data: []byte("png")}
	if _, ok := recvView(t, aOut, 100*time.Millisecond).(game.WaitForRoundFinishView); !ok {
		t.Fatalf("expected wait view after successful retry")
	}
}

func TestSession_DuplicateSubmitRefreshesOffenderOnly(t *testing.T) {
	s, _ := newTestSession(t)

	aOut := connect(s, "ca", 16)
	s.Inbox() <- Access{ClientID: "ca", PlayerID: "a"}
	bOut := connect(s, "cb", 16)
	s.Inbox() <- Join{ClientID: "cb", PlayerID: "b", Name: "B", Avatar: "B"}
	s.Inbox() <- Start{ClientID: "ca"}
	s.Inbox() <- SubmitText{ClientID: "ca", Text: "hello"}
	_ = snapshot(t, s) // sync on the actor before draining
	drain(aOut)
	drain(bOut)

	s.Inbox() <- SubmitText{ClientID: "ca", Text: "sneaky second answer"}

	if _, ok := recvView(t, aOut, 100*time.Millisecond).(game.WaitForRoundFinishView); !ok {
		t.Fatalf("offender should get a state refresh")
	}
	recvNoView(t, bOut, 50*time.Millisecond)
	if snap := snapshot(t, s); snap.Round != 0 {
		t.Fatalf("duplicate submit must not advance the round")
	}
}

func TestSession_GuestDisconnectWhileWaitingLeavesRoster(t *testing.T) {
	s, _ := newTestSession(t)

	aOut := connect(s, "ca", 16)
	s.Inbox() <- Access{ClientID: "ca", PlayerID: "a"}
	connect(s, "cb", 16)
	s.Inbox() <- Join{ClientID: "cb", PlayerID: "b", Name: "B", Avatar: "B"}
	_ = snapshot(t, s) // sync on the actor before draining
	drain(aOut)

	s.Inbox() <- Disconnect{ClientID: "cb"}

	v := recvView(t, aOut, 100*time.Millisecond)
	if wv, ok := v.(game.WaitForPlayersView); !ok || len(wv.Players) != 1 {
		t.Fatalf("expected roster of 1 after guest left, got %+v", v)
	}
	if snap := snapshot(t, s); snap.NumPlayers != 1 {
		t.Fatalf("guest not removed: %+v", snap)
	}
}

func TestSession_GuestWithSecondClientSurvivesDisconnect(t *testing.T) {
	s, _ := newTestSession(t)

	connect(s, "cb1", 16)
	s.Inbox() <- Join{ClientID: "cb1", PlayerID: "b", Name: "B", Avatar: "B"}
	connect(s, "cb2", 16)
	s.Inbox() <- Access{ClientID: "cb2", PlayerID: "b"}

	s.Inbox() <- Disconnect{ClientID: "cb1"}

	if snap := snapshot(t, s); snap.NumPlayers != 2 {
		t.Fatalf("player with a live client must stay; %+v", snap)
	}
}

func TestSession_DisconnectAfterStartKeepsPlayerAndAllowsResume(t *testing.T) {
	s, _ := newTestSession(t)

	connect(s, "ca", 16)
	s.Inbox() <- Access{ClientID: "ca", PlayerID: "a"}
	connect(s, "cb", 16)
	s.Inbox() <- Join{ClientID: "cb", PlayerID: "b", Name: "B", Avatar: "B"}
	s.Inbox() <- Start{ClientID: "ca"}

	s.Inbox() <- Disconnect{ClientID: "cb"}
	if snap := snapshot(t, s); snap.NumPlayers != 2 || snap.State != game.StateStarted {
		t.Fatalf("started game must keep disconnected players; %+v", snap)
	}

	// reconnect with a fresh client and the same player id
	out := connect(s, "cb2", 16)
	s.Inbox() <- Access{ClientID: "cb2", PlayerID: "b"}
	if v, ok := recvView(t, out, 100*time.Millisecond).(game.TypeView); !ok || v.Round != 1 {
		t.Fatalf("resume should land in the running round, got %+v", v)
	}
}

func TestSession_DropSlowClient(t *testing.T) {
	s, _ := newTestSession(t)

	connect(s, "ca", 1)
	s.Inbox() <- Access{ClientID: "ca", PlayerID: "a"} // fills the buffer

	connect(s, "cb", 16)
	s.Inbox() <- Join{ClientID: "cb", PlayerID: "b", Name: "B", Avatar: "B"} // broadcast overflows ca

	if snap := snapshot(t, s); snap.NumClients != 1 {
		t.Fatalf("expected slow client to be dropped; clients=%d", snap.NumClients)
	}
}

func drain(ch chan game.View) {
	for {
		select {
		case <-ch:
		default:
			return
		}
	}
}

func TestSession_DroppedGuestLeavesRosterOnDisconnect(t *testing.T) {
	s, _ := newTestSession(t)

	connect(s, "ca", 16)
	s.Inbox() <- Access{ClientID: "ca", PlayerID: "a"}

	connect(s, "cb", 1)
	s.Inbox() <- Join{ClientID: "cb", PlayerID: "b", Name: "B", Avatar: "B"} // fills cb's buffer

	connect(s, "cc", 16)
	s.Inbox() <- Join{ClientID: "cc", PlayerID: "c", Name: "C", Avatar: "C"} // broadcast overflows cb

	snap := snapshot(t, s)
	if snap.NumClients != 2 || snap.NumPlayers != 3 {
		t.Fatalf("expected cb dropped with b still joined; snapshot=%+v", snap)
	}

	// The transport notices the dead connection eventually and reports it.
	s.Inbox() <- Disconnect{ClientID: "cb"}

	if snap := snapshot(t, s); snap.NumPlayers != 2 {
		t.Fatalf("expected b removed once its last connection is gone; players=%d", snap.NumPlayers)
	}
}

func TestSession_RejoinAsOtherPlayerReplacesBinding(t *testing.T) {
	s, _ := newTestSession(t)

	out := connect(s, "c1", 8)
	s.Inbox() <- Access{ClientID: "c1", PlayerID: "a"}
	if _, ok := recvView(t, out, 100*time.Millisecond).(game.WaitForPlayersView); !ok {
		t.Fatal("expected the creator's waiting view first")
	}

	s.Inbox() <- Join{ClientID: "c1", PlayerID: "b", Name: "B", Avatar: "B"}

	// The join broadcast must reach c1 exactly once, as b. A leftover
	// binding to a would deliver the creator's view as well.
	v := recvView(t, out, 100*time.Millisecond)
	if _, ok := v.(game.WaitForGameStartView); !ok {
		t.Fatalf("expected the guest's waiting view after rejoining, got %T", v)
	}
	recvNoView(t, out, 50*time.Millisecond)
}

func TestSession_StartByUnboundClientGetsJoinPrompt(t *testing.T) {
	s, _ := newTestSession(t)

	out := connect(s, "cx", 2)
	s.Inbox() <- Start{ClientID: "cx"}

	v := recvView(t, out, 100*time.Millisecond)
	if _, ok := v.(game.JoinPromptView); !ok {
		t.Fatalf("expected JoinPromptView for unbound client, got %T", v)
	}

	if snap := snapshot(t, s); snap.State != game.StateWaiting {
		t.Fatalf("start by unbound client must not start the game; state=%v", snap.State)
	}
}
