package room

import (
	"context"
	"ctchen222/morpion/internal/apperror"
	"ctchen222/morpion/internal/game"
	"ctchen222/morpion/internal/notify"
	"ctchen222/morpion/internal/notify/notifytest"
	"ctchen222/morpion/internal/stats"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const emptyBoard = " | | \n | | \n | | "

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fixture struct {
	room    *Room
	alice   *notifytest.Recorder
	bob     *notifytest.Recorder
	tracker *stats.Tracker
	clock   *clock
}

func newFixture(t *testing.T, policy HostLeavePolicy) *fixture {
	t.Helper()
	f := &fixture{
		alice:   notifytest.New(),
		bob:     notifytest.New(),
		tracker: stats.NewTracker(),
		clock:   &clock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)},
	}
	f.room = NewRoom("ROOM0001", "alice", f.alice, f.tracker, Options{
		StartingMarker:  game.StartX,
		HostLeavePolicy: policy,
		Now:             f.clock.Now,
	})
	return f
}

func (f *fixture) join(t *testing.T) {
	t.Helper()
	require.NoError(t, f.room.Join(context.Background(), "bob", f.bob))
}

func snapshot(t *testing.T, r *Room) Snapshot {
	t.Helper()
	s, err := r.Snapshot()
	require.NoError(t, err)
	return s
}

func waitFor(t *testing.T, rec *notifytest.Recorder, kind notify.Kind, n int) {
	t.Helper()
	require.Eventually(t, func() bool {
		return rec.Count(kind) >= n
	}, 2*time.Second, 5*time.Millisecond, "waiting for %d %s events", n, kind)
}

func TestJoin(t *testing.T) {
	f := newFixture(t, HostLeaveTransfer)
	assert.Equal(t, StatusWaiting, snapshot(t, f.room).Status)

	f.join(t)
	assert.Equal(t, StatusInProgress, snapshot(t, f.room).Status)

	waitFor(t, f.alice, notify.KindBoard, 1)
	waitFor(t, f.bob, notify.KindBoard, 1)

	assert.Equal(t, []notify.Kind{notify.KindReady, notify.KindBoard}, f.alice.Kinds())
	assert.Equal(t, []notify.Kind{notify.KindReady, notify.KindBoard}, f.bob.Kinds())

	ready, _ := f.alice.Last(notify.KindReady)
	assert.Equal(t, "X", ready.Mark)
	ready, _ = f.bob.Last(notify.KindReady)
	assert.Equal(t, "O", ready.Mark)

	a, _ := f.alice.Last(notify.KindBoard)
	b, _ := f.bob.Last(notify.KindBoard)
	assert.Equal(t, emptyBoard, a.Board)
	assert.Equal(t, a.Board, b.Board)
}

func TestJoin_Rejections(t *testing.T) {
	f := newFixture(t, HostLeaveTransfer)
	ctx := context.Background()

	assert.ErrorIs(t, f.room.Join(ctx, "alice", f.alice), apperror.ErrAlreadyOccupied)
	f.join(t)
	assert.ErrorIs(t, f.room.Join(ctx, "carol", notifytest.New()), apperror.ErrRoomFull)

	f.room.Shutdown()
	assert.ErrorIs(t, f.room.Join(ctx, "carol", nil), apperror.ErrNotFound)
}

func TestMove_Scenario(t *testing.T) {
	f := newFixture(t, HostLeaveTransfer)
	ctx := context.Background()

	_, err := f.room.Move(ctx, "alice", 0, 0)
	require.ErrorIs(t, err, apperror.ErrNotReady)

	f.join(t)

	res, err := f.room.Move(ctx, "alice", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, "X| | \n | | \n | | ", res.Board)
	assert.False(t, res.Terminal)

	_, err = f.room.Move(ctx, "bob", 0, 0)
	assert.ErrorIs(t, err, apperror.ErrCellOccupied)

	_, err = f.room.Move(ctx, "carol", 1, 1)
	assert.ErrorIs(t, err, apperror.ErrNotAParticipant)

	_, err = f.room.Move(ctx, "alice", 1, 1)
	assert.ErrorIs(t, err, apperror.ErrNotYourTurn)

	_, err = f.room.Move(ctx, "bob", 3, 1)
	assert.ErrorIs(t, err, apperror.ErrOutOfRange)

	board, err := f.room.Board()
	require.NoError(t, err)
	assert.Equal(t, "X| | \n | | \n | | ", board)

	// ready + join board + one accepted move
	waitFor(t, f.bob, notify.KindBoard, 2)
	last, _ := f.bob.Last(notify.KindBoard)
	assert.Equal(t, board, last.Board)
}

func TestMove_Win(t *testing.T) {
	f := newFixture(t, HostLeaveTransfer)
	f.join(t)
	ctx := context.Background()

	moves := []struct {
		player   string
		row, col int
	}{
		{"alice", 0, 0}, {"bob", 1, 0}, {"alice", 0, 1}, {"bob", 1, 1}, {"alice", 0, 2},
	}
	var res MoveResult
	for _, m := range moves {
		var err error
		res, err = f.room.Move(ctx, m.player, m.row, m.col)
		require.NoError(t, err)
	}

	assert.True(t, res.Terminal)
	assert.Equal(t, "alice", res.Winner)
	assert.Equal(t, "alice", snapshot(t, f.room).Winner)
	assert.Equal(t, StatusCompleted, snapshot(t, f.room).Status)

	_, err := f.room.Move(ctx, "bob", 2, 2)
	assert.ErrorIs(t, err, apperror.ErrAlreadyOver)

	waitFor(t, f.alice, notify.KindGameOver, 1)
	waitFor(t, f.bob, notify.KindGameOver, 1)
	over, _ := f.bob.Last(notify.KindGameOver)
	assert.Equal(t, "alice", over.Winner)

	assert.Equal(t, stats.Counts{Wins: 1}, f.tracker.Stats("alice"))
	assert.Equal(t, stats.Counts{Losses: 1}, f.tracker.Stats("bob"))
	require.Len(t, f.tracker.History("bob"), 1)
	assert.Equal(t, "alice won against bob", f.tracker.History("bob")[0].Summary)
}

func TestMove_WinByPlayerNamedDraw(t *testing.T) {
	tracker := stats.NewTracker()
	host, guest := notifytest.New(), notifytest.New()
	r := NewRoom("ROOM0002", "DRAW", host, tracker, Options{StartingMarker: game.StartX})
	ctx := context.Background()
	require.NoError(t, r.Join(ctx, "bob", guest))

	for _, m := range []struct {
		p        string
		row, col int
	}{{"DRAW", 0, 0}, {"bob", 1, 0}, {"DRAW", 0, 1}, {"bob", 1, 1}, {"DRAW", 0, 2}} {
		_, err := r.Move(ctx, m.p, m.row, m.col)
		require.NoError(t, err)
	}

	assert.Equal(t, stats.Counts{Wins: 1}, tracker.Stats("DRAW"))
	assert.Equal(t, stats.Counts{Losses: 1}, tracker.Stats("bob"))
	history := tracker.History("bob")
	require.Len(t, history, 1)
	assert.Equal(t, "DRAW won against bob", history[0].Summary)
	assert.False(t, history[0].Draw)
}

func TestMove_Draw(t *testing.T) {
	f := newFixture(t, HostLeaveTransfer)
	f.join(t)
	ctx := context.Background()

	// X O X / X O O / O X X
	moves := [][2]int{{0, 0}, {0, 1}, {0, 2}, {1, 1}, {1, 0}, {1, 2}, {2, 1}, {2, 0}, {2, 2}}
	players := [2]string{"alice", "bob"}
	var res MoveResult
	for i, m := range moves {
		var err error
		res, err = f.room.Move(ctx, players[i%2], m[0], m[1])
		require.NoError(t, err)
	}

	assert.True(t, res.Terminal)
	assert.Equal(t, "DRAW", res.Winner)
	assert.Equal(t, stats.Counts{Draws: 1}, f.tracker.Stats("alice"))
	assert.Equal(t, stats.Counts{Draws: 1}, f.tracker.Stats("bob"))

	waitFor(t, f.alice, notify.KindGameOver, 1)
	over, _ := f.alice.Last(notify.KindGameOver)
	assert.Equal(t, "DRAW", over.Winner)
}

func TestReset(t *testing.T) {
	f := newFixture(t, HostLeaveTransfer)
	f.join(t)
	ctx := context.Background()

	for _, m := range []struct {
		p        string
		row, col int
	}{{"alice", 0, 0}, {"bob", 1, 0}, {"alice", 0, 1}, {"bob", 1, 1}, {"alice", 0, 2}} {
		_, err := f.room.Move(ctx, m.p, m.row, m.col)
		require.NoError(t, err)
	}
	require.Equal(t, StatusCompleted, snapshot(t, f.room).Status)

	assert.ErrorIs(t, f.room.Reset(ctx, "carol"), apperror.ErrNotAParticipant)
	require.NoError(t, f.room.Reset(ctx, "bob"))

	assert.Equal(t, StatusInProgress, snapshot(t, f.room).Status)
	assert.Empty(t, snapshot(t, f.room).Winner)
	board, err := f.room.Board()
	require.NoError(t, err)
	assert.Equal(t, emptyBoard, board)

	waitFor(t, f.alice, notify.KindBoard, 7)
	last, _ := f.alice.Last(notify.KindBoard)
	assert.Equal(t, emptyBoard, last.Board)
}

func TestDisconnect_GuestLeaves(t *testing.T) {
	f := newFixture(t, HostLeaveTransfer)
	f.join(t)
	ctx := context.Background()

	_, err := f.room.Move(ctx, "alice", 1, 1)
	require.NoError(t, err)

	res, err := f.room.Disconnect(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, []string{"bob"}, res.Unmapped)
	assert.False(t, res.Closed)

	assert.Equal(t, StatusWaiting, snapshot(t, f.room).Status)
	assert.Equal(t, "alice", f.room.Host())
	board, err := f.room.Board()
	require.NoError(t, err)
	assert.Equal(t, emptyBoard, board)

	waitFor(t, f.alice, notify.KindOpponentLeft, 1)
	waitFor(t, f.alice, notify.KindBoard, 3)
	assert.Zero(t, f.bob.Count(notify.KindOpponentLeft))

	// a new opponent can take the free seat
	carol := notifytest.New()
	require.NoError(t, f.room.Join(ctx, "carol", carol))
	waitFor(t, carol, notify.KindReady, 1)
}

func TestDisconnect_HostLeavesTransfer(t *testing.T) {
	f := newFixture(t, HostLeaveTransfer)
	f.join(t)
	ctx := context.Background()

	res, err := f.room.Disconnect(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"alice"}, res.Unmapped)
	assert.False(t, res.Closed)

	assert.Equal(t, "bob", f.room.Host())
	v, err := f.room.View("bob")
	require.NoError(t, err)
	assert.Equal(t, game.PlayerX, v.Symbol)
	assert.Empty(t, v.Opponent)
	waitFor(t, f.bob, notify.KindOpponentLeft, 1)
}

func TestDisconnect_HostLeavesClose(t *testing.T) {
	f := newFixture(t, HostLeaveClose)
	f.join(t)
	ctx := context.Background()

	res, err := f.room.Disconnect(ctx, "alice")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"alice", "bob"}, res.Unmapped)
	assert.True(t, res.Closed)

	waitFor(t, f.bob, notify.KindOpponentLeft, 1)
	_, err = f.room.Board()
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestDisconnect_LastPlayer(t *testing.T) {
	f := newFixture(t, HostLeaveTransfer)
	ctx := context.Background()

	res, err := f.room.Disconnect(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, res.Closed)
	assert.Equal(t, []string{"alice"}, res.Unmapped)

	_, err = f.room.Disconnect(ctx, "alice")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestView(t *testing.T) {
	f := newFixture(t, HostLeaveTransfer)

	v, err := f.room.View("alice")
	require.NoError(t, err)
	assert.False(t, v.Ready)
	assert.False(t, v.MyTurn)
	assert.Empty(t, v.Opponent)

	f.join(t)

	v, err = f.room.View("alice")
	require.NoError(t, err)
	assert.True(t, v.Ready)
	assert.True(t, v.MyTurn)
	assert.Equal(t, "bob", v.Opponent)
	assert.Equal(t, game.PlayerX, v.Symbol)

	v, err = f.room.View("bob")
	require.NoError(t, err)
	assert.False(t, v.MyTurn)
	assert.Equal(t, "alice", v.Opponent)
	assert.Equal(t, game.PlayerO, v.Symbol)

	_, err = f.room.View("carol")
	assert.ErrorIs(t, err, apperror.ErrNotAParticipant)
}

func TestCloseIfIdle(t *testing.T) {
	f := newFixture(t, HostLeaveTransfer)
	f.join(t)
	ctx := context.Background()
	timeout := time.Minute

	f.clock.Advance(30 * time.Second)
	ids, closed := f.room.CloseIfIdle(ctx, f.clock.Now(), timeout)
	assert.False(t, closed)
	assert.Nil(t, ids)

	// a move refreshes the activity timestamp
	_, err := f.room.Move(ctx, "alice", 0, 0)
	require.NoError(t, err)
	f.clock.Advance(45 * time.Second)
	_, closed = f.room.CloseIfIdle(ctx, f.clock.Now(), timeout)
	assert.False(t, closed)

	// queries do not
	_, _ = f.room.Board()
	f.clock.Advance(30 * time.Second)
	ids, closed = f.room.CloseIfIdle(ctx, f.clock.Now(), timeout)
	assert.True(t, closed)
	assert.ElementsMatch(t, []string{"alice", "bob"}, ids)

	waitFor(t, f.alice, notify.KindOpponentLeft, 1)
	waitFor(t, f.bob, notify.KindOpponentLeft, 1)
	_, err = f.room.Move(ctx, "bob", 1, 1)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestIsJoinable(t *testing.T) {
	f := newFixture(t, HostLeaveTransfer)
	assert.True(t, f.room.IsJoinable(f.clock.Now(), time.Minute))
	assert.False(t, f.room.IsJoinable(f.clock.Now().Add(2*time.Minute), time.Minute))
	f.join(t)
	assert.False(t, f.room.IsJoinable(f.clock.Now(), time.Minute))
}

func TestAttachSink(t *testing.T) {
	f := newFixture(t, HostLeaveTransfer)
	ctx := context.Background()
	require.NoError(t, f.room.Join(ctx, "bob", nil))

	_, err := f.room.Move(ctx, "alice", 2, 2)
	require.NoError(t, err)

	late := notifytest.New()
	require.NoError(t, f.room.AttachSink("bob", late))
	waitFor(t, late, notify.KindBoard, 1)
	ev, _ := late.Last(notify.KindBoard)
	assert.Equal(t, " | | \n | | \n | |X", ev.Board)

	assert.ErrorIs(t, f.room.AttachSink("carol", late), apperror.ErrNotAParticipant)
}

func TestConcurrentMoves(t *testing.T) {
	f := newFixture(t, HostLeaveTransfer)
	f.join(t)
	ctx := context.Background()

	// Both players race for every cell; the board must stay consistent.
	var wg sync.WaitGroup
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			for _, p := range []string{"alice", "bob"} {
				wg.Add(1)
				go func(p string, r, c int) {
					defer wg.Done()
					_, _ = f.room.Move(ctx, p, r, c)
				}(p, r, c)
			}
		}
	}
	wg.Wait()

	f.room.mu.Lock()
	defer f.room.mu.Unlock()
	assert.NoError(t, f.room.checkInvariants())
}

func TestParseHostLeavePolicy(t *testing.T) {
	p, err := ParseHostLeavePolicy("")
	require.NoError(t, err)
	assert.Equal(t, HostLeaveTransfer, p)

	p, err = ParseHostLeavePolicy("close")
	require.NoError(t, err)
	assert.Equal(t, HostLeaveClose, p)

	_, err = ParseHostLeavePolicy("explode")
	assert.Error(t, err)
}
