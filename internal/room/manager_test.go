// internal/room/manager_test.go
package room

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tablestakes/holdem/internal/config"
	"github.com/tablestakes/holdem/internal/game"
)

func newTestManager(maxPlayers int) *Manager {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return NewManager(logger, config.Config{
		BigBlind:     20,
		MaxPlayers:   maxPlayers,
		TurnTimerSec: 0, // no deadlines in tests
	})
}

func newTestConn(playerID string) *Connection {
	return &Connection{
		PlayerID: playerID,
		OutChan:  make(chan game.Event, 64),
	}
}

// receivedTypes drains everything queued for the connection.
func receivedTypes(c *Connection) []game.EventType {
	var types []game.EventType
	for {
		select {
		case ev := <-c.OutChan:
			types = append(types, ev.Type)
		default:
			return types
		}
	}
}

func TestCreateRoomSeatsCreator(t *testing.T) {
	m := newTestManager(6)
	r := m.CreateRoom("alice", 20)

	assert.Len(t, r.ID, 8)
	assert.Equal(t, 400, r.InitialStack, "20 big blinds of 20 chips")
	assert.Equal(t, StatusWaiting, r.Status)
	require.Len(t, r.Players, 1)
	assert.Equal(t, "alice", r.Players[0].ID)
	assert.Equal(t, 400, r.Players[0].Stack)

	listed := m.ListJoinable()
	require.Len(t, listed, 1)
	assert.Equal(t, r.ID, listed[0].RoomID)
	assert.Equal(t, 1, listed[0].Seated)
}

func TestCreateRoomRejectsBogusMultiple(t *testing.T) {
	m := newTestManager(6)
	r := m.CreateRoom("alice", -3)
	assert.Equal(t, 400, r.InitialStack, "falls back to the default multiple")
}

func TestJoinSeatsAndBroadcastsRoster(t *testing.T) {
	m := newTestManager(6)
	r := m.CreateRoom("alice", 20)

	alice := newTestConn("alice")
	require.NoError(t, m.Join(r.ID, "alice", alice))

	bob := newTestConn("bob")
	require.NoError(t, m.Join(r.ID, "bob", bob))

	assert.Len(t, r.Players, 2)
	assert.Contains(t, receivedTypes(alice), game.EventUpdatePlayers)

	assert.Error(t, m.Join("nosuchrm", "carol", newTestConn("carol")))
}

func TestJoinInProgressRoomRefused(t *testing.T) {
	m := newTestManager(6)
	r := m.CreateRoom("alice", 20)
	require.NoError(t, m.Join(r.ID, "alice", newTestConn("alice")))
	require.NoError(t, m.Join(r.ID, "bob", newTestConn("bob")))
	require.NoError(t, m.Start(r.ID, "alice"))

	err := m.Join(r.ID, "carol", newTestConn("carol"))
	assert.ErrorIs(t, err, ErrRoomNotJoinable)
}

func TestAutoStartAtCapacity(t *testing.T) {
	m := newTestManager(2)
	r := m.CreateRoom("alice", 20)

	alice := newTestConn("alice")
	require.NoError(t, m.Join(r.ID, "alice", alice))
	assert.Equal(t, StatusWaiting, r.Status)

	require.NoError(t, m.Join(r.ID, "bob", newTestConn("bob")))
	assert.Equal(t, StatusInProgress, r.Status)
	require.NotNil(t, r.Game)
	assert.Contains(t, receivedTypes(alice), game.EventStartGame)
}

func TestStartRequiresCreator(t *testing.T) {
	m := newTestManager(6)
	r := m.CreateRoom("alice", 20)
	require.NoError(t, m.Join(r.ID, "alice", newTestConn("alice")))
	require.NoError(t, m.Join(r.ID, "bob", newTestConn("bob")))

	assert.ErrorIs(t, m.Start(r.ID, "bob"), ErrUnauthorized)
	assert.Equal(t, StatusWaiting, r.Status)

	require.NoError(t, m.Start(r.ID, "alice"))
	assert.Equal(t, StatusInProgress, r.Status)

	// Starting twice is refused.
	assert.Error(t, m.Start(r.ID, "alice"))
}

func TestStartNeedsTwoPlayers(t *testing.T) {
	m := newTestManager(6)
	r := m.CreateRoom("alice", 20)
	require.NoError(t, m.Join(r.ID, "alice", newTestConn("alice")))

	assert.ErrorIs(t, m.Start(r.ID, "alice"), game.ErrInsufficientPlayers)
	assert.Equal(t, StatusWaiting, r.Status)
}

func TestCreatorLeaveClosesRoom(t *testing.T) {
	m := newTestManager(6)
	r := m.CreateRoom("alice", 20)
	alice := newTestConn("alice")
	bob := newTestConn("bob")
	require.NoError(t, m.Join(r.ID, "alice", alice))
	require.NoError(t, m.Join(r.ID, "bob", bob))

	m.Leave(r.ID, "alice", alice)

	_, exists := m.Room(r.ID)
	assert.False(t, exists, "creator leaving dissolves the room")
	assert.Contains(t, receivedTypes(bob), game.EventRoomClosed)
}

func TestNonCreatorLeaveKeepsRoom(t *testing.T) {
	m := newTestManager(6)
	r := m.CreateRoom("alice", 20)
	require.NoError(t, m.Join(r.ID, "alice", newTestConn("alice")))
	bob := newTestConn("bob")
	require.NoError(t, m.Join(r.ID, "bob", bob))

	m.Leave(r.ID, "bob", bob)

	_, exists := m.Room(r.ID)
	assert.True(t, exists)
	r.Mu.Lock()
	defer r.Mu.Unlock()
	assert.Equal(t, []string{"alice"}, r.roster())
}

func TestLeaveMidGameFoldsSeat(t *testing.T) {
	m := newTestManager(6)
	r := m.CreateRoom("alice", 20)
	require.NoError(t, m.Join(r.ID, "alice", newTestConn("alice")))
	bob := newTestConn("bob")
	require.NoError(t, m.Join(r.ID, "bob", bob))
	carol := newTestConn("carol")
	require.NoError(t, m.Join(r.ID, "carol", carol))
	require.NoError(t, m.Start(r.ID, "alice"))

	m.Leave(r.ID, "bob", bob)

	r.Mu.Lock()
	defer r.Mu.Unlock()
	assert.Equal(t, StatusInProgress, r.Status)
	assert.NotContains(t, r.roster(), "bob")
	seat := r.seatOf("bob")
	require.NotNil(t, seat, "the seat stays in the slice for the running hand")
	assert.True(t, seat.SittingOut)
	assert.True(t, seat.Folded)
}

func TestActRoutesToEngine(t *testing.T) {
	m := newTestManager(6)
	r := m.CreateRoom("alice", 20)
	require.NoError(t, m.Join(r.ID, "alice", newTestConn("alice")))
	require.NoError(t, m.Join(r.ID, "bob", newTestConn("bob")))
	carol := newTestConn("carol")
	require.NoError(t, m.Join(r.ID, "carol", carol))
	require.NoError(t, m.Start(r.ID, "alice"))

	// Carol is first to act and owes the big blind.
	assert.ErrorIs(t, m.Act(r.ID, "alice", game.Action{Type: game.ActionCall}), game.ErrIllegalAction)
	require.NoError(t, m.Act(r.ID, "carol", game.Action{Type: game.ActionCall}))

	// No engine while waiting.
	waiting := m.CreateRoom("dave", 20)
	assert.ErrorIs(t, m.Act(waiting.ID, "dave", game.Action{Type: game.ActionCheck}), game.ErrIllegalAction)
}

func TestDisconnectActorAppliesDefaultImmediately(t *testing.T) {
	m := newTestManager(6)
	r := m.CreateRoom("alice", 20)
	require.NoError(t, m.Join(r.ID, "alice", newTestConn("alice")))
	require.NoError(t, m.Join(r.ID, "bob", newTestConn("bob")))
	carol := newTestConn("carol")
	require.NoError(t, m.Join(r.ID, "carol", carol))
	require.NoError(t, m.Start(r.ID, "alice"))

	// Carol is first to act and owes the big blind; dropping her socket
	// folds her at once and passes the turn.
	m.Disconnect(r.ID, "carol", carol)

	r.Mu.Lock()
	defer r.Mu.Unlock()
	seat := r.seatOf("carol")
	require.NotNil(t, seat)
	assert.False(t, seat.Connected)
	assert.True(t, seat.Folded)
	assert.Equal(t, "alice", r.Game.PublicView().CurrentPlayer)
}

func TestDisconnectKeepsSeat(t *testing.T) {
	m := newTestManager(6)
	r := m.CreateRoom("alice", 20)
	alice := newTestConn("alice")
	require.NoError(t, m.Join(r.ID, "alice", alice))
	bob := newTestConn("bob")
	require.NoError(t, m.Join(r.ID, "bob", bob))

	m.Disconnect(r.ID, "bob", bob)

	r.Mu.Lock()
	seat := r.seatOf("bob")
	r.Mu.Unlock()
	require.NotNil(t, seat)
	assert.False(t, seat.Connected)
	assert.Contains(t, r.roster(), "bob")

	// Rejoining the same seat re-attaches instead of reseating.
	require.NoError(t, m.Join(r.ID, "bob", newTestConn("bob")))
	assert.True(t, seat.Connected)
	assert.Len(t, r.Players, 2)
}

func TestCloseBroadcastsAndForgets(t *testing.T) {
	m := newTestManager(6)
	r := m.CreateRoom("alice", 20)
	alice := newTestConn("alice")
	require.NoError(t, m.Join(r.ID, "alice", alice))

	m.Close(r.ID)

	_, exists := m.Room(r.ID)
	assert.False(t, exists)
	assert.Contains(t, receivedTypes(alice), game.EventRoomClosed)

	// Closing twice is harmless.
	m.Close(r.ID)
}
