package ws

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func testClient(userID, socketID string) *Client {
	return newClient(nil, userID, socketID)
}

func drain(t *testing.T, c *Client) []Envelope {
	t.Helper()
	var out []Envelope
	for {
		select {
		case b := <-c.send:
			var env Envelope
			require.NoError(t, json.Unmarshal(b, &env))
			out = append(out, env)
		default:
			return out
		}
	}
}

func TestPushToUserReachesEveryConnection(t *testing.T) {
	h := NewHub()
	phone := testClient("u1", "s1")
	laptop := testClient("u1", "s2")
	other := testClient("u2", "s3")
	h.Register(phone)
	h.Register(laptop)
	h.Register(other)

	require.NoError(t, h.PushToUser("u1", Envelope{Type: "notification:new"}))

	require.Len(t, drain(t, phone), 1)
	require.Len(t, drain(t, laptop), 1)
	require.Empty(t, drain(t, other))
}

func TestPushToUnknownUserIsNoop(t *testing.T) {
	h := NewHub()
	require.NoError(t, h.PushToUser("ghost", Envelope{Type: "notification:new"}))
}

func TestBroadcastRoom(t *testing.T) {
	h := NewHub()
	member := testClient("u1", "s1")
	outsider := testClient("u2", "s2")
	h.Register(member)
	h.Register(outsider)
	h.JoinRoom(member, "project:p1")

	require.NoError(t, h.BroadcastRoom("project:p1", Envelope{Type: EventTaskUpdated}))

	got := drain(t, member)
	require.Len(t, got, 1)
	require.Equal(t, EventTaskUpdated, got[0].Type)
	require.Empty(t, drain(t, outsider))
}

func TestUnregisterRemovesFromRooms(t *testing.T) {
	h := NewHub()
	c := testClient("u1", "s1")
	h.Register(c)
	h.JoinRoom(c, "team:t1")
	require.Equal(t, 1, h.Connections("u1"))

	h.Unregister(c)
	require.Equal(t, 0, h.Connections("u1"))
	require.NoError(t, h.BroadcastRoom("team:t1", Envelope{Type: EventMembershipChanged}))
	require.Empty(t, drain(t, c))
}

func TestLeaveRoomsKeepsPersonalDelivery(t *testing.T) {
	h := NewHub()
	c := testClient("u1", "s1")
	h.Register(c)
	h.JoinRoom(c, "team:t1")
	h.JoinRoom(c, "project:p1")

	h.LeaveRooms(c)

	require.NoError(t, h.BroadcastRoom("team:t1", Envelope{Type: EventMessageNew}))
	require.Empty(t, drain(t, c))

	require.NoError(t, h.PushToUser("u1", Envelope{Type: "notification:new"}))
	require.Len(t, drain(t, c), 1)
}

func TestSecondConnectionSurvivesFirstUnregister(t *testing.T) {
	h := NewHub()
	first := testClient("u1", "s1")
	second := testClient("u1", "s2")
	h.Register(first)
	h.Register(second)

	h.Unregister(first)
	require.Equal(t, 1, h.Connections("u1"))

	require.NoError(t, h.PushToUser("u1", Envelope{Type: "notification:new"}))
	require.Empty(t, drain(t, first))
	require.Len(t, drain(t, second), 1)
}

func TestSlowConsumerDropsInsteadOfBlocking(t *testing.T) {
	h := NewHub()
	c := testClient("u1", "s1")
	h.Register(c)

	for i := 0; i < cap(c.send)+10; i++ {
		require.NoError(t, h.PushToUser("u1", Envelope{Type: "notification:new"}))
	}
	require.Len(t, drain(t, c), cap(c.send))
}
