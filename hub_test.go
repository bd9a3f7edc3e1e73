package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bhonris/multi-td/protocol"
	"github.com/gorilla/websocket"
)

func newTestHub() (*hub, *registry) {
	h := newHub(time.Millisecond, time.Millisecond)
	reg := newRegistry(time.Hour, h.broadcast)
	h.reg = reg
	return h, reg
}

func TestDispatchRoutesActions(t *testing.T) {
	h, reg := newTestHub()
	gameID := reg.createGame("host", "host", 4, "normal").Game.ID
	c := &client{gameID: gameID, playerID: "host"}

	if res := h.dispatch(c, clientMessage{Type: "ready"}); !res.Success {
		t.Fatalf("ready: %s", res.Message)
	}
	if res := h.dispatch(c, clientMessage{Type: "start-game"}); !res.Success {
		t.Fatalf("start-game: %s", res.Message)
	}
	if res := h.dispatch(c, clientMessage{Type: "start-wave"}); !res.Success {
		t.Fatalf("start-wave: %s", res.Message)
	}
	if res := h.dispatch(c, clientMessage{Type: "build-tower", TowerType: "basic"}); res.Success || res.Code != codePositionInvalid {
		t.Fatalf("build without position: %+v", res)
	}
	res := h.dispatch(c, clientMessage{Type: "build-tower", TowerType: "basic", Position: &position{X: 3, Y: 3}})
	if !res.Success {
		t.Fatalf("build: %s", res.Message)
	}
	if res := h.dispatch(c, clientMessage{Type: "sell-tower", TowerID: res.Tower.ID}); !res.Success {
		t.Fatalf("sell: %s", res.Message)
	}
	if res := h.dispatch(c, clientMessage{Type: "get-state"}); !res.Success || res.Game == nil {
		t.Fatalf("get-state: %+v", res)
	}
	if res := h.dispatch(c, clientMessage{Type: "warp"}); res.Success || res.Code != codeNotFound {
		t.Fatalf("unknown type: %+v", res)
	}
}

func TestReadyFlagExplicitFalse(t *testing.T) {
	h, reg := newTestHub()
	gameID := reg.createGame("host", "host", 4, "normal").Game.ID
	c := &client{gameID: gameID, playerID: "host"}

	notReady := false
	h.dispatch(c, clientMessage{Type: "ready"})
	res := h.dispatch(c, clientMessage{Type: "ready", Ready: &notReady})
	if !res.Success {
		t.Fatalf("unready: %s", res.Message)
	}
	if res.Game.Players[0].Ready {
		t.Fatal("player still marked ready")
	}
}

func TestBroadcastWithoutSubscribers(t *testing.T) {
	h, reg := newTestHub()
	snap := reg.createGame("host", "host", 4, "normal").Game

	// No connections registered for the room; both the fan-out and the
	// delayed redundant resend must be no-ops.
	h.broadcast(protocol.EventGameStarted, snap)
	time.Sleep(5 * time.Millisecond)
}

func dialWS(t *testing.T, srv *httptest.Server, gameID, playerID string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?game=" + gameID + "&playerId=" + playerID
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", url, err)
	}
	return conn
}

func waitForSubscribers(t *testing.T, h *hub, gameID string, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		h.mu.Lock()
		n := len(h.rooms[gameID])
		h.mu.Unlock()
		if n == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("room %s never reached %d subscribers", gameID, want)
}

func playerConnected(t *testing.T, reg *registry, gameID, playerID string) bool {
	t.Helper()
	res := reg.getGameState(gameID)
	if !res.Success {
		t.Fatalf("getGameState: %+v", res)
	}
	for _, p := range res.Game.Players {
		if p.ID == playerID {
			return p.Connected
		}
	}
	t.Fatalf("player %s not in game", playerID)
	return false
}

func TestLifecycleEventResentWithSameID(t *testing.T) {
	h := newHub(10*time.Millisecond, time.Second)
	reg := newRegistry(time.Hour, h.broadcast)
	h.reg = reg
	srv := httptest.NewServer(http.HandlerFunc(h.handleWS))
	defer srv.Close()

	gameID := reg.createGame("host", "host", 4, "normal").Game.ID
	conn := dialWS(t, srv, gameID, "host")
	defer conn.Close()
	waitForSubscribers(t, h, gameID, 1)

	reg.setPlayerReady(gameID, "host", true)

	// The fan-out delivers the event once and the delayed resend delivers
	// it again under the same id, so receivers can drop the duplicate.
	var got []protocol.Event
	for len(got) < 2 {
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		if msgType != websocket.BinaryMessage {
			continue
		}
		ev, err := protocol.DecodeEvent(data)
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		if ev.Type == protocol.EventPlayerReady {
			got = append(got, ev)
		}
	}
	if got[0].EventID == "" {
		t.Fatal("event sent without an id")
	}
	if got[0].EventID != got[1].EventID {
		t.Fatalf("resend changed event id: %s vs %s", got[0].EventID, got[1].EventID)
	}
	if got[0].Snapshot == nil || got[1].Snapshot == nil {
		t.Fatal("event delivered without a snapshot")
	}
}

func TestDisconnectMarkedAfterGrace(t *testing.T) {
	h := newHub(time.Millisecond, 50*time.Millisecond)
	reg := newRegistry(time.Hour, h.broadcast)
	h.reg = reg
	srv := httptest.NewServer(http.HandlerFunc(h.handleWS))
	defer srv.Close()

	gameID := reg.createGame("host", "host", 4, "normal").Game.ID
	conn := dialWS(t, srv, gameID, "host")
	waitForSubscribers(t, h, gameID, 1)
	if !playerConnected(t, reg, gameID, "host") {
		t.Fatal("player not connected after register")
	}

	conn.Close()
	deadline := time.Now().Add(2 * time.Second)
	for playerConnected(t, reg, gameID, "host") {
		if !time.Now().Before(deadline) {
			t.Fatal("player still connected after grace elapsed")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestReconnectWithinGraceStaysConnected(t *testing.T) {
	h := newHub(time.Millisecond, 300*time.Millisecond)
	reg := newRegistry(time.Hour, h.broadcast)
	h.reg = reg
	srv := httptest.NewServer(http.HandlerFunc(h.handleWS))
	defer srv.Close()

	gameID := reg.createGame("host", "host", 4, "normal").Game.ID
	conn := dialWS(t, srv, gameID, "host")
	waitForSubscribers(t, h, gameID, 1)

	conn.Close()
	conn2 := dialWS(t, srv, gameID, "host")
	defer conn2.Close()

	// The new registration cancels the grace timer, so the player never
	// flips to disconnected.
	time.Sleep(600 * time.Millisecond)
	if !playerConnected(t, reg, gameID, "host") {
		t.Fatal("reconnect did not cancel the grace timer")
	}
}

func TestSecondConnectionKeepsPlayerConnected(t *testing.T) {
	h := newHub(time.Millisecond, 50*time.Millisecond)
	reg := newRegistry(time.Hour, h.broadcast)
	h.reg = reg
	srv := httptest.NewServer(http.HandlerFunc(h.handleWS))
	defer srv.Close()

	gameID := reg.createGame("host", "host", 4, "normal").Game.ID
	conn1 := dialWS(t, srv, gameID, "host")
	conn2 := dialWS(t, srv, gameID, "host")
	waitForSubscribers(t, h, gameID, 2)

	// Dropping one of two connections must not arm the grace timer while
	// the other is still in the room.
	conn2.Close()
	waitForSubscribers(t, h, gameID, 1)
	time.Sleep(200 * time.Millisecond)
	if !playerConnected(t, reg, gameID, "host") {
		t.Fatal("player marked disconnected with a live connection remaining")
	}

	conn1.Close()
	deadline := time.Now().Add(2 * time.Second)
	for playerConnected(t, reg, gameID, "host") {
		if !time.Now().Before(deadline) {
			t.Fatal("player still connected after last connection dropped")
		}
		time.Sleep(10 * time.Millisecond)
	}
}
