package main

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/bhonris/multi-td/protocol"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type client struct {
	conn     *websocket.Conn
	writeMu  sync.Mutex
	gameID   string
	playerID string
}

func (c *client) send(data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteMessage(websocket.BinaryMessage, data)
}

func (c *client) sendJSON(v any) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteJSON(v)
}

// hub tracks every live connection per game and fans simulation updates out
// to them. Delivery is at-least-once: lifecycle events are re-sent directly
// to each connection after a short delay under the same event id, and clients
// that still miss one can poll full state over the socket or REST.
type hub struct {
	reg   *registry
	delay time.Duration
	grace time.Duration

	mu     sync.Mutex
	rooms  map[string]map[*client]struct{}
	timers map[string]*time.Timer
}

func newHub(delay, grace time.Duration) *hub {
	return &hub{
		delay:  delay,
		grace:  grace,
		rooms:  make(map[string]map[*client]struct{}),
		timers: make(map[string]*time.Timer),
	}
}

// broadcast is the registry's update callback. Every call carries a complete
// snapshot; receivers never merge partial state.
func (h *hub) broadcast(eventType string, snap *protocol.GameSnapshot) {
	ev := protocol.Event{
		EventID:  uuid.NewString(),
		Type:     eventType,
		GameID:   snap.ID,
		Snapshot: snap,
		At:       time.Now().UnixMilli(),
	}
	data, err := protocol.EncodeEvent(ev)
	if err != nil {
		log.Printf("encode %s event for game %s: %v", eventType, snap.ID, err)
		return
	}

	h.mu.Lock()
	clients := make([]*client, 0, len(h.rooms[snap.ID]))
	for c := range h.rooms[snap.ID] {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		if err := c.send(data); err != nil {
			log.Printf("send %s to player %s: %v", eventType, c.playerID, err)
		}
	}

	// Routine ticks are superseded by the next tick anyway; only discrete
	// transitions get the redundant direct resend.
	if eventType == protocol.EventState {
		return
	}
	time.AfterFunc(h.delay, func() {
		for _, c := range clients {
			if err := c.send(data); err != nil {
				log.Printf("resend %s to player %s: %v", eventType, c.playerID, err)
			}
		}
	})
}

func (h *hub) register(c *client) {
	h.mu.Lock()
	room := h.rooms[c.gameID]
	if room == nil {
		room = make(map[*client]struct{})
		h.rooms[c.gameID] = room
	}
	room[c] = struct{}{}
	key := c.gameID + "/" + c.playerID
	if t := h.timers[key]; t != nil {
		t.Stop()
		delete(h.timers, key)
	}
	h.mu.Unlock()

	h.reg.markConnected(c.gameID, c.playerID, true)
}

// unregister drops the connection and arms a grace timer; the player is only
// marked disconnected if no new connection shows up in time. A player with
// another connection still in the room needs no timer at all.
func (h *hub) unregister(c *client) {
	h.mu.Lock()
	if room := h.rooms[c.gameID]; room != nil {
		delete(room, c)
		if len(room) == 0 {
			delete(h.rooms, c.gameID)
		}
	}
	for other := range h.rooms[c.gameID] {
		if other.playerID == c.playerID {
			h.mu.Unlock()
			return
		}
	}
	key := c.gameID + "/" + c.playerID
	if t := h.timers[key]; t != nil {
		t.Stop()
	}
	h.timers[key] = time.AfterFunc(h.grace, func() {
		h.mu.Lock()
		delete(h.timers, key)
		h.mu.Unlock()
		h.reg.markConnected(c.gameID, c.playerID, false)
	})
	h.mu.Unlock()
}

func (h *hub) handleWS(w http.ResponseWriter, r *http.Request) {
	gameID := r.URL.Query().Get("game")
	playerID := r.URL.Query().Get("playerId")
	if gameID == "" || playerID == "" {
		http.Error(w, "game and playerId query parameters are required", http.StatusBadRequest)
		return
	}
	if res := h.reg.joinGame(gameID, playerID, r.URL.Query().Get("name")); !res.Success {
		http.Error(w, res.Message, http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("upgrade connection for player %s: %v", playerID, err)
		return
	}

	c := &client{conn: conn, gameID: gameID, playerID: playerID}
	h.register(c)
	defer func() {
		h.unregister(c)
		conn.Close()
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("read from player %s: %v", playerID, err)
			}
			return
		}
		var msg clientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			c.sendJSON(failure(codeInvalidState, "malformed message"))
			continue
		}
		res := h.dispatch(c, msg)
		if err := c.sendJSON(res); err != nil {
			log.Printf("reply to player %s: %v", playerID, err)
			return
		}
	}
}

func (h *hub) dispatch(c *client, msg clientMessage) actionResult {
	switch msg.Type {
	case "ready":
		ready := true
		if msg.Ready != nil {
			ready = *msg.Ready
		}
		return h.reg.setPlayerReady(c.gameID, c.playerID, ready)
	case "start-game":
		return h.reg.startGame(c.gameID)
	case "start-wave":
		return h.reg.startWave(c.gameID)
	case "build-tower":
		if msg.Position == nil {
			return failure(codePositionInvalid, "position is required")
		}
		return h.reg.buildTower(c.gameID, c.playerID, towerType(msg.TowerType), *msg.Position)
	case "upgrade-tower":
		return h.reg.upgradeTower(c.gameID, c.playerID, msg.TowerID)
	case "sell-tower":
		return h.reg.sellTower(c.gameID, c.playerID, msg.TowerID)
	case "pause-game":
		return h.reg.pauseGame(c.gameID)
	case "resume-game":
		return h.reg.resumeGame(c.gameID)
	case "stop-game":
		return h.reg.stopGame(c.gameID)
	case "get-state":
		return h.reg.getGameState(c.gameID)
	default:
		return failure(codeNotFound, "unknown message type "+msg.Type)
	}
}
