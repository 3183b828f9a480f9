package hub

import (
	"context"
	"encoding/json"
	"errors"

	"go.uber.org/zap"

	"github.com/zunxo7/CandyMinigames-sub000/internal/protocol"
	"github.com/zunxo7/CandyMinigames-sub000/internal/room"
)

type Msg interface{ isHubMsg() }

// Register announces a new transport connection and the channel it wants
// outbound envelopes on.
type Register struct {
	ConnID string
	Outbox chan protocol.Envelope
}

// Unregister reports a transport disconnect. Treated as an implicit
// leave_lobby, with a host_left broadcast first if the connection hosted
// its room.
type Unregister struct{ ConnID string }

// Inbound carries one decoded client envelope.
type Inbound struct {
	ConnID string
	Env    protocol.Envelope
}

type Shutdown struct{}

type GetView struct{ Reply chan View }

func (Register) isHubMsg()   {}
func (Unregister) isHubMsg() {}
func (Inbound) isHubMsg()    {}
func (Shutdown) isHubMsg()   {}
func (GetView) isHubMsg()    {}

// View reflects internal state for tests without data races.
type View struct {
	NumConns int
	NumRooms int
}

type Role string

const (
	RoleHost  Role = "host"
	RoleGuest Role = "guest"
)

// membership is a connection's lobby affiliation. A nil membership is the
// unaffiliated state, so a host flag cannot exist without a room.
type membership struct {
	RoomID string
	Role   Role
}

type conn struct {
	id     string
	outbox chan protocol.Envelope
	lobby  *membership
}

// Hub is the lobby protocol handler. A single goroutine owns the connection
// registry, the room store and the relay groups; every message runs to
// completion before the next, so store mutations are atomic without locks.
type Hub struct {
	inbox  chan Msg
	conns  map[string]*conn
	groups map[string]map[string]bool // room id -> conn ids receiving relay traffic
	store  *room.Store
	log    *zap.Logger
	ctx    context.Context
	cancel context.CancelFunc
}

func New(parent context.Context, log *zap.Logger) *Hub {
	ctx, cancel := context.WithCancel(parent)
	h := &Hub{
		inbox:  make(chan Msg, 64),
		conns:  make(map[string]*conn),
		groups: make(map[string]map[string]bool),
		store:  room.NewStore(),
		log:    log,
		ctx:    ctx,
		cancel: cancel,
	}
	go h.loop()
	return h
}

// Inbox is where the transport layer (and tests) send messages.
func (h *Hub) Inbox() chan<- Msg { return h.inbox }

func (h *Hub) loop() {
	for {
		select {
		case <-h.ctx.Done():
			h.shutdown()
			return

		case m := <-h.inbox:
			switch msg := m.(type) {
			case Register:
				h.conns[msg.ConnID] = &conn{id: msg.ConnID, outbox: msg.Outbox}
				h.log.Debug("connection registered", zap.String("connID", msg.ConnID))

			case Unregister:
				h.unregister(msg.ConnID)

			case Inbound:
				if c, ok := h.conns[msg.ConnID]; ok {
					h.handle(c, msg.Env)
				}

			case GetView:
				msg.Reply <- View{NumConns: len(h.conns), NumRooms: h.store.Count()}

			case Shutdown:
				h.shutdown()
				return
			}
		}
	}
}

func (h *Hub) shutdown() {
	for id, c := range h.conns {
		close(c.outbox)
		delete(h.conns, id)
	}
	h.cancel()
}

func (h *Hub) handle(c *conn, env protocol.Envelope) {
	switch env.Event {
	case protocol.EvtCreateRoom:
		h.createRoom(c, env)
	case protocol.EvtJoinByCode:
		h.joinByCode(c, env)
	case protocol.EvtJoinRoom:
		h.joinRoom(c, env)
	case protocol.EvtLeaveLobby:
		h.leaveLobby(c)
	case protocol.EvtState, protocol.EvtGameStarting:
		h.relay(c, env, true)
	case protocol.EvtInput, protocol.EvtPeerUsername, protocol.EvtClaimMedkit,
		protocol.EvtClaimUpgrade, protocol.EvtBuyStat,
		protocol.EvtHostLeft, protocol.EvtPeerLeft:
		h.relay(c, env, false)
	default:
		h.log.Debug("unknown event dropped",
			zap.String("connID", c.id), zap.String("event", env.Event))
	}
}

func (h *Hub) createRoom(c *conn, env protocol.Envelope) {
	if c.lobby != nil {
		h.leaveLobby(c)
	}
	r, err := h.store.Create(c.id)
	if err != nil {
		h.reply(c, env, protocol.ErrorReply{Error: "could not create room"})
		return
	}
	c.lobby = &membership{RoomID: r.ID, Role: RoleHost}
	h.joinGroup(r.ID, c.id)
	h.reply(c, env, protocol.RoomInfo{RoomID: r.ID, Code: r.Code})
	h.log.Info("room created",
		zap.String("roomID", r.ID), zap.String("code", r.Code), zap.String("connID", c.id))
}

func (h *Hub) joinByCode(c *conn, env protocol.Envelope) {
	var req protocol.JoinByCode
	if err := json.Unmarshal(env.Data, &req); err != nil || req.Code == "" {
		h.reply(c, env, protocol.ErrorReply{Error: protocol.ErrTextInvalidCode})
		return
	}
	if c.lobby != nil {
		h.leaveLobby(c)
	}

	r, err := h.store.JoinByCode(req.Code, c.id)
	switch {
	case errors.Is(err, room.ErrRoomFull):
		h.reply(c, env, protocol.ErrorReply{Error: protocol.ErrTextRoomFull})
		return
	case err != nil:
		h.reply(c, env, protocol.ErrorReply{Error: protocol.ErrTextInvalidCode})
		return
	}

	c.lobby = &membership{RoomID: r.ID, Role: RoleGuest}
	h.joinGroup(r.ID, c.id)
	h.reply(c, env, protocol.RoomInfo{RoomID: r.ID, Code: r.Code})
	h.lobbyUpdate(r)
	h.log.Info("guest joined room",
		zap.String("roomID", r.ID), zap.String("connID", c.id))
}

// joinRoom trusts the caller: the room id must come from the caller's own
// earlier create_room or join_by_code reply. Only transport-group membership
// changes; the room store is not touched, so this also serves reconnection.
func (h *Hub) joinRoom(c *conn, env protocol.Envelope) {
	var req protocol.JoinRoom
	if err := json.Unmarshal(env.Data, &req); err != nil || req.RoomID == "" {
		return
	}
	if c.lobby != nil {
		h.leaveGroup(c.lobby.RoomID, c.id)
	}
	c.lobby = &membership{RoomID: req.RoomID, Role: RoleGuest}
	h.joinGroup(req.RoomID, c.id)
}

func (h *Hub) leaveLobby(c *conn) {
	if c.lobby == nil {
		return
	}
	roomID := c.lobby.RoomID
	c.lobby = nil
	h.leaveGroup(roomID, c.id)
	if remaining, _ := h.store.Leave(roomID, c.id); remaining != nil {
		h.lobbyUpdate(remaining)
	}
}

// relay forwards a gameplay envelope within the sender's room. state and
// game_starting reach every member including the sender; everything else goes
// only to the other member(s). Payloads pass through untouched. A relay
// message from an unaffiliated connection has no destination: silent drop.
func (h *Hub) relay(c *conn, env protocol.Envelope, includeSender bool) {
	if c.lobby == nil {
		return
	}
	env.Ack = 0
	for id := range h.groups[c.lobby.RoomID] {
		if !includeSender && id == c.id {
			continue
		}
		if peer, ok := h.conns[id]; ok {
			h.send(peer, env)
		}
	}
}

func (h *Hub) lobbyUpdate(r *room.Room) {
	env := protocol.MustEnvelope(protocol.EvtLobbyUpdate, protocol.LobbyUpdate{Count: len(r.Members)})

	// Dropping a slow member here would splice r.Members mid-iteration and
	// re-enter lobbyUpdate, so a survivor would see a stale count after the
	// corrected one. Collect the slow members and drop them after the loop.
	var slow []string
	for _, id := range r.Members {
		c, ok := h.conns[id]
		if !ok {
			continue
		}
		select {
		case c.outbox <- env:
		default:
			slow = append(slow, id)
		}
	}
	for _, id := range slow {
		h.log.Warn("outbox full, dropping connection", zap.String("connID", id))
		h.unregister(id)
	}
}

func (h *Hub) reply(c *conn, inbound protocol.Envelope, payload interface{}) {
	env := protocol.MustEnvelope(protocol.EvtAck, payload)
	env.Ack = inbound.Ack
	h.send(c, env)
}

func (h *Hub) send(c *conn, env protocol.Envelope) {
	select {
	case c.outbox <- env:
	default:
		// Slow or stuck consumer: drop the connection.
		h.log.Warn("outbox full, dropping connection", zap.String("connID", c.id))
		h.unregister(c.id)
	}
}

func (h *Hub) unregister(connID string) {
	c, ok := h.conns[connID]
	if !ok {
		return
	}
	delete(h.conns, connID)
	if c.lobby != nil && c.lobby.Role == RoleHost {
		h.relay(c, protocol.Envelope{Event: protocol.EvtHostLeft}, false)
	}
	h.leaveLobby(c)
	close(c.outbox)
	h.log.Debug("connection unregistered", zap.String("connID", connID))
}

func (h *Hub) joinGroup(roomID, connID string) {
	g, ok := h.groups[roomID]
	if !ok {
		g = make(map[string]bool)
		h.groups[roomID] = g
	}
	g[connID] = true
}

func (h *Hub) leaveGroup(roomID, connID string) {
	g, ok := h.groups[roomID]
	if !ok {
		return
	}
	delete(g, connID)
	if len(g) == 0 {
		delete(h.groups, roomID)
	}
}
