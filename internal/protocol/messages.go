package protocol

// Events: Client → Server
const (
	EvtCreateRoom   = "create_room"
	EvtJoinByCode   = "join_by_code"
	EvtJoinRoom     = "join_room"
	EvtLeaveLobby   = "leave_lobby"
	EvtGameStarting = "game_starting"
	// Gameplay relay events. Payloads are game-defined and forwarded verbatim.
	EvtState        = "state"
	EvtInput        = "input"
	EvtPeerUsername = "peer_username"
	EvtClaimMedkit  = "claim_medkit"
	EvtClaimUpgrade = "claim_upgrade"
	EvtBuyStat      = "buy_stat"
	EvtHostLeft     = "host_left"
	EvtPeerLeft     = "peer_left"
)

// Events: Server → Client
const (
	EvtAck         = "ack"
	EvtError       = "error"
	EvtLobbyUpdate = "lobby_update"
)

// Error strings reported through the ack channel.
const (
	ErrTextInvalidCode = "Invalid or expired code"
	ErrTextRoomFull    = "Room is full"
)

// RoomInfo is the reply to create_room and a successful join_by_code.
type RoomInfo struct {
	RoomID string `json:"roomId"`
	Code   string `json:"code"`
}

// ErrorReply is the reply to a failed join_by_code.
type ErrorReply struct {
	Error string `json:"error"`
}

// LobbyUpdate is sent to all room members whenever membership changes.
type LobbyUpdate struct {
	Count int `json:"count"`
}

// JoinByCode carries the human-entered join code.
type JoinByCode struct {
	Code string `json:"code"`
}

// JoinRoom carries a room id obtained from an earlier create_room or
// join_by_code reply. No code validation happens on this path.
type JoinRoom struct {
	RoomID string `json:"roomId"`
}
