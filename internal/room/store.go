package room

import (
	"errors"

	"github.com/google/uuid"

	"github.com/zunxo7/CandyMinigames-sub000/internal/code"
)

var ErrInvalidCode = errors.New("invalid or expired code")
var ErrRoomFull = errors.New("room is full")

// Capacity is the member limit of a room: two-player lobbies only.
const Capacity = 2

// Room is one two-player lobby. ID is an opaque uuid; Code is the short
// human-entry code mapped back to the room while it is alive.
type Room struct {
	ID      string
	Code    string
	HostID  string
	Members []string
}

// Store owns all rooms and the code→room reverse index. It has no internal
// locking: it is mutated only from the hub goroutine.
type Store struct {
	rooms map[string]*Room
	codes map[string]string // join code -> room id
}

func NewStore() *Store {
	return &Store{
		rooms: make(map[string]*Room),
		codes: make(map[string]string),
	}
}

// Create allocates a room with the host as sole member. Code generation
// retries on collision with a live code, so reservation is atomic with
// generation from the caller's point of view.
func (s *Store) Create(hostID string) (*Room, error) {
	var c string
	for {
		generated, err := code.Generate()
		if err != nil {
			return nil, err
		}
		if _, taken := s.codes[generated]; !taken {
			c = generated
			break
		}
	}

	r := &Room{
		ID:      uuid.NewString(),
		Code:    c,
		HostID:  hostID,
		Members: []string{hostID},
	}
	s.rooms[r.ID] = r
	s.codes[c] = r.ID
	return r, nil
}

// JoinByCode redeems a join code for a connection. The code is normalized
// before lookup. Fails with ErrInvalidCode for a code with no live room and
// ErrRoomFull when the member set is already at capacity.
func (s *Store) JoinByCode(c, connID string) (*Room, error) {
	id, ok := s.codes[code.Normalize(c)]
	if !ok {
		return nil, ErrInvalidCode
	}
	r := s.rooms[id]
	if len(r.Members) >= Capacity {
		return nil, ErrRoomFull
	}
	r.Members = append(r.Members, connID)
	return r, nil
}

// Leave removes the connection from the room's member set. When the set
// empties the room is deleted and its code freed, so an empty room is never
// left dangling. Returns the surviving room (nil if deleted or untouched) and
// whether the connection was actually removed. Idempotent: unknown rooms and
// non-members are no-ops.
func (s *Store) Leave(roomID, connID string) (*Room, bool) {
	r, ok := s.rooms[roomID]
	if !ok {
		return nil, false
	}

	removed := false
	for i, id := range r.Members {
		if id == connID {
			r.Members = append(r.Members[:i], r.Members[i+1:]...)
			removed = true
			break
		}
	}
	if !removed {
		return nil, false
	}

	if len(r.Members) == 0 {
		delete(s.codes, r.Code)
		delete(s.rooms, r.ID)
		return nil, true
	}
	return r, true
}

// Get looks up a room by id.
func (s *Store) Get(roomID string) (*Room, bool) {
	r, ok := s.rooms[roomID]
	return r, ok
}

// Count returns the number of live rooms.
func (s *Store) Count() int { return len(s.rooms) }
