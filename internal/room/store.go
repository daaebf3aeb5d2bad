package room

import (
	"math/rand"
	"sync"
	"time"
)

const roomIDLength = 8

const roomIDAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Store manages ephemeral rooms in memory only. Room state does not survive
// a process restart.
type Store struct {
	mu    sync.Mutex
	rooms map[string]*Room
	rng   *rand.Rand
}

// NewStore returns an in-memory store for rooms.
func NewStore() *Store {
	return &Store{
		rooms: make(map[string]*Room),
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// NewRoomID generates an unused 8-character alphanumeric room identifier.
func (s *Store) NewRoomID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	for {
		buf := make([]byte, roomIDLength)
		for i := range buf {
			buf[i] = roomIDAlphabet[s.rng.Intn(len(roomIDAlphabet))]
		}
		id := string(buf)
		if _, taken := s.rooms[id]; !taken {
			return id
		}
	}
}

// Add stores the room in memory.
func (s *Store) Add(r *Room) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rooms[r.ID] = r
}

// Delete removes the room from memory.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rooms, id)
}

// Get retrieves a room if it exists.
func (s *Store) Get(id string) (*Room, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rooms[id]
	return r, ok
}

// All returns a snapshot of every live room.
func (s *Store) All() []*Room {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Room, 0, len(s.rooms))
	for _, r := range s.rooms {
		out = append(out, r)
	}
	return out
}
