// Package system holds the per-phase simulation systems the game loop
// drives: input dispatch, event and timer pumping, combat rounds, NPC AI,
// wandering, dungeon resets, regeneration, output flushing, autosave and
// session cleanup.
package system

import (
	"sort"

	"github.com/gridmud/server/internal/net"
)

// Sessions tracks live network sessions by id.
// Accessed only from the game loop goroutine - no locks needed.
type Sessions struct {
	byID map[uint64]*net.Session
}

func NewSessions() *Sessions {
	return &Sessions{byID: make(map[uint64]*net.Session)}
}

func (s *Sessions) Add(sess *net.Session)      { s.byID[sess.ID] = sess }
func (s *Sessions) Remove(id uint64)           { delete(s.byID, id) }
func (s *Sessions) Get(id uint64) *net.Session { return s.byID[id] }
func (s *Sessions) Count() int                 { return len(s.byID) }

// All returns the live sessions in id order, so per-tick work is
// deterministic.
func (s *Sessions) All() []*net.Session {
	out := make([]*net.Session, 0, len(s.byID))
	for _, sess := range s.byID {
		out = append(out, sess)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
