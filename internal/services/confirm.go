package service

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yassinbenelhajlahsen/gallery-sub001/internal/models"
	"github.com/yassinbenelhajlahsen/gallery-sub001/internal/utils"
)

type TargetKind string

const (
	TargetMedia TargetKind = "media"
	TargetEvent TargetKind = "event"
)

// DeleteTarget identifies what an armed confirmation will delete.
// MediaKind is only set for media targets.
type DeleteTarget struct {
	Kind      TargetKind
	MediaKind models.Kind
	ID        string
}

type armedEntry struct {
	target DeleteTarget
	at     time.Time
}

// ConfirmGate implements the two-step confirmation for destructive actions.
// Arming records the target and returns a single-use token without any side
// effects; only presenting that token executes the deletion. Cancel or TTL
// expiry discards the armed state.
type ConfirmGate struct {
	mu    sync.Mutex
	armed map[string]armedEntry
	ttl   time.Duration
	now   func() time.Time
}

func NewConfirmGate(ttl time.Duration) *ConfirmGate {
	return &ConfirmGate{
		armed: make(map[string]armedEntry),
		ttl:   ttl,
		now:   time.Now,
	}
}

func (g *ConfirmGate) Arm(target DeleteTarget) string {
	token := uuid.NewString()
	g.mu.Lock()
	g.armed[token] = armedEntry{target: target, at: g.now()}
	g.mu.Unlock()
	return token
}

// Take consumes the token whether or not the subsequent deletion succeeds,
// so the gate is never left armed after an attempt.
func (g *ConfirmGate) Take(token string) (DeleteTarget, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	entry, ok := g.armed[token]
	if !ok {
		return DeleteTarget{}, utils.ErrConfirmExpired
	}
	delete(g.armed, token)
	if g.now().Sub(entry.at) > g.ttl {
		return DeleteTarget{}, utils.ErrConfirmExpired
	}
	return entry.target, nil
}

func (g *ConfirmGate) Cancel(token string) {
	g.mu.Lock()
	delete(g.armed, token)
	g.mu.Unlock()
}
