// services/events.go - Achievement Unlock Event Hub
package services

import (
	"sync"
	"time"
	"wellspace/models"
)

// UnlockEvent is pushed to a user's websocket subscribers when an achievement
// completes.
type UnlockEvent struct {
	UserID        uint       `json:"user_id"`
	AchievementID uint       `json:"achievement_id"`
	Title         string     `json:"title"`
	Icon          string     `json:"icon"`
	Category      string     `json:"category"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
}

// AchievementEventHub fans newly completed achievements out to per-user
// subscribers. Slow subscribers drop events rather than block the engine.
type AchievementEventHub struct {
	mu   sync.RWMutex
	subs map[uint]map[chan UnlockEvent]struct{}
}

func NewAchievementEventHub() *AchievementEventHub {
	return &AchievementEventHub{subs: make(map[uint]map[chan UnlockEvent]struct{})}
}

// Subscribe registers a buffered channel for the user's unlock events.
func (h *AchievementEventHub) Subscribe(userID uint) chan UnlockEvent {
	ch := make(chan UnlockEvent, 8)
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subs[userID] == nil {
		h.subs[userID] = make(map[chan UnlockEvent]struct{})
	}
	h.subs[userID][ch] = struct{}{}
	return ch
}

// Unsubscribe removes and closes a previously subscribed channel.
func (h *AchievementEventHub) Unsubscribe(userID uint, ch chan UnlockEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if set, ok := h.subs[userID]; ok {
		if _, ok := set[ch]; ok {
			delete(set, ch)
			close(ch)
		}
		if len(set) == 0 {
			delete(h.subs, userID)
		}
	}
}

// Publish delivers an unlock event to all of the user's subscribers.
func (h *AchievementEventHub) Publish(userID uint, rec models.UserAchievementProgress) {
	event := UnlockEvent{
		UserID:        rec.UserID,
		AchievementID: rec.AchievementID,
		Title:         rec.Achievement.Title,
		Icon:          rec.Achievement.Icon,
		Category:      rec.Achievement.Category,
		CompletedAt:   rec.CompletedAt,
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.subs[userID] {
		select {
		case ch <- event:
		default:
		}
	}
}
