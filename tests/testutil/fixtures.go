// Package testutil provides shared fixtures for package tests.
package testutil

import (
	"strconv"
	"sync"
	"time"

	"github.com/0097eo/chama-web/internal/model"
)

// BaseTime is the fixed reference instant fixtures are built around.
var BaseTime = time.Date(2026, time.March, 14, 9, 30, 0, 0, time.UTC)

// Notification builds a notification with deterministic fields. The
// offset pushes CreatedAt back from BaseTime, so a larger offset means
// an older notification.
func Notification(id string, read bool, offset time.Duration) model.Notification {
	return model.Notification{
		ID:        id,
		Title:     "Notification " + id,
		Message:   "Message body for notification " + id,
		Type:      model.NotificationGeneral,
		Read:      read,
		CreatedAt: BaseTime.Add(-offset),
		UserID:    "user-1",
	}
}

// Notifications builds a newest-first list of notifications with ids
// n-1, n-2, ..., n-<count>, all unread.
func Notifications(count int) []model.Notification {
	list := make([]model.Notification, 0, count)
	for i := 0; i < count; i++ {
		id := "n-" + strconv.Itoa(i+1)
		list = append(list, Notification(id, false, time.Duration(i)*time.Minute))
	}
	return list
}

// Clock is a manually advanced clock for cache freshness tests.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// NewClock creates a clock starting at BaseTime.
func NewClock() *Clock {
	return &Clock{now: BaseTime}
}

// Now returns the current fake time. Pass as cache.Config.Now.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
