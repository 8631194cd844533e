package services

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Notifier surfaces a user-visible message, such as the terminal catalog
// failure.
type Notifier interface {
	Notify(ctx context.Context, message string)
}

// BusyIndicator is the loading indicator shown while the catalog loads.
type BusyIndicator interface {
	Show()
	Hide()
}

// LogNotifier reports notifications through the logger and keeps the most
// recent one so the HTTP layer can hand it to the shopper.
type LogNotifier struct {
	logger *zap.Logger
	mu     sync.RWMutex
	last   string
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(_ context.Context, message string) {
	n.mu.Lock()
	n.last = message
	n.mu.Unlock()
	n.logger.Warn("User notification", zap.String("message", message))
}

// Last returns the most recent notification, or "" if there was none.
func (n *LogNotifier) Last() string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.last
}

// BusyState is a BusyIndicator that just records whether a load is running.
// Overlapping loads are counted so the indicator only goes idle after the
// last one hides it.
type BusyState struct {
	mu    sync.Mutex
	depth int
}

func (b *BusyState) Show() {
	b.mu.Lock()
	b.depth++
	b.mu.Unlock()
}

func (b *BusyState) Hide() {
	b.mu.Lock()
	if b.depth > 0 {
		b.depth--
	}
	b.mu.Unlock()
}

func (b *BusyState) Busy() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.depth > 0
}
