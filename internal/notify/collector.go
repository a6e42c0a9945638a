package notify

import (
	"context"
	"sync"
)

type collectorKey struct{}

// Collector gathers the notifications raised while serving one request so
// they can be returned with the response.
type Collector struct {
	mu    sync.Mutex
	items []Notification
}

// NewCollectorContext returns ctx carrying a fresh collector.
func NewCollectorContext(ctx context.Context) (context.Context, *Collector) {
	c := &Collector{}
	return context.WithValue(ctx, collectorKey{}, c), c
}

// CollectorFromContext returns the request collector, or nil.
func CollectorFromContext(ctx context.Context) *Collector {
	c, _ := ctx.Value(collectorKey{}).(*Collector)
	return c
}

// Add records n.
func (c *Collector) Add(n Notification) {
	c.mu.Lock()
	c.items = append(c.items, n)
	c.mu.Unlock()
}

// Items returns the collected notifications in the order raised.
func (c *Collector) Items() []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Notification, len(c.items))
	copy(out, c.items)
	return out
}

// ContextCollector is a Notifier that appends to whichever Collector the
// context carries and ignores contexts without one.
type ContextCollector struct{}

// Notify adds n to the request collector, if any.
func (ContextCollector) Notify(ctx context.Context, n Notification) {
	if c := CollectorFromContext(ctx); c != nil {
		c.Add(n)
	}
}
