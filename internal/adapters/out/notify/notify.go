// Package notify holds the outbound collaborators that only report what happened:
// a notifier writing order events to the log and a stock adjuster that records
// restocks until an inventory service is wired in.
package notify

import (
	"context"
	"sync"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/ports"

	"go.uber.org/zap"
)

// LogNotifier writes every event as one structured log line.
type LogNotifier struct {
	lg *zap.Logger
}

func NewLogNotifier(lg *zap.Logger) *LogNotifier {
	return &LogNotifier{lg: lg.Named("notify")}
}

func (n *LogNotifier) Notify(_ context.Context, event ports.Event) error {
	fields := []zap.Field{
		zap.String("kind", string(event.Kind)),
		zap.Stringer("order_id", event.OrderID),
		zap.String("actor", event.Actor),
		zap.String("state", event.State),
		zap.Time("at", event.At),
	}
	if !event.ContainerID.IsZero() {
		fields = append(fields, zap.Stringer("container_id", event.ContainerID))
	}

	n.lg.Info("Order event", fields...)
	return nil
}

// LedgerStock accumulates restocked quantities per product in memory.
type LedgerStock struct {
	lg *zap.Logger

	mu       sync.Mutex
	restocks map[kernel.UUID]int
}

func NewLedgerStock(lg *zap.Logger) *LedgerStock {
	return &LedgerStock{
		lg:       lg.Named("stock"),
		restocks: make(map[kernel.UUID]int),
	}
}

func (s *LedgerStock) Restock(_ context.Context, productID kernel.UUID, qty int) error {
	s.mu.Lock()
	s.restocks[productID] += qty
	total := s.restocks[productID]
	s.mu.Unlock()

	s.lg.Info("Restocked",
		zap.Stringer("product_id", productID),
		zap.Int("qty", qty),
		zap.Int("total", total),
	)
	return nil
}

// Restocked returns how many units of productID were returned so far.
func (s *LedgerStock) Restocked(productID kernel.UUID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.restocks[productID]
}
