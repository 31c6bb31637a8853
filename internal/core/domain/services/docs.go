// Package services provides the domain services of the marketplace order lifecycle.
// They work on an order graph loaded by the caller and never perform I/O.
//
// The package includes:
//   - StatusAggregator: derives the display status and refund badge of an order for a viewer
//   - TransitionAuthority: role gated order status and delivery transitions
//   - RefundReconciler: refund requests and refund decisions with quantity guarantees
//   - DeliveryDispatcher: assigns the least loaded delivery partner to shipped containers
//
// Every service validates fully before mutating, so an error leaves the graph untouched
// and the caller simply does not persist it.
package services
