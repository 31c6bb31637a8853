// Package partner provides the DeliveryPartner aggregate: a courier company or person
// that carries containers to customers, bounded by how many active deliveries it
// can hold at once.
//
// Delivery assignments themselves are owned by the order graph; the partner only keeps
// the ids of the containers it is currently working on so that dispatching can pick the
// least loaded partner without scanning every order.
package partner
