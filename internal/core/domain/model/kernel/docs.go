// Package kernel provides the value objects shared by every aggregate of the marketplace
// order domain.
//
// The package includes:
//   - UUID: identifier for orders, sub-orders, cart items, shops and actors
//   - Actor: the role tagged identity of whoever asks for a change (Admin, Seller,
//     Delivery partner or Customer)
//   - ShippingAddress: the opaque destination of an order
//
// Values are immutable once constructed and safe for concurrent use.
package kernel
