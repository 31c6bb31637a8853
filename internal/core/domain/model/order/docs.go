// Package order provides the entity graph of a marketplace checkout: the Order aggregate
// root, its per-shop SubOrders, CartItems, RefundRequests and DeliveryAssignments.
//
// A checkout spanning one shop is a plain Order that fulfils itself. A checkout spanning
// several shops is a master Order owning one SubOrder per shop; its own status is never
// edited directly and is rolled up from the sub-orders instead.
//
// Both shapes are reached through the Container interface, so consumers never branch on
// IsMaster:
//
//	for _, entry := range o.AllRefundRequests() {
//	    fmt.Println(entry.Container.ShopID(), entry.Index, entry.Request.Status())
//	}
//
// Key business rules:
//   - Order status moves forward along Processing -> Shipped -> Delivered, may be
//     Canceled from Processing or Shipped, and enters the refund branch through refund requests
//   - The refunded quantity of a cart item never exceeds its ordered quantity
//   - A resolved refund request (Rejected or RefundSuccess) is never mutated again
//   - Delivery assignments move pending -> accepted -> completed or pending -> declined
//
// Every mutator validates completely before touching a field, so a returned error always
// leaves the graph as it was.
package order
