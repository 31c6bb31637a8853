package order

// SubOrder is the part of a master order fulfilled by one shop. It has no lifecycle of
// its own outside its parent Order.
type SubOrder struct {
	fulfilment
}

var _ Container = (*SubOrder)(nil)

// RestoreSubOrder rebuilds a sub-order from storage.
func RestoreSubOrder(state ContainerState) *SubOrder {
	return &SubOrder{fulfilment: restoreFulfilment(state)}
}
