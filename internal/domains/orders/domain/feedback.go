package domain

// Feedback is the free text a claimant sends back to the owner. Order is nil
// when the referenced order is not in the store.
type Feedback struct {
	OrderID ID
	Author  string
	Text    string
	Order   *Order
}
