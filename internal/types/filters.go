package types

// DateRange filters log queries by inclusive YYYY-MM-DD bounds. Empty bounds
// are open.
type DateRange struct {
	From string `query:"from"`
	To   string `query:"to"`
}
