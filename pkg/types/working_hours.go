package types

// WorkingHours holds a store's opening window as display strings ("09:00").
type WorkingHours struct {
	Open  string `json:"open"`
	Close string `json:"close"`
}
