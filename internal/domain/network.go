package domain

// Network is the scoping context for a transfer run. Each network owns one
// or more facilities; patients and teams outside the resolved network are
// never considered.
type Network struct {
	ID      string
	Name    string
	Acronym string
}
