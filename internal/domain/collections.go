package domain

// Collections is the set of entity lists a session owns. Values are replaced
// wholesale on every change; slices are never mutated in place once published.
type Collections struct {
	Events    []Event
	Tasks     []Task
	Documents []Document
}
