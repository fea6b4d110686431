package events

import "time"

// StoreStart is emitted before a collection call. Call is unique per
// collection call; the context carries the call ID of the enclosing resolver.
type StoreStart struct {
	Call       string
	Collection string
	Method     string
}

// StoreFinish is emitted after a collection call completes.
type StoreFinish struct {
	Call       string
	Collection string
	Method     string
	// Documents is the number of documents returned or affected.
	Documents int64
	Err       error
	Duration  time.Duration
}
