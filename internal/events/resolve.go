package events

import "time"

// ResolveStart is emitted before a generated operation resolver runs.
// Context carries the request id.
type ResolveStart struct {
	ObjectType string
	Field      string
	Entity     string
}

// ResolveFinish is emitted after the resolver returns.
type ResolveFinish struct {
	ObjectType string
	Field      string
	Entity     string
	Err        error
	Duration   time.Duration
}
