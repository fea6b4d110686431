package events

import "time"

// AugmentStart is emitted before a schema is augmented.
type AugmentStart struct {
	Types int
}

// AugmentFinish is emitted after augmentation, successful or not.
type AugmentFinish struct {
	Entities   int
	Operations int
	Err        error
	Duration   time.Duration
}
