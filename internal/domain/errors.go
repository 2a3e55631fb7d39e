package domain

import "errors"

var (
	// ErrAlreadyVoted signals a Submit for a user who already holds a vote.
	// The operation is a no-op; callers get the current state back.
	ErrAlreadyVoted = errors.New("already voted")

	// ErrNothingToReset signals a Reset for a user without a vote. No-op.
	ErrNothingToReset = errors.New("nothing to reset")

	// ErrTxConflict signals that a watched key changed between watch and
	// exec. The transaction was discarded; nothing was applied. The engine
	// never retries internally; callers decide the retry policy.
	ErrTxConflict = errors.New("transaction conflict")

	// ErrInvalidBucket signals a stored rating or recommendation value
	// outside the known bucket set. Indicates data corruption upstream.
	ErrInvalidBucket = errors.New("invalid bucket")

	// ErrStoreUnavailable signals an I/O failure against the counter
	// store. The operation had no effect.
	ErrStoreUnavailable = errors.New("counter store unavailable")
)
