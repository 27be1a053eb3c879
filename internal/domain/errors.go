package domain

import "errors"

// Sentinel errors returned by the lifecycle engine, policy and stores.
// Callers match with errors.Is; messages carry context via %w wrapping.
var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrImmutable         = errors.New("immutable")
	ErrOutOfRange        = errors.New("out of range")
	ErrDuplicateEmail    = errors.New("duplicate email")
	ErrAlreadyMember     = errors.New("already a member")
	ErrForbidden         = errors.New("forbidden")
	ErrInvalidInput      = errors.New("invalid input")
	ErrStaleVersion      = errors.New("stale version")
	ErrUnavailable       = errors.New("unavailable")
)

var kinds = []struct {
	err  error
	code string
}{
	{ErrNotFound, "not_found"},
	{ErrInvalidTransition, "invalid_transition"},
	{ErrImmutable, "immutable"},
	{ErrOutOfRange, "out_of_range"},
	{ErrDuplicateEmail, "duplicate_email"},
	{ErrAlreadyMember, "already_member"},
	{ErrForbidden, "forbidden"},
	{ErrInvalidInput, "invalid_input"},
	{ErrStaleVersion, "stale_version"},
	{ErrUnavailable, "unavailable"},
}

// Kind returns a stable machine-readable code for err, "internal" for
// anything that is not one of the sentinels above and "" for nil.
func Kind(err error) string {
	if err == nil {
		return ""
	}
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.code
		}
	}
	return "internal"
}
