package normalizer

// ValidationError reports a raw payload that cannot be normalized because a
// required field is absent under every known alias, or fails to parse.
// It is local to one payload: callers ingesting a batch log it and move on.
type ValidationError struct {
	Field  string // offending concept: "amount", "date", "source_id", ...
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

var (
	errMissingAmount = &ValidationError{Field: "amount", Reason: "missing amount"}
	errMissingDate   = &ValidationError{Field: "date", Reason: "missing date"}
	errInvalidDate   = &ValidationError{Field: "date", Reason: "invalid date"}
	errMissingID     = &ValidationError{Field: "source_id", Reason: "missing source id"}
)

func errMalformed(source string) *ValidationError {
	return &ValidationError{Field: "payload", Reason: "malformed " + source + " payload"}
}
