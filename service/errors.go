package service

import "errors"

// Kind classifies a pipeline failure. Every failure leaving the service is
// one of these, carried by *Error, so handlers can map it to a status code
// without string matching.
type Kind string

const (
	KindMissingPayload       Kind = "missing_payload"
	KindPayloadTooLarge      Kind = "payload_too_large"
	KindObjectWriteFailed    Kind = "object_write_failed"
	KindMetadataInsertFailed Kind = "metadata_insert_failed"
	KindMetadataDeleteFailed Kind = "metadata_delete_failed"
	KindFetchFailed          Kind = "fetch_failed"
	KindNotFound             Kind = "not_found"
)

type Error struct {
	Kind   Kind
	Detail string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Detail + ": " + e.Err.Error()
	}
	return e.Detail
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ClientFault reports whether the failure was caused by the caller's input
// rather than a backing store.
func (e *Error) ClientFault() bool {
	switch e.Kind {
	case KindMissingPayload, KindPayloadTooLarge, KindNotFound:
		return true
	}
	return false
}

func newError(kind Kind, detail string, err error) *Error {
	return &Error{Kind: kind, Detail: detail, Err: err}
}

// AsError unwraps err into the service taxonomy.
func AsError(err error) (*Error, bool) {
	var se *Error
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}
