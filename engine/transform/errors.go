package transform

// Kind enumerates the transform-layer error taxonomy from:
// input-structural, semantic, capability, and resource errors. Every
// deeper transform call returns one of these once TransformCtx's error
// slot is set; no error is silently swallowed.
type Kind int

const (
	KindUnsupportedClause Kind = iota
	KindUnsupportedFunction
	KindUnknownVariable
	KindUnboundVariable
	KindInvalidArgument
	KindNotImplemented
	KindOutOfMemory
)

func (k Kind) String() string {
	switch k {
	case KindUnsupportedClause:
		return "UnsupportedClause"
	case KindUnsupportedFunction:
		return "UnsupportedFunction"
	case KindUnknownVariable:
		return "UnknownVariable"
	case KindUnboundVariable:
		return "UnboundVariable"
	case KindInvalidArgument:
		return "InvalidArgument"
	case KindNotImplemented:
		return "NotImplemented"
	case KindOutOfMemory:
		return "OutOfMemory"
	default:
		return "Unknown"
	}
}

// Error carries a taxonomy Kind plus a human-readable message, the
// shape "Error surface" describes.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return e.Kind.String() + ": " + e.Message }

func errUnsupportedClause(msg string) *Error  { return &Error{Kind: KindUnsupportedClause, Message: msg} }
func errUnsupportedFunction(msg string) *Error {
	return &Error{Kind: KindUnsupportedFunction, Message: msg}
}
func errUnknownVariable(msg string) *Error { return &Error{Kind: KindUnknownVariable, Message: msg} }
func errUnboundVariable(msg string) *Error { return &Error{Kind: KindUnboundVariable, Message: msg} }
func errInvalidArgument(msg string) *Error { return &Error{Kind: KindInvalidArgument, Message: msg} }
func errNotImplemented(msg string) *Error  { return &Error{Kind: KindNotImplemented, Message: msg} }
