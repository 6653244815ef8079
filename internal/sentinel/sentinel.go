package sentinel

var _ error = Error("")

// Error is a constant-declarable error value.
type Error string

// Error returns the message.
func (e Error) Error() string {
	return string(e)
}
