package library

// Error is a constant sentinel error. Wrap it with fmt.Errorf("%w: ...") to
// add context and match it with errors.Is.
type Error string

func (e Error) Error() string {
	return string(e)
}
