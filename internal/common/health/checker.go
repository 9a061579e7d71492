package health

// Checker reports whether a component is able to serve requests.
type Checker interface {
	Check() error
}

// CheckerFunc adapts a plain function to Checker.
type CheckerFunc func() error

func (f CheckerFunc) Check() error {
	return f()
}
