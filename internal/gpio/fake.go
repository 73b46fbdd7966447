package gpio

// FakeDriver is a test double that records indicator states.
type FakeDriver struct {
	// States contains every value passed to Set, in order.
	States []bool

	// Closed tracks if Close was called.
	Closed bool

	// SetError, if set, will be returned by Set.
	SetError error
}

// NewFakeDriver creates a FakeDriver for testing.
func NewFakeDriver() *FakeDriver {
	return &FakeDriver{}
}

// Set records the indicator state.
func (f *FakeDriver) Set(open bool) error {
	if f.SetError != nil {
		return f.SetError
	}
	f.States = append(f.States, open)
	return nil
}

// Close marks the driver as closed.
func (f *FakeDriver) Close() error {
	f.Closed = true
	return nil
}

// Last returns the most recent indicator state, or false when Set was never
// called.
func (f *FakeDriver) Last() bool {
	if len(f.States) == 0 {
		return false
	}
	return f.States[len(f.States)-1]
}

// Reset clears recorded states.
func (f *FakeDriver) Reset() {
	f.States = nil
	f.Closed = false
	f.SetError = nil
}
