package manager

// modelNotFoundError indicates a requested model id is absent from the registry.
type modelNotFoundError struct{ id string }

func (e modelNotFoundError) Error() string { return "model not found: " + e.id }

// ErrModelNotFound constructs a modelNotFoundError.
func ErrModelNotFound(id string) error { return modelNotFoundError{id: id} }

// IsModelNotFound reports whether the error indicates a missing model id.
func IsModelNotFound(err error) bool {
	_, ok := err.(modelNotFoundError)
	return ok
}

// adapterNotFoundError indicates a requested adapter id is absent from the registry.
type adapterNotFoundError struct{ id string }

func (e adapterNotFoundError) Error() string { return "adapter not found: " + e.id }

// ErrAdapterNotFound constructs an adapterNotFoundError.
func ErrAdapterNotFound(id string) error { return adapterNotFoundError{id: id} }

// IsAdapterNotFound reports whether the error indicates a missing adapter id.
func IsAdapterNotFound(err error) bool {
	_, ok := err.(adapterNotFoundError)
	return ok
}

// instanceNotFoundError indicates an unload targeted an unknown instance.
type instanceNotFoundError struct{ id string }

func (e instanceNotFoundError) Error() string { return "instance not found: " + e.id }

// ErrInstanceNotFound constructs an instanceNotFoundError.
func ErrInstanceNotFound(id string) error { return instanceNotFoundError{id: id} }

// IsInstanceNotFound reports whether the error indicates a missing instance id.
func IsInstanceNotFound(err error) bool {
	_, ok := err.(instanceNotFoundError)
	return ok
}

// tooBusyError signals that a build is already in flight (409 mapping).
type tooBusyError struct{ modelID string }

func (e tooBusyError) Error() string { return "build already in progress: " + e.modelID }

// IsTooBusy reports whether err indicates build backpressure.
func IsTooBusy(err error) bool {
	_, ok := err.(tooBusyError)
	return ok
}
