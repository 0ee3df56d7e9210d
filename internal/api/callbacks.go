package api

// Empty is the success payload of operations whose response body is ignored
type Empty struct{}

// Callbacks receive the outcome of one adapter call. Every field is
// optional. OnDone fires exactly once after OnSuccess or OnError.
// OnUnauthorized fires in addition to OnError when the backend rejected
// the session.
type Callbacks[T any] struct {
	OnSuccess      func(T)
	OnError        func(*Error)
	OnDone         func()
	OnUnauthorized func()
}

// dispatch runs call and routes its outcome through cb
func dispatch[T any](c *Client, cb Callbacks[T], call func() (T, error)) {
	defer func() {
		if cb.OnDone != nil {
			cb.OnDone()
		}
	}()

	result, err := call()
	if err != nil {
		apiErr := asError(err)
		if apiErr.Unauthorized() {
			c.unauthorized()
			if cb.OnUnauthorized != nil {
				cb.OnUnauthorized()
			}
		}
		if cb.OnError != nil {
			cb.OnError(apiErr)
		}
		return
	}

	if cb.OnSuccess != nil {
		cb.OnSuccess(result)
	}
}

// Await runs an adapter synchronously and returns its outcome as values.
// It is a convenience for callers that do not need the callback form.
func Await[T any](adapter func(Callbacks[T])) (T, error) {
	var (
		result T
		failed *Error
	)
	adapter(Callbacks[T]{
		OnSuccess: func(v T) { result = v },
		OnError:   func(e *Error) { failed = e },
	})
	if failed != nil {
		return result, failed
	}
	return result, nil
}
