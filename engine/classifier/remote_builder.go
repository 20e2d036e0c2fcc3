package classifier

import "time"

// RemoteBuilderOption is a functional option for configuring the remote classifier.
type RemoteBuilderOption func(*remote)

// WithTimeout sets the maximum wait for any single reply from the service.
//
// Parameters:
//   - d: reply timeout
//
// Returns:
//   - RemoteBuilderOption: option function to apply
func WithTimeout(d time.Duration) RemoteBuilderOption {
	return func(r *remote) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithSession overrides the generated session id sent in the hello message.
//
// Parameters:
//   - id: the session id
//
// Returns:
//   - RemoteBuilderOption: option function to apply
func WithSession(id string) RemoteBuilderOption {
	return func(r *remote) {
		if id != "" {
			r.session = id
		}
	}
}
