package supervisor

import "fmt"

// filesMissingError signals that no working directory exists for a server id
// (or a version template is missing its files).
type filesMissingError struct{ id string }

func (e filesMissingError) Error() string { return "server files missing: " + e.id }

// ErrFilesMissing constructs a filesMissingError for the given id.
func ErrFilesMissing(id string) error { return filesMissingError{id: id} }

// IsFilesMissing reports whether err indicates missing server files.
func IsFilesMissing(err error) bool {
	_, ok := err.(filesMissingError)
	return ok
}

// alreadyExistsError signals a create colliding with an existing working directory.
type alreadyExistsError struct{ id string }

func (e alreadyExistsError) Error() string { return "server already exists: " + e.id }

func ErrAlreadyExists(id string) error { return alreadyExistsError{id: id} }

// IsAlreadyExists reports whether err indicates a create collision.
func IsAlreadyExists(err error) bool {
	_, ok := err.(alreadyExistsError)
	return ok
}

// alreadyOnlineError signals a start colliding with a registered instance.
type alreadyOnlineError struct{ id string }

func (e alreadyOnlineError) Error() string { return "server already online: " + e.id }

func ErrAlreadyOnline(id string) error { return alreadyOnlineError{id: id} }

// IsAlreadyOnline reports whether err indicates the server is already running.
func IsAlreadyOnline(err error) bool {
	_, ok := err.(alreadyOnlineError)
	return ok
}

// offlineError signals an operation that requires a registered instance when
// none is found.
type offlineError struct{ id string }

func (e offlineError) Error() string { return "server offline: " + e.id }

func ErrOffline(id string) error { return offlineError{id: id} }

// IsOffline reports whether err indicates the server is not running.
func IsOffline(err error) bool {
	_, ok := err.(offlineError)
	return ok
}

// stillStartingError signals a stop attempted before the instance reached Ready.
type stillStartingError struct{ id string }

func (e stillStartingError) Error() string { return "server still starting: " + e.id }

func ErrStillStarting(id string) error { return stillStartingError{id: id} }

// IsStillStarting reports whether err indicates the readiness handshake has
// not completed yet.
func IsStillStarting(err error) bool {
	_, ok := err.(stillStartingError)
	return ok
}

// processExitedError signals that the liveness probe found the process dead.
type processExitedError struct{ id string }

func (e processExitedError) Error() string { return "server process exited: " + e.id }

func ErrProcessExited(id string) error { return processExitedError{id: id} }

// IsProcessExited reports whether err indicates the underlying process died.
func IsProcessExited(err error) bool {
	_, ok := err.(processExitedError)
	return ok
}

// threadError signals that a required stdin/stdout pipe handle could not be
// obtained from the spawned process.
type threadError struct{ id string }

func (e threadError) Error() string { return "server stdio unavailable: " + e.id }

func ErrThread(id string) error { return threadError{id: id} }

// IsThreadError reports whether err indicates missing stdio handles.
func IsThreadError(err error) bool {
	_, ok := err.(threadError)
	return ok
}

// versionUnknownError signals a create/changeVersion against a version that
// has no template directory.
type versionUnknownError struct{ version string }

func (e versionUnknownError) Error() string { return "unknown version: " + e.version }

func ErrVersionUnknown(version string) error { return versionUnknownError{version: version} }

// IsVersionUnknown reports whether err indicates a missing version template.
func IsVersionUnknown(err error) bool {
	_, ok := err.(versionUnknownError)
	return ok
}

// ioError wraps an underlying filesystem or pipe failure with the operation
// and path that produced it.
type ioError struct {
	op   string
	path string
	err  error
}

func (e ioError) Error() string { return fmt.Sprintf("%s %s: %v", e.op, e.path, e.err) }

func (e ioError) Unwrap() error { return e.err }

// ErrIO wraps err as an io error for the given operation and path.
func ErrIO(op, path string, err error) error { return ioError{op: op, path: path, err: err} }

// IsIOError reports whether err is an underlying filesystem/pipe failure.
func IsIOError(err error) bool {
	_, ok := err.(ioError)
	return ok
}
