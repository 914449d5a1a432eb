package tabshot

import "errors"

// Sentinel errors returned by the library. Failures from collaborators are
// wrapped so callers can match the kind with [errors.Is].
var (
	// ErrClosed is returned when attempting to use a closed browser.
	ErrClosed = errors.New("tabshot: browser is closed")

	// ErrCaptureFailed wraps any failure of the host tab capture, such as
	// a crashed tab or a capture that did not finish before its deadline.
	ErrCaptureFailed = errors.New("tabshot: capture failed")

	// ErrPersistenceFailed wraps a rejected storage write or an unreadable
	// snapshot. The in-memory list stays authoritative when it is returned.
	ErrPersistenceFailed = errors.New("tabshot: persistence failed")

	// ErrExportFailed wraps a rendering or output error during PDF export.
	ErrExportFailed = errors.New("tabshot: export failed")

	ErrIndexOutOfRange = errors.New("tabshot: index out of range")
	ErrEmptyBoard      = errors.New("tabshot: board is empty")
	ErrInvalidDataURL  = errors.New("tabshot: invalid image data URL")
	ErrNoCapturer      = errors.New("tabshot: no capturer configured")
	ErrNoExporter      = errors.New("tabshot: no exporter configured")
)
