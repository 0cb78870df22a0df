package dirindex

import (
	"errors"
	"strings"
)

// Error kinds. Every error returned by an Index wraps exactly one of these,
// so callers can branch with errors.Is.
var (
	// ErrConfiguration reports an unusable base directory or option set.
	ErrConfiguration = errors.New("dirindex: configuration error")
	// ErrInvalidID reports an identifier that fails validation. It is always
	// returned before the filesystem is touched.
	ErrInvalidID = errors.New("dirindex: invalid id")
	// ErrStorage reports a failed filesystem operation.
	ErrStorage = errors.New("dirindex: storage error")
)

// Error records a failed index operation. Unwrap exposes both the kind
// (ErrConfiguration, ErrInvalidID or ErrStorage) and the underlying cause.
type Error struct {
	Kind error
	Op   string
	ID   string
	Path string
	Err  error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.Error())
	b.WriteString(": ")
	b.WriteString(e.Op)
	if e.ID != "" {
		b.WriteString(" id=")
		b.WriteString(quote(e.ID))
	}
	if e.Path != "" {
		b.WriteString(" path=")
		b.WriteString(e.Path)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func configError(op, path string, err error) error {
	return &Error{Kind: ErrConfiguration, Op: op, Path: path, Err: err}
}

func invalidID(op, id string, err error) error {
	return &Error{Kind: ErrInvalidID, Op: op, ID: id, Err: err}
}

func storageError(op, id, path string, err error) error {
	return &Error{Kind: ErrStorage, Op: op, ID: id, Path: path, Err: err}
}

// quote keeps control characters in ids from garbling log lines.
func quote(s string) string {
	const limit = 64
	if len(s) > limit {
		s = s[:limit] + "..."
	}
	return strings.ToValidUTF8(`"`+strings.ReplaceAll(s, "\x00", `\x00`)+`"`, "?")
}
