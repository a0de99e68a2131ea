package probe

import "errors"

var (
	// ErrUnknownKind indicates a client kind outside Kinds.
	ErrUnknownKind = errors.New("probe: unknown client kind")

	// ErrInvalidSetting indicates a setting that cannot build a client.
	ErrInvalidSetting = errors.New("probe: invalid setting")
)
