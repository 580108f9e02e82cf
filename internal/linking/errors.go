package linking

import "errors"

var (
	ErrUnknownSlot    = errors.New("unknown link slot")
	ErrNotLinked      = errors.New("link slot is not linked")
	ErrTargetNotFound = errors.New("link target not found")
	ErrWrongTool      = errors.New("link target has the wrong tool type")
	ErrCrossWorld     = errors.New("link target belongs to another world")
	ErrMalformedRef   = errors.New("malformed link reference")
)
