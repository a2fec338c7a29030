package sim

import "errors"

// ErrIllegalAction is returned for unknown actions and for splitting anything but a pair
var ErrIllegalAction = errors.New("illegal action")
