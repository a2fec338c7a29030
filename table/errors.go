package table

import "errors"

var (
	ErrRoundInProgress  = errors.New("round already in progress")
	ErrRoundNotActive   = errors.New("no round awaiting a player action")
	ErrRoundNotComplete = errors.New("round not complete")
	ErrAlreadyDealt     = errors.New("initial cards already dealt")
	ErrRoundAborted     = errors.New("round aborted")
	ErrTableNotFound    = errors.New("table not found")
)
