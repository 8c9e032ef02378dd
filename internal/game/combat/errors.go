package combat

import "errors"

var (
	ErrWrongPhase         = errors.New("combat: action not allowed in the current phase")
	ErrNotPlayerTurn      = errors.New("combat: not the player's turn")
	ErrNotEnemyTurn       = errors.New("combat: not an enemy's turn")
	ErrSilenced           = errors.New("combat: silenced")
	ErrRooted             = errors.New("combat: rooted")
	ErrInsufficientMana   = errors.New("combat: insufficient mana")
	ErrInsufficientEnergy = errors.New("combat: insufficient energy")
	ErrInsufficientItems  = errors.New("combat: insufficient items")
	ErrTargetUnavailable  = errors.New("combat: target unavailable")
	ErrUnknownAction      = errors.New("combat: unknown action")
)
