package game

import "errors"

var ErrTooFewPlayers = errors.New("need at least two players")
var ErrDuplicatePlayer = errors.New("player id already in game")
var ErrElementFilled = errors.New("story element already filled")
var ErrEmptyText = errors.New("empty text")
var ErrWrongState = errors.New("action not valid in current state")
var ErrWrongRound = errors.New("submission does not match round kind")
var ErrNotCreator = errors.New("only the creator can start the game")
