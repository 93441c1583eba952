package model

import "errors"

var (
	ErrTokenInvalid  = errors.New("operator token invalid")
	ErrTokenMismatch = errors.New("operator token type mismatch")
)
