package repository

import "errors"

var (
	ErrNotFound = errors.New("документ не найден")
	ErrClosed   = errors.New("хранилище закрыто")
)
