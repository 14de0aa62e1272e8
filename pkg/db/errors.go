package db

import "errors"

// ErrNotFound is returned when a duty, seat, member or assignment row does not exist
var ErrNotFound = errors.New("not found")
