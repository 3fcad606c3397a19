package domain

import "errors"

var (
	ErrBindingNotFound = errors.New("thread binding not found")
	ErrInvalidSession  = errors.New("session id must not be empty")
	ErrRunTimeout      = errors.New("assistant run did not finish in time")
	ErrNoReply         = errors.New("no assistant reply in thread")
)
