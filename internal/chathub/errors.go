package chathub

import "errors"

var (
	// ErrEmptyMessage rejects a message body that is empty after trimming.
	ErrEmptyMessage = errors.New("message body is empty")
	// ErrNotBound marks an event from a connection that has not joined yet.
	ErrNotBound = errors.New("connection has not joined")
	// ErrMissingTarget marks an admin-originated message without a conversation id.
	ErrMissingTarget = errors.New("admin message requires a conversation id")
)
