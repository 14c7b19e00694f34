package expreplay

import "errors"

// BufferError implements errors unique to an experience replay buffer.
type BufferError struct {
	Op  string
	Err error
}

// Error satisfies the error interface
func (e *BufferError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

var errEmptyBuffer = errors.New("buffer empty")

var errInsufficientSamples = errors.New("sample size exceeds occupancy")

var errInvalidCapacity = errors.New("capacity must be positive")

// IsEmptyBuffer returns whether or not an error reports that a replay
// buffer is empty.
func IsEmptyBuffer(err error) bool {
	if bufErr, ok := err.(*BufferError); ok {
		err = bufErr.Err
	}
	return err == errEmptyBuffer
}

// IsInsufficientSamples returns whether or not an error reports that a
// sample was requested that exceeds the buffer's current occupancy.
func IsInsufficientSamples(err error) bool {
	if bufErr, ok := err.(*BufferError); ok {
		err = bufErr.Err
	}
	return err == errInsufficientSamples
}
