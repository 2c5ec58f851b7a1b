// Package common holds sentinel errors shared by the store and session
// layers. Match them with errors.Is.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Session token errors.
	ErrInvalidToken = errors.New("invalid token")
)
