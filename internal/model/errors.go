package model

import "errors"

// Error taxonomy shared by the store, the service and the surfaces.
var (
	// ErrBackingStoreUnavailable means the table could not be read or written.
	ErrBackingStoreUnavailable = errors.New("backing store unavailable")
	// ErrUploadFailed means the photo could not be handed to the upload collaborator.
	ErrUploadFailed = errors.New("photo upload failed")
	// ErrValidation means a required field was missing or invalid.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound means a referenced entity does not exist.
	ErrNotFound = errors.New("not found")
)
