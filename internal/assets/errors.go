package assets

import "errors"

var (
	// ErrInvalidUpload indicates upload bytes failed validation.
	ErrInvalidUpload = errors.New("invalid image upload")
	// ErrStorageIO indicates the backing blob store failed.
	ErrStorageIO = errors.New("asset storage failure")
	// ErrNotFound indicates no asset exists for a reference.
	ErrNotFound = errors.New("asset not found")
)
