package service

import (
	"fmt"
)

type ErrResourceNotFound struct {
	error
}

func NewErrResourceNotFound(id uint, resourceType string) *ErrResourceNotFound {
	return &ErrResourceNotFound{fmt.Errorf("%s %d not found", resourceType, id)}
}

func NewErrUploadNotFound(id uint) *ErrResourceNotFound {
	return NewErrResourceNotFound(id, "upload")
}

type ErrInvalidUpload struct {
	error
}

func NewErrInvalidUpload(message string) *ErrInvalidUpload {
	return &ErrInvalidUpload{fmt.Errorf("bad request: %s", message)}
}

type ErrStoreUnavailable struct {
	error
}

func NewErrStoreUnavailable(err error) *ErrStoreUnavailable {
	return &ErrStoreUnavailable{fmt.Errorf("store unavailable: %w", err)}
}
