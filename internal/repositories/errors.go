package repositories

import (
	"errors"

	"gorm.io/gorm"
)

var (
	ErrNotFound          = errors.New("record not found")
	ErrDuplicateKey      = errors.New("duplicate key")
	ErrMediaUploadFailed = errors.New("media upload failed")
	ErrMediaDeleteFailed = errors.New("media delete failed")
	ErrInvalidSignature  = errors.New("invalid webhook signature")
	ErrPaymentProvider   = errors.New("payment provider error")
)

// IsDuplicateKeyError reports whether err is a unique constraint violation.
// The connection must be opened with gorm's TranslateError.
func IsDuplicateKeyError(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey) || errors.Is(err, ErrDuplicateKey)
}

// IsNotFoundError reports whether err means the row does not exist.
func IsNotFoundError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, ErrNotFound)
}
