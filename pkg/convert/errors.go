package convert

import "errors"

var (
	ErrInvalidConfig  = errors.New("convert: invalid configuration")
	ErrInvalidLocale  = errors.New("convert: invalid locale")
	ErrStoreDisabled  = errors.New("convert: export storage is not configured")
	ErrSelfTestFailed = errors.New("convert: format self-test failed")
	ErrEmptyExport    = errors.New("convert: export is empty")
)
