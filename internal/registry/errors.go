package registry

import "errors"

// Error is a registry failure carrying the numeric result code returned to callers.
type Error struct {
	Code    uint32
	Symbol  string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

var (
	ErrInvalidInput      = &Error{Code: 400, Symbol: "INVALID_INPUT", Message: "invalid input"}
	ErrNotAuthorized     = &Error{Code: 401, Symbol: "NOT_AUTHORIZED", Message: "caller is not the contract owner"}
	ErrUserNotFound      = &Error{Code: 404, Symbol: "USER_NOT_FOUND", Message: "user not found"}
	ErrUserExists        = &Error{Code: 409, Symbol: "USER_EXISTS", Message: "user already exists"}
	ErrAchievementExists = &Error{Code: 409, Symbol: "ACHIEVEMENT_EXISTS", Message: "achievement already awarded"}
)

// AsError extracts the registry error wrapped in err, if any.
func AsError(err error) (*Error, bool) {
	var regErr *Error
	if errors.As(err, &regErr) {
		return regErr, true
	}
	return nil, false
}

// ResultCode returns the numeric code for err, 0 for success and 500 for
// failures that did not originate in the registry.
func ResultCode(err error) uint32 {
	if err == nil {
		return 0
	}
	if regErr, ok := AsError(err); ok {
		return regErr.Code
	}
	return 500
}
