package v1

// Errors
const (
	UnknownErrorCode    = 0
	UnknownErrorMessage = "unknown error"

	LoginAlreadyTakenCode           = 1001
	LoginAlreadyTakenMessage        = "login already taken"
	EmailAlreadyTakenCode           = 1002
	EmailAlreadyTakenMessage        = "email already taken"
	ConfirmationCodeNotFoundCode    = 1003
	ConfirmationCodeNotFoundMessage = "confirmation code not found"
	ConfirmationCodeExpiredCode     = 1004
	ConfirmationCodeExpiredMessage  = "confirmation code expired"
	EmailAlreadyConfirmedCode       = 1005
	EmailAlreadyConfirmedMessage    = "email already confirmed"
	UserNotFoundCode                = 1006
	UserNotFoundMessage             = "user not found"
	InvalidRecoveryCodeCode         = 1007
	InvalidRecoveryCodeMessage      = "recovery code is invalid or expired"

	ValidationErrorCode    = 6000
	ValidationErrorMessage = "validation error"
)

type ErrorCode int
type ErrorMessage string

type ErrorStruct struct {
	ErrorCode    `json:"error_code"`
	ErrorMessage `json:"error_message"`
} // @name ErrorStruct

type ValidationErrorStruct struct {
	ErrorCode    int               `json:"error_code"`
	ErrorMessage string            `json:"error_message"`
	Errors       []ValidationError `json:"validation_errors"`
} // @name ValidationErrorStruct

type ValidationError struct {
	FieldKey     string `json:"field_key"`
	ErrorMessage string `json:"error_message"`
}

func getErrorStruct(code ErrorCode) *ErrorStruct {
	errorStruct := &ErrorStruct{
		ErrorCode:    UnknownErrorCode,
		ErrorMessage: UnknownErrorMessage,
	}

	switch code {
	case LoginAlreadyTakenCode:
		errorStruct.ErrorCode = LoginAlreadyTakenCode
		errorStruct.ErrorMessage = LoginAlreadyTakenMessage
	case EmailAlreadyTakenCode:
		errorStruct.ErrorCode = EmailAlreadyTakenCode
		errorStruct.ErrorMessage = EmailAlreadyTakenMessage
	case ConfirmationCodeNotFoundCode:
		errorStruct.ErrorCode = ConfirmationCodeNotFoundCode
		errorStruct.ErrorMessage = ConfirmationCodeNotFoundMessage
	case ConfirmationCodeExpiredCode:
		errorStruct.ErrorCode = ConfirmationCodeExpiredCode
		errorStruct.ErrorMessage = ConfirmationCodeExpiredMessage
	case EmailAlreadyConfirmedCode:
		errorStruct.ErrorCode = EmailAlreadyConfirmedCode
		errorStruct.ErrorMessage = EmailAlreadyConfirmedMessage
	case UserNotFoundCode:
		errorStruct.ErrorCode = UserNotFoundCode
		errorStruct.ErrorMessage = UserNotFoundMessage
	case InvalidRecoveryCodeCode:
		errorStruct.ErrorCode = InvalidRecoveryCodeCode
		errorStruct.ErrorMessage = InvalidRecoveryCodeMessage
	}

	return errorStruct
}
