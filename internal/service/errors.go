package service

import "fmt"

const (
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeForbidden          = "FORBIDDEN"
	CodeSelfRemoval        = "SELF_REMOVAL"
	CodeAdminProtected     = "ADMIN_PROTECTED"
	CodeNotFound           = "NOT_FOUND"
	CodeUsernameTaken      = "USERNAME_TAKEN"
	CodeInvalidTransition  = "INVALID_TRANSITION"
	CodeNothingToUndo      = "NOTHING_TO_UNDO"
	CodeTaskBusy           = "TASK_BUSY"
	CodeValidation         = "VALIDATION_ERROR"
	CodeAttachmentTooLarge = "ATTACHMENT_TOO_LARGE"
	CodeEnrichmentFailed   = "ENRICHMENT_FAILED"
)

type BusinessError struct {
	Code    string
	Message string
	Details map[string]any
	Err     error
}

type Detail struct {
	Key     string
	Payload any
}

func (b *BusinessError) Error() string {
	if b.Err != nil {
		return fmt.Sprintf("[%s] %s: %s", b.Code, b.Message, b.Err.Error())
	}
	return fmt.Sprintf("[%s] %s", b.Code, b.Message)
}

func (b *BusinessError) Unwrap() error {
	return b.Err
}

// WithErr сохраняет исходную причину, наружу она не отдаётся
func (b *BusinessError) WithErr(err error) *BusinessError {
	b.Err = err
	return b
}

func ToDetail(key string, payload any) Detail {
	return Detail{
		Key:     key,
		Payload: payload,
	}
}

func NewBusinessError(code string, message string, details ...Detail) *BusinessError {
	busErr := &BusinessError{
		Code:    code,
		Message: message,
		Details: make(map[string]any),
	}

	for _, detail := range details {
		busErr.Details[detail.Key] = detail.Payload
	}

	return busErr
}

type Resource string

const (
	ResourceTask       Resource = "Задача"
	ResourceUser       Resource = "Пользователь"
	ResourceSubtask    Resource = "Пункт чеклиста"
	ResourceAttachment Resource = "Вложение"
)

func NewNotFound(resource Resource, id string) *BusinessError {
	return &BusinessError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s %s не найден(а)", resource, id),
		Details: map[string]any{
			"resource": resource,
			"id":       id,
		},
	}
}

func NewValidationError(field, reason string) *BusinessError {
	return &BusinessError{
		Code:    CodeValidation,
		Message: fmt.Sprintf("Неверное значение поля '%s': %s", field, reason),
		Details: map[string]any{
			"field":  field,
			"reason": reason,
		},
	}
}

func NewUsernameTaken(username string) *BusinessError {
	return NewBusinessError(CodeUsernameTaken, "Имя пользователя уже занято", ToDetail("username", username))
}

func NewUnauthorized() *BusinessError {
	return NewBusinessError(CodeUnauthorized, "Требуется вход в систему")
}

func NewEnrichmentFailed(err error) *BusinessError {
	return NewBusinessError(CodeEnrichmentFailed, "Не удалось получить ответ от AI").WithErr(err)
}
