package apperrors

import (
	"net/http"
)

/*
Фабрики и предопределенные переменные для доменных ошибок.
Репозитории возвращают "сырые" ошибки (gorm.ErrRecordNotFound и т.п.),
сервисы преобразуют их в AppError через эти фабрики.
*/

// ErrNotFound - фабрика для ошибки "не найдено" (404)
func ErrNotFound(err error) *AppError {
	return Wrap(err, CodeNotFound, "resource", "Resource not found", http.StatusNotFound)
}

// ErrAlreadyExists - фабрика для ошибки "уже существует" (409)
func ErrAlreadyExists(err error) *AppError {
	return Wrap(err, CodeAlreadyExists, "resource", "Resource already exists", http.StatusConflict)
}

// ErrConflict - общая фабрика для конфликтов (409)
func ErrConflict(err error, domain, message string) *AppError {
	return Wrap(err, CodeConflict, domain, message, http.StatusConflict)
}

// ErrInvalidTransition - фабрика для недопустимых переходов статусов (409)
func ErrInvalidTransition(domain, message string) *AppError {
	return New(CodeInvalidTransition, domain, message, http.StatusConflict)
}

// ErrInvalidOperation - фабрика для невалидных операций (400)
func ErrInvalidOperation(domain, message string) *AppError {
	return New(CodeInvalidOperation, domain, message, http.StatusBadRequest)
}

// --- Auth & Users ---

var ErrInvalidUserRole = New(
	CodeInvalidOperation,
	"business_logic",
	"Invalid user role for this operation",
	http.StatusBadRequest,
)

var ErrWeakPassword = New(
	CodeValidationFailed,
	"validation",
	"Password is too weak. Minimum 6 characters required.",
	http.StatusBadRequest,
)

var ErrEmailAlreadyExists = New(
	CodeAlreadyExists,
	"auth",
	"Email already in use",
	http.StatusConflict,
)

var ErrInvalidCredentials = New(
	CodeInvalidCredentials,
	"auth",
	"Invalid email or password",
	http.StatusUnauthorized,
)

var ErrInvalidToken = New(
	CodeInvalidToken,
	"auth",
	"Invalid or expired token",
	http.StatusUnauthorized,
)

// --- Chat ---

// ErrThreadNotFound - тред не найден.
var ErrThreadNotFound = New(
	CodeNotFound,
	"chat",
	"Chat thread not found",
	http.StatusNotFound,
)

// ErrThreadAccessDenied - пользователь не является участником треда.
var ErrThreadAccessDenied = New(
	CodeForbidden,
	"chat",
	"Access to chat thread denied",
	http.StatusForbidden,
)

// ErrMessageNotFound - сообщение не найдено.
var ErrMessageNotFound = New(
	CodeNotFound,
	"chat",
	"Message not found",
	http.StatusNotFound,
)

// ErrInvalidMessageKind - неверный тип сообщения.
var ErrInvalidMessageKind = New(
	CodeValidationFailed,
	"validation",
	"Invalid message kind",
	http.StatusBadRequest,
)

// ErrAttachmentRequired - для IMAGE/FILE сообщений вложение обязательно.
var ErrAttachmentRequired = New(
	CodeValidationFailed,
	"validation",
	"Message kind requires an attachment",
	http.StatusBadRequest,
)

// ErrMalformedProposal - содержимое INTERVIEW_REQUEST не парсится как приглашение.
var ErrMalformedProposal = New(
	CodeValidationFailed,
	"interview",
	"Interview request payload is malformed",
	http.StatusBadRequest,
)

// ErrDeliveryStatusRegression - попытка отката delivery-статуса назад.
var ErrDeliveryStatusRegression = New(
	CodeInvalidTransition,
	"chat",
	"Delivery status can only move forward",
	http.StatusConflict,
)

// --- Interview ---

// ErrProposalTerminal - приглашение уже принято или отклонено.
var ErrProposalTerminal = New(
	CodeInvalidTransition,
	"interview",
	"Interview proposal has already been resolved",
	http.StatusConflict,
)

// ErrProposalActorForbidden - только соискатель может принять/отклонить приглашение.
var ErrProposalActorForbidden = New(
	CodeForbidden,
	"interview",
	"Only the applicant may accept or decline an interview proposal",
	http.StatusForbidden,
)

// --- Jobs & Applications ---

var ErrJobNotFound = New(
	CodeNotFound,
	"job",
	"Job not found",
	http.StatusNotFound,
)

var ErrApplicationNotFound = New(
	CodeNotFound,
	"application",
	"Job application not found",
	http.StatusNotFound,
)

var ErrAlreadyApplied = New(
	CodeAlreadyExists,
	"application",
	"You have already applied to this job",
	http.StatusConflict,
)

// --- Uploads & Files ---

var ErrFileTooLarge = New(
	CodeLimitExceeded,
	"validation",
	"File size exceeds the allowed limit",
	http.StatusRequestEntityTooLarge,
)

var ErrInvalidFileType = New(
	CodeValidationFailed,
	"validation",
	"The provided file type is not allowed",
	http.StatusUnsupportedMediaType,
)

var ErrFileMissing = New(
	CodeValidationFailed,
	"validation",
	"Multipart form must contain a single 'file' field",
	http.StatusBadRequest,
)
