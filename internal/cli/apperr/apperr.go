// Package apperr описывает ошибки клиента bugreporter.
//
// Каждая ошибка несёт точный Code и относится ровно к одному виду
// (ErrNetwork, ErrAuthentication, ErrServer, ErrParse, ErrPrecondition, ErrStorage),
// поэтому вызывающий код проверяет вид через errors.Is.
package apperr

import (
	"errors"
	"fmt"
)

// Code — точный код ошибки.
type Code int

const (
	// Unknown — неизвестная ошибка.
	Unknown Code = iota
	// ConnectionLost — соединение с сервером потеряно.
	ConnectionLost
	// InvalidResponse — ответ сервера не удалось разобрать.
	InvalidResponse
	// TimedOut — истёк таймаут запроса.
	TimedOut
	// RequestConflict — запрос вытеснен конфликтующим запросом.
	RequestConflict
	// AuthenticationFailed — аутентификация не удалась.
	AuthenticationFailed
	// AuthenticationRequired — нужна аутентификация, но учётные данные не заданы.
	AuthenticationRequired
	// PermissionDenied — нет доступа к ресурсу.
	PermissionDenied
	// InvalidRequest — некорректные аргументы запроса.
	InvalidRequest
	// ResourceNotFound — ресурс не найден.
	ResourceNotFound
	// NetworkUnavailable — сеть недоступна.
	NetworkUnavailable
	// RequestCancelled — запрос отменён.
	RequestCancelled
	// StorageFailure — ошибка локального хранилища.
	StorageFailure
)

var codeNames = map[Code]string{
	Unknown:                "unknown",
	ConnectionLost:         "connection lost",
	InvalidResponse:        "invalid response",
	TimedOut:               "timed out",
	RequestConflict:        "request conflict",
	AuthenticationFailed:   "authentication failed",
	AuthenticationRequired: "authentication required",
	PermissionDenied:       "permission denied",
	InvalidRequest:         "invalid request",
	ResourceNotFound:       "resource not found",
	NetworkUnavailable:     "network unavailable",
	RequestCancelled:       "request cancelled",
	StorageFailure:         "storage failure",
}

func (c Code) String() string {
	if s, ok := codeNames[c]; ok {
		return s
	}
	return fmt.Sprintf("code(%d)", int(c))
}

// Виды ошибок.
var (
	ErrNetwork        = errors.New("network error")
	ErrAuthentication = errors.New("authentication error")
	ErrServer         = errors.New("server error")
	ErrParse          = errors.New("parse error")
	ErrPrecondition   = errors.New("precondition error")
	ErrStorage        = errors.New("storage error")
)

// Kind возвращает вид ошибки для кода.
func (c Code) Kind() error {
	switch c {
	case ConnectionLost, TimedOut, NetworkUnavailable, RequestCancelled:
		return ErrNetwork
	case AuthenticationFailed, PermissionDenied:
		return ErrAuthentication
	case InvalidResponse:
		return ErrParse
	case AuthenticationRequired, InvalidRequest:
		return ErrPrecondition
	case StorageFailure:
		return ErrStorage
	default:
		// Unknown, RequestConflict, ResourceNotFound
		return ErrServer
	}
}

// Error — ошибка клиента с кодом, операцией и причиной.
type Error struct {
	Code Code
	Op   string
	// Status — HTTP-статус ответа, если он был.
	Status int
	Err    error
}

func (e *Error) Error() string {
	msg := e.Code.String()
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Status != 0 {
		msg += fmt.Sprintf(" (status %d)", e.Status)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is сопоставляет ошибку с её видом.
func (e *Error) Is(target error) bool {
	return target == e.Code.Kind()
}

// New создаёт ошибку с кодом.
func New(op string, code Code, err error) *Error {
	return &Error{Code: code, Op: op, Err: err}
}

// WithStatus создаёт ошибку с кодом и HTTP-статусом.
func WithStatus(op string, code Code, status int, err error) *Error {
	return &Error{Code: code, Op: op, Status: status, Err: err}
}

// CodeOf возвращает Code первой *Error в цепочке или Unknown.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return Unknown
}
