// Package apperror: ошибки, общие для сервисов и HTTP-слоя. Клиент видит
// только *Error: Kind задаёт HTTP-статус, Message уходит в ответ.
// Обёрнутая причина пишется в лог и наружу не отдаётся.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind uint8

const (
	KindInternal Kind = iota
	KindValidation
	KindAuth
	KindPermission
	KindNotFound
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuth:
		return "auth"
	case KindPermission:
		return "permission"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	default:
		return "internal"
	}
}

// HTTPStatus: код ответа для вида ошибки. Конфликты бизнес-правил
// отдаются как 400, так сложилось в публичном API.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindValidation, KindConflict:
		return http.StatusBadRequest
	case KindAuth:
		return http.StatusUnauthorized
	case KindPermission:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func New(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is сравнивает по Code: sentinel совпадает и с копией, у которой есть
// причина или своё сообщение.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// Wrap возвращает копию e с причиной cause.
func (e *Error) Wrap(cause error) *Error {
	cp := *e
	cp.Err = cause
	return &cp
}

// WithMessage возвращает копию e с другим публичным сообщением.
func (e *Error) WithMessage(msg string) *Error {
	cp := *e
	cp.Message = msg
	return &cp
}

var (
	ErrBadRequest = New(KindValidation, "bad_request", "bad request")
	ErrInternal   = New(KindInternal, "internal", "internal server error")
)

func BadRequest(msg string) *Error { return ErrBadRequest.WithMessage(msg) }

// Internal прячет причину за общим сообщением 500.
func Internal(cause error) *Error { return ErrInternal.Wrap(cause) }

// From приводит err к *Error; всё неизвестное считается внутренней ошибкой.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	return Internal(err)
}

func KindOf(err error) Kind {
	return From(err).Kind
}
