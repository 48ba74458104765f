package usecase

import (
	"errors"
	"fmt"
)

// 呼び出し側（handler）がステータスに変換する
type ErrorKind string

const (
	KindUnauthenticated     ErrorKind = "UNAUTHENTICATED"
	KindInvalidInput        ErrorKind = "INVALID_INPUT"
	KindNotFound            ErrorKind = "NOT_FOUND"
	KindInvalidPickupWindow ErrorKind = "INVALID_PICKUP_WINDOW"
	KindEmptyCart           ErrorKind = "EMPTY_CART"
	KindCommitInProgress    ErrorKind = "COMMIT_IN_PROGRESS"
	KindStorageFailure      ErrorKind = "STORAGE_FAILURE"
	//補償も失敗（注文ヘッダが残っている）
	KindCompensationFailure ErrorKind = "COMPENSATION_FAILURE"
)

// 利用者に見せるメッセージ
const msgPlaceOrderFailed = "failed to place order"

type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func NewError(kind ErrorKind, message string) error {
	return &Error{
		Kind:    kind,
		Message: message,
	}
}

func wrapError(kind ErrorKind, message string, err error) error {
	return &Error{
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

func AsError(err error) (*Error, bool) {
	var ue *Error
	ok := errors.As(err, &ue)
	return ue, ok
}

// usecaseのエラーでなければ空文字
func KindOf(err error) ErrorKind {
	if ue, ok := AsError(err); ok {
		return ue.Kind
	}
	return ""
}
