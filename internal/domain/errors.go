package domain

import "errors"

var (
	// ErrStorageUnavailable: хранилище недоступно (не сконфигурировано или не отвечает).
	ErrStorageUnavailable = errors.New("storage unavailable")
	// ErrParseFailure: сохранённый текст не является корректным JSON-массивом.
	ErrParseFailure = errors.New("stored data parse failure")
	// ErrWriteFailure: запись в хранилище не удалась (квота, сериализация, сбой backend).
	ErrWriteFailure = errors.New("storage write failure")
	// ErrQuotaExceeded: превышен лимит объёма хранилища.
	ErrQuotaExceeded = errors.New("storage quota exceeded")

	// ErrValidation оборачивает все ошибки проверки пользовательского ввода.
	ErrValidation = errors.New("validation failed")
	// Ошибка отсутствующего имени в обращении.
	ErrNameRequired = errors.New("name is required")
	// Ошибка отсутствующего email.
	ErrEmailRequired = errors.New("email is required")
	// Ошибка некорректного формата email.
	ErrEmailInvalid = errors.New("email is invalid")
	// Ошибка отсутствующего текста обращения.
	ErrMessageRequired = errors.New("message is required")
	// Ошибка отсутствующего названия книги.
	ErrTitleRequired = errors.New("title is required")
	// Ошибка при некорректном количестве (<= 0).
	ErrQuantityInvalid = errors.New("quantity must be greater than zero")
	// Ошибка повторяющегося названия в корзине.
	ErrDuplicateLine = errors.New("cart contains duplicate title")

	// ErrDuplicateSubscription: email уже подписан на рассылку.
	ErrDuplicateSubscription = errors.New("email already subscribed")
	// ErrEmptyCart: попытка оформить заказ из пустой корзины.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrCartAlreadyEmpty: очистка уже пустой корзины.
	ErrCartAlreadyEmpty = errors.New("cart is already empty")
)

// IsValidation проверяет, относится ли ошибка к ошибкам ввода.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}
