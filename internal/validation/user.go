package validation

import (
	"errors"
	"strings"
)

// MaxPasswordBytes предел длины пароля для bcrypt
const MaxPasswordBytes = 72

var (
	// ErrRegistrationFieldsRequired возвращается, если при регистрации не заполнено имя, email или пароль
	ErrRegistrationFieldsRequired = errors.New("Name, email and password are required.")
	// ErrCredentialsRequired возвращается, если при входе не передан email или пароль
	ErrCredentialsRequired = errors.New("Email and password required.")
	// ErrPasswordTooLong возвращается, если пароль длиннее MaxPasswordBytes байт
	ErrPasswordTooLong = errors.New("Password must be at most 72 bytes.")
)

// ValidateRegistration проверяет, что все поля регистрации заполнены.
// Имя и email считаются пустыми, если состоят только из пробелов.
// Пароль не триммится: пробелы в пароле значимы.
// Длина пароля считается в байтах, не в символах.
func ValidateRegistration(name, email, password string) error {
	if isBlank(name) || isBlank(email) || password == "" {
		return ErrRegistrationFieldsRequired
	}
	if len(password) > MaxPasswordBytes {
		return ErrPasswordTooLong
	}
	return nil
}

// ValidateCredentials проверяет наличие email и пароля при входе
func ValidateCredentials(email, password string) error {
	if isBlank(email) || password == "" {
		return ErrCredentialsRequired
	}
	return nil
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
