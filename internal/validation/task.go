package validation

import (
	"errors"
	"fmt"

	"github.com/iudanet/taskkeeper/internal/models"
)

var (
	// ErrTitleRequired возвращается для задачи без заголовка
	ErrTitleRequired = errors.New("Title is required.")
	// ErrInvalidStatus возвращается для статуса вне допустимого набора
	ErrInvalidStatus = errors.New("Invalid status")
	// ErrInvalidPriority возвращается для приоритета вне допустимого набора
	ErrInvalidPriority = errors.New("Invalid priority")
)

// MaxTitleLen максимальная длина заголовка задачи в символах
const MaxTitleLen = 256

// ValidateTitle проверяет заголовок задачи. Ожидается уже обрезанная строка.
func ValidateTitle(title string) error {
	if title == "" {
		return ErrTitleRequired
	}
	if n := len([]rune(title)); n > MaxTitleLen {
		return fmt.Errorf("Title must not exceed %d characters.", MaxTitleLen)
	}
	return nil
}

// ValidateStatus проверяет, что статус входит в допустимый набор
func ValidateStatus(status string) error {
	if !models.TaskStatus(status).Valid() {
		return ErrInvalidStatus
	}
	return nil
}

// ValidatePriority проверяет, что приоритет входит в допустимый набор
func ValidatePriority(priority string) error {
	if !models.TaskPriority(priority).Valid() {
		return ErrInvalidPriority
	}
	return nil
}
