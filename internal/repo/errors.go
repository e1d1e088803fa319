package repo

import (
	"errors"
	"fmt"
	"regexp"
)

// Ошибки DashboardRepo.
var (
	// ErrNotFound — дашборд или версия не найдены.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists — версия с таким номером уже есть (параллельная публикация).
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidName — имя дашборда не подходит для хранения и ссылок db:<имя>.
	ErrInvalidName = errors.New("invalid dashboard name")
)

var namePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9._-]{0,63}$`)

// ValidateName проверяет имя дашборда: строчные буквы, цифры, '.', '_', '-',
// не длиннее 64 символов.
func ValidateName(name string) error {
	if !namePattern.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}
