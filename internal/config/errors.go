package config

import "errors"

// Ошибки загрузки конфигурации.
var (
	// ErrUnsupportedFormat — расширение файла не поддерживается.
	ErrUnsupportedFormat = errors.New("unsupported definition format")

	// ErrNoSource — источник определения не задан.
	ErrNoSource = errors.New("definition source is not set")

	// ErrNoStore — источник db: без подключения к БД.
	ErrNoStore = errors.New("database source requires a dashboard store")

	// ErrInvalidSetting — значение переменной окружения некорректно.
	ErrInvalidSetting = errors.New("invalid setting")
)
