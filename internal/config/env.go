package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/shaiso/Shellboard/internal/gateway"
	"github.com/shaiso/Shellboard/internal/sequencer"
)

// Значения по умолчанию.
const (
	DefaultConfigSource = "shellboard.yaml"
	DefaultAPIPort      = "8080"
	DefaultAPIURL       = "http://localhost:8080"
)

// Settings — настройки процессов Shellboard из окружения.
type Settings struct {
	// ConfigSource — путь к файлу определения или "db:<имя>" (SHELLBOARD_CONFIG).
	ConfigSource string

	// APIPort — порт shellboard-api (API_PORT).
	APIPort string

	// APIURL — адрес shellboard-api для HTTP gateway и CLI (API_URL).
	APIURL string

	// DBURL — строка подключения к PostgreSQL (DB_URL). Пусто — БД не используется.
	DBURL string

	// RabbitURL — адрес RabbitMQ (RABBITMQ_URL).
	RabbitURL string

	// Gateway — способ выполнения команд (GATEWAY: http|amqp|local).
	Gateway gateway.Kind

	// CommandTimeout — таймаут выполнения команды (COMMAND_TIMEOUT).
	CommandTimeout time.Duration

	// ChainDelay — задержка auto-chain (CHAIN_DELAY).
	ChainDelay time.Duration

	// Gate — политика gating (GATE_POLICY: any|all).
	Gate sequencer.GatePolicy

	// Tracing — включена ли трассировка (OTEL_TRACING != off).
	Tracing bool
}

// FromEnv читает настройки из окружения.
func FromEnv() (*Settings, error) {
	s := &Settings{
		ConfigSource: getenv("SHELLBOARD_CONFIG", DefaultConfigSource),
		APIPort:      getenv("API_PORT", DefaultAPIPort),
		APIURL:       getenv("API_URL", DefaultAPIURL),
		DBURL:        os.Getenv("DB_URL"),
		RabbitURL:    os.Getenv("RABBITMQ_URL"),
		Tracing:      os.Getenv("OTEL_TRACING") != "off",
	}

	var err error

	if s.Gateway, err = gateway.ParseKind(os.Getenv("GATEWAY")); err != nil {
		return nil, fmt.Errorf("%w: GATEWAY: %w", ErrInvalidSetting, err)
	}

	if s.Gate, err = sequencer.ParseGatePolicy(os.Getenv("GATE_POLICY")); err != nil {
		return nil, fmt.Errorf("%w: GATE_POLICY: %w", ErrInvalidSetting, err)
	}

	if s.CommandTimeout, err = durationEnv("COMMAND_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}

	if s.ChainDelay, err = durationEnv("CHAIN_DELAY", 50*time.Millisecond); err != nil {
		return nil, err
	}

	return s, nil
}

// APIAddr возвращает адрес для http.Server.
func (s *Settings) APIAddr() string {
	return ":" + s.APIPort
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// durationEnv разбирает длительность: "30s", "500ms" или число секунд.
func durationEnv(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}

	if secs, err := strconv.Atoi(v); err == nil {
		v = strconv.Itoa(secs) + "s"
	}

	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%w: %s=%q", ErrInvalidSetting, key, os.Getenv(key))
	}
	return d, nil
}
