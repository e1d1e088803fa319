package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/shaiso/Shellboard/internal/domain"
	"github.com/shaiso/Shellboard/internal/engine"
	"gopkg.in/yaml.v3"
)

// dbPrefix — префикс источника в БД: "db:ops" — последняя версия дашборда ops.
const dbPrefix = "db:"

// DefinitionStore отдаёт сохранённые версии дашбордов. *repo.DashboardRepo реализует его.
type DefinitionStore interface {
	GetLatest(ctx context.Context, name string) (*domain.DashboardVersion, error)
}

// IsDBSource сообщает, указывает ли source на БД, и возвращает имя дашборда.
func IsDBSource(source string) (string, bool) {
	name, ok := strings.CutPrefix(source, dbPrefix)
	if !ok || name == "" {
		return "", false
	}
	return name, true
}

// LoadDefinition загружает определение из файла или из БД.
// store нужен только для источника "db:<имя>".
func LoadDefinition(ctx context.Context, source string, store DefinitionStore) (*domain.Definition, error) {
	if source == "" {
		return nil, ErrNoSource
	}

	if name, ok := IsDBSource(source); ok {
		if store == nil {
			return nil, ErrNoStore
		}
		dv, err := store.GetLatest(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("load dashboard %s: %w", name, err)
		}
		return &dv.Spec, nil
	}

	return LoadFile(source)
}

// LoadFile читает определение из файла. Формат выбирается по расширению.
func LoadFile(path string) (*domain.Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read definition: %w", err)
	}
	return Parse(data, path)
}

// Parse разбирает содержимое файла с именем filename.
func Parse(data []byte, filename string) (*domain.Definition, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml", ".json":
		var def domain.Definition
		if err := yaml.Unmarshal(data, &def); err != nil {
			return nil, fmt.Errorf("parse %s: %w", filename, err)
		}
		return &def, nil
	case ".hcl":
		return parseHCL(data, filename)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filename)
	}
}

// LoadDashboard загружает определение и разворачивает его в Dashboard.
func LoadDashboard(ctx context.Context, source string, store DefinitionStore) (*domain.Dashboard, error) {
	def, err := LoadDefinition(ctx, source, store)
	if err != nil {
		return nil, err
	}

	dash, err := engine.Resolve(def)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", source, err)
	}
	return dash, nil
}
