package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shaiso/Shellboard/internal/domain"
)

// uniqueViolation — код ошибки PostgreSQL для нарушения уникальности.
const uniqueViolation = "23505"

// DashboardRepo — репозиторий версий дашбордов.
type DashboardRepo struct {
	pool *pgxpool.Pool
}

// NewDashboardRepo создаёт новый DashboardRepo.
func NewDashboardRepo(pool *pgxpool.Pool) *DashboardRepo {
	return &DashboardRepo{pool: pool}
}

// CreateVersion сохраняет новую версию дашборда.
// Номер версии инкрементируется автоматически.
func (r *DashboardRepo) CreateVersion(ctx context.Context, name string, spec domain.Definition) (*domain.DashboardVersion, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}

	specJSON, err := json.Marshal(spec)
	if err != nil {
		return nil, fmt.Errorf("marshal spec: %w", err)
	}

	// Номер версии и вставка в одном запросе; гонку ловит UNIQUE (name, version)
	var dv domain.DashboardVersion
	err = r.pool.QueryRow(ctx, `
		INSERT INTO dashboard_versions (id, name, version, spec, created_at)
		SELECT $1, $2, COALESCE(MAX(version), 0) + 1, $3, NOW()
		FROM dashboard_versions
		WHERE name = $2
		RETURNING id, name, version, created_at
	`, uuid.New(), name, specJSON).Scan(
		&dv.ID,
		&dv.Name,
		&dv.Version,
		&dv.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, fmt.Errorf("%w: dashboard %s", ErrAlreadyExists, name)
		}
		return nil, fmt.Errorf("insert dashboard version: %w", err)
	}

	dv.Spec = spec
	return &dv, nil
}

// GetVersion возвращает конкретную версию дашборда.
func (r *DashboardRepo) GetVersion(ctx context.Context, name string, version int) (*domain.DashboardVersion, error) {
	query := `
		SELECT id, name, version, spec, created_at
		FROM dashboard_versions
		WHERE name = $1 AND version = $2
	`
	return r.scanOne(r.pool.QueryRow(ctx, query, name, version))
}

// GetLatest возвращает последнюю версию дашборда.
func (r *DashboardRepo) GetLatest(ctx context.Context, name string) (*domain.DashboardVersion, error) {
	query := `
		SELECT id, name, version, spec, created_at
		FROM dashboard_versions
		WHERE name = $1
		ORDER BY version DESC
		LIMIT 1
	`
	return r.scanOne(r.pool.QueryRow(ctx, query, name))
}

// ListVersions возвращает все версии дашборда, новые первыми.
func (r *DashboardRepo) ListVersions(ctx context.Context, name string) ([]domain.DashboardVersion, error) {
	query := `
		SELECT id, name, version, spec, created_at
		FROM dashboard_versions
		WHERE name = $1
		ORDER BY version DESC
	`
	rows, err := r.pool.Query(ctx, query, name)
	if err != nil {
		return nil, fmt.Errorf("list dashboard versions: %w", err)
	}
	defer rows.Close()

	var versions []domain.DashboardVersion
	for rows.Next() {
		dv, err := r.scanOne(rows)
		if err != nil {
			return nil, err
		}
		versions = append(versions, *dv)
	}
	return versions, rows.Err()
}

// ListNames возвращает имена сохранённых дашбордов.
func (r *DashboardRepo) ListNames(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT DISTINCT name FROM dashboard_versions ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list dashboard names: %w", err)
	}
	defer rows.Close()

	return pgx.CollectRows(rows, pgx.RowTo[string])
}

// scanOne читает одну версию из строки результата.
func (r *DashboardRepo) scanOne(row pgx.Row) (*domain.DashboardVersion, error) {
	var dv domain.DashboardVersion
	var specJSON []byte
	err := row.Scan(
		&dv.ID,
		&dv.Name,
		&dv.Version,
		&specJSON,
		&dv.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan dashboard version: %w", err)
	}

	if err := json.Unmarshal(specJSON, &dv.Spec); err != nil {
		return nil, fmt.Errorf("unmarshal spec: %w", err)
	}

	return &dv, nil
}
