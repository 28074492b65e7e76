package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"Antenna/internal/cli/model"
	"Antenna/internal/cli/repo"
)

// DBFileName — имя файла кэша в каталоге аккаунта.
const DBFileName = "radars.sqlite"

// RadarRepositorySQLite — локальный кэш радаров в SQLite.
type RadarRepositorySQLite struct {
	db *sql.DB
}

var _ repo.RadarRepository = (*RadarRepositorySQLite)(nil)

// OpenForAccount открывает (и создаёт при необходимости) файл кэша аккаунта.
// Вторым значением возвращается путь к БД.
func OpenForAccount(appleID string) (*RadarRepositorySQLite, string, error) {
	dir, err := repo.AccountDir(appleID)
	if err != nil {
		return nil, "", err
	}
	dbPath := filepath.Join(dir, DBFileName)
	r, err := Open(dbPath)
	if err != nil {
		return nil, "", err
	}
	return r, dbPath, nil
}

// Open открывает кэш по пути или DSN (":memory:" для тестов).
func Open(dsn string) (*RadarRepositorySQLite, error) {
	if dsn == "" {
		return nil, errors.New("empty database path")
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// одно соединение: in-memory БД живёт внутри соединения, а SQLite всё равно сериализует запись
	db.SetMaxOpenConns(1)
	return &RadarRepositorySQLite{db: db}, nil
}

// Close закрывает соединение с БД.
func (r *RadarRepositorySQLite) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

// Migrate доводит схему до последней версии.
func (r *RadarRepositorySQLite) Migrate(ctx context.Context) error {
	_, err := radarMigrations().Apply(ctx, r.db)
	return err
}

const radarColumns = `id, section, open, state, title, component, requires_attention, hidden,
	description, originated_at, updated_at`

// ApplySync реализует repo.RadarRepository. Неизменившиеся записи не трогает.
func (r *RadarRepositorySQLite) ApplySync(ctx context.Context, batches []repo.SectionBatch, now time.Time) ([]int64, []int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	updated := make([]int64, 0)
	keep := make(map[int64]struct{})
	for _, b := range batches {
		ids, err := upsertSection(ctx, tx, b, now)
		if err != nil {
			return nil, nil, err
		}
		updated = append(updated, ids...)
		for _, s := range b.Summaries {
			keep[s.ID] = struct{}{}
		}
	}
	removed, err := deleteMissing(ctx, tx, keep)
	if err != nil {
		return nil, nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, nil, err
	}
	return updated, removed, nil
}

func upsertSection(ctx context.Context, tx *sql.Tx, b repo.SectionBatch, now time.Time) ([]int64, error) {
	updated := make([]int64, 0)
	for _, s := range b.Summaries {
		cur, err := scanRadar(tx.QueryRowContext(ctx, `SELECT `+radarColumns+` FROM radars WHERE id = ?`, s.ID))
		switch {
		case errors.Is(err, sql.ErrNoRows):
		case err != nil:
			return nil, err
		case cur.Section == b.Section && cur.Open == b.Open && sameSummary(cur.RadarSummary, s):
			continue
		}
		_, err = tx.ExecContext(ctx, `INSERT INTO radars(`+radarColumns+`)
			VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				section = excluded.section, open = excluded.open, state = excluded.state,
				title = excluded.title, component = excluded.component,
				requires_attention = excluded.requires_attention, hidden = excluded.hidden,
				description = excluded.description, originated_at = excluded.originated_at,
				updated_at = excluded.updated_at`,
			s.ID, b.Section, boolInt(b.Open), s.StateName, s.Title, s.ComponentName,
			boolInt(s.RequiresAttention), boolInt(s.Hidden), s.Description,
			unixOrZero(s.OriginatedAt), now.UnixNano(),
		)
		if err != nil {
			return nil, err
		}
		updated = append(updated, s.ID)
	}
	return updated, nil
}

func deleteMissing(ctx context.Context, tx *sql.Tx, keep map[int64]struct{}) ([]int64, error) {
	rows, err := tx.QueryContext(ctx, `SELECT id FROM radars ORDER BY id`)
	if err != nil {
		return nil, err
	}
	removed := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			_ = rows.Close()
			return nil, err
		}
		if _, ok := keep[id]; !ok {
			removed = append(removed, id)
		}
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	for _, id := range removed {
		if _, err := tx.ExecContext(ctx, `DELETE FROM radars WHERE id = ?`, id); err != nil {
			return nil, err
		}
	}
	return removed, nil
}

// RadarsWithOpenState реализует repo.RadarRepository. Сортировка по id.
func (r *RadarRepositorySQLite) RadarsWithOpenState(ctx context.Context, open bool) ([]model.CachedRadar, error) {
	return r.query(ctx, `SELECT `+radarColumns+` FROM radars WHERE open = ? ORDER BY id`, boolInt(open))
}

// RadarsUpdatedSince реализует repo.RadarRepository. Сортировка: свежие первыми.
func (r *RadarRepositorySQLite) RadarsUpdatedSince(ctx context.Context, since time.Time) ([]model.CachedRadar, error) {
	var sinceNs int64
	if !since.IsZero() {
		sinceNs = since.UnixNano()
	}
	return r.query(ctx, `SELECT `+radarColumns+` FROM radars WHERE updated_at > ? ORDER BY updated_at DESC, id`, sinceNs)
}

func (r *RadarRepositorySQLite) query(ctx context.Context, q string, args ...any) ([]model.CachedRadar, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	res := make([]model.CachedRadar, 0)
	for rows.Next() {
		it, err := scanRadar(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, it)
	}
	return res, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRadar(row scanner) (model.CachedRadar, error) {
	var (
		it                        model.CachedRadar
		open, attention, hidden   int
		originatedAt, updatedAtNs int64
	)
	err := row.Scan(&it.ID, &it.Section, &open, &it.StateName, &it.Title, &it.ComponentName,
		&attention, &hidden, &it.Description, &originatedAt, &updatedAtNs)
	if err != nil {
		return model.CachedRadar{}, err
	}
	it.Open = open != 0
	it.RequiresAttention = attention != 0
	it.Hidden = hidden != 0
	if originatedAt != 0 {
		it.OriginatedAt = time.Unix(originatedAt, 0).UTC()
	}
	it.UpdatedAt = time.Unix(0, updatedAtNs).UTC()
	return it, nil
}

func sameSummary(a, b model.RadarSummary) bool {
	return a.ID == b.ID &&
		a.StateName == b.StateName &&
		a.Title == b.Title &&
		a.ComponentName == b.ComponentName &&
		a.RequiresAttention == b.RequiresAttention &&
		a.Hidden == b.Hidden &&
		a.Description == b.Description &&
		unixOrZero(a.OriginatedAt) == unixOrZero(b.OriginatedAt)
}

func unixOrZero(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.Unix()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
