package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"sort"
)

// Встроенные SQL-миграции клиента (SQLite).
//
//go:embed migrations/001_init.sql
var initDDL string

// MigrationState выполняет операторы миграции внутри её транзакции.
// Первая ошибка запоминается, последующие операторы пропускаются.
type MigrationState struct {
	ctx context.Context
	tx  *sql.Tx
	err error
}

// Exec выполняет оператор, если предыдущие прошли без ошибок.
func (s *MigrationState) Exec(stmt string, args ...any) {
	if s.err != nil {
		return
	}
	if _, err := s.tx.ExecContext(s.ctx, stmt, args...); err != nil {
		s.err = fmt.Errorf("exec %q: %w", firstLine(stmt), err)
	}
}

// Fail прерывает миграцию с ошибкой.
func (s *MigrationState) Fail(err error) {
	if s.err == nil {
		s.err = err
	}
}

// Err возвращает первую ошибку миграции.
func (s *MigrationState) Err() error { return s.err }

// MigrationBuilder собирает нумерованные миграции и применяет те, что новее PRAGMA user_version.
type MigrationBuilder struct {
	actions map[int]func(*MigrationState)
}

// NewMigrationBuilder создаёт пустой набор миграций.
func NewMigrationBuilder() *MigrationBuilder {
	return &MigrationBuilder{actions: make(map[int]func(*MigrationState))}
}

// Version регистрирует миграцию с номером n (n >= 1). Повторная регистрация заменяет прежнюю.
func (b *MigrationBuilder) Version(n int, action func(*MigrationState)) *MigrationBuilder {
	if n < 1 {
		panic(fmt.Sprintf("sqlite: invalid migration version %d", n))
	}
	b.actions[n] = action
	return b
}

// Versions возвращает зарегистрированные номера по возрастанию.
func (b *MigrationBuilder) Versions() []int {
	out := make([]int, 0, len(b.actions))
	for v := range b.actions {
		out = append(out, v)
	}
	sort.Ints(out)
	return out
}

// Apply выполняет недостающие миграции, каждую в своей транзакции вместе с обновлением user_version.
// Возвращает итоговую версию схемы.
func (b *MigrationBuilder) Apply(ctx context.Context, db *sql.DB) (int, error) {
	current, err := SchemaVersion(ctx, db)
	if err != nil {
		return 0, err
	}
	for _, v := range b.Versions() {
		if v <= current {
			continue
		}
		if err := b.applyOne(ctx, db, v); err != nil {
			return current, fmt.Errorf("migration %d: %w", v, err)
		}
		current = v
	}
	return current, nil
}

func (b *MigrationBuilder) applyOne(ctx context.Context, db *sql.DB, v int) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		// после Commit откат ничего не делает
		_ = tx.Rollback()
	}()

	st := &MigrationState{ctx: ctx, tx: tx}
	b.actions[v](st)
	st.Exec(fmt.Sprintf("PRAGMA user_version = %d", v))
	if st.Err() != nil {
		return st.Err()
	}
	return tx.Commit()
}

// SchemaVersion читает PRAGMA user_version.
func SchemaVersion(ctx context.Context, db *sql.DB) (int, error) {
	var v int
	if err := db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&v); err != nil {
		return 0, err
	}
	return v, nil
}

// radarMigrations — схема кэша радаров.
func radarMigrations() *MigrationBuilder {
	return NewMigrationBuilder().
		Version(1, func(s *MigrationState) {
			s.Exec(initDDL)
		}).
		Version(2, func(s *MigrationState) {
			s.Exec(`CREATE INDEX IF NOT EXISTS idx_radars_updated_at ON radars(updated_at)`)
		})
}

func firstLine(s string) string {
	for i, r := range s {
		if r == '\n' {
			return s[:i]
		}
	}
	return s
}
