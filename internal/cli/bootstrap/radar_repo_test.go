package bootstrap

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"Antenna/internal/cli/model"
	"Antenna/internal/cli/repo"
)

// helper: временный пользовательский конфиг для тестов
func setTempCfg(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if runtime.GOOS == "windows" {
		t.Setenv("APPDATA", dir)
	} else {
		t.Setenv("XDG_CONFIG_HOME", dir)
	}
	// кэш аккаунтов хранится в CLIENT_DB_PATH
	db := filepath.Join(dir, "db")
	_ = os.MkdirAll(db, 0o700)
	t.Setenv("CLIENT_DB_PATH", db)
	return dir
}

func TestOpenRadarRepo_SuccessAndCleanup(t *testing.T) {
	setTempCfg(t)
	ctx := context.Background()
	r, done, err := OpenRadarRepo(ctx, "john@example.com")
	if err != nil {
		t.Fatalf("OpenRadarRepo: %v", err)
	}
	// репозиторий должен быть рабочим
	batch := []repo.SectionBatch{{Section: "Open", Open: true, Summaries: []model.RadarSummary{{ID: 1}}}}
	if _, _, err := r.ApplySync(ctx, batch, time.Now()); err != nil {
		t.Fatalf("ApplySync: %v", err)
	}
	if err := done(); err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	// повторный вызов cleanup не должен паниковать
	_ = done()
}

func TestOpenRadarRepo_ErrorWhenNoAccount(t *testing.T) {
	setTempCfg(t)
	if _, _, err := OpenRadarRepo(context.Background(), ""); err == nil {
		t.Fatalf("expected error when no account given")
	}
}

// Доп.кейс: CLIENT_DB_PATH указывает на обычный файл
func TestOpenRadarRepo_FailsWhenClientDBPathIsFile(t *testing.T) {
	dir := setTempCfg(t)
	tmpFile := filepath.Join(dir, "not_dir")
	if err := os.WriteFile(tmpFile, []byte("x"), 0o600); err != nil {
		t.Fatalf("prepare tmp file: %v", err)
	}
	t.Setenv("CLIENT_DB_PATH", tmpFile)
	if _, _, err := OpenRadarRepo(context.Background(), "john@example.com"); err == nil {
		t.Fatalf("expected error when CLIENT_DB_PATH points to file, got nil")
	}
}
