package fs

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Antenna/internal/cli/repo"
)

// setTempCfg перенастраивает пользовательский конфиг‑каталог в temp для изоляции тестов.
func setTempCfg(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if runtime.GOOS == "windows" {
		t.Setenv("APPDATA", dir)
	} else {
		t.Setenv("XDG_CONFIG_HOME", dir)
	}
	t.Setenv("CLIENT_DB_PATH", filepath.Join(dir, "accounts"))
	return dir
}

func TestPrefsFSStore_SaveCredentials_RoundTrip(t *testing.T) {
	setTempCfg(t)
	st := PrefsFSStore{}

	require.NoError(t, st.SaveCredentials(repo.Credentials{AppleID: " alice@example.com\n", Password: "s3cret"}))

	id, err := st.LoadAppleID()
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", id)

	cr, err := st.Credentials()
	require.NoError(t, err)
	assert.Equal(t, repo.Credentials{AppleID: "alice@example.com", Password: "s3cret"}, cr)

	// пароль на диске не хранится в открытом виде
	pp, err := passwordPath("alice@example.com")
	require.NoError(t, err)
	raw, err := os.ReadFile(pp)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "s3cret")
}

func TestPrefsFSStore_Credentials_Missing(t *testing.T) {
	setTempCfg(t)
	_, err := PrefsFSStore{}.Credentials()
	assert.True(t, errors.Is(err, repo.ErrNoCredentials), "got %v", err)
}

func TestPrefsFSStore_SaveCredentials_Validation(t *testing.T) {
	setTempCfg(t)
	st := PrefsFSStore{}
	assert.Error(t, st.SaveCredentials(repo.Credentials{Password: "x"}))
	assert.Error(t, st.SaveCredentials(repo.Credentials{AppleID: "a@b.c"}))
}

func TestPrefsFSStore_Credentials_CorruptedPassword(t *testing.T) {
	setTempCfg(t)
	st := PrefsFSStore{}
	require.NoError(t, st.SaveCredentials(repo.Credentials{AppleID: "bob@example.com", Password: "pw"}))
	pp, _ := passwordPath("bob@example.com")
	require.NoError(t, os.WriteFile(pp, []byte("short"), 0o600))
	_, err := st.Credentials()
	assert.Error(t, err)
}

func TestSaveLoadLastSyncAt(t *testing.T) {
	setTempCfg(t)
	st := PrefsFSStore{}
	const user = "bob@example.com"
	// пустой Apple ID → ошибка
	_, err := st.LoadLastSyncAt("")
	assert.Error(t, err)
	assert.Error(t, st.SaveLastSyncAt("", "2024-01-01T00:00:00Z"))

	// отсутствует файл
	_, err = st.LoadLastSyncAt(user)
	assert.Error(t, err)

	require.NoError(t, st.SaveLastSyncAt(user, "2024-01-01T00:00:00Z\n"))
	got, err := st.LoadLastSyncAt(user)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-01T00:00:00Z", got)
}
