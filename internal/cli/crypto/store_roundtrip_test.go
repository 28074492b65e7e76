package crypto_test

import (
	"bytes"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Antenna/internal/cli/crypto"
	"Antenna/internal/cli/repo"
	"Antenna/internal/cli/repo/fs"
)

func isolateConfig(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	if runtime.GOOS == "windows" {
		t.Setenv("APPDATA", dir)
	} else {
		t.Setenv("XDG_CONFIG_HOME", dir)
	}
	t.Setenv("CLIENT_DB_PATH", filepath.Join(dir, "accounts"))
}

func passwordFile(t *testing.T, appleID string) string {
	t.Helper()
	dir, err := repo.AccountDir(appleID)
	require.NoError(t, err)
	return filepath.Join(dir, "password.enc")
}

func TestPrefsStore_PasswordEncryptedAtRest(t *testing.T) {
	isolateConfig(t)
	const id, password = "alice@example.com", "correct horse battery staple"
	store := fs.PrefsFSStore{}

	require.NoError(t, store.SaveCredentials(repo.Credentials{AppleID: id, Password: password}))

	raw, err := os.ReadFile(passwordFile(t, id))
	require.NoError(t, err)
	assert.False(t, bytes.Contains(raw, []byte(password)), "пароль не должен лежать открытым текстом")

	// файл — nonce(12) + шифртекст под ключом аккаунта
	key, err := crypto.LoadOrCreateKey(id)
	require.NoError(t, err)
	require.Greater(t, len(raw), 12)
	plain, err := crypto.Decrypt(raw[12:], raw[:12], key)
	require.NoError(t, err)
	assert.Equal(t, password, string(plain))

	creds, err := store.Credentials()
	require.NoError(t, err)
	assert.Equal(t, repo.Credentials{AppleID: id, Password: password}, creds)
}

func TestPrefsStore_ResaveUsesFreshNonce(t *testing.T) {
	isolateConfig(t)
	const id = "alice@example.com"
	store := fs.PrefsFSStore{}

	require.NoError(t, store.SaveCredentials(repo.Credentials{AppleID: id, Password: "secret"}))
	first, err := os.ReadFile(passwordFile(t, id))
	require.NoError(t, err)
	require.NoError(t, store.SaveCredentials(repo.Credentials{AppleID: id, Password: "secret"}))
	second, err := os.ReadFile(passwordFile(t, id))
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	creds, err := store.Credentials()
	require.NoError(t, err)
	assert.Equal(t, "secret", creds.Password)
}

func TestPrefsStore_TamperedPasswordFile(t *testing.T) {
	isolateConfig(t)
	const id = "alice@example.com"
	store := fs.PrefsFSStore{}
	require.NoError(t, store.SaveCredentials(repo.Credentials{AppleID: id, Password: "secret"}))

	p := passwordFile(t, id)
	raw, err := os.ReadFile(p)
	require.NoError(t, err)
	raw[len(raw)-1] ^= 0xff
	require.NoError(t, os.WriteFile(p, raw, 0o600))

	_, err = store.Credentials()
	assert.Error(t, err)
}

func TestPrefsStore_PasswordBoundToAccountKey(t *testing.T) {
	isolateConfig(t)
	store := fs.PrefsFSStore{}
	require.NoError(t, store.SaveCredentials(repo.Credentials{AppleID: "alice@example.com", Password: "secret"}))

	raw, err := os.ReadFile(passwordFile(t, "alice@example.com"))
	require.NoError(t, err)
	other, err := crypto.LoadOrCreateKey("bob@example.com")
	require.NoError(t, err)
	_, err = crypto.Decrypt(raw[12:], raw[:12], other)
	assert.Error(t, err)
}
