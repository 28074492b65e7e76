package fs

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"Antenna/internal/cli/crypto"
	"Antenna/internal/cli/repo"
)

// PrefsFSStore — файловое хранилище настроек клиента: выбранный Apple ID,
// зашифрованный пароль и время последней синхронизации кэша.
type PrefsFSStore struct{}

var (
	_ repo.Preferences  = PrefsFSStore{}
	_ repo.AccountStore = PrefsFSStore{}
)

func configDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	p := filepath.Join(dir, repo.AppDirName)
	if err := os.MkdirAll(p, 0o700); err != nil {
		return "", err
	}
	return p, nil
}

func appleIDPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "apple_id"), nil
}

func passwordPath(appleID string) (string, error) {
	dir, err := repo.AccountDir(appleID)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "password.enc"), nil
}

func lastSyncAtPath(appleID string) (string, error) {
	if appleID == "" {
		return "", errors.New("empty apple id for last_sync_at")
	}
	dir, err := repo.AccountDir(appleID)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "last_sync_at"), nil
}

// readTrimmed читает файл и обрезает завершающие переводы строки/пробелы.
func readTrimmed(p string) (string, error) {
	b, err := os.ReadFile(p)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(string(b), "\r\n\t "), nil
}

// SaveCredentials сохраняет Apple ID и пароль (AES-GCM, ключ аккаунта).
func (PrefsFSStore) SaveCredentials(c repo.Credentials) error {
	id := strings.TrimSpace(c.AppleID)
	if id == "" {
		return errors.New("empty apple id")
	}
	if c.Password == "" {
		return errors.New("empty password")
	}
	key, err := crypto.LoadOrCreateKey(id)
	if err != nil {
		return err
	}
	cipherText, nonce, err := crypto.Encrypt([]byte(c.Password), key)
	if err != nil {
		return err
	}
	pp, err := passwordPath(id)
	if err != nil {
		return err
	}
	// nonce хранится перед шифртекстом
	if err := os.WriteFile(pp, append(nonce, cipherText...), 0o600); err != nil {
		return err
	}
	ap, err := appleIDPath()
	if err != nil {
		return err
	}
	return os.WriteFile(ap, []byte(id), 0o600)
}

// LoadAppleID читает выбранный Apple ID.
func (PrefsFSStore) LoadAppleID() (string, error) {
	p, err := appleIDPath()
	if err != nil {
		return "", err
	}
	id, err := readTrimmed(p)
	if err != nil {
		return "", err
	}
	if id == "" {
		return "", errors.New("no stored apple id")
	}
	return id, nil
}

// Credentials реализует repo.Preferences: Apple ID и расшифрованный пароль.
func (s PrefsFSStore) Credentials() (repo.Credentials, error) {
	id, err := s.LoadAppleID()
	if err != nil {
		return repo.Credentials{}, errors.Join(repo.ErrNoCredentials, err)
	}
	pp, err := passwordPath(id)
	if err != nil {
		return repo.Credentials{}, err
	}
	raw, err := os.ReadFile(pp)
	if err != nil {
		return repo.Credentials{}, errors.Join(repo.ErrNoCredentials, err)
	}
	key, err := crypto.LoadOrCreateKey(id)
	if err != nil {
		return repo.Credentials{}, err
	}
	const nonceSize = 12 // стандартный nonce AES-GCM
	if len(raw) <= nonceSize {
		return repo.Credentials{}, errors.New("corrupted password file")
	}
	plain, err := crypto.Decrypt(raw[nonceSize:], raw[:nonceSize], key)
	if err != nil {
		return repo.Credentials{}, err
	}
	return repo.Credentials{AppleID: id, Password: string(plain)}, nil
}

// SaveLastSyncAt сохраняет значение last_sync_at (RFC3339) для аккаунта.
func (PrefsFSStore) SaveLastSyncAt(appleID, ts string) error {
	p, err := lastSyncAtPath(appleID)
	if err != nil {
		return err
	}
	return os.WriteFile(p, []byte(ts), 0o600)
}

// LoadLastSyncAt читает last_sync_at для аккаунта.
func (PrefsFSStore) LoadLastSyncAt(appleID string) (string, error) {
	p, err := lastSyncAtPath(appleID)
	if err != nil {
		return "", err
	}
	ts, err := readTrimmed(p)
	if err != nil {
		return "", err
	}
	if ts == "" {
		return "", errors.New("empty last_sync_at file")
	}
	return ts, nil
}
