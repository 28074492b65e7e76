package repo

import (
	"errors"
	"os"
	"path/filepath"
	"regexp"
)

// AppDirName — имя каталога приложения внутри пользовательского конфига.
const AppDirName = "Antenna"

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._@-]`)

// AccountDir возвращает (и создаёт) каталог данных аккаунта.
// Базовый каталог переопределяется переменной CLIENT_DB_PATH.
func AccountDir(appleID string) (string, error) {
	if appleID == "" {
		return "", errors.New("empty apple id for account dir")
	}
	base := os.Getenv("CLIENT_DB_PATH")
	if base == "" {
		cfgDir, err := os.UserConfigDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(cfgDir, AppDirName, "accounts")
	}
	dir := filepath.Join(base, unsafeChars.ReplaceAllString(appleID, "_"))
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", err
	}
	return dir, nil
}
