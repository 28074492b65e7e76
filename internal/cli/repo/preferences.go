package repo

import "errors"

// Credentials — учётные данные для входа в bugreporter.
type Credentials struct {
	AppleID  string
	Password string
}

// ErrNoCredentials — учётные данные не настроены.
var ErrNoCredentials = errors.New("no credentials configured")

// Preferences — источник настроек клиента, из которого берутся учётные данные для входа.
type Preferences interface {
	Credentials() (Credentials, error)
}

// AccountStore хранит выбранный аккаунт и время последней синхронизации кэша.
type AccountStore interface {
	SaveCredentials(c Credentials) error
	LoadAppleID() (string, error)
	SaveLastSyncAt(appleID, ts string) error
	LoadLastSyncAt(appleID string) (string, error)
}

// StaticPreferences отдаёт заранее известные учётные данные (например, из env).
type StaticPreferences struct {
	AppleID  string
	Password string
}

// Credentials реализует Preferences.
func (p StaticPreferences) Credentials() (Credentials, error) {
	if p.AppleID == "" || p.Password == "" {
		return Credentials{}, ErrNoCredentials
	}
	return Credentials{AppleID: p.AppleID, Password: p.Password}, nil
}

// Chain возвращает первые успешно прочитанные учётные данные.
type Chain []Preferences

// Credentials реализует Preferences.
func (c Chain) Credentials() (Credentials, error) {
	for _, p := range c {
		if p == nil {
			continue
		}
		if cr, err := p.Credentials(); err == nil {
			return cr, nil
		}
	}
	return Credentials{}, ErrNoCredentials
}
