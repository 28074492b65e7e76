package service

import (
	"context"
	"errors"
	"strings"

	"Antenna/internal/cli/apperr"
	"Antenna/internal/cli/client"
	"Antenna/internal/cli/model"
	"Antenna/internal/cli/repo"
)

// AuthService — юзкейс входа для CLI: сохраняет учётные данные и выполняет Login клиента.
type AuthService struct {
	store repo.AccountStore
}

// NewAuthService создаёт сервис поверх хранилища аккаунта.
func NewAuthService(store repo.AccountStore) *AuthService {
	return &AuthService{store: store}
}

// Login проверяет учётные данные на сервере и при успехе запоминает их как активный аккаунт.
// newClient строит клиент поверх переданных настроек.
func (s *AuthService) Login(ctx context.Context, cr repo.Credentials, newClient func(repo.Preferences) *client.Client) (model.AuthResult, error) {
	cr.AppleID = strings.TrimSpace(cr.AppleID)
	if cr.AppleID == "" || cr.Password == "" {
		return model.AuthResult{}, apperr.New("login", apperr.InvalidRequest, errors.New("apple id and password are required"))
	}
	c := newClient(repo.StaticPreferences{AppleID: cr.AppleID, Password: cr.Password})
	defer c.Close()

	out := <-c.Login(ctx)
	if out.Err != nil {
		return model.AuthResult{}, out.Err
	}
	if err := s.store.SaveCredentials(cr); err != nil {
		return model.AuthResult{}, apperr.New("login", apperr.StorageFailure, err)
	}
	return out.Result, nil
}

// CurrentAccount возвращает Apple ID активного аккаунта.
func (s *AuthService) CurrentAccount() (string, error) {
	id, err := s.store.LoadAppleID()
	if err != nil || id == "" {
		return "", errors.Join(ErrNoAccount, err)
	}
	return id, nil
}
