package service

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"Antenna/internal/model"
	"Antenna/internal/repo"
)

var (
	// ErrLoginTaken — пользователь с таким Apple ID уже есть.
	ErrLoginTaken = errors.New("login already taken")
	// ErrInvalidCredentials — неверный Apple ID или пароль.
	ErrInvalidCredentials = errors.New("invalid login or password")
)

// UserService — регистрация и вход пользователей заглушки.
type UserService struct {
	repo repo.UserRepository
}

func NewUserService(r repo.UserRepository) *UserService {
	return &UserService{repo: r}
}

// Register создаёт пользователя с bcrypt-хешем пароля.
func (s *UserService) Register(ctx context.Context, login, password string) (*model.User, error) {
	login = strings.TrimSpace(login)
	if login == "" || password == "" {
		return nil, ErrInvalidCredentials
	}
	existing, err := s.repo.GetUserByLogin(ctx, login)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, ErrLoginTaken
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	return s.repo.CreateUser(ctx, &model.User{Login: login, Password: string(hash)})
}

// Login проверяет пароль. Неизвестный пользователь и неверный пароль неразличимы.
func (s *UserService) Login(ctx context.Context, login, password string) (*model.User, error) {
	u, err := s.repo.GetUserByLogin(ctx, strings.TrimSpace(login))
	if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && u == nil) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// EnsureUser возвращает существующего пользователя или создаёт нового (для сидинга).
func (s *UserService) EnsureUser(ctx context.Context, login, password string) (*model.User, error) {
	u, err := s.Register(ctx, login, password)
	if errors.Is(err, ErrLoginTaken) {
		return s.repo.GetUserByLogin(ctx, strings.TrimSpace(login))
	}
	return u, err
}
