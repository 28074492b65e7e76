package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"Antenna/internal/model"
	"Antenna/internal/repo"
)

// Разделы, которые отдаёт заглушка.
var KnownSections = []string{"Open", "Closed", "Archive"}

const (
	DefaultPageSize = 100
	MaxPageSize     = 500
)

var (
	// ErrUnknownSection — такого раздела нет.
	ErrUnknownSection = errors.New("unknown section")
	// ErrInvalidRange — отрицательный rowStart.
	ErrInvalidRange = errors.New("invalid row range")
)

// SummariesPage — страница радаров раздела.
type SummariesPage struct {
	RowStart    int
	RowsInCache int
	Radars      []model.Radar
}

// RadarService отдаёт радары пользователя по разделам.
type RadarService struct {
	repo   repo.RadarRepository
	logger *zap.SugaredLogger
}

func NewRadarService(r repo.RadarRepository, logger *zap.SugaredLogger) *RadarService {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &RadarService{repo: r, logger: logger}
}

func knownSection(s string) bool {
	for _, k := range KnownSections {
		if k == s {
			return true
		}
	}
	return false
}

// Page возвращает страницу раздела. rowCount <= 0 — размер по умолчанию, больше MaxPageSize — обрезается.
func (s *RadarService) Page(ctx context.Context, userID int64, section string, rowStart, rowCount int) (SummariesPage, error) {
	if !knownSection(section) {
		return SummariesPage{}, fmt.Errorf("%w: %q", ErrUnknownSection, section)
	}
	if rowStart < 0 {
		return SummariesPage{}, ErrInvalidRange
	}
	if rowCount <= 0 {
		rowCount = DefaultPageSize
	}
	if rowCount > MaxPageSize {
		rowCount = MaxPageSize
	}
	list, total, err := s.repo.ListSection(ctx, userID, section, rowStart, rowCount)
	if err != nil {
		return SummariesPage{}, err
	}
	return SummariesPage{RowStart: rowStart, RowsInCache: int(total), Radars: list}, nil
}

// SeedSample заполняет пустой аккаунт демонстрационными радарами.
func (s *RadarService) SeedSample(ctx context.Context, userID int64) error {
	n, err := s.repo.CountByUser(ctx, userID)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	base := 13_000_000 + userID*1_000
	origin := time.Date(2013, 5, 1, 9, 0, 0, 0, time.UTC)
	samples := []model.Radar{
		{Section: "Open", State: "Open", Title: "Crash when opening large project", Component: "Xcode", RequiresAttention: true},
		{Section: "Open", State: "Analyze", Title: "Memory leak in NSURLSession delegate", Component: "Foundation"},
		{Section: "Open", State: "Open", Title: "Keychain prompt appears twice", Component: "Security"},
		{Section: "Open", State: "More Info", Title: "Build settings lost after migration", Component: "Xcode", RequiresAttention: true},
		{Section: "Closed", State: "Closed", Title: "Typo in documentation", Component: "Documentation"},
		{Section: "Closed", State: "Duplicate", Title: "Simulator fails to boot", Component: "iOS Simulator"},
		{Section: "Archive", State: "Closed", Title: "Old feature request", Component: "Mac OS X", Hidden: true},
	}
	for i := range samples {
		samples[i].ID = base + int64(i) + 1
		samples[i].UserID = userID
		samples[i].Description = samples[i].Title
		samples[i].OriginatedAt = origin.Add(time.Duration(i) * 24 * time.Hour)
	}
	if err := s.repo.Upsert(ctx, samples); err != nil {
		return err
	}
	s.logger.Infow("seeded sample radars", "user_id", userID, "count", len(samples))
	return nil
}
