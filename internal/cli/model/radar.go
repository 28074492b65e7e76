package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// AuthResult — результат успешного входа.
type AuthResult struct {
	// CSRFToken выдан сервером и передаётся с каждым последующим запросом.
	CSRFToken string
}

// RadarSummary — краткая запись о радаре в разделе.
type RadarSummary struct {
	ID                int64     `json:"id"`
	StateName         string    `json:"state"`
	Title             string    `json:"title"`
	ComponentName     string    `json:"component"`
	RequiresAttention bool      `json:"requiresAttention"`
	Hidden            bool      `json:"hidden"`
	Description       string    `json:"description"` // усечённое описание
	OriginatedAt      time.Time `json:"originated"`
}

// SummariesPage — страница ответа со сводками.
type SummariesPage struct {
	RowStart    int            `json:"rowStart"`
	RowsInCache int            `json:"rowsInCache"`
	Summaries   []RadarSummary `json:"summaries"`
}

// HasAdditionalRows сообщает, есть ли на сервере ещё строки после этой страницы.
func (p SummariesPage) HasAdditionalRows() bool {
	return p.RowStart+len(p.Summaries) < p.RowsInCache
}

// ErrMalformedSummaries — тело ответа не является ни массивом сводок, ни страницей.
var ErrMalformedSummaries = errors.New("malformed summaries response")

// ParseSummaries разбирает ответ сервера. Допускается голый JSON-массив сводок
// (тогда это единственная страница) или объект-страница.
func ParseSummaries(body []byte) (SummariesPage, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return SummariesPage{}, ErrMalformedSummaries
	}
	switch trimmed[0] {
	case '[':
		var list []RadarSummary
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return SummariesPage{}, fmt.Errorf("%w: %v", ErrMalformedSummaries, err)
		}
		if list == nil {
			list = []RadarSummary{}
		}
		return SummariesPage{RowStart: 0, RowsInCache: len(list), Summaries: list}, nil
	case '{':
		var page SummariesPage
		if err := json.Unmarshal(trimmed, &page); err != nil {
			return SummariesPage{}, fmt.Errorf("%w: %v", ErrMalformedSummaries, err)
		}
		if page.Summaries == nil {
			page.Summaries = []RadarSummary{}
		}
		if page.RowStart < 0 || page.RowsInCache < 0 {
			return SummariesPage{}, fmt.Errorf("%w: negative row counters", ErrMalformedSummaries)
		}
		return page, nil
	default:
		return SummariesPage{}, ErrMalformedSummaries
	}
}

// CachedRadar — радар в локальном кэше.
type CachedRadar struct {
	RadarSummary
	Section   string
	Open      bool
	UpdatedAt time.Time // время последнего изменения записи в кэше
}
