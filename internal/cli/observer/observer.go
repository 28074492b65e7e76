// Package observer — набор наблюдателей, привязанный к экземпляру владельца.
package observer

import (
	"sync"

	"github.com/google/uuid"
)

// Set хранит наблюдателей типа T в порядке регистрации.
// Безопасен для конкурентного использования.
type Set[T any] struct {
	mu      sync.RWMutex
	order   []string
	entries map[string]T
}

// NewSet создаёт пустой набор.
func NewSet[T any]() *Set[T] {
	return &Set[T]{entries: make(map[string]T)}
}

// Add регистрирует наблюдателя и возвращает дескриптор для Remove.
func (s *Set[T]) Add(o T) string {
	id := uuid.NewString()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.entries == nil {
		s.entries = make(map[string]T)
	}
	s.entries[id] = o
	s.order = append(s.order, id)
	return id
}

// Remove снимает наблюдателя. Неизвестный дескриптор игнорируется.
func (s *Set[T]) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[id]; !ok {
		return
	}
	delete(s.entries, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i:i], s.order[i+1:]...)
			break
		}
	}
}

// Len возвращает число зарегистрированных наблюдателей.
func (s *Set[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Each вызывает fn для снимка наблюдателей, взятого до начала обхода.
// Наблюдатель может снять себя (или добавить другого) прямо из fn.
func (s *Set[T]) Each(fn func(T)) {
	s.mu.RLock()
	snapshot := make([]T, 0, len(s.order))
	for _, id := range s.order {
		snapshot = append(snapshot, s.entries[id])
	}
	s.mu.RUnlock()

	for _, o := range snapshot {
		fn(o)
	}
}
