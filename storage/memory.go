package storage

import (
	"context"
	"sync"

	"go-mod.ewintr.nl/ytsum/model"
)

type Memory struct {
	summaries map[string]model.Summary
	mu        sync.RWMutex
}

func NewMemory() *Memory {
	return &Memory{
		summaries: map[string]model.Summary{},
	}
}

func (m *Memory) Save(_ context.Context, summary *model.Summary) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.summaries[summary.Key] = *summary

	return nil
}

func (m *Memory) FindByKey(_ context.Context, key string) (*model.Summary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	summary, ok := m.summaries[key]
	if !ok {
		return nil, ErrNotFound
	}

	return &summary, nil
}

func (m *Memory) FindAll(_ context.Context) ([]*model.Summary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	all := make([]*model.Summary, 0, len(m.summaries))
	for _, summary := range m.summaries {
		summary := summary
		all = append(all, &summary)
	}

	return all, nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.summaries, key)

	return nil
}
