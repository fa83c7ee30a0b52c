package mediaRepo

import (
	"context"
	"sort"
	"sync"

	"studiobook/models"
)

type memoryMediaRepo struct {
	mu    sync.RWMutex
	items map[string]models.MediaItem
}

func NewMemoryMediaRepo() MediaRepository {
	return &memoryMediaRepo{items: make(map[string]models.MediaItem)}
}

func (r *memoryMediaRepo) Create(_ context.Context, item *models.MediaItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[item.ID] = *item
	return nil
}

func (r *memoryMediaRepo) GetByID(_ context.Context, id string) (*models.MediaItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	item, ok := r.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &item, nil
}

func (r *memoryMediaRepo) List(_ context.Context, kind models.MediaKind) ([]models.MediaItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := []models.MediaItem{}
	for _, item := range r.items {
		if kind == "" || item.Kind == kind {
			items = append(items, item)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].CreatedAt.After(items[j].CreatedAt) })
	return items, nil
}

func (r *memoryMediaRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return ErrNotFound
	}
	delete(r.items, id)
	return nil
}
