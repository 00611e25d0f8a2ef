package capture

import (
	"sync"

	"github.com/google/uuid"
)

// Registry держит отдельный Manager на каждую сессию (вкладку/рабочее место).
type Registry struct {
	factory func() *Manager
	m       sync.Map // sessionID -> *Manager
}

func NewRegistry(factory func() *Manager) *Registry {
	return &Registry{factory: factory}
}

// Create заводит новую сессию со случайным id.
func (r *Registry) Create() (string, *Manager) {
	id := uuid.NewString()
	return id, r.GetOrCreate(id)
}

func (r *Registry) Get(sessionID string) (*Manager, bool) {
	if v, ok := r.m.Load(sessionID); ok {
		return v.(*Manager), true
	}
	return nil, false
}

func (r *Registry) GetOrCreate(sessionID string) *Manager {
	if v, ok := r.m.Load(sessionID); ok {
		return v.(*Manager)
	}
	fresh := r.factory()
	v, loaded := r.m.LoadOrStore(sessionID, fresh)
	if loaded {
		fresh.Close()
	}
	return v.(*Manager)
}

// Delete останавливает и забывает сессию.
func (r *Registry) Delete(sessionID string) bool {
	v, ok := r.m.LoadAndDelete(sessionID)
	if !ok {
		return false
	}
	v.(*Manager).Close()
	return true
}

func (r *Registry) Len() int {
	n := 0
	r.m.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

// Close shuts down every session.
func (r *Registry) Close() {
	r.m.Range(func(k, v any) bool {
		r.m.Delete(k)
		v.(*Manager).Close()
		return true
	})
}
