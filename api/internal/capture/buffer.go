package capture

import (
	"sync"
	"time"
)

// DefaultCapacity - сколько снимков держим в памяти на одну сессию.
const DefaultCapacity = 10

// Record - один снимок рабочего пространства. После создания не меняется.
type Record struct {
	Timestamp   time.Time `json:"timestamp"`
	ImageData   string    `json:"imageData"` // data:image/jpeg;base64,...
	Description string    `json:"description"`
}

// Buffer хранит последние записи в порядке вставки (старые первыми).
// При переполнении вытесняет самые старые.
type Buffer struct {
	mu       sync.RWMutex
	capacity int
	items    []Record
}

func NewBuffer(capacity int) *Buffer {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Buffer{
		capacity: capacity,
		items:    make([]Record, 0, capacity),
	}
}

func (b *Buffer) Capacity() int { return b.capacity }

// Append добавляет запись в конец и обрезает начало до capacity.
func (b *Buffer) Append(r Record) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.items = append(b.items, r)
	if over := len(b.items) - b.capacity; over > 0 {
		// копируем, чтобы не держать вытесненные картинки в backing array
		kept := make([]Record, b.capacity)
		copy(kept, b.items[over:])
		b.items = kept
	}
}

// Recent возвращает последние min(n, len) записей, от старых к новым.
func (b *Buffer) Recent(n int) []Record {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if n <= 0 || len(b.items) == 0 {
		return []Record{}
	}
	if n > len(b.items) {
		n = len(b.items)
	}
	out := make([]Record, n)
	copy(out, b.items[len(b.items)-n:])
	return out
}

// All - копия всего содержимого.
func (b *Buffer) All() []Record {
	return b.Recent(b.capacity)
}

func (b *Buffer) Count() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.items)
}

func (b *Buffer) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.items) == 0 {
		return
	}
	b.items = make([]Record, 0, b.capacity)
}
