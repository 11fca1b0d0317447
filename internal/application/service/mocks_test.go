package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/garyjia/billed/internal/domain/entity"
)

type mockBillRepo struct {
	mu    sync.Mutex
	bills map[string]*entity.Bill
	order []string

	createFunc func(ctx context.Context, bill *entity.Bill) error
	listFunc   func(ctx context.Context) ([]*entity.Bill, error)
}

func newMockBillRepo(bills ...*entity.Bill) *mockBillRepo {
	m := &mockBillRepo{bills: make(map[string]*entity.Bill)}
	for _, b := range bills {
		m.bills[b.ID] = b.Clone()
		m.order = append(m.order, b.ID)
	}
	return m
}

func (m *mockBillRepo) Create(ctx context.Context, bill *entity.Bill) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, bill)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bills[bill.ID] = bill.Clone()
	m.order = append(m.order, bill.ID)
	return nil
}

func (m *mockBillRepo) GetByID(ctx context.Context, id string) (*entity.Bill, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bills[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", entity.ErrBillNotFound, id)
	}
	return b.Clone(), nil
}

func (m *mockBillRepo) List(ctx context.Context) ([]*entity.Bill, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	bills := make([]*entity.Bill, 0, len(m.order))
	for _, id := range m.order {
		bills = append(bills, m.bills[id].Clone())
	}
	return bills, nil
}

func (m *mockBillRepo) Update(ctx context.Context, bill *entity.Bill) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.bills[bill.ID]; !ok {
		return fmt.Errorf("%w: %s", entity.ErrBillNotFound, bill.ID)
	}
	m.bills[bill.ID] = bill.Clone()
	return nil
}

type mockFileStorage struct {
	mu      sync.Mutex
	files   map[string][]byte
	saveErr error
}

func newMockFileStorage() *mockFileStorage {
	return &mockFileStorage{files: make(map[string][]byte)}
}

func (m *mockFileStorage) Save(ctx context.Context, path string, content []byte) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[path] = content
	return nil
}

func (m *mockFileStorage) Read(ctx context.Context, path string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	content, ok := m.files[path]
	if !ok {
		return nil, fmt.Errorf("not found: %s", path)
	}
	return content, nil
}

func (m *mockFileStorage) Exists(ctx context.Context, path string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.files[path]
	return ok
}

func (m *mockFileStorage) Delete(ctx context.Context, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.files, path)
	return nil
}

type mockTxManager struct {
	calls int
}

func (m *mockTxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	m.calls++
	return fn(ctx)
}

type mockLogger struct{}

func (mockLogger) Info(msg string, keysAndValues ...interface{})  {}
func (mockLogger) Error(msg string, keysAndValues ...interface{}) {}

func sequentialIDs(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s%d", prefix, n)
	}
}
