package controller

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/garyjia/billed/internal/application/port"
	"github.com/garyjia/billed/internal/domain/entity"
)

type fakeDocument struct {
	mu     sync.Mutex
	bodies []string
	modals map[string]string
	opened int
}

func newFakeDocument() *fakeDocument {
	return &fakeDocument{modals: make(map[string]string)}
}

func (d *fakeDocument) SetBody(markup string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.bodies = append(d.bodies, markup)
}

func (d *fakeDocument) ShowModal(id, markup string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.modals[id] = markup
	d.opened++
}

func (d *fakeDocument) Body() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.bodies) == 0 {
		return ""
	}
	return d.bodies[len(d.bodies)-1]
}

func (d *fakeDocument) Modal(id string) (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	m, ok := d.modals[id]
	return m, ok
}

type fakeStore struct {
	mu    sync.Mutex
	calls []string

	listFunc   func(ctx context.Context) ([]*entity.Bill, error)
	createFunc func(ctx context.Context, bill *entity.Bill) ([]*entity.Bill, error)
	uploadFunc func(ctx context.Context, upload port.Upload) (*port.UploadedFile, error)

	created  []*entity.Bill
	uploaded [][]byte
}

func (s *fakeStore) record(call string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, call)
}

func (s *fakeStore) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

func (s *fakeStore) List(ctx context.Context) ([]*entity.Bill, error) {
	s.record("list")
	if s.listFunc != nil {
		return s.listFunc(ctx)
	}
	return nil, nil
}

func (s *fakeStore) Create(ctx context.Context, bill *entity.Bill) ([]*entity.Bill, error) {
	s.record("create")
	if s.createFunc != nil {
		return s.createFunc(ctx, bill)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.created = append(s.created, bill)
	return []*entity.Bill{bill}, nil
}

func (s *fakeStore) Update(ctx context.Context, bill *entity.Bill) (*entity.Bill, error) {
	s.record("update")
	return bill, nil
}

func (s *fakeStore) Upload(ctx context.Context, upload port.Upload) (*port.UploadedFile, error) {
	s.record("upload")
	content, err := io.ReadAll(upload.Content)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.uploaded = append(s.uploaded, content)
	s.mu.Unlock()
	if s.uploadFunc != nil {
		return s.uploadFunc(ctx, upload)
	}
	return &port.UploadedFile{FileURL: "/files/" + upload.FileName, FileName: upload.FileName}, nil
}

type fakeKV struct {
	items map[string]string
	err   error
}

func (kv *fakeKV) GetItem(ctx context.Context, key string) (string, error) {
	if kv.err != nil {
		return "", kv.err
	}
	return kv.items[key], nil
}

func (kv *fakeKV) SetItem(ctx context.Context, key, value string) error {
	if kv.items == nil {
		kv.items = make(map[string]string)
	}
	kv.items[key] = value
	return nil
}

func employeeKV(email string) *fakeKV {
	return &fakeKV{items: map[string]string{
		entity.SessionKey: `{"type":"Employee","email":"` + email + `"}`,
	}}
}

type navigator struct {
	mu     sync.Mutex
	routes []string
}

func (n *navigator) Navigate(route string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.routes = append(n.routes, route)
}

func (n *navigator) Routes() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.routes...)
}

var errBoom = errors.New("boom")
