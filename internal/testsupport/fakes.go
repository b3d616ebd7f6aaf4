package testsupport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
)

// ObjectStore keeps uploaded objects in memory.
type ObjectStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	removed []string

	// PutErr and RemoveErr, when set, fail every call.
	PutErr    error
	RemoveErr error
}

func NewObjectStore() *ObjectStore {
	return &ObjectStore{objects: map[string][]byte{}}
}

func (s *ObjectStore) Put(_ context.Context, key string, r io.Reader, _ int64, _ string) error {
	if s.PutErr != nil {
		return s.PutErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = data
	return nil
}

func (s *ObjectStore) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removed = append(s.removed, key)
	if s.RemoveErr != nil {
		return s.RemoveErr
	}
	if _, ok := s.objects[key]; !ok {
		return errors.New("no such key")
	}
	delete(s.objects, key)
	return nil
}

func (s *ObjectStore) PublicURL(key string) string {
	return "https://cdn.test/" + key
}

func (s *ObjectStore) Has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.objects[key]
	return ok
}

func (s *ObjectStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}

// Removed lists every key a removal was attempted for, in order.
func (s *ObjectStore) Removed() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.removed...)
}

type Event struct {
	Subject string
	Data    json.RawMessage
}

// Publisher records published events.
type Publisher struct {
	mu     sync.Mutex
	events []Event
}

func (p *Publisher) Publish(_ context.Context, subject string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, Event{Subject: subject, Data: payload})
	return nil
}

func (p *Publisher) Close() error { return nil }

func (p *Publisher) Subjects() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Subject)
	}
	return out
}

var (
	JPEG = append([]byte{0xff, 0xd8, 0xff, 0xe0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00}, bytes.Repeat([]byte{0x01}, 64)...)
	PNG  = append([]byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}, bytes.Repeat([]byte{0x02}, 64)...)
)
