package services

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"firebase.google.com/go/v4/messaging"
)

// fakeMessenger records every provider call and fails the tokens listed in failTokens.
type fakeMessenger struct {
	mu             sync.Mutex
	failTokens     map[string]string
	multicastErr   error
	sent           []*messaging.Message
	multicasts     []*messaging.MulticastMessage
	multicastShort bool
}

func newFakeMessenger() *fakeMessenger {
	return &fakeMessenger{failTokens: map[string]string{}}
}

func (f *fakeMessenger) Send(_ context.Context, msg *messaging.Message) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, msg)
	if reason, ok := f.failTokens[msg.Token]; ok {
		return "", errors.New(reason)
	}
	return "projects/demo/messages/" + msg.Token, nil
}

func (f *fakeMessenger) SendEachForMulticast(_ context.Context, msg *messaging.MulticastMessage) (*messaging.BatchResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.multicasts = append(f.multicasts, msg)
	if f.multicastErr != nil {
		return nil, f.multicastErr
	}

	tokens := msg.Tokens
	if f.multicastShort && len(tokens) > 0 {
		tokens = tokens[:len(tokens)-1]
	}
	resp := &messaging.BatchResponse{}
	for _, token := range tokens {
		if reason, ok := f.failTokens[token]; ok {
			resp.FailureCount++
			resp.Responses = append(resp.Responses, &messaging.SendResponse{Error: errors.New(reason)})
			continue
		}
		resp.SuccessCount++
		resp.Responses = append(resp.Responses, &messaging.SendResponse{Success: true, MessageID: "projects/demo/messages/" + token})
	}
	return resp, nil
}

func (f *fakeMessenger) sendCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

type fakeTokenCache struct {
	mu         sync.Mutex
	suppressed map[string]bool
}

func (c *fakeTokenCache) IsTokenSuppressed(_ context.Context, token string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.suppressed[token], nil
}

func (c *fakeTokenCache) SuppressToken(_ context.Context, token string, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.suppressed[token] = true
	return nil
}

// fakeIdempotencyStore keeps JSON payloads in memory; setErr fails every call.
type fakeIdempotencyStore struct {
	mu     sync.Mutex
	data   map[string][]byte
	setErr error
}

func newFakeIdempotencyStore() *fakeIdempotencyStore {
	return &fakeIdempotencyStore{data: map[string][]byte{}}
}

func (s *fakeIdempotencyStore) SetNX(_ context.Context, key string, _ time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.setErr != nil {
		return false, s.setErr
	}
	if _, ok := s.data[key]; ok {
		return false, nil
	}
	s.data[key] = []byte("1")
	return true, nil
}

func (s *fakeIdempotencyStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

func (s *fakeIdempotencyStore) GetJSON(_ context.Context, key string, dest interface{}) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	raw, ok := s.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (s *fakeIdempotencyStore) SetJSON(_ context.Context, key string, value interface{}, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = raw
	return nil
}
