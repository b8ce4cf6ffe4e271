package permission

import (
	"context"
	"reminderengine/internal/core/domain/reminder"
	"sync"
)

type key struct {
	owner reminder.OwnerID
	kind  Kind
}

type FakeService struct {
	QueryError error
	states     map[key]State
	lock       sync.Mutex
}

func NewFakeService() *FakeService {
	return &FakeService{states: make(map[key]State)}
}

func (s *FakeService) Query(ctx context.Context, owner reminder.OwnerID, kind Kind) (State, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.QueryError != nil {
		return StatePrompt, s.QueryError
	}
	state, ok := s.states[key{owner: owner, kind: kind}]
	if !ok {
		return StatePrompt, nil
	}
	return state, nil
}

func (s *FakeService) Update(ctx context.Context, owner reminder.OwnerID, kind Kind, state State) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.states[key{owner: owner, kind: kind}] = state
	return nil
}

// GrantAll grants every known permission kind to the owner.
func (s *FakeService) GrantAll(owner reminder.OwnerID) *FakeService {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.states[key{owner: owner, kind: KindAudio}] = StateGranted
	s.states[key{owner: owner, kind: KindSystemNotification}] = StateGranted
	return s
}
