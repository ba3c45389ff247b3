package notification

import (
	"sync"
)

// Service keeps the in-process notification feed the UI polls. The feed is
// bounded so a long session cannot grow it without limit.
type Service struct {
	mu            sync.Mutex
	notifications []Payload
	max           int
}

func NewService() *Service {
	return &Service{
		notifications: make([]Payload, 0),
		max:           200,
	}
}

func (s *Service) Push(p Payload) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications = append(s.notifications, p)
	if len(s.notifications) > s.max {
		s.notifications = s.notifications[len(s.notifications)-s.max:]
	}
}

func (s *Service) Notifications() []Payload {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Payload, len(s.notifications))
	copy(out, s.notifications)
	return out
}

func (s *Service) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications = s.notifications[:0]
}
