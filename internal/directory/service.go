package directory

import (
	"context"
	"errors"
	"math/rand"
	"strconv"
	"sync"
	"time"
)

const (
	minCode         = 1000
	maxCode         = 9999
	reserveAttempts = 64
)

var (
	ErrNotFound   = errors.New("ROOM_NOT_FOUND")
	ErrNoFreeCode = errors.New("NO_FREE_CODE")
)

// Service allocates 4-digit room codes and tracks which room each player is in.
type Service struct {
	repo Repo
	ttl  time.Duration

	mu  sync.Mutex
	rnd *rand.Rand
	now func() time.Time
}

func NewService(repo Repo, ttl time.Duration) *Service {
	return &Service{
		repo: repo,
		ttl:  ttl,
		rnd:  rand.New(rand.NewSource(time.Now().UnixNano())),
		now:  time.Now,
	}
}

func (s *Service) randomCode() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return strconv.Itoa(minCode + s.rnd.Intn(maxCode-minCode+1))
}

// Allocate reserves a fresh code for a room hosted by hostID.
func (s *Service) Allocate(ctx context.Context, hostID string) (string, error) {
	for i := 0; i < reserveAttempts; i++ {
		code := s.randomCode()
		ok, err := s.repo.Reserve(ctx, Entry{Code: code, HostID: hostID, CreatedAt: s.now()}, s.ttl)
		if err != nil {
			return "", err
		}
		if ok {
			return code, nil
		}
	}
	return "", ErrNoFreeCode
}

func (s *Service) Release(ctx context.Context, code string) error {
	return s.repo.Release(ctx, code)
}

func (s *Service) Bind(ctx context.Context, playerID, code string) error {
	return s.repo.Bind(ctx, playerID, code, s.ttl)
}

func (s *Service) Unbind(ctx context.Context, playerID, code string) error {
	return s.repo.Unbind(ctx, playerID, code)
}

func (s *Service) PlayerRoom(ctx context.Context, playerID string) (string, error) {
	return s.repo.PlayerRoom(ctx, playerID)
}

// Lookup returns the directory view of a room, or ErrNotFound.
func (s *Service) Lookup(ctx context.Context, code string) (*LookupResponse, error) {
	e, err := s.repo.Get(ctx, code)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, ErrNotFound
	}
	players, err := s.repo.Members(ctx, code)
	if err != nil {
		return nil, err
	}
	return &LookupResponse{Code: e.Code, HostID: e.HostID, Players: players, CreatedAt: e.CreatedAt}, nil
}

func (s *Service) Codes(ctx context.Context) ([]string, error) {
	return s.repo.Codes(ctx)
}
