package repository

import (
	"context"
	"sync"
	"time"

	"github.com/samaraie/linktree-backend/internal/app/model"
)

// MemoryStore is an in-process implementation of every repository plus a
// Transactor. Writes made inside WithinTransaction are undone when fn fails.
type MemoryStore struct {
	mu     sync.Mutex
	txMu   sync.Mutex
	nextID uint
	users  map[uint]model.AdminUser
	tokens map[string]model.ResetToken
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:  make(map[uint]model.AdminUser),
		tokens: make(map[string]model.ResetToken),
	}
}

func (s *MemoryStore) Users() UserRepository {
	return &memoryUsers{s: s}
}

func (s *MemoryStore) ResetTokens() ResetTokenRepository {
	return &memoryTokens{s: s}
}

func (s *MemoryStore) WithinTransaction(ctx context.Context, fn func(repos Repositories) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	j := &journal{}
	err := fn(Repositories{
		Users:       &memoryUsers{s: s, j: j},
		ResetTokens: &memoryTokens{s: s, j: j},
	})
	if err != nil {
		s.mu.Lock()
		j.rollback()
		s.mu.Unlock()
	}
	return err
}

// journal collects undo steps; they run under s.mu in reverse order.
type journal struct {
	undo []func()
}

func (j *journal) record(fn func()) {
	if j != nil {
		j.undo = append(j.undo, fn)
	}
}

func (j *journal) rollback() {
	for i := len(j.undo) - 1; i >= 0; i-- {
		j.undo[i]()
	}
	j.undo = nil
}

type memoryUsers struct {
	s *MemoryStore
	j *journal
}

func (r *memoryUsers) Create(ctx context.Context, user *model.AdminUser) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == user.Email {
			return ErrDuplicate
		}
	}

	s.nextID++
	now := time.Now()
	user.ID = s.nextID
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now
	s.users[user.ID] = *user

	id := user.ID
	r.j.record(func() { delete(s.users, id) })
	return nil
}

func (r *memoryUsers) FindByID(ctx context.Context, id uint) (*model.AdminUser, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (r *memoryUsers) FindByEmail(ctx context.Context, email string) (*model.AdminUser, error) {
	return r.find(func(u model.AdminUser) bool { return u.Email == email })
}

func (r *memoryUsers) FindActiveByEmail(ctx context.Context, email string) (*model.AdminUser, error) {
	return r.find(func(u model.AdminUser) bool { return u.Email == email && u.IsActive })
}

func (r *memoryUsers) find(match func(model.AdminUser) bool) (*model.AdminUser, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.users {
		if match(u) {
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (r *memoryUsers) UpdatePasswordHash(ctx context.Context, id uint, hash string) error {
	return r.update(id, true, func(u *model.AdminUser) {
		u.PasswordHash = hash
		u.UpdatedAt = time.Now()
	})
}

func (r *memoryUsers) UpdateLastLogin(ctx context.Context, id uint, at time.Time) error {
	return r.update(id, false, func(u *model.AdminUser) {
		u.LastLogin = &at
	})
}

func (r *memoryUsers) update(id uint, activeOnly bool, apply func(*model.AdminUser)) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, ok := s.users[id]
	if !ok || (activeOnly && !prev.IsActive) {
		return ErrNotFound
	}

	next := prev
	apply(&next)
	s.users[id] = next
	r.j.record(func() { s.users[id] = prev })
	return nil
}

// SetActive toggles an account outside any transaction.
func (s *MemoryStore) SetActive(id uint, active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[id]; ok {
		u.IsActive = active
		s.users[id] = u
	}
}

type memoryTokens struct {
	s *MemoryStore
	j *journal
}

func (r *memoryTokens) Create(ctx context.Context, token *model.ResetToken) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.tokens[token.Token]; exists {
		return ErrDuplicate
	}

	s.nextID++
	token.ID = s.nextID
	if token.CreatedAt.IsZero() {
		token.CreatedAt = token.IssuedAt
	}
	s.tokens[token.Token] = *token

	key := token.Token
	r.j.record(func() { delete(s.tokens, key) })
	return nil
}

func (r *memoryTokens) FindByToken(ctx context.Context, token string) (*model.ResetToken, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	t, ok := r.s.tokens[token]
	if !ok {
		return nil, ErrNotFound
	}
	return &t, nil
}

func (r *memoryTokens) MarkUsed(ctx context.Context, token string, usedAt time.Time) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, ok := s.tokens[token]
	if !ok || prev.Used || prev.IsExpired(usedAt) {
		return ErrTokenNotClaimable
	}

	next := prev
	next.Used = true
	next.UsedAt = &usedAt
	s.tokens[token] = next
	r.j.record(func() { s.tokens[token] = prev })
	return nil
}

func (r *memoryTokens) ReleaseUsed(ctx context.Context, token string) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, ok := s.tokens[token]
	if !ok || !prev.Used {
		return nil
	}

	next := prev
	next.Used = false
	next.UsedAt = nil
	s.tokens[token] = next
	r.j.record(func() { s.tokens[token] = prev })
	return nil
}

func (r *memoryTokens) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for key, t := range s.tokens {
		if t.IsExpired(before) {
			removed := t
			delete(s.tokens, key)
			r.j.record(func() { s.tokens[key] = removed })
			n++
		}
	}
	return n, nil
}
