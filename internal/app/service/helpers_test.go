package service

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/samaraie/linktree-backend/internal/app/model"
	"github.com/samaraie/linktree-backend/internal/app/repository"
	"github.com/samaraie/linktree-backend/pkg/mailer"
	"github.com/samaraie/linktree-backend/pkg/util"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testBaseURL = "https://social.example.com"

var tokenInURL = regexp.MustCompile(`/reset-password\?token=([0-9a-f]{64})`)

// fakeClock is a settable time source shared by both services
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type fixture struct {
	store  *repository.MemoryStore
	outbox *mailer.Outbox
	clock  *fakeClock
	auth   AuthService
	reset  PasswordResetService
}

func testHasher() util.PasswordHasher {
	return util.NewBcryptHasher(bcrypt.MinCost)
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		store:  repository.NewMemoryStore(),
		outbox: mailer.NewOutbox(),
		clock:  newFakeClock(),
	}
	f.auth = NewAuthService(f.store.Users(), testHasher(), TokenConfig{
		Secret:        "test-jwt-secret",
		AccessExpiry:  15 * time.Minute,
		RefreshExpiry: 7 * 24 * time.Hour,
	}, WithClock(f.clock.Now))
	f.reset = NewPasswordResetService(
		f.store.Users(),
		f.store.ResetTokens(),
		f.store,
		f.outbox,
		testHasher(),
		PasswordResetConfig{BaseURL: testBaseURL + "/", AppName: "Social Link Tree"},
		WithClock(f.clock.Now),
	)
	return f
}

func (f *fixture) createUser(t *testing.T, email, password string) *model.AdminUser {
	t.Helper()
	user, err := f.auth.CreateUser(context.Background(), email, password, "Test Admin", model.RoleAdmin)
	require.NoError(t, err)
	return user
}

// requestToken runs RequestReset and pulls the token out of the mailed link
func (f *fixture) requestToken(t *testing.T, email string) string {
	t.Helper()
	require.NoError(t, f.reset.RequestReset(context.Background(), email))
	msg, ok := f.outbox.Last()
	require.True(t, ok, "no reset e-mail sent")
	return extractToken(t, msg)
}

func extractToken(t *testing.T, msg mailer.Message) string {
	t.Helper()
	m := tokenInURL.FindStringSubmatch(msg.TextBody)
	require.Len(t, m, 2, "reset link not found in e-mail body")
	return m[1]
}

// capturingMailer keeps the message and then fails delivery
type capturingMailer struct {
	last mailer.Message
	err  error
}

func (m *capturingMailer) Send(ctx context.Context, msg mailer.Message) error {
	m.last = msg
	return m.err
}

// countingUsers and countingTokens count every store call
type countingUsers struct {
	repository.UserRepository
	calls *atomic.Int32
}

func (r countingUsers) Create(ctx context.Context, u *model.AdminUser) error {
	r.calls.Add(1)
	return r.UserRepository.Create(ctx, u)
}

func (r countingUsers) FindByID(ctx context.Context, id uint) (*model.AdminUser, error) {
	r.calls.Add(1)
	return r.UserRepository.FindByID(ctx, id)
}

func (r countingUsers) FindByEmail(ctx context.Context, email string) (*model.AdminUser, error) {
	r.calls.Add(1)
	return r.UserRepository.FindByEmail(ctx, email)
}

func (r countingUsers) FindActiveByEmail(ctx context.Context, email string) (*model.AdminUser, error) {
	r.calls.Add(1)
	return r.UserRepository.FindActiveByEmail(ctx, email)
}

func (r countingUsers) UpdatePasswordHash(ctx context.Context, id uint, hash string) error {
	r.calls.Add(1)
	return r.UserRepository.UpdatePasswordHash(ctx, id, hash)
}

func (r countingUsers) UpdateLastLogin(ctx context.Context, id uint, at time.Time) error {
	r.calls.Add(1)
	return r.UserRepository.UpdateLastLogin(ctx, id, at)
}

type countingTokens struct {
	repository.ResetTokenRepository
	calls *atomic.Int32
}

func (r countingTokens) Create(ctx context.Context, tok *model.ResetToken) error {
	r.calls.Add(1)
	return r.ResetTokenRepository.Create(ctx, tok)
}

func (r countingTokens) FindByToken(ctx context.Context, token string) (*model.ResetToken, error) {
	r.calls.Add(1)
	return r.ResetTokenRepository.FindByToken(ctx, token)
}

func (r countingTokens) MarkUsed(ctx context.Context, token string, at time.Time) error {
	r.calls.Add(1)
	return r.ResetTokenRepository.MarkUsed(ctx, token, at)
}

func (r countingTokens) ReleaseUsed(ctx context.Context, token string) error {
	r.calls.Add(1)
	return r.ResetTokenRepository.ReleaseUsed(ctx, token)
}

func (r countingTokens) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	r.calls.Add(1)
	return r.ResetTokenRepository.DeleteExpired(ctx, before)
}

type countingTx struct {
	repository.Transactor
	calls *atomic.Int32
}

func (t countingTx) WithinTransaction(ctx context.Context, fn func(repository.Repositories) error) error {
	t.calls.Add(1)
	return t.Transactor.WithinTransaction(ctx, fn)
}

var errStoreDown = errors.New("connection refused")

// brokenUsers fails every call
type brokenUsers struct {
	repository.UserRepository
}

func (brokenUsers) FindActiveByEmail(ctx context.Context, email string) (*model.AdminUser, error) {
	return nil, errStoreDown
}

func (brokenUsers) UpdatePasswordHash(ctx context.Context, id uint, hash string) error {
	return errStoreDown
}

// brokenCredentialTx runs fn with a user store whose writes fail
type brokenCredentialTx struct {
	inner repository.Transactor
}

func (t brokenCredentialTx) WithinTransaction(ctx context.Context, fn func(repository.Repositories) error) error {
	return t.inner.WithinTransaction(ctx, func(repos repository.Repositories) error {
		repos.Users = brokenUsers{UserRepository: repos.Users}
		return fn(repos)
	})
}
