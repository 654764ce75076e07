package repository

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/samaraie/linktree-backend/internal/app/model"
	"github.com/samaraie/linktree-backend/pkg/logger"
)

const (
	resetTokenKeyPrefix = "reset_token:"

	// ExpiredTokenRetention keeps expired tokens around long enough to be
	// reported as expired rather than unknown.
	ExpiredTokenRetention = 24 * time.Hour
)

// Each token is a hash; timestamps are unix milliseconds.
var (
	createTokenScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 1 then
  return 0
end
redis.call('HSET', KEYS[1], 'user_id', ARGV[1], 'email', ARGV[2], 'issued_at', ARGV[3], 'expires_at', ARGV[4], 'used', '0')
redis.call('PEXPIREAT', KEYS[1], ARGV[5])
return 1
`)

	markUsedScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
  return 0
end
if redis.call('HGET', KEYS[1], 'used') == '1' then
  return 0
end
if tonumber(redis.call('HGET', KEYS[1], 'expires_at')) <= tonumber(ARGV[1]) then
  return 0
end
redis.call('HSET', KEYS[1], 'used', '1', 'used_at', ARGV[1])
return 1
`)

	releaseUsedScript = redis.NewScript(`
if redis.call('HGET', KEYS[1], 'used') == '1' then
  redis.call('HSET', KEYS[1], 'used', '0')
  redis.call('HDEL', KEYS[1], 'used_at')
  return 1
end
return 0
`)
)

type redisResetTokenRepository struct {
	client redis.UniversalClient
}

// NewRedisResetTokenRepository stores reset tokens as redis hashes. Records
// are dropped by redis itself ExpiredTokenRetention after they expire.
func NewRedisResetTokenRepository(client redis.UniversalClient) ResetTokenRepository {
	return &redisResetTokenRepository{client: client}
}

func resetTokenKey(token string) string {
	return resetTokenKeyPrefix + token
}

func (r *redisResetTokenRepository) Create(ctx context.Context, token *model.ResetToken) error {
	logger.Debug("Creating reset token in redis", map[string]interface{}{
		"user_id": token.UserID,
		"email":   token.Email,
	})

	if token.CreatedAt.IsZero() {
		token.CreatedAt = token.IssuedAt
	}
	dropAt := token.ExpiresAt.Add(ExpiredTokenRetention)

	created, err := createTokenScript.Run(ctx, r.client, []string{resetTokenKey(token.Token)},
		token.UserID,
		token.Email,
		token.IssuedAt.UnixMilli(),
		token.ExpiresAt.UnixMilli(),
		dropAt.UnixMilli(),
	).Int()
	if err != nil {
		logger.Error("Failed to create reset token in redis", err, map[string]interface{}{
			"user_id": token.UserID,
		})
		return err
	}
	if created == 0 {
		return ErrDuplicate
	}
	return nil
}

func (r *redisResetTokenRepository) FindByToken(ctx context.Context, token string) (*model.ResetToken, error) {
	fields, err := r.client.HGetAll(ctx, resetTokenKey(token)).Result()
	if err != nil {
		logger.Error("Failed to find reset token in redis", err, nil)
		return nil, err
	}
	if len(fields) == 0 {
		return nil, ErrNotFound
	}

	reset, err := decodeResetToken(token, fields)
	if err != nil {
		logger.Error("Corrupt reset token record in redis", err, nil)
		return nil, err
	}
	return reset, nil
}

func (r *redisResetTokenRepository) MarkUsed(ctx context.Context, token string, usedAt time.Time) error {
	claimed, err := markUsedScript.Run(ctx, r.client, []string{resetTokenKey(token)}, usedAt.UnixMilli()).Int()
	if err != nil {
		logger.Error("Failed to mark reset token as used in redis", err, nil)
		return err
	}
	if claimed == 0 {
		return ErrTokenNotClaimable
	}
	return nil
}

func (r *redisResetTokenRepository) ReleaseUsed(ctx context.Context, token string) error {
	if err := releaseUsedScript.Run(ctx, r.client, []string{resetTokenKey(token)}).Err(); err != nil {
		logger.Error("Failed to release reset token in redis", err, nil)
		return err
	}
	return nil
}

// DeleteExpired is a no-op: redis evicts tokens through their key expiry.
func (r *redisResetTokenRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	return 0, nil
}

func decodeResetToken(token string, fields map[string]string) (*model.ResetToken, error) {
	userID, err := strconv.ParseUint(fields["user_id"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("user_id: %w", err)
	}
	issuedAt, err := parseMillis(fields["issued_at"])
	if err != nil {
		return nil, fmt.Errorf("issued_at: %w", err)
	}
	expiresAt, err := parseMillis(fields["expires_at"])
	if err != nil {
		return nil, fmt.Errorf("expires_at: %w", err)
	}

	reset := &model.ResetToken{
		Token:     token,
		UserID:    uint(userID),
		Email:     fields["email"],
		IssuedAt:  issuedAt,
		ExpiresAt: expiresAt,
		Used:      fields["used"] == "1",
		CreatedAt: issuedAt,
	}
	if raw, ok := fields["used_at"]; ok {
		usedAt, err := parseMillis(raw)
		if err != nil {
			return nil, fmt.Errorf("used_at: %w", err)
		}
		reset.UsedAt = &usedAt
	}
	return reset, nil
}

func parseMillis(s string) (time.Time, error) {
	ms, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return time.Time{}, err
	}
	return time.UnixMilli(ms), nil
}
