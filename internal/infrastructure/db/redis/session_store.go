package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vistoria/inspection-api/internal/core/domain"
)

// expiredGrace keeps an expired session readable for a while so callers can
// tell an expired token from an unknown one.
const expiredGrace = time.Hour

// SessionStore keeps client sessions as Redis hashes.
// Key format: session:<token>
type SessionStore struct {
	client redis.Cmdable
}

func NewSessionStore(client redis.Cmdable) *SessionStore {
	return &SessionStore{client: client}
}

func (s *SessionStore) Create(ctx context.Context, sess *domain.Session) error {
	key := sessionKey(sess.Token)
	_, err := s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HSet(ctx, key,
			"client_id", sess.ClientID,
			"expires_at", formatTime(sess.ExpiresAt),
			"created_at", formatTime(sess.CreatedAt),
			"last_activity_at", formatTime(sess.LastActivityAt),
		)
		p.ExpireAt(ctx, key, sess.ExpiresAt.Add(expiredGrace))
		return nil
	})
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

func (s *SessionStore) Get(ctx context.Context, token string) (*domain.Session, error) {
	vals, err := s.client.HGetAll(ctx, sessionKey(token)).Result()
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	if len(vals) == 0 || vals["client_id"] == "" {
		return nil, domain.ErrSessionNotFound
	}

	sess := &domain.Session{Token: token, ClientID: vals["client_id"]}
	if sess.ExpiresAt, err = parseTime(vals["expires_at"]); err != nil {
		return nil, fmt.Errorf("session expires_at: %w", err)
	}
	// Informational fields; a malformed value is not fatal.
	sess.CreatedAt, _ = parseTime(vals["created_at"])
	sess.LastActivityAt, _ = parseTime(vals["last_activity_at"])
	return sess, nil
}

func (s *SessionStore) Delete(ctx context.Context, token string) error {
	if err := s.client.Del(ctx, sessionKey(token)).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// touchScript updates last_activity_at only while the session key exists, so
// a touch racing a logout or expiry never recreates the hash without a TTL.
var touchScript = redis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 0 then
	return 0
end
redis.call("HSET", KEYS[1], "last_activity_at", ARGV[1])
return 1
`)

// Touch records activity on an existing session. Unknown tokens are ignored.
func (s *SessionStore) Touch(ctx context.Context, token string, at time.Time) error {
	if err := touchScript.Run(ctx, s.client, []string{sessionKey(token)}, formatTime(at)).Err(); err != nil {
		return fmt.Errorf("touch session: %w", err)
	}
	return nil
}

func sessionKey(token string) string { return "session:" + token }

func formatTime(t time.Time) string { return t.UTC().Format(time.RFC3339Nano) }

func parseTime(v string) (time.Time, error) { return time.Parse(time.RFC3339Nano, v) }
