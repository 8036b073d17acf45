package realtime

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/rueidis"
	"github.com/sirupsen/logrus"
)

// PresenceStore tracks which users currently hold a live connection, as
// TTL'd redis keys refreshed by heartbeats. Purely advisory: delivery never
// depends on it.
type PresenceStore struct {
	client rueidis.Client
	ttl    time.Duration
}

func NewPresenceStore(client rueidis.Client, ttl time.Duration) *PresenceStore {
	return &PresenceStore{client: client, ttl: ttl}
}

func presenceKey(userID string) string {
	return "presence:" + userID
}

func (s *PresenceStore) Heartbeat(ctx context.Context, userID string) {
	cmd := s.client.B().Set().
		Key(presenceKey(userID)).
		Value(strconv.FormatInt(time.Now().Unix(), 10)).
		Ex(s.ttl).
		Build()
	if err := s.client.Do(ctx, cmd).Error(); err != nil {
		logrus.WithError(err).WithField("user_id", userID).Warn("presence heartbeat failed")
	}
}

func (s *PresenceStore) Clear(ctx context.Context, userID string) {
	cmd := s.client.B().Del().Key(presenceKey(userID)).Build()
	if err := s.client.Do(ctx, cmd).Error(); err != nil {
		logrus.WithError(err).WithField("user_id", userID).Warn("presence clear failed")
	}
}

func (s *PresenceStore) IsOnline(ctx context.Context, userID string) bool {
	cmd := s.client.B().Exists().Key(presenceKey(userID)).Build()
	n, err := s.client.Do(ctx, cmd).AsInt64()
	if err != nil {
		logrus.WithError(err).WithField("user_id", userID).Warn("presence lookup failed")
		return false
	}
	return n > 0
}
