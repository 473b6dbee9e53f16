package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	DefaultTTL       = 24 * time.Hour
	defaultKeyPrefix = "sitedrop:session:"
)

// RedisStore keeps sessions in Redis as JSON documents with a TTL, so pending
// uploads survive a restart of a single replica but not past the TTL.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{
		client: client,
		ttl:    ttl,
		prefix: defaultKeyPrefix,
	}
}

type stagedFileDoc struct {
	Name    string `json:"name"`
	Content []byte `json:"content"`
}

type sessionDoc struct {
	Kind     Kind            `json:"kind"`
	Mode     UploadMode      `json:"mode,omitempty"`
	SiteName string          `json:"site_name,omitempty"`
	Files    []stagedFileDoc `json:"files,omitempty"`
	Action   AdminAction     `json:"action,omitempty"`
}

func (s *RedisStore) key(chatID int64) string {
	return s.prefix + strconv.FormatInt(chatID, 10)
}

func (s *RedisStore) Get(ctx context.Context, chatID int64) (State, error) {
	raw, err := s.client.Get(ctx, s.key(chatID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Idle{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get session %d: %w", chatID, err)
	}

	var doc sessionDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode session %d: %w", chatID, err)
	}
	return decodeState(doc)
}

func (s *RedisStore) Put(ctx context.Context, chatID int64, st State) error {
	if IsIdle(st) {
		return s.Clear(ctx, chatID)
	}

	raw, err := json.Marshal(encodeState(st))
	if err != nil {
		return fmt.Errorf("encode session %d: %w", chatID, err)
	}
	if err := s.client.Set(ctx, s.key(chatID), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set session %d: %w", chatID, err)
	}
	return nil
}

func (s *RedisStore) Clear(ctx context.Context, chatID int64) error {
	if err := s.client.Del(ctx, s.key(chatID)).Err(); err != nil {
		return fmt.Errorf("redis del session %d: %w", chatID, err)
	}
	return nil
}

func (s *RedisStore) IsReady(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Name() string {
	return "SessionStore[redis]"
}

func encodeState(st State) sessionDoc {
	switch st := st.(type) {
	case AwaitingSiteName:
		return sessionDoc{Kind: KindAwaitingSiteName, Mode: st.Mode}
	case AwaitingFiles:
		files := make([]stagedFileDoc, len(st.Files))
		for i, f := range st.Files {
			files[i] = stagedFileDoc{Name: f.Name, Content: f.Content}
		}
		return sessionDoc{Kind: KindAwaitingFiles, Mode: st.Mode, SiteName: st.SiteName, Files: files}
	case AwaitingSlug:
		return sessionDoc{Kind: KindAwaitingSlug, Action: st.Action}
	default:
		return sessionDoc{Kind: KindIdle}
	}
}

func decodeState(doc sessionDoc) (State, error) {
	switch doc.Kind {
	case KindIdle, "":
		return Idle{}, nil
	case KindAwaitingSiteName:
		return AwaitingSiteName{Mode: doc.Mode}, nil
	case KindAwaitingFiles:
		if doc.SiteName == "" {
			return nil, errors.New("stored awaiting_files session has no site name")
		}
		var files []StagedFile
		for _, f := range doc.Files {
			files = append(files, StagedFile{Name: f.Name, Content: f.Content})
		}
		return AwaitingFiles{Mode: doc.Mode, SiteName: doc.SiteName, Files: files}, nil
	case KindAwaitingSlug:
		return AwaitingSlug{Action: doc.Action}, nil
	default:
		return nil, fmt.Errorf("unknown session kind %q", doc.Kind)
	}
}
