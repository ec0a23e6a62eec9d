package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// RoomLocker serialises booking writes per room. Lock blocks until the key
// is held or ctx ends; the returned func releases it.
type RoomLocker interface {
	Lock(ctx context.Context, key string) (func(), error)
}

func roomLockKey(hotelID, roomID uint) string {
	return fmt.Sprintf("hotel:%d:room:%d", hotelID, roomID)
}

// lockRooms takes the locks for every room in ids in ascending order so two
// requests touching the same pair of rooms cannot deadlock.
func lockRooms(ctx context.Context, locker RoomLocker, hotelID uint, ids ...uint) (func(), error) {
	sorted := uniqueSorted(ids)
	releases := make([]func(), 0, len(sorted))
	unlockAll := func() {
		for i := len(releases) - 1; i >= 0; i-- {
			releases[i]()
		}
	}
	for _, id := range sorted {
		release, err := locker.Lock(ctx, roomLockKey(hotelID, id))
		if err != nil {
			unlockAll()
			return nil, err
		}
		releases = append(releases, release)
	}
	return unlockAll, nil
}

func uniqueSorted(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// LocalRoomLocker is an in-process keyed mutex. Entries are dropped once no
// goroutine holds or waits for them.
type LocalRoomLocker struct {
	mu    sync.Mutex
	slots map[string]*lockSlot
}

type lockSlot struct {
	ch   chan struct{}
	refs int
}

func NewLocalRoomLocker() *LocalRoomLocker {
	return &LocalRoomLocker{slots: map[string]*lockSlot{}}
}

func (l *LocalRoomLocker) Lock(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	slot, ok := l.slots[key]
	if !ok {
		slot = &lockSlot{ch: make(chan struct{}, 1)}
		l.slots[key] = slot
	}
	slot.refs++
	l.mu.Unlock()

	select {
	case slot.ch <- struct{}{}:
	case <-ctx.Done():
		l.drop(key, slot)
		return nil, errors.Wrap(ctx.Err(), "acquire room lock")
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-slot.ch
			l.drop(key, slot)
		})
	}, nil
}

func (l *LocalRoomLocker) drop(key string, slot *lockSlot) {
	l.mu.Lock()
	defer l.mu.Unlock()
	slot.refs--
	if slot.refs == 0 {
		delete(l.slots, key)
	}
}

// releaseScript deletes the key only if it still carries our token, so an
// expired lock taken over by another instance is left alone.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisRoomLocker is a lease lock shared by every API instance. The TTL
// bounds how long a crashed holder can block a room.
type RedisRoomLocker struct {
	client     *redis.Client
	log        logrus.FieldLogger
	ttl        time.Duration
	retryDelay time.Duration
	prefix     string
}

func NewRedisRoomLocker(client *redis.Client, ttl time.Duration, log logrus.FieldLogger) *RedisRoomLocker {
	if ttl <= 0 {
		ttl = 10 * time.Second
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &RedisRoomLocker{client: client, log: log, ttl: ttl, retryDelay: 25 * time.Millisecond, prefix: "pms:lock:"}
}

func (l *RedisRoomLocker) Lock(ctx context.Context, key string) (func(), error) {
	redisKey := l.prefix + key
	token := uuid.NewString()
	delay := l.retryDelay
	for {
		ok, err := l.client.SetNX(ctx, redisKey, token, l.ttl).Result()
		if err != nil {
			return nil, errors.Wrap(err, "acquire room lock")
		}
		if ok {
			break
		}
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, errors.Wrap(ctx.Err(), "acquire room lock")
		case <-timer.C:
		}
		if delay < 400*time.Millisecond {
			delay *= 2
		}
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			// released with a fresh context: the request one may be done
			relCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			deleted, err := releaseScript.Run(relCtx, l.client, []string{redisKey}, token).Int()
			switch {
			case err != nil:
				l.log.WithError(err).WithField("lock", redisKey).Warn("room lock release failed; it expires with its ttl")
			case deleted == 0:
				l.log.WithField("lock", redisKey).Warn("room lock expired before release")
			}
		})
	}, nil
}
