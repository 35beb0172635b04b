package directory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
)

type redisRepo struct {
	rdb *redis.Client
}

func NewRedisRepo(rdb *redis.Client) Repo {
	return &redisRepo{rdb: rdb}
}

// key 约定：
//
//	kv : sl:room:{code}            -> Entry JSON
//	set: sl:room:{code}:players    -> Set(playerID,...)
//	set: sl:rooms                  -> Set(code,...)
//	kv : sl:player:{playerID}      -> code
const roomsKey = "sl:rooms"

func roomKey(code string) string {
	return fmt.Sprintf("sl:room:%s", code)
}
func membersKey(code string) string {
	return fmt.Sprintf("sl:room:%s:players", code)
}
func playerKey(id string) string {
	return fmt.Sprintf("sl:player:%s", id)
}

func (r *redisRepo) Reserve(ctx context.Context, e Entry, ttl time.Duration) (bool, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return false, err
	}
	ok, err := r.rdb.SetNX(ctx, roomKey(e.Code), data, ttl).Result()
	if err != nil || !ok {
		return false, err
	}
	if err := r.rdb.SAdd(ctx, roomsKey, e.Code).Err(); err != nil {
		_ = r.rdb.Del(ctx, roomKey(e.Code)).Err()
		return false, fmt.Errorf("index room %s: %w", e.Code, err)
	}
	return true, nil
}

func (r *redisRepo) Get(ctx context.Context, code string) (*Entry, error) {
	data, err := r.rdb.Get(ctx, roomKey(code)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var e Entry
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("decode room %s: %w", code, err)
	}
	return &e, nil
}

// KEYS[1] = members set, ARGV[1] = code. Player keys are only dropped while
// they still point at this room.
var releaseScript = redis.NewScript(`
	local players = redis.call("SMEMBERS", KEYS[1])
	for _, p in ipairs(players) do
		local key = "sl:player:" .. p
		if redis.call("GET", key) == ARGV[1] then
			redis.call("DEL", key)
		end
	end
	redis.call("DEL", KEYS[1])
	return #players
`)

func (r *redisRepo) Release(ctx context.Context, code string) error {
	if err := releaseScript.Run(ctx, r.rdb, []string{membersKey(code)}, code).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return err
	}
	p := r.rdb.Pipeline()
	p.Del(ctx, roomKey(code))
	p.SRem(ctx, roomsKey, code)
	_, err := p.Exec(ctx)
	return err
}

func (r *redisRepo) Bind(ctx context.Context, playerID, code string, ttl time.Duration) error {
	old, err := r.PlayerRoom(ctx, playerID)
	if err != nil {
		return err
	}
	p := r.rdb.TxPipeline()
	if old != "" && old != code {
		p.SRem(ctx, membersKey(old), playerID)
	}
	p.Set(ctx, playerKey(playerID), code, ttl)
	p.SAdd(ctx, membersKey(code), playerID)
	p.Expire(ctx, membersKey(code), ttl)
	_, err = p.Exec(ctx)
	return err
}

// KEYS[1] = player key, KEYS[2] = members set, ARGV[1] = code, ARGV[2] = player
var unbindScript = redis.NewScript(`
	if redis.call("GET", KEYS[1]) == ARGV[1] then
		redis.call("DEL", KEYS[1])
	end
	redis.call("SREM", KEYS[2], ARGV[2])
	return 1
`)

func (r *redisRepo) Unbind(ctx context.Context, playerID, code string) error {
	return unbindScript.Run(ctx, r.rdb, []string{playerKey(playerID), membersKey(code)}, code, playerID).Err()
}

func (r *redisRepo) PlayerRoom(ctx context.Context, playerID string) (string, error) {
	val, err := r.rdb.Get(ctx, playerKey(playerID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return val, nil
}

func (r *redisRepo) Members(ctx context.Context, code string) ([]string, error) {
	out, err := r.rdb.SMembers(ctx, membersKey(code)).Result()
	if err != nil {
		return nil, err
	}
	sort.Strings(out)
	return out, nil
}

// Codes also prunes codes whose room key has expired.
func (r *redisRepo) Codes(ctx context.Context) ([]string, error) {
	codes, err := r.rdb.SMembers(ctx, roomsKey).Result()
	if err != nil {
		return nil, err
	}
	live := make([]string, 0, len(codes))
	for _, c := range codes {
		n, err := r.rdb.Exists(ctx, roomKey(c)).Result()
		if err != nil {
			return nil, err
		}
		if n == 0 {
			_ = r.rdb.SRem(ctx, roomsKey, c).Err()
			continue
		}
		live = append(live, c)
	}
	sort.Strings(live)
	return live, nil
}
