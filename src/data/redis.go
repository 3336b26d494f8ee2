package data

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	noncePrefix    = "nonce:"
	voteLockPrefix = "votelock:"

	nonceTTL    = 5 * time.Minute
	voteLockTTL = 30 * time.Second
)

func MustRedis(url string) *redis.Client {
	opt, err := redis.ParseURL(url)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}
	return redis.NewClient(opt)
}

// Nonces stores short-lived login challenges keyed by principal.
type Nonces struct{ rdb *redis.Client }

func NewNonces(rdb *redis.Client) Nonces { return Nonces{rdb: rdb} }

func (n Nonces) Set(ctx context.Context, principal, nonce string) error {
	return n.rdb.Set(ctx, noncePrefix+principal, nonce, nonceTTL).Err()
}

// GetAndDel consumes the challenge so it can only be verified once.
func (n Nonces) GetAndDel(ctx context.Context, principal string) (string, error) {
	return n.rdb.GetDel(ctx, noncePrefix+principal).Result()
}

// VoteLocks guards against overlapping vote submissions for the same
// proposal+principal pair. The TTL releases abandoned locks.
type VoteLocks struct{ rdb *redis.Client }

func NewVoteLocks(rdb *redis.Client) VoteLocks { return VoteLocks{rdb: rdb} }

// Acquire returns false while an earlier submission is still in flight.
func (l VoteLocks) Acquire(ctx context.Context, proposalID, principal string) (bool, error) {
	return l.rdb.SetNX(ctx, voteLockPrefix+proposalID+":"+principal, "1", voteLockTTL).Result()
}

// Release frees the lock once the canister call resolved.
func (l VoteLocks) Release(ctx context.Context, proposalID, principal string) {
	if err := l.rdb.Del(ctx, voteLockPrefix+proposalID+":"+principal).Err(); err != nil {
		log.Printf("release vote lock %s/%s: %v", proposalID, principal, err)
	}
}
