// Package data holds the gateway's transient state: redis-backed auth
// nonces and vote locks, and the in-memory proposal snapshot.
package data

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/voteverse/vote-gateway/src/proposal"
)

// ProposalFetcher is the slice of the canister client the source needs.
type ProposalFetcher interface {
	GetProposals(ctx context.Context) ([]proposal.Raw, error)
}

// Source serves the normalized proposal list. It refetches lazily once the
// snapshot is older than ttl, and when the backend is down it keeps serving
// the last good snapshot instead of overwriting it with nothing. Mutations
// (votes, new proposals) call Invalidate so the next read refetches.
type Source struct {
	fetcher ProposalFetcher
	ttl     time.Duration
	now     func() time.Time

	mu        sync.RWMutex
	snapshot  []proposal.Proposal
	fetchedAt time.Time
	haveData  bool
}

func NewSource(fetcher ProposalFetcher, ttl time.Duration) *Source {
	if ttl <= 0 {
		ttl = 15 * time.Second
	}
	return &Source{fetcher: fetcher, ttl: ttl, now: time.Now}
}

// Proposals returns the current normalized list. stale reports that the
// backend could not be reached and the previous snapshot is being served;
// err is only non-nil when there is no snapshot to fall back to.
func (s *Source) Proposals(ctx context.Context) (ps []proposal.Proposal, stale bool, err error) {
	s.mu.RLock()
	if s.haveData && s.now().Sub(s.fetchedAt) < s.ttl {
		ps = copyProposals(s.snapshot)
		s.mu.RUnlock()
		return ps, false, nil
	}
	s.mu.RUnlock()

	raws, err := s.fetcher.GetProposals(ctx)
	if err != nil {
		s.mu.RLock()
		defer s.mu.RUnlock()
		if s.haveData {
			log.Printf("proposal fetch failed, serving stale snapshot: %v", err)
			return copyProposals(s.snapshot), true, nil
		}
		return nil, false, err
	}

	fresh := proposal.NormalizeAll(raws, s.now())

	s.mu.Lock()
	s.snapshot = fresh
	s.fetchedAt = s.now()
	s.haveData = true
	s.mu.Unlock()

	return copyProposals(fresh), false, nil
}

// Find returns the proposal with the given id from the current list.
func (s *Source) Find(ctx context.Context, id string) (proposal.Proposal, bool, error) {
	ps, _, err := s.Proposals(ctx)
	if err != nil {
		return proposal.Proposal{}, false, err
	}
	for _, p := range ps {
		if p.ID == id {
			return p, true, nil
		}
	}
	return proposal.Proposal{}, false, nil
}

// Invalidate forces the next read to refetch from the canister.
func (s *Source) Invalidate() {
	s.mu.Lock()
	s.fetchedAt = time.Time{}
	s.mu.Unlock()
}

func copyProposals(in []proposal.Proposal) []proposal.Proposal {
	out := make([]proposal.Proposal, len(in))
	copy(out, in)
	return out
}
