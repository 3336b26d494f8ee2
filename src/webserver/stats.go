package webserver

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/voteverse/vote-gateway/src/canister"
)

// StatsFetcher is the slice of the canister client the stats endpoint needs.
type StatsFetcher interface {
	GetProposalStats(ctx context.Context) (canister.Stats, error)
}

type Stats struct{ cli StatsFetcher }

func NewStats(cli StatsFetcher) Stats { return Stats{cli: cli} }

// Get is a pure passthrough; the canister's counters are displayed as-is.
func (s Stats) Get(c *gin.Context) {
	stats, err := s.cli.GetProposalStats(c)
	if err != nil {
		countCanisterError("get_proposal_stats")
		c.JSON(http.StatusBadGateway, gin.H{"err": "governance backend unavailable"})
		return
	}
	c.JSON(http.StatusOK, stats)
}
