package webserver

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/voteverse/vote-gateway/src/canister"
	"github.com/voteverse/vote-gateway/src/data"
)

// VoteCaster is the slice of the canister client Cast needs.
type VoteCaster interface {
	VoteProposal(ctx context.Context, proposalID, voterPrincipal string, choice canister.Choice) (canister.VoteResult, error)
}

// VoteGuard blocks a second submission for the same proposal+principal
// while one is still in flight (redis in production).
type VoteGuard interface {
	Acquire(ctx context.Context, proposalID, principal string) (bool, error)
	Release(ctx context.Context, proposalID, principal string)
}

type Votes struct {
	cli   VoteCaster
	locks VoteGuard
	src   *data.Source
}

func NewVotes(cli VoteCaster, locks VoteGuard, src *data.Source) Votes {
	return Votes{cli: cli, locks: locks, src: src}
}

func (v Votes) Cast(c *gin.Context) {
	var req struct {
		ProposalID string `json:"proposalId" binding:"required"`
		Choice     string `json:"choice" binding:"required,oneof=yes no"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}
	principal := c.GetString("principal")
	if principal == "" {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	ok, err := v.locks.Acquire(c, req.ProposalID, principal)
	if err == nil && !ok {
		c.JSON(http.StatusConflict, gin.H{"err": "vote already in progress"})
		return
	}
	if err == nil {
		defer v.locks.Release(c, req.ProposalID, principal)
	}

	result, err := v.cli.VoteProposal(c, req.ProposalID, principal, canister.Choice(req.Choice))

	// The list is refreshed even on rejection: the error may have been
	// caused by a stale view of the proposal.
	v.src.Invalidate()

	if err != nil {
		countCanisterError("vote_proposal")
		countVote(req.Choice, "error")
		c.JSON(http.StatusBadGateway, gin.H{"err": "vote submission failed"})
		return
	}
	if result.Err != "" {
		countVote(req.Choice, "rejected")
		c.JSON(http.StatusUnprocessableEntity, gin.H{"err": result.Err})
		return
	}

	countVote(req.Choice, "accepted")
	c.JSON(http.StatusCreated, gin.H{"ok": true})
}
