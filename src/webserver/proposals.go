package webserver

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/OneOfOne/xxhash"
	"github.com/gin-gonic/gin"
	"github.com/microcosm-cc/bluemonday"

	"github.com/voteverse/vote-gateway/src/canister"
	"github.com/voteverse/vote-gateway/src/data"
	"github.com/voteverse/vote-gateway/src/proposal"
)

var (
	strictPolicy = bluemonday.StrictPolicy()
	ugcPolicy    = bluemonday.UGCPolicy()
)

// ProposalSubmitter is the slice of the canister client Create needs.
type ProposalSubmitter interface {
	AddProposal(ctx context.Context, np canister.NewProposal) (string, error)
}

type Proposals struct {
	src      *data.Source
	cli      ProposalSubmitter
	pageSize int
}

func NewProposals(src *data.Source, cli ProposalSubmitter, pageSize int) Proposals {
	if pageSize <= 0 {
		pageSize = proposal.DefaultPageSize
	}
	return Proposals{src: src, cli: cli, pageSize: pageSize}
}

// proposalView is a proposal plus the per-render derived fields.
type proposalView struct {
	proposal.Proposal
	Status    string                 `json:"status"`
	TimeLeft  string                 `json:"timeLeft"`
	Countdown proposal.CountdownTime `json:"countdown"`
	Slug      string                 `json:"slug"`
}

func viewOf(p proposal.Proposal, now time.Time) proposalView {
	return proposalView{
		Proposal:  p,
		Status:    p.Status(now),
		TimeLeft:  proposal.TimeLeftLabel(p.CreatedAt, p.DurationDays, now),
		Countdown: p.Countdown(now),
		Slug:      p.Slug(),
	}
}

// List runs the full derivation pipeline: source -> filter/sort ->
// paginate -> per-item countdown. An empty result is a valid state; the
// response carries the active criteria so the client can offer a
// "clear filters" action.
func (h Proposals) List(c *gin.Context) {
	criteria := proposal.Criteria{
		SearchQuery:      c.Query("q"),
		SelectedCategory: c.DefaultQuery("category", proposal.CategoryAll),
		SelectedStatus:   c.DefaultQuery("status", proposal.StatusAll),
		SortBy:           c.DefaultQuery("sort", proposal.SortNewest),
	}
	pageNum, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", strconv.Itoa(h.pageSize)))
	if pageSize <= 0 || pageSize > 100 {
		pageSize = h.pageSize
	}

	all, stale, err := h.src.Proposals(c)
	if err != nil {
		countCanisterError("get_proposals")
		c.JSON(http.StatusBadGateway, gin.H{"err": "governance backend unavailable"})
		return
	}

	now := time.Now()
	visible := proposal.DeriveVisible(all, criteria, now)
	page, pageItems := proposal.PageOf(visible, pageSize, pageNum)

	etag := listETag(pageItems, criteria, page)
	if c.GetHeader("If-None-Match") == etag {
		c.Status(http.StatusNotModified)
		return
	}

	items := make([]proposalView, 0, len(pageItems))
	for _, p := range pageItems {
		items = append(items, viewOf(p, now))
	}

	c.Header("ETag", etag)
	c.JSON(http.StatusOK, gin.H{
		"items":      items,
		"pagination": paginationBlock(page),
		"facets": gin.H{
			"categories": proposal.CategoryCounts(all),
			"statuses":   proposal.StatusCounts(all, now),
		},
		"criteria": gin.H{
			"q":        criteria.SearchQuery,
			"category": criteria.SelectedCategory,
			"status":   criteria.SelectedStatus,
			"sort":     criteria.SortBy,
		},
		"stale": stale,
	})
}

func (h Proposals) Detail(c *gin.Context) {
	p, found, err := h.src.Find(c, c.Param("id"))
	if err != nil {
		countCanisterError("get_proposals")
		c.JSON(http.StatusBadGateway, gin.H{"err": "governance backend unavailable"})
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"err": "proposal not found"})
		return
	}
	c.JSON(http.StatusOK, viewOf(p, time.Now()))
}

func (h Proposals) Create(c *gin.Context) {
	var req struct {
		Title           string `json:"title" binding:"required"`
		Description     string `json:"description" binding:"required"`
		ImageURL        string `json:"imageUrl"`
		DurationDays    int    `json:"durationDays"`
		FullDescription string `json:"fullDescription"`
		Category        string `json:"category"`
		Image           string `json:"image"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}
	if req.DurationDays <= 0 {
		req.DurationDays = proposal.DefaultDurationDays
	}

	id, err := h.cli.AddProposal(c, canister.NewProposal{
		Title:           strictPolicy.Sanitize(req.Title),
		Description:     ugcPolicy.Sanitize(req.Description),
		ImageURL:        req.ImageURL,
		DurationDays:    req.DurationDays,
		FullDescription: ugcPolicy.Sanitize(req.FullDescription),
		Category:        strictPolicy.Sanitize(req.Category),
		Image:           req.Image,
		Author:          c.GetString("principal"),
	})
	if err != nil {
		countCanisterError("add_proposal")
		c.JSON(http.StatusBadGateway, gin.H{"err": "proposal submission failed"})
		return
	}

	h.src.Invalidate()
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

func paginationBlock(page proposal.Page) gin.H {
	return gin.H{
		"currentPage": page.CurrentPage,
		"totalPages":  page.TotalPages,
		"pageSize":    page.PageSize,
		"totalItems":  page.TotalItems,
		"startIndex":  page.StartIndex,
		"endIndex":    page.EndIndex,
		"pages":       proposal.VisiblePages(page.CurrentPage, page.TotalPages, proposal.DefaultMaxVisiblePages),
	}
}

// listETag fingerprints what the client actually renders: the page window
// plus each item's identity and tally. Countdowns are excluded on purpose,
// the client keeps those ticking locally.
func listETag(items []proposal.Proposal, criteria proposal.Criteria, page proposal.Page) string {
	h := xxhash.New64()
	fmt.Fprintf(h, "%s|%s|%s|%s|%d|%d\n", criteria.SearchQuery, criteria.SelectedCategory,
		criteria.SelectedStatus, criteria.SortBy, page.CurrentPage, page.TotalItems)
	for _, p := range items {
		fmt.Fprintf(h, "%s:%d:%d:%d\n", p.ID, p.Votes.Yes, p.Votes.No, p.CreatedAt)
	}
	return fmt.Sprintf("%q", strconv.FormatUint(h.Sum64(), 16))
}
