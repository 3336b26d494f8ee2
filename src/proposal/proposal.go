// Package proposal holds the canonical governance proposal model and the
// pure derivation logic the gateway applies to it: countdown math, the
// filter/sort pipeline and pagination. Nothing in this package performs I/O.
package proposal

import (
	"regexp"
	"strings"
	"time"
)

const (
	StatusActive = "active"
	StatusEnded  = "ended"

	// DefaultDurationDays is used whenever the backend sends a missing or
	// unusable voting window.
	DefaultDurationDays = 7

	// PlaceholderImage is served when a proposal carries no image at all.
	PlaceholderImage = "/placeholder.svg"
)

// VoteTally is the yes/no ballot count for a proposal.
type VoteTally struct {
	Yes int `json:"yes"`
	No  int `json:"no"`
}

func (v VoteTally) Total() int { return v.Yes + v.No }

// Proposal is the canonical shape every raw backend record is normalized
// into before it enters the filter/sort/pagination pipeline. CreatedAt is
// always in milliseconds; Normalize is the only place that decides units.
type Proposal struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	FullDescription string    `json:"fullDescription,omitempty"`
	Category        string    `json:"category"`
	Author          string    `json:"author"`
	AuthorPrincipal string    `json:"authorPrincipal,omitempty"`
	CreatedAt       int64     `json:"createdAt"`
	DurationDays    int       `json:"durationDays"`
	Votes           VoteTally `json:"votes"`
	TotalVoters     int       `json:"totalVoters"`
	Discussions     int       `json:"discussions"`
	Image           string    `json:"image"`

	// StatusHint carries a backend-supplied status verbatim. It is never
	// used for filtering; the derived Status always wins there.
	StatusHint string `json:"statusHint,omitempty"`
}

// EndTime returns the close of the voting window in milliseconds.
func (p Proposal) EndTime() int64 {
	return p.CreatedAt + int64(p.DurationDays)*dayMs
}

// Remaining returns milliseconds left in the voting window. Negative once
// the window has closed.
func (p Proposal) Remaining(now time.Time) int64 {
	return p.EndTime() - now.UnixMilli()
}

// Status derives the proposal state from its time window alone.
func (p Proposal) Status(now time.Time) string {
	if p.Remaining(now) > 0 {
		return StatusActive
	}
	return StatusEnded
}

var (
	slugStrip    = regexp.MustCompile(`[^a-z0-9_\s-]`)
	slugSpaces   = regexp.MustCompile(`\s+`)
	slugCollapse = regexp.MustCompile(`-+`)
)

// Slug converts a proposal title into its URL-friendly form, e.g.
// "Fund the Node Operators!" -> "fund-the-node-operators".
func Slug(title string) string {
	s := strings.ToLower(title)
	s = slugStrip.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)
	s = slugSpaces.ReplaceAllString(s, "-")
	s = slugCollapse.ReplaceAllString(s, "-")
	return s
}

// Slug returns the URL slug for the proposal's title.
func (p Proposal) Slug() string { return Slug(p.Title) }
