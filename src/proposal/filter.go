package proposal

import (
	"sort"
	"strings"
	"time"
)

// Sort keys accepted by the listing UI.
const (
	SortNewest     = "newest"
	SortOldest     = "oldest"
	SortMostVotes  = "most_votes"
	SortLeastVotes = "least_votes"
	SortEndingSoon = "ending_soon"
)

// CategoryAll / StatusAll disable the respective filter.
const (
	CategoryAll = "All"
	StatusAll   = "All"
)

// Categories is the fixed vocabulary the UI offers. Free-form categories
// still pass through the pipeline; this list only drives facet display.
var Categories = []string{
	"Governance", "Economics", "Technical", "Funding",
	"Product", "Community", "Security",
}

// Criteria is the transient filter/sort state of a listing view.
type Criteria struct {
	SearchQuery      string
	SelectedCategory string
	SelectedStatus   string
	SortBy           string
}

// DefaultCriteria matches a freshly opened listing page.
func DefaultCriteria() Criteria {
	return Criteria{
		SelectedCategory: CategoryAll,
		SelectedStatus:   StatusAll,
		SortBy:           SortNewest,
	}
}

// DeriveVisible runs the filter pipeline and sort over the full proposal
// set and returns a new slice; the input is never reordered or mutated.
// Stages apply in a fixed order: search, category, status, sort. Ties keep
// their original relative order so unchanged data renders identically.
func DeriveVisible(all []Proposal, c Criteria, now time.Time) []Proposal {
	out := make([]Proposal, len(all))
	copy(out, all)

	if q := strings.ToLower(strings.TrimSpace(c.SearchQuery)); q != "" {
		out = keep(out, func(p Proposal) bool {
			return strings.Contains(strings.ToLower(p.Title), q) ||
				strings.Contains(strings.ToLower(p.Description), q)
		})
	}

	if cat := strings.TrimSpace(c.SelectedCategory); cat != "" && cat != CategoryAll {
		out = keep(out, func(p Proposal) bool {
			return strings.TrimSpace(p.Category) == cat
		})
	}

	if st := strings.ToLower(strings.TrimSpace(c.SelectedStatus)); st != "" && st != strings.ToLower(StatusAll) {
		out = keep(out, func(p Proposal) bool {
			return p.Status(now) == st
		})
	}

	sortProposals(out, c.SortBy, now)
	return out
}

func keep(in []Proposal, pred func(Proposal) bool) []Proposal {
	out := in[:0]
	for _, p := range in {
		if pred(p) {
			out = append(out, p)
		}
	}
	return out
}

func sortProposals(ps []Proposal, key string, now time.Time) {
	var less func(a, b Proposal) bool
	switch key {
	case SortOldest:
		less = func(a, b Proposal) bool { return a.CreatedAt < b.CreatedAt }
	case SortMostVotes:
		less = func(a, b Proposal) bool { return a.Votes.Total() > b.Votes.Total() }
	case SortLeastVotes:
		less = func(a, b Proposal) bool { return a.Votes.Total() < b.Votes.Total() }
	case SortEndingSoon:
		// Expired proposals have negative remaining time and therefore sort
		// first; "ending soon" and "already ended" sit next to each other
		// in the UI, so that ordering is intentional.
		less = func(a, b Proposal) bool { return a.Remaining(now) < b.Remaining(now) }
	default: // SortNewest and anything unrecognized
		less = func(a, b Proposal) bool { return a.CreatedAt > b.CreatedAt }
	}
	sort.SliceStable(ps, func(i, j int) bool { return less(ps[i], ps[j]) })
}

// CategoryCounts reports how many proposals fall in each known category,
// plus the "All" total. Categories outside the fixed vocabulary are still
// counted under their own name.
func CategoryCounts(all []Proposal) map[string]int {
	counts := map[string]int{CategoryAll: len(all)}
	for _, name := range Categories {
		counts[name] = 0
	}
	for _, p := range all {
		counts[strings.TrimSpace(p.Category)]++
	}
	return counts
}

// StatusCounts reports the derived active/ended split plus the "All" total.
func StatusCounts(all []Proposal, now time.Time) map[string]int {
	counts := map[string]int{StatusAll: len(all), "Active": 0, "Ended": 0}
	for _, p := range all {
		if p.Status(now) == StatusActive {
			counts["Active"]++
		} else {
			counts["Ended"]++
		}
	}
	return counts
}
