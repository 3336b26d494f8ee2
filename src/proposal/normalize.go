package proposal

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// Number is a tolerant numeric scalar: the candid encoder emits plain
// numbers or numeric strings depending on the field width, so decoding
// never fails here and Normalize pins the value down later.
type Number string

func (n *Number) UnmarshalJSON(b []byte) error {
	s := string(b)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	if s == "null" {
		s = ""
	}
	*n = Number(s)
	return nil
}

// Raw mirrors the loosely typed snake_case record the canister returns.
type Raw struct {
	ID              json.RawMessage `json:"id"`
	Title           string          `json:"title"`
	Description     string          `json:"description"`
	FullDescription string          `json:"full_description"`
	ImageURL        string          `json:"image_url"`
	Image           string          `json:"image"`
	YesVotes        Number          `json:"yes_votes"`
	NoVotes         Number          `json:"no_votes"`
	CreatedAt       Number          `json:"created_at"`
	DurationDays    Number          `json:"duration_days"`
	Author          string          `json:"author"`
	AuthorPrincipal string          `json:"author_principal"`
	Category        string          `json:"category"`
	Status          string          `json:"status"`
	TotalVoters     Number          `json:"total_voters"`
	Discussions     Number          `json:"discussions"`
}

// year 2100 as a Unix epoch in seconds. Any raw timestamp below it is
// assumed to be seconds rather than milliseconds.
const millisFloor = 4_102_444_800

// NormalizeMillis is the single place the seconds-vs-milliseconds call is
// made. The canister has historically emitted both units across methods;
// every caller goes through here instead of guessing locally.
func NormalizeMillis(ts int64) int64 {
	if ts > 0 && ts < millisFloor {
		return ts * 1000
	}
	return ts
}

// Normalize converts one raw record into the canonical shape, applying all
// defaulting rules. Malformed fields fall back silently; the only fatal
// defect is a missing id, reported via ok=false so the caller can drop the
// record instead of inventing an identity for it.
func Normalize(raw Raw, now time.Time) (Proposal, bool) {
	id := rawID(raw.ID)
	if id == "" {
		return Proposal{}, false
	}

	createdAt := NormalizeMillis(numToInt64(raw.CreatedAt, 0))
	if createdAt <= 0 {
		createdAt = now.UnixMilli()
	}

	duration := int(numToInt64(raw.DurationDays, 0))
	if duration <= 0 {
		duration = DefaultDurationDays
	}

	yes := clampNonNegative(int(numToInt64(raw.YesVotes, 0)))
	no := clampNonNegative(int(numToInt64(raw.NoVotes, 0)))

	voters := int(numToInt64(raw.TotalVoters, 0))
	if voters <= 0 {
		voters = yes + no
	}

	p := Proposal{
		ID:              id,
		Title:           defaultString(raw.Title, "Untitled Proposal"),
		Description:     raw.Description,
		FullDescription: defaultString(raw.FullDescription, raw.Description),
		Category:        defaultString(strings.TrimSpace(raw.Category), "General"),
		Author:          defaultString(raw.Author, "Unknown"),
		AuthorPrincipal: raw.AuthorPrincipal,
		CreatedAt:       createdAt,
		DurationDays:    duration,
		Votes:           VoteTally{Yes: yes, No: no},
		TotalVoters:     voters,
		Discussions:     clampNonNegative(int(numToInt64(raw.Discussions, 0))),
		Image:           firstNonEmpty(raw.Image, raw.ImageURL, PlaceholderImage),
		StatusHint:      raw.Status,
	}
	return p, true
}

// NormalizeAll converts a raw batch, dropping records without an id and
// preserving backend order for the stable sorts downstream.
func NormalizeAll(raw []Raw, now time.Time) []Proposal {
	out := make([]Proposal, 0, len(raw))
	for _, r := range raw {
		if p, ok := Normalize(r, now); ok {
			out = append(out, p)
		}
	}
	return out
}

// rawID accepts both string and numeric ids from the wire.
func rawID(m json.RawMessage) string {
	if len(m) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(m, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var n json.Number
	if err := json.Unmarshal(m, &n); err == nil {
		return n.String()
	}
	return ""
}

func numToInt64(n Number, def int64) int64 {
	s := strings.TrimSpace(string(n))
	if s == "" {
		return def
	}
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return v
	}
	// candid floats show up occasionally; floor them
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int64(f)
	}
	return def
}

func clampNonNegative(v int) int {
	if v < 0 {
		return 0
	}
	return v
}

func defaultString(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
