package proposal

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var normNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func TestNormalizeMillis(t *testing.T) {
	secs := normNow.Unix()
	ms := normNow.UnixMilli()

	assert.Equal(t, ms, NormalizeMillis(secs), "seconds are promoted")
	assert.Equal(t, ms, NormalizeMillis(ms), "milliseconds pass through")
	assert.Equal(t, int64(0), NormalizeMillis(0))
	assert.Equal(t, int64(-5), NormalizeMillis(-5))
}

func TestNormalizeFullRecord(t *testing.T) {
	blob := []byte(`{
		"id": 42,
		"title": "Treasury refill",
		"description": "Top up the treasury",
		"full_description": "Long form text",
		"image_url": "https://cdn.example/img.png",
		"yes_votes": 3,
		"no_votes": "1",
		"created_at": 1749988800,
		"duration_days": 14,
		"author": "alice",
		"author_principal": "aaaaa-aa",
		"category": " Economics ",
		"status": "open",
		"total_voters": 9,
		"discussions": 2
	}`)
	var raw Raw
	require.NoError(t, json.Unmarshal(blob, &raw))

	p, ok := Normalize(raw, normNow)
	require.True(t, ok)

	assert.Equal(t, "42", p.ID)
	assert.Equal(t, "Treasury refill", p.Title)
	assert.Equal(t, "Long form text", p.FullDescription)
	assert.Equal(t, "Economics", p.Category)
	assert.Equal(t, "alice", p.Author)
	assert.Equal(t, "aaaaa-aa", p.AuthorPrincipal)
	assert.Equal(t, int64(1749988800)*1000, p.CreatedAt, "seconds-epoch promoted to ms")
	assert.Equal(t, 14, p.DurationDays)
	assert.Equal(t, VoteTally{Yes: 3, No: 1}, p.Votes)
	assert.Equal(t, 9, p.TotalVoters)
	assert.Equal(t, "https://cdn.example/img.png", p.Image)
	assert.Equal(t, "open", p.StatusHint)
}

func TestNormalizeDefaults(t *testing.T) {
	var raw Raw
	require.NoError(t, json.Unmarshal([]byte(`{"id":"p-1"}`), &raw))

	p, ok := Normalize(raw, normNow)
	require.True(t, ok)

	assert.Equal(t, "Untitled Proposal", p.Title)
	assert.Equal(t, "General", p.Category)
	assert.Equal(t, "Unknown", p.Author)
	assert.Equal(t, DefaultDurationDays, p.DurationDays)
	assert.Equal(t, normNow.UnixMilli(), p.CreatedAt, "missing timestamp becomes now")
	assert.Equal(t, PlaceholderImage, p.Image)
	assert.Equal(t, 0, p.TotalVoters)
	assert.Equal(t, StatusActive, p.Status(normNow), "fresh fallback window is active")
}

func TestNormalizeHazards(t *testing.T) {
	tests := []struct {
		name  string
		blob  string
		check func(t *testing.T, p Proposal)
	}{
		{
			name: "negative votes clamp to zero",
			blob: `{"id":"1","yes_votes":-4,"no_votes":-1,"created_at":1749988800}`,
			check: func(t *testing.T, p Proposal) {
				assert.Equal(t, VoteTally{}, p.Votes)
				assert.Equal(t, 0, p.TotalVoters)
			},
		},
		{
			name: "unparsable duration falls back",
			blob: `{"id":"1","duration_days":"soon","created_at":1749988800}`,
			check: func(t *testing.T, p Proposal) {
				assert.Equal(t, DefaultDurationDays, p.DurationDays)
			},
		},
		{
			name: "total voters defaults to tally sum",
			blob: `{"id":"1","yes_votes":5,"no_votes":2,"created_at":1749988800}`,
			check: func(t *testing.T, p Proposal) {
				assert.Equal(t, 7, p.TotalVoters)
			},
		},
		{
			name: "image beats image_url",
			blob: `{"id":"1","image":"a.png","image_url":"b.png","created_at":1749988800}`,
			check: func(t *testing.T, p Proposal) {
				assert.Equal(t, "a.png", p.Image)
			},
		},
		{
			name: "full description falls back to description",
			blob: `{"id":"1","description":"short","created_at":1749988800}`,
			check: func(t *testing.T, p Proposal) {
				assert.Equal(t, "short", p.FullDescription)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var raw Raw
			require.NoError(t, json.Unmarshal([]byte(tt.blob), &raw))
			p, ok := Normalize(raw, normNow)
			require.True(t, ok)
			tt.check(t, p)
		})
	}
}

func TestNormalizeAllDropsRecordsWithoutID(t *testing.T) {
	blob := []byte(`[
		{"id":"a","created_at":1749988800},
		{"title":"orphan"},
		{"id":17,"created_at":1749988800}
	]`)
	var raws []Raw
	require.NoError(t, json.Unmarshal(blob, &raws))

	got := NormalizeAll(raws, normNow)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, "17", got[1].ID)
}

func TestSlug(t *testing.T) {
	tests := []struct{ in, want string }{
		{"Fund the Node Operators!", "fund-the-node-operators"},
		{"  Upgrade   runtime -- now ", "upgrade-runtime-now"},
		{"Már 100% ready?", "mr-100-ready"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Slug(tt.in))
	}
}
