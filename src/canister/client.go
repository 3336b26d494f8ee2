// Package canister talks to the VoteVerse governance canister through its
// HTTP boundary. The canister is an opaque remote service; this client only
// moves bytes and leaves all shaping to the proposal package.
package canister

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/voteverse/vote-gateway/src/proposal"
	"github.com/voteverse/vote-gateway/src/webclient"
)

const (
	queryAttempts = 3
	queryBackoff  = 500 * time.Millisecond
)

type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    webclient.NewDefault(timeout),
	}
}

// Stats is the passthrough aggregate the canister reports.
type Stats struct {
	TotalProposals uint64 `json:"total_proposals"`
	TotalYesVotes  uint64 `json:"total_yes_votes"`
	TotalNoVotes   uint64 `json:"total_no_votes"`
	TotalVotes     uint64 `json:"total_votes"`
}

// NewProposal is the add_proposal argument set.
type NewProposal struct {
	Title           string `json:"title"`
	Description     string `json:"description"`
	ImageURL        string `json:"image_url,omitempty"`
	DurationDays    int    `json:"duration_days"`
	FullDescription string `json:"full_description,omitempty"`
	Category        string `json:"category,omitempty"`
	Image           string `json:"image,omitempty"`
	Author          string `json:"author,omitempty"`
}

// Choice is a yes/no ballot selection.
type Choice string

const (
	ChoiceYes Choice = "yes"
	ChoiceNo  Choice = "no"
)

// MarshalJSON writes the candid variant form the canister expects:
// {"Yes":null} or {"No":null}.
func (ch Choice) MarshalJSON() ([]byte, error) {
	switch ch {
	case ChoiceYes:
		return []byte(`{"Yes":null}`), nil
	case ChoiceNo:
		return []byte(`{"No":null}`), nil
	}
	return nil, fmt.Errorf("invalid choice %q", string(ch))
}

// VoteResult decodes the canister's {Ok:null}|{Err:string} variant. Err is
// a user-facing message and is surfaced verbatim.
type VoteResult struct {
	Ok  bool
	Err string
}

func (v *VoteResult) UnmarshalJSON(b []byte) error {
	var raw struct {
		Ok  *json.RawMessage `json:"Ok"`
		Err *string          `json:"Err"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if raw.Err != nil {
		v.Err = *raw.Err
		return nil
	}
	if raw.Ok != nil {
		v.Ok = true
		return nil
	}
	return fmt.Errorf("vote result has neither Ok nor Err")
}

// GetProposals fetches the raw proposal set. Queries are side-effect free
// on the canister, so transient failures are retried with backoff.
func (c *Client) GetProposals(ctx context.Context) ([]proposal.Raw, error) {
	body, err := c.query(ctx, "get_proposals")
	if err != nil {
		return nil, err
	}
	var raws []proposal.Raw
	if err := json.Unmarshal(body, &raws); err != nil {
		return nil, fmt.Errorf("decode get_proposals: %w", err)
	}
	return raws, nil
}

// GetProposalStats fetches the aggregate counters.
func (c *Client) GetProposalStats(ctx context.Context) (Stats, error) {
	body, err := c.query(ctx, "get_proposal_stats")
	if err != nil {
		return Stats{}, err
	}
	var stats Stats
	if err := json.Unmarshal(body, &stats); err != nil {
		return Stats{}, fmt.Errorf("decode get_proposal_stats: %w", err)
	}
	return stats, nil
}

// AddProposal submits a new proposal and returns its id. Sent exactly once.
func (c *Client) AddProposal(ctx context.Context, np NewProposal) (string, error) {
	body, err := c.update(ctx, "add_proposal", np)
	if err != nil {
		return "", err
	}
	var resp struct {
		ID json.RawMessage `json:"id"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("decode add_proposal: %w", err)
	}
	id := strings.Trim(string(resp.ID), `"`)
	if id == "" {
		return "", fmt.Errorf("add_proposal returned no id")
	}
	return id, nil
}

// VoteProposal casts a ballot for the given principal. Sent exactly once;
// a VoteResult with Err set is a rejection, not a transport failure.
func (c *Client) VoteProposal(ctx context.Context, proposalID, voterPrincipal string, choice Choice) (VoteResult, error) {
	payload := struct {
		ProposalID string `json:"proposal_id"`
		Voter      string `json:"voter"`
		Choice     Choice `json:"choice"`
	}{ProposalID: proposalID, Voter: voterPrincipal, Choice: choice}

	body, err := c.update(ctx, "vote_proposal", payload)
	if err != nil {
		return VoteResult{}, err
	}
	var result VoteResult
	if err := json.Unmarshal(body, &result); err != nil {
		return VoteResult{}, fmt.Errorf("decode vote_proposal: %w", err)
	}
	return result, nil
}

func (c *Client) query(ctx context.Context, method string) ([]byte, error) {
	status, body, err := webclient.DoWithRetry(ctx, queryAttempts, queryBackoff, func() (int, []byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/"+method, nil)
		if err != nil {
			return 0, nil, err
		}
		return c.do(req)
	})
	if err != nil {
		return nil, fmt.Errorf("canister %s: %w", method, err)
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("canister %s: status %d", method, status)
	}
	return body, nil
}

func (c *Client) update(ctx context.Context, method string, payload interface{}) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+method, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	status, body, err := c.do(req)
	if err != nil {
		return nil, fmt.Errorf("canister %s: %w", method, err)
	}
	if status != http.StatusOK && status != http.StatusCreated {
		return nil, fmt.Errorf("canister %s: status %d", method, status)
	}
	return body, nil
}

func (c *Client) do(req *http.Request) (int, []byte, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return resp.StatusCode, nil, err
	}
	return resp.StatusCode, body, nil
}
