package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	apperrors "github.com/adawatch/drep-radar/internal/errors"
	"github.com/adawatch/drep-radar/internal/resilience"
	"github.com/adawatch/drep-radar/internal/types"
)

const defaultPageSize = 500

// Client pulls governance proposals, DRep votes and DRep registrations
// from an upstream chain-indexing service.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	retry      resilience.RetryConfig
}

// NewClient creates an ingest client for the given indexer.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		retry: resilience.DefaultRetryConfig(),
	}
}

// wire records mirror the indexer's JSON; conversion to domain types
// happens at the edge so nothing upstream-shaped leaks inward.

type wireProposal struct {
	TxHash        string   `json:"tx_hash"`
	Index         int      `json:"cert_index"`
	GovActionType string   `json:"governance_type"`
	Withdrawals   []uint64 `json:"withdrawals_lovelace"`
	Meta          *struct {
		Title    string `json:"title"`
		Abstract string `json:"abstract"`
	} `json:"meta"`
	ProposedEpoch int    `json:"proposed_epoch"`
	RatifiedEpoch *int   `json:"ratified_epoch"`
	EnactedEpoch  *int   `json:"enacted_epoch"`
	DroppedEpoch  *int   `json:"dropped_epoch"`
	ExpiredEpoch  *int   `json:"expired_epoch"`
	BlockTime     int64  `json:"block_time"`
	Network       string `json:"network"`
}

type wireVote struct {
	DRepID         string `json:"voter"`
	ProposalTxHash string `json:"proposal_tx_hash"`
	ProposalIndex  int    `json:"proposal_index"`
	VoteTxHash     string `json:"tx_hash"`
	Vote           string `json:"vote"`
	BlockTime      int64  `json:"block_time"`
	MetadataURL    string `json:"metadata_url"`
	MetadataHash   string `json:"metadata_hash"`
}

type wireDRep struct {
	DRepID         string `json:"drep_id"`
	GivenName      string `json:"given_name"`
	AmountLovelace uint64 `json:"amount"`
	ActiveEpoch    int    `json:"active_epoch"`
	HasMetadata    bool   `json:"has_metadata"`
	HasObjectives  bool   `json:"has_objectives"`
	HasMotivations bool   `json:"has_motivations"`
}

// FetchProposals pulls every governance proposal, following pagination.
func (c *Client) FetchProposals(ctx context.Context) ([]types.RawProposal, error) {
	var out []types.RawProposal
	for page := 1; ; page++ {
		var batch []wireProposal
		if err := c.getJSON(ctx, fmt.Sprintf("/api/v1/governance/proposals?page=%d&count=%d", page, defaultPageSize), &batch); err != nil {
			return nil, err
		}
		for _, wp := range batch {
			out = append(out, wp.toDomain())
		}
		if len(batch) < defaultPageSize {
			return out, nil
		}
	}
}

// FetchVotes pulls every DRep vote, following pagination.
func (c *Client) FetchVotes(ctx context.Context) ([]types.DRepVote, error) {
	var out []types.DRepVote
	for page := 1; ; page++ {
		var batch []wireVote
		if err := c.getJSON(ctx, fmt.Sprintf("/api/v1/governance/votes?page=%d&count=%d", page, defaultPageSize), &batch); err != nil {
			return nil, err
		}
		for _, wv := range batch {
			v, err := wv.toDomain()
			if err != nil {
				// A malformed vote record is an upstream bug; skip it
				// rather than poisoning the whole sync.
				continue
			}
			out = append(out, v)
		}
		if len(batch) < defaultPageSize {
			return out, nil
		}
	}
}

// FetchDReps pulls the registered DRep population.
func (c *Client) FetchDReps(ctx context.Context) ([]DRepRegistration, error) {
	var out []DRepRegistration
	for page := 1; ; page++ {
		var batch []wireDRep
		if err := c.getJSON(ctx, fmt.Sprintf("/api/v1/governance/dreps?page=%d&count=%d", page, defaultPageSize), &batch); err != nil {
			return nil, err
		}
		for _, wd := range batch {
			out = append(out, wd.toDomain())
		}
		if len(batch) < defaultPageSize {
			return out, nil
		}
	}
}

func (c *Client) getJSON(ctx context.Context, path string, v interface{}) error {
	url := c.baseURL + path

	resp, err := resilience.RetryHTTP(ctx, c.retry, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		if c.apiKey != "" {
			req.Header.Set("api-key", c.apiKey)
		}
		req.Header.Set("Accept", "application/json")
		return c.httpClient.Do(req)
	})
	if err != nil {
		return apperrors.NewExternalAPIError("chain indexer", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return apperrors.NewExternalAPIError("chain indexer",
			fmt.Errorf("status %d: %s", resp.StatusCode, string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return apperrors.NewExternalAPIError("chain indexer", fmt.Errorf("decode response: %w", err))
	}
	return nil
}

func (wp wireProposal) toDomain() types.RawProposal {
	p := types.RawProposal{
		TxHash:              wp.TxHash,
		Index:               wp.Index,
		Type:                types.NormalizeProposalType(wp.GovActionType),
		WithdrawalsLovelace: wp.Withdrawals,
		ProposedEpoch:       wp.ProposedEpoch,
		RatifiedEpoch:       wp.RatifiedEpoch,
		EnactedEpoch:        wp.EnactedEpoch,
		DroppedEpoch:        wp.DroppedEpoch,
		ExpiredEpoch:        wp.ExpiredEpoch,
		BlockTime:           time.Unix(wp.BlockTime, 0).UTC(),
	}
	if wp.Meta != nil {
		p.Meta = &types.ProposalMetadata{
			Title:    wp.Meta.Title,
			Abstract: wp.Meta.Abstract,
		}
	}
	return p
}

func (wv wireVote) toDomain() (types.DRepVote, error) {
	choice, ok := types.ParseVoteChoice(wv.Vote)
	if !ok {
		return types.DRepVote{}, apperrors.NewValidationError("unknown vote choice", wv.Vote)
	}
	v := types.DRepVote{
		DRepID:         wv.DRepID,
		ProposalTxHash: wv.ProposalTxHash,
		ProposalIndex:  wv.ProposalIndex,
		VoteTxHash:     wv.VoteTxHash,
		Choice:         choice,
		BlockTime:      time.Unix(wv.BlockTime, 0).UTC(),
	}
	if wv.MetadataURL != "" || wv.MetadataHash != "" {
		v.Rationale = &types.VoteRationale{
			URL:  wv.MetadataURL,
			Hash: wv.MetadataHash,
		}
	}
	return v, nil
}

// DRepRegistration is one registered DRep as reported by the indexer,
// before enrichment with voting statistics.
type DRepRegistration struct {
	ID             string
	DisplayName    string
	HasGivenName   bool
	AmountLovelace uint64
	ActiveEpoch    int
	HasMetadata    bool
	HasObjectives  bool
	HasMotivations bool
}

func (wd wireDRep) toDomain() DRepRegistration {
	name := wd.GivenName
	if name == "" {
		id := wd.DRepID
		if len(id) > 12 {
			id = id[:12]
		}
		name = "DRep " + id
	}
	return DRepRegistration{
		ID:             wd.DRepID,
		DisplayName:    name,
		HasGivenName:   wd.GivenName != "",
		AmountLovelace: wd.AmountLovelace,
		ActiveEpoch:    wd.ActiveEpoch,
		HasMetadata:    wd.HasMetadata,
		HasObjectives:  wd.HasObjectives,
		HasMotivations: wd.HasMotivations,
	}
}
