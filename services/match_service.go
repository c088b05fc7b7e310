package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"datee_server/models"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Proposals may be scheduled at most this far ahead.
const maxProposalLead = 14 * 24 * time.Hour

var (
	ErrMatchNotFound = errors.New("match not found")
	// ErrProposalAgreed is returned when a second proposal acceptance is
	// attempted on the same match.
	ErrProposalAgreed    = errors.New("a proposal has already been agreed on for this match")
	ErrProposalNotFound  = errors.New("proposal not found")
	ErrProposalInPast    = errors.New("proposal date must be in the future")
	ErrProposalTooFar    = errors.New("proposal date must be within 14 days")
	ErrProposalOwnAccept = errors.New("the proposer cannot accept their own proposal")
)

// MatchService owns the Matches table. It implements the match engine's
// MatchStore and the proposal sub-operations used by the HTTP layer.
type MatchService struct {
	Dynamo *DynamoService
}

func matchKey(matchID string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"matchId": &types.AttributeValueMemberS{Value: matchID},
	}
}

// InsertMatch creates a match, or replaces it wholesale if the id exists.
func (ms *MatchService) InsertMatch(ctx context.Context, match models.Match) error {
	return ms.Dynamo.PutItem(ctx, models.MatchesTable, match)
}

// GetMatch retrieves a match by id.
func (ms *MatchService) GetMatch(ctx context.Context, matchID string) (*models.Match, error) {
	var match models.Match
	err := ms.Dynamo.GetItem(ctx, models.MatchesTable, matchKey(matchID), &match)
	if errors.Is(err, ErrItemNotFound) {
		return nil, ErrMatchNotFound
	}
	if err != nil {
		return nil, err
	}
	return &match, nil
}

// FindActiveMatches returns every currently active match.
func (ms *MatchService) FindActiveMatches(ctx context.Context) ([]models.Match, error) {
	var matches []models.Match
	err := ms.Dynamo.ScanWithFilter(ctx, models.MatchesTable,
		map[string]types.AttributeValue{
			"active": &types.AttributeValueMemberBOOL{Value: true},
		}, nil, &matches)
	if err != nil {
		return nil, fmt.Errorf("failed to find active matches: %w", err)
	}
	return matches, nil
}

// FindMatchForUser returns the user's active match, or nil if the user is
// not currently matched.
func (ms *MatchService) FindMatchForUser(ctx context.Context, uid string) (*models.Match, error) {
	matches, err := ms.FindActiveMatches(ctx)
	if err != nil {
		return nil, err
	}
	for i := range matches {
		if matches[i].Involves(uid) {
			return &matches[i], nil
		}
	}
	return nil, nil
}

// DeactivateMatch marks a match inactive. Matches are never deleted.
func (ms *MatchService) DeactivateMatch(ctx context.Context, matchID string) error {
	return ms.Dynamo.UpdateItem(ctx, models.MatchesTable,
		"SET #active = :active",
		matchKey(matchID),
		map[string]types.AttributeValue{
			":active": &types.AttributeValueMemberBOOL{Value: false},
		},
		map[string]string{"#active": "active"})
}

// validateProposal checks the scheduling bounds of a new proposal against
// the given clock.
func validateProposal(now time.Time, proposal models.DateProposal) error {
	date := time.Unix(proposal.Date, 0)
	if !date.After(now) {
		return ErrProposalInPast
	}
	if date.After(now.Add(maxProposalLead)) {
		return ErrProposalTooFar
	}
	if proposal.MadeBy != 1 && proposal.MadeBy != 2 {
		return errors.New("madeBy must be 1 or 2")
	}
	return nil
}

// AppendProposal attaches a new date proposal to a match. Proposals always
// start out un-agreed.
func (ms *MatchService) AppendProposal(ctx context.Context, matchID string, proposal models.DateProposal) (*models.Match, error) {
	if err := validateProposal(time.Now(), proposal); err != nil {
		return nil, err
	}
	match, err := ms.GetMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	proposal.Agreed = false
	match.Proposals = append(match.Proposals, proposal)
	if err := ms.writeProposals(ctx, matchID, match.Proposals); err != nil {
		return nil, err
	}
	return match, nil
}

// acceptProposalAt flags a single proposal as agreed, enforcing that only
// the non-proposer accepts and that a match never carries two agreed
// proposals. acceptedBy is positional (1 or 2), like DateProposal.MadeBy.
func acceptProposalAt(match *models.Match, index, acceptedBy int) error {
	if index < 0 || index >= len(match.Proposals) {
		return ErrProposalNotFound
	}
	for _, p := range match.Proposals {
		if p.Agreed {
			return ErrProposalAgreed
		}
	}
	if match.Proposals[index].MadeBy == acceptedBy {
		return ErrProposalOwnAccept
	}
	match.Proposals[index].Agreed = true
	return nil
}

// AcceptProposal marks the proposal at index as agreed on behalf of the
// positional user acceptedBy.
func (ms *MatchService) AcceptProposal(ctx context.Context, matchID string, index, acceptedBy int) (*models.Match, error) {
	match, err := ms.GetMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if err := acceptProposalAt(match, index, acceptedBy); err != nil {
		return nil, err
	}
	if err := ms.writeProposals(ctx, matchID, match.Proposals); err != nil {
		return nil, err
	}
	return match, nil
}

func (ms *MatchService) writeProposals(ctx context.Context, matchID string, proposals []models.DateProposal) error {
	list, err := attributevalue.MarshalList(proposals)
	if err != nil {
		return fmt.Errorf("failed to marshal proposals: %w", err)
	}
	return ms.Dynamo.UpdateItem(ctx, models.MatchesTable,
		"SET proposals = :proposals",
		matchKey(matchID),
		map[string]types.AttributeValue{
			":proposals": &types.AttributeValueMemberL{Value: list},
		}, nil)
}
