package services

import (
	"testing"
	"time"

	"datee_server/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateProposal(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name     string
		proposal models.DateProposal
		wantErr  error
	}{
		{
			name:     "tomorrow is fine",
			proposal: models.DateProposal{MadeBy: 1, Date: now.Add(24 * time.Hour).Unix(), Location: "Cafe"},
		},
		{
			name:     "in the past",
			proposal: models.DateProposal{MadeBy: 1, Date: now.Add(-time.Hour).Unix()},
			wantErr:  ErrProposalInPast,
		},
		{
			name:     "right now counts as past",
			proposal: models.DateProposal{MadeBy: 2, Date: now.Unix()},
			wantErr:  ErrProposalInPast,
		},
		{
			name:     "more than 14 days ahead",
			proposal: models.DateProposal{MadeBy: 2, Date: now.Add(15 * 24 * time.Hour).Unix()},
			wantErr:  ErrProposalTooFar,
		},
		{
			name:     "13 days ahead is within bounds",
			proposal: models.DateProposal{MadeBy: 2, Date: now.Add(13 * 24 * time.Hour).Unix()},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateProposal(now, tt.proposal)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestAcceptProposalAt(t *testing.T) {
	newMatch := func() *models.Match {
		return &models.Match{
			MatchID: "m1",
			UserID1: "a",
			UserID2: "b",
			Active:  true,
			Proposals: []models.DateProposal{
				{MadeBy: 1, Location: "Park"},
				{MadeBy: 2, Location: "Museum"},
			},
		}
	}

	t.Run("other user accepts", func(t *testing.T) {
		match := newMatch()
		require.NoError(t, acceptProposalAt(match, 0, 2))
		assert.True(t, match.Proposals[0].Agreed)
		assert.False(t, match.Proposals[1].Agreed)
	})

	t.Run("proposer cannot self-accept", func(t *testing.T) {
		match := newMatch()
		assert.ErrorIs(t, acceptProposalAt(match, 0, 1), ErrProposalOwnAccept)
	})

	t.Run("only one agreed proposal per match", func(t *testing.T) {
		match := newMatch()
		require.NoError(t, acceptProposalAt(match, 0, 2))
		assert.ErrorIs(t, acceptProposalAt(match, 1, 1), ErrProposalAgreed)
	})

	t.Run("index out of range", func(t *testing.T) {
		match := newMatch()
		assert.ErrorIs(t, acceptProposalAt(match, 5, 2), ErrProposalNotFound)
		assert.ErrorIs(t, acceptProposalAt(match, -1, 2), ErrProposalNotFound)
	})
}
