package services

import (
	"context"
	"errors"
	"fmt"

	"datee_server/models"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

var ErrSelfRating = errors.New("you can't rate yourself")

// RatingService owns the Ratings table. One score per (rater, ratee) pair;
// re-rating replaces the old score because the pair is the primary key.
type RatingService struct {
	Dynamo *DynamoService
	Users  *UserService
}

// SetRating records rater's score for ratee.
func (rs *RatingService) SetRating(ctx context.Context, rater, ratee string, score int) error {
	if score < 1 || score > 5 {
		return errors.New("score must be an integer within [1, 5]")
	}
	if rater == ratee {
		return ErrSelfRating
	}
	if _, err := rs.Users.GetUser(ctx, rater); err != nil {
		return fmt.Errorf("unknown rater: %w", err)
	}
	if _, err := rs.Users.GetUser(ctx, ratee); err != nil {
		return fmt.Errorf("unknown ratee: %w", err)
	}

	return rs.Dynamo.PutItem(ctx, models.RatingsTable, models.Rating{
		RaterUID: rater,
		RateeUID: ratee,
		Score:    score,
	})
}

// GetRatingOfUser returns the mean score received by a user, 0 if unrated.
func (rs *RatingService) GetRatingOfUser(ctx context.Context, ratee string) (float64, error) {
	var ratings []models.Rating
	err := rs.Dynamo.QueryItemsWithIndex(ctx, models.RatingsTable, models.RateeIndex,
		"rateeUid = :ratee",
		map[string]types.AttributeValue{
			":ratee": &types.AttributeValueMemberS{Value: ratee},
		}, nil, &ratings)
	if err != nil {
		return 0, err
	}
	if len(ratings) == 0 {
		return 0, nil
	}
	sum := 0
	for _, r := range ratings {
		sum += r.Score
	}
	return float64(sum) / float64(len(ratings)), nil
}
