package services

import (
	"context"
	"errors"

	"datee_server/models"
	"datee_server/utils"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
)

var ErrFeedbackExists = errors.New("feedback already exists")

// FeedbackService owns the Feedbacks table.
type FeedbackService struct {
	Dynamo *DynamoService
}

// CreateFeedback records one user's feedback about another. A (from, to)
// pair may only carry one feedback.
func (fs *FeedbackService) CreateFeedback(ctx context.Context, from, to, content string) (*models.Feedback, error) {
	if utils.IsEmpty(content) {
		return nil, errors.New("feedback content is empty")
	}
	existing, err := fs.findByPair(ctx, from, to)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrFeedbackExists
	}

	feedback := models.Feedback{
		FeedbackID: uuid.NewString(),
		From:       from,
		To:         to,
		Content:    content,
	}
	if err := fs.Dynamo.PutItem(ctx, models.FeedbacksTable, feedback); err != nil {
		return nil, err
	}
	return &feedback, nil
}

// ListFeedbacksByFrom lists all feedback written by a user.
func (fs *FeedbackService) ListFeedbacksByFrom(ctx context.Context, from string) ([]models.Feedback, error) {
	var feedbacks []models.Feedback
	err := fs.Dynamo.QueryItemsWithIndex(ctx, models.FeedbacksTable, models.FeedbackFromIndex,
		"#from = :from",
		map[string]types.AttributeValue{
			":from": &types.AttributeValueMemberS{Value: from},
		},
		map[string]string{"#from": "from"},
		&feedbacks)
	if err != nil {
		return nil, err
	}
	return feedbacks, nil
}

func (fs *FeedbackService) findByPair(ctx context.Context, from, to string) (*models.Feedback, error) {
	feedbacks, err := fs.ListFeedbacksByFrom(ctx, from)
	if err != nil {
		return nil, err
	}
	for i := range feedbacks {
		if feedbacks[i].To == to {
			return &feedbacks[i], nil
		}
	}
	return nil, nil
}
