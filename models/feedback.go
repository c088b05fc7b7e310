package models

// Feedback is a free-text note one user leaves about another after a date.
// `From` and `To` are user IDs; one feedback per (from, to) pair.
type Feedback struct {
	FeedbackID string `dynamodbav:"feedbackId" json:"feedbackId"`
	From       string `dynamodbav:"from" json:"from"`
	To         string `dynamodbav:"to" json:"to"`
	Content    string `dynamodbav:"content" json:"content"`
}

// FeedbacksTable is the DynamoDB table name for feedback, keyed by
// `feedbackId`. `FeedbackFromIndex` is a GSI on `from`.
const FeedbacksTable = "Feedbacks"

// FeedbackFromIndex is the GSI used to list feedback written by a user.
const FeedbackFromIndex = "FeedbackFromIndex"
