package models

// Rating is a single 1-5 score given by one user to another. The table is
// keyed by (raterUid, rateeUid) so re-rating replaces the previous score
// in place.
type Rating struct {
	RaterUID string `dynamodbav:"raterUid" json:"raterUid"`
	RateeUID string `dynamodbav:"rateeUid" json:"rateeUid"`
	Score    int    `dynamodbav:"score" json:"score"`
}

// RatingsTable is the DynamoDB table name for ratings, keyed by
// `raterUid` (partition) and `rateeUid` (sort). `RateeIndex` is a GSI on
// `rateeUid` for computing a user's average rating.
const RatingsTable = "Ratings"

// RateeIndex is the GSI used to fetch all ratings received by a user.
const RateeIndex = "RateeIndex"
