package models

// DateProposal is a candidate date attached to a match. Proposals are
// append-only; only one proposal per match may ever be agreed on.
type DateProposal struct {
	// 1 or 2, the positional user who proposed it
	MadeBy   int    `dynamodbav:"madeBy" json:"madeBy"`
	Date     int64  `dynamodbav:"date" json:"date"` // unix seconds
	Location string `dynamodbav:"location" json:"location"`
	Agreed   bool   `dynamodbav:"agreed" json:"agreed"`
}

// Match pairs two users. Matches are never deleted, only deactivated, so the
// table doubles as an audit trail. At most one active match may exist per
// user at any time.
type Match struct {
	MatchID   string         `dynamodbav:"matchId" json:"matchId"`
	UserID1   string         `dynamodbav:"userId1" json:"userId1"`
	UserID2   string         `dynamodbav:"userId2" json:"userId2"`
	CreatedAt int64          `dynamodbav:"createdAt" json:"createdAt"` // unix seconds
	Active    bool           `dynamodbav:"active" json:"active"`
	Proposals []DateProposal `dynamodbav:"proposals,omitempty" json:"proposals,omitempty"`
}

// Involves reports whether the given user is one of the two matched users.
func (m Match) Involves(uid string) bool {
	return m.UserID1 == uid || m.UserID2 == uid
}

// MatchesTable is the DynamoDB table name for matches, keyed by `matchId`.
const MatchesTable = "Matches"
