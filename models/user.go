package models

// Gender is the biological gender of a user.
type Gender int

const (
	GenderMale Gender = iota
	GenderFemale
)

// UserState is the onboarding/matching lifecycle of a user. States are
// ordered: a user only ever moves forward until Idle, then bounces between
// Idle and Matched.
type UserState int

const (
	// Default state after registration
	StateRegistered UserState = iota
	// After uploading the minimum number of photos
	StatePhotoUploaded
	// After finishing the self-assessment
	StateSelfAssessmentDone
	// After setting matching preferences
	StateMatchingPreferencesSet
	// Approved and waiting to be matched
	StateIdle
	// Currently in an active match
	StateMatched
)

// Traits are the three personality dimensions used for matching.
// All values are integers within [1, 5].
type Traits struct {
	Romance         int `dynamodbav:"romance" json:"romance"`
	Openness        int `dynamodbav:"openness" json:"openness"`
	Warmheartedness int `dynamodbav:"warmheartedness" json:"warmheartedness"`
}

// MatchingPreference describes what a user expects their partner to be.
type MatchingPreference struct {
	Gender Gender `dynamodbav:"gender" json:"gender"`
	MinAge int    `dynamodbav:"minAge" json:"minAge"`
	MaxAge int    `dynamodbav:"maxAge" json:"maxAge"`
	Traits
}

// User is the full user document. It must never be returned directly by an
// API endpoint; use Sanitized() instead.
type User struct {
	UID            string              `dynamodbav:"uid" json:"uid"`
	Email          string              `dynamodbav:"email" json:"email"`
	PasswordHash   string              `dynamodbav:"passwordHash" json:"-"`
	FirstName      string              `dynamodbav:"firstName" json:"firstName"`
	LastName       string              `dynamodbav:"lastName" json:"lastName"`
	Age            int                 `dynamodbav:"age" json:"age"`
	Gender         Gender              `dynamodbav:"gender" json:"gender"`
	Country        int                 `dynamodbav:"country" json:"country"`
	City           int                 `dynamodbav:"city" json:"city"`
	SelfAssessment *Traits             `dynamodbav:"selfAssessment,omitempty" json:"selfAssessment,omitempty"`
	MatchingPref   *MatchingPreference `dynamodbav:"matchingPref,omitempty" json:"matchingPref,omitempty"`
	State          UserState           `dynamodbav:"state" json:"state"`
}

// Sanitized returns a copy safe to serialize to clients.
func (u User) Sanitized() User {
	u.PasswordHash = ""
	return u
}

// UsersTable is the DynamoDB table name for users.
// The table uses `uid` as its partition key; `EmailIndex` is a GSI on `email`.
const UsersTable = "Users"

// EmailIndex is the GSI used to look up users by email.
const EmailIndex = "EmailIndex"
