package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"datee_server/models"
	"datee_server/utils"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const bcryptCost = 10

var (
	ErrUserExists   = errors.New("user already exists")
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidState is returned when a lifecycle transition is requested
	// from the wrong state.
	ErrInvalidState = errors.New("invalid state for this operation")
)

// RegistrationInfo is the payload accepted by Register.
type RegistrationInfo struct {
	Email     string        `json:"email"`
	Password  string        `json:"password"`
	FirstName string        `json:"firstName"`
	LastName  string        `json:"lastName"`
	Age       int           `json:"age"`
	Gender    models.Gender `json:"gender"`
	Country   int           `json:"country"`
	City      int           `json:"city"`
}

// UserService owns the Users table: registration, login verification and
// the onboarding lifecycle. It also implements the match engine's UserStore.
type UserService struct {
	Dynamo *DynamoService
}

func userKey(uid string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"uid": &types.AttributeValueMemberS{Value: uid},
	}
}

// Register validates the registration payload and creates a new user in
// state Registered.
func (us *UserService) Register(ctx context.Context, info RegistrationInfo) (*models.User, error) {
	if !utils.ValidateEmail(info.Email) {
		return nil, errors.New("invalid email")
	}
	if info.Age < 18 {
		return nil, errors.New("too young")
	}
	if info.Age >= 60 {
		return nil, errors.New("too old")
	}
	if info.Gender != models.GenderMale && info.Gender != models.GenderFemale {
		return nil, errors.New("unrecognizable gender")
	}
	if err := utils.CheckPassword(info.Password); err != nil {
		return nil, err
	}
	if existing, err := us.FindUserByEmail(ctx, info.Email); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, ErrUserExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(info.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		UID:          uuid.NewString(),
		Email:        info.Email,
		PasswordHash: string(hash),
		FirstName:    info.FirstName,
		LastName:     info.LastName,
		Age:          info.Age,
		Gender:       info.Gender,
		Country:      info.Country,
		City:         info.City,
		State:        models.StateRegistered,
	}
	if err := us.Dynamo.PutItem(ctx, models.UsersTable, user); err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUser retrieves a user by uid. Returns ErrUserNotFound if absent.
func (us *UserService) GetUser(ctx context.Context, uid string) (*models.User, error) {
	var user models.User
	err := us.Dynamo.GetItem(ctx, models.UsersTable, userKey(uid), &user)
	if errors.Is(err, ErrItemNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindUserByEmail looks a user up through the email GSI.
// Returns (nil, nil) when no user carries the email.
func (us *UserService) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var users []models.User
	err := us.Dynamo.QueryItemsWithIndex(ctx, models.UsersTable, models.EmailIndex,
		"email = :email",
		map[string]types.AttributeValue{
			":email": &types.AttributeValueMemberS{Value: email},
		}, nil, &users)
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, nil
	}
	return &users[0], nil
}

// VerifyLogin returns the user if the email exists and the password matches,
// nil otherwise. bcrypt gives us the constant-time comparison.
func (us *UserService) VerifyLogin(ctx context.Context, email, password string) (*models.User, error) {
	user, err := us.FindUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, nil
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, nil
	}
	return user, nil
}

// SetUserState writes a new lifecycle state for the user.
func (us *UserService) SetUserState(ctx context.Context, uid string, state models.UserState) error {
	return us.Dynamo.UpdateItem(ctx, models.UsersTable,
		"SET #state = :state",
		userKey(uid),
		map[string]types.AttributeValue{
			":state": &types.AttributeValueMemberN{Value: strconv.Itoa(int(state))},
		},
		map[string]string{"#state": "state"},
	)
}

func validTraits(t models.Traits) error {
	for _, v := range []int{t.Romance, t.Openness, t.Warmheartedness} {
		if v < 1 || v > 5 {
			return errors.New("trait values must be integers within [1, 5]")
		}
	}
	return nil
}

// SetSelfAssessment stores the user's traits and advances
// PhotoUploaded -> SelfAssessmentDone.
func (us *UserService) SetSelfAssessment(ctx context.Context, uid string, traits models.Traits) (*models.User, error) {
	if err := validTraits(traits); err != nil {
		return nil, err
	}
	user, err := us.GetUser(ctx, uid)
	if err != nil {
		return nil, err
	}
	if user.State != models.StatePhotoUploaded {
		return nil, ErrInvalidState
	}
	user.SelfAssessment = &traits
	user.State = models.StateSelfAssessmentDone
	if err := us.Dynamo.PutItem(ctx, models.UsersTable, *user); err != nil {
		return nil, err
	}
	return user, nil
}

// SetMatchingPreference stores what the user wants in a partner and advances
// SelfAssessmentDone -> MatchingPreferencesSet.
func (us *UserService) SetMatchingPreference(ctx context.Context, uid string, pref models.MatchingPreference) (*models.User, error) {
	if err := validTraits(pref.Traits); err != nil {
		return nil, err
	}
	if pref.Gender != models.GenderMale && pref.Gender != models.GenderFemale {
		return nil, errors.New("unrecognizable gender preference")
	}
	if pref.MinAge < 18 || pref.MaxAge < pref.MinAge {
		return nil, errors.New("invalid age range")
	}
	user, err := us.GetUser(ctx, uid)
	if err != nil {
		return nil, err
	}
	if user.State != models.StateSelfAssessmentDone {
		return nil, ErrInvalidState
	}
	user.MatchingPref = &pref
	user.State = models.StateMatchingPreferencesSet
	if err := us.Dynamo.PutItem(ctx, models.UsersTable, *user); err != nil {
		return nil, err
	}
	return user, nil
}

// ActivateUser approves a registration: MatchingPreferencesSet -> Idle.
func (us *UserService) ActivateUser(ctx context.Context, uid string) error {
	user, err := us.GetUser(ctx, uid)
	if err != nil {
		return err
	}
	if user.State != models.StateMatchingPreferencesSet {
		return ErrInvalidState
	}
	return us.SetUserState(ctx, uid, models.StateIdle)
}

// ListIdleUsersByGenderPair returns every Idle user whose own gender and
// desired partner gender match the pair exactly. No ordering guarantee.
func (us *UserService) ListIdleUsersByGenderPair(ctx context.Context, gender, desiredGender models.Gender) ([]models.User, error) {
	var users []models.User
	err := us.Dynamo.ScanWithFilter(ctx, models.UsersTable,
		map[string]types.AttributeValue{
			"state":  &types.AttributeValueMemberN{Value: strconv.Itoa(int(models.StateIdle))},
			"gender": &types.AttributeValueMemberN{Value: strconv.Itoa(int(gender))},
		},
		func(item map[string]types.AttributeValue) bool {
			// matchingPref.gender is nested; filter client-side.
			pref, ok := item["matchingPref"].(*types.AttributeValueMemberM)
			if !ok {
				return false
			}
			g, ok := pref.Value["gender"].(*types.AttributeValueMemberN)
			return ok && g.Value == strconv.Itoa(int(desiredGender))
		}, &users)
	if err != nil {
		return nil, fmt.Errorf("failed to list idle users: %w", err)
	}
	return users, nil
}
