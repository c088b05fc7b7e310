package services

import (
	"context"
	"fmt"
	"math/rand"

	"datee_server/models"
)

// SeedService creates random fully-onboarded users for development and for
// exercising the matching pool. Seeded users skip photo upload; their state
// is advanced directly to Idle.
type SeedService struct {
	Users *UserService
}

func randomTraits() models.Traits {
	return models.Traits{
		Romance:         1 + rand.Intn(5),
		Openness:        1 + rand.Intn(5),
		Warmheartedness: 1 + rand.Intn(5),
	}
}

func randomGender() models.Gender {
	if rand.Intn(2) == 0 {
		return models.GenderMale
	}
	return models.GenderFemale
}

// GenerateRandomUser registers a random user, fills in a random assessment
// and preference and activates them.
func (ss *SeedService) GenerateRandomUser(ctx context.Context) (*models.User, error) {
	name := fmt.Sprintf("seed%06d", rand.Intn(1000000))
	user, err := ss.Users.Register(ctx, RegistrationInfo{
		Email:     name + "@example.com",
		Password:  "1234567890",
		FirstName: name,
		LastName:  "Example",
		Age:       18 + rand.Intn(42),
		Gender:    randomGender(),
	})
	if err != nil {
		return nil, err
	}

	assessment := randomTraits()
	minAge := 18 + rand.Intn(42)
	pref := models.MatchingPreference{
		Gender: randomGender(),
		MinAge: minAge,
		MaxAge: minAge + rand.Intn(60-minAge),
		Traits: randomTraits(),
	}

	user.SelfAssessment = &assessment
	user.MatchingPref = &pref
	user.State = models.StateIdle
	if err := ss.Users.Dynamo.PutItem(ctx, models.UsersTable, *user); err != nil {
		return nil, err
	}
	return user, nil
}
