package service

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"momskitchen/internal/api"
	"momskitchen/internal/models"
	"momskitchen/internal/session"
	"momskitchen/internal/validation"
)

// ProfileService reads and edits the customer's profile and preferences
type ProfileService struct {
	client   *api.Client
	sessions *session.Store
	log      logrus.FieldLogger
}

// NewProfileService creates a new profile service
func NewProfileService(client *api.Client, sessions *session.Store, log logrus.FieldLogger) *ProfileService {
	return &ProfileService{
		client:   client,
		sessions: sessions,
		log:      log.WithField("component", "profile"),
	}
}

// Me fetches the profile and stores the refreshed user in the session
func (s *ProfileService) Me(ctx context.Context) (*models.Profile, error) {
	if s.sessions.AccessToken() == "" {
		return nil, ErrNotLoggedIn
	}

	profile, err := s.client.Users().Me(ctx)
	if err != nil {
		return nil, userError(err, "Failed to load profile")
	}

	// The envelope carries addresses and preferences beside the user
	user := profile.User
	if len(user.Addresses) == 0 {
		user.Addresses = profile.Addresses
	}
	if user.Preferences == nil {
		user.Preferences = profile.Preferences
	}
	if user.ID != "" {
		s.sessions.SetUser(ctx, &user)
	}
	return profile, nil
}

// UpdateName changes the customer's display name
func (s *ProfileService) UpdateName(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return validation.ValidationError{Field: "name", Message: "Please enter your name"}
	}

	if err := s.client.Users().UpdateProfile(ctx, api.ProfileUpdate{Name: name}); err != nil {
		return userError(err, "Failed to update profile")
	}

	snap := s.sessions.Snapshot()
	if snap.User != nil {
		snap.User.Name = name
		s.sessions.SetUser(ctx, snap.User)
	}
	return nil
}

// SavePreferences stores the dietary preferences. A successful save activates
// the account.
func (s *ProfileService) SavePreferences(ctx context.Context, prefs models.Preferences) error {
	prefs.FavDishes = strings.TrimSpace(prefs.FavDishes)
	if err := validation.ValidatePreferences(prefs); err != nil {
		return err
	}

	if err := s.client.Users().AddPreferences(ctx, prefs); err != nil {
		return userError(err, "Failed to save preferences")
	}

	snap := s.sessions.Snapshot()
	if snap.User != nil {
		snap.User.Preferences = &prefs
		snap.User.IsActive = true
		s.sessions.SetUser(ctx, snap.User)
	}
	s.log.WithField("veg_pref", prefs.VegPref).Info("Preferences saved")
	return nil
}
