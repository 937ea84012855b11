package service

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"

	"momskitchen/internal/api"
	"momskitchen/internal/models"
	"momskitchen/internal/validation"
)

var (
	ErrOnlyAddress    = errors.New("cannot delete the only address")
	ErrDefaultAddress = errors.New("cannot delete the default address")
)

const (
	onlyAddressMessage    = "Cannot delete the only address. At least one address must be present."
	defaultAddressMessage = "Cannot delete the active address. Please activate another address first."
)

// AddressService manages the customer's saved delivery addresses
type AddressService struct {
	client *api.Client
	log    logrus.FieldLogger
}

// NewAddressService creates a new address service
func NewAddressService(client *api.Client, log logrus.FieldLogger) *AddressService {
	return &AddressService{
		client: client,
		log:    log.WithField("component", "address"),
	}
}

// List returns the saved addresses
func (s *AddressService) List(ctx context.Context) ([]models.Address, error) {
	profile, err := s.client.Users().Me(ctx)
	if err != nil {
		return nil, userError(err, "Failed to load addresses")
	}
	return profile.Addresses, nil
}

// Add saves a new address. The first address a customer saves becomes the default.
func (s *AddressService) Add(ctx context.Context, a models.Address) error {
	a = trimAddress(a)
	if err := validation.ValidateAddress(a); err != nil {
		return err
	}

	existing, err := s.List(ctx)
	if err != nil {
		return err
	}
	a.ID = ""
	a.IsDefault = len(existing) == 0

	if err := s.client.Users().AddAddress(ctx, a); err != nil {
		return userError(err, "Failed to add address")
	}
	s.log.WithField("default", a.IsDefault).Info("Address added")
	return nil
}

// Update edits an existing address
func (s *AddressService) Update(ctx context.Context, id string, a models.Address) error {
	a = trimAddress(a)
	if err := validation.ValidateAddress(a); err != nil {
		return err
	}
	if err := s.client.Users().UpdateAddress(ctx, id, a); err != nil {
		return userError(err, "Failed to update address")
	}
	return nil
}

// MakeDefault selects the address used for delivery
func (s *AddressService) MakeDefault(ctx context.Context, id string) error {
	if err := s.client.Users().ToggleDefaultAddress(ctx, id); err != nil {
		return userError(err, "Failed to update address")
	}
	return nil
}

// Delete removes an address. The only address and the default address cannot be
// deleted.
func (s *AddressService) Delete(ctx context.Context, id string) error {
	addresses, err := s.List(ctx)
	if err != nil {
		return err
	}

	if len(addresses) <= 1 {
		return &UserError{Message: onlyAddressMessage, Err: ErrOnlyAddress}
	}

	target := findAddress(addresses, id)
	if target == nil {
		return ErrAddressNotFound
	}
	if target.IsDefault {
		return &UserError{Message: defaultAddressMessage, Err: ErrDefaultAddress}
	}

	if err := s.client.Users().DeleteAddress(ctx, id); err != nil {
		return userError(err, "Failed to delete address")
	}
	return nil
}

// DefaultAddress returns the delivery address: the default one, else the first.
// It returns nil when the customer has none.
func (s *AddressService) DefaultAddress(ctx context.Context) (*models.Address, error) {
	addresses, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return PickDefault(addresses), nil
}

// PickDefault returns the default address, the first one when none is marked,
// or nil for an empty list
func PickDefault(addresses []models.Address) *models.Address {
	if len(addresses) == 0 {
		return nil
	}
	for i := range addresses {
		if addresses[i].IsDefault {
			a := addresses[i]
			return &a
		}
	}
	a := addresses[0]
	return &a
}

func findAddress(addresses []models.Address, id string) *models.Address {
	for i := range addresses {
		if addresses[i].ID == id {
			return &addresses[i]
		}
	}
	return nil
}

func trimAddress(a models.Address) models.Address {
	a.AddressLine = strings.TrimSpace(a.AddressLine)
	a.City = strings.TrimSpace(a.City)
	a.State = strings.TrimSpace(a.State)
	a.Pincode = strings.TrimSpace(a.Pincode)
	return a
}
