package service

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"momskitchen/internal/api"
	"momskitchen/internal/cart"
	"momskitchen/internal/models"
)

const menuListLimit = 20

// MenuService lists today's menus and puts them in the cart
type MenuService struct {
	client *api.Client
	cart   *cart.Store
	log    logrus.FieldLogger
}

// NewMenuService creates a new menu service
func NewMenuService(client *api.Client, cartStore *cart.Store, log logrus.FieldLogger) *MenuService {
	return &MenuService{
		client: client,
		cart:   cartStore,
		log:    log.WithField("component", "menu"),
	}
}

// List returns today's menus as display cards
func (s *MenuService) List(ctx context.Context) ([]models.MenuCard, error) {
	menus, err := s.client.Menus().List(ctx, menuListLimit)
	if err != nil {
		return nil, userError(err, "Failed to load menus")
	}

	cards := make([]models.MenuCard, 0, len(menus))
	for _, m := range menus {
		cards = append(cards, ToCard(m))
	}
	return cards, nil
}

// Get returns one menu as a display card
func (s *MenuService) Get(ctx context.Context, id string) (*models.MenuCard, error) {
	menu, err := s.client.Menus().Get(ctx, id)
	if err != nil {
		return nil, userError(err, "Failed to load menu")
	}
	card := ToCard(*menu)
	return &card, nil
}

// AddToCart adds quantity of the card to the cart unless that would exceed the
// menu's remaining orders
func (s *MenuService) AddToCart(card models.MenuCard, quantity int) error {
	if quantity < 1 {
		return cart.ErrInvalidQuantity
	}
	if err := s.cart.CheckLimit(card.ID, quantity, card.RemainingOrders); err != nil {
		return err
	}
	if err := s.cart.Add(card.CartLine(quantity), quantity); err != nil {
		return err
	}

	s.log.WithFields(logrus.Fields{"menu_id": card.ID, "quantity": quantity}).Debug("Added to cart")
	return nil
}

// ToCard fills in display fallbacks for a menu
func ToCard(m models.Menu) models.MenuCard {
	card := models.MenuCard{
		ID:              m.ID,
		Name:            orDefault(m.Name, "Special Menu"),
		Description:     orDefault(m.Description, "Delicious homemade food."),
		MomName:         "Unknown Mom",
		MomDescription:  "Specialized in delicious homemade food.",
		MomBusinessName: "Unknown Business",
		MomRating:       decimal.Zero,
		Price:           "₹" + m.TotalCost.String(),
		RemainingOrders: max(m.MaxOrders, 0),
		Items:           m.Items,
	}
	if m.Mom != nil {
		card.MomName = orDefault(m.Mom.Name, card.MomName)
	}
	if d := m.MomDetails; d != nil {
		card.MomDescription = orDefault(d.Description, card.MomDescription)
		card.MomBusinessName = orDefault(d.BusinessName, card.MomBusinessName)
		card.MomRating = d.Rating
	}
	if m.Image != nil && m.Image.URL != "" {
		url := m.Image.URL
		card.Image = &url
	}
	return card
}

// Search keeps the cards whose name, mom name or mom description contains query,
// ignoring case. An empty query keeps everything.
func Search(cards []models.MenuCard, query string) []models.MenuCard {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return cards
	}

	var out []models.MenuCard
	for _, c := range cards {
		if strings.Contains(strings.ToLower(c.Name), q) ||
			strings.Contains(strings.ToLower(c.MomName), q) ||
			strings.Contains(strings.ToLower(c.MomDescription), q) {
			out = append(out, c)
		}
	}
	return out
}

func orDefault(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}
