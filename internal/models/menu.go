package models

import (
	"github.com/shopspring/decimal"
)

// Menu is a day's menu as listed by GET /api/menus
type Menu struct {
	ID          string          `json:"_id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	TotalCost   decimal.Decimal `json:"total_cost"`
	MaxOrders   int             `json:"max_orders"`
	Image       *MenuImage      `json:"image,omitempty"`
	Mom         *MomRef         `json:"mom_id,omitempty"`
	MomDetails  *MomDetails     `json:"mom_details,omitempty"`
	Items       []MenuItem      `json:"items"`
}

type MenuImage struct {
	URL string `json:"url"`
}

type MomRef struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
}

type MomDetails struct {
	BusinessName string          `json:"business_name"`
	Description  string          `json:"description"`
	Rating       decimal.Decimal `json:"rating"`
}

// MenuItem is one dish within a menu
type MenuItem struct {
	ItemName    string `json:"item_name"`
	Description string `json:"description"`
	Veg         bool   `json:"veg"`
}

// MenuCard is the display form of a Menu, with fallbacks for missing fields
type MenuCard struct {
	ID              string
	Name            string
	Description     string
	MomName         string
	MomDescription  string
	MomBusinessName string
	MomRating       decimal.Decimal
	Price           string
	RemainingOrders int
	Image           *string
	Items           []MenuItem
}

// CartLine snapshots the card into a cart line with the given quantity
func (c MenuCard) CartLine(quantity int) CartLine {
	return CartLine{
		ID:              c.ID,
		Name:            c.Name,
		Price:           c.Price,
		Image:           c.Image,
		RemainingOrders: c.RemainingOrders,
		Quantity:        quantity,
	}
}
