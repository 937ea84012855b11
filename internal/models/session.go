package models

// Session holds the credentials and profile of the signed-in customer.
// The zero value is the logged-out state.
type Session struct {
	AccessToken  string       `json:"accessToken,omitempty"`
	RefreshToken string       `json:"refreshToken,omitempty"`
	User         *UserProfile `json:"user,omitempty"`
}

// IsAuthenticated reports whether the session carries an access token
func (s Session) IsAuthenticated() bool {
	return s.AccessToken != ""
}

// UserProfile is the account returned by login and /api/users/me
type UserProfile struct {
	ID          string       `json:"_id"`
	Name        string       `json:"name"`
	PhoneNumber string       `json:"phone_number"`
	Role        string       `json:"role"`
	IsActive    bool         `json:"is_active"`
	Addresses   []Address    `json:"addresses,omitempty"`
	Preferences *Preferences `json:"preferences,omitempty"`
}

// Profile is the data envelope of GET /api/users/me
type Profile struct {
	User        UserProfile  `json:"user"`
	Addresses   []Address    `json:"addresses"`
	Preferences *Preferences `json:"preferences,omitempty"`
}

// Address is a saved delivery address
type Address struct {
	ID          string `json:"_id,omitempty"`
	AddressLine string `json:"address_line"`
	City        string `json:"city"`
	State       string `json:"state"`
	Pincode     string `json:"pincode"`
	IsDefault   bool   `json:"is_default,omitempty"`
}

// Dietary preference values accepted by the backend
const (
	VegPrefVeg    = "veg"
	VegPrefNonVeg = "nonveg"
	VegPrefBoth   = "both"
)

// Preferences are the customer's dietary preferences
type Preferences struct {
	VegPref      string `json:"veg_pref"`
	Authenticity string `json:"authenticity,omitempty"`
	FavDishes    string `json:"fav_dishes,omitempty"`
}
