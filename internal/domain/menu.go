package domain

// MenuItem is one stored row of the menu. A row with Picker set is a variant
// option; its Category then names the parent item.
type MenuItem struct {
	ID       int64   `json:"id"`
	Key      string  `json:"key"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Category string  `json:"category"`
	Picker   string  `json:"picker,omitempty"`
}

// ShopSettings is the per-account shop profile printed on every bill.
type ShopSettings struct {
	CompanyName string `json:"company_name"`
	ShopName    string `json:"shop_name"`
	Address     string `json:"address"`
	Mobile      string `json:"mobile"`
	Mobile2     string `json:"mobile2"`
}

type MenuResponse struct {
	Items []MenuItem `json:"items"`
}

// PriceUpdate maps menu item ids to their new price.
type PriceUpdate struct {
	Prices map[int64]float64 `json:"prices"`
}

type SignupRequest struct {
	Username        string `json:"username"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

// CredentialsRequest changes the caller's username, password or both. The
// current password is always required.
type CredentialsRequest struct {
	CurrentPassword string `json:"current_password"`
	NewUsername     string `json:"new_username,omitempty"`
	NewPassword     string `json:"new_password,omitempty"`
}
