package domain

import "time"

type Bill struct {
	ID             int64      `json:"id"`
	Number         string     `json:"bill_number"`
	Date           time.Time  `json:"date"`
	CompanyName    string     `json:"company_name"`
	ShopName       string     `json:"shop_name"`
	Location       string     `json:"location"`
	ShopAddress    string     `json:"shop_address"`
	ShopMobile     string     `json:"shop_mobile"`
	ShopMobile2    string     `json:"shop_mobile2"`
	GrandTotal     float64    `json:"grand_total"`
	AdvanceAmount  float64    `json:"advance_amount"`
	DiscountAmount float64    `json:"discount_amount"`
	BalanceAmount  float64    `json:"balance_amount"`
	ReceiptURL     string     `json:"receipt_url,omitempty"`
	Items          []BillLine `json:"items"`
	CreatedAt      time.Time  `json:"created_at"`
}

type BillLine struct {
	ID         int64   `json:"id"`
	BillID     int64   `json:"bill_id"`
	ItemName   string  `json:"item_name"`
	Quantity   int     `json:"quantity"`
	UnitPrice  float64 `json:"unit_price"`
	TotalPrice float64 `json:"total_price"`
}

type User struct {
	ID           int64
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}
