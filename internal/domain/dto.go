package domain

// BillItem is one row of the bill as sent to POST /generate_bill.
type BillItem struct {
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
	Total    float64 `json:"total"`
}

type BillRequest struct {
	Items          []BillItem `json:"items"`
	GrandTotal     float64    `json:"grand_total"`
	AdvanceAmount  float64    `json:"advance_amount"`
	DiscountAmount float64    `json:"discount_amount"`
	// BalanceAmount is optional on the wire; the service derives it when absent.
	BalanceAmount *float64 `json:"balance_amount,omitempty"`
	Location      string   `json:"location"`
	Date          string   `json:"date,omitempty"`
}

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

type BillResponse struct {
	Status     string `json:"status"`
	BillNumber string `json:"bill_number,omitempty"`
	ViewURL    string `json:"view_url,omitempty"`
	Message    string `json:"message,omitempty"`
}

func (r BillResponse) OK() bool { return r.Status == StatusSuccess }

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string `json:"token"`
}
