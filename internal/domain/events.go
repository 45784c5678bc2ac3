package domain

import "time"

const EventBillGenerated = "bill.generated"

// BillGenerated is published on the bills fanout exchange once a bill is stored.
type BillGenerated struct {
	Event      string     `json:"event"`
	BillNumber string     `json:"bill_number"`
	Date       time.Time  `json:"date"`
	Location   string     `json:"location"`
	Items      []BillItem `json:"items"`
	GrandTotal float64    `json:"grand_total"`
	Balance    float64    `json:"balance_amount"`
	ReceiptURL string     `json:"receipt_url,omitempty"`
}
