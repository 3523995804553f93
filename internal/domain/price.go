package domain

type Currency string

const (
	// CurrencyUnspecified is the sentinel some suppliers send when they do not
	// state a currency. A price carrying it can never be converted.
	CurrencyUnspecified Currency = "NotSpecified"

	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
	CurrencyGBP Currency = "GBP"
	CurrencyAED Currency = "AED"
)

type Price struct {
	Amount   float64  `json:"amount"`
	Currency Currency `json:"currency"`
}
