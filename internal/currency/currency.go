package currency

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Currency is one entry in the supported-currency table.
type Currency struct {
	Code       string  `json:"code"`
	Symbol     string  `json:"symbol"`
	Name       string  `json:"name"`
	MinimumFee float64 `json:"minimumFee"`
}

// The closed set of currencies the product moves money in. Minimum fees are
// higher for currencies with large absolute units.
var currencies = map[string]Currency{
	"USD": {Code: "USD", Symbol: "$", Name: "US Dollar", MinimumFee: 1},
	"EUR": {Code: "EUR", Symbol: "€", Name: "Euro", MinimumFee: 1},
	"GBP": {Code: "GBP", Symbol: "£", Name: "British Pound", MinimumFee: 1},
	"CAD": {Code: "CAD", Symbol: "C$", Name: "Canadian Dollar", MinimumFee: 1.5},
	"NGN": {Code: "NGN", Symbol: "₦", Name: "Nigerian Naira", MinimumFee: 50},
	"KES": {Code: "KES", Symbol: "KSh", Name: "Kenyan Shilling", MinimumFee: 50},
	"GHS": {Code: "GHS", Symbol: "₵", Name: "Ghanaian Cedi", MinimumFee: 5},
	"ZAR": {Code: "ZAR", Symbol: "R", Name: "South African Rand", MinimumFee: 10},
}

// countryCurrency maps recipient country to its local currency, used to
// auto-populate receiveCurrency on the Send flow's amount step.
var countryCurrency = map[string]string{
	"US": "USD",
	"GB": "GBP",
	"CA": "CAD",
	"NG": "NGN",
	"KE": "KES",
	"GH": "GHS",
	"ZA": "ZAR",
	"DE": "EUR",
	"FR": "EUR",
	"ES": "EUR",
	"IT": "EUR",
	"NL": "EUR",
	"PT": "EUR",
	"IE": "EUR",
}

// Lookup returns the metadata for a currency code.
func Lookup(code string) (Currency, bool) {
	c, ok := currencies[strings.ToUpper(code)]
	return c, ok
}

// Supported reports whether code is in the currency table.
func Supported(code string) bool {
	_, ok := Lookup(code)
	return ok
}

// ForCountry returns the local currency for an ISO 3166-1 alpha-2 country
// code, if the country is one we pay out to.
func ForCountry(country string) (string, bool) {
	code, ok := countryCurrency[strings.ToUpper(country)]
	return code, ok
}

// Format renders an amount as "symbol + grouped amount" with two decimal
// places, e.g. Format(1234.5, "USD") == "$1,234.50". Unknown codes fall
// back to "<amount> <code>".
func Format(amount float64, code string) string {
	rendered := groupDigits(decimal.NewFromFloat(amount).StringFixed(2))

	c, ok := Lookup(code)
	if !ok {
		return fmt.Sprintf("%s %s", rendered, strings.ToUpper(code))
	}
	return c.Symbol + rendered
}

// groupDigits inserts thousands separators into a fixed-point decimal string.
func groupDigits(s string) string {
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}

	intPart, fracPart := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, fracPart = s[:i], s[i:]
	}

	var b strings.Builder
	for i, ch := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(ch)
	}

	out := b.String() + fracPart
	if neg {
		out = "-" + out
	}
	return out
}

// FeeSchedule prices a transfer: a percentage of the amount with a
// per-currency floor.
type FeeSchedule struct {
	Percentage decimal.Decimal
}

// NewFeeSchedule builds the schedule from config. FEE_PERCENTAGE is
// expressed in percent, default 0.5.
func NewFeeSchedule() FeeSchedule {
	viper.SetDefault("fees.percentage", 0.5)
	return FeeSchedule{
		Percentage: decimal.NewFromFloat(viper.GetFloat64("fees.percentage")),
	}
}

// Calculate returns max(amount * percentage, minimumFee(code)), rounded to
// two decimal places. Unknown currencies use no floor.
func (fs FeeSchedule) Calculate(amount float64, code string) float64 {
	pct := fs.Percentage.Div(decimal.NewFromInt(100))
	fee := decimal.NewFromFloat(amount).Mul(pct)

	if c, ok := Lookup(code); ok {
		minimum := decimal.NewFromFloat(c.MinimumFee)
		if fee.LessThan(minimum) {
			fee = minimum
		}
	}

	f, _ := fee.Round(2).Float64()
	return f
}

// CalculateFees applies the configured schedule.
func CalculateFees(amount float64, code string) float64 {
	return NewFeeSchedule().Calculate(amount, code)
}

// CurrencyAmount is a full quote for a transfer:
// ReceiveAmount = SendAmount * ExchangeRate, TotalAmount = SendAmount + Fees.
type CurrencyAmount struct {
	SendAmount      float64 `json:"sendAmount"`
	SendCurrency    string  `json:"sendCurrency"`
	ReceiveAmount   float64 `json:"receiveAmount"`
	ReceiveCurrency string  `json:"receiveCurrency"`
	ExchangeRate    float64 `json:"exchangeRate"`
	Fees            float64 `json:"fees"`
	TotalAmount     float64 `json:"totalAmount"`
	RateStale       bool    `json:"rateStale,omitempty"`
}
