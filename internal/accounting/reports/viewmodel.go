package reports

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var moneyPrinter = message.NewPrinter(language.English)

// FormatMoney renders an amount with thousand separators and two decimal
// places, the way the reports display it. Calculations stay on the
// decimal type; this is display only.
func FormatMoney(d decimal.Decimal) string {
	f, _ := d.Round(2).Float64()
	return moneyPrinter.Sprintf("%.2f", f)
}

// MoneyCell pairs the exact string amount with its display form, so API
// consumers can parse the one and render the other.
type MoneyCell struct {
	Amount  string `json:"amount"`
	Display string `json:"display"`
}

func NewMoneyCell(d decimal.Decimal) MoneyCell {
	return MoneyCell{Amount: d.StringFixed(2), Display: FormatMoney(d)}
}
