package ledger

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/osse101/SpinVault_Go/internal/domain"
)

// Formatter renders amounts and user messages
type Formatter struct {
	printer *message.Printer
}

// NewFormatter creates a formatter for tag
func NewFormatter(tag language.Tag) *Formatter {
	return &Formatter{printer: message.NewPrinter(tag)}
}

// Amount renders base units for display. Native coin amounts are shown in
// whole coins; everything else is a grouped integer.
func (f *Formatter) Amount(kind domain.PayoutKind, amount int64) string {
	switch kind {
	case domain.PayoutNativeCoin:
		return decimal.New(amount, -NativeCoinDecimals).String() + " " + NativeCoinSymbol
	case domain.PayoutNonFungibleAsset:
		return f.printer.Sprintf("%d asset", amount)
	case domain.PayoutFungibleToken:
		return f.printer.Sprintf("%d tokens", amount)
	default:
		return f.printer.Sprintf("%d credits", amount)
	}
}

// Sprintf formats with locale-aware number grouping
func (f *Formatter) Sprintf(format string, args ...any) string {
	return f.printer.Sprintf(format, args...)
}
