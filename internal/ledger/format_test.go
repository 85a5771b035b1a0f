package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/text/language"

	"github.com/osse101/SpinVault_Go/internal/domain"
)

func TestFormatter_Amount(t *testing.T) {
	f := NewFormatter(language.English)

	tests := []struct {
		kind   domain.PayoutKind
		amount int64
		want   string
	}{
		{domain.PayoutItemCredit, 1234567, "1,234,567 credits"},
		{domain.PayoutFungibleToken, 100, "100 tokens"},
		{domain.PayoutNonFungibleAsset, 1, "1 asset"},
		{domain.PayoutNativeCoin, 10_000_000, "0.01 SOL"},
		{domain.PayoutNativeCoin, 1_500_000_000, "1.5 SOL"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, f.Amount(tt.kind, tt.amount))
		})
	}
}
