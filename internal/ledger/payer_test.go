package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePayer(t *testing.T) {
	tests := []struct {
		name      string
		paidBy    string
		shared    bool
		partnerID string
		want      string
		wantErr   error
	}{
		{name: "personal drops payer", paidBy: "split", shared: false, partnerID: "p", want: ""},
		{name: "split", paidBy: "split", shared: true, partnerID: "p", want: "split"},
		{name: "self", paidBy: "u", shared: true, partnerID: "p", want: "u"},
		{name: "partner id", paidBy: "p", shared: true, partnerID: "p", want: "p"},
		{name: "relative partner", paidBy: "partner", shared: true, partnerID: "p", want: "p"},
		{name: "empty means partner", paidBy: "", shared: true, partnerID: "p", want: "p"},
		{name: "relative partner while unlinked", paidBy: "partner", shared: true, want: "u"},
		{name: "empty while unlinked", paidBy: "", shared: true, want: "u"},
		{name: "stranger", paidBy: "x", shared: true, partnerID: "p", wantErr: ErrInvalidPayer},
		{name: "stranger while unlinked", paidBy: "x", shared: true, wantErr: ErrInvalidPayer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizePayer(tt.paidBy, tt.shared, "u", tt.partnerID)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)

			// every stored payer resolves for both partners
			if tt.shared && tt.partnerID != "" {
				assert.NotEqual(t, PayerUnknown, ResolvePayer(got, "u", "u", tt.partnerID))
				assert.NotEqual(t, PayerUnknown, ResolvePayer(got, "u", tt.partnerID, "u"))
			}
		})
	}
}
