package validation

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

type sample struct {
	Email  string          `json:"email" validate:"required,email"`
	Name   string          `json:"name" validate:"max=5"`
	Mode   string          `json:"mode" validate:"omitempty,oneof=all personal shared"`
	Amount decimal.Decimal `json:"amount" validate:"positive_decimal"`
}

func valid() sample {
	return sample{Email: "a@b.co", Name: "ok", Amount: decimal.RequireFromString("1.50")}
}

func TestStruct(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*sample)
		wantMsg string
	}{
		{name: "valid", mutate: func(*sample) {}},
		{name: "missing email", mutate: func(s *sample) { s.Email = "" }, wantMsg: "'email' is required"},
		{name: "bad email", mutate: func(s *sample) { s.Email = "nope" }, wantMsg: "'email' must be a valid email"},
		{name: "long name", mutate: func(s *sample) { s.Name = "toolong" }, wantMsg: "'name' must be at most 5"},
		{name: "bad mode", mutate: func(s *sample) { s.Mode = "mine" }, wantMsg: "'mode' must be one of"},
		{name: "zero amount", mutate: func(s *sample) { s.Amount = decimal.Zero }, wantMsg: "'amount' must be a positive amount"},
		{name: "negative amount", mutate: func(s *sample) { s.Amount = decimal.NewFromInt(-3) }, wantMsg: "'amount' must be a positive amount"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := valid()
			tt.mutate(&s)

			err := Struct(s)
			if tt.wantMsg == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, ErrValidationFailed)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}
