package money_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/erp-automation/pkg/money"
)

func TestFormat_SeparadoresDeMiles(t *testing.T) {
	f := money.NewFormatter("en-US", "USD")
	assert.Contains(t, f.Format(decimal.RequireFromString("1234567.5")), "1,234,567.50")
	assert.Equal(t, "12,000", f.Number(12000))
}

func TestNewFormatter_ValoresInvalidosUsanDefault(t *testing.T) {
	f := money.NewFormatter("??", "XXXX")
	assert.NotEmpty(t, f.Format(decimal.NewFromInt(10)))
}

func TestNewFormatter_MonedaInvalidaUsaPesoColombiano(t *testing.T) {
	f := money.NewFormatter("en-US", "XXXX")
	got := f.Format(decimal.RequireFromString("1500"))
	assert.Contains(t, got, "1,500.00")
	assert.Equal(t, money.NewFormatter("en-US", "COP").Format(decimal.RequireFromString("1500")), got)
}

func TestDefault_FormateaMonto(t *testing.T) {
	f := money.Default()
	got := f.Format(decimal.RequireFromString("2500000"))
	assert.NotEmpty(t, got)
	assert.Contains(t, got, "2")
	assert.Contains(t, got, "500")
}
