// Package money formatea montos para mensajes y plantillas de email.
package money

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Formatter formatea montos con separadores de miles según el idioma.
type Formatter struct {
	printer *message.Printer
	unit    currency.Unit
}

// NewFormatter crea un formateador para el idioma (BCP 47) y la moneda ISO 4217.
// Valores inválidos caen en es-CO / COP.
func NewFormatter(lang, iso string) *Formatter {
	tag, err := language.Parse(lang)
	if err != nil {
		tag = language.MustParse("es-CO")
	}
	unit, err := currency.ParseISO(iso)
	if err != nil {
		unit = currency.MustParseISO("COP")
	}
	return &Formatter{printer: message.NewPrinter(tag), unit: unit}
}

// Default formateador es-CO / COP.
func Default() *Formatter {
	return NewFormatter("es-CO", "COP")
}

// Format devuelve el monto con símbolo de moneda y dos decimales.
func (f *Formatter) Format(amount decimal.Decimal) string {
	v, _ := amount.Round(2).Float64()
	return f.printer.Sprintf("%v %.2f", currency.Symbol(f.unit), v)
}

// Number entero con separadores de miles.
func (f *Formatter) Number(n int) string {
	return f.printer.Sprintf("%d", n)
}
