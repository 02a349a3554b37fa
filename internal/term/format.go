// Package term helpers de presentación para los clientes de terminal.
package term

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// printer formatea números con separadores del español (1.234,50).
var printer = message.NewPrinter(language.Spanish)

// Money formatea un monto con símbolo de córdoba y dos decimales.
func Money(d decimal.Decimal) string {
	f, _ := d.Round(2).Float64()
	return printer.Sprintf("C$ %.2f", f)
}

// Count formatea un entero con separador de miles.
func Count(n int64) string {
	return printer.Sprintf("%d", n)
}
