package cart

import "github.com/shopspring/decimal"

// Tasa fija de IVA sobre el subtotal.
var taxRate = decimal.NewFromFloat(0.15)

// Totals desglose a pagar. Siempre derivado de las líneas vigentes, nunca
// cacheado: recalcular en cada render evita totales rancios.
type Totals struct {
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

// Totals calcula subtotal, IVA (15%) y total de las líneas actuales.
func (s *Store) Totals() Totals {
	s.mu.Lock()
	defer s.mu.Unlock()

	subtotal := decimal.Zero
	for _, l := range s.lines {
		subtotal = subtotal.Add(l.Subtotal())
	}
	tax := subtotal.Mul(taxRate)
	return Totals{
		Subtotal: subtotal,
		Tax:      tax,
		Total:    subtotal.Add(tax),
	}
}
