package entity

import "time"

// Notification aviso de pedido nuevo en el panel admin.
// Vive solo en memoria durante la sesión: se limpia por acción del usuario
// o al reiniciar el proceso; nunca se persiste.
type Notification struct {
	LocalID  string    // uuid local, no viene del backend
	OrderID  int64
	Observed time.Time
	Read     bool
}
