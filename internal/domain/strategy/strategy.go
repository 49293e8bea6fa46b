package strategy

import "github.com/alejandrodnm/kscan/internal/domain"

// Strategy define el contrato para evaluar una serie enriquecida y decidir
// si un día concreto es punto de compra. Cada estrategia encapsula su propio
// conjunto de condiciones.
//
// Evaluate es función pura sobre bars[:idx+1]: solo puede mirar el bar idx
// y los anteriores, nunca los futuros. Historia insuficiente (campos de
// indicador a nil) produce una señal con Passes=false, no un error.
type Strategy interface {
	Name() string
	Evaluate(code, name string, bars []domain.EnrichedBar, idx int) domain.Signal
}
