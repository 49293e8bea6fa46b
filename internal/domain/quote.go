package domain

import "strings"

// Quote es una fila del snapshot spot del mercado: el universo de
// símbolos a escanear. Solo la usan los adapters y el filtro de
// universo; el core nunca la ve.
type Quote struct {
	Code      string // código de 6 dígitos, ej. "600519"
	Name      string
	Price     float64
	PctChange float64
	Volume    float64
	Amount    float64
}

// IsST devuelve true si el nombre marca tratamiento especial o riesgo
// de delisting (ST, *ST, 退). Esos símbolos se excluyen del universo.
func (q Quote) IsST() bool {
	return strings.Contains(q.Name, "ST") || strings.Contains(q.Name, "退")
}

// Suspended devuelve true si el símbolo parece suspendido: sin precio
// o sin volumen en el snapshot.
func (q Quote) Suspended() bool {
	return q.Price <= 0 || q.Volume <= 0
}

// SecID devuelve el identificador mercado.código que usa la API de
// EastMoney: 0.XXXXXX para Shenzhen, 1.XXXXXX para Shanghai.
func (q Quote) SecID() string {
	return SecIDFor(q.Code)
}

// SecIDFor mapea un código de 6 dígitos a su secid de EastMoney.
// Códigos 6xxxxx cotizan en Shanghai, el resto (0xxxxx, 3xxxxx) en
// Shenzhen.
func SecIDFor(code string) string {
	if strings.HasPrefix(code, "6") {
		return "1." + code
	}
	return "0." + code
}
