package eastmoney

import (
	"fmt"
	"strconv"
	"strings"
)

// DTOs raw del API push2. Solo se usan dentro de este paquete.
// La conversión a domain entities se hace en mapping.go.
//
// Los campos del listado spot llegan escalados ×100 (céntimos enteros);
// las velas del endpoint histórico ya vienen en decimal.

// emNumber tolera los campos numéricos de push2, que llegan como número
// JSON o como "-" cuando el valor no existe (símbolo suspendido).
type emNumber float64

func (n *emNumber) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "-" || s == "null" {
		*n = 0
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("parse %q: %w", s, err)
	}
	*n = emNumber(f)
	return nil
}

// --- listado spot (clist/get) ---

// spotResponse es la respuesta paginada de GET /api/qt/clist/get.
type spotResponse struct {
	Data *spotData `json:"data"`
}

type spotData struct {
	Total int       `json:"total"`
	Diff  []spotRow `json:"diff"`
}

// spotRow es un símbolo del snapshot. push2 nombra los campos f<N>:
// f12 código, f14 nombre, f2 precio, f3 cambio %, f5 volumen (手), f6 importe.
type spotRow struct {
	Code      string   `json:"f12"`
	Name      string   `json:"f14"`
	Price     emNumber `json:"f2"`
	PctChange emNumber `json:"f3"`
	Volume    emNumber `json:"f5"`
	Amount    emNumber `json:"f6"`
}

// --- velas diarias (stock/kline/get) ---

// klineResponse es la respuesta de GET /api/qt/stock/kline/get.
type klineResponse struct {
	Data *klineData `json:"data"`
}

// klineData trae las velas como strings CSV en el orden de fields2:
// fecha,open,close,high,low,volumen,importe,amplitud,cambio%,cambio,rotación.
type klineData struct {
	Code   string   `json:"code"`
	Name   string   `json:"name"`
	Klines []string `json:"klines"`
}
