package service

import (
	"strings"
	"time"

	"joyeriapos/internal/apierror"
	"joyeriapos/internal/model"
)

const layoutFecha = "2006-01-02"

// normalizarMetodoPago maps free-form input to one of the three payment
// methods. Anything not recognized is cash.
func normalizarMetodoPago(metodo string) string {
	switch strings.ToLower(strings.TrimSpace(metodo)) {
	case "tarjeta":
		return model.MetodoTarjeta
	case "transferencia":
		return model.MetodoTransferencia
	default:
		return model.MetodoEfectivo
	}
}

// parseRango turns two optional YYYY-MM-DD dates into an inclusive
// [desde 00:00, hasta 23:59:59.999] range in loc. Missing bounds fall back to
// defDesde / defHasta.
func parseRango(desde, hasta string, loc *time.Location, defDesde, defHasta time.Time) (time.Time, time.Time, error) {
	ini, fin := defDesde, defHasta
	if desde != "" {
		d, err := time.ParseInLocation(layoutFecha, desde, loc)
		if err != nil {
			return ini, fin, apierror.Validation("desde", "fecha invalida, use AAAA-MM-DD")
		}
		ini = d
	}
	if hasta != "" {
		h, err := time.ParseInLocation(layoutFecha, hasta, loc)
		if err != nil {
			return ini, fin, apierror.Validation("hasta", "fecha invalida, use AAAA-MM-DD")
		}
		fin = h.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
	if fin.Before(ini) {
		return ini, fin, apierror.Validation("hasta", "la fecha final es anterior a la inicial")
	}
	return ini, fin, nil
}

func inicioDelDia(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func ptr[T any](v T) *T { return &v }
