package service

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"joyeriapos/internal/apierror"
	"joyeriapos/internal/dto"
	"joyeriapos/internal/model"
	"joyeriapos/internal/money"
	"joyeriapos/internal/repository"
)

type CajaService interface {
	Abrir(ctx context.Context, req dto.AbrirCajaRequest) (*model.SesionCaja, error)
	RegistrarIngreso(ctx context.Context, req dto.MovimientoCajaRequest) (*model.MovimientoCaja, error)
	RegistrarRetiro(ctx context.Context, req dto.MovimientoCajaRequest) (*model.MovimientoCaja, error)
	RegistrarDevolucion(ctx context.Context, req dto.MovimientoCajaRequest) (*model.MovimientoCaja, error)
	Cerrar(ctx context.Context, sesionID int64, req dto.CerrarCajaRequest) (*dto.CierreCajaResponse, error)
	// EstadoCaja recomputes the reconciliation without writing anything.
	EstadoCaja(ctx context.Context, sesionID int64, contado *decimal.Decimal) (*dto.EstadoCajaResponse, error)
	SesionActiva(ctx context.Context) (*dto.EstadoCajaResponse, error)
	Historial(ctx context.Context) ([]model.SesionCaja, error)
	ListarMovimientos(ctx context.Context, sesionID int64) ([]model.MovimientoCaja, error)
}

type cajaService struct {
	store  repository.TxRunner
	repo   repository.CajaRepository
	ventas repository.VentaRepository
	jobs   Encolador
	now    func() time.Time
}

func NewCajaService(store repository.TxRunner, repo repository.CajaRepository, ventas repository.VentaRepository, jobs Encolador) CajaService {
	return &cajaService{store: store, repo: repo, ventas: ventas, jobs: jobs, now: time.Now}
}

// ── Abrir ─────────────────────────────────────────────────────────────────────

func (s *cajaService) Abrir(ctx context.Context, req dto.AbrirCajaRequest) (*model.SesionCaja, error) {
	if req.SaldoInicial.IsNegative() {
		return nil, apierror.Validation("saldo_inicial", "el saldo inicial no puede ser negativo")
	}

	var sesion model.SesionCaja
	err := s.store.Transaction(ctx, func(tx *repository.Tx) error {
		if abierta := tx.SesionAbierta(); abierta != nil {
			return apierror.Conflict("ya existe una caja abierta").With("sesion_id", abierta.ID)
		}
		sesion = tx.AgregarSesion(model.SesionCaja{
			SaldoInicial: money.Round2(req.SaldoInicial),
			Estado:       model.CajaAbierta,
			AbiertaEn:    tx.Now(),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Info().Int64("sesion_id", sesion.ID).Str("saldo_inicial", sesion.SaldoInicial.StringFixed(2)).Msg("Caja abierta")
	return &sesion, nil
}

// ── Movimientos ───────────────────────────────────────────────────────────────
// Append-only. A retiro may not take more cash than the register should hold.

func (s *cajaService) RegistrarIngreso(ctx context.Context, req dto.MovimientoCajaRequest) (*model.MovimientoCaja, error) {
	return s.registrar(ctx, model.MovimientoIngreso, req)
}

func (s *cajaService) RegistrarRetiro(ctx context.Context, req dto.MovimientoCajaRequest) (*model.MovimientoCaja, error) {
	return s.registrar(ctx, model.MovimientoRetiro, req)
}

func (s *cajaService) RegistrarDevolucion(ctx context.Context, req dto.MovimientoCajaRequest) (*model.MovimientoCaja, error) {
	return s.registrar(ctx, model.MovimientoDevolucion, req)
}

func (s *cajaService) registrar(ctx context.Context, tipo string, req dto.MovimientoCajaRequest) (*model.MovimientoCaja, error) {
	monto := money.Round2(req.Monto)
	if !monto.IsPositive() {
		return nil, apierror.InvalidAmount("monto", req.Monto.String())
	}

	var mov model.MovimientoCaja
	err := s.store.Transaction(ctx, func(tx *repository.Tx) error {
		ses := tx.SesionAbierta()
		if ses == nil {
			return apierror.NoOpenRegister()
		}
		if tipo == model.MovimientoRetiro {
			estado := CalcularEstadoCaja(ses.SaldoInicial, tx.VentasEntre(ses.AbiertaEn, tx.Now()), tx.MovimientosCaja(ses.ID), nil)
			if monto.GreaterThan(estado.EfectivoEsperado) {
				return apierror.WithdrawalExceedsAvailable(monto, estado.EfectivoEsperado)
			}
		}
		mov = tx.AgregarMovimientoCaja(model.MovimientoCaja{
			SesionID: ses.ID,
			Tipo:     tipo,
			Monto:    monto,
			Motivo:   req.Motivo,
			Fecha:    tx.Now(),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Info().Int64("sesion_id", mov.SesionID).Str("tipo", tipo).Str("monto", monto.StringFixed(2)).Msg("Movimiento de caja registrado")
	return &mov, nil
}

// ── Cerrar ────────────────────────────────────────────────────────────────────
// Freezes the reconciliation into the session. Closing an already closed
// session returns the frozen values untouched.

func (s *cajaService) Cerrar(ctx context.Context, sesionID int64, req dto.CerrarCajaRequest) (*dto.CierreCajaResponse, error) {
	var contado *decimal.Decimal
	if req.EfectivoContado != nil {
		if req.EfectivoContado.IsNegative() {
			return nil, apierror.InvalidAmount("efectivo_contado", req.EfectivoContado.String())
		}
		contado = ptr(money.Round2(*req.EfectivoContado))
	}

	var resp dto.CierreCajaResponse
	err := s.store.Transaction(ctx, func(tx *repository.Tx) error {
		ses := tx.FindSesion(sesionID)
		if ses == nil {
			return apierror.NotFound("sesion de caja", sesionID)
		}
		if ses.Estado == model.CajaCerrada {
			resp = cierreCongelado(*ses)
			return nil
		}

		cerradaEn := tx.Now()
		estado := CalcularEstadoCaja(ses.SaldoInicial, tx.VentasEntre(ses.AbiertaEn, cerradaEn), tx.MovimientosCaja(ses.ID), contado)
		pct := desvioPct(estado)
		clasificacion := clasificarDesvio(pct)

		montoFinal := estado.EfectivoEsperado
		if contado != nil {
			montoFinal = *contado
		}
		ses.Estado = model.CajaCerrada
		ses.CerradaEn = &cerradaEn
		ses.MontoEsperado = ptr(estado.EfectivoEsperado)
		ses.Diferencia = ptr(estado.Diferencia)
		ses.MontoFinal = &montoFinal
		ses.Clasificacion = &clasificacion
		ses.Observaciones = req.Observaciones
		ses.Cierre = &estado
		if err := tx.ActualizarSesion(*ses); err != nil {
			return err
		}

		resp = dto.CierreCajaResponse{
			Sesion:        *ses,
			Estado:        estado,
			DesvioPct:     pct,
			Clasificacion: clasificacion,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if resp.YaCerrada {
		return &resp, nil
	}

	ev := log.Info()
	if resp.Clasificacion == "critico" {
		ev = log.Warn()
	}
	ev.Int64("sesion_id", sesionID).
		Str("esperado", resp.Estado.EfectivoEsperado.StringFixed(2)).
		Str("diferencia", resp.Estado.Diferencia.StringFixed(2)).
		Str("clasificacion", resp.Clasificacion).
		Msg("Caja cerrada")

	if s.jobs != nil {
		if err := s.jobs.EncolarCierre(ctx, sesionID); err != nil {
			log.Warn().Err(err).Int64("sesion_id", sesionID).Msg("No se pudo encolar el reporte de cierre")
		}
	}
	return &resp, nil
}

func cierreCongelado(ses model.SesionCaja) dto.CierreCajaResponse {
	resp := dto.CierreCajaResponse{Sesion: ses, YaCerrada: true}
	if ses.Cierre != nil {
		resp.Estado = *ses.Cierre
		resp.DesvioPct = desvioPct(*ses.Cierre)
	}
	if ses.Clasificacion != nil {
		resp.Clasificacion = *ses.Clasificacion
	}
	return resp
}

// ── Queries ───────────────────────────────────────────────────────────────────

// EstadoCaja recomputes over [abierta_en, cerrada_en] for closed sessions and
// [abierta_en, now] for the open one.
func (s *cajaService) EstadoCaja(ctx context.Context, sesionID int64, contado *decimal.Decimal) (*dto.EstadoCajaResponse, error) {
	ses, err := s.repo.FindSesion(ctx, sesionID)
	if err != nil {
		return nil, err
	}
	if contado != nil && contado.IsNegative() {
		return nil, apierror.InvalidAmount("efectivo_contado", contado.String())
	}

	hasta := s.now()
	if ses.CerradaEn != nil {
		hasta = *ses.CerradaEn
	}
	ventas, err := s.ventas.VentasEntre(ctx, ses.AbiertaEn, hasta)
	if err != nil {
		return nil, err
	}
	movs, err := s.repo.MovimientosCaja(ctx, ses.ID)
	if err != nil {
		return nil, err
	}
	if contado != nil {
		contado = ptr(money.Round2(*contado))
	}

	if movs == nil {
		movs = []model.MovimientoCaja{}
	}
	return &dto.EstadoCajaResponse{
		Sesion:      *ses,
		Estado:      CalcularEstadoCaja(ses.SaldoInicial, ventas, movs, contado),
		Movimientos: movs,
	}, nil
}

func (s *cajaService) SesionActiva(ctx context.Context) (*dto.EstadoCajaResponse, error) {
	ses, err := s.repo.SesionAbierta(ctx)
	if err != nil {
		return nil, err
	}
	if ses == nil {
		return nil, apierror.NoOpenRegister()
	}
	return s.EstadoCaja(ctx, ses.ID, nil)
}

func (s *cajaService) Historial(ctx context.Context) ([]model.SesionCaja, error) {
	return s.repo.ListSesiones(ctx)
}

func (s *cajaService) ListarMovimientos(ctx context.Context, sesionID int64) ([]model.MovimientoCaja, error) {
	if _, err := s.repo.FindSesion(ctx, sesionID); err != nil {
		return nil, err
	}
	return s.repo.MovimientosCaja(ctx, sesionID)
}
