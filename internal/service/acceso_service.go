package service

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"joyeriapos/internal/apierror"
	"joyeriapos/internal/config"
	"joyeriapos/internal/dto"
)

// Areas protected by the access gate.
const (
	AreaCaja       = "caja"
	AreaReportes   = "reportes"
	AreaInventario = "inventario"
)

// AccesoService is the password gate in front of the sensitive screens. Each
// area counts its own failures; after GATE_MAX_INTENTOS consecutive failures
// the area is locked for GATE_COOLDOWN_SECONDS.
type AccesoService interface {
	Verificar(ctx context.Context, req dto.VerificarAccesoRequest) (*dto.AccesoResponse, error)
}

type intentosArea struct {
	fallos         int
	bloqueadoHasta time.Time
}

type accesoService struct {
	cfg      *config.Config
	mu       sync.Mutex
	intentos map[string]*intentosArea
	now      func() time.Time
}

func NewAccesoService(cfg *config.Config) AccesoService {
	if cfg.GatePasswordHash == "" {
		log.Warn().Msg("GATE_PASSWORD_HASH vacio: el acceso a las areas protegidas no pide clave")
	}
	return &accesoService{cfg: cfg, intentos: make(map[string]*intentosArea), now: time.Now}
}

func (s *accesoService) Verificar(_ context.Context, req dto.VerificarAccesoRequest) (*dto.AccesoResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	st := s.intentos[req.Area]
	if st == nil {
		st = &intentosArea{}
		s.intentos[req.Area] = st
	}
	if now.Before(st.bloqueadoHasta) {
		restante := int(math.Ceil(st.bloqueadoHasta.Sub(now).Seconds()))
		return nil, apierror.TooManyAttempts(req.Area, restante)
	}

	if s.cfg.GatePasswordHash != "" {
		if err := bcrypt.CompareHashAndPassword([]byte(s.cfg.GatePasswordHash), []byte(req.Password)); err != nil {
			st.fallos++
			restantes := s.cfg.GateMaxIntentos - st.fallos
			if restantes <= 0 {
				st.fallos = 0
				st.bloqueadoHasta = now.Add(s.cfg.GateCooldown())
				restantes = 0
				log.Warn().Str("area", req.Area).Time("hasta", st.bloqueadoHasta).Msg("Acceso bloqueado por intentos fallidos")
			}
			return nil, apierror.Unauthorized("clave incorrecta").With("intentos_restantes", restantes)
		}
	}
	delete(s.intentos, req.Area)

	token, err := s.generateToken(req.Area, now)
	if err != nil {
		return nil, err
	}
	return &dto.AccesoResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   s.cfg.JWTExpirationHours * 3600,
		Area:        req.Area,
	}, nil
}

func (s *accesoService) generateToken(area string, now time.Time) (string, error) {
	claims := jwt.MapClaims{
		"area": area,
		"jti":  uuid.NewString(),
		"exp":  now.Add(time.Duration(s.cfg.JWTExpirationHours) * time.Hour).Unix(),
		"iat":  now.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}
