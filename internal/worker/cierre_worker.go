package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"

	"joyeriapos/internal/apierror"
	"joyeriapos/internal/service"
)

type CierreJobPayload struct {
	SesionID int64 `json:"sesion_id"`
}

// CierreWorker renders the cash-close report of a closed session.
type CierreWorker struct {
	docs service.DocumentoService
}

func NewCierreWorker(docs service.DocumentoService) *CierreWorker {
	return &CierreWorker{docs: docs}
}

func (w *CierreWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload CierreJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("%w: invalid cierre payload: %v", ErrPermanent, err)
	}
	path, err := w.docs.CierrePDF(ctx, payload.SesionID)
	if err != nil {
		if k := apierror.KindOf(err); k == apierror.KindNotFound || k == apierror.KindConflict {
			return fmt.Errorf("%w: %v", ErrPermanent, err)
		}
		return err
	}
	log.Info().Int64("sesion_id", payload.SesionID).Str("path", path).Msg("cierre_worker: PDF generated")
	return nil
}
