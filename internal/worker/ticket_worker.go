package worker

// ticket_worker.go
// Renders the PDF ticket of each new sale and, when the customer has an
// e-mail address and SMTP is configured, queues the e-mail that carries it.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"joyeriapos/internal/apierror"
	"joyeriapos/internal/service"
)

type TicketJobPayload struct {
	VentaID int64 `json:"venta_id"`
}

// EmailQueue is implemented by *Dispatcher.
type EmailQueue interface {
	EncolarEmail(ctx context.Context, payload EmailJobPayload) error
}

type TicketWorker struct {
	docs    service.DocumentoService
	mailer  Enviador
	emails  EmailQueue
	negocio string
}

func NewTicketWorker(docs service.DocumentoService, mailer Enviador, emails EmailQueue, negocio string) *TicketWorker {
	return &TicketWorker{docs: docs, mailer: mailer, emails: emails, negocio: negocio}
}

func (w *TicketWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload TicketJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("%w: invalid ticket payload: %v", ErrPermanent, err)
	}

	path, cliente, err := w.docs.TicketPDF(ctx, payload.VentaID)
	if err != nil {
		if apierror.Is(err, apierror.KindNotFound) {
			// sale deleted before the job ran
			return fmt.Errorf("%w: %v", ErrPermanent, err)
		}
		return err
	}
	log.Info().Int64("venta_id", payload.VentaID).Str("path", path).Msg("ticket_worker: PDF generated")

	if cliente == nil || cliente.Email == nil || *cliente.Email == "" || !w.mailer.Configurado() {
		return nil
	}
	err = w.emails.EncolarEmail(ctx, EmailJobPayload{
		ToEmail: *cliente.Email,
		Subject: fmt.Sprintf("%s - Ticket de compra #%d", w.negocio, payload.VentaID),
		Body:    fmt.Sprintf("Hola %s, adjuntamos el ticket de tu compra. Gracias por elegirnos.", cliente.Nombre),
		PDFPath: path,
	})
	if err != nil {
		return errors.Join(errors.New("ticket_worker: enqueue email"), err)
	}
	return nil
}
