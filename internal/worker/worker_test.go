package worker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"joyeriapos/internal/apierror"
	"joyeriapos/internal/model"
	"joyeriapos/internal/service"
)

// ── Stubs ─────────────────────────────────────────────────────────────────────

type stubDocs struct {
	path    string
	cliente *model.Cliente
	err     error
}

var _ service.DocumentoService = (*stubDocs)(nil)

func (s *stubDocs) TicketPDF(context.Context, int64) (string, *model.Cliente, error) {
	return s.path, s.cliente, s.err
}

func (s *stubDocs) CierrePDF(context.Context, int64) (string, error) {
	return s.path, s.err
}

type stubMailer struct {
	host string
	sent []EmailJobPayload
	err  error
}

var _ Enviador = (*stubMailer)(nil)

func (m *stubMailer) Configurado() bool { return m.host != "" }

func (m *stubMailer) EnviarTicket(to, subject, body, pdfPath string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, EmailJobPayload{ToEmail: to, Subject: subject, Body: body, PDFPath: pdfPath})
	return nil
}

type stubEmails struct{ queued []EmailJobPayload }

var _ EmailQueue = (*stubEmails)(nil)

func (q *stubEmails) EncolarEmail(_ context.Context, p EmailJobPayload) error {
	q.queued = append(q.queued, p)
	return nil
}

func payload(t *testing.T, v any) json.RawMessage {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}

// ── Tests ─────────────────────────────────────────────────────────────────────

func TestTicketWorker_EncolaEmailDelCliente(t *testing.T) {
	email := "ana@example.com"
	docs := &stubDocs{path: "/tmp/ticket_3.pdf", cliente: &model.Cliente{Nombre: "Ana", Email: &email}}
	emails := &stubEmails{}
	w := NewTicketWorker(docs, &stubMailer{host: "smtp.example.com"}, emails, "Joyeria")

	require.NoError(t, w.Process(context.Background(), payload(t, TicketJobPayload{VentaID: 3})))
	require.Len(t, emails.queued, 1)
	assert.Equal(t, email, emails.queued[0].ToEmail)
	assert.Equal(t, "/tmp/ticket_3.pdf", emails.queued[0].PDFPath)
	assert.Contains(t, emails.queued[0].Subject, "#3")
}

func TestTicketWorker_SinEmailOSinSMTP(t *testing.T) {
	emails := &stubEmails{}

	w := NewTicketWorker(&stubDocs{path: "x.pdf", cliente: &model.Cliente{Nombre: "Beto"}}, &stubMailer{host: "smtp"}, emails, "Joyeria")
	require.NoError(t, w.Process(context.Background(), payload(t, TicketJobPayload{VentaID: 1})))

	email := "c@example.com"
	w = NewTicketWorker(&stubDocs{path: "x.pdf", cliente: &model.Cliente{Email: &email}}, &stubMailer{}, emails, "Joyeria")
	require.NoError(t, w.Process(context.Background(), payload(t, TicketJobPayload{VentaID: 1})))

	assert.Empty(t, emails.queued)
}

func TestTicketWorker_Errores(t *testing.T) {
	w := NewTicketWorker(&stubDocs{err: apierror.NotFound("venta", 9)}, &stubMailer{}, &stubEmails{}, "")
	err := w.Process(context.Background(), payload(t, TicketJobPayload{VentaID: 9}))
	assert.ErrorIs(t, err, ErrPermanent)

	w = NewTicketWorker(&stubDocs{err: errors.New("disk full")}, &stubMailer{}, &stubEmails{}, "")
	err = w.Process(context.Background(), payload(t, TicketJobPayload{VentaID: 9}))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrPermanent)

	err = w.Process(context.Background(), json.RawMessage(`{"venta_id":"x"}`))
	assert.ErrorIs(t, err, ErrPermanent)
}

func TestEmailWorker(t *testing.T) {
	m := &stubMailer{host: "smtp"}
	w := NewEmailWorker(m)
	p := EmailJobPayload{ToEmail: "ana@example.com", Subject: "Ticket", PDFPath: "t.pdf"}

	require.NoError(t, w.Process(context.Background(), payload(t, p)))
	assert.Equal(t, []EmailJobPayload{p}, m.sent)

	require.NoError(t, w.Process(context.Background(), payload(t, EmailJobPayload{})))

	m.err = errors.New("breaker open")
	assert.Error(t, w.Process(context.Background(), payload(t, p)))
}

func TestCierreWorker(t *testing.T) {
	w := NewCierreWorker(&stubDocs{path: "cierre_1.pdf"})
	require.NoError(t, w.Process(context.Background(), payload(t, CierreJobPayload{SesionID: 1})))

	w = NewCierreWorker(&stubDocs{err: apierror.Conflict("la caja sigue abierta")})
	assert.ErrorIs(t, w.Process(context.Background(), payload(t, CierreJobPayload{SesionID: 1})), ErrPermanent)
}

func TestComputeRetryBackoff(t *testing.T) {
	assert.Equal(t, 30*time.Second, computeRetryBackoff(0))
	assert.Equal(t, 30*time.Second, computeRetryBackoff(1))
	assert.Equal(t, time.Minute, computeRetryBackoff(2))
	assert.Equal(t, 4*time.Minute, computeRetryBackoff(4))
	assert.Equal(t, 10*time.Minute, computeRetryBackoff(6))
}
