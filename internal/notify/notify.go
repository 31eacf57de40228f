// Package notify renders and dispatches Scout email. Delivery is
// best-effort: the store write is the source of truth and a failed email is
// logged, never surfaced to the caller.
package notify

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/Roja-08/Scout-Nallur/internal/queue"
)

// Notification kinds. The queue message type carries the kind so the worker
// can route to the right template.
const (
	KindRegistration    = "registration"
	KindResendQR        = "resend-qr"
	KindProfileUpdate   = "profile-update"
	KindDeletion        = "deletion"
	KindPasswordReset   = "password-reset"
	KindAdminRegistered = "admin-registered"
)

// Job is one queued notification. Only the fields relevant to the kind are
// set; the QR data URL rides along for kinds that attach the image.
type Job struct {
	Kind        string            `json:"kind"`
	To          string            `json:"to"`
	Name        string            `json:"name,omitempty"`
	UserID      string            `json:"userId,omitempty"`
	Email       string            `json:"email,omitempty"`
	PhoneNumber string            `json:"phoneNumber,omitempty"`
	NIC         string            `json:"nic,omitempty"`
	QRCode      string            `json:"qrCode,omitempty"`
	StatusURL   string            `json:"statusUrl,omitempty"`
	Changes     map[string]string `json:"changes,omitempty"`
	AdminEmail  string            `json:"adminEmail,omitempty"`
	Role        string            `json:"role,omitempty"`
}

// Dispatcher publishes notification jobs onto the queue the mail worker
// drains. Constructed once at process start and injected into handlers.
type Dispatcher struct {
	q      queue.Queue
	logger *slog.Logger
}

// NewDispatcher creates a dispatcher over the given queue backend.
func NewDispatcher(q queue.Queue, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{q: q, logger: logger}
}

// Dispatch enqueues a job, fire-and-forget. Publish failures are absorbed
// here so no caller ever rolls back a committed store write over email.
func (d *Dispatcher) Dispatch(ctx context.Context, job Job) {
	if err := d.Publish(ctx, job); err != nil {
		d.logger.Error("notification publish failed", slog.String("kind", job.Kind), slog.String("to", job.To), slog.String("error", err.Error()))
	}
}

// Publish enqueues a job and reports failure to the caller. The QR resend
// endpoint uses this: there the email IS the point of the request.
func (d *Dispatcher) Publish(ctx context.Context, job Job) error {
	if d == nil || d.q == nil {
		return nil
	}
	body, err := json.Marshal(job)
	if err != nil {
		return err
	}
	if err := d.q.Publish(ctx, queue.Message{Type: job.Kind, Body: body}); err != nil {
		return err
	}
	d.logger.Info("notification queued", slog.String("kind", job.Kind), slog.String("to", job.To))
	return nil
}
