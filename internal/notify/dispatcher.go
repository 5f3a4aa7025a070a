package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/Skotchmaster/dp_pos/pkg/logging"
)

var (
	ErrInvalidPhone       = errors.New("invalid phone number")
	ErrGatewayUnavailable = errors.New("sms gateway unavailable")
	ErrDeliveryFailed     = errors.New("sms delivery failed")
)

var sent = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "pos_notifications_total",
		Help: "SMS notifications by kind and outcome",
	},
	[]string{"kind", "outcome"},
)

type RecipientFailure struct {
	Phone  string `json:"phone"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// PartialDeliveryError means the gateway accepted the batch but some
// recipients were not reached.
type PartialDeliveryError struct {
	Failed    []RecipientFailure
	Delivered int
}

func (e *PartialDeliveryError) Error() string {
	parts := make([]string, 0, len(e.Failed))
	for _, f := range e.Failed {
		reason := f.Error
		if reason == "" {
			reason = f.Status
		}
		parts = append(parts, f.Phone+": "+reason)
	}
	return fmt.Sprintf("sms partially delivered (%d ok, %d failed): %s", e.Delivered, len(e.Failed), strings.Join(parts, "; "))
}

// Report describes one dispatch. Failed is set for partial and total failures
// reported per recipient.
type Report struct {
	Kind       Kind               `json:"kind"`
	Recipients []string           `json:"recipients"`
	Sent       bool               `json:"sent"`
	Failed     []RecipientFailure `json:"failedRecipients,omitempty"`
	Error      string             `json:"error,omitempty"`
}

type Dispatcher struct {
	Sender  Sender
	Timeout time.Duration
}

func NewDispatcher(s Sender, timeout time.Duration) *Dispatcher {
	return &Dispatcher{Sender: s, Timeout: timeout}
}

// NormalizePhone turns local (07XXXXXXXX) and international (+94...) numbers
// into the 94XXXXXXXXX form the gateway expects.
func NormalizePhone(p string) (string, error) {
	var b strings.Builder
	for _, r := range p {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	switch {
	case len(digits) == 10 && strings.HasPrefix(digits, "0"):
		digits = "94" + digits[1:]
	case len(digits) == 9:
		digits = "94" + digits
	}
	if len(digits) != 11 || !strings.HasPrefix(digits, "94") {
		return "", fmt.Errorf("%w: %q", ErrInvalidPhone, p)
	}
	return digits, nil
}

func (d *Dispatcher) Notify(ctx context.Context, kind Kind, phone string, data Data) (Report, error) {
	return d.Send(ctx, kind, []string{phone}, data)
}

// Send renders the message for kind and delivers it to every phone. The
// returned error is nil, *PartialDeliveryError, or wraps one of the
// package sentinels.
func (d *Dispatcher) Send(ctx context.Context, kind Kind, phones []string, data Data) (Report, error) {
	l := logging.FromContext(ctx).With("svc", "notify.send", "kind", string(kind))
	rep := Report{Kind: kind}

	fail := func(outcome string, err error) (Report, error) {
		sent.WithLabelValues(string(kind), outcome).Inc()
		rep.Error = err.Error()
		l.Warn("sms_failed", "outcome", outcome, "error", err)
		return rep, err
	}

	for _, p := range phones {
		n, err := NormalizePhone(p)
		if err != nil {
			return fail("invalid", err)
		}
		rep.Recipients = append(rep.Recipients, n)
	}
	if len(rep.Recipients) == 0 {
		return fail("invalid", fmt.Errorf("%w: no recipients", ErrInvalidPhone))
	}

	text, err := Render(kind, data)
	if err != nil {
		return fail("render", err)
	}

	if d.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.Timeout)
		defer cancel()
	}

	res, err := d.Sender.SendMessage(ctx, rep.Recipients, text)
	if err != nil {
		if !errors.Is(err, ErrGatewayUnavailable) {
			err = fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
		}
		return fail("unavailable", err)
	}

	if res.Success {
		rep.Sent = true
		sent.WithLabelValues(string(kind), "sent").Inc()
		l.Info("sms_sent", "recipients", len(rep.Recipients))
		return rep, nil
	}

	if res.Result != nil {
		ok := 0
		for _, m := range res.Result.Messages {
			if strings.EqualFold(m.Status, "success") {
				ok++
				continue
			}
			rep.Failed = append(rep.Failed, RecipientFailure{Phone: m.Mobile, Status: m.Status, Error: m.Error})
		}
		if len(rep.Failed) > 0 && ok > 0 {
			rep.Sent = true
			return fail("partial", &PartialDeliveryError{Failed: rep.Failed, Delivered: ok})
		}
		if len(rep.Failed) > 0 {
			return fail("failed", fmt.Errorf("%w: all %d recipients failed", ErrDeliveryFailed, len(rep.Failed)))
		}
	}

	reason := res.Error
	if reason == "" {
		reason = "unknown reason"
	}
	return fail("failed", fmt.Errorf("%w: %s", ErrDeliveryFailed, reason))
}
