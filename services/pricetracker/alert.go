package pricetracker

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/jordan-wright/email"
	"go.opentelemetry.io/otel/codes"
)

type SmtpConfig struct {
	Server       string `json:"server"`
	Port         int    `json:"port"`
	EmailAddress string `json:"email_address"`
	Password     string `json:"password"`
}

type AlertConfig struct {
	Smtp       SmtpConfig `json:"smtp"`
	Recipients []string   `json:"recipients"`
}

// Alerter mails a heads-up when a tracked product hits a new all-time
// low. Optional: a nil *Alerter disables alerting entirely.
type Alerter struct {
	config AlertConfig
}

func NewAlerter(config AlertConfig) *Alerter {
	return &Alerter{config: config}
}

func (a *Alerter) NotifyNewLow(ctx context.Context, productName, productURL string, snap Snapshot, previousLow float64) error {
	ctx, span := tracer.Start(ctx, "NotifyNewLow")
	defer span.End()

	mail := email.NewEmail()
	mail.From = fmt.Sprintf("Pricewatch <%s>", a.config.Smtp.EmailAddress)
	mail.To = a.config.Recipients
	mail.Subject = fmt.Sprintf("New lowest price: %s", productName)

	body := fmt.Sprintf(`%s dropped to a new recorded low.

Shop:     %s
Price:    %.2f Kč (previous low %.2f Kč)
Amount:   %s
Valid:    %s

%s`,
		productName,
		snap.ShopName,
		snap.Price,
		previousLow,
		snap.Amount,
		snap.Expiration,
		productURL,
	)
	mail.Text = []byte(body)

	addr := fmt.Sprintf("%s:%d", a.config.Smtp.Server, a.config.Smtp.Port)
	err := mail.Send(
		addr,
		smtp.PlainAuth("", a.config.Smtp.EmailAddress, a.config.Smtp.Password, a.config.Smtp.Server),
	)
	if err != nil && strings.Contains(err.Error(), "server doesn't support AUTH") {
		err = mail.Send(addr, nil)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to send alert email")
		return err
	}

	return nil
}
