package main

import (
	"log/slog"

	"slotbook/internal/config"
	"slotbook/internal/notify"
	"slotbook/internal/recipients"
)

// newHub registers cancellation subscribers in delivery order: staff emails,
// audit log, SMS, then the message broker. Unconfigured channels are skipped.
func newHub(cfg config.Config, rec *recipients.Store, log *slog.Logger) (*notify.Hub, func(), error) {
	hub := notify.NewHub(log)
	closeFn := func() {}

	if cfg.SendGridAPIKey != "" {
		mail := notify.NewSendGridClient(cfg.SendGridAPIKey)
		emailCfg := notify.EmailConfig{FromEmail: cfg.MailFromEmail, FromName: cfg.MailFromName}
		hub.Subscribe("doctor-email", notify.NewEmail(mail, emailCfg, "doctor", rec.Doctor, log))
		hub.Subscribe("secretary-email", notify.NewEmail(mail, emailCfg, "secretary", rec.Secretary, log))
	} else {
		log.Warn("sendgrid api key not set; cancellation emails disabled")
	}

	hub.Subscribe("audit", notify.AuditLogger(log))

	if cfg.SMSEnabled() {
		api := notify.NewTwilioClient(cfg.TwilioAccountSID, cfg.TwilioAuthToken)
		hub.Subscribe("sms", notify.NewSMS(api, cfg.TwilioFromNumber, cfg.TwilioToNumber, log))
	}

	if cfg.AMQPURL != "" {
		conn, broker, err := notify.DialBroker(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			return nil, nil, err
		}
		hub.Subscribe("amqp", broker)
		closeFn = func() {
			if err := conn.Close(); err != nil {
				log.Warn("amqp close failed", slog.Any("err", err))
			}
		}
	}

	return hub, closeFn, nil
}
