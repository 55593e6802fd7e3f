package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"
)

// MessageCreator is the part of the Twilio REST API the SMS subscriber uses.
type MessageCreator interface {
	CreateMessage(params *openapi.CreateMessageParams) (*openapi.ApiV2010Message, error)
}

func NewTwilioClient(accountSID, authToken string) MessageCreator {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username:   accountSID,
		Password:   authToken,
		AccountSid: accountSID,
	})
	return client.Api
}

type SMS struct {
	api  MessageCreator
	from string
	to   string
	log  *slog.Logger
}

func NewSMS(api MessageCreator, from, to string, log *slog.Logger) *SMS {
	if log == nil {
		log = slog.Default()
	}
	return &SMS{
		api:  api,
		from: from,
		to:   to,
		log:  log.With(slog.String("component", "notify.sms")),
	}
}

func (s *SMS) Notify(ctx context.Context, ev Event) error {
	body := "Reservation " + ev.ConfirmationCode + " has been cancelled."
	if ev.BookingDate != "" {
		body = fmt.Sprintf("Reservation %s for %s has been cancelled.", ev.ConfirmationCode, ev.BookingDate)
	}

	params := &openapi.CreateMessageParams{}
	params.SetTo(s.to)
	params.SetFrom(s.from)
	params.SetBody(body)

	resp, err := s.api.CreateMessage(params)
	if err != nil {
		return fmt.Errorf("send sms: %w", err)
	}

	sid := ""
	if resp != nil && resp.Sid != nil {
		sid = *resp.Sid
	}
	s.log.Info("cancellation sms sent", slog.String("confirmation_code", ev.ConfirmationCode), slog.String("sid", sid))
	return nil
}
