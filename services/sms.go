// services/sms.go
package services

import (
	"fmt"

	"zuperbill-backend/config"
	log "github.com/sirupsen/logrus"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// SMSSender delivers OTP codes over Twilio when a customer has a phone number
// on file. It is optional: NewSMSSender returns nil when Twilio credentials
// are not configured and callers skip the channel.
type SMSSender struct {
	client *twilio.RestClient
	from   string
}

func NewSMSSender(cfg *config.Settings) *SMSSender {
	if cfg.TwilioAccountSID == "" || cfg.TwilioAuthToken == "" || cfg.TwilioFrom == "" {
		return nil
	}
	return &SMSSender{
		client: twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: cfg.TwilioAccountSID,
			Password: cfg.TwilioAuthToken,
		}),
		from: cfg.TwilioFrom,
	}
}

func (s *SMSSender) SendOTP(phone, code string) error {
	params := &twilioApi.CreateMessageParams{}
	params.SetTo(phone)
	params.SetFrom(s.from)
	params.SetBody(fmt.Sprintf("Your Zuper Handy access code is %s. It expires in 2 minutes.", code))

	if _, err := s.client.Api.CreateMessage(params); err != nil {
		log.WithFields(log.Fields{"phone": phone, "error": err}).Error("OTP SMS failed")
		return err
	}
	return nil
}
