package notify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/twilio/twilio-go"
	twclient "github.com/twilio/twilio-go/client"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"
)

// twilioDefaultAPIURL - префикс, который клиент Twilio строит для Messages API
const twilioDefaultAPIURL = "https://api.twilio.com/2010-04-01"

// TwilioConfig - учетные данные Twilio REST API
type TwilioConfig struct {
	AccountSID string
	AuthToken  string
	From       string
	// APIURL заменяет адрес api.twilio.com, например для тестового стенда
	APIURL string
}

// TwilioSender отправляет SMS через Twilio Messages API, по одному сообщению на номер
type TwilioSender struct {
	from   string
	client *twilio.RestClient
}

func NewTwilioSender(cfg TwilioConfig, timeout time.Duration) *TwilioSender {
	base := &twclient.Client{
		Credentials: twclient.NewCredentials(cfg.AccountSID, cfg.AuthToken),
		HTTPClient:  &http.Client{Timeout: timeout},
	}
	base.SetAccountSid(cfg.AccountSID)

	var bc twclient.BaseClient = base
	if apiURL := strings.TrimRight(cfg.APIURL, "/"); apiURL != "" && apiURL != twilioDefaultAPIURL {
		bc = &rebasedClient{Client: base, apiURL: apiURL}
	}
	return &TwilioSender{
		from:   cfg.From,
		client: twilio.NewRestClientWithParams(twilio.ClientParams{Client: bc}),
	}
}

func (s *TwilioSender) Send(ctx context.Context, job Job) error {
	var errs []error
	for _, to := range job.To {
		if err := ctx.Err(); err != nil {
			return err
		}
		params := &openapi.CreateMessageParams{}
		params.SetTo(to)
		params.SetFrom(s.from)
		params.SetBody(job.Body)
		if _, err := s.client.Api.CreateMessage(params); err != nil {
			errs = append(errs, fmt.Errorf("sms to %s: %w", to, err))
		}
	}
	return errors.Join(errs...)
}

// rebasedClient направляет запросы клиента Twilio на другой базовый адрес
type rebasedClient struct {
	*twclient.Client
	apiURL string
}

func (c *rebasedClient) SendRequest(method string, rawURL string, data url.Values, headers map[string]interface{}, body ...byte) (*http.Response, error) {
	if rest, ok := strings.CutPrefix(rawURL, twilioDefaultAPIURL); ok {
		rawURL = c.apiURL + rest
	}
	return c.Client.SendRequest(method, rawURL, data, headers, body...)
}
