package notify

import (
	"context"
	"fmt"
	"net/http"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

const sendGridEndpoint = "/v3/mail/send"

// SendGridGateway sends through the SendGrid v3 mail API.
type SendGridGateway struct {
	apiKey string
	from   string
	host   string
}

func NewSendGridGateway(apiKey, from string) *SendGridGateway {
	return &SendGridGateway{apiKey: apiKey, from: from, host: "https://api.sendgrid.com"}
}

func (g *SendGridGateway) Send(ctx context.Context, msg Message) Result {
	return protect(ProviderSendGrid, func() Result {
		if msg.To == "" {
			return Failed("sendgrid: recipient is empty")
		}

		m := mail.NewSingleEmail(mail.NewEmail("", g.from), msg.Subject, mail.NewEmail("", msg.To), msg.Text, msg.HTML)
		req := sendgrid.GetRequest(g.apiKey, sendGridEndpoint, g.host)
		req.Method = rest.Post
		req.Body = mail.GetRequestBody(m)

		resp, err := sendgrid.MakeRequestWithContext(ctx, req)
		if err != nil {
			return Failed(fmt.Sprintf("sendgrid: %v", err))
		}
		if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
			return Failed(fmt.Sprintf("sendgrid: unexpected status %d", resp.StatusCode))
		}
		return Ok()
	})
}
