package emailsvc

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/SaramshGautam/collaBoard/core"
)

const (
	sendgridHost     = "https://api.sendgrid.com"
	sendgridEndpoint = "/v3/mail/send"
)

type sendgridService struct {
	outbox
	key      string
	inflight sync.WaitGroup
}

var _ core.EmailService = (*sendgridService)(nil)

func NewSendgridService(conf *core.Config, logger core.Logger) core.EmailService {
	return &sendgridService{outbox: newOutbox(conf, logger), key: conf.SendgridApiKey}
}

// SendMessages delivers every notice in the background.
func (svc *sendgridService) SendMessages(messages ...*core.EmailMessage) {
	for _, msg := range messages {
		m, ok := svc.prepare(msg)
		if !ok {
			continue
		}
		svc.inflight.Add(1)
		go func() {
			defer svc.inflight.Done()
			svc.deliver(m)
		}()
	}
}

// Wait blocks until every notice handed to SendMessages has been delivered or has failed.
func (svc *sendgridService) Wait() {
	svc.inflight.Wait()
}

// build gives every recipient a personalization of their own: members of a team
// never see each other's addresses. The template name becomes the SendGrid category.
func (svc *sendgridService) build(msg core.EmailMessage) *sgmail.SGMailV3 {
	m := sgmail.NewV3Mail()
	m.SetFrom(sgmail.NewEmail(svc.from.Name, svc.from.Address))
	m.Subject = msg.Subject
	if msg.Template != "" {
		m.AddCategories(msg.Template)
	}
	for _, to := range msg.To {
		p := sgmail.NewPersonalization()
		p.AddTos(sgmail.NewEmail(to.Name, to.Address))
		m.AddPersonalizations(p)
	}

	m.AddContent(sgmail.NewContent("text/plain", msg.TextContent))
	if msg.HTMLContent != "" {
		m.AddContent(sgmail.NewContent("text/html", msg.HTMLContent))
	}
	return m
}

func (svc *sendgridService) deliver(msg core.EmailMessage) {
	req := sendgrid.GetRequest(svc.key, sendgridEndpoint, sendgridHost)
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(svc.build(msg))

	res, err := sendgrid.API(req)
	switch {
	case err != nil:
		svc.logger.Error(fmt.Sprintf("sending %s email: %v", msg.Template, err), err)
	case res.StatusCode >= http.StatusBadRequest:
		svc.logger.Error(fmt.Sprintf("sending %s email: status %d: %s", msg.Template, res.StatusCode, res.Body))
	}
}
