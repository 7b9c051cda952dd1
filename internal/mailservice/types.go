package mailservice

import (
	"bytes"
	"context"
	"sync"

	"github.com/go-mail/mail/v2"

	"github.com/writelyhq/writely/internal/common"
)

type MailService struct {
	mb         common.MessageConsumer
	m          Mailer
	recipients RecipientLister
	logger     MailLogger
	ctx        context.Context
	cancel     context.CancelFunc
}

type MailLogger interface {
	Error(msg string, args ...any)
	Info(msg string, args ...any)
}

// RecipientLister supplies the addresses for the new-post announcement
// fan-out. Implemented by the user service.
type RecipientLister interface {
	ListRecipientEmails(ctx context.Context) ([]string, error)
}

type Mail struct {
	mu     sync.Mutex
	dialer Dialer
	parser TemplateParser
	sender string
}

type Mailer interface {
	send(recipient string, data any, templateFile string) error
}

type Template struct{}

type Dialer interface {
	DialAndSend(m ...*mail.Message) error
}

type TemplateParser interface {
	ParseTemplate(name string, data any) (*bytes.Buffer, *bytes.Buffer, *bytes.Buffer, error)
}
