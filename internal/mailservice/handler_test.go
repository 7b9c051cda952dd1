package mailservice

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSendActivationEmail(t *testing.T) {
	consumer := &MockMessageConsumer{Message: `{"Email": "test@example.com", "Token": "testtoken"}`}
	mailer := new(MockMailer)

	ctx, cancel := context.WithCancel(context.Background())

	s := &MailService{
		mb:     consumer,
		m:      mailer,
		logger: testLogger(),
		ctx:    ctx,
		cancel: cancel,
	}

	s.SendActivationEmail()

	assert.Eventually(t, func() bool {
		return len(mailer.SentTo()) == 1
	}, 2*time.Second, 10*time.Millisecond)

	assert.Equal(t, "test@example.com", mailer.SentTo()[0])

	t.Cleanup(func() {
		s.Close()
	})
}

func TestSendNewPostEmail(t *testing.T) {
	consumer := &MockMessageConsumer{Message: `{"title": "Hello World", "slug": "hello-world"}`}
	mailer := new(MockMailer)
	recipients := &MockRecipientLister{Emails: []string{"one@example.com", "two@example.com"}}

	ctx, cancel := context.WithCancel(context.Background())

	s := &MailService{
		mb:         consumer,
		m:          mailer,
		recipients: recipients,
		logger:     testLogger(),
		ctx:        ctx,
		cancel:     cancel,
	}

	s.SendNewPostEmail()

	assert.Eventually(t, func() bool {
		return len(mailer.SentTo()) == 2
	}, 2*time.Second, 10*time.Millisecond)

	assert.ElementsMatch(t, []string{"one@example.com", "two@example.com"}, mailer.SentTo())

	t.Cleanup(func() {
		s.Close()
	})
}
