package mailservice

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"golang.org/x/exp/rand"

	"github.com/writelyhq/writely/internal/common"
)

func NewMailService(mb common.MessageConsumer, recipients RecipientLister, host, username, password, sender string, port int, logger *slog.Logger) *MailService {
	ctx, cancel := context.WithCancel(context.Background())
	return &MailService{
		mb:         mb,
		m:          NewMailer(host, port, username, password, sender, NewTemplate()),
		recipients: recipients,
		logger:     logger,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// sendWithRetry attempts delivery with exponential backoff and jitter.
// It reports whether the mail was eventually sent.
func (s *MailService) sendWithRetry(recipient string, data any, templateFile string) bool {
	const maxRetries = 5
	const baseDelay = 500 * time.Millisecond

	for attempt := 0; attempt < maxRetries; attempt++ {
		err := s.m.send(recipient, data, templateFile)
		if err == nil {
			return true
		}

		delay := time.Duration(rand.Int63n(int64(baseDelay) << uint(attempt)))
		s.logger.Info("delaying email delivery", slog.String("email", recipient), slog.Int("attempt", attempt), slog.Duration("delay", delay))
		time.Sleep(delay)
	}

	return false
}

// SendActivationEmail consumes user.created events and mails the
// activation token to the new account.
func (s *MailService) SendActivationEmail() {
	msgs, err := s.mb.Consume(common.UserCreatedKey, common.UserExchange, common.UserCreatedQueue)
	if err != nil {
		s.logger.Error("could not consume message", slog.String("error", err.Error()))
		return
	}

	go func() {
		for {
			select {
			case msg, ok := <-msgs:
				if !ok {
					return
				}

				var data struct {
					Email string
					Token string
				}

				if err := json.Unmarshal(msg.Body, &data); err != nil {
					s.logger.Error("could not unmarshal message", slog.String("error", err.Error()))
					continue
				}

				payload := struct {
					ActivationToken string
				}{
					ActivationToken: data.Token,
				}

				if s.sendWithRetry(data.Email, payload, "activation_email.html") {
					s.logger.Info("activation email sent", slog.String("email", data.Email))
				} else {
					s.logger.Error("could not send activation email", slog.String("email", data.Email))
				}
				msg.Ack(false)

			case <-s.ctx.Done():
				s.logger.Info("stopping SendActivationEmail due to context cancellation")
				return
			}
		}
	}()
}

// SendNewPostEmail consumes post.published events and announces the
// post to every activated user.
func (s *MailService) SendNewPostEmail() {
	msgs, err := s.mb.Consume(common.PostPublishedKey, common.PostExchange, common.PostPublishedQueue)
	if err != nil {
		s.logger.Error("could not consume message", slog.String("error", err.Error()))
		return
	}

	go func() {
		for {
			select {
			case msg, ok := <-msgs:
				if !ok {
					return
				}

				var data struct {
					Title string
					Slug  string
				}

				if err := json.Unmarshal(msg.Body, &data); err != nil {
					s.logger.Error("could not unmarshal message", slog.String("error", err.Error()))
					continue
				}

				emails, err := s.recipients.ListRecipientEmails(s.ctx)
				if err != nil {
					s.logger.Error("could not list recipients", slog.String("error", err.Error()))
					msg.Nack(false, true)
					continue
				}

				payload := struct {
					Title string
					Slug  string
				}{
					Title: data.Title,
					Slug:  data.Slug,
				}

				for _, email := range emails {
					if s.sendWithRetry(email, payload, "new_post_email.html") {
						s.logger.Info("new post email sent", slog.String("email", email), slog.String("slug", data.Slug))
					} else {
						s.logger.Error("could not send new post email", slog.String("email", email), slog.String("slug", data.Slug))
					}
				}
				msg.Ack(false)

			case <-s.ctx.Done():
				s.logger.Info("stopping SendNewPostEmail due to context cancellation")
				return
			}
		}
	}()
}

func (s *MailService) Close() {
	s.cancel()
}
