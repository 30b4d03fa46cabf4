package mailer

import (
	"context"
	"fmt"
	"net/http"

	"github.com/Payphone-Digital/midas/pkg/circuit"
	"github.com/keighl/postmark"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"
)

// PostmarkSender delivers messages through the Postmark API.
type PostmarkSender struct {
	client  *postmark.Client
	breaker *circuit.Breaker
	logger  *zap.Logger
}

func NewPostmarkSender(serverToken string, httpClient *http.Client, breaker *circuit.Breaker, logger *zap.Logger) *PostmarkSender {
	if logger == nil {
		logger = zap.NewNop()
	}
	if breaker == nil {
		breaker = circuit.NewBreaker("email", circuit.DefaultConfig(), logger)
	}
	client := postmark.NewClient(serverToken, "")
	if httpClient != nil {
		client.HTTPClient = httpClient
	}
	return &PostmarkSender{
		client:  client,
		breaker: breaker,
		logger:  logger,
	}
}

func (s *PostmarkSender) Send(ctx context.Context, msg Message) error {
	err := s.breaker.Do(ctx, func(ctx context.Context) error {
		// the postmark client has no context support, so honour cancellation
		// around the blocking call
		done := make(chan error, 1)
		go func() {
			resp, err := s.client.SendEmail(postmark.Email{
				From:     msg.From,
				To:       msg.To,
				Subject:  msg.Subject,
				HtmlBody: msg.HTMLBody,
				TextBody: msg.TextBody,
			})
			if err == nil && resp.ErrorCode != 0 {
				err = fmt.Errorf("postmark error %d: %s", resp.ErrorCode, resp.Message)
			}
			done <- err
		}()

		select {
		case err := <-done:
			return err
		case <-ctx.Done():
			return ctx.Err()
		}
	})
	if err != nil {
		return fmt.Errorf("send email via postmark: %w", err)
	}

	s.logger.Info("Email sent", zap.String("provider", "postmark"), zap.String("subject", msg.Subject))
	return nil
}

// SendGridSender delivers messages through the SendGrid v3 API.
type SendGridSender struct {
	client  *sendgrid.Client
	breaker *circuit.Breaker
	logger  *zap.Logger
}

func NewSendGridSender(apiKey string, breaker *circuit.Breaker, logger *zap.Logger) *SendGridSender {
	if logger == nil {
		logger = zap.NewNop()
	}
	if breaker == nil {
		breaker = circuit.NewBreaker("email", circuit.DefaultConfig(), logger)
	}
	return &SendGridSender{
		client:  sendgrid.NewSendClient(apiKey),
		breaker: breaker,
		logger:  logger,
	}
}

func (s *SendGridSender) Send(ctx context.Context, msg Message) error {
	email := mail.NewSingleEmail(
		mail.NewEmail("Midas", msg.From),
		msg.Subject,
		mail.NewEmail("", msg.To),
		msg.TextBody,
		msg.HTMLBody,
	)

	err := s.breaker.Do(ctx, func(ctx context.Context) error {
		resp, err := s.client.SendWithContext(ctx, email)
		if err != nil {
			return err
		}
		if resp.StatusCode >= 300 {
			return fmt.Errorf("sendgrid responded %d: %s", resp.StatusCode, resp.Body)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("send email via sendgrid: %w", err)
	}

	s.logger.Info("Email sent", zap.String("provider", "sendgrid"), zap.String("subject", msg.Subject))
	return nil
}
