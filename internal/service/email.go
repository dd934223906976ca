package service

import (
	"context"
	"fmt"
	"time"

	"lendlocal-backend/internal/logger"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/shopspring/decimal"
	"gopkg.in/gomail.v2"
)

// Mailer delivers one plain-text message.
type Mailer interface {
	Send(ctx context.Context, to, toName, subject, body string) error
}

type smtpMailer struct {
	dialer *gomail.Dialer
	from   string
}

// NewSMTPMailer sends through an SMTP relay with gomail.
func NewSMTPMailer(host string, port int, username, password, from string) Mailer {
	return &smtpMailer{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   from,
	}
}

func (s *smtpMailer) Send(ctx context.Context, to, toName, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetAddressHeader("To", to, toName)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	logger.ExternalServiceCall("smtp", "DialAndSend", "to", to)
	// gomail takes no context. An abandoned send finishes in the background
	// and its result is dropped.
	done := make(chan error, 1)
	go func() { done <- s.dialer.DialAndSend(m) }()
	var err error
	select {
	case err = <-done:
	case <-ctx.Done():
		err = ctx.Err()
	}
	logger.ExternalServiceResult("smtp", "DialAndSend", err, "to", to)
	if err != nil {
		return fmt.Errorf("failed to send email via gomail: %w", err)
	}
	return nil
}

type sendGridMailer struct {
	apiKey    string
	host      string
	fromEmail string
	fromName  string
}

// NewSendGridMailer sends through the SendGrid v3 API. An empty host uses
// the public endpoint.
func NewSendGridMailer(apiKey, host, fromEmail, fromName string) Mailer {
	return &sendGridMailer{apiKey: apiKey, host: host, fromEmail: fromEmail, fromName: fromName}
}

func (s *sendGridMailer) Send(ctx context.Context, to, toName, subject, body string) error {
	message := mail.NewSingleEmail(mail.NewEmail(s.fromName, s.fromEmail), subject, mail.NewEmail(toName, to), body, "")

	request := sendgrid.GetRequest(s.apiKey, "/v3/mail/send", s.host)
	request.Method = "POST"
	request.Body = mail.GetRequestBody(message)

	logger.ExternalServiceCall("sendgrid", "mail.send", "to", to)
	response, err := sendgrid.MakeRequestWithContext(ctx, request)
	if err == nil && response.StatusCode >= 400 {
		err = fmt.Errorf("sendgrid error: status %d, body: %s", response.StatusCode, response.Body)
	}
	logger.ExternalServiceResult("sendgrid", "mail.send", err, "to", to)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

type noopMailer struct{}

// NewNoopMailer drops every message after logging it.
func NewNoopMailer() Mailer {
	return noopMailer{}
}

func (noopMailer) Send(ctx context.Context, to, toName, subject, body string) error {
	logger.DebugContext(ctx, "Email delivery disabled, dropping message", "to", to, "subject", subject)
	return nil
}

type emailService struct {
	mailer Mailer
}

func NewEmailService(mailer Mailer) EmailService {
	return &emailService{mailer: mailer}
}

func (s *emailService) send(ctx context.Context, to Recipient, subject, body string) error {
	if to.Email == "" {
		logger.DebugContext(ctx, "Recipient has no email address, skipping", "subject", subject)
		return nil
	}
	body = fmt.Sprintf("Hello %s,\n\n%s\n\nHappy lending,\nThe LendLocal Team", to.Name, body)
	return s.mailer.Send(ctx, to.Email, to.Name, subject, body)
}

func (s *emailService) SendBorrowRequestNotification(ctx context.Context, lender Recipient, borrowerName, itemTitle string, start, end time.Time) error {
	return s.send(ctx, lender,
		fmt.Sprintf("New borrow request for %s", itemTitle),
		fmt.Sprintf("%s would like to borrow your %s from %s to %s.\nOpen LendLocal to approve or deny the request.",
			borrowerName, itemTitle, start.Format("Jan 2, 2006"), end.Format("Jan 2, 2006")))
}

func (s *emailService) SendRequestApprovedNotification(ctx context.Context, borrower Recipient, lenderName, itemTitle string, fee decimal.Decimal) error {
	return s.send(ctx, borrower,
		fmt.Sprintf("Your request for %s was approved", itemTitle),
		fmt.Sprintf("%s approved your request to borrow %s.\nComplete the payment of %s to start the loan.", lenderName, itemTitle, fee.String()))
}

func (s *emailService) SendRequestDeniedNotification(ctx context.Context, borrower Recipient, lenderName, itemTitle string) error {
	return s.send(ctx, borrower,
		fmt.Sprintf("Your request for %s was declined", itemTitle),
		fmt.Sprintf("%s is unable to lend %s for the dates you asked for.", lenderName, itemTitle))
}

func (s *emailService) SendPaymentReceivedNotification(ctx context.Context, lender Recipient, borrowerName, itemTitle string, fee decimal.Decimal, due time.Time) error {
	return s.send(ctx, lender,
		fmt.Sprintf("%s is now on loan", itemTitle),
		fmt.Sprintf("%s paid %s for %s. The item is due back on %s.", borrowerName, fee.String(), itemTitle, due.Format("Jan 2, 2006")))
}

func (s *emailService) SendReturnConfirmedNotification(ctx context.Context, borrower Recipient, itemTitle string) error {
	return s.send(ctx, borrower,
		fmt.Sprintf("Return of %s confirmed", itemTitle),
		fmt.Sprintf("The lender confirmed that %s was returned. You can now leave a review.", itemTitle))
}

func (s *emailService) SendOverdueReminder(ctx context.Context, borrower Recipient, itemTitle string, daysOverdue int) error {
	unit := "days"
	if daysOverdue == 1 {
		unit = "day"
	}
	return s.send(ctx, borrower,
		fmt.Sprintf("Reminder: %s is overdue", itemTitle),
		fmt.Sprintf("%s is %d %s overdue. Please arrange the return with the lender.", itemTitle, daysOverdue, unit))
}
