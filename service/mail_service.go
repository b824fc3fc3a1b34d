package application

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"gopkg.in/gomail.v2"
)

// Mailer is the outbound mail capability the services depend on. Failures
// surface as errors on the request that triggered the send; there is no
// retry.
type Mailer interface {
	SendMail(to, subject, htmlBody string) error
	SendMailCallToAction(to, subject, htmlBody, action, actionTarget string) error
}

type MailService struct {
	dialer *gomail.Dialer
	from   string
	cb     *gobreaker.CircuitBreaker
	logger *logrus.Logger
}

func NewMailService(host string, port int, username, password, from string, logger *logrus.Logger) *MailService {
	return &MailService{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   from,
		cb:     CircuitBreaker("mailService", logger),
		logger: logger,
	}
}

func (service *MailService) SendMail(to, subject, htmlBody string) error {
	message := gomail.NewMessage()
	message.SetHeader("From", service.from)
	message.SetHeader("To", to)
	message.SetHeader("Subject", subject)
	message.SetBody("text/html", dressHTML(htmlBody))

	_, err := service.cb.Execute(func() (interface{}, error) {
		return nil, service.dialer.DialAndSend(message)
	})
	if err != nil {
		service.logger.Errorf("failed to send mail to %s: %s", to, err)
		return err
	}
	return nil
}

func (service *MailService) SendMailCallToAction(to, subject, htmlBody, action, actionTarget string) error {
	return service.SendMail(to, subject, htmlBody+fmt.Sprintf(`<div>
		<a href="%s">%s</a>
	</div>`, actionTarget, action))
}

// dressHTML wraps the given content in the mail's common body.
func dressHTML(content string) string {
	return fmt.Sprintf("<div>\n%s\n</div>", content)
}

func CircuitBreaker(name string, logger *logrus.Logger) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(
		gobreaker.Settings{
			Name:        name,
			MaxRequests: 1,
			Timeout:     10 * time.Second,
			Interval:    0,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures > 2
			},
			OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
				logger.Warnf("Circuit Breaker '%s' changed from '%s' to '%s'", name, from, to)
			},
		},
	)
}
