package services

import (
	"cashcontrol/config"
	"cashcontrol/models"
	"fmt"
	"html"

	"gopkg.in/gomail.v2"
)

// Sender отправляет готовые письма
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// EmailService предоставляет методы для отправки email
type EmailService struct {
	sender Sender
	from   string
	to     string
}

// NewEmailService создает новый экземпляр EmailService.
// Если SMTP или адрес получателя не настроены, возвращает nil.
func NewEmailService(cfg *config.Config) *EmailService {
	if cfg.SMTP.Host == "" || cfg.NotifyEmail == "" {
		return nil
	}

	dialer := gomail.NewDialer(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Username,
		cfg.SMTP.Password,
	)

	return &EmailService{
		sender: dialer,
		from:   cfg.SMTP.From,
		to:     cfg.NotifyEmail,
	}
}

// SendEmail отправляет email
func (s *EmailService) SendEmail(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	if err := s.sender.DialAndSend(m); err != nil {
		return fmt.Errorf("ошибка отправки email: %w", err)
	}

	return nil
}

// SendCashFenceClosedNotification отправляет уведомление о закрытии кассовой смены
func (s *EmailService) SendCashFenceClosedNotification(fence *models.CashFence) error {
	subject := fmt.Sprintf("Кассовая смена %s закрыта", fence.Ref)
	// Поля смены приходят от клиента, в HTML они попадают только экранированными
	body := fmt.Sprintf(`
		<h2>Кассовая смена закрыта</h2>
		<p>Смена: %s</p>
		<p>Касса: %s / %s</p>
		<p>Остаток на начало: %s</p>
		<p>Наличные: %s</p>
		<p>Чеки: %s</p>
		<p>Дата закрытия: %s</p>
	`, html.EscapeString(fence.Ref), html.EscapeString(fence.PosModule), html.EscapeString(fence.PosNumber),
		fence.Opening.StringFixed(2), fence.Cash.StringFixed(2), fence.Cheque.StringFixed(2),
		closeDate(fence))

	return s.SendEmail(s.to, subject, body)
}

// closeDate форматирует дату закрытия смены как ДД.ММ.ГГГГ
func closeDate(fence *models.CashFence) string {
	if fence.DayClose == nil || fence.MonthClose == nil || fence.YearClose == nil {
		return "-"
	}
	return fmt.Sprintf("%02d.%02d.%04d", *fence.DayClose, *fence.MonthClose, *fence.YearClose)
}
