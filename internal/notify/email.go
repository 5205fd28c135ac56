package notify

import (
	"fmt"
	"net/smtp"

	"github.com/google/uuid"

	"Minex/internal/db"
	"Minex/internal/models"
)

const (
	roiSubject            = "Начислен ежедневный ROI"
	commissionSubject     = "Начислена партнерская комиссия"
	stakeCompletedSubject = "Стейкинг завершен, капитал возвращен"
)

// Mailer отправляет письма через SMTP и пишет результат каждой попытки в
// журнал email_logs.
type Mailer struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

// Send отправляет одно HTML-письмо. Результат (включая неудачу) фиксируется
// в журнале писем; ошибка журнала не перекрывает ошибку отправки.
func (m *Mailer) Send(to, subject, body string) error {
	if m.Host == "" || m.User == "" {
		return fmt.Errorf("SMTP не настроен")
	}

	auth := smtp.PlainAuth("", m.User, m.Password, m.Host)
	msg := []byte(fmt.Sprintf("To: %s\r\n"+
		"Subject: %s\r\n"+
		"Content-Type: text/html; charset=utf-8\r\n"+
		"\r\n"+
		"%s\r\n", to, subject, body))

	addr := fmt.Sprintf("%s:%d", m.Host, m.Port)
	errSend := smtp.SendMail(addr, auth, m.From, []string{to}, msg)

	logEntry := models.EmailLog{
		EmailID:   uuid.NewString(),
		Recipient: to,
		Subject:   subject,
		Status:    "sent",
	}
	if errSend != nil {
		logEntry.Status = "failed"
		logEntry.Error = errSend.Error()
	}
	_ = db.InsertEmailLog(logEntry)

	return errSend
}

func roiBody(ev Event) string {
	return fmt.Sprintf(`
        <h2>Ежедневное начисление ROI</h2>
        <p>Здравствуйте, <strong>%s</strong>!</p>
        <p>По пакету <strong>%s</strong> начислено <strong>$%.2f</strong>.</p>
        <p>Всего ROI на вашем счете: <strong>$%.2f</strong>.</p>
        <p>С уважением,<br>Команда MINEX GLOBAL</p>
    `, ev.Recipient.FullName, ev.PackageName, ev.Amount, ev.TotalROI)
}

func commissionBody(ev Event) string {
	return fmt.Sprintf(`
        <h2>Партнерская комиссия</h2>
        <p>Здравствуйте, <strong>%s</strong>!</p>
        <p>Вам начислено <strong>$%.2f</strong> за партнера <strong>%s</strong> (глубина %d).</p>
        <p>С уважением,<br>Команда MINEX GLOBAL</p>
    `, ev.Recipient.FullName, ev.Amount, ev.FromName, ev.Depth)
}

func stakeCompletedBody(ev Event) string {
	return fmt.Sprintf(`
        <h2>Стейкинг завершен</h2>
        <p>Здравствуйте, <strong>%s</strong>!</p>
        <p>Срок вашего стейка истек. Тело стейка <strong>$%.2f</strong> возвращено на кошелек.</p>
        <p>С уважением,<br>Команда MINEX GLOBAL</p>
    `, ev.Recipient.FullName, ev.Amount)
}
