// Пакет notify отвечает за исходящие уведомления. Финансовый код только
// ставит событие в очередь: доставка идет в отдельной горутине со своей
// границей ошибок, и сбой доставки никогда не влияет на балансы.
// Package notify delivers outbound notifications. Financial code only
// enqueues events; delivery failures never propagate back.
package notify

import (
	"fmt"
	"log"

	"Minex/internal/constants"
	"Minex/internal/models"
)

// Event - одно событие для уведомления. Тип определяет шаблон письма и
// состав получателей (пользователь и/или администратор).
type Event struct {
	Type        string
	Recipient   models.User // нулевой для событий только администратору
	Amount      float64
	TotalROI    float64
	PackageName string
	FromName    string
	Depth       int
	Summary     *models.DistributionSummary
}

// Notifier - контракт fire-and-forget: вызов не блокирует и не возвращает
// ошибку, любые сбои доставки логируются внутри.
type Notifier interface {
	Notify(ev Event)
}

// Nop - заглушка для тестов, которым не важны уведомления.
type Nop struct{}

func (Nop) Notify(Event) {}

// Service - очередь исходящих событий с одним воркером доставки.
type Service struct {
	mailer   *Mailer
	telegram *AdminBot
	queue    chan Event
	done     chan struct{}
}

// NewService создает сервис уведомлений и запускает воркер доставки.
// mailer и telegram могут быть nil - соответствующий канал отключается.
func NewService(mailer *Mailer, telegram *AdminBot) *Service {
	s := &Service{
		mailer:   mailer,
		telegram: telegram,
		queue:    make(chan Event, 256),
		done:     make(chan struct{}),
	}
	go s.worker()
	return s
}

// Notify ставит событие в очередь. При переполненной очереди событие
// отбрасывается с записью в лог: уведомления не стоят того, чтобы
// блокировать цикл распределения.
func (s *Service) Notify(ev Event) {
	select {
	case s.queue <- ev:
	default:
		log.Printf("Notify: очередь уведомлений переполнена, событие %s отброшено.", ev.Type)
	}
}

// Stop останавливает воркер после доставки уже поставленных событий.
func (s *Service) Stop() {
	close(s.queue)
	<-s.done
}

func (s *Service) worker() {
	defer close(s.done)
	for ev := range s.queue {
		s.deliver(ev)
	}
}

func (s *Service) deliver(ev Event) {
	defer func() {
		if p := recover(); p != nil {
			log.Printf("deliver: паника при доставке события %s: %v", ev.Type, p)
		}
	}()

	switch ev.Type {
	case constants.EVENT_ROI_PAID:
		s.sendEmail(ev.Recipient, roiSubject, roiBody(ev))
	case constants.EVENT_COMMISSION_PAID:
		s.sendEmail(ev.Recipient, commissionSubject, commissionBody(ev))
	case constants.EVENT_STAKE_COMPLETED:
		s.sendEmail(ev.Recipient, stakeCompletedSubject, stakeCompletedBody(ev))
	case constants.EVENT_DEPOSIT_PENDING:
		s.sendAdmin(fmt.Sprintf("Новый депозит на $%.2f от %s ожидает подтверждения.", ev.Amount, ev.Recipient.Email))
	case constants.EVENT_CYCLE_SUMMARY:
		if ev.Summary != nil {
			s.sendAdmin(fmt.Sprintf(
				"Цикл распределения ROI завершен: стейков %d, выплачено $%.2f, завершено %d, уведомлено %d.",
				ev.Summary.StakesProcessed, ev.Summary.TotalROIDistributed,
				ev.Summary.StakesCompleted, ev.Summary.UsersNotified,
			))
		}
	default:
		log.Printf("deliver: неизвестный тип события %q.", ev.Type)
	}
}

func (s *Service) sendEmail(recipient models.User, subject string, body string) {
	if s.mailer == nil {
		return
	}
	if err := s.mailer.Send(recipient.Email, subject, body); err != nil {
		// Ошибка доставки фиксируется и проглатывается.
		log.Printf("sendEmail: не удалось отправить %q на %s: %v", subject, recipient.Email, err)
	}
}

func (s *Service) sendAdmin(text string) {
	if s.telegram == nil {
		return
	}
	if err := s.telegram.Send(text); err != nil {
		log.Printf("sendAdmin: не удалось отправить сообщение администратору: %v", err)
	}
}
