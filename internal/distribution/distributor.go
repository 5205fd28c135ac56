package distribution

import (
	"fmt"
	"log"

	"github.com/google/uuid"

	"Minex/internal/constants"
	"Minex/internal/models"
	"Minex/internal/notify"
)

// Distributor выплачивает комиссии аплайну. Все балансовые мутации идут
// через атомарные инкременты хранилища; уведомления ставятся в очередь и не
// влияют на результат выплаты.
type Distributor struct {
	Store    Store
	Notifier notify.Notifier
}

// PayDirectCommission выплачивает прямую комиссию (глубина 1) пригласившему
// пользователя userID при стейкинге суммы amount. Процент берется из пакета
// текущего уровня САМОГО пригласившего. Выплаты не будет, если у пользователя
// нет реферера, пакет уровня реферера не найден, выплаты на глубине 1
// отключены или процент нулевой - все эти случаи не являются ошибками.
// PayDirectCommission pays the depth-1 commission on a new stake.
func (d *Distributor) PayDirectCommission(stakeID, userID string, amount float64) error {
	if amount <= 0 {
		return fmt.Errorf("некорректная сумма для начисления комиссии: %.2f", amount)
	}

	user, err := d.Store.GetUserByID(userID)
	if err != nil {
		return fmt.Errorf("не удалось получить стейкера %s: %w", userID, err)
	}
	if !user.ReferredBy.Valid {
		return nil // корневой пользователь, комиссию платить некому
	}

	referrer, err := d.Store.GetUserByID(user.ReferredBy.String)
	if err != nil {
		// Битая ссылка на пригласившего: фиксируем и выходим без выплаты.
		log.Printf("PayDirectCommission: пригласивший %s не найден: %v", user.ReferredBy.String, err)
		return nil
	}

	pkg, err := d.Store.GetPackageByLevel(referrer.Level)
	if err != nil {
		log.Printf("PayDirectCommission: пакет уровня %d для %s не найден: %v", referrer.Level, referrer.UserID, err)
		return nil
	}

	rate := pkg.DirectCommissionRate()
	if rate <= 0 {
		return nil
	}

	commissionAmount := amount * rate / 100
	if err := d.Store.CreditCommission(referrer.UserID, commissionAmount); err != nil {
		return fmt.Errorf("не удалось зачислить комиссию пользователю %s: %w", referrer.UserID, err)
	}

	record := models.Commission{
		CommissionID: uuid.NewString(),
		UserID:       referrer.UserID,
		FromUserID:   user.UserID,
		Amount:       commissionAmount,
		Percentage:   rate,
		Depth:        1,
		SourceType:   constants.COMMISSION_SOURCE_DEPOSIT,
		StakeID:      stakeID,
	}
	if err := d.Store.InsertCommission(record); err != nil {
		// Баланс уже изменен; отсутствие записи аудита - частичный сбой,
		// который отдаем вызывающей стороне для логирования.
		return fmt.Errorf("комиссия зачислена, но запись аудита не создана: %w", err)
	}

	d.Notifier.Notify(notify.Event{
		Type:      constants.EVENT_COMMISSION_PAID,
		Recipient: referrer,
		Amount:    commissionAmount,
		FromName:  user.FullName,
		Depth:     1,
	})
	log.Printf("Прямая комиссия $%.2f (%.1f%%) выплачена пользователю %s за стейк %s.",
		commissionAmount, rate, referrer.UserID, stakeID)
	return nil
}
