package distribution

import (
	"fmt"
	"log"

	"github.com/google/uuid"

	"Minex/internal/constants"
	"Minex/internal/models"
	"Minex/internal/notify"
)

// PayProfitShare распределяет доли прибыли от ежедневного ROI стейкера
// userID по аплайну на глубинах 2-6. Глубина 1 (прямой реферер) в
// распределении долей не участвует - он получает только прямую комиссию при
// стейкинге. На каждой глубине процент берется из пакета уровня САМОГО
// получателя; нулевой процент или отключенная глубина не обрывают обход -
// цепочка продолжается через referred_by этого узла. Обход заканчивается на
// глубине 6 или когда цепочка исчерпана.
// PayProfitShare walks upline depths 2-6 and pays each hop its share of the
// ROI amount per that hop's own-level package.
func (d *Distributor) PayProfitShare(userID string, roiAmount float64, stakeID string) error {
	if roiAmount <= 0 {
		return fmt.Errorf("некорректная сумма ROI для распределения: %.2f", roiAmount)
	}

	staker, err := d.Store.GetUserByID(userID)
	if err != nil {
		return fmt.Errorf("не удалось получить стейкера %s: %w", userID, err)
	}

	current := staker.ReferredBy
	for depth := 1; depth <= models.MaxReferralDepth; depth++ {
		if !current.Valid {
			break
		}
		upline, errUpline := d.Store.GetUserByID(current.String)
		if errUpline != nil {
			// Битая ссылка обрывает цепочку: выше подняться невозможно.
			log.Printf("PayProfitShare: аплайн %s (глубина %d) не найден: %v", current.String, depth, errUpline)
			break
		}

		if depth >= 2 {
			d.payShareHop(upline, staker, roiAmount, depth, stakeID)
		}

		current = upline.ReferredBy
	}
	return nil
}

// payShareHop выплачивает долю прибыли одному узлу аплайна. Любой сбой
// изолируется на этом узле и не прерывает обход остальной цепочки.
func (d *Distributor) payShareHop(upline, staker models.User, roiAmount float64, depth int, stakeID string) {
	pkg, err := d.Store.GetPackageByLevel(upline.Level)
	if err != nil {
		log.Printf("payShareHop: пакет уровня %d для %s не найден: %v", upline.Level, upline.UserID, err)
		return
	}

	rate := pkg.ProfitShareAt(depth)
	if rate <= 0 {
		return
	}

	shareAmount := roiAmount * rate / 100
	if err := d.Store.CreditCommission(upline.UserID, shareAmount); err != nil {
		log.Printf("payShareHop: не удалось зачислить долю прибыли пользователю %s: %v", upline.UserID, err)
		return
	}

	record := models.Commission{
		CommissionID: uuid.NewString(),
		UserID:       upline.UserID,
		FromUserID:   staker.UserID,
		Amount:       shareAmount,
		Percentage:   rate,
		Depth:        depth,
		SourceType:   constants.COMMISSION_SOURCE_PROFIT_SHARE,
		StakeID:      stakeID,
	}
	if err := d.Store.InsertCommission(record); err != nil {
		log.Printf("payShareHop: доля зачислена, но запись аудита не создана (%s): %v", upline.UserID, err)
		return
	}

	d.Notifier.Notify(notify.Event{
		Type:      constants.EVENT_COMMISSION_PAID,
		Recipient: upline,
		Amount:    shareAmount,
		FromName:  staker.FullName,
		Depth:     depth,
	})
	log.Printf("Доля прибыли $%.4f (%.1f%%, глубина %d) выплачена пользователю %s за стейк %s.",
		shareAmount, rate, depth, upline.UserID, stakeID)
}
