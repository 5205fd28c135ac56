package distribution

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"Minex/internal/constants"
	"Minex/internal/models"
	"Minex/internal/notify"
)

// Scheduler запускает цикл распределения ROI раз в сутки в настроенное
// время UTC. Экземпляр создается один раз при старте процесса и передается
// явно тем, кому нужен ручной запуск - никаких глобальных синглтонов.
//
// Защита от наложения: RunDistributionCycle берет неблокирующую блокировку
// и отклоняет запуск, если цикл уже идет (ручной запуск поверх тика).
// Повторный запуск в те же сутки UTC при этом НЕ блокируется: кнопка
// "запустить сейчас" после планового тика начислит ROI второй раз. Это
// осознанное поведение, оператор отвечает за ручные запуски.
// Scheduler runs the daily distribution cycle. Overlapping cycles are
// refused; a second run within the same UTC day is deliberately allowed.
type Scheduler struct {
	store       Store
	distributor *Distributor
	notifier    notify.Notifier

	// now подменяется в тестах.
	now          func() time.Time
	pollInterval time.Duration

	mu        sync.Mutex // защищает поля состояния ниже
	isRunning bool
	lastRun   time.Time
	nextRun   time.Time
	runHour   int
	runMinute int
	stopCh    chan struct{}

	cycleMu sync.Mutex // занята, пока выполняется цикл распределения
}

// NewScheduler создает планировщик с интервалом опроса в одну минуту.
func NewScheduler(store Store, distributor *Distributor, notifier notify.Notifier) *Scheduler {
	return &Scheduler{
		store:        store,
		distributor:  distributor,
		notifier:     notifier,
		now:          func() time.Time { return time.Now().UTC() },
		pollInterval: time.Minute,
	}
}

// calculateNextRun возвращает ближайший момент "настроенное время, не
// раньше чем сейчас": сегодня, если время еще не прошло, иначе завтра.
func (s *Scheduler) calculateNextRun(now time.Time) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), s.runHour, s.runMinute, 0, 0, time.UTC)
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// Start запускает фоновый цикл планировщика с ежедневным временем запуска
// hour:minute UTC. Повторный вызов на работающем планировщике игнорируется.
func (s *Scheduler) Start(hour, minute int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isRunning {
		log.Println("Scheduler.Start: планировщик уже запущен.")
		return
	}
	s.runHour = hour
	s.runMinute = minute
	s.nextRun = s.calculateNextRun(s.now())
	s.stopCh = make(chan struct{})
	s.isRunning = true
	go s.loop(s.stopCh)
	log.Printf("Планировщик ROI запущен. Ежедневный запуск в %02d:%02d UTC, следующий: %s.",
		hour, minute, s.nextRun.Format(time.RFC3339))
}

// Stop останавливает планировщик. Останавливается только следующий тик:
// уже идущий цикл распределения доработает до конца.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.isRunning {
		return
	}
	close(s.stopCh)
	s.isRunning = false
	log.Println("Планировщик ROI остановлен.")
}

// Status возвращает состояние планировщика для административного API.
func (s *Scheduler) Status() models.SchedulerStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	status := models.SchedulerStatus{
		IsRunning: s.isRunning,
		Schedule:  fmt.Sprintf("%02d:%02d UTC", s.runHour, s.runMinute),
	}
	if !s.lastRun.IsZero() {
		status.LastRun = s.lastRun.Format(time.RFC3339)
	}
	if !s.nextRun.IsZero() {
		status.NextRun = s.nextRun.Format(time.RFC3339)
	}
	return status
}

// loop опрашивает часы раз в pollInterval и запускает цикл, когда наступает
// nextRun. Интервал опроса заведомо больше минуты точности расписания и
// меньше суток, поэтому тик не теряется.
func (s *Scheduler) loop(stop <-chan struct{}) {
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s.mu.Lock()
			due := !s.nextRun.IsZero() && !s.now().Before(s.nextRun)
			s.mu.Unlock()
			if due {
				log.Println("Плановый запуск распределения ROI.")
				if _, err := s.RunDistributionCycle(); err != nil {
					log.Printf("Плановый цикл распределения завершился ошибкой: %v", err)
				}
			}
		}
	}
}

// RunDistributionCycle выполняет один цикл распределения по всем активным
// стейкам и возвращает сводку. Вызывается планировщиком и администратором
// ("запустить сейчас") - форма результата одинаковая, пустой прогон с нулем
// обработанных стейков ошибкой не считается.
//
// Недоступность хранилища прерывает весь цикл с ошибкой; сбой на отдельном
// стейке изолируется и не мешает остальным.
func (s *Scheduler) RunDistributionCycle() (models.DistributionSummary, error) {
	if !s.cycleMu.TryLock() {
		return models.DistributionSummary{}, fmt.Errorf("цикл распределения уже выполняется")
	}
	defer s.cycleMu.Unlock()

	startedAt := s.now()
	log.Println("Начало цикла распределения ежедневного ROI...")

	stakes, err := s.store.ActiveStakes()
	if err != nil {
		return models.DistributionSummary{}, fmt.Errorf("не удалось получить активные стейки: %w", err)
	}

	summary := models.DistributionSummary{RunTime: startedAt}
	for _, stake := range stakes {
		s.processStake(stake, &summary)
	}

	if errLog := s.store.InsertDistributionLog(models.DistributionLog{
		LogID:               uuid.NewString(),
		Type:                constants.LOG_TYPE_AUTO_ROI_DISTRIBUTION,
		RunTime:             startedAt,
		StakesProcessed:     summary.StakesProcessed,
		TotalROIDistributed: summary.TotalROIDistributed,
		UsersNotified:       summary.UsersNotified,
		StakesCompleted:     summary.StakesCompleted,
		Status:              "success",
	}); errLog != nil {
		log.Printf("RunDistributionCycle: не удалось записать журнал распределения: %v", errLog)
	}

	s.mu.Lock()
	s.lastRun = startedAt
	s.nextRun = s.calculateNextRun(s.now())
	summary.NextRun = s.nextRun
	s.mu.Unlock()

	s.notifier.Notify(notify.Event{
		Type:    constants.EVENT_CYCLE_SUMMARY,
		Summary: &summary,
	})

	log.Printf("Цикл распределения завершен: стейков %d, выплачено $%.2f, завершено %d, уведомлено %d.",
		summary.StakesProcessed, summary.TotalROIDistributed, summary.StakesCompleted, summary.UsersNotified)
	return summary, nil
}

// processStake обрабатывает один стейк внутри цикла. Любая ошибка или паника
// изолируется здесь: обработка остальных стейков продолжается.
func (s *Scheduler) processStake(stake models.Stake, summary *models.DistributionSummary) {
	defer func() {
		if p := recover(); p != nil {
			log.Printf("processStake: паника при обработке стейка %s: %v", stake.StakeID, p)
		}
	}()

	if stake.DailyROI <= 0 {
		return // инертный стейк, начислений нет
	}

	now := s.now()
	if stake.Matured(now) {
		// Срок истек: завершаем и возвращаем капитал, ROI в этом цикле не
		// начисляется. CompleteStake идемпотентен: если переход уже был
		// выполнен (или капитал возвращен ранее), зачисления не будет.
		completed, err := s.store.CompleteStake(stake.StakeID)
		if err != nil {
			log.Printf("processStake: ошибка завершения стейка %s: %v", stake.StakeID, err)
			return
		}
		if !completed {
			return
		}
		if err := s.store.CreditWallet(stake.UserID, stake.Amount); err != nil {
			log.Printf("processStake: стейк %s завершен, но возврат капитала не зачислен: %v", stake.StakeID, err)
			return
		}
		summary.StakesCompleted++
		log.Printf("Стейк %s завершен, капитал $%.2f возвращен пользователю %s.", stake.StakeID, stake.Amount, stake.UserID)

		if owner, errOwner := s.store.GetUserByID(stake.UserID); errOwner == nil {
			s.notifier.Notify(notify.Event{
				Type:      constants.EVENT_STAKE_COMPLETED,
				Recipient: owner,
				Amount:    stake.Amount,
			})
		}
		return
	}

	roiAmount := stake.DailyAmount()

	if err := s.store.InsertROITransaction(models.ROITransaction{
		TransactionID:   uuid.NewString(),
		UserID:          stake.UserID,
		StakeID:         stake.StakeID,
		Amount:          roiAmount,
		ROIPercentage:   stake.DailyROI,
		AutoDistributed: true,
	}); err != nil {
		log.Printf("processStake: не удалось записать ROI-транзакцию для стейка %s: %v", stake.StakeID, err)
		return
	}

	if err := s.store.CreditROI(stake.UserID, roiAmount); err != nil {
		log.Printf("processStake: не удалось зачислить ROI пользователю %s: %v", stake.UserID, err)
		return
	}
	if err := s.store.AddStakeEarnings(stake.StakeID, roiAmount); err != nil {
		log.Printf("processStake: не удалось обновить накопленный доход стейка %s: %v", stake.StakeID, err)
	}

	summary.StakesProcessed++
	summary.TotalROIDistributed += roiAmount

	// Доли прибыли аплайну от суммы начисленного ROI (глубины 2-6).
	if err := s.distributor.PayProfitShare(stake.UserID, roiAmount, stake.StakeID); err != nil {
		log.Printf("processStake: распределение долей прибыли по стейку %s: %v", stake.StakeID, err)
	}

	if owner, err := s.store.GetUserByID(stake.UserID); err == nil {
		packageName := "Investment Package"
		if pkg, errPkg := s.store.GetPackageByID(stake.PackageID); errPkg == nil {
			packageName = pkg.Name
		}
		s.notifier.Notify(notify.Event{
			Type:        constants.EVENT_ROI_PAID,
			Recipient:   owner,
			Amount:      roiAmount,
			TotalROI:    owner.ROIBalance,
			PackageName: packageName,
		})
		summary.UsersNotified++
	} else {
		log.Printf("processStake: владелец стейка %s не найден для уведомления: %v", stake.StakeID, err)
	}
}
