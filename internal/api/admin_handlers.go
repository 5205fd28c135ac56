package api

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"Minex/internal/constants"
	"Minex/internal/db"
	"Minex/internal/models"
	"Minex/internal/referral"
)

// RejectRequest - тело запроса на отклонение депозита или вывода.
type RejectRequest struct {
	Reason string `json:"reason"`
}

// ApproveWithdrawalRequest - тело запроса на подтверждение вывода.
type ApproveWithdrawalRequest struct {
	TransactionHash string `json:"transaction_hash"`
}

// AdminDashboardHandler собирает агрегированную статистику платформы.
func AdminDashboardHandler(w http.ResponseWriter, r *http.Request) {
	var stats models.AdminDashboardStats
	var err error

	if stats.TotalUsers, err = db.CountUsers(); err != nil {
		log.Printf("AdminDashboardHandler: ошибка подсчета пользователей: %v", err)
	}
	if stats.TotalDeposits, err = db.TotalApprovedDeposits(); err != nil {
		log.Printf("AdminDashboardHandler: ошибка суммирования депозитов: %v", err)
	}
	if stats.TotalWithdrawals, err = db.TotalApprovedWithdrawals(); err != nil {
		log.Printf("AdminDashboardHandler: ошибка суммирования выводов: %v", err)
	}
	if stats.PendingDeposits, err = db.CountDepositsByStatus(constants.DEPOSIT_STATUS_PENDING); err != nil {
		log.Printf("AdminDashboardHandler: ошибка подсчета ожидающих депозитов: %v", err)
	}
	if stats.PendingWithdrawals, err = db.CountWithdrawalsByStatus("", constants.WITHDRAWAL_STATUS_PENDING); err != nil {
		log.Printf("AdminDashboardHandler: ошибка подсчета ожидающих выводов: %v", err)
	}
	if stats.TotalActiveStakes, err = db.CountActiveStakes(); err != nil {
		log.Printf("AdminDashboardHandler: ошибка подсчета активных стейков: %v", err)
	}
	if stats.TotalCommissionsPaid, err = db.TotalCommissionsPaid(); err != nil {
		log.Printf("AdminDashboardHandler: ошибка суммирования комиссий: %v", err)
	}
	if stats.TotalROIPaid, err = db.TotalROIPaid(); err != nil {
		log.Printf("AdminDashboardHandler: ошибка суммирования ROI: %v", err)
	}

	writeJSONSuccess(w, "", stats)
}

// AdminGetUsersHandler возвращает всех пользователей платформы.
func AdminGetUsersHandler(w http.ResponseWriter, r *http.Request) {
	users, err := db.GetAllUsers()
	if err != nil {
		log.Printf("AdminGetUsersHandler: ошибка загрузки пользователей: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "Не удалось загрузить пользователей")
		return
	}
	writeJSONSuccess(w, "", users)
}

// AdminGetDepositsHandler возвращает все депозиты платформы.
func AdminGetDepositsHandler(w http.ResponseWriter, r *http.Request) {
	deposits, err := db.GetAllDeposits()
	if err != nil {
		log.Printf("AdminGetDepositsHandler: ошибка загрузки депозитов: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "Не удалось загрузить депозиты")
		return
	}
	writeJSONSuccess(w, "", deposits)
}

// getAllWithdrawals подменяется в тестах.
var getAllWithdrawals = db.GetAllWithdrawals

// AdminGetWithdrawalsHandler возвращает все заявки на вывод платформы.
func AdminGetWithdrawalsHandler(w http.ResponseWriter, r *http.Request) {
	withdrawals, err := getAllWithdrawals()
	if err != nil {
		log.Printf("AdminGetWithdrawalsHandler: ошибка загрузки заявок на вывод: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "Не удалось загрузить заявки на вывод")
		return
	}
	writeJSONSuccess(w, "", withdrawals)
}

// AdminApproveDepositHandler подтверждает депозит: средства и совокупные
// инвестиции зачисляются, после чего уровень пользователя пересчитывается.
// Уровень меняется только вверх, понижения при пересчете не происходит.
func AdminApproveDepositHandler(w http.ResponseWriter, r *http.Request) {
	admin, _ := userFromContext(r.Context())
	depositID := chi.URLParam(r, "id")

	deposit, err := db.GetDepositByID(depositID)
	if err != nil {
		writeJSONError(w, http.StatusNotFound, "Депозит не найден")
		return
	}

	approved, err := db.ApproveDeposit(depositID, admin.UserID)
	if err != nil {
		log.Printf("AdminApproveDepositHandler: ошибка подтверждения %s: %v", depositID, err)
		writeJSONError(w, http.StatusInternalServerError, "Не удалось подтвердить депозит")
		return
	}
	if !approved {
		writeJSONError(w, http.StatusConflict, "Депозит уже обработан")
		return
	}

	if err := db.IncrementUserBalances(deposit.UserID, deposit.Amount, 0, 0, deposit.Amount); err != nil {
		log.Printf("AdminApproveDepositHandler: КРИТИЧНО: депозит %s подтвержден, но средства не зачислены: %v", depositID, err)
		writeJSONError(w, http.StatusInternalServerError, "Депозит подтвержден, но зачисление не выполнено")
		return
	}

	// Пересчет уровня по новым совокупным инвестициям.
	user, err := db.GetUserByID(deposit.UserID)
	if err == nil {
		newLevel, errLevel := referral.ComputeLevel(db.Store{}, user.UserID, user.TotalInvestment)
		if errLevel == nil && newLevel > user.Level {
			if errSet := db.SetUserLevel(user.UserID, newLevel); errSet != nil {
				log.Printf("AdminApproveDepositHandler: уровень пользователя %s не обновлен: %v", user.UserID, errSet)
			} else {
				log.Printf("Пользователь %s повышен до уровня %d.", user.Email, newLevel)
			}
		}
	}

	log.Printf("Депозит %s подтвержден администратором %s: $%.2f зачислено пользователю %s.",
		depositID, admin.Email, deposit.Amount, deposit.UserID)
	writeJSONSuccess(w, "Депозит подтвержден", nil)
}

// AdminRejectDepositHandler отклоняет депозит с указанием причины.
func AdminRejectDepositHandler(w http.ResponseWriter, r *http.Request) {
	admin, _ := userFromContext(r.Context())
	depositID := chi.URLParam(r, "id")

	var req RejectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Некорректное тело запроса")
		return
	}

	if err := db.RejectDeposit(depositID, admin.UserID, req.Reason); err != nil {
		log.Printf("AdminRejectDepositHandler: ошибка отклонения %s: %v", depositID, err)
		writeJSONError(w, http.StatusInternalServerError, "Не удалось отклонить депозит")
		return
	}
	writeJSONSuccess(w, "Депозит отклонен", nil)
}

// AdminApproveWithdrawalHandler подтверждает вывод. Средства были списаны
// при создании заявки, поэтому здесь фиксируется только факт перевода.
func AdminApproveWithdrawalHandler(w http.ResponseWriter, r *http.Request) {
	admin, _ := userFromContext(r.Context())
	withdrawalID := chi.URLParam(r, "id")

	var req ApproveWithdrawalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Некорректное тело запроса")
		return
	}

	if err := db.ApproveWithdrawal(withdrawalID, admin.UserID, req.TransactionHash); err != nil {
		log.Printf("AdminApproveWithdrawalHandler: ошибка подтверждения %s: %v", withdrawalID, err)
		writeJSONError(w, http.StatusInternalServerError, "Не удалось подтвердить вывод")
		return
	}
	log.Printf("Вывод %s подтвержден администратором %s.", withdrawalID, admin.Email)
	writeJSONSuccess(w, "Вывод подтвержден", nil)
}

// AdminRejectWithdrawalHandler отклоняет вывод и возвращает зарезервированную
// сумму на кошелек пользователя.
func AdminRejectWithdrawalHandler(w http.ResponseWriter, r *http.Request) {
	admin, _ := userFromContext(r.Context())
	withdrawalID := chi.URLParam(r, "id")

	var req RejectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Некорректное тело запроса")
		return
	}

	withdrawal, err := db.GetWithdrawalByID(withdrawalID)
	if err != nil {
		writeJSONError(w, http.StatusNotFound, "Заявка на вывод не найдена")
		return
	}

	rejected, err := db.RejectWithdrawal(withdrawalID, admin.UserID, req.Reason)
	if err != nil {
		log.Printf("AdminRejectWithdrawalHandler: ошибка отклонения %s: %v", withdrawalID, err)
		writeJSONError(w, http.StatusInternalServerError, "Не удалось отклонить вывод")
		return
	}
	if !rejected {
		writeJSONError(w, http.StatusConflict, "Заявка уже обработана")
		return
	}

	if err := db.IncrementUserBalances(withdrawal.UserID, withdrawal.Amount, 0, 0, 0); err != nil {
		log.Printf("AdminRejectWithdrawalHandler: КРИТИЧНО: возврат $%.2f пользователю %s не выполнен: %v",
			withdrawal.Amount, withdrawal.UserID, err)
		writeJSONError(w, http.StatusInternalServerError, "Вывод отклонен, но возврат средств не выполнен")
		return
	}

	log.Printf("Вывод %s отклонен администратором %s, $%.2f возвращено пользователю %s.",
		withdrawalID, admin.Email, withdrawal.Amount, withdrawal.UserID)
	writeJSONSuccess(w, "Вывод отклонен, средства возвращены", nil)
}

// AdminGetPackagesHandler возвращает все пакеты, включая неактивные.
func AdminGetPackagesHandler(w http.ResponseWriter, r *http.Request) {
	packages, err := db.GetAllPackages()
	if err != nil {
		log.Printf("AdminGetPackagesHandler: ошибка загрузки пакетов: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "Не удалось загрузить пакеты")
		return
	}
	writeJSONSuccess(w, "", packages)
}

// AdminCreatePackageHandler создает новый инвестиционный пакет.
func AdminCreatePackageHandler(w http.ResponseWriter, r *http.Request) {
	var pkg models.InvestmentPackage
	if err := json.NewDecoder(r.Body).Decode(&pkg); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Некорректное тело запроса")
		return
	}
	if pkg.Name == "" || pkg.Level < 1 || pkg.Level > models.MaxReferralDepth {
		writeJSONError(w, http.StatusBadRequest, "Название и уровень пакета обязательны")
		return
	}

	pkg.PackageID = uuid.NewString()
	pkg.IsActive = true
	if err := db.CreatePackage(pkg); err != nil {
		log.Printf("AdminCreatePackageHandler: ошибка создания пакета %s: %v", pkg.Name, err)
		writeJSONError(w, http.StatusInternalServerError, "Не удалось создать пакет")
		return
	}
	writeJSONSuccess(w, "Пакет создан", pkg)
}

// AdminUpdatePackageHandler обновляет параметры пакета. Уже открытые стейки
// не затрагиваются: их проценты зафиксированы на момент открытия.
func AdminUpdatePackageHandler(w http.ResponseWriter, r *http.Request) {
	packageID := chi.URLParam(r, "id")

	var pkg models.InvestmentPackage
	if err := json.NewDecoder(r.Body).Decode(&pkg); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Некорректное тело запроса")
		return
	}
	pkg.PackageID = packageID

	if err := db.UpdatePackage(pkg); err != nil {
		log.Printf("AdminUpdatePackageHandler: ошибка обновления пакета %s: %v", packageID, err)
		writeJSONError(w, http.StatusInternalServerError, "Не удалось обновить пакет")
		return
	}
	writeJSONSuccess(w, "Пакет обновлен", pkg)
}

// AdminTogglePackageHandler включает или выключает пакет.
func AdminTogglePackageHandler(w http.ResponseWriter, r *http.Request) {
	packageID := chi.URLParam(r, "id")

	isActive, err := db.TogglePackage(packageID)
	if err != nil {
		log.Printf("AdminTogglePackageHandler: ошибка переключения пакета %s: %v", packageID, err)
		writeJSONError(w, http.StatusInternalServerError, "Не удалось переключить пакет")
		return
	}
	writeJSONSuccess(w, "Статус пакета изменен", map[string]bool{"is_active": isActive})
}

// AdminGetSystemLogsHandler возвращает последние журналы циклов распределения.
func AdminGetSystemLogsHandler(w http.ResponseWriter, r *http.Request) {
	logs, err := db.GetDistributionLogs(50)
	if err != nil {
		log.Printf("AdminGetSystemLogsHandler: ошибка загрузки журналов: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "Не удалось загрузить журналы")
		return
	}
	writeJSONSuccess(w, "", logs)
}

// AdminGetEmailLogsHandler возвращает последние записи аудита писем.
func AdminGetEmailLogsHandler(w http.ResponseWriter, r *http.Request) {
	logs, err := db.GetEmailLogs(50)
	if err != nil {
		log.Printf("AdminGetEmailLogsHandler: ошибка загрузки журнала писем: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "Не удалось загрузить журнал писем")
		return
	}
	writeJSONSuccess(w, "", logs)
}

// SchedulerStatusHandler возвращает состояние планировщика ROI.
func SchedulerStatusHandler(w http.ResponseWriter, r *http.Request) {
	deps := depsFromContext(r.Context())
	writeJSONSuccess(w, "", deps.Scheduler.Status())
}

// SchedulerStartHandler запускает планировщик с настроенным расписанием.
func SchedulerStartHandler(w http.ResponseWriter, r *http.Request) {
	deps := depsFromContext(r.Context())
	deps.Scheduler.Start(deps.Config.ROIRunHour, deps.Config.ROIRunMinute)
	writeJSONSuccess(w, "Планировщик запущен", deps.Scheduler.Status())
}

// SchedulerStopHandler останавливает планировщик. Уже идущий цикл
// распределения доработает до конца.
func SchedulerStopHandler(w http.ResponseWriter, r *http.Request) {
	deps := depsFromContext(r.Context())
	deps.Scheduler.Stop()
	writeJSONSuccess(w, "Планировщик остановлен", deps.Scheduler.Status())
}

// CalculateROIHandler запускает цикл распределения вручную и возвращает
// сводку в той же форме, что и автоматический запуск.
func CalculateROIHandler(w http.ResponseWriter, r *http.Request) {
	admin, _ := userFromContext(r.Context())
	deps := depsFromContext(r.Context())

	log.Printf("Ручной запуск распределения ROI администратором %s.", admin.Email)
	summary, err := deps.Scheduler.RunDistributionCycle()
	if err != nil {
		writeJSONError(w, http.StatusConflict, err.Error())
		return
	}
	writeJSONSuccess(w, "Распределение выполнено", summary)
}
