package api

import (
	"database/sql"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"

	"Minex/internal/constants"
	"Minex/internal/db"
	"Minex/internal/models"
	"Minex/internal/notify"
	"Minex/internal/utils"
)

// CreateDepositRequest - заявка пользователя на пополнение.
type CreateDepositRequest struct {
	Amount          float64 `json:"amount"`
	PaymentMethod   string  `json:"payment_method"`
	TransactionHash string  `json:"transaction_hash,omitempty"`
}

// CreateWithdrawalRequest - заявка пользователя на вывод средств.
type CreateWithdrawalRequest struct {
	Amount        float64 `json:"amount"`
	WalletAddress string  `json:"wallet_address"`
}

// CreateStakeRequest - запрос на открытие стейка по выбранному пакету.
type CreateStakeRequest struct {
	PackageID string  `json:"package_id"`
	Amount    float64 `json:"amount"`
}

// CreateDepositHandler создает заявку на пополнение. Средства зачисляются
// только после подтверждения администратором.
func CreateDepositHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		writeJSONError(w, http.StatusUnauthorized, "Пользователь не найден в контексте")
		return
	}

	var req CreateDepositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Некорректное тело запроса")
		return
	}
	if err := utils.ValidateAmount(req.Amount); err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.PaymentMethod != constants.PAYMENT_METHOD_USDT && req.PaymentMethod != constants.PAYMENT_METHOD_BANK {
		writeJSONError(w, http.StatusBadRequest, "Неизвестный способ оплаты")
		return
	}

	deposit := models.Deposit{
		DepositID:     uuid.NewString(),
		UserID:        user.UserID,
		Amount:        req.Amount,
		PaymentMethod: req.PaymentMethod,
		Status:        constants.DEPOSIT_STATUS_PENDING,
	}
	if req.TransactionHash != "" {
		deposit.TransactionHash = sql.NullString{String: req.TransactionHash, Valid: true}
	}

	if err := db.CreateDeposit(deposit); err != nil {
		log.Printf("CreateDepositHandler: ошибка создания депозита для %s: %v", user.UserID, err)
		writeJSONError(w, http.StatusInternalServerError, "Не удалось создать заявку на пополнение")
		return
	}

	deps := depsFromContext(r.Context())
	if deps.Notifier != nil {
		deps.Notifier.Notify(notify.Event{
			Type:      constants.EVENT_DEPOSIT_PENDING,
			Recipient: user,
			Amount:    req.Amount,
		})
	}

	log.Printf("Создана заявка на пополнение %s: пользователь %s, сумма $%.2f.", deposit.DepositID, user.Email, req.Amount)
	writeJSONSuccess(w, "Заявка на пополнение создана и ожидает подтверждения", deposit)
}

// GetDepositsHandler возвращает депозиты текущего пользователя.
func GetDepositsHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		writeJSONError(w, http.StatusUnauthorized, "Пользователь не найден в контексте")
		return
	}
	deposits, err := db.GetDepositsByUser(user.UserID)
	if err != nil {
		log.Printf("GetDepositsHandler: ошибка загрузки депозитов %s: %v", user.UserID, err)
		writeJSONError(w, http.StatusInternalServerError, "Не удалось загрузить депозиты")
		return
	}
	writeJSONSuccess(w, "", deposits)
}

// CreateWithdrawalHandler создает заявку на вывод. Сумма списывается с
// кошелька сразу при создании заявки и возвращается при отклонении, чтобы
// пользователь не мог вывести одни и те же средства дважды.
func CreateWithdrawalHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		writeJSONError(w, http.StatusUnauthorized, "Пользователь не найден в контексте")
		return
	}

	var req CreateWithdrawalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Некорректное тело запроса")
		return
	}
	if err := utils.ValidateAmount(req.Amount); err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := utils.ValidateWalletAddress(req.WalletAddress); err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	if user.WalletBalance < req.Amount {
		writeJSONError(w, http.StatusBadRequest, "Недостаточно средств на балансе")
		return
	}

	if err := db.IncrementUserBalances(user.UserID, -req.Amount, 0, 0, 0); err != nil {
		log.Printf("CreateWithdrawalHandler: ошибка списания с %s: %v", user.UserID, err)
		writeJSONError(w, http.StatusInternalServerError, "Не удалось зарезервировать средства")
		return
	}

	withdrawal := models.Withdrawal{
		WithdrawalID:  uuid.NewString(),
		UserID:        user.UserID,
		Amount:        req.Amount,
		WalletAddress: req.WalletAddress,
		Status:        constants.WITHDRAWAL_STATUS_PENDING,
	}
	if err := db.CreateWithdrawal(withdrawal); err != nil {
		log.Printf("CreateWithdrawalHandler: ошибка создания заявки для %s, возвращаем средства: %v", user.UserID, err)
		if errRefund := db.IncrementUserBalances(user.UserID, req.Amount, 0, 0, 0); errRefund != nil {
			log.Printf("CreateWithdrawalHandler: КРИТИЧНО: возврат $%.2f пользователю %s не выполнен: %v", req.Amount, user.UserID, errRefund)
		}
		writeJSONError(w, http.StatusInternalServerError, "Не удалось создать заявку на вывод")
		return
	}

	log.Printf("Создана заявка на вывод %s: пользователь %s, сумма $%.2f.", withdrawal.WithdrawalID, user.Email, req.Amount)
	writeJSONSuccess(w, "Заявка на вывод создана и ожидает подтверждения", withdrawal)
}

// GetWithdrawalsHandler возвращает заявки на вывод текущего пользователя.
func GetWithdrawalsHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		writeJSONError(w, http.StatusUnauthorized, "Пользователь не найден в контексте")
		return
	}
	withdrawals, err := db.GetWithdrawalsByUser(user.UserID)
	if err != nil {
		log.Printf("GetWithdrawalsHandler: ошибка загрузки заявок %s: %v", user.UserID, err)
		writeJSONError(w, http.StatusInternalServerError, "Не удалось загрузить заявки на вывод")
		return
	}
	writeJSONSuccess(w, "", withdrawals)
}

// CreateStakeHandler открывает стейк по выбранному пакету. Процент ROI и
// срок фиксируются в записи стейка на момент открытия. Прямая комиссия
// пригласившему начисляется сразу от суммы стейка.
func CreateStakeHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		writeJSONError(w, http.StatusUnauthorized, "Пользователь не найден в контексте")
		return
	}

	var req CreateStakeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Некорректное тело запроса")
		return
	}
	if err := utils.ValidateAmount(req.Amount); err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	pkg, err := db.GetPackageByID(req.PackageID)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "Пакет не найден")
		return
	}
	if !pkg.IsActive {
		writeJSONError(w, http.StatusBadRequest, "Пакет недоступен")
		return
	}
	if req.Amount < pkg.MinInvestment {
		writeJSONError(w, http.StatusBadRequest, "Сумма меньше минимальной для этого пакета")
		return
	}
	if pkg.MaxInvestment > 0 && req.Amount > pkg.MaxInvestment {
		writeJSONError(w, http.StatusBadRequest, "Сумма больше максимальной для этого пакета")
		return
	}
	if user.WalletBalance < req.Amount {
		writeJSONError(w, http.StatusBadRequest, "Недостаточно средств на балансе")
		return
	}

	if err := db.IncrementUserBalances(user.UserID, -req.Amount, 0, 0, 0); err != nil {
		log.Printf("CreateStakeHandler: ошибка списания с %s: %v", user.UserID, err)
		writeJSONError(w, http.StatusInternalServerError, "Не удалось зарезервировать средства")
		return
	}

	now := time.Now().UTC()
	stake := models.Stake{
		StakeID:      uuid.NewString(),
		UserID:       user.UserID,
		PackageID:    pkg.PackageID,
		Amount:       req.Amount,
		DailyROI:     pkg.DailyROI,
		DurationDays: pkg.DurationDays,
		StartDate:    now,
		EndDate:      now.AddDate(0, 0, pkg.DurationDays),
		Status:       constants.STAKE_STATUS_ACTIVE,
	}
	if err := db.CreateStake(stake); err != nil {
		log.Printf("CreateStakeHandler: ошибка создания стейка для %s, возвращаем средства: %v", user.UserID, err)
		if errRefund := db.IncrementUserBalances(user.UserID, req.Amount, 0, 0, 0); errRefund != nil {
			log.Printf("CreateStakeHandler: КРИТИЧНО: возврат $%.2f пользователю %s не выполнен: %v", req.Amount, user.UserID, errRefund)
		}
		writeJSONError(w, http.StatusInternalServerError, "Не удалось открыть стейк")
		return
	}

	deps := depsFromContext(r.Context())
	if deps.Distrib != nil {
		if errComm := deps.Distrib.PayDirectCommission(stake.StakeID, user.UserID, req.Amount); errComm != nil {
			// Стейк открыт; невыплаченная комиссия видна по отсутствию записи.
			log.Printf("CreateStakeHandler: прямая комиссия по стейку %s не начислена: %v", stake.StakeID, errComm)
		}
	}

	log.Printf("Открыт стейк %s: пользователь %s, пакет %s, сумма $%.2f.", stake.StakeID, user.Email, pkg.Name, req.Amount)
	writeJSONSuccess(w, "Стейк успешно открыт", stake)
}

// GetStakesHandler возвращает стейки текущего пользователя.
func GetStakesHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		writeJSONError(w, http.StatusUnauthorized, "Пользователь не найден в контексте")
		return
	}
	stakes, err := db.GetStakesByUser(user.UserID)
	if err != nil {
		log.Printf("GetStakesHandler: ошибка загрузки стейков %s: %v", user.UserID, err)
		writeJSONError(w, http.StatusInternalServerError, "Не удалось загрузить стейки")
		return
	}
	writeJSONSuccess(w, "", stakes)
}

// GetCommissionsHandler возвращает комиссионные начисления пользователя.
func GetCommissionsHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		writeJSONError(w, http.StatusUnauthorized, "Пользователь не найден в контексте")
		return
	}
	commissions, err := db.GetCommissionsByUser(user.UserID)
	if err != nil {
		log.Printf("GetCommissionsHandler: ошибка загрузки комиссий %s: %v", user.UserID, err)
		writeJSONError(w, http.StatusInternalServerError, "Не удалось загрузить комиссии")
		return
	}
	writeJSONSuccess(w, "", commissions)
}

// GetCommissionSummaryHandler возвращает агрегат комиссий по глубинам.
func GetCommissionSummaryHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		writeJSONError(w, http.StatusUnauthorized, "Пользователь не найден в контексте")
		return
	}
	summary, err := db.SummarizeCommissions(user.UserID)
	if err != nil {
		log.Printf("GetCommissionSummaryHandler: ошибка агрегации комиссий %s: %v", user.UserID, err)
		writeJSONError(w, http.StatusInternalServerError, "Не удалось загрузить сводку комиссий")
		return
	}
	writeJSONSuccess(w, "", summary)
}

// GetROITransactionsHandler возвращает историю начислений ROI пользователя.
func GetROITransactionsHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		writeJSONError(w, http.StatusUnauthorized, "Пользователь не найден в контексте")
		return
	}
	transactions, err := db.GetROITransactionsByUser(user.UserID)
	if err != nil {
		log.Printf("GetROITransactionsHandler: ошибка загрузки начислений %s: %v", user.UserID, err)
		writeJSONError(w, http.StatusInternalServerError, "Не удалось загрузить начисления ROI")
		return
	}
	writeJSONSuccess(w, "", transactions)
}
