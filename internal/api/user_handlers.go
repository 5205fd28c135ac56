package api

import (
	"fmt"
	"log"
	"net/http"

	"Minex/internal/constants"
	"Minex/internal/db"
	"Minex/internal/models"
	"Minex/internal/referral"
	"Minex/internal/utils"
)

// TeamMember - сокращенная карточка участника команды для ответа API.
type TeamMember struct {
	UserID          string  `json:"user_id"`
	FullName        string  `json:"full_name"`
	Email           string  `json:"email"`
	Level           int     `json:"level"`
	TotalInvestment float64 `json:"total_investment"`
	Depth           int     `json:"depth"`
}

// GetProfileHandler возвращает профиль аутентифицированного пользователя.
func GetProfileHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		writeJSONError(w, http.StatusUnauthorized, "Пользователь не найден в контексте")
		return
	}
	writeJSONSuccess(w, "", user)
}

// GetDashboardHandler собирает сводку личного кабинета: балансы, размеры
// команды по глубинам и прогресс до следующего уровня.
func GetDashboardHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		writeJSONError(w, http.StatusUnauthorized, "Пользователь не найден в контексте")
		return
	}

	store := db.Store{}
	teamCounts, err := referral.TeamCounts(store, user.UserID)
	if err != nil {
		log.Printf("GetDashboardHandler: ошибка подсчета команды %s: %v", user.UserID, err)
		writeJSONError(w, http.StatusInternalServerError, "Не удалось загрузить данные команды")
		return
	}

	stats := models.DashboardStats{
		TotalBalance:      user.WalletBalance,
		ROIBalance:        user.ROIBalance,
		CommissionBalance: user.CommissionBalance,
		TotalInvestment:   user.TotalInvestment,
		CurrentLevel:      user.Level,
		TeamCountsByLevel: make(map[string]int, models.MaxReferralDepth),
	}
	for d := 0; d < models.MaxReferralDepth; d++ {
		stats.TeamCountsByLevel[fmt.Sprintf("level_%d", d+1)] = teamCounts[d]
	}

	if pkg, errPkg := db.GetPackageByLevel(user.Level); errPkg == nil {
		stats.DailyROIPercentage = pkg.DailyROI
	}

	if summary, errSum := db.SummarizeCommissions(user.UserID); errSum == nil {
		stats.TotalCommissions = summary.Total
	} else {
		log.Printf("GetDashboardHandler: ошибка агрегации комиссий %s: %v", user.UserID, errSum)
	}

	if pending, errCnt := db.CountWithdrawalsByStatus(user.UserID, constants.WITHDRAWAL_STATUS_PENDING); errCnt == nil {
		stats.PendingWithdrawals = pending
	}

	// Требования и прогресс следующего уровня. На максимальном уровне
	// секция опускается.
	if next, errNext := db.GetPackageByLevel(user.Level + 1); errNext == nil {
		stats.NextLevelRequirements = &models.NextLevelRequirements{
			Level:         next.Level,
			MinInvestment: next.MinInvestment,
			TeamRequired:  next.TeamRequired,
		}
		teamMet := true
		for d := 0; d < models.MaxReferralDepth; d++ {
			if next.TeamRequired[d] > 0 && teamCounts[d] < next.TeamRequired[d] {
				teamMet = false
				break
			}
		}
		stats.PromotionProgress = &models.PromotionProgress{
			InvestmentMet: user.TotalInvestment >= next.MinInvestment,
			DirectMet:     next.TeamRequired[0] == 0 || teamCounts[0] >= next.TeamRequired[0],
			TeamMet:       teamMet,
		}
	}

	writeJSONSuccess(w, "", stats)
}

// GetTeamHandler возвращает команду пользователя, сгруппированную по глубинам
// реферального дерева.
func GetTeamHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		writeJSONError(w, http.StatusUnauthorized, "Пользователь не найден в контексте")
		return
	}

	store := db.Store{}
	byDepth, err := referral.TeamByDepth(store, user.UserID)
	if err != nil {
		log.Printf("GetTeamHandler: ошибка обхода дерева %s: %v", user.UserID, err)
		writeJSONError(w, http.StatusInternalServerError, "Не удалось загрузить команду")
		return
	}

	team := make(map[string][]TeamMember, models.MaxReferralDepth)
	for d := 0; d < models.MaxReferralDepth; d++ {
		members := make([]TeamMember, 0, len(byDepth[d]))
		for _, memberID := range byDepth[d] {
			member, errMember := store.GetUserByID(memberID)
			if errMember != nil {
				log.Printf("GetTeamHandler: участник %s не загружен: %v", memberID, errMember)
				continue
			}
			members = append(members, TeamMember{
				UserID:          member.UserID,
				FullName:        member.FullName,
				Email:           member.Email,
				Level:           member.Level,
				TotalInvestment: member.TotalInvestment,
				Depth:           d + 1,
			})
		}
		team[fmt.Sprintf("level_%d", d+1)] = members
	}

	writeJSONSuccess(w, "", team)
}

// GetReferralQRHandler возвращает PNG с QR-кодом реферальной ссылки.
func GetReferralQRHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		writeJSONError(w, http.StatusUnauthorized, "Пользователь не найден в контексте")
		return
	}

	deps := depsFromContext(r.Context())
	qrBytes, err := utils.GenerateQRCode(deps.Config.AppBaseURL, user.ReferralCode)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "Не удалось сгенерировать QR-код")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(qrBytes); err != nil {
		log.Printf("GetReferralQRHandler: ошибка записи ответа: %v", err)
	}
}
