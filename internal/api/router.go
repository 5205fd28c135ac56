package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"Minex/internal/config"
	"Minex/internal/constants"
	"Minex/internal/distribution"
	"Minex/internal/notify"
)

// ApiDependencies содержит зависимости для обработчиков API.
type ApiDependencies struct {
	Config    *config.Config
	Scheduler *distribution.Scheduler
	Distrib   *distribution.Distributor
	Notifier  notify.Notifier
}

// SetupRoutes настраивает все маршруты для API.
func SetupRoutes(r *chi.Mux, deps ApiDependencies) {
	r.Use(DepsMiddleware(deps))

	// --- Публичные маршруты ---
	r.Group(func(r chi.Router) {
		r.Post("/api/auth/register", RegisterHandler)
		r.Post("/api/auth/login", LoginHandler)
		r.Get("/api/packages", GetPackagesHandler)
		r.Get("/api/settings", GetSettingsHandler)
	})

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(deps.Config.JWTSecret))

		// --- Маршруты для обычных пользователей ---
		r.Get("/api/user/profile", GetProfileHandler)
		r.Get("/api/user/dashboard", GetDashboardHandler)
		r.Get("/api/user/team", GetTeamHandler)
		r.Get("/api/user/referral-qr", GetReferralQRHandler)

		r.Post("/api/deposits", CreateDepositHandler)
		r.Get("/api/deposits", GetDepositsHandler)

		r.Post("/api/withdrawals", CreateWithdrawalHandler)
		r.Get("/api/withdrawals", GetWithdrawalsHandler)

		r.Post("/api/stakes", CreateStakeHandler)
		r.Get("/api/stakes", GetStakesHandler)

		r.Get("/api/commissions", GetCommissionsHandler)
		r.Get("/api/commissions/summary", GetCommissionSummaryHandler)
		r.Get("/api/roi-transactions", GetROITransactionsHandler)

		// --- Маршруты для администраторов ---
		r.Route("/api/admin", func(r chi.Router) {
			r.Use(RoleMiddleware(constants.ROLE_ADMIN))

			r.Get("/dashboard", AdminDashboardHandler)
			r.Get("/users", AdminGetUsersHandler)

			r.Get("/deposits", AdminGetDepositsHandler)
			r.Post("/deposit/{id}/approve", AdminApproveDepositHandler)
			r.Post("/deposit/{id}/reject", AdminRejectDepositHandler)

			r.Get("/withdrawals", AdminGetWithdrawalsHandler)
			r.Post("/withdrawal/{id}/approve", AdminApproveWithdrawalHandler)
			r.Post("/withdrawal/{id}/reject", AdminRejectWithdrawalHandler)

			r.Get("/packages", AdminGetPackagesHandler)
			r.Post("/packages", AdminCreatePackageHandler)
			r.Put("/package/{id}", AdminUpdatePackageHandler)
			r.Post("/package/{id}/toggle", AdminTogglePackageHandler)

			r.Get("/system-logs", AdminGetSystemLogsHandler)
			r.Get("/email-logs", AdminGetEmailLogsHandler)

			r.Get("/scheduler/status", SchedulerStatusHandler)
			r.Post("/scheduler/start", SchedulerStartHandler)
			r.Post("/scheduler/stop", SchedulerStopHandler)
			r.Post("/scheduler/calculate-roi", CalculateROIHandler)

			r.Get("/reports/commissions.xlsx", CommissionsReportHandler)
		})
	})
}

// DepsMiddleware кладет зависимости в контекст запроса для обработчиков.
func DepsMiddleware(deps ApiDependencies) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := withDeps(r.Context(), deps)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
