package router

import (
	"context"
	"net/http"
	"time"

	"cricketbet/internal/handlers"
	"cricketbet/internal/metrics"
	"cricketbet/internal/middleware"
	"cricketbet/internal/models"
	"cricketbet/internal/repository"
	"cricketbet/internal/services"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const slowRequestThreshold = time.Second

// Services is everything the HTTP layer calls into.
type Services struct {
	Auth         *services.AuthService
	Users        *services.UserService
	Bets         *services.BetService
	Settlement   *services.SettlementService
	Transactions *services.TransactionService
	Balance      *services.BalanceService
	Matches      *services.MatchService
}

type Options struct {
	RateLimit float64
	RateBurst int
}

func SetupRouter(store repository.Store, svc Services, m *metrics.Metrics, opts Options, logger zerolog.Logger) http.Handler {
	authHandler := handlers.NewAuthHandler(svc.Users, svc.Auth, logger)
	userHandler := handlers.NewUserHandler(svc.Users, logger)
	betHandler := handlers.NewBetHandler(svc.Bets, svc.Settlement, logger)
	transactionHandler := handlers.NewTransactionHandler(svc.Transactions, logger)
	balanceHandler := handlers.NewBalanceHandler(svc.Balance, logger)
	matchHandler := handlers.NewMatchHandler(svc.Matches, logger)

	r := mux.NewRouter()

	rateLimiter := middleware.NewRateLimiter(rate.Limit(opts.RateLimit), opts.RateBurst)

	r.Use(middleware.ErrorHandling(logger))
	r.Use(middleware.PerformanceMonitoring(logger, slowRequestThreshold))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(m.Middleware)

	r.Handle("/metrics", m.Handler()).Methods("GET")
	r.HandleFunc("/health", healthHandler(store)).Methods("GET")

	api := r.PathPrefix("").Subrouter()
	api.Use(rateLimiter.Middleware())
	api.Use(middleware.RequestValidation())

	api.HandleFunc("/matches", matchHandler.ListMatches).Methods("GET")
	api.HandleFunc("/deposit-info", transactionHandler.GetDepositInfo).Methods("GET")
	api.HandleFunc("/register", authHandler.Register).Methods("POST")
	api.HandleFunc("/login", authHandler.Login).Methods("POST")
	api.HandleFunc("/admin-login", authHandler.AdminLogin).Methods("POST")
	api.HandleFunc("/admin-logout", authHandler.AdminLogout).Methods("POST")

	authenticated := api.PathPrefix("").Subrouter()
	authenticated.Use(middleware.Authentication(svc.Auth, logger))
	authenticated.HandleFunc("/refresh", authHandler.Refresh).Methods("POST")

	users := authenticated.PathPrefix("").Subrouter()
	users.Use(middleware.RequireRole(string(models.RoleUser)))
	users.HandleFunc("/me", userHandler.Me).Methods("GET")
	users.HandleFunc("/me/bets", betHandler.MyBets).Methods("GET")
	users.HandleFunc("/me/balance-history", balanceHandler.GetBalanceHistory).Methods("GET")
	users.HandleFunc("/profile", userHandler.UpdateProfile).Methods("POST")
	users.HandleFunc("/bet", betHandler.PlaceBet).Methods("POST")
	users.HandleFunc("/deposit", transactionHandler.Deposit).Methods("POST")
	users.HandleFunc("/withdraw", transactionHandler.Withdraw).Methods("POST")

	admin := authenticated.PathPrefix("/admin").Subrouter()
	admin.Use(middleware.RequireRole(string(models.RoleAdmin)))
	admin.HandleFunc("/users", userHandler.ListUsers).Methods("GET")
	admin.HandleFunc("/users/{phone}", userHandler.DeleteUser).Methods("DELETE")
	admin.HandleFunc("/users/{id}/reconcile", balanceHandler.Reconcile).Methods("GET")
	admin.HandleFunc("/deposits", transactionHandler.List(models.TransactionKindDeposit)).Methods("GET")
	admin.HandleFunc("/withdrawals", transactionHandler.List(models.TransactionKindWithdrawal)).Methods("GET")
	admin.HandleFunc("/deposits/{id}", transactionHandler.Review(models.TransactionKindDeposit)).Methods("POST")
	admin.HandleFunc("/withdrawals/{id}", transactionHandler.Review(models.TransactionKindWithdrawal)).Methods("POST")
	admin.HandleFunc("/matches/{id}/odds", matchHandler.SetOdds).Methods("POST")
	admin.HandleFunc("/matches/{id}/result", betHandler.SettleMatch).Methods("POST")
	admin.HandleFunc("/deposit-info", transactionHandler.UpdateDepositInfo).Methods("POST")

	// CORS wraps the router so preflight requests are answered before route
	// matching rejects the OPTIONS method.
	return middleware.CORS()(r)
}

func healthHandler(store repository.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		w.Header().Set("Content-Type", "application/json")
		if err := store.Ping(ctx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"unavailable"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}
}
