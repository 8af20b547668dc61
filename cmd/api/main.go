package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/deskware/hr-backend-go/internal/config"
	appHTTP "github.com/deskware/hr-backend-go/internal/handler/http"
	"github.com/deskware/hr-backend-go/internal/pkg/authz"
	"github.com/deskware/hr-backend-go/internal/pkg/cron"
	"github.com/deskware/hr-backend-go/internal/pkg/database"
	"github.com/deskware/hr-backend-go/internal/pkg/events"
	"github.com/deskware/hr-backend-go/internal/pkg/jwt"
	"github.com/deskware/hr-backend-go/internal/repository/postgresql"
	holidayService "github.com/deskware/hr-backend-go/internal/service/holiday"
	leaveService "github.com/deskware/hr-backend-go/internal/service/leave"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		return
	}

	dsn := cfg.DatabaseURL()
	db, err := database.NewPostgreSQLDB(dsn)
	if err != nil {
		fmt.Println("Error connecting to database:", err)
		return
	}
	defer db.Close()

	leaveTypeRepo := postgresql.NewLeaveTypeRepository(db)
	leaveBalanceRepo := postgresql.NewLeaveBalanceRepository(db)
	leaveRequestRepo := postgresql.NewLeaveRequestRepository(db)
	leaveApprovalRepo := postgresql.NewLeaveApprovalRepository(db)
	holidayRepo := postgresql.NewHolidayRepository(db)
	employeeRepo := postgresql.NewEmployeeRepository(db)
	capabilityRepo := postgresql.NewCapabilityRepository(db)
	transactor := postgresql.NewTransactor(db)

	jwtService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	checker := authz.NewChecker(capabilityRepo)
	hub := events.NewHub()

	calculator := leaveService.NewAccrualCalculator(cfg.Leave.DefaultServiceTiers)
	ledger := leaveService.NewLedgerService(leaveBalanceRepo, leaveTypeRepo, employeeRepo, calculator)
	typeSvc := leaveService.NewTypeService(leaveTypeRepo)
	balanceSvc := leaveService.NewBalanceService(leaveBalanceRepo)
	workflowSvc := leaveService.NewWorkflowService(
		leaveRequestRepo,
		leaveTypeRepo,
		leaveApprovalRepo,
		employeeRepo,
		holidayRepo,
		ledger,
		transactor,
		hub,
	)
	rolloverSvc := leaveService.NewRolloverService(leaveBalanceRepo, leaveTypeRepo, employeeRepo, ledger, transactor)
	holidaySvc := holidayService.NewService(holidayRepo)

	leaveHandler := appHTTP.NewLeaveHandler(typeSvc, balanceSvc, workflowSvc)
	holidayHandler := appHTTP.NewHolidayHandler(holidaySvc)
	rolloverHandler := appHTTP.NewRolloverHandler(rolloverSvc)
	notificationHandler := appHTTP.NewNotificationHandler(hub)

	scheduler := cron.NewScheduler()
	scheduler.AddJob("start-due-requests", time.Hour, workflowSvc.StartDueRequests)
	scheduler.AddJob("year-rollover", 24*time.Hour, rolloverSvc.RunScheduledRollover)
	scheduler.Start()
	defer scheduler.Stop()

	router := appHTTP.NewRouter(
		jwtService,
		checker,
		leaveHandler,
		holidayHandler,
		rolloverHandler,
		notificationHandler,
	)

	port := fmt.Sprintf(":%d", cfg.App.Port)
	server := &http.Server{Addr: port, Handler: router}

	go func() {
		fmt.Printf("Server running at http://localhost%s\n", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Println("Server error:", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	fmt.Println("Shutting down...")
	_ = server.Close()
}
