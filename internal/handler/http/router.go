package http

import (
	"log/slog"
	"os"

	"github.com/deskware/hr-backend-go/internal/handler/http/middleware"
	"github.com/deskware/hr-backend-go/internal/pkg/authz"
	"github.com/deskware/hr-backend-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

func NewRouter(
	jwtService jwt.Service,
	checker authz.Checker,
	leaveHandler LeaveHandler,
	holidayHandler HolidayHandler,
	rolloverHandler RolloverHandler,
	notificationHandler NotificationHandler,
) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(false)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "hr-backend"),
		slog.String("version", "v1.0.0"),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000"},
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelInfo,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/healthz"))

	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(jwtService.JWTAuth()))
			r.Use(middleware.AuthRequired(jwtService.JWTAuth()))

			r.Route("/leave-types", func(r chi.Router) {
				r.With(middleware.RequireCapability(checker, authz.ActionView, authz.ResourceLeaveType)).
					Get("/", leaveHandler.ListTypes)
				r.With(middleware.RequireCapability(checker, authz.ActionView, authz.ResourceLeaveType)).
					Get("/{id}", leaveHandler.GetType)

				r.Group(func(r chi.Router) {
					r.Use(middleware.AdminOnly)
					r.Post("/", leaveHandler.CreateType)
					r.Put("/{id}", leaveHandler.UpdateType)
					r.Delete("/{id}", leaveHandler.DeleteType)
				})
			})

			r.Route("/leave-balances", func(r chi.Router) {
				r.Get("/my", leaveHandler.GetMyBalances)
				r.With(middleware.RequireCapability(checker, authz.ActionView, authz.ResourceLeaveBalance)).
					Get("/employees/{employeeID}", leaveHandler.GetEmployeeBalances)
			})

			r.Route("/leave-requests", func(r chi.Router) {
				r.Post("/", leaveHandler.CreateRequest)
				r.Get("/my", leaveHandler.GetMyRequests)
				r.With(middleware.RequireCapability(checker, authz.ActionView, authz.ResourceLeaveRequest)).
					Get("/", leaveHandler.ListRequests)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", leaveHandler.GetRequest)
					r.Get("/approvals", leaveHandler.GetApprovalHistory)
					r.Post("/submit", leaveHandler.SubmitRequest)
					r.Post("/cancel", leaveHandler.CancelRequest)
					r.Post("/complete", leaveHandler.CompleteRequest)

					r.Group(func(r chi.Router) {
						r.Use(middleware.RequireCapability(checker, authz.ActionApprove, authz.ResourceLeaveRequest))
						r.Post("/approve", leaveHandler.ApproveRequest)
						r.Post("/reject", leaveHandler.RejectRequest)
					})
				})
			})

			r.Route("/holidays", func(r chi.Router) {
				r.Get("/", holidayHandler.List)
				r.Get("/{id}", holidayHandler.Get)

				r.With(middleware.RequireCapability(checker, authz.ActionCreate, authz.ResourceHoliday)).
					Post("/", holidayHandler.Create)
				r.With(middleware.RequireCapability(checker, authz.ActionDelete, authz.ResourceHoliday)).
					Delete("/{id}", holidayHandler.Delete)
			})

			r.Route("/rollover", func(r chi.Router) {
				r.Use(middleware.AdminOnly)
				r.Post("/run", rolloverHandler.RunYearRollover)
				r.Post("/allocate", rolloverHandler.AllocateBalances)
			})

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/stream", notificationHandler.Stream)
				r.With(middleware.AdminOnly).Get("/stream/all", notificationHandler.StreamAll)
			})
		})
	})

	return r
}
