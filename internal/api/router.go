package api

import (
	"context"
	"net/http"
	"time"

	"coursehub/internal/api/handler"
	"coursehub/internal/api/middleware"
	"coursehub/internal/app/service"
	"coursehub/internal/common"
	"coursehub/internal/common/security"
	"coursehub/internal/platform/metrics"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/jwtauth/v5"
	"go.uber.org/zap"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Services struct {
	Auth       *service.AuthService
	Users      *service.UserService
	Catalog    *service.CatalogService
	Enrollment *service.EnrollmentService
	Grades     *service.GradeService
	Homework   *service.HomeworkService
	Files      *service.FileService
	Messages   *service.MessageService
}

type Options struct {
	Tokens         *security.TokenIssuer
	Uploads        http.Handler
	Health         Pinger // nil means always healthy
	RequestTimeout time.Duration
	MaxUploadBytes int64
	Log            *zap.Logger
}

func NewRouter(svc Services, opts Options) http.Handler {
	r := chi.NewRouter()
	log := opts.Log

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.Metrics)
	r.Use(chiMiddleware.Recoverer)
	if opts.RequestTimeout > 0 {
		r.Use(chiMiddleware.Timeout(opts.RequestTimeout))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if opts.Health != nil {
			if err := opts.Health.PingContext(r.Context()); err != nil {
				log.Warn("health check failed", zap.Error(err))
				common.RespondWithError(w, http.StatusServiceUnavailable, common.ErrServiceUnavailable.Error())
				return
			}
		}
		common.RespondOK(w, "OK", nil)
	})
	r.Method(http.MethodGet, "/metrics", metrics.Handler())
	if opts.Uploads != nil {
		r.Handle("/uploads/*", http.StripPrefix("/uploads/", opts.Uploads))
	}

	authHandler := handler.NewAuthHandler(svc.Auth, log)
	catalogHandler := handler.NewCatalogHandler(svc.Catalog, log)
	enrollmentHandler := handler.NewEnrollmentHandler(svc.Enrollment, log)
	gradeHandler := handler.NewGradeHandler(svc.Grades, log)
	homeworkHandler := handler.NewHomeworkHandler(svc.Homework, opts.MaxUploadBytes, log)
	fileHandler := handler.NewFileHandler(svc.Files, opts.MaxUploadBytes, log)
	messageHandler := handler.NewMessageHandler(svc.Messages, log)
	userHandler := handler.NewUserHandler(svc.Users, log)

	r.Route("/api", func(api chi.Router) {
		authHandler.RegisterRoutes(api)
		catalogHandler.RegisterPublicRoutes(api)

		api.Group(func(authed chi.Router) {
			authed.Use(jwtauth.Verifier(opts.Tokens.Auth))
			authed.Use(middleware.Authenticator)

			catalogHandler.RegisterRoutes(authed)
			enrollmentHandler.RegisterRoutes(authed)
			gradeHandler.RegisterRoutes(authed)
			homeworkHandler.RegisterRoutes(authed)
			fileHandler.RegisterRoutes(authed)
			messageHandler.RegisterRoutes(authed)
			authed.Group(func(admin chi.Router) {
				admin.Use(middleware.AdminOnly)
				userHandler.RegisterRoutes(admin)
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		common.RespondWithError(w, http.StatusNotFound, "route not found")
	})
	return r
}
