package routes

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/consult-scheduler/internal/audit"
	"github.com/BruksfildServices01/consult-scheduler/internal/config"
	"github.com/BruksfildServices01/consult-scheduler/internal/handlers"
	infraRepo "github.com/BruksfildServices01/consult-scheduler/internal/infra/repository"
	"github.com/BruksfildServices01/consult-scheduler/internal/logging"
	"github.com/BruksfildServices01/consult-scheduler/internal/metrics"
	"github.com/BruksfildServices01/consult-scheduler/internal/middleware"
	"github.com/BruksfildServices01/consult-scheduler/internal/models"
	"github.com/BruksfildServices01/consult-scheduler/internal/notify"
	"github.com/BruksfildServices01/consult-scheduler/internal/ratelimit"
	ucConsultation "github.com/BruksfildServices01/consult-scheduler/internal/usecase/consultation"
	ucEnrollment "github.com/BruksfildServices01/consult-scheduler/internal/usecase/enrollment"
)

// Deps are the process singletons built in main.
type Deps struct {
	DB       *gorm.DB
	Config   *config.Config
	Log      *slog.Logger
	Audit    audit.Recorder
	Limiter  *ratelimit.Limiter
	Metrics  *metrics.Metrics
	Notify   notify.Publisher
	Gatherer prometheus.Gatherer
}

func RegisterRoutes(r *gin.Engine, d Deps) {

	// ======================================================
	// MIDDLEWARE GLOBAL
	// ======================================================
	r.Use(middleware.Recovery(d.Audit, logging.Component(d.Log, "recovery")))
	r.Use(middleware.CORSMiddleware(d.Config.CORSOrigins))
	r.Use(d.Metrics.Middleware())
	r.Use(middleware.StoreTimeout(d.Config.StoreTimeout))

	// ======================================================
	// INFRA (SINGLETONS)
	// ======================================================
	consultationRepo := infraRepo.NewConsultationGormRepository(d.DB)
	enrollmentRepo := infraRepo.NewEnrollmentGormRepository(d.DB)
	identityRepo := infraRepo.NewIdentityGormRepository(d.DB)

	pub := d.Notify
	if pub == nil {
		pub = notify.Nop()
	}

	// ======================================================
	// USE CASES: ENROLLMENTS
	// ======================================================
	enrollLog := logging.Component(d.Log, "enrollment")

	enrollUC := ucEnrollment.NewEnroll(enrollmentRepo, d.Audit, d.Metrics, pub, enrollLog)
	activateUC := ucEnrollment.NewActivate(enrollmentRepo, d.Audit, d.Metrics, pub, enrollLog)
	cancelUC := ucEnrollment.NewCancel(enrollmentRepo, d.Audit, d.Metrics, pub, enrollLog)

	// ======================================================
	// USE CASES: CONSULTATIONS
	// ======================================================
	consultLog := logging.Component(d.Log, "consultation")

	reserveUC := ucConsultation.NewReserveSlot(consultationRepo, d.Audit, d.Metrics, pub, consultLog)
	transitionUC := ucConsultation.NewTransitionConsultation(consultationRepo, d.Audit, d.Metrics, pub, consultLog)
	listSlotsUC := ucConsultation.NewListOpenSlots(consultationRepo)

	// ======================================================
	// HANDLERS
	// ======================================================
	guard := handlers.NewGuard(d.Audit, d.Limiter, logging.Component(d.Log, "gateway"))

	enrollmentHandler := handlers.NewEnrollmentHandler(enrollUC, activateUC, cancelUC, guard)
	consultationHandler := handlers.NewConsultationHandler(reserveUC, transitionUC, listSlotsUC, guard)
	auditLogsHandler := handlers.NewAuditLogsHandler(d.DB)
	meHandler := handlers.NewMeHandler()

	// ======================================================
	// PUBLIC
	// ======================================================
	if d.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}

	// ======================================================
	// SECURED
	// ======================================================
	secured := r.Group("/")
	secured.Use(middleware.AuthMiddleware(d.Config, identityRepo, d.Audit))
	{
		secured.GET("/me", meHandler.GetMe)

		secured.POST("/enrollment-actions", enrollmentHandler.Handle)

		secured.POST("/rpc/book_consultation", consultationHandler.Book)
		secured.POST("/consultation-actions", consultationHandler.Handle)
		secured.GET("/time-slots", consultationHandler.ListSlots)

		admin := secured.Group("/admin")
		admin.Use(middleware.RequireRole(models.RoleAdmin))
		{
			admin.GET("/activity-logs", auditLogsHandler.ListActivity)
			admin.GET("/error-logs", auditLogsHandler.ListErrors)
		}
	}
}
