package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"neuroclinic-server/internal/config"
	"neuroclinic-server/internal/handlers"
	"neuroclinic-server/internal/metrics"
	"neuroclinic-server/internal/middleware"
	"neuroclinic-server/internal/models"
	"neuroclinic-server/internal/services"
)

// SetupRoutes configures the application routes. m may be nil when metrics
// are disabled.
func SetupRoutes(router *gin.Engine, svc *services.Services, cfg *config.Config, m *metrics.Collector) {
	loc := cfg.Location()

	authHandler := handlers.NewAuthHandler(svc.Auth, cfg)
	userHandler := handlers.NewUserHandler(svc.Users)
	directoryHandler := handlers.NewDirectoryHandler(svc.Directory, loc)
	appointmentHandler := handlers.NewAppointmentHandler(svc.Appointments, loc)
	caseHandler := handlers.NewCaseHandler(svc.Cases)
	clinicalHandler := handlers.NewClinicalHandler(svc)
	patientHandler := handlers.NewPatientHandler(svc)
	dashboardHandler := handlers.NewDashboardHandler(svc.Dashboard)
	notificationHandler := handlers.NewNotificationHandler(svc.Notifications)

	staff := middleware.RoleAuthMiddleware(models.RoleAdmin, models.RoleDoctor, models.RoleNurse, models.RoleReceptionist)
	frontDesk := middleware.RoleAuthMiddleware(models.RoleAdmin, models.RoleReceptionist)
	clinicians := middleware.RoleAuthMiddleware(models.RoleDoctor, models.RoleNurse)
	doctors := middleware.RoleAuthMiddleware(models.RoleDoctor)

	// Public routes (no authentication required)
	public := router.Group("/api/v1")
	{
		authRoutes := public.Group("/auth")
		{
			authRoutes.POST("/login", middleware.RateLimit(cfg.LoginRateLimit), authHandler.Login)
			authRoutes.POST("/refresh-token", authHandler.RefreshToken)
			authRoutes.POST("/logout", authHandler.Logout)
		}
	}

	private := router.Group("/api/v1")
	private.Use(middleware.AuthMiddleware(cfg))
	{
		authRoutesPrivate := private.Group("/auth")
		{
			authRoutesPrivate.GET("/profile", authHandler.GetProfile)
			authRoutesPrivate.PUT("/profile", authHandler.UpdateProfile)
			authRoutesPrivate.PUT("/password", authHandler.ChangePassword)
		}

		private.GET("/dashboard", dashboardHandler.GetDashboard)

		// Staff accounts are managed by admins only.
		userRoutes := private.Group("/users")
		userRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin))
		{
			userRoutes.POST("", userHandler.CreateUser)
			userRoutes.GET("", userHandler.GetUsers)
			userRoutes.GET("/:id", userHandler.GetUserByID)
			userRoutes.PUT("/:id", userHandler.UpdateUser)
			userRoutes.DELETE("/:id", userHandler.DeleteUser)
		}

		patientRoutes := private.Group("/patients")
		{
			patientRoutes.POST("", frontDesk, userHandler.RegisterPatient)
			patientRoutes.GET("/search", staff, userHandler.SearchPatients)
			// Patients may read their own records; ownership is checked in the services.
			patientRoutes.GET("/:id/cases", patientHandler.ListCases)
			patientRoutes.GET("/:id/history", patientHandler.GetHistory)
			patientRoutes.PUT("/:id/history", staff, patientHandler.SaveHistory)
			patientRoutes.GET("/:id/prescriptions", patientHandler.ListPrescriptions)
		}

		private.GET("/specialties", directoryHandler.ListSpecialties)
		private.POST("/specialties", middleware.RoleAuthMiddleware(models.RoleAdmin), directoryHandler.CreateSpecialty)

		doctorRoutes := private.Group("/doctors")
		{
			doctorRoutes.GET("", directoryHandler.ListDoctors)
			doctorRoutes.GET("/:id", directoryHandler.GetDoctor)
			doctorRoutes.GET("/:id/slots", directoryHandler.GetSlots)
			doctorRoutes.PUT("/:id/profile", middleware.RoleAuthMiddleware(models.RoleAdmin, models.RoleDoctor), directoryHandler.SaveDoctorProfile)
		}

		appointmentRoutes := private.Group("/appointments")
		{
			appointmentRoutes.POST("", frontDesk, appointmentHandler.CreateAppointment)
			appointmentRoutes.GET("", appointmentHandler.GetAppointmentsForUser)
			appointmentRoutes.GET("/:id", appointmentHandler.GetAppointmentByID)
			appointmentRoutes.PATCH("/:id/status", appointmentHandler.UpdateAppointmentStatus)
		}

		caseRoutes := private.Group("/cases")
		{
			caseRoutes.POST("", middleware.RoleAuthMiddleware(models.RoleAdmin, models.RoleReceptionist, models.RoleDoctor), caseHandler.CreateCase)
			caseRoutes.GET("/:id", caseHandler.GetCase)
			caseRoutes.GET("/:id/detail", staff, caseHandler.GetCaseDetail)
			caseRoutes.PATCH("/:id/status", middleware.RoleAuthMiddleware(models.RoleAdmin, models.RoleDoctor), caseHandler.UpdateCaseStatus)
			caseRoutes.PUT("/:id/anamnesis", doctors, caseHandler.SaveAnamnesis)

			caseRoutes.POST("/:id/triage", clinicians, clinicalHandler.RecordTriage)
			caseRoutes.GET("/:id/triage", clinicalHandler.GetTriage)
			caseRoutes.GET("/:id/triage/history", clinicalHandler.GetTriageHistory)

			caseRoutes.POST("/:id/labs", clinicians, clinicalHandler.CreateLab)
			caseRoutes.GET("/:id/labs", clinicalHandler.ListLabs)

			caseRoutes.POST("/:id/assessments", doctors, clinicalHandler.SubmitAssessment)
			caseRoutes.GET("/:id/assessments", clinicalHandler.ListAssessments)
			caseRoutes.GET("/:id/assessments/latest", clinicalHandler.GetLatestAssessment)

			caseRoutes.POST("/:id/prescriptions", doctors, clinicalHandler.CreatePrescription)
			caseRoutes.GET("/:id/prescriptions", clinicalHandler.ListPrescriptions)
		}

		private.GET("/assessments/instruments", clinicalHandler.GetInstruments)

		notificationRoutes := private.Group("/notifications")
		{
			notificationRoutes.GET("", notificationHandler.ListNotifications)
			notificationRoutes.PATCH("/:id/read", notificationHandler.MarkRead)
		}
	}

	if m != nil {
		router.GET("/metrics", gin.WrapH(m.Handler()))
	}

	// Simple health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "UP"})
	})
}
