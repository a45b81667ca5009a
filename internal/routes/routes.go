package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"hospital-app-server/internal/config"
	"hospital-app-server/internal/handlers"
	"hospital-app-server/internal/middleware"
	"hospital-app-server/internal/models"
	"hospital-app-server/internal/services"
)

// SetupRoutes configures all API routes.
func SetupRoutes(router *gin.Engine, db *gorm.DB, cfg *config.Config, notifier services.Notifier) {
	appointmentSvc := services.NewAppointmentService(db, notifier)
	bedSvc := services.NewBedService(db, notifier)
	billingSvc := services.NewBillingService(db, notifier)
	prescriptionSvc := services.NewPrescriptionService(db, notifier, appointmentSvc)

	authHandler := handlers.NewAuthHandler(db, cfg.JWT.TokenConfig(), cfg.Environment == "production")
	userHandler := handlers.NewUserHandler(db)
	doctorHandler := handlers.NewDoctorHandler(db)
	patientHandler := handlers.NewPatientHandler(db)
	appointmentHandler := handlers.NewAppointmentHandler(appointmentSvc)
	bedHandler := handlers.NewBedHandler(db, bedSvc)
	billingHandler := handlers.NewBillingHandler(billingSvc)
	prescriptionHandler := handlers.NewPrescriptionHandler(prescriptionSvc)
	notificationHandler := handlers.NewNotificationHandler(db)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api/v1")

	// Public routes
	auth := api.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.RefreshToken)
	}

	// Protected routes
	private := api.Group("")
	private.Use(middleware.AuthMiddleware(cfg.JWT.AccessSecret))
	{
		private.POST("/auth/logout", authHandler.Logout)
		private.GET("/auth/profile", authHandler.GetProfile)
		private.PATCH("/auth/profile", authHandler.UpdateProfile)

		admin := middleware.RoleAuthMiddleware(models.RoleAdmin)
		staff := middleware.RoleAuthMiddleware(models.RoleAdmin, models.RoleStaff)
		clinical := middleware.RoleAuthMiddleware(models.RoleAdmin, models.RoleStaff, models.RoleDoctor)
		doctor := middleware.RoleAuthMiddleware(models.RoleDoctor)

		users := private.Group("/users", admin)
		{
			users.GET("", userHandler.GetUsers)
			users.POST("", userHandler.CreateUser)
			users.GET("/:id", userHandler.GetUser)
		}

		private.GET("/departments", doctorHandler.GetDepartments)
		private.POST("/departments", admin, doctorHandler.CreateDepartment)

		private.GET("/doctors", doctorHandler.GetDoctors)
		private.GET("/doctors/:id", doctorHandler.GetDoctor)
		private.PATCH("/doctors/:id", admin, doctorHandler.UpdateDoctor)

		private.GET("/patients", clinical, patientHandler.GetPatients)
		private.GET("/patients/:id", clinical, patientHandler.GetPatient)
		private.PATCH("/patients/me", middleware.RoleAuthMiddleware(models.RolePatient), patientHandler.UpdateMyProfile)

		appointments := private.Group("/appointments")
		{
			appointments.POST("", appointmentHandler.Book)
			appointments.GET("", appointmentHandler.List)
			appointments.GET("/:id", appointmentHandler.Get)
			appointments.POST("/:id/approve", admin, appointmentHandler.Approve)
			appointments.POST("/:id/reject", admin, appointmentHandler.Reject)
			appointments.POST("/:id/cancel", appointmentHandler.Cancel)
		}

		private.POST("/wards", staff, bedHandler.CreateWard)
		private.GET("/wards", bedHandler.GetWards)

		beds := private.Group("/beds")
		{
			beds.POST("", staff, bedHandler.CreateBed)
			beds.GET("", bedHandler.GetBeds)
			beds.PATCH("/:id/status", staff, bedHandler.UpdateBedStatus)
		}

		allocations := private.Group("/allocations", staff)
		{
			allocations.POST("", bedHandler.Allocate)
			allocations.GET("", bedHandler.GetAllocations)
			allocations.POST("/:id/discharge", bedHandler.Discharge)
		}

		bedRequests := private.Group("/bed-requests", staff)
		{
			bedRequests.GET("", bedHandler.GetBedRequests)
			bedRequests.POST("/:id/resolve", bedHandler.ResolveBedRequest)
		}

		billing := private.Group("/billing")
		{
			billing.GET("/compute/:appointmentId", staff, billingHandler.ComputeFees)
			billing.POST("", staff, billingHandler.CreateInvoice)
			billing.GET("", billingHandler.List)
			billing.GET("/:id", billingHandler.Get)
			billing.POST("/:id/pay", staff, billingHandler.RecordPayment)
			billing.POST("/:id/cancel", staff, billingHandler.CancelInvoice)
		}

		prescriptions := private.Group("/prescriptions")
		{
			prescriptions.POST("", doctor, prescriptionHandler.Create)
			prescriptions.GET("", prescriptionHandler.List)
			prescriptions.GET("/:id", prescriptionHandler.Get)
		}

		notifications := private.Group("/notifications")
		{
			notifications.GET("", notificationHandler.List)
			notifications.POST("/:id/read", notificationHandler.MarkRead)
			notifications.POST("/read-all", notificationHandler.MarkAllRead)
		}
	}
}
