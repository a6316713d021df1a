package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Matsupon/tailoring-system-sub001/internal/config"
	"github.com/Matsupon/tailoring-system-sub001/internal/database"
	"github.com/Matsupon/tailoring-system-sub001/internal/domain/notification"
	"github.com/Matsupon/tailoring-system-sub001/internal/middleware"
	"github.com/Matsupon/tailoring-system-sub001/internal/modules/appointment"
	"github.com/Matsupon/tailoring-system-sub001/internal/modules/auth"
	"github.com/Matsupon/tailoring-system-sub001/internal/modules/feedback"
	"github.com/Matsupon/tailoring-system-sub001/internal/modules/order"
	"github.com/Matsupon/tailoring-system-sub001/internal/modules/servicetype"
	jwtsvc "github.com/Matsupon/tailoring-system-sub001/internal/pkg/jwt"
	"github.com/Matsupon/tailoring-system-sub001/internal/repository"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}

	if err := migrate(db); err != nil {
		log.Fatal(err)
	}

	userRepo := repository.NewUserRepository(db)
	serviceTypeRepo := repository.NewServiceTypeRepository(db)
	appointmentRepo := repository.NewAppointmentRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	feedbackRepo := repository.NewFeedbackRepository(db)
	notificationRepo := notification.NewNotificationRepository(db)

	j := jwtsvc.New(cfg.JWTSecret, cfg.JWTTTL)

	notificationService := notification.NewService(notificationRepo, userRepo)
	notificationHandler := notification.NewHandler(notificationService)

	authService := auth.NewService(userRepo, j)
	authHandler := auth.NewHandler(authService)

	appointmentService := appointment.NewService(appointmentRepo, orderRepo, serviceTypeRepo, notificationService)
	appointmentHandler := appointment.NewHandler(appointmentService)

	orderService := order.NewService(orderRepo, appointmentRepo, notificationService)
	orderHandler := order.NewHandler(orderService)

	feedbackService := feedback.NewService(feedbackRepo, orderRepo, appointmentRepo, notificationService)
	feedbackHandler := feedback.NewHandler(feedbackService)

	r := gin.New()
	r.Use(gin.Logger(), middleware.ErrorLogger(), middleware.CORS())

	v1 := r.Group("/api/v1")
	{
		authHandler.RegisterRoutes(v1)
		servicetype.NewHandler(serviceTypeRepo).RegisterRoutes(v1)

		customer := v1.Group("/")
		customer.Use(middleware.JWTAuth(j))

		// Admin-gated routes living beside the customer paths (order
		// pipeline, feedback response).
		staff := v1.Group("/")
		staff.Use(middleware.JWTAuth(j), middleware.AdminOnly())

		admin := v1.Group("/admin")
		admin.Use(middleware.JWTAuth(j), middleware.AdminOnly())

		appointmentHandler.RegisterRoutes(v1, customer, admin)
		orderHandler.RegisterRoutes(v1, customer, staff)
		feedbackHandler.RegisterRoutes(customer, staff, admin)
		notificationHandler.RegisterRoutes(customer, admin)
	}

	if err := r.Run(":" + cfg.ServerPort); err != nil {
		log.Fatal(err)
	}
}

func migrate(db *gorm.DB) error {
	steps := []func(*gorm.DB) error{
		repository.AutoMigrateUsers,
		repository.AutoMigrateServiceTypes,
		repository.AutoMigrateAppointments,
		repository.AutoMigrateOrders,
		repository.AutoMigrateFeedbacks,
		notification.AutoMigrateNotifications,
	}
	for _, step := range steps {
		if err := step(db); err != nil {
			return err
		}
	}
	return nil
}
