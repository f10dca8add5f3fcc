package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/SAP-F-2025/lms-service/internal/config"
	"github.com/SAP-F-2025/lms-service/internal/services"
	"github.com/SAP-F-2025/lms-service/internal/utils"
)

type HandlerManager struct {
	userHandler     *UserHandler
	courseHandler   *CourseHandler
	lectureHandler  *LectureHandler
	progressHandler *ProgressHandler
	purchaseHandler *PurchaseHandler
	healthHandler   *HealthHandler
	authMiddleware  *AuthMiddleware
}

func NewHandlerManager(serviceManager services.ServiceManager, logger utils.Logger, authConfig config.AuthConfig) *HandlerManager {
	cookie := CookieConfig{Name: authConfig.CookieName, Secure: authConfig.CookieSecure}

	return &HandlerManager{
		userHandler:     NewUserHandler(serviceManager.Auth(), serviceManager.User(), cookie, logger),
		courseHandler:   NewCourseHandler(serviceManager.Course(), serviceManager.Report(), logger),
		lectureHandler:  NewLectureHandler(serviceManager.Lecture(), logger),
		progressHandler: NewProgressHandler(serviceManager.Progress(), logger),
		purchaseHandler: NewPurchaseHandler(serviceManager.Purchase(), logger),
		healthHandler:   NewHealthHandler(serviceManager, logger),
		authMiddleware:  NewAuthMiddleware(serviceManager.Auth(), cookie.Name, logger),
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	requireAuth := hm.authMiddleware.RequireAuth()

	v1 := router.Group("/api/v1")
	{
		// User routes; register, login and logout are public
		user := v1.Group("/user")
		{
			user.POST("/register", hm.userHandler.Register)
			user.POST("/login", hm.userHandler.Login)
			user.GET("/logout", hm.userHandler.Logout)

			user.GET("/profile", requireAuth, hm.userHandler.GetProfile)
			user.GET("/learning", requireAuth, hm.userHandler.GetProfile)
			user.PUT("/profile/update", requireAuth, hm.userHandler.UpdateProfile)
		}

		course := v1.Group("/course")
		{
			course.GET("/published-courses", hm.courseHandler.GetPublishedCourses)

			authed := course.Group("", requireAuth)
			authed.POST("", hm.courseHandler.CreateCourse)
			authed.GET("", hm.courseHandler.GetInstructorCourses)
			authed.GET("/:id", hm.courseHandler.GetCourseByID)
			authed.PUT("/:id", hm.courseHandler.EditCourse)
			authed.PATCH("/:id", hm.courseHandler.TogglePublish)
			authed.GET("/:id/progress-report", hm.courseHandler.ExportProgressReport)

			// Lectures
			authed.POST("/:id/lectures", hm.lectureHandler.CreateLecture)
			authed.GET("/:id/lectures", hm.lectureHandler.GetCourseLectures)
			authed.POST("/:id/lectures/:lectureId", hm.lectureHandler.EditLecture)
			authed.DELETE("/:id/lectures/:lectureId", hm.lectureHandler.RemoveLecture)
			authed.GET("/:id/lectures/:lectureId", hm.lectureHandler.GetLectureByID)
		}

		media := v1.Group("/media", requireAuth)
		{
			media.POST("/upload-video", hm.lectureHandler.UploadVideo)
		}

		progress := v1.Group("/course-progress", requireAuth)
		{
			progress.GET("/:id", hm.progressHandler.GetProgress)
			progress.POST("/:id/lecture/:lectureId/view", hm.progressHandler.RecordLectureViewed)
			progress.POST("/:id/complete", hm.progressHandler.MarkCompleted)
			progress.POST("/:id/incomplete", hm.progressHandler.MarkIncomplete)
		}

		purchase := v1.Group("/purchase")
		{
			// Authenticated by signature, not session
			purchase.POST("/webhook", hm.purchaseHandler.Webhook)

			purchase.POST("/checkout/create-checkout-session", requireAuth, hm.purchaseHandler.CreateCheckoutSession)
			purchase.GET("/course/:id/detail-with-status", requireAuth, hm.purchaseHandler.GetCourseDetailWithPurchaseStatus)
			purchase.GET("", requireAuth, hm.purchaseHandler.ListPurchasedCourses)
		}
	}

	router.GET("/health", hm.healthHandler.Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
}
