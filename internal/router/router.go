package router

import (
	"net/http"
	"time"

	"github.com/edventure/edventure-backend/internal/config"
	"github.com/edventure/edventure-backend/internal/handler"
	"github.com/edventure/edventure-backend/internal/middleware"
	"github.com/edventure/edventure-backend/internal/response"
	"github.com/edventure/edventure-backend/internal/service"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth   *handler.AuthHandler
	Exam   *handler.ExamHandler
	Parent *handler.ParentHandler
	WS     *handler.WSHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Apply brotli middleware globally.
	router.Use(middleware.Brotli())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// Rate limiter for auth routes (30 requests per minute per IP).
	authLimiter := middleware.NewRateLimiter(30, time.Minute)

	// ─── 1. Auth Group (Public, Rate Limited) ──────────────────────────
	auth := router.Group("/api/v1/auth")
	auth.Use(authLimiter.Middleware())
	{
		auth.POST("/student/login", handlers.Auth.StudentLogin)
		auth.POST("/parent/register", handlers.Auth.ParentRegister)
		auth.POST("/parent/login", handlers.Auth.ParentLogin)

		// Authenticated profile routes
		auth.POST("/student/logout", middleware.RequireStudentJWT(authService), handlers.Auth.StudentLogout)
		auth.GET("/student/me", middleware.RequireStudentJWT(authService), handlers.Auth.GetStudentProfile)
		auth.GET("/parent/me", middleware.RequireParentJWT(authService), handlers.Auth.GetParentProfile)
	}

	// ─── 2. Student Group (JWT + Single Device) ────────────────────────
	studentAPI := router.Group("/api/v1/student")
	studentAPI.Use(
		middleware.RequireStudentJWT(authService),
		middleware.CheckSingleDeviceSession(authService),
	)
	{
		studentAPI.GET("/exam/session", handlers.Exam.GetSession)
		studentAPI.POST("/exam/start", handlers.Exam.StartExam)
		studentAPI.POST("/exam/answer", handlers.Exam.Answer)
		studentAPI.POST("/exam/match", handlers.Exam.Match)
		studentAPI.POST("/exam/navigate", handlers.Exam.Navigate)
		studentAPI.POST("/exam/submit", handlers.Exam.Submit)
		studentAPI.POST("/exam/try-again", handlers.Exam.TryAgain)
		studentAPI.POST("/exam/close", handlers.Exam.Close)
		studentAPI.GET("/exam/progress", handlers.Exam.GetProgress)
		studentAPI.GET("/exam/subjects", handlers.Exam.GetSubjects)
		studentAPI.GET("/exam/history", handlers.Exam.GetHistory)
	}

	// ─── 3. WebSocket Group (Student WS Auth) ──────────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireStudentWSAuth(authService))
	{
		ws.GET("/student/exam/stream", handlers.WS.ExamSessionStream)
	}

	// ─── 4. Parent Group (Parent JWT) ──────────────────────────────────
	parentAPI := router.Group("/api/v1/parent")
	parentAPI.Use(middleware.RequireParentJWT(authService))
	{
		parentAPI.GET("/students", handlers.Parent.ListStudents)
		parentAPI.POST("/students", handlers.Parent.CreateStudent)
		parentAPI.GET("/students/:student_id/history", handlers.Parent.GetStudentHistory)
	}

	return router
}
