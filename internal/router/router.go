package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/examly/examly-backend/internal/config"
	"github.com/examly/examly-backend/internal/handler"
	"github.com/examly/examly-backend/internal/middleware"
	"github.com/examly/examly-backend/internal/response"
	"github.com/examly/examly-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth          *handler.AuthHandler
	Class         *handler.ClassHandler
	Question      *handler.QuestionHandler
	Exam          *handler.ExamHandler
	Grading       *handler.GradingHandler
	StudentPortal *handler.StudentPortalHandler
	WS            *handler.WSHandler
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
		auth.GET("/google/login", handlers.Auth.GoogleLogin)
		auth.GET("/google/callback", handlers.Auth.GoogleCallback)
		auth.POST("/login", handlers.Auth.PasswordLogin)

		// Authenticated profile route, valid for both roles.
		auth.GET("/me", middleware.RequireJWT(authService), handlers.Auth.Me)
	}

	// ─── 2. Teacher Group (JWT, teacher role) ──────────────────────────
	teacherAPI := router.Group("/api/v1/teacher")
	teacherAPI.Use(middleware.RequireTeacherJWT(authService))
	{
		// Class groups
		teacherAPI.POST("/classes", handlers.Class.Create)
		teacherAPI.GET("/classes", handlers.Class.List)
		teacherAPI.DELETE("/classes/:id", handlers.Class.Delete)
		teacherAPI.POST("/classes/:id/students", handlers.Class.AddStudent)
		teacherAPI.DELETE("/classes/:id/students/:email", handlers.Class.RemoveStudent)

		// Question bank
		teacherAPI.POST("/questions", handlers.Question.Create)
		teacherAPI.GET("/questions", handlers.Question.List)
		teacherAPI.GET("/questions/facets", handlers.Question.Facets)
		teacherAPI.POST("/questions/import", handlers.Question.Import)
		teacherAPI.DELETE("/questions/:id", handlers.Question.Delete)

		// Exams
		teacherAPI.POST("/exams", handlers.Exam.Create)
		teacherAPI.GET("/exams", handlers.Exam.List)
		teacherAPI.GET("/exams/:id", handlers.Exam.Get)
		teacherAPI.PUT("/exams/:id/assignment", handlers.Exam.Assign)
		teacherAPI.DELETE("/exams/:id", handlers.Exam.Delete)

		// Grading
		teacherAPI.GET("/reports", handlers.Grading.ListReports)
		teacherAPI.GET("/attempts/:id", handlers.Grading.GetAttempt)
		teacherAPI.PUT("/attempts/:id/review", handlers.Grading.Review)
	}

	// ─── 3. Student Group (JWT, student role) ──────────────────────────
	studentAPI := router.Group("/api/v1/student")
	studentAPI.Use(middleware.RequireStudentJWT(authService))
	{
		studentAPI.GET("/exams", handlers.StudentPortal.ListExams)
		studentAPI.POST("/exams/:exam_id/start", handlers.StudentPortal.StartAttempt)
		studentAPI.GET("/attempts/:exam_id", handlers.StudentPortal.GetAttempt)
		studentAPI.POST("/attempts/:exam_id/responses", handlers.StudentPortal.SubmitResponse)
		studentAPI.POST("/attempts/:exam_id/warnings", handlers.StudentPortal.RecordWarning)
		studentAPI.POST("/attempts/:exam_id/finish", handlers.StudentPortal.FinishAttempt)
		studentAPI.GET("/reports", handlers.StudentPortal.ListReports)
	}

	// ─── 4. WebSocket Group (Student WS Auth) ──────────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireStudentWSAuth(authService))
	{
		ws.GET("/student/exams/:exam_id/stream", handlers.WS.AttemptStream)
	}

	return router
}
