package routes

import (
	"attendify_go/controllers"
	"attendify_go/middleware"
	"attendify_go/services"

	"github.com/gofiber/fiber/v2"
)

// SetupRoutes configures all application routes
func SetupRoutes(app *fiber.App, healthService *services.HealthService) {
	// Initialize controllers
	facultyController := &controllers.FacultyController{}
	studentController := &controllers.StudentController{}
	attendanceController := &controllers.AttendanceController{}
	mappingController := &controllers.MappingController{}
	subjectController := &controllers.SubjectController{}
	archiveController := &controllers.ArchiveController{}
	logController := &controllers.LogController{}
	healthController := controllers.NewHealthController(healthService)

	// API group
	api := app.Group("/api")

	// Health endpoint (no auth)
	api.Get("/health", healthController.GetHealthStatus)

	// Authentication routes (no middleware)
	auth := api.Group("/auth")
	auth.Post("/login", facultyController.Login)
	auth.Get("/profile", middleware.JWTMiddleware(), facultyController.GetProfile)

	// Report and catalog reads are public so departments can publish
	// attendance dashboards without issuing tokens
	api.Get("/subjects/:department", subjectController.GetSubjects)
	api.Get("/departments", subjectController.GetDepartments)
	api.Get("/attendance/report", attendanceController.GetAttendanceReport)
	api.Get("/attendance/summary", attendanceController.GetClassSummary)
	api.Get("/attendance/export", attendanceController.ExportAttendanceReport)

	// Protected routes (require authentication)
	protected := api.Group("/", middleware.JWTMiddleware())

	protected.Get("/profile", facultyController.GetProfile)
	protected.Put("/profile/password", facultyController.ChangePassword)
	protected.Post("/auth/logout", facultyController.Logout)

	// Attendance marking (any authenticated faculty)
	attendance := protected.Group("/attendance")
	attendance.Post("/mark", attendanceController.MarkAttendance)
	attendance.Get("/my-reports", attendanceController.GetFacultyReports)

	// Student roster routes
	students := protected.Group("/students")
	students.Get("/", studentController.GetStudents)
	students.Get("/metadata", studentController.GetStudentMetadata)
	students.Post("/upload", middleware.RequireAdmin(), studentController.UploadStudents)

	// Faculty management routes (Admin only for mutations)
	faculties := protected.Group("/faculties")
	faculties.Get("/", facultyController.GetFaculties)
	faculties.Post("/", middleware.RequireAdmin(), facultyController.Register)
	faculties.Delete("/:id", middleware.RequireAdmin(), facultyController.DeleteFaculty)

	// Section mapping routes
	mappings := protected.Group("/mappings")
	mappings.Get("/", mappingController.GetMappings)
	mappings.Post("/", middleware.RequireAdmin(), mappingController.CreateMapping)
	mappings.Delete("/:id", middleware.RequireAdmin(), mappingController.DeleteMapping)

	// Archived export routes (Admin only)
	archives := protected.Group("/archives", middleware.RequireAdmin())
	archives.Get("/", archiveController.GetArchives)
	archives.Get("/:id/download", archiveController.DownloadArchive)

	// Log management routes (Admin only)
	logs := protected.Group("/logs", middleware.RequireAdmin())
	logs.Get("/", logController.GetLogs)
	logs.Get("/:id", logController.GetLog)
	logs.Delete("/old", logController.DeleteOldLogs)
	logs.Post("/flush-cache", logController.FlushCachedLogs)
}
