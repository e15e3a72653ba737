package routes

import (
	"github.com/LovationAdmin/finance-tracker-api/handlers"
	"github.com/LovationAdmin/finance-tracker-api/middleware"

	"github.com/gin-gonic/gin"
)

// Handlers groups every HTTP handler the API exposes.
type Handlers struct {
	Auth         *handlers.AuthHandler
	User         *handlers.UserHandler
	Transactions *handlers.TransactionHandler
	Budgets      *handlers.BudgetHandler
	Categories   *handlers.CategoryHandler
	Reports      *handlers.ReportHandler
	AI           *handlers.AIHandler
	WS           *handlers.WSHandler
}

// Register mounts public and authenticated routes on rg.
func Register(rg *gin.RouterGroup, h Handlers, jwtSecret string) {
	SetupAuthRoutes(rg, h.Auth)

	protected := rg.Group("/")
	protected.Use(middleware.AuthMiddleware(jwtSecret))
	{
		SetupUserRoutes(protected, h.User)
		SetupTransactionRoutes(protected, h.Transactions)
		SetupBudgetRoutes(protected, h.Budgets)
		SetupCategoryRoutes(protected, h.Categories)
		SetupReportRoutes(protected, h.Reports)
		SetupAIRoutes(protected, h.AI)
		protected.GET("/ws", h.WS.HandleWS)
	}
}

// SetupAuthRoutes sets up public authentication routes.
func SetupAuthRoutes(rg *gin.RouterGroup, h *handlers.AuthHandler) {
	rg.POST("/auth/signup", h.Signup)
	rg.POST("/auth/login", h.Login)
}

// SetupUserRoutes sets up protected user routes.
func SetupUserRoutes(rg *gin.RouterGroup, h *handlers.UserHandler) {
	rg.GET("/user/profile", h.GetProfile)
	rg.PUT("/user/profile", h.UpdateProfile)
	rg.PUT("/user/financial-profile", h.UpdateFinancialProfile)
	rg.POST("/user/password", h.ChangePassword)
	rg.POST("/user/2fa/setup", h.SetupTOTP)
	rg.POST("/user/2fa/verify", h.VerifyTOTP)
	rg.POST("/user/2fa/disable", h.DisableTOTP)
	rg.DELETE("/user/account", h.DeleteAccount)
}

func SetupTransactionRoutes(rg *gin.RouterGroup, h *handlers.TransactionHandler) {
	rg.GET("/transactions", h.GetTransactions)
	rg.POST("/transactions", h.CreateTransaction)
	rg.PUT("/transactions/:id", h.UpdateTransaction)
	rg.DELETE("/transactions/:id", h.DeleteTransaction)
}

func SetupBudgetRoutes(rg *gin.RouterGroup, h *handlers.BudgetHandler) {
	rg.GET("/budgets", h.GetBudgets)
	rg.POST("/budgets", h.CreateBudget)
	rg.PUT("/budgets/:id", h.UpdateBudget)
	rg.DELETE("/budgets/:id", h.DeleteBudget)
}

func SetupCategoryRoutes(rg *gin.RouterGroup, h *handlers.CategoryHandler) {
	rg.GET("/categories", h.GetCategories)
	rg.POST("/categories", h.CreateCategory)
	rg.PUT("/categories/rename", h.RenameCategory)
	rg.DELETE("/categories/:id", h.DeleteCategory)
}

// SetupReportRoutes sets up the chart payload and the downloadable exports.
func SetupReportRoutes(rg *gin.RouterGroup, h *handlers.ReportHandler) {
	rg.GET("/reports/monthly-summary", h.GetMonthlySummary)
	rg.GET("/reports/monthly-summary/pdf", h.DownloadPDF)
	rg.GET("/reports/monthly-summary/csv", h.DownloadCSV)
	rg.GET("/reports/monthly-summary/xlsx", h.DownloadXLSX)
}

func SetupAIRoutes(rg *gin.RouterGroup, h *handlers.AIHandler) {
	rg.POST("/ai/suggest-details", h.SuggestDetails)
	rg.POST("/ai/chat", h.Chat)
	rg.GET("/ai/history", h.History)
}
