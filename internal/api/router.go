package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/leon37/KindKeeper/internal/api/controller"
	"github.com/leon37/KindKeeper/internal/api/middleware"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/leon37/KindKeeper/docs"
)

// Controllers 所有控制器，由 main 组装
type Controllers struct {
	Auth    *controller.AuthController
	Chat    *controller.ChatController
	Voice   *controller.VoiceController
	Entry   *controller.EntryController
	Ledger  *controller.LedgerController
	Profile *controller.ProfileController
}

// RegisterRoutes 注册所有路由
func RegisterRoutes(r *gin.Engine, jwtSecret string, allowedOrigins []string, ctrls Controllers) {
	r.Use(middleware.Cors(allowedOrigins))

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	public := r.Group("/api/v1/auth")
	{
		public.POST("/register", ctrls.Auth.Register)
		public.POST("/login", ctrls.Auth.Login)
	}

	protected := r.Group("/api/v1")
	protected.Use(middleware.JWTAuth(jwtSecret))
	{
		// 助手对话
		protected.GET("/chat/messages", ctrls.Chat.History)
		protected.POST("/chat/messages", ctrls.Chat.Send)
		protected.DELETE("/chat/messages", ctrls.Chat.Clear)
		protected.POST("/chat/images", ctrls.Chat.SendImage)

		// 语音
		protected.POST("/voice/start", ctrls.Voice.Start)
		protected.POST("/voice/chunk", ctrls.Voice.Chunk)
		protected.POST("/voice/stop", ctrls.Voice.Stop)
		protected.POST("/speech", ctrls.Voice.Speak)

		protected.GET("/entries/stream", ctrls.Entry.Stream)
		protected.GET("/entries/search", ctrls.Entry.Search)
		protected.GET("/voice-entries", ctrls.Entry.VoiceEntries)

		// 账本
		protected.GET("/expenses", ctrls.Ledger.ListExpenses)
		protected.POST("/expenses", ctrls.Ledger.CreateExpense)
		protected.GET("/income", ctrls.Ledger.ListIncome)
		protected.POST("/income", ctrls.Ledger.CreateIncome)
		protected.GET("/reminders", ctrls.Ledger.ListReminders)
		protected.POST("/reminders", ctrls.Ledger.CreateReminder)
		protected.GET("/providers", ctrls.Ledger.ListProviders)
		protected.POST("/providers", ctrls.Ledger.CreateProvider)
		protected.GET("/providers/:id/attendance", ctrls.Ledger.ListAttendance)
		protected.POST("/providers/:id/attendance", ctrls.Ledger.MarkAttendance)
		protected.GET("/summary/monthly", ctrls.Ledger.MonthlySummary)
		protected.GET("/logbook/export", ctrls.Ledger.Export)

		protected.GET("/profile", ctrls.Profile.Get)
		protected.POST("/profile/contacts", ctrls.Profile.AddContact)
		protected.POST("/profile/banks", ctrls.Profile.AddBank)
		protected.PUT("/profile/settings", ctrls.Profile.SaveSettings)
	}
}
