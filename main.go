package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/LovationAdmin/finance-tracker-api/config"
	"github.com/LovationAdmin/finance-tracker-api/handlers"
	"github.com/LovationAdmin/finance-tracker-api/middleware"
	"github.com/LovationAdmin/finance-tracker-api/repository"
	"github.com/LovationAdmin/finance-tracker-api/routes"
	"github.com/LovationAdmin/finance-tracker-api/services"
	"github.com/LovationAdmin/finance-tracker-api/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

const version = "1.0.0"

type stores struct {
	transactions services.TransactionStore
	budgets      services.BudgetStore
	categories   services.CategoryStore
	users        services.UserStore
	chats        services.ChatStore
	close        func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Invalid configuration:\n", err)
	}

	st, err := openStores(cfg)
	if err != nil {
		log.Fatal("Failed to initialize storage: ", err)
	}
	defer st.close()

	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		log.Fatal("Failed to create upload directory: ", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var ai services.TextGenerator = services.DisabledGenerator{}
	var narrator services.Narrator = services.StaticNarrator{}
	if cfg.GeminiAPIKey != "" {
		gemini, err := services.NewGeminiGenerator(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			log.Fatal("Failed to initialize Gemini client: ", err)
		}
		ai = gemini
		narrator = services.NewGeminiNarrator(gemini)
		log.Printf("✅ AI assistant enabled (%s)", cfg.GeminiModel)
	} else {
		log.Println("⚠️ GEMINI_API_KEY not set, AI features will use fallbacks")
	}

	var renderer services.DocumentRenderer
	if pdf, err := services.NewGoPDFRenderer(cfg.ReportFontPath); err != nil {
		log.Printf("⚠️ PDF export disabled: %v", err)
	} else {
		renderer = pdf
	}

	suggester, err := services.NewSuggestionService(ai, cfg.SuggestionCacheTTL, cfg.AITimeout)
	if err != nil {
		log.Fatal("Failed to initialize suggestion service: ", err)
	}
	defer suggester.Close()

	policy := services.IncomeTransactionsFirst
	if cfg.IncomePolicy == config.IncomeProfileFirst {
		policy = services.IncomeProfileFirst
	}

	wsHandler := handlers.NewWSHandler()
	defer wsHandler.Close()

	loc := cfg.ReportLocation
	agg := services.NewAggregationService(st.transactions, st.budgets, st.categories, st.users, policy)

	h := routes.Handlers{
		Auth: &handlers.AuthHandler{Users: services.NewUserService(st.users, cfg.JWTSecret, cfg.JWTTTL, cfg.DataEncryptionKey)},
		Transactions: &handlers.TransactionHandler{
			Transactions: services.NewTransactionService(st.transactions, st.budgets, suggester, wsHandler, loc),
			UploadDir:    cfg.UploadDir,
			Location:     loc,
		},
		Budgets: &handlers.BudgetHandler{
			Budgets:  services.NewBudgetService(st.budgets, agg, wsHandler, loc),
			Location: loc,
		},
		Categories: &handlers.CategoryHandler{
			Categories: services.NewCategoryService(st.categories, st.transactions, st.budgets, agg, wsHandler, loc),
			Location:   loc,
		},
		Reports: &handlers.ReportHandler{
			Reports:  services.NewReportService(agg, st.users, narrator, renderer, cfg.AITimeout, cfg.RenderTimeout),
			Location: loc,
		},
		AI: &handlers.AIHandler{
			Suggester: suggester,
			Assistant: services.NewAssistantService(ai, st.transactions, st.chats, cfg.AITimeout),
		},
		WS: wsHandler,
	}
	h.User = &handlers.UserHandler{Users: h.Auth.Users}

	if utils.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())

	log.Printf("🌍 CORS: Allowing origins:")
	for _, origin := range cfg.AllowedOrigins {
		log.Printf("   - %s", origin)
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	router.Use(func(c *gin.Context) {
		start := time.Now()
		c.Next()
		utils.LogAPIRequest(c.Request.Method, c.Request.URL.Path, middleware.GetUserID(c), c.Writer.Status(), time.Since(start).String())
	})

	limiter := middleware.NewRateLimiter(cfg.RateLimitPerMinute, time.Minute)
	defer limiter.Stop()
	router.Use(limiter.Handler())

	router.Static("/uploads", cfg.UploadDir)

	routes.Register(router.Group("/api/v1"), h, cfg.JWTSecret)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": version,
			"backend": cfg.DataBackend,
			"time":    time.Now().Format(time.RFC3339),
		})
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	utils.LogStartup("finance-tracker-api", version, cfg.Port, cfg.DataBackend)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server: ", err)
		}
	}()

	<-ctx.Done()
	log.Println("🛑 Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("❌ Graceful shutdown failed: %v", err)
	}
}

func openStores(cfg *config.Config) (*stores, error) {
	if cfg.DataBackend == config.BackendMemory {
		log.Println("⚠️ Using in-memory storage, data is lost on restart")
		return &stores{
			transactions: repository.NewMemoryTransactionRepository(),
			budgets:      repository.NewMemoryBudgetRepository(),
			categories:   repository.NewMemoryCategoryRepository(),
			users:        repository.NewMemoryUserRepository(),
			chats:        repository.NewMemoryChatRepository(),
			close:        func() {},
		}, nil
	}

	db, err := config.InitDB(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	log.Println("✅ Database connected successfully")

	if err := config.RunMigrations(cfg.DatabaseURL); err != nil {
		db.Close()
		return nil, err
	}

	return &stores{
		transactions: repository.NewTransactionRepository(db),
		budgets:      repository.NewBudgetRepository(db),
		categories:   repository.NewCategoryRepository(db),
		users:        repository.NewUserRepository(db),
		chats:        repository.NewChatRepository(db),
		close:        func() { db.Close() },
	}, nil
}
