package server

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/numera/numera-api/internal/auth"
	"github.com/numera/numera-api/internal/client/filing"
	"github.com/numera/numera-api/internal/handlers"
	"github.com/numera/numera-api/internal/jurisdiction"
	"github.com/numera/numera-api/internal/logger"
	"github.com/numera/numera-api/internal/services"
	"github.com/numera/numera-api/internal/store"
	"go.uber.org/zap"
)

// Handler Definitions
var (
	taxHandler         *handlers.TaxHandler
	invoiceHandler     *handlers.InvoiceHandler
	transactionHandler *handlers.TransactionHandler
	reportHandler      *handlers.ReportHandler

	jwtSecret []byte
)

// InitializeHandlers wires stores, services and handlers from the
// environment. With DATABASE_URL set the Postgres store backs everything;
// without it the in-memory store does, which is enough for local development.
func InitializeHandlers() {
	var (
		invoiceStore     store.InvoiceStore
		transactionStore store.TransactionStore
		reportStore      store.ReportStore
	)

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL != "" {
		poolConfig, err := pgxpool.ParseConfig(dbURL)
		if err != nil {
			logger.Fatal("Unable to parse database connection string", zap.Error(err))
		}

		poolConfig.MaxConns = 20
		poolConfig.MinConns = 5
		poolConfig.MaxConnLifetime = time.Hour
		poolConfig.MaxConnIdleTime = time.Minute * 30

		connPool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
		if err != nil {
			logger.Fatal("Unable to create connection pool", zap.Error(err))
		}

		pg := store.NewPostgresStore(connPool, logger.Log)
		invoiceStore, transactionStore, reportStore = pg, pg, pg
	} else {
		logger.Warn("DATABASE_URL not set, using in-memory store")
		mem := store.NewMemoryStore()
		invoiceStore, transactionStore, reportStore = mem, mem, mem
	}

	filingURL := os.Getenv("FILING_API_URL")
	if filingURL == "" {
		logger.Fatal("FILING_API_URL environment variable is required")
	}
	filingClient := filing.NewClient(filingURL, os.Getenv("FILING_API_KEY"))

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		logger.Fatal("JWT_SECRET environment variable is required")
	}
	jwtSecret = []byte(secret)

	jurisdictions := jurisdiction.NewStaticSource()
	authorizer := auth.ContextAuthorizer{}

	taxService := services.NewTaxService(jurisdictions)
	invoiceService := services.NewInvoiceService(invoiceStore, taxService, authorizer)
	transactionService := services.NewTransactionService(transactionStore, taxService)
	periodService := services.NewPeriodService(jurisdictions)
	reportService := services.NewReportService(reportStore, invoiceStore, transactionStore, filingClient, authorizer)

	commonServices := handlers.NewCommonServices(
		taxService,
		invoiceService,
		transactionService,
		periodService,
		reportService,
	)

	taxHandler = handlers.NewTaxHandler(commonServices)
	invoiceHandler = handlers.NewInvoiceHandler(commonServices)
	transactionHandler = handlers.NewTransactionHandler(commonServices)
	reportHandler = handlers.NewReportHandler(commonServices)
}

// InitializeRoutes registers middleware and the API route tree
func InitializeRoutes(router *gin.Engine) {
	// Configure and apply CORS middleware
	router.Use(configureCORS())

	// Health check
	router.GET("/health", handlers.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Protected routes (authentication required)
		protected := v1.Group("/")
		protected.Use(auth.EnsureValidToken(jwtSecret))
		{
			// VAT rule resolver and shared totals preview
			tax := protected.Group("/tax")
			{
				tax.POST("/treatment", taxHandler.ResolveTreatment)
				tax.POST("/totals-preview", taxHandler.PreviewTotals)
			}

			// Invoices
			invoices := protected.Group("/invoices")
			{
				invoices.POST("", invoiceHandler.CreateInvoice)
				invoices.GET("/:invoice_id", invoiceHandler.GetInvoice)
				invoices.PUT("/:invoice_id", invoiceHandler.UpdateInvoice)
				invoices.POST("/:invoice_id/send", invoiceHandler.SendInvoice)
				invoices.POST("/:invoice_id/pay", invoiceHandler.MarkInvoicePaid)
				invoices.POST("/:invoice_id/cancel", invoiceHandler.CancelInvoice)
			}

			// Standalone transactions
			transactions := protected.Group("/transactions")
			{
				transactions.POST("", transactionHandler.CreateTransaction)
				transactions.GET("", transactionHandler.ListTransactions)
			}

			// Reports
			reports := protected.Group("/reports")
			{
				reports.POST("/periods", reportHandler.BuildPeriods)
				reports.GET("", reportHandler.ListReports)
				reports.POST("", reportHandler.CreateReport)
				reports.GET("/:report_id", reportHandler.GetReport)
				reports.GET("/:report_id/preview", reportHandler.PreviewReport)
				reports.POST("/:report_id/previewed", reportHandler.MarkReportPreviewed)
				reports.POST("/:report_id/test-submit", reportHandler.TestSubmitReport)
				reports.POST("/:report_id/submit", reportHandler.SubmitReport)
				reports.POST("/:report_id/decision", reportHandler.RecordAuthorityDecision)
				reports.POST("/:report_id/reopen", reportHandler.ReopenReport)
			}
		}
	}
}

// configureCORS returns a configured CORS middleware
func configureCORS() gin.HandlerFunc {
	corsConfig := cors.DefaultConfig()

	originsEnv := os.Getenv("CORS_ALLOWED_ORIGINS")
	if originsEnv == "" {
		// Default to localhost if not set
		corsConfig.AllowOrigins = []string{"http://localhost:3000"}
	} else {
		origins := strings.Split(originsEnv, ",")
		for i, origin := range origins {
			origins[i] = strings.TrimSpace(origin)
		}
		corsConfig.AllowOrigins = origins
	}

	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	corsConfig.AllowCredentials = os.Getenv("CORS_ALLOW_CREDENTIALS") == "true"

	return cors.New(corsConfig)
}
