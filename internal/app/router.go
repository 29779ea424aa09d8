package app

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "library-backend/docs"
	"library-backend/internal/library_mgmt/authors"
	"library-backend/internal/library_mgmt/books"
	"library-backend/internal/library_mgmt/genres"
	"library-backend/internal/library_mgmt/inventories"
	"library-backend/internal/library_mgmt/labels"
	"library-backend/internal/library_mgmt/loans"
	"library-backend/internal/library_mgmt/returns"
	"library-backend/internal/library_mgmt/students"
	"library-backend/internal/platform/apierr"
	"library-backend/internal/platform/clock"
	"library-backend/internal/platform/db"
	"library-backend/internal/platform/logging"
	"library-backend/internal/platform/respond"
	"library-backend/internal/platform/validate"
)

// Deps はルータが必要とするもの一式
type Deps struct {
	DB    *db.DB
	Log   *zap.Logger
	Clock clock.Clock
	IDs   clock.IDGen
	Mode  string
}

func NewRouter(d Deps) *gin.Engine {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	if d.IDs == nil {
		d.IDs = clock.NewULID()
	}
	respond.SetMode(d.Mode)
	// 金額は文字列ではなく JSON の数値で返す
	decimal.MarshalJSONWithoutQuotes = true
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		validate.Register(v)
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(logging.RequestID(), logging.Attach(d.Log), logging.Gin(d.Log), logging.Recovery(d.Log))
	_ = r.SetTrustedProxies(nil)

	if d.Mode == "dev" {
		// CORS（開発中のみ必要）
		r.Use(cors.New(cors.Config{
			AllowOrigins:     []string{"http://localhost:3000"},
			AllowHeaders:     []string{"Origin", "Content-Type", logging.RequestIDHeader},
			ExposeHeaders:    []string{"Content-Length", "Location", logging.RequestIDHeader},
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowCredentials: true,
		}))
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// ヘルス
	r.GET("/healthz", func(c *gin.Context) {
		if err := d.DB.PingContext(c.Request.Context()); err != nil {
			c.String(http.StatusServiceUnavailable, "db unavailable")
			return
		}
		c.String(http.StatusOK, "ok")
	})

	ledger := inventories.NewLedger(d.DB, d.Clock, d.Log)

	api := r.Group("/api")
	authors.RegisterRoutes(api, authors.NewService(d.DB, d.Clock))
	books.RegisterRoutes(api, books.NewService(d.DB, d.Clock))
	students.RegisterRoutes(api, students.NewService(d.DB))
	inventories.RegisterRoutes(api, inventories.NewService(d.DB, d.Clock))
	loans.RegisterRoutes(api, loans.NewService(d.DB, ledger, d.Clock, d.IDs))
	returns.RegisterRoutes(api, returns.NewService(d.DB, ledger, d.Clock, d.IDs, d.Log))
	labels.RegisterRoutes(api, labels.NewService(d.DB))
	genres.RegisterRoutes(api, genres.NewService(d.DB))

	r.NoRoute(func(c *gin.Context) {
		respond.Fail(c, apierr.ErrNotFound("resource not found"))
	})
	return r
}
