package routes

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/checkout-survey/controllers"
	"github.com/vnkhanh/checkout-survey/metrics"
	"github.com/vnkhanh/checkout-survey/middleware"
	"github.com/vnkhanh/checkout-survey/services"
)

// Deps gom mọi thứ route table cần; cmd/server dựng một lần khi khởi động.
type Deps struct {
	Auth          *services.AuthService
	Metrics       *metrics.Collector
	PublicLimiter *middleware.IPRateLimiter
	CORSOrigins   []string

	Surveys   *controllers.SurveyHandler
	Proxy     *controllers.ProxyHandler
	Sessions  *controllers.SessionHandler
	Dashboard *controllers.DashboardHandler
	Exports   *controllers.ExportHandler
	Accounts  *controllers.AuthHandler
	Health    *controllers.HealthHandler
}

// NewEngine tạo gin engine với middleware chung rồi gắn routes.
func NewEngine(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger())
	if d.Metrics != nil {
		r.Use(middleware.Metrics(d.Metrics))
	}

	origins := map[string]bool{}
	for _, o := range d.CORSOrigins {
		origins[o] = true
	}
	r.Use(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool {
			return origins["*"] || origins[origin]
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	if err := r.SetTrustedProxies(nil); err != nil {
		panic(err)
	}

	SetupRoutes(r, d)
	return r
}

func SetupRoutes(r *gin.Engine, d Deps) {
	r.GET("/", func(c *gin.Context) {
		c.String(200, "Checkout survey server is running")
	})
	r.GET("/health", d.Health.Check)
	if d.Metrics != nil {
		r.GET("/metrics", gin.WrapH(d.Metrics.Handler()))
	}

	api := r.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", d.Accounts.Register)
			auth.POST("/login", d.Accounts.Login)
		}

		// Embed checkout gọi các route này, không có JWT.
		proxy := api.Group("/proxy")
		if d.PublicLimiter != nil {
			proxy.Use(middleware.RateLimitByIP(d.PublicLimiter, d.Metrics))
		}
		{
			proxy.GET("/surveys", d.Proxy.ListSurveys)
			proxy.POST("/responses", d.Proxy.SubmitResponse)

			proxy.POST("/sessions", d.Sessions.Start)
			proxy.GET("/sessions/:id", d.Sessions.Get)
			proxy.POST("/sessions/:id/choose", d.Sessions.Choose)
			proxy.POST("/sessions/:id/toggle", d.Sessions.Toggle)
			proxy.POST("/sessions/:id/text", d.Sessions.SetText)
			proxy.POST("/sessions/:id/advance", d.Sessions.Advance)
			proxy.POST("/sessions/:id/previous", d.Sessions.Previous)
			proxy.DELETE("/sessions/:id", d.Sessions.Close)
		}

		admin := api.Group("/admin")
		admin.Use(middleware.AuthJWT(d.Auth))
		{
			admin.GET("/me", d.Accounts.Me)

			admin.GET("/surveys", d.Surveys.List)
			admin.POST("/surveys", d.Surveys.Save)
			admin.GET("/surveys/:id", d.Surveys.Get)
			admin.DELETE("/surveys/:id", d.Surveys.Delete)
			admin.GET("/surveys/:id/stats", d.Dashboard.Stats)

			admin.GET("/responses", d.Dashboard.List)
			admin.GET("/responses/:id", d.Dashboard.Get)
			admin.DELETE("/responses/:id", d.Dashboard.Delete)

			admin.POST("/exports", d.Exports.Create)
			admin.GET("/exports/:job_id", d.Exports.Get)
		}
	}
}
