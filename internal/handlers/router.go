package handlers

import (
	"log"
	"net/http"
	"time"

	"go-pos-backoffice/internal/auth"
	"go-pos-backoffice/internal/config"
	"go-pos-backoffice/internal/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// NewRouter wires every route onto a fresh engine.
func NewRouter(h *Handler, cfg *config.Config) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	if h.Metrics != nil {
		r.Use(middleware.Metrics(h.Metrics))
	}

	// --- The Bridge to the React back office ---
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "online"}) })
	r.POST("/login", h.Login)
	if h.Metrics != nil {
		r.GET("/metrics", gin.WrapH(h.Metrics.Handler()))
	}

	// --- FEATURE FLAG: Staff Registration ---
	if cfg.AllowRegistration {
		r.POST("/register", h.Register)
		log.Println("⚠️ WARNING: Registration route is OPEN. Disable this in production!")
	} else {
		log.Println("🔒 Registration route is safely DISABLED.")
	}

	// --- PROTECTED ROUTES ---
	api := r.Group("/api")
	api.Use(middleware.AuthMiddleware(h.Tokens))
	{
		// EVERY SIGNED-IN ROLE
		api.GET("/ingredients", h.GetIngredients)
		api.GET("/recipes", h.GetRecipes)
		api.GET("/recipes/:id", h.GetRecipe)
		api.POST("/offers/validate", h.ValidateOffer)
		api.POST("/checkout", h.ProcessSale)

		// MANAGER & ADMIN
		kitchen := api.Group("/")
		kitchen.Use(middleware.RequireRole(auth.RoleManager, auth.RoleAdmin))
		{
			kitchen.POST("/ingredients", h.AddIngredient)
			kitchen.PUT("/ingredients/:id", h.UpdateIngredient)
			kitchen.POST("/recipes/price", h.PriceRecipe)
			kitchen.POST("/recipes", h.SaveRecipe)
			kitchen.POST("/recipes/:id/recalculate", h.RecalculateRecipe)
			kitchen.GET("/recipes/:id/costsheet", h.ExportCostSheet)

			kitchen.POST("/offers", h.CreateOffer)
			kitchen.GET("/offers", h.GetOffers)
			kitchen.GET("/offers/:id", h.GetOffer)
			kitchen.PATCH("/offers/:id/status", h.UpdateOfferStatus)
		}

		// ADMIN ONLY
		admin := api.Group("/")
		admin.Use(middleware.RequireRole(auth.RoleAdmin))
		{
			admin.GET("/reports", h.GetSalesReport)
			admin.GET("/reports/margins", h.GetMarginReport)
			admin.GET("/reports/margins/export", h.ExportMarginReport)
			admin.GET("/reports/offers", h.GetOfferReport)
			admin.POST("/ask", h.AskAI)
		}
	}

	return r
}
