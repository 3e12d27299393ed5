package main

import (
	"log"

	"go-pos-backoffice/internal/ai"
	"go-pos-backoffice/internal/auth"
	"go-pos-backoffice/internal/config"
	"go-pos-backoffice/internal/database"
	"go-pos-backoffice/internal/handlers"
	"go-pos-backoffice/internal/metrics"
	"go-pos-backoffice/internal/offers"
	"go-pos-backoffice/internal/service"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Invalid configuration: ", err)
	}

	db, err := database.Connect(cfg.DBDSN)
	if err != nil {
		log.Fatal("Database unavailable: ", err)
	}

	// --- Stores ---
	users := database.NewUserStore(db)
	ingredients := database.NewIngredientStore(db)
	recipes := database.NewRecipeStore(db)
	offerStore := database.NewOfferStore(db)
	sales := database.NewSaleStore(db)
	reports := database.NewReports(db)

	// --- Offer codes ---
	var codes offers.CodeGenerator = offers.UUIDCodes{Prefix: cfg.OfferCodePrefix}
	if cfg.OfferCodeStrategy == "snowflake" {
		sf, err := offers.NewSnowflakeCodes(cfg.OfferCodePrefix, cfg.SnowflakeNode)
		if err != nil {
			log.Fatal("Snowflake node: ", err)
		}
		codes = sf
	}

	// --- Services ---
	clock := service.SystemClock{}
	recipeService := service.NewRecipeService(ingredients, recipes)
	offerService := service.NewOfferService(offerStore, codes, clock)
	checkout := service.NewCheckoutService(recipes, sales, offerService, clock)

	h := &handlers.Handler{
		Users:       users,
		Ingredients: ingredients,
		RecipeStore: recipes,
		Recipes:     recipeService,
		Offers:      offerService,
		Checkout:    checkout,
		Reports:     reports,
		Tokens:      auth.NewTokens(cfg.JWTSecret),
		Metrics:     metrics.NewServerMetrics(),
	}

	if cfg.GeminiAPIKey != "" {
		h.Assistant = ai.NewAgent(cfg.GeminiAPIKey, &ai.Tools{
			Recipes: recipes,
			Quotes:  recipeService,
			Offers:  offerService,
			Sales:   reports,
		})
		log.Println("🤖 Assistant enabled")
	} else {
		log.Println("Warning: GEMINI_API_KEY not set, /api/ask is disabled")
	}

	r := handlers.NewRouter(h, cfg)

	// --- DEPLOYMENT: Serve React Frontend ---
	r.Static("/assets", "./web/assets")
	r.StaticFile("/vite.svg", "./web/vite.svg")

	// SPA Catch-All: If the user refreshes on "/recipes",
	// serve index.html so React can handle the routing.
	r.NoRoute(func(c *gin.Context) {
		c.File("./web/index.html")
	})

	log.Println("🚀 Server starting on " + cfg.BaseURL)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal("Server failed to start:", err)
	}
}
