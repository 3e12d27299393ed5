package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go-pos-backoffice/internal/costing"
	"go-pos-backoffice/internal/database"
	"go-pos-backoffice/internal/models"
	"go-pos-backoffice/internal/offers"
	"go-pos-backoffice/internal/service"

	"github.com/google/generative-ai-go/genai"
	"github.com/shopspring/decimal"
)

type RecipeLister interface {
	List(ctx context.Context) ([]models.Recipe, error)
}

type RecipeQuoter interface {
	Quote(ctx context.Context, id uint) (*models.Recipe, *costing.RecipeCosts, error)
}

type OfferPreviewer interface {
	Preview(ctx context.Context, in service.OrderInput) (offers.Result, *service.OfferView, error)
}

type SalesReporter interface {
	SalesReport(ctx context.Context, start, end time.Time) (*database.SalesReportResult, error)
}

// Tools executes the functions the model may call. It has no dependency on
// the model session.
type Tools struct {
	Recipes RecipeLister
	Quotes  RecipeQuoter
	Offers  OfferPreviewer
	Sales   SalesReporter
}

func (t *Tools) Declarations() []*genai.FunctionDeclaration {
	return []*genai.FunctionDeclaration{
		{
			Name:        "list_recipes",
			Description: "Get every recipe with its ID, category, manufacturing price and selling price.",
		},
		{
			Name:        "price_recipe",
			Description: "Get the full cost breakdown of one recipe at today's ingredient prices.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"recipe_id": {Type: genai.TypeInteger, Description: "ID of the recipe"},
				},
				Required: []string{"recipe_id"},
			},
		},
		{
			Name:        "preview_offer",
			Description: "Check whether an offer code applies to an order value and how much it takes off. Does not use up the offer.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"code":        {Type: genai.TypeString, Description: "Offer code"},
					"order_value": {Type: genai.TypeNumber, Description: "Order total before discount"},
				},
				Required: []string{"code", "order_value"},
			},
		},
		{
			Name:        "get_sales_report",
			Description: "Get total sales revenue and discounts for a date range.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"start_date": {Type: genai.TypeString, Description: "Start date (YYYY-MM-DD)"},
					"end_date":   {Type: genai.TypeString, Description: "End date (YYYY-MM-DD)"},
				},
				Required: []string{"start_date", "end_date"},
			},
		},
	}
}

// Execute runs one function call and returns the payload for the model.
// Failures are reported to the model in the payload, never as a Go error.
func (t *Tools) Execute(ctx context.Context, call genai.FunctionCall) map[string]any {
	out, err := t.execute(ctx, call)
	if err != nil {
		return map[string]any{"error": err.Error()}
	}
	return out
}

func (t *Tools) execute(ctx context.Context, call genai.FunctionCall) (map[string]any, error) {
	switch call.Name {
	case "list_recipes":
		recipes, err := t.Recipes.List(ctx)
		if err != nil {
			return nil, err
		}
		type simpleRecipe struct {
			ID                 uint   `json:"id"`
			Name               string `json:"name"`
			Category           string `json:"category"`
			ManufacturingPrice string `json:"manufacturing_price"`
			SellingPrice       string `json:"selling_price"`
		}
		list := make([]simpleRecipe, 0, len(recipes))
		for _, r := range recipes {
			list = append(list, simpleRecipe{
				ID:                 r.ID,
				Name:               r.Name,
				Category:           r.Category,
				ManufacturingPrice: r.ManufacturingPrice.StringFixed(2),
				SellingPrice:       r.SellingPrice.StringFixed(2),
			})
		}
		return map[string]any{"recipes": list}, nil

	case "price_recipe":
		id, err := argNumber(call.Args, "recipe_id")
		if err != nil {
			return nil, err
		}
		recipe, costs, err := t.Quotes.Quote(ctx, uint(id.IntPart()))
		if err != nil {
			return nil, err
		}
		return map[string]any{"recipe": recipe.Name, "costs": costs}, nil

	case "preview_offer":
		code, err := argString(call.Args, "code")
		if err != nil {
			return nil, err
		}
		value, err := argNumber(call.Args, "order_value")
		if err != nil {
			return nil, err
		}
		res, view, err := t.Offers.Preview(ctx, service.OrderInput{Code: code, OrderValue: value})
		if err != nil {
			return nil, err
		}
		return map[string]any{"offer": view.Name, "state": view.State, "result": res}, nil

	case "get_sales_report":
		startStr, err := argString(call.Args, "start_date")
		if err != nil {
			return nil, err
		}
		endStr, err := argString(call.Args, "end_date")
		if err != nil {
			return nil, err
		}
		start, err1 := time.Parse("2006-01-02", startStr)
		end, err2 := time.Parse("2006-01-02", endStr)
		if err1 != nil || err2 != nil {
			return nil, errors.New("dates must be in YYYY-MM-DD format")
		}
		end = end.Add(24*time.Hour - time.Second)

		report, err := t.Sales.SalesReport(ctx, start, end)
		if err != nil {
			return nil, err
		}
		return map[string]any{
			"revenue":     report.TotalRevenue.StringFixed(2),
			"discounts":   report.TotalDiscounts.StringFixed(2),
			"sales_count": report.TotalCount,
		}, nil
	}
	return nil, fmt.Errorf("unknown tool %q", call.Name)
}

func argString(args map[string]any, key string) (string, error) {
	v, ok := args[key].(string)
	if !ok || v == "" {
		return "", fmt.Errorf("missing %s", key)
	}
	return v, nil
}

// argNumber accepts JSON numbers and numeric strings.
func argNumber(args map[string]any, key string) (decimal.Decimal, error) {
	switch v := args[key].(type) {
	case float64:
		return decimal.NewFromFloat(v), nil
	case int:
		return decimal.NewFromInt(int64(v)), nil
	case string:
		return decimal.NewFromString(v)
	}
	return decimal.Zero, fmt.Errorf("missing %s", key)
}
