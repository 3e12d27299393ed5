package ai

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const (
	modelName = "gemini-2.0-flash-001"
	// maxToolRounds stops a model that keeps calling tools.
	maxToolRounds = 5
)

type Agent struct {
	apiKey string
	tools  *Tools
}

func NewAgent(apiKey string, tools *Tools) *Agent {
	return &Agent{apiKey: apiKey, tools: tools}
}

func systemPrompt(today, userMessage string) string {
	return fmt.Sprintf(`SYSTEM: Today is %s. You are the back-office assistant of a restaurant POS.

	RULES:
	1. RECIPES: If a user asks about a dish by NAME, do NOT ask them for the ID. Call 'list_recipes' to find it, then 'price_recipe' with that ID for the cost breakdown.

	2. COSTS: Ingredient cost, manufacturing price and selling price come from 'price_recipe'. Never estimate them yourself.

	3. OFFERS: To check an offer code against an order amount, use 'preview_offer'. It never uses the offer up.

	4. SALES: If the user asks for sales/revenue, use 'get_sales_report'.

	USER: %s`, today, userMessage)
}

// Ask runs one question through the model, answering tool calls until the
// model replies in text.
func (a *Agent) Ask(ctx context.Context, userMessage string) (string, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(a.apiKey))
	if err != nil {
		return "", err
	}
	defer client.Close()

	model := client.GenerativeModel(modelName)
	model.Tools = []*genai.Tool{{FunctionDeclarations: a.tools.Declarations()}}

	session := model.StartChat()
	resp, err := session.SendMessage(ctx, genai.Text(systemPrompt(time.Now().Format("2006-01-02"), userMessage)))
	if err != nil {
		return "", err
	}

	for round := 0; round < maxToolRounds; round++ {
		calls := functionCalls(resp)
		if len(calls) == 0 {
			return printResponse(resp), nil
		}

		replies := make([]genai.Part, 0, len(calls))
		for _, call := range calls {
			log.Printf("🤖 Tool call: %s", call.Name)
			replies = append(replies, genai.FunctionResponse{
				Name:     call.Name,
				Response: a.tools.Execute(ctx, call),
			})
		}
		if resp, err = session.SendMessage(ctx, replies...); err != nil {
			return "", err
		}
	}
	return printResponse(resp), nil
}

func functionCalls(resp *genai.GenerateContentResponse) []genai.FunctionCall {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil
	}
	var calls []genai.FunctionCall
	for _, part := range resp.Candidates[0].Content.Parts {
		if call, ok := part.(genai.FunctionCall); ok {
			calls = append(calls, call)
		}
	}
	return calls
}

func printResponse(resp *genai.GenerateContentResponse) string {
	if resp != nil && len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil {
		for _, part := range resp.Candidates[0].Content.Parts {
			if txt, ok := part.(genai.Text); ok {
				return string(txt)
			}
		}
	}
	return "I completed the action."
}
