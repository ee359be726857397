package agent

import (
	"context"
	"fmt"
	"strconv"

	"github.com/etnz/trackmetal"
	"github.com/etnz/trackmetal/renderer"
	"google.golang.org/genai"
)

const model = "gemini-2.5-pro"

// newFacilitator creates the expert in charge of the conversation.
func newFacilitator(experts ...*Expert) *Expert {
	return &Expert{
		Name:      "Facilitator",
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{FunctionDeclarations: NewDeclaration(experts)},
			},
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: `
			As a facilitator you are in charge of the conversation and solving the user's request.

			Learn about the expert's skills from the Tools and ask them questions.
			They are at your service and keep context of your previous questions.

			The user tracks precious metal and crypto holdings across storage services
			and is primarily here to understand his holdings, his remaining tax lots and
			his realized capital gains.

			Devise a plan of questions to the experts and come up with the best response
			to the user's request.
		`}}},
		},
		Library: NewLibrary(experts),
	}
}

// NewTaxAccountant creates the expert that reads the user's lot ledger. The
// inventory must already be processed; the expert's tools only read it.
func NewTaxAccountant(inv *trackmetal.Inventory) *Expert {
	lib := []Function{holdingsFunc(inv), lotsFunc(inv), gainsFunc(inv)}

	return &Expert{
		Name: "Accountant",
		Description: `This is the Accountant. He has read the user's reconciled transaction
		history and the resulting FIFO tax lots. Ask him about current holdings,
		remaining lots with their cost basis, and realized capital gains per year.`,
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{FunctionDeclarations: NewDeclaration(lib)},
			},
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: `
				You are an accountant in charge of the user's metal and crypto lot ledger.
				Sales are accounted first-in-first-out against purchase lots.
				Use the available tools to get the user's holdings, the open lots with
				their cost basis, and the realized gains of a given year.
			`}}},
		},
		Library: NewLibrary(lib),
	}
}

// Func implements Function from a declaration and a closure.
type Func struct {
	Decl *genai.FunctionDeclaration
	Func func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse
}

func (f *Func) Declaration() *genai.FunctionDeclaration { return f.Decl }
func (f *Func) Call(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
	return f.Func(ctx, id, args)
}

func failure(id, name string, err error) *genai.FunctionResponse {
	return &genai.FunctionResponse{
		ID:       id,
		Name:     name,
		Response: map[string]any{"error": err.Error()},
	}
}

func success(id, name, output string) *genai.FunctionResponse {
	return &genai.FunctionResponse{
		ID:       id,
		Name:     name,
		Response: map[string]any{"output": output},
	}
}

func holdingsFunc(inv *trackmetal.Inventory) *Func {
	return &Func{
		Decl: &genai.FunctionDeclaration{
			Name:        "Holdings",
			Description: `Holdings sums the user's open lots per metal and item type.`,
			Response: &genai.Schema{
				Type:        genai.TypeString,
				Description: "A markdown table of the holdings with weight, unit and cost basis.",
			},
		},
		Func: func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
			report, err := inv.HoldingsReport()
			if err != nil {
				return failure(id, "Holdings", err)
			}
			return success(id, "Holdings", renderer.HoldingsMarkdown(report))
		},
	}
}

func lotsFunc(inv *trackmetal.Inventory) *Func {
	return &Func{
		Decl: &genai.FunctionDeclaration{
			Name: "Lots",
			Description: `Lots lists the user's open tax lots, oldest first, with purchase
			date, remaining weight and adjusted cost basis.`,
			Response: &genai.Schema{
				Type:        genai.TypeString,
				Description: "A markdown table of the open lots.",
			},
		},
		Func: func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
			return success(id, "Lots", renderer.LotsMarkdown(inv.LotsReport()))
		},
	}
}

func gainsFunc(inv *trackmetal.Inventory) *Func {
	return &Func{
		Decl: &genai.FunctionDeclaration{
			Name: "Gains",
			Description: `Gains lists the realized capital gains of a tax year: every taxable
			sale with its cost basis, proceeds and net gain.`,
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"year": {
						Type:        genai.TypeString,
						Description: "The tax year, e.g. 2024. Omit for all years.",
					},
				},
			},
			Response: &genai.Schema{
				Type:        genai.TypeString,
				Description: "A markdown table of the taxable sales with a total row.",
			},
		},
		Func: func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
			year := 0
			if s, ok := args["year"].(string); ok && s != "" {
				y, err := strconv.Atoi(s)
				if err != nil {
					return failure(id, "Gains", fmt.Errorf("argument 'year' must be a year, got %q", s))
				}
				year = y
			}
			return success(id, "Gains", renderer.GainsMarkdown(inv.GainsReport(year)))
		},
	}
}
