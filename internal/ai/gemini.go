// Package ai is the boundary to the external Gemini inference service. It
// exposes exactly two operations, receipt extraction and insight generation,
// and converts every transport, schema or parse failure into one fixed
// user-facing message per operation. The underlying cause is logged here and
// never reaches the end user.
package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"finbook/internal/core"
	"finbook/internal/log"
)

// Fixed user-facing strings. Handlers and services display these verbatim;
// the real error only ever goes to the log.
const (
	ReceiptFailureMessage  = "Failed to analyze receipt. Please try again or enter details manually."
	InsightFallbackMessage = "Could not generate an insight at this time."
	InsightNoDataMessage   = "Not enough expense data to generate an insight."
)

// ErrReceiptParse is returned for every receipt extraction failure,
// whatever the underlying cause.
var ErrReceiptParse = errors.New(ReceiptFailureMessage)

// ErrInsight is returned for every insight generation failure.
var ErrInsight = errors.New(InsightFallbackMessage)

// ReceiptFields is the structured result of a receipt extraction. Every
// field is optional in the model's response; absent fields are zero and the
// caller applies its own defaults.
type ReceiptFields struct {
	Amount      float64 `json:"amount"`
	Date        string  `json:"date"`
	Description string  `json:"description"`
}

const receiptPrompt = "Analyze this receipt and extract the total amount, date " +
	"(in YYYY-MM-DD format), and a brief description or merchant name. " +
	"Respond in the JSON format defined by the schema."

const insightPrompt = `Based on the following expense data from the last few months, provide one concise, actionable financial insight for a small business owner or freelancer. Focus on spending trends, potential savings, or category analysis. Keep the insight to a single sentence. For example: "Your software subscription costs have been steadily increasing; consider reviewing them for potential savings."

Expense Data:
%s`

var receiptSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"amount": {
			Type:        genai.TypeNumber,
			Description: "The total amount on the receipt.",
		},
		"date": {
			Type:        genai.TypeString,
			Description: "The date on the receipt in YYYY-MM-DD format.",
		},
		"description": {
			Type:        genai.TypeString,
			Description: "The merchant name or a brief description of the purchase.",
		},
	},
}

// Client talks to Gemini. The zero value is not usable; construct with
// NewClient.
type Client struct {
	genai *genai.Client
	model string
	log   *log.Logger
}

// NewClient initializes the Gemini client with the given API key and model.
func NewClient(ctx context.Context, apiKey, model string, logger *log.Logger) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("ai: missing API key")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("ai: init gemini client: %w", err)
	}
	return &Client{
		genai: client,
		model: model,
		log:   logger.WithComponent("ai"),
	}, nil
}

// ParseReceipt sends the receipt image with an extraction instruction and
// returns the structured fields. Any failure, from transport to malformed
// JSON, comes back as ErrReceiptParse.
func (c *Client) ParseReceipt(ctx context.Context, image []byte, mimeType string) (ReceiptFields, error) {
	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromBytes(image, mimeType),
			genai.NewPartFromText(receiptPrompt),
		}, genai.RoleUser),
	}
	resp, err := c.genai.Models.GenerateContent(ctx, c.model, contents, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   receiptSchema,
	})
	if err != nil {
		c.log.Error("receipt extraction request failed", "error", err)
		return ReceiptFields{}, ErrReceiptParse
	}

	raw := strings.TrimSpace(resp.Text())
	if raw == "" {
		c.log.Error("receipt extraction returned no content")
		return ReceiptFields{}, ErrReceiptParse
	}

	var fields ReceiptFields
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		c.log.Error("receipt extraction returned malformed JSON", "error", err)
		return ReceiptFields{}, ErrReceiptParse
	}
	return fields, nil
}

// GenerateInsight sends the expense list as context and returns one
// actionable sentence, trimmed of surrounding whitespace. Callers must skip
// the call entirely for an empty expense set; this method assumes there is
// data to reason about.
func (c *Client) GenerateInsight(ctx context.Context, expenses []core.Expense) (string, error) {
	data, err := json.MarshalIndent(expenses, "", "  ")
	if err != nil {
		c.log.Error("serializing expenses for insight failed", "error", err)
		return "", ErrInsight
	}

	resp, err := c.genai.Models.GenerateContent(ctx, c.model,
		genai.Text(fmt.Sprintf(insightPrompt, data)), nil)
	if err != nil {
		c.log.Error("insight request failed", "error", err)
		return "", ErrInsight
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		c.log.Error("insight request returned no content")
		return "", ErrInsight
	}
	return text, nil
}
