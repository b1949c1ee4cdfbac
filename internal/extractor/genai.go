package extractor

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/ChasingCode34/trip-sync/internal/domain"
)

const defaultGenAIModel = "gemini-2.0-flash"

// GenAI extracts trips with Google's Gemini API. The model is asked for a
// strict JSON object and anything malformed fails closed: the user is
// asked to rephrase instead of the service guessing.
type GenAI struct {
	client *genai.Client
	model  string
	loc    *time.Location
}

// NewGenAI creates a Gemini-backed extractor.
func NewGenAI(ctx context.Context, apiKey, model string, loc *time.Location) (*GenAI, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GenAI API key is required")
	}
	if model == "" {
		model = defaultGenAIModel
	}
	if loc == nil {
		loc = time.Local
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &GenAI{client: client, model: model, loc: loc}, nil
}

// tripPayload is the JSON shape the model is instructed to return.
type tripPayload struct {
	Departure string `json:"departure"`
	From      string `json:"from"`
	To        string `json:"to"`
	Error     string `json:"error,omitempty"`
}

const extractPrompt = `You convert a rider's text message into a structured airport-shuttle trip.
The only two endpoints are "Emory University" and "Hartsfield-Jackson Atlanta International Airport".
Current local time: %s (%s).

Resolve relative words against the current time: "today"/"tomorrow" are literal;
a weekday name means the next occurrence on or after today for "this X" or a bare
weekday, and one week later for "next X". Never produce a departure in the past
when relative words were used.

Reply with ONLY a JSON object:
{"departure": "2006-01-02T15:04", "from": "...", "to": "..."}
If you cannot determine the departure time or the route with confidence, reply:
{"error": "<short reason>"}

Message: %q`

// Extract implements Extractor.
func (g *GenAI) Extract(ctx context.Context, text string, now time.Time) (*domain.Trip, error) {
	now = now.In(g.loc)
	prompt := fmt.Sprintf(extractPrompt, now.Format("Monday 2006-01-02 15:04"), g.loc.String(), text)

	result, err := g.client.Models.GenerateContent(ctx, g.model,
		genai.Text(prompt),
		&genai.GenerateContentConfig{
			ResponseMIMEType: "application/json",
		},
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	raw := strings.TrimSpace(result.Text())
	// Some models still wrap JSON in a code fence despite the MIME type.
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.Trim(raw, "` \n")

	var payload tripPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, fmt.Errorf("unparseable extractor output: %w", err)
	}
	if payload.Error != "" {
		return nil, fmt.Errorf("%w: %s", ErrNoDepartureTime, payload.Error)
	}

	departure, err := time.ParseInLocation("2006-01-02T15:04", payload.Departure, g.loc)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDate, payload.Departure)
	}

	from, ok := MatchLocation(payload.From)
	if !ok {
		return nil, fmt.Errorf("unknown origin %q", payload.From)
	}
	to, ok := MatchLocation(payload.To)
	if !ok {
		return nil, fmt.Errorf("unknown destination %q", payload.To)
	}
	if from == to {
		return nil, fmt.Errorf("origin and destination are both %q", from)
	}

	return &domain.Trip{
		DepartureTime: departure,
		From:          from,
		To:            to,
	}, nil
}
