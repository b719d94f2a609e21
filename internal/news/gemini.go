package news

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"ndr-radio/internal/models"
)

const geminiEndpoint = "https://generativelanguage.googleapis.com/v1beta/models/%s:generateContent?key=%s"

var newsFetches = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "radio_news_fetches_total",
		Help: "News provider fetches, by result.",
	},
	[]string{"result"},
)

// RegisterMetrics registers news metrics with the default registry.
func RegisterMetrics() {
	prometheus.MustRegister(newsFetches)
}

// GeminiProvider fetches headlines and weather in one grounded search
// call. Results are persisted through the Store, which also serves as
// the fallback when the API is down.
type GeminiProvider struct {
	apiKey string
	model  string
	store  *Store
	client *http.Client
}

func NewGeminiProvider(apiKey, model string, store *Store) *GeminiProvider {
	return &GeminiProvider{
		apiKey: apiKey,
		model:  model,
		store:  store,
		client: &http.Client{Timeout: 45 * time.Second},
	}
}

type geminiRequest struct {
	Contents         []geminiContent `json:"contents"`
	Tools            []geminiTool    `json:"tools,omitempty"`
	GenerationConfig *geminiGenCfg   `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiTool struct {
	GoogleSearch struct{} `json:"google_search"`
}

type geminiGenCfg struct {
	ResponseMimeType string `json:"responseMimeType,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// feedPayload is the JSON shape the prompt asks the model to return.
type feedPayload struct {
	News []struct {
		Title    string `json:"title"`
		Content  string `json:"content"`
		Category string `json:"category"`
	} `json:"news"`
	Headlines []string `json:"headlines"`
	Weather   *Weather `json:"weather"`
}

// Fetch returns the latest report. A feed fresher than the quota guard
// window is served straight from the store; a failed API call falls
// back to the stored feed, or to the offline placeholder when the
// store is empty too.
func (p *GeminiProvider) Fetch(ctx context.Context, location string) (*Report, error) {
	if err := p.store.Cleanup(ctx); err != nil {
		log.Printf("⚠️ News cleanup failed: %v", err)
	}

	if fresh, err := p.store.Fresh(ctx); err == nil && fresh {
		items, err := p.store.Recent(ctx)
		if err == nil && len(items) > 0 {
			newsFetches.WithLabelValues("cached").Inc()
			return &Report{Items: items}, nil
		}
	}

	report, err := p.scan(ctx, location)
	if err != nil {
		log.Printf("❌ News scanning failed: %v", err)
		newsFetches.WithLabelValues("fallback").Inc()
		return p.fallback(ctx)
	}

	if len(report.Items) > 0 {
		if err := p.store.Save(ctx, report.Items); err != nil {
			log.Printf("⚠️ Failed to persist news batch: %v", err)
		}
	}
	newsFetches.WithLabelValues("live").Inc()
	return report, nil
}

func (p *GeminiProvider) scan(ctx context.Context, location string) (*Report, error) {
	prompt := fmt.Sprintf(`Search for the most CURRENT breaking news (strictly last 24 hours) from global and Nigerian sources.
ALSO, find the current weather conditions for %s.

FOCUS AREAS:
1. NIGERIA BREAKING: Politics and Economy.
2. DIASPORA: Nigerian community updates worldwide.
3. SPORTS: Latest Nigerian football/sports results.
4. WEATHER: Current temp and sky conditions in %s.

Return a JSON object with:
- 'news': Array of objects with 'title', 'content', 'category' (Detailed content 60-80 words).
- 'headlines': Array of short strings (headlines only).
- 'weather': Object with 'condition', 'temp', 'location'.`, location, location)

	reqBody := geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
		Tools:    []geminiTool{{}},
		GenerationConfig: &geminiGenCfg{
			ResponseMimeType: "application/json",
		},
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf(geminiEndpoint, p.model, p.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("gemini returned %d: %s", resp.StatusCode, string(body))
	}

	var gemini geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&gemini); err != nil {
		return nil, fmt.Errorf("failed to decode gemini response: %w", err)
	}
	if len(gemini.Candidates) == 0 || len(gemini.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("gemini returned no candidates")
	}

	var feed feedPayload
	if err := json.Unmarshal([]byte(gemini.Candidates[0].Content.Parts[0].Text), &feed); err != nil {
		return nil, fmt.Errorf("failed to parse news feed JSON: %w", err)
	}

	items := make([]models.NewsItem, 0, len(feed.News))
	for _, n := range feed.News {
		items = append(items, models.NewsItem{
			ID:       uuid.NewString(),
			Title:    n.Title,
			Content:  n.Content,
			Category: n.Category,
		})
	}
	log.Printf("📥 Scanned %d fresh news items for %s", len(items), location)
	return &Report{Items: items, Weather: feed.Weather}, nil
}

// fallback serves the stored feed, seeding the offline placeholder if
// even the store is empty so the station always has something to read.
func (p *GeminiProvider) fallback(ctx context.Context) (*Report, error) {
	items, err := p.store.Recent(ctx)
	if err == nil && len(items) > 0 {
		return &Report{Items: items}, nil
	}

	placeholder := []models.NewsItem{{
		ID:       "offline-" + uuid.NewString(),
		Title:    "Welcome to Nigeria Diaspora Radio - Live Broadcast",
		Content:  "We are currently tuning our AI satellites. Enjoy our curated selection of afrobeats while we connect to the news feed.",
		Category: "Station Update",
	}}
	if err := p.store.Save(ctx, placeholder); err != nil {
		log.Printf("⚠️ Failed to persist offline placeholder: %v", err)
	}
	return &Report{
		Items:   placeholder,
		Weather: &Weather{Condition: "Fair", Temp: "25°C", Location: "Lagos"},
	}, nil
}
