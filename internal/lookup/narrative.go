package lookup

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"smartbizmap.kr/internal/logging"
	"smartbizmap.kr/internal/scoring"
	"smartbizmap.kr/internal/telemetry"
)

const (
	DefaultGeminiURL   = "https://generativelanguage.googleapis.com/v1beta/models"
	DefaultGeminiModel = "gemini-2.0-flash"
)

// Texts returned in place of a narrative.
const (
	NarrativeNoKey       = "API Key가 설정되지 않았습니다."
	NarrativeUnavailable = "분석 정보를 가져오는 데 실패했습니다."
	NarrativeFailed      = "AI 분석 중 오류가 발생했습니다."
)

// Narrator writes a short assessment of an entity.
type Narrator interface {
	FetchNarrative(ctx context.Context, name string, m scoring.EntityMetrics, category string) string
}

// GeminiClient generates narratives with the Gemini generateContent API.
type GeminiClient struct {
	APIKey  string
	Model   string
	BaseURL string
	HTTP    *http.Client
	Logger  *slog.Logger
	Metrics *telemetry.Metrics
}

// Prompt renders the request text for an entity. Revenue is shown in 억원
// and population in 만명.
func Prompt(name string, m scoring.EntityMetrics, category string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "상권 데이터: %s (매출 %.1f억, 유동인구 %.1f만, 임대료 %.0f만, 점포수 %.0f개",
		name, m.Revenue/10000, m.Population/10000, m.RentPerAreaUnit, m.Openings)
	if category != "" {
		fmt.Fprintf(&b, ", 업종 %s", category)
	}
	b.WriteString(").\n\n")
	b.WriteString("이 데이터를 바탕으로 이 상권의 특징과 투자 가치를 3~4문장의 줄글로만 간결하게 요약해주세요.\n\n")
	b.WriteString("[필수 조건]\n")
	b.WriteString("1. 마크다운(##, **, - 등)을 절대 사용하지 마세요. 오직 텍스트로만 작성하세요.\n")
	b.WriteString("2. 제목이나 소제목을 달지 말고 바로 본론으로 시작하세요.\n")
	b.WriteString("3. \"~함\", \"~음\" 대신 \"~합니다\", \"~보입니다\"의 정중한 어조를 사용하세요.\n")
	b.WriteString("4. 매출과 유동인구의 관계를 분석하여 실속 있는 상권인지 판단해주세요.\n")
	return b.String()
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content *content `json:"content"`
	} `json:"candidates"`
}

var errNoCandidates = errors.New("response carries no candidate text")

// FetchNarrative never fails: missing configuration and API errors are
// answered with fixed fallback texts.
func (c *GeminiClient) FetchNarrative(ctx context.Context, name string, m scoring.EntityMetrics, category string) string {
	logger := logging.Component(c.Logger, "gemini")
	if c.APIKey == "" {
		return NarrativeNoKey
	}

	text, err := c.generate(ctx, Prompt(name, m, category))
	switch {
	case errors.Is(err, errNoCandidates):
		c.Metrics.LookupFallback("gemini")
		logging.LogWarn(logger, "narrative unavailable", err, slog.String("entity", name))
		return NarrativeUnavailable
	case err != nil:
		c.Metrics.LookupFallback("gemini")
		logging.LogWarn(logger, "narrative request failed", err, slog.String("entity", name))
		return NarrativeFailed
	}
	return text
}

func (c *GeminiClient) generate(ctx context.Context, prompt string) (string, error) {
	base, model := c.BaseURL, c.Model
	if base == "" {
		base = DefaultGeminiURL
	}
	if model == "" {
		model = DefaultGeminiModel
	}

	payload, err := json.Marshal(generateRequest{Contents: []content{{Parts: []part{{Text: prompt}}}}})
	if err != nil {
		return "", err
	}
	endpoint := fmt.Sprintf("%s/%s:generateContent?key=%s", strings.TrimSuffix(base, "/"), model, c.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := httpClient(c.HTTP).Do(req)
	if err != nil {
		return "", fmt.Errorf("calling gemini: %w", err)
	}
	defer logging.SafeCloseWithLogging(resp.Body, c.Logger, "gemini_response_body")

	var body generateResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 4<<20)).Decode(&body); err != nil {
		return "", fmt.Errorf("decoding gemini response (status %d): %w", resp.StatusCode, err)
	}
	if len(body.Candidates) == 0 || body.Candidates[0].Content == nil || len(body.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("status %d: %w", resp.StatusCode, errNoCandidates)
	}
	return strings.TrimSpace(body.Candidates[0].Content.Parts[0].Text), nil
}
