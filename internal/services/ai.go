package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"dentalboard-backend/internal/finance"
)

const defaultOpenRouterURL = "https://openrouter.ai/api/v1"

type OpenRouterClient struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

type OpenRouterRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
}

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type OpenRouterResponse struct {
	ID      string   `json:"id"`
	Choices []Choice `json:"choices"`
}

type Choice struct {
	Message Message `json:"message"`
}

// CommentaryInput is the data a report commentary is written from.
type CommentaryInput struct {
	ClinicName string
	Kind       string
	Period     string
	Dashboard  finance.Dashboard
}

func NewOpenRouterClient(apiKey, model string) *OpenRouterClient {
	return &OpenRouterClient{
		apiKey:  apiKey,
		model:   model,
		baseURL: defaultOpenRouterURL,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

const systemPrompt = `あなたは歯科医院の経営コンサルタントです。
与えられた月次の経営数値をもとに、院長向けのレポートに載せる所見を日本語で書いてください。

ルール:
1. 300文字以内、箇条書き3〜5項目。
2. 数値は与えられたものだけを使い、推測で数値を作らないこと。
3. 売上の増減、自費率、患者1人あたり売上、営業利益率に触れること。
4. 改善のための具体的な提案を1つ含めること。
5. マークダウンの見出しは使わないこと。`

// Commentary returns report commentary from the model, or a rule-based
// summary when the model is not configured or fails.
func (c *OpenRouterClient) Commentary(ctx context.Context, in CommentaryInput) string {
	if c.apiKey == "" {
		return FallbackCommentary(in.Dashboard)
	}

	req := OpenRouterRequest{
		Model: c.model,
		Messages: []Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: buildPrompt(in)},
		},
	}

	reqBody, err := json.Marshal(req)
	if err != nil {
		return FallbackCommentary(in.Dashboard)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(reqBody))
	if err != nil {
		return FallbackCommentary(in.Dashboard)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Title", "DentalBoard")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		slog.Warn("openrouter request failed", "error", err)
		return FallbackCommentary(in.Dashboard)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		slog.Warn("openrouter error", "status", resp.StatusCode, "body", string(body))
		return FallbackCommentary(in.Dashboard)
	}

	var orResp OpenRouterResponse
	if err := json.NewDecoder(resp.Body).Decode(&orResp); err != nil {
		return FallbackCommentary(in.Dashboard)
	}
	if len(orResp.Choices) == 0 {
		return FallbackCommentary(in.Dashboard)
	}

	text := strings.TrimSpace(orResp.Choices[0].Message.Content)
	if text == "" {
		return FallbackCommentary(in.Dashboard)
	}
	return text
}

func buildPrompt(in CommentaryInput) string {
	var sb strings.Builder
	d := in.Dashboard
	p := d.Period

	sb.WriteString("経営レポート\n")
	fmt.Fprintf(&sb, "医院: %s\n", in.ClinicName)
	fmt.Fprintf(&sb, "種別: %s / 期間: %s\n", in.Kind, in.Period)
	fmt.Fprintf(&sb, "\n[期間合計 %dヶ月]\n", p.Months)
	fmt.Fprintf(&sb, "総売上: %s円\n", finance.FormatYen(p.TotalRevenue))
	fmt.Fprintf(&sb, "総経費: %s円\n", finance.FormatYen(p.TotalCost))
	fmt.Fprintf(&sb, "営業利益: %s円 (利益率 %.1f%%)\n", finance.FormatYen(p.OperatingProfit), p.ProfitMargin*100)
	fmt.Fprintf(&sb, "延べ患者数: %d人 / 診療日数: %d日\n", p.TotalPatients, p.TreatmentDays)
	fmt.Fprintf(&sb, "患者1人あたり売上: %.0f円\n", p.RevenuePerPatient)
	fmt.Fprintf(&sb, "自費率: %.1f%%\n", p.SelfPayRatio*100)

	if d.RevenueMoM != nil && d.RevenueMoM.Rate != nil {
		fmt.Fprintf(&sb, "前月比売上: %+.1f%%\n", *d.RevenueMoM.Rate*100)
	}
	if d.RevenueYoY != nil && d.RevenueYoY.Rate != nil {
		fmt.Fprintf(&sb, "前年同月比売上: %+.1f%%\n", *d.RevenueYoY.Rate*100)
	}

	if len(d.Series) > 1 {
		sb.WriteString("\n[月別推移]\n")
		for _, s := range d.Series {
			fmt.Fprintf(&sb, "%s 売上 %s円 利益 %s円 患者 %d人\n",
				s.YearMonth, finance.FormatYen(s.TotalRevenue), finance.FormatYen(s.OperatingProfit), s.TotalPatients)
		}
	}
	return sb.String()
}

// FallbackCommentary summarises the dashboard without a model.
func FallbackCommentary(d finance.Dashboard) string {
	p := d.Period
	if p.Months == 0 {
		return "対象期間のデータがありません。"
	}

	lines := []string{
		fmt.Sprintf("・期間の総売上は%s円、営業利益は%s円（利益率%.1f%%）です。",
			finance.FormatYen(p.TotalRevenue), finance.FormatYen(p.OperatingProfit), p.ProfitMargin*100),
	}
	if d.RevenueMoM != nil && d.RevenueMoM.Rate != nil {
		direction := "増加"
		if *d.RevenueMoM.Rate < 0 {
			direction = "減少"
		}
		lines = append(lines, fmt.Sprintf("・売上は前月比%.1f%%%sしました。", abs(*d.RevenueMoM.Rate)*100, direction))
	}
	lines = append(lines, fmt.Sprintf("・自費率は%.1f%%です。", p.SelfPayRatio*100))
	switch {
	case p.OperatingProfit < 0:
		lines = append(lines, "・営業赤字です。固定費の見直しを検討してください。")
	case p.SelfPayRatio < 0.1:
		lines = append(lines, "・自費診療の提案機会を増やすことで単価の改善が見込めます。")
	}
	return strings.Join(lines, "\n")
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
