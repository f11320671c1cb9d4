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

	"dentalboard-backend/internal/models"
)

type SlackClient struct {
	webhookURL string
	client     *http.Client
}

type SlackMessage struct {
	Text   string  `json:"text"`
	Blocks []Block `json:"blocks"`
}

type Block struct {
	Type   string  `json:"type"`
	Text   *Text   `json:"text,omitempty"`
	Fields []*Text `json:"fields,omitempty"`
}

type Text struct {
	Type  string `json:"type"`
	Text  string `json:"text"`
	Emoji bool   `json:"emoji,omitempty"`
}

func NewSlackClient(webhookURL string) *SlackClient {
	return &SlackClient{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

// Enabled reports whether a webhook is configured.
func (c *SlackClient) Enabled() bool {
	return c.webhookURL != ""
}

// Notify posts a message for the event. Events without a Slack rendering and
// an unconfigured webhook are silently skipped.
func (c *SlackClient) Notify(ctx context.Context, ev models.Event) error {
	if !c.Enabled() {
		slog.Debug("slack webhook not configured, skipping", "kind", ev.Kind)
		return nil
	}
	message, ok := buildEventMessage(ev)
	if !ok {
		return nil
	}
	return c.sendMessage(ctx, message)
}

func buildEventMessage(ev models.Event) (SlackMessage, bool) {
	clinic := ev.Attr("clinic_name")
	if clinic == "" {
		clinic = ev.ClinicID
	}
	switch ev.Kind {
	case models.EventPrintOrderCreated:
		title := fmt.Sprintf("🖨 新規印刷発注: %s", clinic)
		return message(title,
			field("商品", ev.Attr("product_type")),
			field("数量", ev.Attr("quantity")),
			field("合計", "¥"+ev.Attr("total")),
			field("納品予定", ev.Attr("estimated_delivery")),
		), true
	case models.EventPrintOrderStatus:
		title := fmt.Sprintf("📦 発注ステータス更新: %s", clinic)
		return message(title,
			field("発注ID", ev.Attr("order_id")),
			field("ステータス", ev.Attr("from")+" → "+ev.Attr("status")),
		), true
	case models.EventMonthlyDataMissing:
		title := fmt.Sprintf("⚠️ 月次データ未入力: %s", clinic)
		return message(title,
			field("対象月", ev.Attr("year_month")),
		), true
	case models.EventReportReady:
		title := fmt.Sprintf("📄 レポート作成完了: %s", clinic)
		return message(title,
			field("種別", ev.Attr("kind")),
			field("期間", ev.Attr("period")),
		), true
	default:
		return SlackMessage{}, false
	}
}

func field(label, value string) *Text {
	if strings.TrimSpace(value) == "" {
		value = "-"
	}
	return &Text{Type: "mrkdwn", Text: "*" + label + ":*\n" + value}
}

func message(title string, fields ...*Text) SlackMessage {
	return SlackMessage{
		Text: title,
		Blocks: []Block{
			{
				Type: "header",
				Text: &Text{Type: "plain_text", Text: title, Emoji: true},
			},
			{
				Type:   "section",
				Fields: fields,
			},
		},
	}
}

func (c *SlackClient) sendMessage(ctx context.Context, message SlackMessage) error {
	reqBody, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("marshal error: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewReader(reqBody))
	if err != nil {
		return fmt.Errorf("create request error: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("post error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("slack error: %d %s", resp.StatusCode, string(body))
	}

	return nil
}
