package notify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// =============================================================================
// DiscordNotifier — Discord webhook通知通道
// 单据状态迁移后的best-effort推送，失败由Dispatcher统一记日志+死信
// =============================================================================

// DiscordNotifier Discord webhook客户端
type DiscordNotifier struct {
	webhookURL string
	httpClient *http.Client
}

// NewDiscordNotifier 创建Discord通知通道
func NewDiscordNotifier(webhookURL string) *DiscordNotifier {
	return &DiscordNotifier{
		webhookURL: webhookURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// discordMessage Discord webhook消息体
type discordMessage struct {
	Content string         `json:"content,omitempty"`
	Embeds  []discordEmbed `json:"embeds,omitempty"`
}

type discordEmbed struct {
	Title       string              `json:"title"`
	Description string              `json:"description,omitempty"`
	Color       int                 `json:"color"`
	Fields      []discordEmbedField `json:"fields,omitempty"`
	Timestamp   string              `json:"timestamp"`
}

type discordEmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

// 事件类型到标题/颜色的映射，通知文案用业务方语言
var discordTemplates = map[string]struct {
	Title string
	Color int
}{
	EventDeliveryDispatched: {"🚚 Entrega despachada", 0x3498db},
	EventDeliveryDelivered:  {"✅ Entrega completada", 0x2ecc71},
	EventDeliveryFailed:     {"⚠️ Entrega fallida", 0xe67e22},
	EventQuoteApproved:      {"✅ Cotización aprobada", 0x2ecc71},
	EventQuoteRejected:      {"❌ Cotización rechazada", 0xe74c3c},
	EventApprovalRequested:  {"📋 Aprobación solicitada", 0xf1c40f},
	EventPaymentConfirmed:   {"💰 Pago confirmado", 0x2ecc71},
	EventClientBlocked:      {"🚫 Cliente bloqueado", 0xe74c3c},
	EventClientUnblocked:    {"🔓 Cliente desbloqueado", 0x95a5a6},
}

// Notify 发送事件到Discord频道
func (n *DiscordNotifier) Notify(event Event) error {
	if n.webhookURL == "" {
		return nil
	}

	tpl, ok := discordTemplates[event.Type]
	if !ok {
		tpl.Title = event.Type
		tpl.Color = 0x95a5a6
	}

	fields := []discordEmbedField{
		{Name: "Documento", Value: event.EntityCode, Inline: true},
	}
	if motivo, ok := event.Payload["motivo"].(string); ok && motivo != "" {
		fields = append(fields, discordEmbedField{Name: "Motivo", Value: motivo, Inline: true})
	}
	if estado, ok := event.Payload["estado"].(string); ok && estado != "" {
		fields = append(fields, discordEmbedField{Name: "Estado", Value: estado, Inline: true})
	}

	msg := discordMessage{
		Embeds: []discordEmbed{{
			Title:     tpl.Title,
			Color:     tpl.Color,
			Fields:    fields,
			Timestamp: event.OccurredAt.UTC().Format(time.RFC3339),
		}},
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("序列化Discord消息失败: %w", err)
	}

	resp, err := n.httpClient.Post(n.webhookURL, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("发送Discord消息失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("Discord webhook返回 %d: %s", resp.StatusCode, string(respBody))
	}
	return nil
}
