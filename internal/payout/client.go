package payout

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/blues/ces/internal/config"
	"github.com/blues/ces/internal/logger"
	"github.com/google/uuid"
)

// Client 外部放款服务客户端。服务端以 idempotency_key（即 escrow_id）
// 去重，同一申请重复提交不会重复打款
type Client struct {
	endpoint string
	enabled  bool
	httpCli  *http.Client
}

// Init 初始化放款客户端
func Init(cfg config.PayoutConfig) (*Client, error) {
	if cfg.Enabled && cfg.Endpoint == "" {
		return nil, fmt.Errorf("payout enabled but endpoint is empty")
	}
	return &Client{
		endpoint: cfg.Endpoint,
		enabled:  cfg.Enabled,
		httpCli: &http.Client{
			Timeout: 10 * time.Second,
		},
	}, nil
}

// transferRequest 放款请求体
type transferRequest struct {
	IdempotencyKey string `json:"idempotency_key"`
	Recipient      string `json:"recipient"`
	Amount         int64  `json:"amount"`
}

// transferResponse 放款响应体
type transferResponse struct {
	TxRef string `json:"tx_ref"`
}

// Send 发起一笔转账，返回外部流水号
func (c *Client) Send(escrowId int64, recipient string, amount int64) (string, error) {
	// 通道关闭时只记录，生成本地流水号，便于联调环境跑通全流程
	if !c.enabled {
		txRef := "local-" + uuid.NewString()
		logger.Info("Payout channel disabled, recorded transfer locally: escrow %d, recipient %s, amount %d, ref %s",
			escrowId, recipient, amount, txRef)
		return txRef, nil
	}

	body, err := json.Marshal(transferRequest{
		IdempotencyKey: fmt.Sprintf("escrow-%d", escrowId),
		Recipient:      recipient,
		Amount:         amount,
	})
	if err != nil {
		return "", err
	}

	resp, err := c.httpCli.Post(c.endpoint+"/transfers", "application/json", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("payout request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("payout service returned status %d", resp.StatusCode)
	}

	var result transferResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode payout response: %w", err)
	}
	return result.TxRef, nil
}
