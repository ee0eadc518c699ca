package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client はNLP推論サーバーのREST APIへのリクエストを管理します。
// 推論サーバーは文章埋め込み (KoSimCSE系) とNLI含意判定 (KLUE-RoBERTa系) を
// 提供する別プロセスで、本サービスからは純粋な関数として扱います。
// モデルの状態はプロセス起動時に一度だけロードされ読み取り専用のため、
// 複数リクエストから同じClientを並行に共有できます。
type Client struct {
	endpoint        string
	apiKey          string
	embeddingModel  string
	entailmentModel string
	httpClient      *http.Client
}

// NewClient は新しい推論クライアントを作成します。
func NewClient(endpoint, apiKey, embeddingModel, entailmentModel string) *Client {
	return &Client{
		endpoint:        endpoint,
		apiKey:          apiKey,
		embeddingModel:  embeddingModel,
		entailmentModel: entailmentModel,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// --- データ構造定義 ---

// EmbeddingRequest Embedding APIリクエスト
type EmbeddingRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

// EmbeddingResponse Embedding APIレスポンス
type EmbeddingResponse struct {
	Object string `json:"object"`
	Data   []struct {
		Object    string    `json:"object"`
		Index     int       `json:"index"`
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
	Model string `json:"model"`
}

// EntailmentRequest NLI含意判定リクエスト
type EntailmentRequest struct {
	Model      string `json:"model"`
	Premise    string `json:"premise"`
	Hypothesis string `json:"hypothesis"`
}

// EntailmentResponse NLI含意判定レスポンス
type EntailmentResponse struct {
	Entailment    float64 `json:"entailment"`
	Neutral       float64 `json:"neutral"`
	Contradiction float64 `json:"contradiction"`
}

// ErrorResponse 推論サーバーのエラーレスポンス
type ErrorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// hypothesisTemplate ゼロショット分類に使う仮説文のテンプレート。
const hypothesisTemplate = "이 문장은 %s이다."

// --- メソッド定義 ---

// Embed は各テキストのベクトル表現を生成します。入力が空の場合は空行列を返します。
func (c *Client) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	url := fmt.Sprintf("%s/v1/embeddings", strings.TrimSuffix(c.endpoint, "/"))
	request := EmbeddingRequest{
		Model: c.embeddingModel,
		Input: texts,
	}

	var response EmbeddingResponse
	if err := c.doRequest(ctx, url, request, &response); err != nil {
		return nil, fmt.Errorf("embedding APIの呼び出しに失敗: %w", err)
	}

	if len(response.Data) != len(texts) {
		return nil, fmt.Errorf("embedding の件数が入力と一致しません (入力=%d, 応答=%d)", len(texts), len(response.Data))
	}

	vectors := make([][]float32, len(texts))
	for _, d := range response.Data {
		if d.Index < 0 || d.Index >= len(texts) || len(d.Embedding) == 0 {
			return nil, fmt.Errorf("APIから有効なEmbeddingが返されませんでした")
		}
		vectors[d.Index] = d.Embedding
	}
	return vectors, nil
}

// Entail は「この文章は{label}だ」という仮説が premise から含意される確率を返します。
// 矛盾確率との2値正規化を行い、[0,1] の値を返します。
func (c *Client) Entail(ctx context.Context, premise, label string) (float64, error) {
	url := fmt.Sprintf("%s/v1/entailment", strings.TrimSuffix(c.endpoint, "/"))
	request := EntailmentRequest{
		Model:      c.entailmentModel,
		Premise:    premise,
		Hypothesis: fmt.Sprintf(hypothesisTemplate, label),
	}

	var response EntailmentResponse
	if err := c.doRequest(ctx, url, request, &response); err != nil {
		return 0, fmt.Errorf("entailment APIの呼び出しに失敗: %w", err)
	}

	denom := response.Entailment + response.Contradiction
	if denom <= 0 {
		return 0.5, nil
	}
	return response.Entailment / denom, nil
}

// doRequest はHTTPリクエストの実行と基本的なレスポンス処理を行う共通メソッドです。
func (c *Client) doRequest(ctx context.Context, url string, requestData interface{}, responseData interface{}) error {
	requestBody, err := json.Marshal(requestData)
	if err != nil {
		return fmt.Errorf("リクエストのJSON化に失敗: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(requestBody))
	if err != nil {
		return fmt.Errorf("HTTPリクエストの作成に失敗: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("api-key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("HTTPリクエストの実行に失敗: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("レスポンスの読み取りに失敗: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errorResp ErrorResponse
		if err := json.Unmarshal(body, &errorResp); err == nil && errorResp.Error.Message != "" {
			return fmt.Errorf("推論サーバーエラー (status: %d): %s", resp.StatusCode, errorResp.Error.Message)
		}
		return fmt.Errorf("推論サーバーエラー (status: %d): %s", resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, responseData); err != nil {
		return fmt.Errorf("レスポンスのJSON解析に失敗: %w", err)
	}

	return nil
}
