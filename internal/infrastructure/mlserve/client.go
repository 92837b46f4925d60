package mlserve

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"tga-report-ai-api/internal/config"
)

// Client 访问数值 ML 推理服务（房间类型分类 / 负荷回归）。
// 推理失败只降低上下文质量，调用方应降级而不是中断报告生成。
type Client struct {
	cfg        config.MLServeConfig
	httpClient *http.Client
}

func NewClient(cfg config.MLServeConfig) *Client {
	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// Enabled 推理服务是否已配置
func (c *Client) Enabled() bool {
	return c != nil && c.cfg.Enabled
}

// RoomFeatures 房间分类模型的输入特征
type RoomFeatures struct {
	VolumeM3           float64 `json:"volume_m3"`
	AreaM2             float64 `json:"area_m2"`
	TotalHeatingLoadKW float64 `json:"total_heating_load_kw"`
}

type roomTypeResponse struct {
	RoomTypeNo int `json:"Room_Type_No"`
}

// PredictRoomType 按数值特征预测房间类型编号
func (c *Client) PredictRoomType(ctx context.Context, features RoomFeatures) (int, error) {
	if !c.Enabled() {
		return 0, fmt.Errorf("mlserve disabled")
	}
	var resp roomTypeResponse
	if err := c.postJSON(ctx, c.cfg.RoomTypeURL, features, &resp); err != nil {
		return 0, err
	}
	return resp.RoomTypeNo, nil
}

// LoadFeatures 负荷回归模型的输入特征
type LoadFeatures struct {
	AreaM2   float64 `json:"area_m2"`
	VolumeM3 float64 `json:"volume_m3"`
}

// LoadPrediction 每平米热/冷负荷预测
type LoadPrediction struct {
	HeatingWPerM2 float64 `json:"heating_w_per_m2"`
	CoolingWPerM2 float64 `json:"cooling_w_per_m2"`
}

// PredictLoad 预测每平米热/冷负荷
func (c *Client) PredictLoad(ctx context.Context, features LoadFeatures) (*LoadPrediction, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("mlserve disabled")
	}
	var resp LoadPrediction
	if err := c.postJSON(ctx, c.cfg.LoadURL, features, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) postJSON(ctx context.Context, url string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("call mlserve: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("mlserve returned %d: %s", resp.StatusCode, string(b))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
