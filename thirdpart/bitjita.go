package thirdpart

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strconv"
	"time"

	"empiremap/api/log"
	"empiremap/api/model"
)

const (
	defaultTimeout = 10 * time.Second
	maxRetries     = 4
	backoffBase    = 500 * time.Millisecond
)

// BitJitaClient BitJita 公开 API 的 GET 封装：限流 + 指数退避重试。
// 各 Fetch* 方法软失败：不可恢复错误时返回空结果并记日志，不向上抛。
type BitJitaClient struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	limiter    *RateLimiter
}

func NewBitJitaClient(baseURL, userAgent string, limiter *RateLimiter) *BitJitaClient {
	return &BitJitaClient{
		baseURL:    baseURL,
		userAgent:  userAgent,
		httpClient: &http.Client{Timeout: defaultTimeout},
		limiter:    limiter,
	}
}

// getWithRetries 重试策略：
//   - 每次尝试（含重试）前都要过限流器
//   - 传输错误 / 5xx：指数退避（0.5s 起倍增 + 抖动），最多 4 次
//   - 429：优先使用 Retry-After 头，否则同上退避；最终仍 429 则报错
//   - 其他非 2xx：立即失败，不重试
func (c *BitJitaClient) getWithRetries(ctx context.Context, path string) ([]byte, error) {
	url := c.baseURL + path
	var lastErr error

	for attempt := 1; attempt <= maxRetries; attempt++ {
		c.limiter.Acquire(1)

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("User-Agent", c.userAgent)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			if attempt == maxRetries {
				return nil, fmt.Errorf("get %s: %w", url, err)
			}
			sleepBackoff(attempt)
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			retryAfter := resp.Header.Get("Retry-After")
			resp.Body.Close()
			lastErr = fmt.Errorf("get %s: status 429", url)
			if attempt == maxRetries {
				return nil, lastErr
			}
			if secs, perr := strconv.ParseFloat(retryAfter, 64); perr == nil && secs >= 0 {
				time.Sleep(time.Duration(secs*float64(time.Second)) + jitter(200*time.Millisecond))
			} else {
				sleepBackoff(attempt)
			}
			continue
		}

		if resp.StatusCode >= 500 && resp.StatusCode < 600 {
			resp.Body.Close()
			lastErr = fmt.Errorf("get %s: status %d", url, resp.StatusCode)
			if attempt == maxRetries {
				return nil, lastErr
			}
			sleepBackoff(attempt)
			continue
		}

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			resp.Body.Close()
			return nil, fmt.Errorf("get %s: status %d", url, resp.StatusCode)
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = err
			if attempt == maxRetries {
				return nil, fmt.Errorf("read %s: %w", url, err)
			}
			sleepBackoff(attempt)
			continue
		}
		return body, nil
	}
	return nil, lastErr
}

func sleepBackoff(attempt int) {
	d := backoffBase << (attempt - 1)
	time.Sleep(d + jitter(100*time.Millisecond))
}

func jitter(max time.Duration) time.Duration {
	return time.Duration(rand.Int63n(int64(max)))
}

// ---------- endpoint wrappers（每个端点一个归一化入口） ----------

// FetchEmpires GET /api/empires，响应固定包一层 {"empires": [...]}。
// 失败返回空列表。
func (c *BitJitaClient) FetchEmpires(ctx context.Context) []model.Empire {
	body, err := c.getWithRetries(ctx, "/api/empires")
	if err != nil {
		log.Error("fetch empires error: ", err)
		return nil
	}
	var envelope struct {
		Empires []model.Empire `json:"empires"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		log.Error("decode empires error: ", err)
		return nil
	}
	return envelope.Empires
}

// FetchTowers GET /api/empires/{id}/towers，响应是裸数组。失败返回空列表。
func (c *BitJitaClient) FetchTowers(ctx context.Context, empireID int64) []model.Tower {
	body, err := c.getWithRetries(ctx, fmt.Sprintf("/api/empires/%d/towers", empireID))
	if err != nil {
		log.Errorf("fetch towers for empire %d error: %v", empireID, err)
		return nil
	}
	var towers []model.Tower
	if err := json.Unmarshal(body, &towers); err != nil {
		log.Errorf("decode towers for empire %d error: %v", empireID, err)
		return nil
	}
	return towers
}

// FetchEmpire GET /api/empires/{id}，可能包 {"empire": {...}} 也可能是裸对象。
// ok=false 表示没拿到可用详情。
func (c *BitJitaClient) FetchEmpire(ctx context.Context, empireID int64) (model.EmpireDetail, bool) {
	body, err := c.getWithRetries(ctx, fmt.Sprintf("/api/empires/%d", empireID))
	if err != nil {
		log.Errorf("fetch empire %d error: %v", empireID, err)
		return model.EmpireDetail{}, false
	}
	return decodeEmpireDetail(body)
}

// decodeEmpireDetail 信封归一化：有 "empire" 字段取内层，否则按裸对象解
func decodeEmpireDetail(body []byte) (model.EmpireDetail, bool) {
	var envelope struct {
		Empire *model.EmpireDetail `json:"empire"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Empire != nil {
		return *envelope.Empire, true
	}
	var bare model.EmpireDetail
	if err := json.Unmarshal(body, &bare); err != nil {
		return model.EmpireDetail{}, false
	}
	return bare, bare.EntityID.Valid() || bare.Name != ""
}

// FetchClaim GET /api/claims/{id}，包 {"claim": {...}} 或带 entityId 的裸对象。
func (c *BitJitaClient) FetchClaim(ctx context.Context, claimID int64) (model.Claim, bool) {
	body, err := c.getWithRetries(ctx, fmt.Sprintf("/api/claims/%d", claimID))
	if err != nil {
		log.Errorf("fetch claim %d error: %v", claimID, err)
		return model.Claim{}, false
	}
	return decodeClaim(body)
}

func decodeClaim(body []byte) (model.Claim, bool) {
	var envelope struct {
		Claim *model.Claim `json:"claim"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Claim != nil {
		return *envelope.Claim, true
	}
	var bare model.Claim
	if err := json.Unmarshal(body, &bare); err != nil {
		return model.Claim{}, false
	}
	return bare, bare.EntityID.Valid()
}

// FetchClaimsPage GET /api/claims?sort=&limit=&page=，返回
// {"claims": [...]} 或裸数组。失败返回空列表。
func (c *BitJitaClient) FetchClaimsPage(ctx context.Context, sort string, limit, page int) []model.Claim {
	body, err := c.getWithRetries(ctx, fmt.Sprintf("/api/claims?sort=%s&limit=%d&page=%d", sort, limit, page))
	if err != nil {
		log.Errorf("fetch claims page %d error: %v", page, err)
		return nil
	}
	var envelope struct {
		Claims []model.Claim `json:"claims"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Claims != nil {
		return envelope.Claims
	}
	var bare []model.Claim
	if err := json.Unmarshal(body, &bare); err != nil {
		log.Errorf("decode claims page %d error: %v", page, err)
		return nil
	}
	return bare
}
