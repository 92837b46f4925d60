// Package node 提供工作流内部的无状态处理节点：
// 模型回复解析、网关错误分类等
package node

import (
	"context"
	"errors"
	"net"
	"strings"
)

// GatewayErrorKind LLM 网关错误分类
type GatewayErrorKind string

const (
	GatewayTimeout     GatewayErrorKind = "timeout"
	GatewayRateLimited GatewayErrorKind = "rate_limited"
	GatewayAuthFailure GatewayErrorKind = "auth_failure"
	GatewayUnreachable GatewayErrorKind = "unreachable"
)

// Retryable 是否允许有界重试
// 提示词无状态，超时/限流下的重试是幂等的
func (k GatewayErrorKind) Retryable() bool {
	return k == GatewayTimeout || k == GatewayRateLimited
}

// ClassifyGatewayError 将底层调用错误归入网关错误分类。
// 各 Provider 适配层不暴露统一的错误类型，这里按
// context 状态、网络错误类型和错误消息特征归类。
func ClassifyGatewayError(err error) GatewayErrorKind {
	if err == nil {
		return GatewayUnreachable
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return GatewayTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return GatewayTimeout
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "429"),
		strings.Contains(msg, "rate limit"),
		strings.Contains(msg, "rate_limit"),
		strings.Contains(msg, "too many requests"),
		strings.Contains(msg, "quota"):
		return GatewayRateLimited
	case strings.Contains(msg, "401"),
		strings.Contains(msg, "403"),
		strings.Contains(msg, "unauthorized"),
		strings.Contains(msg, "forbidden"),
		strings.Contains(msg, "invalid api key"),
		strings.Contains(msg, "authentication"):
		return GatewayAuthFailure
	case strings.Contains(msg, "timeout"),
		strings.Contains(msg, "deadline exceeded"):
		return GatewayTimeout
	default:
		return GatewayUnreachable
	}
}
