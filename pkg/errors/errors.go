// Package errors 提供统一的错误定义
package errors

import (
	"fmt"
	"net/http"
)

// ErrorCode 错误码类型
type ErrorCode string

// 预定义错误码
const (
	// 通用错误 (1xxx)
	CodeSuccess            ErrorCode = "0"
	CodeUnknown            ErrorCode = "1000"
	CodeInvalidParam       ErrorCode = "1001"
	CodeNotFound           ErrorCode = "1002"
	CodeTooManyRequests    ErrorCode = "1003"
	CodeInternalError      ErrorCode = "1004"
	CodeServiceUnavailable ErrorCode = "1005"

	// 上下文构建错误 (2xxx)
	CodeContextInvalid   ErrorCode = "2001"
	CodeUploadUnparsable ErrorCode = "2002"

	// LLM 网关错误 (3xxx)
	CodeGatewayTimeout     ErrorCode = "3001"
	CodeGatewayRateLimited ErrorCode = "3002"
	CodeGatewayAuth        ErrorCode = "3003"
	CodeGatewayUnreachable ErrorCode = "3004"

	// 业务错误 (4xxx)
	CodeParseFailed        ErrorCode = "4001"
	CodeGenerationFailed   ErrorCode = "4002"
	CodeCostEstimateFailed ErrorCode = "4003"
	CodeExportUnsupported  ErrorCode = "4004"
	CodeExportFailed       ErrorCode = "4005"
)

// AppError 应用错误
type AppError struct {
	Code       ErrorCode `json:"code"`
	Message    string    `json:"message"`
	Detail     string    `json:"detail,omitempty"`
	HTTPStatus int       `json:"-"`
	Err        error     `json:"-"`
}

// Error 实现 error 接口
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap 返回底层错误
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetail 返回带详细信息的副本，预定义错误本身不被修改
func (e *AppError) WithDetail(detail string) *AppError {
	clone := *e
	clone.Detail = detail
	return &clone
}

// WithError 返回带底层错误的副本
func (e *AppError) WithError(err error) *AppError {
	clone := *e
	clone.Err = err
	return &clone
}

// New 创建新的应用错误
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
	}
}

// Wrap 包装错误
func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
		Err:        err,
	}
}

// codeToHTTPStatus 错误码转 HTTP 状态码
func codeToHTTPStatus(code ErrorCode) int {
	switch code {
	case CodeSuccess:
		return http.StatusOK
	case CodeInvalidParam, CodeContextInvalid, CodeUploadUnparsable, CodeExportUnsupported:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeTooManyRequests, CodeGatewayRateLimited:
		return http.StatusTooManyRequests
	case CodeParseFailed:
		return http.StatusUnprocessableEntity
	case CodeGatewayTimeout:
		return http.StatusGatewayTimeout
	case CodeGatewayAuth, CodeGatewayUnreachable, CodeGenerationFailed, CodeCostEstimateFailed:
		return http.StatusBadGateway
	case CodeServiceUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// 预定义错误
var (
	ErrContextInvalid   = New(CodeContextInvalid, "invalid project context")
	ErrUploadUnparsable = New(CodeUploadUnparsable, "uploaded table could not be parsed")

	ErrGatewayTimeout     = New(CodeGatewayTimeout, "llm gateway timeout")
	ErrGatewayRateLimited = New(CodeGatewayRateLimited, "llm gateway rate limited")
	ErrGatewayAuth        = New(CodeGatewayAuth, "llm gateway authentication failed")
	ErrGatewayUnreachable = New(CodeGatewayUnreachable, "llm gateway unreachable")

	ErrParseFailed        = New(CodeParseFailed, "structured reply validation failed")
	ErrGenerationFailed   = New(CodeGenerationFailed, "report generation failed")
	ErrCostEstimateFailed = New(CodeCostEstimateFailed, "cost estimation failed")
	ErrExportUnsupported  = New(CodeExportUnsupported, "unsupported export format")
)

// IsAppError 检查是否为 AppError
func IsAppError(err error) bool {
	_, ok := err.(*AppError)
	return ok
}

// AsAppError 将错误转换为 AppError
func AsAppError(err error) *AppError {
	if appErr, ok := err.(*AppError); ok {
		return appErr
	}
	return Wrap(err, CodeUnknown, "unknown error")
}
