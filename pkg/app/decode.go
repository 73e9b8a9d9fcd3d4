package app

import (
	"io"
	"mime"
	"net/http"
	"net/url"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
)

const (
	// InputKey query parameter and payload key carrying the call input
	// InputKey 承载调用入参的查询参数名与载荷键
	InputKey = "input"
	// BatchKey presence of this query parameter switches to batch mode
	// BatchKey 该查询参数存在即进入批量模式
	BatchKey = "batch"
	// batchFirstCall key of the first call inside a batch envelope
	batchFirstCall = "0"
)

var jsonAPI = sonic.Config{UseNumber: true}.Froze()

var errUnsupportedContentType = errors.New("unsupported content type, expected application/json")

// RawPayload decoded request payload, always carries the "input" key
// RawPayload 解码后的请求载荷，总是包含 "input" 键
type RawPayload map[string]any

// Input returns the call input, nil when the client sent none
// Input 返回调用入参，客户端未传时为 nil
func (p RawPayload) Input() any {
	return p[InputKey]
}

// IsBatch reports whether the batch query parameter is present, its value is irrelevant
// IsBatch 判断 batch 查询参数是否存在，忽略其取值
func IsBatch(query url.Values) bool {
	_, ok := query[BatchKey]
	return ok
}

// IsReadMethod GET and HEAD carry their input in the query string
// IsReadMethod GET 与 HEAD 通过查询字符串传递入参
func IsReadMethod(method string) bool {
	return method == http.MethodGet || method == http.MethodHead
}

// DecodeInput extracts the logical payload of a call.
// The returned payload is always usable: on failure it is {input:{}} and err explains why,
// callers only log err and let validation reject the empty input.
// DecodeInput 提取调用的逻辑载荷。
// 返回的载荷始终可用：失败时为 {input:{}}，err 仅说明原因，调用方只记录日志，由校验拒绝空入参。
func DecodeInput(method string, header http.Header, query url.Values, body []byte, batch bool) (RawPayload, error) {
	raw, err := decodeRaw(method, header, query, body)
	if err != nil {
		return RawPayload{InputKey: map[string]any{}}, err
	}

	if batch {
		if m, ok := raw.(map[string]any); ok {
			if first, ok := m[batchFirstCall]; ok {
				raw = first
			}
		}
	}

	if m, ok := raw.(map[string]any); ok {
		if _, has := m[InputKey]; has {
			return RawPayload(m), nil
		}
	}
	return RawPayload{InputKey: raw}, nil
}

func decodeRaw(method string, header http.Header, query url.Values, body []byte) (any, error) {
	if IsReadMethod(method) {
		s, ok := query[InputKey]
		if !ok || len(s) == 0 {
			return map[string]any{}, nil
		}
		var v any
		if err := jsonAPI.UnmarshalFromString(s[0], &v); err != nil {
			return nil, errors.Wrap(err, "decode input query parameter")
		}
		return v, nil
	}

	mediaType, _, err := mime.ParseMediaType(header.Get("Content-Type"))
	if err != nil || mediaType != "application/json" {
		return nil, errUnsupportedContentType
	}

	var v any
	if err := jsonAPI.Unmarshal(body, &v); err != nil {
		return nil, errors.Wrap(err, "decode request body")
	}
	return v, nil
}

// DecodeRequest reads the gin request and runs DecodeInput
// DecodeRequest 读取 gin 请求并执行 DecodeInput
func DecodeRequest(c *gin.Context) (RawPayload, error) {
	var body []byte
	if !IsReadMethod(c.Request.Method) && c.Request.Body != nil {
		b, err := io.ReadAll(c.Request.Body)
		if err != nil {
			return RawPayload{InputKey: map[string]any{}}, errors.Wrap(err, "read request body")
		}
		body = b
	}
	query := c.Request.URL.Query()
	return DecodeInput(c.Request.Method, c.Request.Header, query, body, IsBatch(query))
}
