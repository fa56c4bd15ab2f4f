package config

import (
	"encoding/base64"
	"errors"
	"strings"
)

// DecodeDataURL 解码浏览器上传控件给出的内容：
// - "data:<mime>;base64,<payload>"
// - 或者不带前缀的纯 base64
func DecodeDataURL(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, errors.New("上传内容为空")
	}
	if strings.HasPrefix(s, "data:") {
		head, payload, ok := strings.Cut(s, ",")
		if !ok {
			return nil, errors.New("data URL 缺少 ',' 分隔符")
		}
		if !strings.HasSuffix(head, ";base64") {
			// 非 base64 的 data URL 直接按原文处理。
			return []byte(payload), nil
		}
		s = payload
	}
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, err
	}
	return b, nil
}
