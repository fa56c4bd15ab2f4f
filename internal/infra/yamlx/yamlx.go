// Package yamlx 封装 yaml.v3 的节点级读写：保持字段顺序，并把任意值统一成表格可编辑的字符串。
package yamlx

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrNotMapping 表示文档顶层不是 mapping（或是空文档）。
var ErrNotMapping = errors.New("yaml 顶层必须是 mapping")

// Field 是 mapping 中的一个键值对（值已转为字符串）。
type Field struct {
	Key   string
	Value string
}

// DecodeMapping 解析一个顶层为 mapping 的 YAML 文档，按文档顺序返回字段。
//
// 规则：
//   - null 值 => 空串
//   - 标量保持原始字面量（日期/数字不做类型转换）
//   - 字符串若按普通标量写回会变成 null/bool/数字，或以引号/括号开头，
//     则保留为带双引号的字面量，例如 Count: "42" => `"42"`
//   - 序列/映射转为 flow 风格文本，例如 "[a, b]"
//   - 重复键：yaml.v3 本身会报错，这里不做额外处理
func DecodeMapping(b []byte) ([]Field, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return nil, err
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, ErrNotMapping
	}
	m := doc.Content[0]
	if m.Kind != yaml.MappingNode {
		return nil, ErrNotMapping
	}

	fields := make([]Field, 0, len(m.Content)/2)
	for i := 0; i+1 < len(m.Content); i += 2 {
		k, v := m.Content[i], m.Content[i+1]
		if k.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("第 %d 个键不是标量（line %d）", i/2+1, k.Line)
		}
		text, err := Text(v)
		if err != nil {
			return nil, fmt.Errorf("字段 %q：%w", k.Value, err)
		}
		fields = append(fields, Field{Key: k.Value, Value: text})
	}
	return fields, nil
}

// Text 把任意节点转为单行字符串。
func Text(n *yaml.Node) (string, error) {
	switch n.Kind {
	case yaml.ScalarNode:
		switch n.ShortTag() {
		case "!!null":
			return "", nil
		case "!!str":
			if needsQuote(n.Value) {
				return strconv.Quote(n.Value), nil
			}
		}
		return n.Value, nil
	case yaml.AliasNode:
		if n.Alias == nil {
			return "", nil
		}
		return Text(n.Alias)
	case yaml.SequenceNode, yaml.MappingNode:
		// 只改顶层样式即可：flow 容器内部的子节点必然以 flow 输出。
		cp := *n
		cp.Style |= yaml.FlowStyle
		cp.HeadComment, cp.LineComment, cp.FootComment = "", "", ""
		b, err := yaml.Marshal(&cp)
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(b)), nil
	default:
		return "", fmt.Errorf("不支持的节点类型：%v", n.Kind)
	}
}

// EncodeMapping 按给定顺序输出一个 mapping 文档（不排序）。
//
// 值的写法：
// - 空串写成 ""（而不是 null）
// - 形如 [..] / {..} 且能解析为集合的文本，按集合写回（与 Text 对称）
// - 带引号的字面量（"42"、'null'）按字符串写回，保持原类型
// - 其余按普通标量写出：数字/布尔保持原类型，必要时由 yaml.v3 自动加引号
func EncodeMapping(fields []Field) ([]byte, error) {
	m := &yaml.Node{Kind: yaml.MappingNode}
	for _, f := range fields {
		m.Content = append(m.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: f.Key},
			valueNode(f.Value),
		)
	}
	doc := &yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{m}}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func valueNode(v string) *yaml.Node {
	if v == "" {
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: "", Style: yaml.DoubleQuotedStyle}
	}
	if c := parseLiteral(v); c != nil {
		if c.Kind == yaml.ScalarNode {
			return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: c.Value, Style: yaml.DoubleQuotedStyle}
		}
		return c
	}
	if t := strings.TrimSpace(v); t != "" && strings.ContainsRune(literalLeads, rune(t[0])) {
		// 以引号/括号开头却不是合法字面量：作为字符串写出，由 yaml.v3 决定引号。
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v}
	}
	return &yaml.Node{Kind: yaml.ScalarNode, Value: v}
}

// literalLeads 是可能构成 YAML 字面量的首字符。
const literalLeads = `"'[{`

// parseLiteral 把 [..] / {..} / "..." / '...' 形式的单元格文本解析为节点；
// 只接受集合与带引号的标量，其余返回 nil。
func parseLiteral(v string) *yaml.Node {
	t := strings.TrimSpace(v)
	if t == "" || !strings.ContainsRune(literalLeads, rune(t[0])) {
		return nil
	}
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(t), &doc); err != nil || len(doc.Content) != 1 {
		return nil
	}
	c := doc.Content[0]
	switch {
	case c.Kind == yaml.SequenceNode || c.Kind == yaml.MappingNode:
		return c
	case c.Kind == yaml.ScalarNode && c.Style&(yaml.DoubleQuotedStyle|yaml.SingleQuotedStyle) != 0:
		return c
	}
	return nil
}

// needsQuote 判断字符串 s 在表格中是否必须以带引号的字面量呈现：
// 按普通标量写回会改变类型，或会被 valueNode 当作字面量解析。
func needsQuote(s string) bool {
	if s == "" {
		return false
	}
	switch (&yaml.Node{Kind: yaml.ScalarNode, Value: s}).ShortTag() {
	case "!!null", "!!bool", "!!int", "!!float":
		return true
	}
	return parseLiteral(s) != nil
}
