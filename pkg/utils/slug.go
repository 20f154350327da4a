package utils

import (
	"errors"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// ErrInvalidSlug 名称为空，或清洗后没有剩下任何可用字符
var ErrInvalidSlug = errors.New("generated slug is empty - invalid name provided")

// 符号转单词（其余标点一律丢弃）
var slugSymbols = map[rune]string{
	'&': "and",
	'$': "dollar",
	'%': "percent",
	'<': "less",
	'>': "greater",
	'|': "or",
}

// Slugify 把显示名转成 URL 安全的片段：小写、去重音、符号转词、分隔符折叠为单个 "-"。
// 结果只包含 [a-z0-9-]，因此永远不会含有路径分隔符 "/"。
func Slugify(name string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", ErrInvalidSlug
	}

	var b strings.Builder
	pendingSep := false
	emit := func(s string) {
		if pendingSep && b.Len() > 0 {
			b.WriteByte('-')
		}
		pendingSep = false
		b.WriteString(s)
	}

	for _, r := range norm.NFKD.String(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			emit(string(r))
		case r >= 'A' && r <= 'Z':
			emit(string(unicode.ToLower(r)))
		case unicode.IsSpace(r), r == '-', r == '_':
			pendingSep = true
		default:
			if w, ok := slugSymbols[r]; ok {
				pendingSep = true
				emit(w)
				pendingSep = true
			}
			// 重音符号、非 ASCII 与其余标点直接丢弃
		}
	}

	out := b.String()
	if out == "" {
		return "", ErrInvalidSlug
	}
	return out, nil
}
