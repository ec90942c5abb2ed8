package tokenizer

import "unicode"

// Estimator 按字符类别估算 token 数：
// 表意文字约 1.5 个字符一个 token，其余约 4 个字符一个 token，向上取整。
type Estimator struct{}

func (Estimator) CountTokens(text string) (int, error) {
	var ideographic, other int
	for _, r := range text {
		if unicode.In(r, unicode.Han, unicode.Hiragana, unicode.Katakana, unicode.Hangul) {
			ideographic++
		} else {
			other++
		}
	}
	return ceilDiv(2*ideographic, 3) + ceilDiv(other, 4), nil
}

func (Estimator) Name() string { return "estimator" }

func ceilDiv(n, d int) int {
	return (n + d - 1) / d
}
