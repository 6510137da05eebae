package concept

import "strings"

// keywords are the substrings that mark a chat message as touching a concept.
var keywords = map[Concept][]string{
	DescriptiveStatistics:   {"平均數", "中位數", "眾數", "變異數", "描述", "統計量", "mean", "median", "mode", "descriptive"},
	StandardDeviation:       {"標準差", "變異數", "sd", "variance", "分散", "離散", "standard deviation"},
	OneSampleTTest:          {"單樣本", "t檢定", "t-test", "假設檢定", "顯著性", "hypothesis test", "one sample"},
	IndependentSamplesTTest: {"獨立樣本", "兩樣本", "群體差異", "independent samples", "two sample"},
	PairedSamplesTTest:      {"配對", "前後測", "重複測量", "相依樣本", "paired", "pre-post"},
	CorrelationAnalysis:     {"相關", "correlation", "關聯", "線性關係", "r值", "pearson"},
	SimpleRegression:        {"迴歸", "回归", "regression", "預測", "線性迴歸", "斜率", "slope"},
	ChiSquareTest:           {"卡方", "chi-square", "chi square", "類別變數", "獨立性檢定", "適合度檢定"},
}

// Detect returns the concepts mentioned in message, in curriculum order.
// Short Latin keywords such as "sd" must match a whole word.
func Detect(message string) []Concept {
	lower := strings.ToLower(message)
	words := strings.FieldsFunc(lower, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '-')
	})
	wordSet := make(map[string]bool, len(words))
	for _, w := range words {
		wordSet[w] = true
	}

	var found []Concept
	for _, c := range All() {
		for _, kw := range keywords[c] {
			if matchKeyword(lower, wordSet, kw) {
				found = append(found, c)
				break
			}
		}
	}
	return found
}

func matchKeyword(lower string, words map[string]bool, kw string) bool {
	if len(kw) <= 4 && isASCIIWord(kw) {
		return words[kw]
	}
	return strings.Contains(lower, kw)
}

func isASCIIWord(s string) bool {
	for _, r := range s {
		if !(r >= 'a' && r <= 'z') {
			return false
		}
	}
	return true
}
