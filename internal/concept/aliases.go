package concept

// aliasTable is the immutable lookup built once at package init.
type aliasTable struct {
	exact  map[string]Concept
	folded map[string]Concept
}

var table = buildAliasTable(aliases)

// aliases lists every accepted label per concept: the canonical English
// name, Traditional and Simplified Chinese names, and common English
// variants.
var aliases = map[Concept][]string{
	DescriptiveStatistics: {
		"Descriptive Statistics", "描述統計", "描述统计",
		"descriptive statistics", "descriptive stats",
	},
	StandardDeviation: {
		"Standard Deviation", "標準差", "标准差",
		"standard deviation", "sd", "std dev",
	},
	OneSampleTTest: {
		"One-Sample t-Test", "單樣本t檢定", "单样本t检验", "单样本t检定",
		"one sample t test", "one-sample t test", "one sample t-test",
	},
	IndependentSamplesTTest: {
		"Independent-Samples t-Test", "獨立樣本t檢定", "独立样本t检验", "独立样本t检定",
		"independent t test", "independent samples t test", "two sample t test",
	},
	PairedSamplesTTest: {
		"Paired-Samples t-Test", "配對樣本t檢定", "配对样本t检验", "配对样本t检定",
		"paired t test", "paired samples t test", "dependent samples t test",
	},
	CorrelationAnalysis: {
		"Correlation Analysis", "相關分析", "相关分析",
		"correlation", "correlation analysis",
	},
	SimpleRegression: {
		"Simple Regression", "簡單迴歸", "简单回归", "簡單回歸",
		"simple regression", "regression", "simple linear regression",
	},
	ChiSquareTest: {
		"Chi-Square Test", "卡方檢定", "卡方检验", "卡方检定",
		"chi square", "chi-square", "chi square test",
	},
}

func buildAliasTable(src map[Concept][]string) aliasTable {
	t := aliasTable{
		exact:  make(map[string]Concept),
		folded: make(map[string]Concept),
	}
	for c, labels := range src {
		for _, l := range labels {
			t.exact[l] = c
			t.folded[fold(l)] = c
		}
	}
	return t
}
