package chat

import (
	"strings"

	"github.com/abhisek/statlab/internal/concept"
)

// Issue is a misconception pattern recognised in a student message.
type Issue struct {
	ID      string
	Concept concept.Concept
}

// Issue ids as stored in common_issues.
const (
	IssueSDMeanConfusion      = "sd_mean_confusion"
	IssueCorrelationCausation = "correlation_causation"
	IssuePValueMisread        = "pvalue_misread"
)

type issuePattern struct {
	issue Issue

	// all groups must match; a group matches when any of its terms does.
	groups [][]string
}

var issuePatterns = []issuePattern{
	{
		issue: Issue{ID: IssueSDMeanConfusion, Concept: concept.StandardDeviation},
		groups: [][]string{
			{"標準差", "标准差", "standard deviation"},
			{"平均數", "平均数", "mean"},
			{"一樣", "一样", "相同", "same", "equal"},
		},
	},
	{
		issue: Issue{ID: IssueCorrelationCausation, Concept: concept.CorrelationAnalysis},
		groups: [][]string{
			{"相關", "相关", "correlat"},
			{"因果", "causation", "causes", "caused"},
		},
	},
	{
		issue: Issue{ID: IssuePValueMisread, Concept: concept.OneSampleTTest},
		groups: [][]string{
			{"p值", "p-value", "p value"},
			{"機率", "概率", "几率", "可能性", "probability", "chance"},
		},
	},
}

// DetectIssues returns the misconception patterns message matches.
func DetectIssues(message string) []Issue {
	lower := strings.ToLower(message)
	var found []Issue
	for _, p := range issuePatterns {
		if matchesAll(lower, p.groups) {
			found = append(found, p.issue)
		}
	}
	return found
}

func matchesAll(lower string, groups [][]string) bool {
	for _, g := range groups {
		hit := false
		for _, term := range g {
			if strings.Contains(lower, term) {
				hit = true
				break
			}
		}
		if !hit {
			return false
		}
	}
	return true
}
