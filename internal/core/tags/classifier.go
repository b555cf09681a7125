// Package tags assigns category labels to conversations from a fixed
// keyword table. Classification is deterministic and pure: same text,
// same ranked labels.
package tags

import (
	"sort"
	"strings"

	"github.com/holbizmetrics/cortex/internal/core/models"
)

type category struct {
	label    string
	keywords []string
}

// categories is an ordered table: declaration order breaks score ties,
// so reordering entries changes ranking.
var categories = []category{
	{"Development", []string{
		"code", "programming", "debug", "api", "function", "typescript",
		"javascript", "python", "java", "c#", "rust", "golang", "react",
		"vue", "angular", "git", "github", "npm", "package", "dependency",
		"build", "compile", "test", "unit test", "integration", "deployment",
	}},
	{"Security", []string{
		"security", "vulnerability", "auth", "authentication", "authorization",
		"encryption", "permission", "exploit", "xss", "csrf", "sql injection",
		"owasp", "penetration", "firewall", "certificate", "ssl", "tls",
		"password", "token", "jwt", "oauth",
	}},
	{"Design", []string{
		"design", "ui", "ux", "interface", "layout", "css", "styling",
		"component", "figma", "sketch", "wireframe", "mockup", "prototype",
		"color", "typography", "responsive", "mobile", "accessibility",
	}},
	{"Data", []string{
		"database", "sql", "query", "data", "analytics", "chart", "graph",
		"postgresql", "mysql", "mongodb", "redis", "elasticsearch", "index",
		"migration", "schema", "orm", "prisma", "sequelize", "table",
	}},
	{"AI/ML", []string{
		"ai", "artificial intelligence", "machine learning", "model", "neural",
		"gpt", "claude", "training", "dataset", "embedding", "vector",
		"transformer", "llm", "prompt", "fine-tune", "inference", "tensorflow",
		"pytorch", "langchain", "openai", "anthropic",
	}},
	{"Documentation", []string{
		"documentation", "readme", "guide", "tutorial", "explain", "how to",
		"instructions", "manual", "wiki", "docs", "specification", "api doc",
		"comment", "jsdoc", "docstring", "markdown",
	}},
	{"Business", []string{
		"business", "strategy", "marketing", "sales", "revenue", "profit",
		"customer", "user", "conversion", "metrics", "kpi", "roi", "growth",
		"startup", "enterprise", "b2b", "b2c", "pricing", "monetization",
	}},
	{"Research", []string{
		"research", "analysis", "study", "investigate", "explore", "paper",
		"academic", "thesis", "experiment", "hypothesis", "methodology",
		"findings", "conclusion", "literature review", "survey",
	}},
	{"DevOps", []string{
		"docker", "kubernetes", "deployment", "ci/cd", "pipeline", "jenkins",
		"github actions", "aws", "azure", "gcp", "cloud", "infrastructure",
		"terraform", "ansible", "monitoring", "logging", "prometheus", "grafana",
	}},
	{"Architecture", []string{
		"architecture", "design pattern", "microservice", "monolith", "scalability",
		"performance", "optimization", "system design", "distributed", "queue",
		"cache", "load balancer", "api gateway", "service mesh", "event driven",
	}},
}

// Classify maps free text to at most models.MaxTags ranked category
// labels. Score per category is the sum of matched keywords' word
// counts, so multi-word phrases outrank single words: a deliberate
// specificity bonus. Zero-score categories are excluded. The returned
// order is relevance rank and must not be re-sorted downstream.
func Classify(text string) []string {
	content := strings.ToLower(text)

	type scored struct {
		label string
		score int
	}
	var matches []scored

	for _, cat := range categories {
		score := 0
		for _, keyword := range cat.keywords {
			if strings.Contains(content, keyword) {
				score += len(strings.Fields(keyword))
			}
		}
		if score > 0 {
			matches = append(matches, scored{cat.label, score})
		}
	}

	// Stable keeps declaration order on ties
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].score > matches[j].score
	})

	if len(matches) > models.MaxTags {
		matches = matches[:models.MaxTags]
	}
	labels := make([]string, len(matches))
	for i, m := range matches {
		labels[i] = m.label
	}
	return labels
}

// ClassifyConversation scores a conversation's title and preview
func ClassifyConversation(c *models.Conversation) []string {
	return Classify(c.Title + " " + c.Preview)
}

// AllTags returns the set union of tags across conversations, sorted
// alphabetically: a UI-stable order, distinct from the per-conversation
// relevance rank.
func AllTags(convs []models.Conversation) []string {
	seen := make(map[string]bool)
	var all []string
	for _, c := range convs {
		for _, tag := range c.Tags {
			if !seen[tag] {
				seen[tag] = true
				all = append(all, tag)
			}
		}
	}
	sort.Strings(all)
	return all
}

// FilterByTag retains conversations carrying the given tag
func FilterByTag(convs []models.Conversation, tag string) []models.Conversation {
	var filtered []models.Conversation
	for _, c := range convs {
		for _, t := range c.Tags {
			if t == tag {
				filtered = append(filtered, c)
				break
			}
		}
	}
	return filtered
}

// FuzzySearch retains conversations whose combined title, preview, and
// tags contain any whitespace-separated query token (OR semantics,
// literal substring match - despite the name there is no edit-distance
// matching).
func FuzzySearch(convs []models.Conversation, query string) []models.Conversation {
	words := strings.Fields(strings.ToLower(query))
	if len(words) == 0 {
		return convs
	}

	var matched []models.Conversation
	for _, c := range convs {
		haystack := strings.ToLower(c.Title + " " + c.Preview + " " + strings.Join(c.Tags, " "))
		for _, word := range words {
			if strings.Contains(haystack, word) {
				matched = append(matched, c)
				break
			}
		}
	}
	return matched
}
