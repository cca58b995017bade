package board

import (
	"errors"
	"fmt"
	"regexp"
	"sync"

	internalstrings "github.com/amonks/kanban/internal/strings"
)

// CategoryOther is assigned when no rule matches.
const CategoryOther = "Other"

// ErrInvalidCategoryRule is returned when a category rule cannot be compiled.
var ErrInvalidCategoryRule = errors.New("invalid category rule")

type categoryRule struct {
	tag     string
	pattern *regexp.Regexp
}

// defaultCategoryKeywords lists the built-in rules in match priority order.
var defaultCategoryKeywords = []struct {
	tag      string
	keywords string
}{
	{"bug", "bug|fix|issue|error|crash|broken|failed?"},
	{"design", "design|ui|ux|style|visual|layout|theme"},
	{"docs", "doc|documentation|readme|guide|comment|tutorial"},
	{"refactor", "refactor|refactoring|cleanup|clean|reorganize"},
	{"test", "test|testing|unit test|integration test|e2e|qa|qc"},
	{"performance", "performance|optimize|optimization|speed|memory|profil|benchmark"},
	{"feature", "feature|add|implement|create|enable"},
}

// CategoryDetector tags titles using an ordered list of keyword rules.
// The first matching rule wins.
type CategoryDetector struct {
	mu    sync.RWMutex
	rules []categoryRule
}

// NewCategoryDetector returns a detector loaded with the built-in rules.
func NewCategoryDetector() *CategoryDetector {
	d := &CategoryDetector{}
	for _, rule := range defaultCategoryKeywords {
		d.rules = append(d.rules, categoryRule{
			tag:     rule.tag,
			pattern: regexp.MustCompile(keywordPattern(rule.keywords)),
		})
	}
	return d
}

func keywordPattern(keywords string) string {
	return `(?i)\b(` + keywords + `)\b`
}

// Detect returns the tag of the first rule matching title, or CategoryOther.
func (d *CategoryDetector) Detect(title string) string {
	if internalstrings.IsBlank(title) {
		return CategoryOther
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, rule := range d.rules {
		if rule.pattern.MatchString(title) {
			return rule.tag
		}
	}
	return CategoryOther
}

// AddPattern registers keywords (a regexp alternation such as "deploy|rollback")
// under tag, matched case-insensitively on word boundaries. An existing tag keeps
// its priority and has its pattern replaced; a new tag is tried last.
func (d *CategoryDetector) AddPattern(tag, keywords string) error {
	if internalstrings.IsBlank(keywords) {
		return fmt.Errorf("%w: keywords for %q cannot be empty", ErrInvalidCategoryRule, tag)
	}
	pattern, err := regexp.Compile(keywordPattern(keywords))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidCategoryRule, err)
	}
	return d.AddRegexp(tag, pattern)
}

// AddRegexp is AddPattern for a precompiled pattern.
func (d *CategoryDetector) AddRegexp(tag string, pattern *regexp.Regexp) error {
	tag = internalstrings.TrimSpace(tag)
	if tag == "" || tag == CategoryOther {
		return fmt.Errorf("%w: tag %q", ErrInvalidCategoryRule, tag)
	}
	if pattern == nil {
		return fmt.Errorf("%w: nil pattern for %q", ErrInvalidCategoryRule, tag)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	for i := range d.rules {
		if d.rules[i].tag == tag {
			d.rules[i].pattern = pattern
			return nil
		}
	}
	d.rules = append(d.rules, categoryRule{tag: tag, pattern: pattern})
	return nil
}

// Categories returns every tag in rule order, followed by CategoryOther.
func (d *CategoryDetector) Categories() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	tags := make([]string, 0, len(d.rules)+1)
	for _, rule := range d.rules {
		tags = append(tags, rule.tag)
	}
	return append(tags, CategoryOther)
}
