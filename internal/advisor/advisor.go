// Package advisor derives tuning and maintenance suggestions from registry
// population reports.
package advisor

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/objectregistry/pkg/model"
	"github.com/objectregistry/pkg/registry"
)

// Advisor generates suggestions based on a population report.
type Advisor struct {
	rules []Rule
}

// Rule represents a suggestion rule.
type Rule struct {
	Name        string
	Description string
	Threshold   float64
	Check       RuleCheckFunc
}

// RuleCheckFunc checks whether a rule applies. It receives its own rule so
// the threshold can be tuned without touching the check.
type RuleCheckFunc func(ctx *RuleContext, rule Rule) []model.Suggestion

// RuleContext provides context for rule checking.
type RuleContext struct {
	Report *model.PopulationReport
}

// NewAdvisor creates a new Advisor with default rules.
func NewAdvisor() *Advisor {
	return &Advisor{
		rules: defaultRules(),
	}
}

// NewAdvisorWithRules creates a new Advisor with custom rules.
func NewAdvisorWithRules(rules []Rule) *Advisor {
	return &Advisor{
		rules: rules,
	}
}

// Advise generates suggestions based on the rule context. Every suggestion
// carries the report's run UUID.
func (a *Advisor) Advise(ctx *RuleContext) []model.Suggestion {
	suggestions := make([]model.Suggestion, 0)
	if ctx == nil || ctx.Report == nil {
		return suggestions
	}

	for _, rule := range a.rules {
		if rule.Check == nil {
			continue
		}
		for _, s := range rule.Check(ctx, rule) {
			s.Rule = rule.Name
			s.RunUUID = ctx.Report.RunUUID
			suggestions = append(suggestions, s)
		}
	}

	return suggestions
}

// defaultRules returns the default set of rules.
func defaultRules() []Rule {
	return []Rule{
		{
			Name:        "verify_failure",
			Description: "Check whether the dual index failed verification",
			Check:       checkVerifyFailure,
		},
		{
			Name:        "orphan_ratio",
			Description: "Check for a high share of orphaned entries",
			Threshold:   0.25,
			Check:       checkOrphanRatio,
		},
		{
			Name:        "growth_disabled",
			Description: "Check for a table past its nominal capacity at maximum length",
			Threshold:   1.0,
			Check:       checkGrowthDisabled,
		},
		{
			Name:        "long_buckets",
			Description: "Check for buckets much longer than the density implies",
			Threshold:   8,
			Check:       checkLongBuckets,
		},
		{
			Name:        "sparse_table",
			Description: "Check for a table that could shrink",
			Threshold:   0.25,
			Check:       checkSparseTable,
		},
		{
			Name:        "unmapped_types",
			Description: "Check for live objects whose type has no type id",
			Check:       checkUnmappedTypes,
		},
		{
			Name:        "hollow_backlog",
			Description: "Check for reserved ids that were never bound",
			Threshold:   1.0,
			Check:       checkHollowBacklog,
		},
	}
}

func checkVerifyFailure(ctx *RuleContext, _ Rule) []model.Suggestion {
	if ctx.Report.VerifyError == "" {
		return nil
	}
	return []model.Suggestion{
		model.NewSuggestionBuilder().
			WithSeverity(model.SeverityCritical).
			WithSuggestion("Registry index verification failed: " + ctx.Report.VerifyError).
			WithTarget("registry").
			Build(),
	}
}

func checkOrphanRatio(ctx *RuleContext, rule Rule) []model.Suggestion {
	states := ctx.Report.States
	ratio := states.OrphanRatio()
	if ratio <= rule.Threshold {
		return nil
	}
	return []model.Suggestion{
		model.NewSuggestionBuilder().
			WithSeverity(model.SeverityWarning).
			WithSuggestion(fmt.Sprintf("%d of %d entries (%s%%) are orphaned, run ClearOrphanEntries more often",
				states.Orphan, states.Total(), formatPercent(ratio*100))).
			WithTarget("registry").
			Build(),
	}
}

func checkGrowthDisabled(ctx *RuleContext, rule Rule) []model.Suggestion {
	r := ctx.Report
	if !r.GrowthDisabled || r.LoadFactor <= rule.Threshold {
		return nil
	}
	return []model.Suggestion{
		model.NewSuggestionBuilder().
			WithSeverity(model.SeverityCritical).
			WithSuggestion(fmt.Sprintf("Table is at its maximum length with load factor %s, buckets are lengthening; raise the hash density or shard the registry",
				formatPercent(r.LoadFactor))).
			WithTarget("registry").
			Build(),
	}
}

func checkLongBuckets(ctx *RuleContext, rule Rule) []model.Suggestion {
	r := ctx.Report
	limit := rule.Threshold * max(r.HashDensity, 1)

	suggestions := make([]model.Suggestion, 0)
	if float64(r.LongestIDBucket) > limit {
		suggestions = append(suggestions, model.NewSuggestionBuilder().
			WithSeverity(model.SeverityWarning).
			WithSuggestion(fmt.Sprintf("Longest id bucket holds %d entries, ids may share low bits", r.LongestIDBucket)).
			WithTarget("id_index").
			Build())
	}
	if float64(r.LongestHashBucket) > limit {
		suggestions = append(suggestions, model.NewSuggestionBuilder().
			WithSeverity(model.SeverityWarning).
			WithSuggestion(fmt.Sprintf("Longest identity bucket holds %d entries", r.LongestHashBucket)).
			WithTarget("identity_index").
			Build())
	}
	return suggestions
}

func checkSparseTable(ctx *RuleContext, rule Rule) []model.Suggestion {
	r := ctx.Report
	if r.SlotLength <= registry.MinSlotLength || r.LoadFactor >= rule.Threshold {
		return nil
	}
	return []model.Suggestion{
		model.NewSuggestionBuilder().
			WithSeverity(model.SeverityInfo).
			WithSuggestion(fmt.Sprintf("Load factor is %s at %d slots, Shrink would release memory",
				formatPercent(r.LoadFactor), r.SlotLength)).
			WithTarget("registry").
			Build(),
	}
}

func checkUnmappedTypes(ctx *RuleContext, _ Rule) []model.Suggestion {
	r := ctx.Report
	if r.UnmappedTypes == 0 {
		return nil
	}
	return []model.Suggestion{
		model.NewSuggestionBuilder().
			WithSeverity(model.SeverityInfo).
			WithSuggestion(fmt.Sprintf("%d of %d live object types have no registered type id", r.UnmappedTypes, r.DistinctTypes)).
			WithTarget("type_dictionary").
			Build(),
	}
}

func checkHollowBacklog(ctx *RuleContext, rule Rule) []model.Suggestion {
	states := ctx.Report.States
	if states.Hollow == 0 || float64(states.Hollow) <= rule.Threshold*float64(states.Live) {
		return nil
	}
	return []model.Suggestion{
		model.NewSuggestionBuilder().
			WithSeverity(model.SeverityInfo).
			WithSuggestion(fmt.Sprintf("%d reserved ids outnumber %d live objects", states.Hollow, states.Live)).
			WithTarget("registry").
			Build(),
	}
}

// formatPercent formats a value with up to two decimals.
func formatPercent(pct float64) string {
	s := strconv.FormatFloat(pct, 'f', 2, 64)
	s = strings.TrimRight(s, "0")
	s = strings.TrimRight(s, ".")
	return s
}
