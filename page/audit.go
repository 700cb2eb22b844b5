package page

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// ScriptRunner is the subset of a browser session the audit needs.
type ScriptRunner interface {
	ExecuteScript(ctx context.Context, script string, args ...interface{}) (json.RawMessage, error)
}

// Severity ranks how serious an accessibility violation is.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeveritySerious  Severity = "serious"
	SeverityModerate Severity = "moderate"
	SeverityMinor    Severity = "minor"
)

// Violation is one accessibility rule violation found on a page.
type Violation struct {
	RuleID   string   `json:"rule"`
	Severity Severity `json:"severity"`
	// Selector locates the offending element.
	Selector string `json:"selector"`
}

// AuditResult is the immutable outcome of one accessibility scan of a page's
// DOM state.
type AuditResult struct {
	Violations []Violation
	CheckedAt  time.Time
}

// OK returns true if the audit found no violations.
func (r AuditResult) OK() bool { return len(r.Violations) == 0 }

// Rules selects which audit rules apply. An empty Include list means all
// rules; Exclude is applied afterwards.
type Rules struct {
	Include []string `yaml:"include"`
	Exclude []string `yaml:"exclude"`
}

func (r Rules) allows(ruleID string) bool {
	if len(r.Include) > 0 {
		found := false
		for _, id := range r.Include {
			if id == ruleID {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	for _, id := range r.Exclude {
		if id == ruleID {
			return false
		}
	}
	return true
}

// AuditError indicates that the audit computation itself failed (script error,
// undecodable result), as opposed to the audit finding violations.
type AuditError struct {
	Message string
	wrapped error
}

func (e *AuditError) Error() string {
	return fmt.Sprintf("accessibility audit failed: %s", e.Message)
}

func (e *AuditError) Unwrap() error { return e.wrapped }

// auditScript is the scan injected into the page. It covers a small set of
// WCAG checks that need no external library and reports each violation with a
// selector for the offending element.
const auditScript = `
var violations = [];
function cssPath(el) {
  if (el.id) { return '#' + el.id; }
  var path = el.tagName.toLowerCase();
  var parent = el.parentElement;
  if (parent) {
    var siblings = parent.querySelectorAll(path);
    if (siblings.length > 1) {
      path += ':nth-of-type(' + (Array.prototype.indexOf.call(parent.children, el) + 1) + ')';
    }
  }
  return path;
}
function report(rule, severity, el) {
  violations.push({rule: rule, severity: severity, selector: cssPath(el)});
}
if (!document.documentElement.getAttribute('lang')) {
  report('html-has-lang', 'serious', document.documentElement);
}
document.querySelectorAll('img:not([alt])').forEach(function(el) {
  report('image-alt', 'critical', el);
});
document.querySelectorAll('a[href]').forEach(function(el) {
  if (!el.textContent.trim() && !el.getAttribute('aria-label') && !el.getAttribute('title')) {
    report('link-name', 'serious', el);
  }
});
document.querySelectorAll('button').forEach(function(el) {
  if (!el.textContent.trim() && !el.getAttribute('aria-label')) {
    report('button-name', 'critical', el);
  }
});
document.querySelectorAll('input:not([type=hidden]):not([type=button]):not([type=submit])').forEach(function(el) {
  var id = el.getAttribute('id');
  var hasLabel = id && document.querySelector('label[for="' + id + '"]');
  if (!hasLabel && !el.getAttribute('aria-label') && !el.getAttribute('aria-labelledby')) {
    report('label', 'critical', el);
  }
});
var seen = {};
document.querySelectorAll('[id]').forEach(function(el) {
  var id = el.getAttribute('id');
  if (seen[id]) { report('duplicate-id', 'moderate', el); }
  seen[id] = true;
});
return violations;
`

// Audit runs the accessibility scan against the page currently loaded in the
// session and returns the filtered result.
func Audit(ctx context.Context, runner ScriptRunner, rules Rules) (AuditResult, error) {
	raw, err := runner.ExecuteScript(ctx, auditScript)
	if err != nil {
		return AuditResult{}, &AuditError{Message: err.Error(), wrapped: err}
	}

	var all []Violation
	if err := json.Unmarshal(raw, &all); err != nil {
		return AuditResult{}, &AuditError{Message: fmt.Sprintf("undecodable audit result: %s", err), wrapped: err}
	}

	result := AuditResult{CheckedAt: time.Now()}
	for _, v := range all {
		if rules.allows(v.RuleID) {
			result.Violations = append(result.Violations, v)
		}
	}
	return result, nil
}
