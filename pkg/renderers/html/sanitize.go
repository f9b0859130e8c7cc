package html

import (
	"regexp"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	labelPolicyOnce sync.Once
	labelPolicy     *bluemonday.Policy

	attributeName = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_:.-]*$`)
)

// sanitizeLabel keeps inline formatting in variable descriptions and strips
// everything else.
func sanitizeLabel(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	return strings.TrimSpace(labelSanitizer().Sanitize(trimmed))
}

func labelSanitizer() *bluemonday.Policy {
	labelPolicyOnce.Do(func() {
		policy := bluemonday.StrictPolicy()
		policy.AllowElements("b", "strong", "i", "em", "u", "small", "sub", "sup", "br", "span", "abbr")
		policy.AllowAttrs("title").OnElements("abbr", "span")
		policy.AllowAttrs("class").OnElements("span")
		labelPolicy = policy
	})
	return labelPolicy
}

// safeAttribute rejects passthrough keys that are not plain attribute names,
// along with event handlers.
func safeAttribute(name string) bool {
	if !attributeName.MatchString(name) {
		return false
	}
	return !strings.HasPrefix(strings.ToLower(name), "on")
}
