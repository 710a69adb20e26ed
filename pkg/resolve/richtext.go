package resolve

import (
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	richTextPolicyOnce sync.Once
	richTextPolicy     *bluemonday.Policy
)

// sanitizeRichText strips unsafe markup from rich-text values before they are
// handed to the delegated editor widget or rendered back out.
func sanitizeRichText(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	return strings.TrimSpace(richTextSanitizer().Sanitize(trimmed))
}

func richTextSanitizer() *bluemonday.Policy {
	richTextPolicyOnce.Do(func() {
		policy := bluemonday.UGCPolicy()
		policy.AllowAttrs("class").OnElements("p", "span", "div", "pre", "code")
		richTextPolicy = policy
	})
	return richTextPolicy
}
