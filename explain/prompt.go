package explain

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/invopop/jsonschema"
)

const systemPrompt = "You are a bilingual (English/French) accessibility expert for AODA compliance in Ontario, Canada. " +
	"Answer with a single JSON object and nothing else."

const narrationSystemPrompt = "You are a screen reader. Describe web content exactly as assistive technology would announce it."

// maxNarrationInput bounds the markdown sent for narration.
const maxNarrationInput = 6000

// ExplanationPrompt renders the user prompt for one violation.
func ExplanationPrompt(req Request) string {
	var b strings.Builder
	b.WriteString("You are a bilingual (English/French) accessibility expert for AODA compliance in Ontario, Canada.\n\n")
	fmt.Fprintf(&b, "Page URL: %s\n", req.URL)
	fmt.Fprintf(&b, "Issue: %s – %s\n", req.RuleID, req.Description)
	fmt.Fprintf(&b, "HTML snippet:\n%s\n\n", req.HTML)
	b.WriteString(`Respond in this EXACT JSON format:
{
  "explanation": "Plain-language English explanation of the issue and who it affects",
  "explanationFr": "Explication en français",
  "fixSample": "Corrected HTML code",
  "screenReaderNarration": "What a screen reader currently announces for this element",
  "wcagCriteria": "WCAG success criterion reference, e.g. 1.1.1 Non-text Content (Level A)",
  "aodaImpact": "How this affects AODA compliance",
  "priority": "critical|high|medium|low",
  "businessImpact": "Impact on Ontario businesses and their customers"
}`)
	return b.String()
}

// NarrationPrompt renders the user prompt for a screen-reader narration.
func NarrationPrompt(pageTitle, content string) string {
	if len(content) > maxNarrationInput {
		n := maxNarrationInput
		for n > 0 && !utf8.RuneStart(content[n]) {
			n--
		}
		content = content[:n]
	}
	return fmt.Sprintf("Page title: %s\n\nGenerate a screen reader narration of the following content. "+
		"Announce headings, links, images and form controls the way a screen reader would.\n\n%s", pageTitle, content)
}

// explanationSchema mirrors report.Explanation for structured output.
type explanationSchema struct {
	Explanation           string `json:"explanation" jsonschema:"description=Plain-language English explanation"`
	ExplanationFr         string `json:"explanationFr" jsonschema:"description=French explanation"`
	FixSample             string `json:"fixSample" jsonschema:"description=Corrected HTML code"`
	ScreenReaderNarration string `json:"screenReaderNarration"`
	WCAGCriteria          string `json:"wcagCriteria"`
	AODAImpact            string `json:"aodaImpact"`
	Priority              string `json:"priority" jsonschema:"enum=critical,enum=high,enum=medium,enum=low"`
	BusinessImpact        string `json:"businessImpact"`
}

// ExplanationSchema is the JSON schema of the expected answer.
func ExplanationSchema() any {
	r := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	return r.Reflect(&explanationSchema{})
}
