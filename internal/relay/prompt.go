package relay

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/mikey/llm-inbox-prioritizer/internal/core"
	"github.com/mikey/llm-inbox-prioritizer/internal/ports"
)

// ErrUnexpectedFormat is returned when the upstream reply is not "yes|no [keywords]"
var ErrUnexpectedFormat = errors.New("unexpected response format")

var verdictPattern = regexp.MustCompile(`(?i)^(yes|no)\s+(\[.*\])$`)

// exampleHistory primes the model with one answered question
var exampleHistory = []ports.Turn{
	{
		Role: ports.RoleUser,
		Text: `These are high priority keywords ["offer", "job"]. This is preview text - "You hae got a job offer". ` +
			`Kindly tell if the preview text is of high priority. ` +
			`Answer yes or no and provide an array of most suitable one or at maximum two keywords matched.`,
	},
	{
		Role: ports.RoleModel,
		Text: `yes ["job", "offer"]`,
	},
}

// BuildPrompt renders the question for one preview
func BuildPrompt(keywords []string, preview string) string {
	encoded, _ := json.Marshal(keywords)
	return fmt.Sprintf("These are high priority keywords %s.\n"+
		"This is preview text - \"%s\".\n"+
		"Kindly tell if the preview text is of high priority. "+
		`Answer "yes" or "no" and provide an array of most suitable one or at maximum two keywords matched.`,
		encoded, preview)
}

// ParseVerdict reads a "yes|no [keywords]" reply. keywordsOK is false when the
// keyword array was not valid JSON; the verdict then carries no keywords.
func ParseVerdict(raw string) (verdict *core.PriorityVerdict, keywordsOK bool, err error) {
	match := verdictPattern.FindStringSubmatch(strings.TrimSpace(raw))
	if match == nil {
		return nil, false, ErrUnexpectedFormat
	}

	verdict = &core.PriorityVerdict{
		IsHighPriority: strings.EqualFold(match[1], "yes"),
		Keywords:       []string{},
	}
	var keywords []string
	if err := json.Unmarshal([]byte(match[2]), &keywords); err != nil {
		return verdict, false, nil
	}
	if keywords != nil {
		verdict.Keywords = keywords
	}
	return verdict, true, nil
}
