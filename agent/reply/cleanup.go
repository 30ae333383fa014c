package reply

import (
	"regexp"
	"strings"
)

// Transform is one named step of the output cleanup pipeline. Small
// models degrade in predictable ways; each step undoes one artifact and
// is unit-tested on its own.
type Transform struct {
	Name  string
	Apply func(string) string
}

var whitespaceRe = regexp.MustCompile(`\s+`)

var rolePrefixRe = regexp.MustCompile(`(?i)^(?:(?:user|assistant|system)\s*:\s*)+`)

var emphasisReplacer = strings.NewReplacer("**", "", "__", "", "*", "")

// CleanupPipeline is applied in order by Cleanup.
var CleanupPipeline = []Transform{
	{Name: "collapse_whitespace", Apply: collapseWhitespace},
	{Name: "strip_role_prefixes", Apply: stripRolePrefixes},
	{Name: "strip_markdown_emphasis", Apply: stripMarkdownEmphasis},
	{Name: "collapse_duplicate_words", Apply: collapseDuplicateWords},
}

func Cleanup(text string) string {
	for _, t := range CleanupPipeline {
		text = t.Apply(text)
	}
	return strings.TrimSpace(text)
}

func collapseWhitespace(text string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(text, " "))
}

func stripRolePrefixes(text string) string {
	return rolePrefixRe.ReplaceAllString(text, "")
}

func stripMarkdownEmphasis(text string) string {
	return emphasisReplacer.Replace(text)
}

// collapseDuplicateWords drops a word when it exactly repeats the
// previous one, ignoring case ("the the dress" -> "the dress").
func collapseDuplicateWords(text string) string {
	words := strings.Fields(text)
	if len(words) < 2 {
		return text
	}
	out := words[:1]
	for _, w := range words[1:] {
		if strings.EqualFold(w, out[len(out)-1]) {
			continue
		}
		out = append(out, w)
	}
	return strings.Join(out, " ")
}
