package prompt

import (
	_ "embed"
	"strings"
)

var (
	//go:embed template/router.txt
	routerRaw string

	//go:embed template/reply.txt
	replyRaw string
)

// PromptSet holds loaded prompt content.
type PromptSet struct {
	Router string
	Reply  string
}

// LoadPromptSet returns a PromptSet with trimmed prompt strings. Safe to
// call concurrently; the embed is compile-time and trimming is cheap.
func LoadPromptSet() PromptSet {
	return PromptSet{
		Router: strings.TrimSpace(routerRaw),
		Reply:  strings.TrimSpace(replyRaw),
	}
}
