package usecases

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/0xcro3dile/courserag/internal/domain/entities"
	"github.com/0xcro3dile/courserag/internal/domain/ports"
)

// RefusalPhrase is what the model must say when the context has no answer.
// It is the only variant the prompt asks for.
const RefusalPhrase = "I can only answer based on the provided data."

// refusalMarkers are matched as substrings; the second catches models that
// paraphrase the instruction instead of quoting it.
var refusalMarkers = []string{
	"I can only answer based on the provided data",
	"not in the context",
}

// IsRefusal reports whether text carries the insufficient-context signal.
func IsRefusal(text string) bool {
	for _, m := range refusalMarkers {
		if strings.Contains(text, m) {
			return true
		}
	}
	return false
}

// groundedTag is the trailer line the prompt asks the model to end with.
var groundedTag = regexp.MustCompile(`(?im)^[ \t]*GROUNDED:[ \t]*(yes|no)[ \t]*$`)

// parseGrounded strips the trailer and reports its value. found is false when
// the model omitted it.
func parseGrounded(text string) (body string, grounded, found bool) {
	locs := groundedTag.FindAllStringSubmatchIndex(text, -1)
	if len(locs) == 0 {
		return strings.TrimSpace(text), false, false
	}
	last := locs[len(locs)-1]
	grounded = strings.EqualFold(text[last[2]:last[3]], "yes")
	body = strings.TrimSpace(text[:last[0]] + text[last[1]:])
	return body, grounded, true
}

// AnswerSynthesizer answers a query strictly from retrieved context.
type AnswerSynthesizer struct {
	llm     ports.LLMService
	persona string
}

// NewAnswerSynthesizer creates a synthesizer. persona names the assistant,
// e.g. "a helpful assistant for Boss Wallah courses".
func NewAnswerSynthesizer(llm ports.LLMService, persona string) *AnswerSynthesizer {
	if persona == "" {
		persona = "a helpful assistant for the course catalog"
	}
	return &AnswerSynthesizer{llm: llm, persona: persona}
}

// Synthesize issues exactly one generation call. The answer is grounded only
// when the model's GROUNDED trailer (if any) says yes and the text carries no
// refusal marker.
func (s *AnswerSynthesizer) Synthesize(ctx context.Context, query string, rc entities.RetrievedContext) (entities.Answer, error) {
	raw, err := s.llm.Generate(ctx, s.buildPrompt(query, rc))
	if err != nil {
		return entities.Answer{}, &GenerationError{Err: err}
	}

	text, grounded, tagged := parseGrounded(raw)
	if text == "" {
		return entities.Answer{}, &GenerationError{Err: errors.New("model returned no answer text")}
	}
	if !tagged {
		grounded = true
	}
	if IsRefusal(text) {
		grounded = false
	}
	if !grounded && !IsRefusal(text) {
		text = RefusalPhrase
	}
	return entities.Answer{Text: text, Grounded: grounded}, nil
}

// buildPrompt creates the LLM prompt with context.
func (s *AnswerSynthesizer) buildPrompt(query string, rc entities.RetrievedContext) string {
	var sb strings.Builder
	sb.WriteString("You are ")
	sb.WriteString(s.persona)
	sb.WriteString(". Use only the provided context to answer questions about courses. ")
	sb.WriteString("If the information isn't in the context, reply exactly: \"")
	sb.WriteString(RefusalPhrase)
	sb.WriteString("\"\nEnd your reply with a final line \"GROUNDED: yes\" if the answer comes from the context, otherwise \"GROUNDED: no\".")
	sb.WriteString("\n\nContext: ")
	sb.WriteString(rc.String())
	sb.WriteString("\n\nQuestion: ")
	sb.WriteString(query)
	return sb.String()
}
