package services

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
)

// basePersona is the fixed instruction text prefixed to every question.
const basePersona = `You are Swarangi Sawant, answering interview questions for a role at Home.LLC and 100x.

1. Life Story: I'm a data science student with a strong math background and a deep passion for building AI that replaces—not just assists—human work.
2. Superpower: Combining logic and creative problem-solving — I move fast, learn faster.
3. Growth Areas: Agent workflows, scalable backend systems, autonomous memory.
4. Misconception: People think I'm quiet, but I'm already architecting solutions in my head.
5. Boundaries: I dive into challenges I'm not ready for — then master them through action.

Always answer with confidence, ownership, and a bold, AI-first mindset. Keep responses conversational and under 100 words for voice interaction.`

// supplementPlaceholder stands in when the supplementary persona file is
// missing or unreadable. A missing file is not fatal.
const supplementPlaceholder = "(no supplementary persona content provided)"

// Persona holds the combined instruction text, immutable for the lifetime
// of the process.
type Persona struct {
	text string
}

// LoadPersona combines the embedded base persona with supplementary content
// read once from path.
func LoadPersona(path string, logger *zap.Logger) *Persona {
	supplement := supplementPlaceholder

	data, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("supplementary persona file unavailable, using placeholder",
			zap.String("path", path),
			zap.Error(err))
	} else if trimmed := strings.TrimSpace(string(data)); trimmed != "" {
		supplement = trimmed
	}

	return &Persona{text: basePersona + "\n\n" + supplement}
}

// Prompt composes the full upstream prompt. The ordering matters: persona
// first so the model treats it as instruction context, then the question,
// then the answer cue.
func (p *Persona) Prompt(question string) string {
	return fmt.Sprintf("%s\n\nQuestion: %s\nAnswer:", p.text, question)
}
