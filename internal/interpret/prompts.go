package interpret

import (
	"fmt"
	"strings"

	"github.com/Lin-Jiong-HDU/nlsh/internal/intent"
)

const interpretPrompt = `You are an NLP engine for a terminal assistant.
Extract intent and entities from the user's sentence.

Allowed intents:
%s

Sentence: %q

Return ONLY valid JSON with this structure:
{
  "intent": "INTENT_NAME",
  "entities": {
    "name": "filename or foldername",
    "source": "source_path",
    "destination": "dest_path"
  },
  "confidence": 0.0 to 1.0 (float)
}
`

const suggestPrompt = `A user entered the following ambiguous command: %q

Allowed intents:
%s

Suggest up to %d possible intended actions.
Return ONLY a JSON array:
[
  {
    "intent": "INTENT_NAME",
    "entities": { "source": "", "destination": "", "name": "" },
    "description": "Short human readable description"
  }
]
`

const explainErrorPrompt = `You are a terminal expert assistant.

A command was executed and failed.

Command:
%s

Error output:
%s

Explain:
- What the error means
- Why it happened
- One or two suggestions to fix it

Do NOT suggest dangerous commands.
Do NOT execute anything.
Keep it concise and helpful.
`

const explainPrompt = "Explain the terminal command '%s' simply and briefly."

const teachPrompt = "Teach a beginner how to use '%s' in the terminal. Provide examples."

// vocabularyList renders intents four per line.
func vocabularyList(vocab []intent.Intent) string {
	var lines []string
	for i := 0; i < len(vocab); i += 4 {
		end := i + 4
		if end > len(vocab) {
			end = len(vocab)
		}
		parts := make([]string, 0, 4)
		for _, in := range vocab[i:end] {
			parts = append(parts, in.String())
		}
		lines = append(lines, strings.Join(parts, ", "))
	}
	return strings.Join(lines, ",\n")
}

func buildInterpretPrompt(vocab []intent.Intent, text string) string {
	return fmt.Sprintf(interpretPrompt, vocabularyList(vocab), text)
}

func buildSuggestPrompt(vocab []intent.Intent, text string, max int) string {
	return fmt.Sprintf(suggestPrompt, text, vocabularyList(vocab), max)
}
