package suggest

import (
	"fmt"

	"cinemuse/models"
)

const (
	zhInstruction = "The movie titles should be in their original language, but prioritize well-known Chinese films if relevant."
	enInstruction = "The movie titles should be in their original English language, or the most common English title."
)

func languageInstruction(lang models.Language) string {
	if lang == models.LanguageChinese {
		return zhInstruction
	}
	return enInstruction
}

func buildPrompt(userPrompt string, lang models.Language, mode Mode) string {
	if mode == ModeText {
		return fmt.Sprintf(`Based on the user's request, suggest 3-4 movies. Reply with one original movie title per line and nothing else: no numbering, no years, no commentary. %s

User's request: "%s"`, languageInstruction(lang), userPrompt)
	}
	return fmt.Sprintf(`Based on the user's request, suggest 3-4 movies. For each movie, provide only its original title and its release year. Do not provide any other information. %s

User's request: "%s"`, languageInstruction(lang), userPrompt)
}
