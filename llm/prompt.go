package llm

import (
	"fmt"
	"strings"
)

const correctSystem = `You proofread text taken from a help guide.
Fix grammar and spelling only. Keep every line prefix (h1:, h2:, h3:, "> ", "- ", "|") and every line break exactly as given.
Respond with only the corrected text.`

const guideSystem = `The user message is an article from a help guide.`

const keywordsPrompt = `List the search keywords a user might type that this article directly answers.
Respond with only a JSON array of strings.`

const questionsPrompt = `List every simple question a user might ask that this article directly answers.
Respond with only a JSON array of strings, one question per entry.`

const questionsCheck = `Do these questions accurately cover the content of the article? Respond with only True or False.`

const groundedSystem = `Answer using no information other than the given source text.`

const canAnswerPrompt = `Using no other information than the source text, do you have the information needed to answer the question? Respond with only True or False.`

const scorePrompt = `Score how relevant the source text is to the question on a scale from 0 to 10.
0 means the text is irrelevant. 10 means it answers the question completely.
The score is lower when the text contains unrelated material or not enough information.
Respond with only the integer score.`

const answerPrompt = `Answer the question. Reuse the exact wording of the source text wherever possible.`

func article(text string) string {
	return "<article>\n" + text + "\n</article>"
}

func relevanceQuestion(question, text string) string {
	return fmt.Sprintf("<source>\n%s\n</source>\n\n<question>%s</question>\n\n%s", text, question, canAnswerPrompt)
}

func contextQuestion(query string, contexts ...string) string {
	var sb strings.Builder
	for i, c := range contexts {
		tag := "source"
		if i > 0 {
			tag = "highlight"
		}
		fmt.Fprintf(&sb, "<%s>\n%s\n</%s>\n\n", tag, c, tag)
	}
	fmt.Fprintf(&sb, "<question>%s</question>\n\n%s", query, canAnswerPrompt)
	return sb.String()
}
