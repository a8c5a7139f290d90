package agent

import (
	"fmt"
	"strings"

	errorskg "github.com/sweetpotato0/chainsocket/errors"
	"github.com/sweetpotato0/chainsocket/prompt"
)

// LastLine returns text unchanged when it has no line break, otherwise its final line.
func LastLine(text string) string {
	text = strings.TrimSuffix(text, "\n")
	if i := strings.LastIndexByte(text, '\n'); i >= 0 {
		return strings.TrimSuffix(text[i+1:], "\r")
	}
	return text
}

// afterLastColon returns the last line's text following its last colon, with
// one leading space removed. Both extractors go through it.
func afterLastColon(text string) string {
	line := LastLine(text)
	if i := strings.LastIndexByte(line, ':'); i >= 0 {
		line = line[i+1:]
	}
	return strings.TrimPrefix(line, " ")
}

// ExtractFollowUpQuestion returns the question asked on the last line of text.
// The line must carry the follow-up marker and end with a question mark.
func ExtractFollowUpQuestion(text string) (string, error) {
	line := LastLine(text)
	if !strings.Contains(line, prompt.FollowUpMarker) {
		return "", fmt.Errorf("%w: no follow-up marker in %q", errorskg.ErrMalformedReasoning, line)
	}
	question := afterLastColon(line)
	if !strings.HasSuffix(question, "?") {
		return "", fmt.Errorf("%w: follow-up %q is not a question", errorskg.ErrMalformedReasoning, question)
	}
	return question, nil
}

// ExtractFinalAnswer returns the answer on the last line of text with the
// label and one trailing period removed.
func ExtractFinalAnswer(text string) string {
	return strings.TrimSuffix(afterLastColon(text), ".")
}
