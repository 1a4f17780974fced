package chat

import (
	"regexp"
	"strings"

	"github.com/ntarasov/finchat/internal/category"
	"github.com/ntarasov/finchat/internal/domain"
)

// Transcript scanning helpers. All of them are pure functions over the
// ordered turn slice: they walk from the newest turn to the oldest and
// stop at the first turn that satisfies the predicate, returning ok
// false when the whole transcript is exhausted.

var bareNumberPattern = regexp.MustCompile(`^[\s$€£]*\d+(?:[.,]\d+)?[\s]*$`)

// acknowledgements are turns that carry no content of their own; the
// scans skip them so "yes" never becomes a description.
var acknowledgements = map[string]bool{
	"yes": true, "yep": true, "yeah": true, "y": true, "sure": true,
	"ok": true, "okay": true, "confirm": true, "confirmed": true,
	"no": true, "nope": true, "correct": true, "right": true,
	"sounds good": true, "go ahead": true, "do it": true, "please": true,
	"yes please": true, "that's right": true, "thanks": true, "thank you": true,
}

func isAcknowledgement(text string) bool {
	cleaned := strings.ToLower(strings.TrimSpace(text))
	cleaned = strings.Trim(cleaned, ".!,")
	return acknowledgements[cleaned]
}

func isBareNumber(text string) bool {
	return bareNumberPattern.MatchString(strings.TrimSpace(text))
}

// lastCategoryHint walks backward through the transcript and returns
// the text of the most recent turn that named a category, regardless
// of speaker. A turn "names" a category when the category dictionaries
// (merchants, context phrases, synonyms) recognize something in its
// text. Returns ok false when no turn named one.
func lastCategoryHint(transcript domain.Transcript) (string, bool) {
	for i := len(transcript) - 1; i >= 0; i-- {
		text := transcript[i].Text
		if isAcknowledgement(text) || isBareNumber(text) {
			continue
		}
		if _, ok := category.Resolve(text); ok {
			return text, true
		}
	}
	return "", false
}

// lastUserItemHint walks backward through the user turns and returns
// the most recent one that supplied free-text content usable as a
// description seed. Bare numbers and acknowledgements are skipped;
// the scan stops at the first turn with real content.
func lastUserItemHint(transcript domain.Transcript) (string, bool) {
	for i := len(transcript) - 1; i >= 0; i-- {
		if transcript[i].Role != domain.RoleUser {
			continue
		}
		text := strings.TrimSpace(transcript[i].Text)
		if text == "" || isAcknowledgement(text) || isBareNumber(text) {
			continue
		}
		return text, true
	}
	return "", false
}
