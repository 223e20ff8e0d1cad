package web

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/japaniel/milim/pkg/corpus"
)

// OpSubmit is the form operation that submits the draft.
const OpSubmit = "submit"

// maxItems bounds every repeated group decoded from a form.
const maxItems = 50

// The add-word form round-trips the whole draft on every edit. Repeated
// groups are flattened into indexed names, e.g. "form.0.type" or
// "meaning.1.sentence.0.hebrew", and each group carries its length in a
// count field so that empty items survive the round trip.

func countField(v url.Values, key string) int {
	n, err := strconv.Atoi(v.Get(key))
	if err != nil || n < 0 {
		return 0
	}
	return min(n, maxItems)
}

// DecodeDraft rebuilds a draft from posted form values. Missing fields
// decode as empty strings; a missing id gets a fresh one.
func DecodeDraft(v url.Values) *corpus.Draft {
	d := corpus.NewDraft()
	if id := strings.TrimSpace(v.Get("id")); id != "" {
		d.Entry.ID = id
	}
	d.Entry.Hebrew = v.Get("hebrew")
	d.Entry.PronunciationText = v.Get("pronunciation_text")
	d.Entry.AudioURL = v.Get("audio_url")
	d.Entry.Note = v.Get("note")

	for i := 0; i < countField(v, "categories"); i++ {
		d.AddCategory()
		d.SetCategory(i, v.Get(fmt.Sprintf("category.%d", i)))
	}
	for i := 0; i < countField(v, "forms"); i++ {
		d.AddForm()
		d.SetForm(i, "type", v.Get(fmt.Sprintf("form.%d.type", i)))
		d.SetForm(i, "text", v.Get(fmt.Sprintf("form.%d.text", i)))
	}

	if _, ok := v["meanings"]; ok {
		d.Entry.Meanings = d.Entry.Meanings[:0]
		for m := 0; m < countField(v, "meanings"); m++ {
			d.AddMeaning()
			prefix := fmt.Sprintf("meaning.%d.", m)
			for _, lang := range []string{corpus.LangEnglish, corpus.LangArabic} {
				for t := 0; t < countField(v, prefix+lang); t++ {
					d.AddTranslation(m, lang)
					d.SetTranslation(m, lang, t, v.Get(fmt.Sprintf("%s%s.%d", prefix, lang, t)))
				}
			}
			for s := 0; s < countField(v, prefix+"sentences"); s++ {
				d.AddSentence(m)
				for _, field := range sentenceFields {
					d.SetSentence(m, s, field, v.Get(fmt.Sprintf("%ssentence.%d.%s", prefix, s, field)))
				}
			}
		}
	}
	return d
}

var sentenceFields = []string{
	corpus.SentenceHebrew,
	corpus.SentenceTranslationEnglish,
	corpus.SentenceTranslationArabic,
	corpus.SentenceWordToHighlight,
}

// ApplyOp performs a structural edit on the draft. Operations look like
// "add-form", "remove-category:2", "add-english:0" or "remove-sentence:1:0",
// where the arguments are the meaning index followed by the item index.
// An empty op only re-renders the draft.
func ApplyOp(d *corpus.Draft, op string) error {
	if op == "" {
		return nil
	}
	name, rest, _ := strings.Cut(op, ":")
	var args []int
	if rest != "" {
		for _, a := range strings.Split(rest, ":") {
			n, err := strconv.Atoi(a)
			if err != nil {
				return fmt.Errorf("invalid operation %q", op)
			}
			args = append(args, n)
		}
	}
	need := func(n int) error {
		if len(args) != n {
			return fmt.Errorf("invalid operation %q", op)
		}
		return nil
	}

	switch name {
	case "add-category", "add-form", "add-meaning":
		if err := need(0); err != nil {
			return err
		}
		switch name {
		case "add-category":
			d.AddCategory()
		case "add-form":
			d.AddForm()
		default:
			d.AddMeaning()
		}
	case "remove-category", "remove-form", "remove-meaning", "add-english", "add-arabic", "add-sentence":
		if err := need(1); err != nil {
			return err
		}
		switch name {
		case "remove-category":
			d.RemoveCategory(args[0])
		case "remove-form":
			d.RemoveForm(args[0])
		case "remove-meaning":
			d.RemoveMeaning(args[0])
		case "add-english":
			d.AddTranslation(args[0], corpus.LangEnglish)
		case "add-arabic":
			d.AddTranslation(args[0], corpus.LangArabic)
		default:
			d.AddSentence(args[0])
		}
	case "remove-english", "remove-arabic", "remove-sentence":
		if err := need(2); err != nil {
			return err
		}
		switch name {
		case "remove-english":
			d.RemoveTranslation(args[0], corpus.LangEnglish, args[1])
		case "remove-arabic":
			d.RemoveTranslation(args[0], corpus.LangArabic, args[1])
		default:
			d.RemoveSentence(args[0], args[1])
		}
	default:
		return fmt.Errorf("unknown operation %q", op)
	}
	return nil
}
