package nlp

import (
	"context"
	"regexp"
	"sort"

	"github.com/jdkato/prose/v2"

	"github.com/turtacn/EcoExpand-AI/pkg/errors"
)

// Token is a word with its Penn Treebank part-of-speech tag.
type Token struct {
	Text string
	Tag  string
}

// Entity is a labelled span of text.
type Entity struct {
	Text  string
	Label string
}

// Document is the annotator's view of a text.
type Document struct {
	Tokens    []Token
	Sentences []string
	Entities  []Entity
}

// Annotator tags, segments and runs entity recognition over text.
type Annotator interface {
	Annotate(ctx context.Context, text string) (*Document, error)
}

// ProseAnnotator annotates with prose's bundled English models and adds
// pattern-based MONEY and DATE entities, which the bundled model does not emit.
type ProseAnnotator struct{}

// NewProseAnnotator returns the default annotator.
func NewProseAnnotator() *ProseAnnotator { return &ProseAnnotator{} }

var (
	moneyPattern = regexp.MustCompile(`(?i)(?:[$€£₹]\s?\d(?:[\d,]*\d)?(?:\.\d+)?(?:\s?(?:million|billion|thousand|k|m|bn)\b)?|\b\d(?:[\d,]*\d)?(?:\.\d+)?\s?(?:usd|eur|inr|dollars|euros|rupees)\b)`)
	datePattern  = regexp.MustCompile(`(?i)\b(?:(?:jan(?:uary)?|feb(?:ruary)?|mar(?:ch)?|apr(?:il)?|may|jun(?:e)?|jul(?:y)?|aug(?:ust)?|sep(?:tember)?|oct(?:ober)?|nov(?:ember)?|dec(?:ember)?)(?:\s+\d{1,2}(?:st|nd|rd|th)?)?,?\s+\d{4}|\d{4}-\d{2}-\d{2}|(?:19|20)\d{2})\b`)
)

func (a *ProseAnnotator) Annotate(ctx context.Context, text string) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Upstream(err, "annotation cancelled")
	}
	doc, err := prose.NewDocument(text)
	if err != nil {
		return nil, errors.Upstream(err, "text annotation failed")
	}

	out := &Document{}
	for _, tok := range doc.Tokens() {
		out.Tokens = append(out.Tokens, Token{Text: tok.Text, Tag: tok.Tag})
	}
	for _, s := range doc.Sentences() {
		out.Sentences = append(out.Sentences, s.Text)
	}
	for _, ent := range doc.Entities() {
		out.Entities = append(out.Entities, Entity{Text: ent.Text, Label: ent.Label})
	}
	out.Entities = append(out.Entities, patternEntities(text)...)
	return out, nil
}

// patternEntities finds MONEY and DATE spans, returned in text order.
func patternEntities(text string) []Entity {
	type span struct {
		start int
		ent   Entity
	}
	var spans []span
	money := moneyPattern.FindAllStringIndex(text, -1)
	for _, loc := range money {
		spans = append(spans, span{loc[0], Entity{Text: text[loc[0]:loc[1]], Label: "MONEY"}})
	}
	for _, loc := range datePattern.FindAllStringIndex(text, -1) {
		if overlaps(loc, money) {
			continue
		}
		spans = append(spans, span{loc[0], Entity{Text: text[loc[0]:loc[1]], Label: "DATE"}})
	}
	sort.SliceStable(spans, func(i, j int) bool { return spans[i].start < spans[j].start })

	out := make([]Entity, len(spans))
	for i, s := range spans {
		out[i] = s.ent
	}
	return out
}

func overlaps(loc []int, others [][]int) bool {
	for _, o := range others {
		if loc[0] < o[1] && o[0] < loc[1] {
			return true
		}
	}
	return false
}
