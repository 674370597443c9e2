// Package nlp implements the text endpoints: key-phrase extraction,
// extractive summarization and entity-based insights.
package nlp

import (
	"context"
	"regexp"
	"sort"
	"strings"

	"github.com/turtacn/EcoExpand-AI/internal/config"
	"github.com/turtacn/EcoExpand-AI/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/EcoExpand-AI/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/EcoExpand-AI/pkg/errors"
)

// Phrase is a key phrase and how often it occurs.
type Phrase struct {
	Phrase string `json:"phrase"`
	Count  int    `json:"count"`
}

// Insight is an entity kept by the insight label filter.
type Insight struct {
	Text string `json:"text"`
	Type string `json:"type"`
}

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	nonWord       = regexp.MustCompile(`[^\p{L}\p{N}_\s]`)
)

// Preprocess collapses whitespace, strips punctuation and lowercases text.
func Preprocess(text string) string {
	text = whitespaceRun.ReplaceAllString(text, " ")
	text = nonWord.ReplaceAllString(text, "")
	return strings.ToLower(text)
}

// Analyzer runs the text operations on top of an Annotator.
type Analyzer struct {
	annotator Annotator
	cfg       config.NLPConfig
	labels    map[string]struct{}
	logger    logging.Logger
	metrics   *prometheus.AppMetrics
}

// NewAnalyzer returns an Analyzer. Zero values in cfg select the defaults.
func NewAnalyzer(annotator Annotator, cfg config.NLPConfig, logger logging.Logger, metrics *prometheus.AppMetrics) *Analyzer {
	if cfg.KeyPhraseTopN <= 0 {
		cfg.KeyPhraseTopN = config.DefaultKeyPhraseTopN
	}
	if cfg.SummarySentences <= 0 {
		cfg.SummarySentences = config.DefaultSummarySentences
	}
	if len(cfg.InsightLabels) == 0 {
		cfg.InsightLabels = append([]string(nil), config.DefaultInsightLabels...)
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	labels := make(map[string]struct{}, len(cfg.InsightLabels))
	for _, l := range cfg.InsightLabels {
		labels[strings.ToUpper(l)] = struct{}{}
	}
	return &Analyzer{annotator: annotator, cfg: cfg, labels: labels, logger: logger, metrics: metrics}
}

// KeyPhrases returns the most frequent nouns and verbs of text, excluding
// stopwords. Equal counts keep first-seen order.
func (a *Analyzer) KeyPhrases(ctx context.Context, text string) ([]Phrase, error) {
	doc, err := a.annotate(ctx, "key_phrases", Preprocess(text))
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	var order []string
	for _, tok := range doc.Tokens {
		if !strings.HasPrefix(tok.Tag, "NN") && !strings.HasPrefix(tok.Tag, "VB") {
			continue
		}
		w := strings.ToLower(tok.Text)
		if w == "" || IsStopword(w) {
			continue
		}
		if counts[w] == 0 {
			order = append(order, w)
		}
		counts[w]++
	}

	phrases := make([]Phrase, len(order))
	for i, w := range order {
		phrases[i] = Phrase{Phrase: w, Count: counts[w]}
	}
	sort.SliceStable(phrases, func(i, j int) bool { return phrases[i].Count > phrases[j].Count })
	if len(phrases) > a.cfg.KeyPhraseTopN {
		phrases = phrases[:a.cfg.KeyPhraseTopN]
	}
	prometheus.RecordNLPRequest(a.metrics, "key_phrases", true)
	return phrases, nil
}

// Summarize picks the highest-scoring sentences of text and joins them in
// score order. A sentence scores the sum of the normalized frequencies of its
// non-stopwords; ties keep document order.
func (a *Analyzer) Summarize(ctx context.Context, text string) (string, error) {
	doc, err := a.annotate(ctx, "summarize", text)
	if err != nil {
		return "", err
	}

	freq := make(map[string]float64)
	maxFreq := 0.0
	for _, w := range strings.Fields(Preprocess(text)) {
		if IsStopword(w) {
			continue
		}
		freq[w]++
		if freq[w] > maxFreq {
			maxFreq = freq[w]
		}
	}

	type scored struct {
		text  string
		score float64
	}
	var ranked []scored
	for _, sent := range doc.Sentences {
		score := 0.0
		for _, w := range strings.Fields(Preprocess(sent)) {
			if f, ok := freq[w]; ok {
				score += f / maxFreq
			}
		}
		if score > 0 {
			ranked = append(ranked, scored{text: strings.TrimSpace(sent), score: score})
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })
	if len(ranked) > a.cfg.SummarySentences {
		ranked = ranked[:a.cfg.SummarySentences]
	}

	parts := make([]string, len(ranked))
	for i, s := range ranked {
		parts[i] = s.text
	}
	prometheus.RecordNLPRequest(a.metrics, "summarize", true)
	return strings.Join(parts, " "), nil
}

// Insights returns the entities of text whose label is in the configured set,
// in the order the annotator reported them.
func (a *Analyzer) Insights(ctx context.Context, text string) ([]Insight, error) {
	doc, err := a.annotate(ctx, "insights", text)
	if err != nil {
		return nil, err
	}
	insights := make([]Insight, 0, len(doc.Entities))
	for _, ent := range doc.Entities {
		if _, ok := a.labels[ent.Label]; ok {
			insights = append(insights, Insight{Text: ent.Text, Type: ent.Label})
		}
	}
	prometheus.RecordNLPRequest(a.metrics, "insights", true)
	return insights, nil
}

func (a *Analyzer) annotate(ctx context.Context, op, text string) (*Document, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errors.New(errors.CodeValidation, "text must not be empty")
	}
	doc, err := a.annotator.Annotate(ctx, text)
	if err != nil {
		prometheus.RecordNLPRequest(a.metrics, op, false)
		a.logger.Error("annotation failed", logging.String("operation", op), logging.Err(err))
		if errors.IsUpstream(err) {
			return nil, err
		}
		return nil, errors.Upstream(err, "text annotation failed")
	}
	return doc, nil
}
