package services

import (
	"context"
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/forgefit-labs/discovery/internal/core/domain"
	"github.com/forgefit-labs/discovery/internal/core/ports/driven"
	"github.com/forgefit-labs/discovery/internal/logger"
)

// phrasePattern matches a quoted phrase inside a query.
var phrasePattern = regexp.MustCompile(`"([^"]*)"`)

// titleBonus is the flat keyword-score bonus when the whole query appears
// verbatim in a document title.
const titleBonus = 0.25

// Combined-score weights for keyword and semantic sub-scores.
const (
	keywordWeight  = 0.55
	semanticWeight = 0.45
)

// indexEntry owns one document plus the derived artifacts the index caches
// at construction time.
type indexEntry struct {
	doc domain.WorkoutDocument

	// tokens is the keyword token set. Section titles are deliberately
	// absent: they are structure, not content.
	tokens map[string]struct{}

	// keywordText is the lowercase concatenated keyword text, used for
	// quoted-phrase and title-substring matching.
	keywordText string

	// embedding is the L2-normalized document embedding. Empty when the
	// embedder produced no signal.
	embedding []float32
}

// SearchIndex answers ranked hybrid queries over a fixed document set.
// The index is immutable after construction; document-set changes are
// handled by building a fresh index and swapping it in.
type SearchIndex struct {
	entries  []indexEntry
	embedder driven.Embedder
}

// NewSearchIndex builds an index over docs. The embedder is optional; when
// nil or failing, entries carry empty embeddings and queries score on
// keywords alone.
func NewSearchIndex(ctx context.Context, docs []domain.WorkoutDocument, embedder driven.Embedder) *SearchIndex {
	entries := make([]indexEntry, 0, len(docs))
	for i := range docs {
		entries = append(entries, buildEntry(ctx, docs[i], embedder))
	}
	logger.Debug("Search index built: %d entries", len(entries))
	return &SearchIndex{entries: entries, embedder: embedder}
}

// Len returns the number of indexed documents.
func (idx *SearchIndex) Len() int {
	return len(idx.entries)
}

// Documents returns the indexed document set in index order.
func (idx *SearchIndex) Documents() []domain.WorkoutDocument {
	docs := make([]domain.WorkoutDocument, len(idx.entries))
	for i := range idx.entries {
		docs[i] = idx.entries[i].doc
	}
	return docs
}

// Search answers a ranked query. A document is a candidate only if every
// non-phrase query token is present in its keyword set and every quoted
// phrase appears contiguously in its keyword text. Empty queries return
// empty results, never an error.
func (idx *SearchIndex) Search(ctx context.Context, query string, limit int) []domain.SearchResult {
	logger.Section("Search Execution")
	logger.Debug("Query: %q", query)

	phrases, remainder := extractPhrases(query)
	required := Tokenize(remainder)
	allTokens := Tokenize(strings.ReplaceAll(query, `"`, " "))
	if len(allTokens) == 0 && len(phrases) == 0 {
		logger.Debug("Empty query, returning no results")
		return nil
	}

	wholeQuery := normalizeSpace(strings.ToLower(strings.ReplaceAll(query, `"`, " ")))

	queryVec := idx.embedQuery(ctx, query)

	results := make([]domain.SearchResult, 0, len(idx.entries))
	for i := range idx.entries {
		entry := &idx.entries[i]
		if !entry.matches(required, phrases) {
			continue
		}

		keyword := keywordScore(entry, allTokens, wholeQuery)
		semantic := cosineNormalized(queryVec, entry.embedding)
		if semantic < 0 {
			semantic = 0
		}

		combined := keywordWeight*keyword + semanticWeight*semantic
		if combined <= 0 {
			continue
		}

		results = append(results, domain.SearchResult{
			Document:      entry.doc,
			Score:         combined,
			KeywordScore:  keyword,
			SemanticScore: semantic,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return strings.ToLower(results[i].Document.Title) < strings.ToLower(results[j].Document.Title)
	})

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	logger.Debug("Search results: %d", len(results))
	return results
}

// matches applies the hard AND gate: all required tokens present, all
// phrases literal substrings.
func (e *indexEntry) matches(required []string, phrases []string) bool {
	for _, tok := range required {
		if _, ok := e.tokens[tok]; !ok {
			return false
		}
	}
	for _, phrase := range phrases {
		if !strings.Contains(e.keywordText, phrase) {
			return false
		}
	}
	return true
}

// keywordScore computes the fraction of query tokens present in the entry's
// token set plus the title-phrase bonus, capped at 1.0.
func keywordScore(e *indexEntry, allTokens []string, wholeQuery string) float64 {
	if len(allTokens) == 0 {
		return 0
	}
	present := 0
	for _, tok := range allTokens {
		if _, ok := e.tokens[tok]; ok {
			present++
		}
	}
	score := float64(present) / float64(len(allTokens))
	if wholeQuery != "" && strings.Contains(strings.ToLower(e.doc.Title), wholeQuery) {
		score += titleBonus
	}
	if score > 1.0 {
		score = 1.0
	}
	return score
}

// embedQuery produces the normalized query embedding, or nil when the
// embedder is absent or fails. Embedding failures degrade silently to
// keyword-only scoring.
func (idx *SearchIndex) embedQuery(ctx context.Context, query string) []float32 {
	if idx.embedder == nil {
		return nil
	}
	vec, err := idx.embedder.Embed(ctx, query)
	if err != nil {
		logger.Warn("Query embedding failed: %v", err)
		return nil
	}
	return l2Normalize(vec)
}

// buildEntry derives the cached artifacts for one document.
func buildEntry(ctx context.Context, doc domain.WorkoutDocument, embedder driven.Embedder) indexEntry {
	keywordText := buildKeywordText(doc)

	entry := indexEntry{
		doc:         doc,
		tokens:      tokenSet(keywordText),
		keywordText: keywordText,
	}

	if embedder != nil {
		vec, err := embedder.Embed(ctx, buildSemanticText(doc))
		if err != nil {
			logger.Warn("Embedding failed for %s: %v", doc.ID, err)
		} else {
			entry.embedding = l2Normalize(vec)
		}
	}

	return entry
}

// buildKeywordText concatenates the content fields that participate in
// keyword matching: title, summary, location and tags, section details, and
// item names and prescriptions. Section titles are excluded so structural
// headings like "Warmup" never match on their own.
func buildKeywordText(doc domain.WorkoutDocument) string {
	var parts []string
	parts = append(parts, doc.Title, doc.Summary, doc.Metadata.LocationTag)
	parts = append(parts, doc.Metadata.FocusTags...)
	parts = append(parts, doc.Metadata.EquipmentTags...)
	parts = append(parts, doc.Metadata.OtherTags...)
	for _, section := range doc.Content.Sections {
		parts = append(parts, section.Detail)
		for _, item := range section.Items {
			parts = append(parts, item.Name, item.Prescription)
		}
	}
	return normalizeSpace(strings.ToLower(strings.Join(parts, " ")))
}

/// buildSemanticText assembles the text embedded for similarity: title,
// summary, the de-front-mattered body, and section titles.
func buildSemanticText(doc domain.WorkoutDocument) string {
	parts := []string{doc.Title, doc.Summary, stripFrontMatter(doc.Content.Markdown)}
	for _, section := range doc.Content.Sections {
		parts = append(parts, section.Title)
	}
	return strings.Join(parts, "\n")
}

// stripFrontMatter removes a leading "---" delimited front-matter block.
func stripFrontMatter(markdown string) string {
	lines := strings.Split(markdown, "\n")
	if len(lines) == 0 || strings.TrimSpace(lines[0]) != "---" {
		return markdown
	}
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			return strings.TrimSpace(strings.Join(lines[i+1:], "\n"))
		}
	}
	return markdown
}

// extractPhrases pulls quoted phrases out of a query, returning the
// lowercase phrases and the query with the quoted spans removed.
func extractPhrases(query string) (phrases []string, remainder string) {
	remainder = query
	for _, match := range phrasePattern.FindAllStringSubmatch(query, -1) {
		phrase := normalizeSpace(strings.ToLower(match[1]))
		if phrase != "" {
			phrases = append(phrases, phrase)
		}
	}
	remainder = phrasePattern.ReplaceAllString(remainder, " ")
	return phrases, remainder
}

// normalizeSpace collapses runs of whitespace to single spaces.
func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// l2Normalize returns the unit-length copy of vec, or nil for empty or
// zero vectors.
func l2Normalize(vec []float32) []float32 {
	if len(vec) == 0 {
		return nil
	}
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if sum == 0 {
		return nil
	}
	norm := math.Sqrt(sum)
	out := make([]float32, len(vec))
	for i, v := range vec {
		out[i] = float32(float64(v) / norm)
	}
	return out
}

// cosineNormalized computes the dot product of two already-normalized
// vectors. Returns 0 when either vector is empty or lengths differ.
func cosineNormalized(a, b []float32) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0
	}
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	return dot
}
