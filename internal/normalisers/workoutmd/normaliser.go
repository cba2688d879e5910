// Package workoutmd parses workout markdown files into workout documents.
//
// The expected shape is optional front matter, one H1 title, and H2
// sections whose list items are exercises, e.g.
//
//	---
//	duration: 30
//	focus: strength
//	---
//	# Leg Day
//
//	## Main Set
//	- Back squat — 5 x 5
package workoutmd

import (
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/forgefit-labs/discovery/internal/core/domain"
)

// knownLocations are the location tags recognised in front matter.
var knownLocations = map[string]string{
	"home": domain.LocationHome,
	"gym":  domain.LocationGym,
	"away": domain.LocationAway,
}

// Parse converts workout markdown into a workout document. The full
// markdown, front matter included, is preserved in the content so the
// version hash tracks every edit.
func Parse(content []byte, uri string) (*domain.WorkoutDocument, error) {
	if len(strings.TrimSpace(string(content))) == 0 {
		return nil, domain.ErrInvalidInput
	}

	raw := string(content)
	front, body := splitFrontMatter(raw)
	metadata, summary := parseFrontMatter(front)

	title := extractTitle(body, uri)
	if summary == "" {
		summary = firstProseLine(body)
	}

	now := time.Now()
	return &domain.WorkoutDocument{
		ID:        uuid.New().String(),
		Source:    domain.SourceLibrary,
		SourceURI: uri,
		Title:     title,
		Summary:   summary,
		Metadata:  metadata,
		Content: domain.WorkoutContent{
			Markdown: raw,
			Sections: parseSections(body),
		},
		VersionHash: domain.VersionHash(raw),
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// splitFrontMatter separates a leading --- block from the body. Content
// without front matter comes back unchanged.
func splitFrontMatter(raw string) (front, body string) {
	trimmed := strings.TrimLeft(raw, "\n")
	if !strings.HasPrefix(trimmed, "---\n") && trimmed != "---" {
		return "", raw
	}

	rest := strings.TrimPrefix(trimmed, "---\n")
	end := strings.Index(rest, "\n---")
	if end < 0 {
		return "", raw
	}

	front = rest[:end]
	body = rest[end+len("\n---"):]
	return front, strings.TrimPrefix(body, "\n")
}

// parseFrontMatter reads key: value lines into workout metadata. Unknown
// keys land in OtherTags so nothing the author wrote is lost.
func parseFrontMatter(front string) (domain.WorkoutMetadata, string) {
	var meta domain.WorkoutMetadata
	var summary string

	for _, line := range strings.Split(front, "\n") {
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}

		switch key {
		case "duration", "minutes":
			if minutes, err := strconv.Atoi(strings.TrimSuffix(value, "m")); err == nil && minutes > 0 {
				meta.DurationMinutes = minutes
			}
		case "focus":
			meta.FocusTags = splitTags(value)
		case "equipment":
			meta.EquipmentTags = splitTags(value)
		case "location":
			if loc, ok := knownLocations[strings.ToLower(value)]; ok {
				meta.LocationTag = loc
			}
		case "tags":
			meta.OtherTags = append(meta.OtherTags, splitTags(value)...)
		case "summary":
			summary = value
		default:
			meta.OtherTags = append(meta.OtherTags, splitTags(value)...)
		}
	}
	return meta, summary
}

// splitTags parses a comma-separated tag list.
func splitTags(value string) []string {
	var tags []string
	for _, tag := range strings.Split(value, ",") {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

// extractTitle finds the first H1, falling back to the filename stem.
func extractTitle(body, uri string) string {
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "# ") {
			return strings.TrimSpace(strings.TrimPrefix(line, "#"))
		}
	}

	filename := filepath.Base(uri)
	if ext := filepath.Ext(filename); ext != "" {
		filename = strings.TrimSuffix(filename, ext)
	}
	filename = strings.ReplaceAll(filename, "_", " ")
	filename = strings.ReplaceAll(filename, "-", " ")
	return strings.TrimSpace(filename)
}

// firstProseLine returns the first body line that is neither a heading nor
// a list item.
func firstProseLine(body string) string {
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "-") {
			continue
		}
		return line
	}
	return ""
}

// parseSections reads H2 sections and their exercise items. Prose lines
// between the heading and the first item become the section detail.
func parseSections(body string) []domain.WorkoutSection {
	var sections []domain.WorkoutSection
	var current *domain.WorkoutSection
	var detail []string

	flushDetail := func() {
		if current != nil && len(detail) > 0 {
			current.Detail = strings.Join(detail, " ")
		}
		detail = nil
	}

	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)

		switch {
		case strings.HasPrefix(line, "## "):
			flushDetail()
			if current != nil {
				sections = append(sections, *current)
			}
			current = &domain.WorkoutSection{
				Title: strings.TrimSpace(strings.TrimPrefix(line, "##")),
			}

		case strings.HasPrefix(line, "- "):
			if current == nil {
				continue
			}
			flushDetail()
			current.Items = append(current.Items, parseItem(strings.TrimPrefix(line, "- ")))

		case line == "" || strings.HasPrefix(line, "#"):
			// blank lines and other headings end nothing

		default:
			if current != nil && len(current.Items) == 0 {
				detail = append(detail, line)
			}
		}
	}

	flushDetail()
	if current != nil {
		sections = append(sections, *current)
	}
	return sections
}

// itemSeparators split an exercise name from its prescription.
var itemSeparators = []string{" — ", " -- "}

// parseItem splits "Back squat — 5 x 5" into name and prescription.
func parseItem(text string) domain.WorkoutItem {
	for _, sep := range itemSeparators {
		if name, prescription, ok := strings.Cut(text, sep); ok {
			return domain.WorkoutItem{
				Name:         strings.TrimSpace(name),
				Prescription: strings.TrimSpace(prescription),
			}
		}
	}
	return domain.WorkoutItem{Name: strings.TrimSpace(text)}
}
