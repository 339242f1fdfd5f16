package utils

import (
	"strings"
)

// NormalizeTerm lowercases a term and collapses all interior whitespace runs
// to single spaces. Two terms are considered equal for deduplication purposes
// when their normalized forms match.
func NormalizeTerm(term string) string {
	fields := strings.Fields(strings.ToLower(term))
	return strings.Join(fields, " ")
}

// DedupeTerms removes case-insensitive, whitespace-normalized duplicates from
// the given list, preserving first-seen order and the original casing of the
// first occurrence. Empty and whitespace-only terms are dropped.
func DedupeTerms(terms []string) []string {
	seen := make(map[string]struct{}, len(terms))
	result := make([]string, 0, len(terms))

	for _, term := range terms {
		normalized := NormalizeTerm(term)
		if normalized == "" {
			continue
		}
		if _, ok := seen[normalized]; ok {
			continue
		}
		seen[normalized] = struct{}{}
		result = append(result, strings.TrimSpace(term))
	}

	return result
}

// JoinConditions renders a condition label list in the comma-joined form the
// patient record stores.
func JoinConditions(conditions []string) string {
	cleaned := DedupeTerms(conditions)
	return strings.Join(cleaned, ", ")
}

// SplitConditions parses a comma-joined condition string back into labels.
func SplitConditions(condition string) []string {
	if strings.TrimSpace(condition) == "" {
		return nil
	}
	parts := strings.Split(condition, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
