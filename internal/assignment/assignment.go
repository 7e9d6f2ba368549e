// Package assignment maintains the list of (defense, user) pairs held by a
// tower and enforces the map-wide uniqueness of assigned pairs.
//
// The persisted form is a JSON array stored in Tower.DefenseIDs. Two formats
// exist: a legacy array of bare defense ids and the current array of
// {defenseId, userId} objects. Parse accepts both, Encode always writes the
// current one.
package assignment

import (
	"encoding/json"
	"strings"
)

// MaxPerTower is the number of assignments a single tower can hold.
const MaxPerTower = 5

// Assignment binds a defense, and optionally a user, to a tower slot.
// An empty UserID means "this defense, no specific user yet".
type Assignment struct {
	DefenseID string `json:"defenseId"`
	UserID    string `json:"userId"`
}

// HasUser reports whether the assignment names a specific user.
func (a Assignment) HasUser() bool {
	return a.UserID != ""
}

// legacyEntry and currentEntry are the two shapes a persisted element can take.
type legacyEntry = string

type currentEntry struct {
	DefenseID any `json:"defenseId"`
	UserID    any `json:"userId"`
}

// Parse normalizes a persisted list into assignments. Malformed or empty
// input yields an empty list and never an error.
func Parse(raw string) []Assignment {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return []Assignment{}
	}

	var items []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &items); err != nil || len(items) == 0 {
		return []Assignment{}
	}

	if isJSONString(items[0]) {
		return parseLegacy(items)
	}
	return parseCurrent(items)
}

func isJSONString(item json.RawMessage) bool {
	trimmed := strings.TrimSpace(string(item))
	return strings.HasPrefix(trimmed, `"`)
}

func parseLegacy(items []json.RawMessage) []Assignment {
	out := make([]Assignment, 0, len(items))
	for _, item := range items {
		// Every string maps to an entry, empty ones included.
		var id legacyEntry
		if err := json.Unmarshal(item, &id); err != nil {
			continue
		}
		out = append(out, Assignment{DefenseID: id})
	}
	return out
}

func parseCurrent(items []json.RawMessage) []Assignment {
	out := make([]Assignment, 0, len(items))
	for _, item := range items {
		var entry currentEntry
		if err := json.Unmarshal(item, &entry); err != nil {
			continue
		}
		defenseID, ok := entry.DefenseID.(string)
		if !ok || defenseID == "" {
			continue
		}
		userID, _ := entry.UserID.(string)
		out = append(out, Assignment{DefenseID: defenseID, UserID: userID})
	}
	return out
}

// Encode serializes assignments in the current object format.
func Encode(list []Assignment) string {
	if list == nil {
		list = []Assignment{}
	}
	data, err := json.Marshal(list)
	if err != nil {
		// A slice of two-string structs always marshals.
		return "[]"
	}
	return string(data)
}

// Remove drops the entry at index. Out-of-range indexes leave the list unchanged.
func Remove(current []Assignment, index int) []Assignment {
	if index < 0 || index >= len(current) {
		return current
	}
	out := make([]Assignment, 0, len(current)-1)
	out = append(out, current[:index]...)
	return append(out, current[index+1:]...)
}

// Contains reports whether list holds the exact pair.
func Contains(list []Assignment, pair Assignment) bool {
	for _, a := range list {
		if a == pair {
			return true
		}
	}
	return false
}
