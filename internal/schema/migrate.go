package schema

import "log"

// CurrentVersion is the schema version this build reads and writes.
const CurrentVersion = 2

// A migration mutates the raw document in place to reach its target
// version. Migrations must be total over the documented legacy shapes and
// pass anything unrecognized through unchanged.
type migration func(doc map[string]any)

var migrations = map[int]migration{
	2: migrateToV2,
}

// Migrate runs all registered migrations from the document's version up to
// CurrentVersion, bumping schemaVersion after each step. It returns whether
// anything changed. Documents without a schemaVersion field are treated as
// version 1 (the field predates versioning).
func Migrate(doc map[string]any) bool {
	prev := 1
	if v, ok := doc["schemaVersion"].(float64); ok {
		prev = int(v)
	}

	migrated := false
	for target := prev + 1; target <= CurrentVersion; target++ {
		step, ok := migrations[target]
		if !ok {
			continue
		}
		log.Printf("recall: migrating schema %d -> %d", target-1, target)
		step(doc)
		doc["schemaVersion"] = float64(target)
		migrated = true
	}
	return migrated
}

// migrateToV2 repackages the legacy flat card scheduling fields
// (easeFactor/interval/stepIndex) into the generic metadata bag. Records
// already carrying a metadata bag are left untouched.
func migrateToV2(doc map[string]any) {
	decks, _ := doc["decks"].([]any)
	for _, d := range decks {
		deck, ok := d.(map[string]any)
		if !ok {
			continue
		}
		cards, ok := deck["cards"].(map[string]any)
		if !ok {
			continue
		}
		for id, raw := range cards {
			item, ok := raw.(map[string]any)
			if !ok || !isLegacyCard(item) {
				continue
			}
			cards[id] = migrateLegacyCard(item)
		}
	}
}

// isLegacyCard detects the pre-v2 flat card shape: numeric scheduling
// fields at the top level instead of a metadata bag.
func isLegacyCard(item map[string]any) bool {
	_, hasType := item["type"].(float64)
	_, hasEase := item["easeFactor"].(float64)
	_, hasInterval := item["interval"].(float64)
	_, hasStep := item["stepIndex"].(float64)
	return hasType && hasEase && hasInterval && hasStep
}

func migrateLegacyCard(item map[string]any) map[string]any {
	out := make(map[string]any, len(item))
	for k, v := range item {
		out[k] = v
	}
	out["metadata"] = map[string]any{
		"easeFactor": item["easeFactor"],
		"interval":   item["interval"],
		"stepIndex":  item["stepIndex"],
	}
	delete(out, "easeFactor")
	delete(out, "interval")
	delete(out, "stepIndex")
	if _, ok := out["iteration"]; !ok {
		out["iteration"] = float64(0)
	}
	return out
}
