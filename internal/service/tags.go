package service

import (
	"strings"

	"github.com/goccy/go-json"

	"github.com/unclebandit/purchase-mailchimp-sync/internal/model"
)

const lineItemSeparator = "•"

var newlines = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// ExtractTags returns the purchased product names of p, session metadata first,
// then the flat "id • qty • title • total" text.
func ExtractTags(p *model.Purchase) []string {
	if p == nil {
		return []string{}
	}
	tags := tagsFromSession(p.SessionMeta)
	if len(tags) == 0 {
		tags = tagsFromText(p.LineItemsText)
	}
	return DedupeTags(tags)
}

// DedupeTags keeps first-seen order and drops empty entries.
func DedupeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// tagsFromSession reads Stripe checkout line items. Anything unreadable yields nil.
func tagsFromSession(raw []byte) []string {
	if len(raw) == 0 {
		return nil
	}
	var session map[string]any
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil
	}

	var items []any
	switch li := session["line_items"].(type) {
	case []any:
		items = li
	case map[string]any:
		items, _ = li["data"].([]any)
	}

	var tags []string
	for _, it := range items {
		item, ok := it.(map[string]any)
		if !ok {
			continue
		}
		if name := strings.TrimSpace(lineItemName(item)); name != "" {
			tags = append(tags, name)
		}
	}
	return tags
}

// lineItemName: product name, then description, then price nickname.
func lineItemName(item map[string]any) string {
	price, _ := item["price"].(map[string]any)
	if product, ok := price["product"].(map[string]any); ok {
		if name := stringField(product, "name"); name != "" {
			return name
		}
	}
	if desc := stringField(item, "description"); desc != "" {
		return desc
	}
	return stringField(price, "nickname")
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return strings.TrimSpace(s)
}

func tagsFromText(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	var tags []string
	for _, line := range strings.Split(newlines.Replace(text), "\n") {
		fields := strings.Split(line, lineItemSeparator)
		if len(fields) < 3 {
			continue
		}
		if title := strings.TrimSpace(fields[2]); title != "" {
			tags = append(tags, title)
		}
	}
	return tags
}
