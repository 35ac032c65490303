package importer

import "strings"

// DefaultCategory is assigned when no keyword matches.
const DefaultCategory = "Christian Life"

const classifyContentWindow = 500

type categoryKeyword struct {
	keyword  string
	category string
}

// Keyword order matters: earlier entries win when several match.
var categoryKeywords = []categoryKeyword{
	{"worship", "Worship and Praise"},
	{"praise", "Worship and Praise"},
	{"adore", "Worship and Praise"},
	{"glory", "Worship and Praise"},
	{"prayer", "Prayer"},
	{"pray", "Prayer"},
	{"faith", "Faith and Trust"},
	{"trust", "Faith and Trust"},
	{"believe", "Faith and Trust"},
	{"love", "Love of God"},
	{"salvation", "Salvation"},
	{"saved", "Salvation"},
	{"grace", "Salvation"},
	{"redeemed", "Salvation"},
	{"cross", "Salvation"},
	{"calvary", "Salvation"},
	{"coming", "Second Coming"},
	{"return", "Second Coming"},
	{"service", "Service"},
	{"serve", "Service"},
	{"comfort", "Comfort and Peace"},
	{"peace", "Comfort and Peace"},
	{"rest", "Comfort and Peace"},
	{"heaven", "Heaven"},
	{"home", "Heaven"},
	{"eternal", "Heaven"},
	{"christmas", "Christmas"},
	{"bethlehem", "Christmas"},
	{"easter", "Easter"},
	{"testimony", "Testimony"},
	{"witness", "Testimony"},
}

// ClassifyCategory picks a category from keywords in the title and the
// opening of the content, falling back to DefaultCategory.
func ClassifyCategory(title, content string) string {
	content = strings.ToLower(content)
	if len(content) > classifyContentWindow {
		content = content[:classifyContentWindow]
	}
	combined := strings.ToLower(title) + " " + content
	for _, ck := range categoryKeywords {
		if strings.Contains(combined, ck.keyword) {
			return ck.category
		}
	}
	return DefaultCategory
}
