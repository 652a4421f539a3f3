// Package notion converts finished articles into Notion's block format
// and issues the page-creation and block-append calls.
package notion

import (
	"regexp"
	"strings"
)

// RichText is one styled-text run inside a block.
type RichText struct {
	Type string      `json:"type"`
	Text TextContent `json:"text"`
}

type TextContent struct {
	Content string `json:"content"`
	Link    *Link  `json:"link,omitempty"`
}

type Link struct {
	URL string `json:"url"`
}

func textRun(content string) RichText {
	return RichText{Type: "text", Text: TextContent{Content: content}}
}

func linkRun(content, url string) RichText {
	return RichText{Type: "text", Text: TextContent{Content: content, Link: &Link{URL: url}}}
}

// Block is one Notion content block. Exactly one of the type payloads is
// populated, matching Type.
type Block struct {
	Object           string         `json:"object"`
	Type             string         `json:"type"`
	Heading1         *RichTextBlock `json:"heading_1,omitempty"`
	Heading2         *RichTextBlock `json:"heading_2,omitempty"`
	Heading3         *RichTextBlock `json:"heading_3,omitempty"`
	Paragraph        *RichTextBlock `json:"paragraph,omitempty"`
	BulletedListItem *RichTextBlock `json:"bulleted_list_item,omitempty"`
	NumberedListItem *RichTextBlock `json:"numbered_list_item,omitempty"`
	Callout          *CalloutBlock  `json:"callout,omitempty"`
}

type RichTextBlock struct {
	RichText []RichText `json:"rich_text"`
}

type CalloutBlock struct {
	RichText []RichText `json:"rich_text"`
	Icon     *Icon      `json:"icon,omitempty"`
	Color    string     `json:"color,omitempty"`
}

type Icon struct {
	Type  string `json:"type"`
	Emoji string `json:"emoji,omitempty"`
}

func heading(level int, text string) Block {
	b := Block{Object: "block"}
	rt := &RichTextBlock{RichText: []RichText{textRun(text)}}
	switch level {
	case 1:
		b.Type, b.Heading1 = "heading_1", rt
	case 2:
		b.Type, b.Heading2 = "heading_2", rt
	case 3:
		b.Type, b.Heading3 = "heading_3", rt
	}
	return b
}

func paragraph(runs []RichText) Block {
	return Block{Object: "block", Type: "paragraph", Paragraph: &RichTextBlock{RichText: runs}}
}

var (
	bulletRe   = regexp.MustCompile(`^\s*[-*]\s(.*)`)
	numberedRe = regexp.MustCompile(`^\s*\d+\.\s(.*)`)
	imageRe    = regexp.MustCompile(`\[IMAGE_PROMPT: (.*?), ALT_TEXT: (.*?)\]`)
	linkRe     = regexp.MustCompile(`\[([^\]]+)\]\((https?://[^)]+)\)`)
)

// MarkdownToBlocks walks the markdown body paragraph-by-paragraph, then
// line-by-line, classifying each line by leading syntax. Consecutive list
// items of one type accumulate into a run; a blank line, a different list
// type or any non-list line flushes the run. Image placeholders become a
// callout (alt text) plus a paragraph (raw generation prompt) — the store
// never receives a rendered image.
func MarkdownToBlocks(markdown string) []Block {
	var blocks []Block
	normalized := strings.ReplaceAll(markdown, "\r\n", "\n")
	paragraphs := regexp.MustCompile(`\n{2,}`).Split(normalized, -1)

	for _, para := range paragraphs {
		if strings.TrimSpace(para) == "" {
			continue
		}

		var run []Block
		listType := ""
		flush := func() {
			blocks = append(blocks, run...)
			run = nil
			listType = ""
		}

		for _, line := range strings.Split(para, "\n") {
			if strings.TrimSpace(line) == "" {
				flush()
				continue
			}
			if rest, ok := strings.CutPrefix(line, "### "); ok {
				flush()
				blocks = append(blocks, heading(3, rest))
				continue
			}
			if rest, ok := strings.CutPrefix(line, "## "); ok {
				flush()
				blocks = append(blocks, heading(2, rest))
				continue
			}
			if rest, ok := strings.CutPrefix(line, "# "); ok {
				flush()
				blocks = append(blocks, heading(1, rest))
				continue
			}
			if m := bulletRe.FindStringSubmatch(line); m != nil {
				if listType != "bulleted_list_item" {
					flush()
				}
				listType = "bulleted_list_item"
				run = append(run, Block{Object: "block", Type: "bulleted_list_item",
					BulletedListItem: &RichTextBlock{RichText: []RichText{textRun(m[1])}}})
				continue
			}
			if m := numberedRe.FindStringSubmatch(line); m != nil {
				if listType != "numbered_list_item" {
					flush()
				}
				listType = "numbered_list_item"
				run = append(run, Block{Object: "block", Type: "numbered_list_item",
					NumberedListItem: &RichTextBlock{RichText: []RichText{textRun(m[1])}}})
				continue
			}
			flush()
			if m := imageRe.FindStringSubmatch(line); m != nil {
				promptText, altText := m[1], m[2]
				blocks = append(blocks, Block{Object: "block", Type: "callout", Callout: &CalloutBlock{
					RichText: []RichText{textRun("[AI 이미지 추천] " + altText)},
					Icon:     &Icon{Type: "emoji", Emoji: "🖼️"},
					Color:    "gray_background",
				}})
				blocks = append(blocks, paragraph([]RichText{textRun("(생성 프롬프트: " + promptText + ")")}))
				continue
			}
			blocks = append(blocks, paragraph(splitLinkRuns(line)))
		}
		flush()
	}
	return blocks
}

// splitLinkRuns splits inline markdown hyperlinks into plain-text and link
// runs, preserving all non-link text verbatim and in original order.
func splitLinkRuns(line string) []RichText {
	var runs []RichText
	last := 0
	for _, m := range linkRe.FindAllStringSubmatchIndex(line, -1) {
		if m[0] > last {
			runs = append(runs, textRun(line[last:m[0]]))
		}
		runs = append(runs, linkRun(line[m[2]:m[3]], line[m[4]:m[5]]))
		last = m[1]
	}
	if last < len(line) {
		runs = append(runs, textRun(line[last:]))
	}
	return runs
}
