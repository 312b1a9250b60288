package jira

import (
	"encoding/json"
	"strconv"
	"strings"
)

// ADFDocument represents an Atlassian Document Format document.
// API v3 uses it for rich text fields such as descriptions and comments.
type ADFDocument struct {
	Version int       `json:"version"` // Always 1
	Type    string    `json:"type"`    // Always "doc"
	Content []ADFNode `json:"content"`
}

// ADFNode represents a node in an ADF document.
type ADFNode struct {
	Type    string         `json:"type"`
	Content []ADFNode      `json:"content,omitempty"`
	Text    string         `json:"text,omitempty"`
	Marks   []ADFMark      `json:"marks,omitempty"`
	Attrs   map[string]any `json:"attrs,omitempty"`
}

// ADFMark represents formatting applied to text.
type ADFMark struct {
	Type  string         `json:"type"`
	Attrs map[string]any `json:"attrs,omitempty"`
}

// ADF node types
const (
	ADFNodeDoc         = "doc"
	ADFNodeParagraph   = "paragraph"
	ADFNodeText        = "text"
	ADFNodeHardBreak   = "hardBreak"
	ADFNodeHeading     = "heading"
	ADFNodeBulletList  = "bulletList"
	ADFNodeOrderedList = "orderedList"
	ADFNodeListItem    = "listItem"
	ADFNodeCodeBlock   = "codeBlock"
	ADFNodeMention     = "mention"
	ADFNodeInlineCard  = "inlineCard"
)

// TextToADF builds a document from plain text. Blank lines separate
// paragraphs; single newlines become hard breaks.
func TextToADF(text string) *ADFDocument {
	doc := &ADFDocument{Version: 1, Type: ADFNodeDoc, Content: []ADFNode{}}
	for _, para := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n\n") {
		if strings.TrimSpace(para) == "" {
			continue
		}
		node := ADFNode{Type: ADFNodeParagraph}
		for i, line := range strings.Split(para, "\n") {
			if i > 0 {
				node.Content = append(node.Content, ADFNode{Type: ADFNodeHardBreak})
			}
			if line != "" {
				node.Content = append(node.Content, ADFNode{Type: ADFNodeText, Text: line})
			}
		}
		doc.Content = append(doc.Content, node)
	}
	return doc
}

// PlainText flattens the document to text, dropping formatting.
func (d *ADFDocument) PlainText() string {
	var w strings.Builder
	for i := range d.Content {
		writeBlock(&w, &d.Content[i], "")
	}
	return strings.TrimSpace(w.String())
}

func writeBlock(w *strings.Builder, node *ADFNode, indent string) {
	switch node.Type {
	case ADFNodeBulletList, ADFNodeOrderedList:
		for i := range node.Content {
			bullet := "- "
			if node.Type == ADFNodeOrderedList {
				bullet = strconv.Itoa(i+1) + ". "
			}
			w.WriteString(indent + bullet)
			item := &node.Content[i]
			for j := range item.Content {
				child := &item.Content[j]
				if child.Type == ADFNodeBulletList || child.Type == ADFNodeOrderedList {
					w.WriteString("\n")
					writeBlock(w, child, indent+"  ")
					continue
				}
				writeInline(w, child.Content)
			}
			w.WriteString("\n")
		}
		w.WriteString("\n")
	case ADFNodeText, ADFNodeHardBreak, ADFNodeMention, ADFNodeInlineCard:
		writeInline(w, []ADFNode{*node})
	default:
		writeInline(w, node.Content)
		w.WriteString("\n\n")
	}
}

func writeInline(w *strings.Builder, nodes []ADFNode) {
	for i := range nodes {
		node := &nodes[i]
		switch node.Type {
		case ADFNodeText:
			w.WriteString(node.Text)
		case ADFNodeHardBreak:
			w.WriteString("\n")
		case ADFNodeMention:
			if text, ok := node.Attrs["text"].(string); ok {
				w.WriteString(text)
			}
		case ADFNodeInlineCard:
			if u, ok := node.Attrs["url"].(string); ok {
				w.WriteString(u)
			}
		default:
			writeInline(w, node.Content)
		}
	}
}

// richText reads a rich text value: a plain string (API v2) or an ADF
// document (API v3).
func richText(raw json.RawMessage) (string, bool) {
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s, true
	}
	var doc ADFDocument
	if json.Unmarshal(raw, &doc) != nil || doc.Type != ADFNodeDoc {
		return "", false
	}
	return doc.PlainText(), true
}

// textFormat renders plain text for a request body.
type textFormat func(string) any

func plainText(s string) any { return s }

func adfText(s string) any { return TextToADF(s) }
