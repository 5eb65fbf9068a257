package htmlutil

import (
	"bytes"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

func GetText(node *html.Node) string {
	var buffer bytes.Buffer
	getTextRecursive(node, &buffer)
	return buffer.String()
}

func getTextRecursive(node *html.Node, buffer *bytes.Buffer) {
	if node == nil {
		return
	}
	if node.Type == html.TextNode {
		buffer.WriteString(node.Data)
		return
	}
	child := node.FirstChild
	for child != nil {
		getTextRecursive(child, buffer)
		child = child.NextSibling
	}
}

func removeNonPrintable(s string) string {
	newStr := strings.Builder{}
	for _, c := range s {
		if unicode.IsPrint(c) {
			newStr.WriteRune(c)
		}
	}
	return newStr.String()
}

// CleanText returns the selection's text with non-printable runes
// removed and whitespace folded, suitable for display names scraped
// out of markup.
func CleanText(sel *goquery.Selection) string {
	text := removeNonPrintable(sel.Text())
	text = strings.Trim(text, " \t\n")
	fields := strings.Fields(text)
	return strings.Join(fields, " ")
}

type Option struct {
	Value string
	Label string
}

// GetOptions collects the value/label pairs of a <select> element's
// options, skipping placeholder entries with an empty value.
func GetOptions(sel *goquery.Selection) []Option {
	var options []Option
	sel.Find("option").Each(func(_ int, opt *goquery.Selection) {
		value := opt.AttrOr("value", "")
		if value == "" {
			return
		}
		options = append(options, Option{
			Value: value,
			Label: CleanText(opt),
		})
	})
	return options
}

// HiddenFields collects every <input type=hidden> name/value pair in the
// document. Legacy postback pages carry their state in these fields and
// expect them echoed back verbatim.
func HiddenFields(doc *goquery.Document) map[string]string {
	fields := map[string]string{}
	doc.Find("input[type=hidden]").Each(func(_ int, input *goquery.Selection) {
		name, ok := input.Attr("name")
		if !ok || name == "" {
			return
		}
		fields[name] = input.AttrOr("value", "")
	})
	return fields
}
