package report

import (
	"fmt"
	"os"
	"sort"

	"golang.org/x/net/html"
)

// WriteHTMLSummary renders one static overview page covering every
// module in reports: per module, a table counting its relocations by
// destination module. It supplements the YAML
// files with something a reviewer can open in a browser without
// tooling, building the DOM tree directly with golang.org/x/net/html
// rather than templating raw strings.
func WriteHTMLSummary(path string, reports []ModuleReport) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	doc := buildSummaryDoc(reports)
	if err := html.Render(f, doc); err != nil {
		return fmt.Errorf("render %s: %w", path, err)
	}
	return nil
}

func buildSummaryDoc(reports []ModuleReport) *html.Node {
	htmlNode := elem("html")
	head := elem("head")
	head.AppendChild(elem("title"))
	head.FirstChild.AppendChild(text("cross-reference summary"))
	htmlNode.AppendChild(head)

	body := elem("body")
	for _, rep := range reports {
		body.AppendChild(moduleSection(rep))
	}
	htmlNode.AppendChild(body)

	doc := &html.Node{Type: html.DocumentNode}
	doc.AppendChild(htmlNode)
	return doc
}

func moduleSection(rep ModuleReport) *html.Node {
	section := elem("section")

	h2 := elem("h2")
	h2.AppendChild(text(rep.Name))
	section.AppendChild(h2)

	counts := map[string]int{}
	for _, r := range rep.Relocations {
		counts[r.Destination]++
	}

	dests := make([]string, 0, len(counts))
	for d := range counts {
		dests = append(dests, d)
	}
	sort.Strings(dests)

	table := elem("table")
	header := elem("tr")
	header.AppendChild(th("destination"))
	header.AppendChild(th("count"))
	table.AppendChild(header)

	for _, d := range dests {
		row := elem("tr")
		row.AppendChild(td(d))
		row.AppendChild(td(fmt.Sprintf("%d", counts[d])))
		table.AppendChild(row)
	}
	section.AppendChild(table)

	return section
}

func elem(tag string) *html.Node {
	return &html.Node{Type: html.ElementNode, Data: tag}
}

func text(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

func th(s string) *html.Node {
	n := elem("th")
	n.AppendChild(text(s))
	return n
}

func td(s string) *html.Node {
	n := elem("td")
	n.AppendChild(text(s))
	return n
}
