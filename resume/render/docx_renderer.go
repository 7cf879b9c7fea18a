// Package render writes resume records as WordprocessingML (.docx) files.
package render

import (
	"archive/zip"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"resume-tailor/resume/model"
)

const (
	contentTypesPart = "[Content_Types].xml"
	packageRelsPart  = "_rels/.rels"
	documentPart     = "word/document.xml"
	stylesPart       = "word/styles.xml"
	documentRelsPart = "word/_rels/document.xml.rels"

	bulletPrefix = "• "
	lineSep      = " | "
)

// Render writes the resume to path as a .docx, creating parent directories.
func Render(resume model.Resume, path string) error {
	data, err := RenderBytes(resume)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write docx: %w", err)
	}
	return nil
}

// RenderBytes renders the resume with DefaultLayout.
func RenderBytes(resume model.Resume) ([]byte, error) {
	return RenderWithLayout(resume, DefaultLayout())
}

// RenderWithLayout renders the resume on the given page geometry. Output is
// byte-for-byte stable for the same input.
func RenderWithLayout(resume model.Resume, layout Layout) ([]byte, error) {
	documentXML, err := encodeXMLDocument(buildDocument(resume, layout))
	if err != nil {
		return nil, fmt.Errorf("encode document.xml: %w", err)
	}

	parts := []struct {
		name    string
		content []byte
	}{
		{contentTypesPart, []byte(contentTypesXML)},
		{packageRelsPart, []byte(packageRelsXML)},
		{documentPart, documentXML},
		{stylesPart, []byte(stylesXML())},
		{documentRelsPart, []byte(documentRelsXML)},
	}

	var buf bytes.Buffer
	writer := zip.NewWriter(&buf)
	for _, part := range parts {
		// Zero Modified keeps the archive free of timestamps.
		dst, err := writer.CreateHeader(&zip.FileHeader{Name: part.name, Method: zip.Deflate})
		if err != nil {
			return nil, fmt.Errorf("create %s: %w", part.name, err)
		}
		if _, err := dst.Write(part.content); err != nil {
			return nil, fmt.Errorf("write %s: %w", part.name, err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close docx: %w", err)
	}
	return buf.Bytes(), nil
}

type documentBuilder struct {
	layout Layout
	body   []*xmlNode
}

func buildDocument(resume model.Resume, layout Layout) *xmlNode {
	b := &documentBuilder{layout: layout}
	b.header(resume.Details)
	b.summary(resume.Summary)
	b.skills(resume.Skills)
	b.experience(resume.WorkExperience)
	b.projects(resume.ProjectExperience)
	b.education(resume.Education)
	b.achievements(resume.AchievementsAndCertifications)

	body := el("w:body", b.body...)
	body.Children = append(body.Children, b.sectionProperties())
	root := el("w:document", body)
	root.attr("xmlns:w", wmlNamespace).attr("xmlns:r", relNamespace)
	return root
}

func (b *documentBuilder) header(d model.Details) {
	if name := strings.TrimSpace(d.Name); name != "" {
		b.add(paragraph(paragraphProps{center: true, after: 40}, run(name, StyleMap["name"])))
	}
	if contact := d.ContactParts(); len(contact) > 0 {
		b.add(paragraph(paragraphProps{center: true, after: 120}, run(strings.Join(contact, lineSep), StyleMap["body"])))
	}
}

func (b *documentBuilder) summary(summary string) {
	text := strings.TrimSpace(summary)
	if text == "" {
		return
	}
	b.heading("Summary")
	b.add(paragraph(paragraphProps{after: 60}, run(text, StyleMap["body"])))
}

func (b *documentBuilder) skills(skills []string) {
	items := nonEmpty(skills...)
	if len(items) == 0 {
		return
	}
	b.heading("Skills")
	b.add(paragraph(paragraphProps{after: 60}, run(strings.Join(items, ", "), StyleMap["body"])))
}

func (b *documentBuilder) experience(items []model.WorkExperience) {
	var entries [][]*xmlNode
	for _, item := range items {
		title := strings.Join(nonEmpty(item.CompanyName, item.Role), lineSep)
		var entry []*xmlNode
		if title == "" {
			// No header line without a company or role, even when a date is set.
			entry = bulletParagraphs(item.BulletPoints)
		} else {
			entry = b.entry(title, item.Date, item.BulletPoints)
		}
		if len(entry) > 0 {
			entries = append(entries, entry)
		}
	}
	b.section("Experience", entries)
}

func (b *documentBuilder) projects(items []model.ProjectExperience) {
	var entries [][]*xmlNode
	for _, item := range items {
		entry := b.entry(strings.Join(nonEmpty(item.Title, item.TechStack), lineSep), "", item.BulletPoints)
		if len(entry) > 0 {
			entries = append(entries, entry)
		}
	}
	b.section("Projects", entries)
}

func (b *documentBuilder) education(items []model.Education) {
	var entries [][]*xmlNode
	for _, item := range items {
		var entry []*xmlNode
		if line := b.titleLine(strings.TrimSpace(item.Degree), strings.TrimSpace(item.Date)); line != nil {
			entry = append(entry, line)
		}
		var gpa string
		if v := strings.TrimSpace(item.GPA); v != "" {
			gpa = "GPA: " + v
		}
		if detail := nonEmpty(item.Institution, gpa); len(detail) > 0 {
			entry = append(entry, paragraph(paragraphProps{after: 60}, run(strings.Join(detail, lineSep), StyleMap["body"])))
		}
		if len(entry) > 0 {
			entries = append(entries, entry)
		}
	}
	b.section("Education", entries)
}

func (b *documentBuilder) achievements(items []string) {
	bullets := bulletParagraphs(items)
	if len(bullets) == 0 {
		return
	}
	b.section("Achievements & Certifications", [][]*xmlNode{bullets})
}

// entry renders a title line with an optional right-aligned date, then bullets.
func (b *documentBuilder) entry(title, date string, bullets []string) []*xmlNode {
	var out []*xmlNode
	if line := b.titleLine(title, strings.TrimSpace(date)); line != nil {
		out = append(out, line)
	}
	return append(out, bulletParagraphs(bullets)...)
}

func (b *documentBuilder) titleLine(title, date string) *xmlNode {
	if title == "" && date == "" {
		return nil
	}
	var runs []*xmlNode
	if title != "" {
		runs = append(runs, run(title, StyleMap["subHeading"]))
	}
	if date != "" {
		runs = append(runs, tabRun(StyleMap["body"]), run(date, StyleMap["body"]))
	}
	return paragraph(paragraphProps{before: 80, after: 20, tabStop: b.layout.TabPosition()}, runs...)
}

func (b *documentBuilder) section(title string, entries [][]*xmlNode) {
	if len(entries) == 0 {
		return
	}
	b.heading(title)
	for _, entry := range entries {
		b.add(entry...)
	}
}

func (b *documentBuilder) heading(title string) {
	b.add(paragraph(paragraphProps{before: 160, after: 60, bottomBorder: true}, run(strings.ToUpper(title), StyleMap["sectionHeading"])))
}

func (b *documentBuilder) add(nodes ...*xmlNode) {
	b.body = append(b.body, nodes...)
}

func (b *documentBuilder) sectionProperties() *xmlNode {
	l := b.layout
	return el("w:sectPr",
		el("w:pgSz").intAttr("w:w", l.PageWidth).intAttr("w:h", l.PageHeight),
		el("w:pgMar").
			intAttr("w:top", l.MarginTop).
			intAttr("w:right", l.MarginRight).
			intAttr("w:bottom", l.MarginBottom).
			intAttr("w:left", l.MarginLeft).
			intAttr("w:header", 0).
			intAttr("w:footer", 0).
			intAttr("w:gutter", 0),
	)
}

func bulletParagraphs(items []string) []*xmlNode {
	var out []*xmlNode
	for _, item := range items {
		text := model.StripBulletGlyph(item)
		if text == "" {
			continue
		}
		out = append(out, paragraph(paragraphProps{after: 20, indent: 360, hanging: 180}, run(bulletPrefix+text, StyleMap["body"])))
	}
	return out
}

type paragraphProps struct {
	before, after   int
	indent, hanging int
	tabStop         int
	center          bool
	bottomBorder    bool
}

// paragraph builds a w:p; pPr children follow the schema order
// (pBdr, tabs, spacing, ind, jc).
func paragraph(props paragraphProps, runs ...*xmlNode) *xmlNode {
	pPr := el("w:pPr")
	if props.bottomBorder {
		pPr.Children = append(pPr.Children, el("w:pBdr",
			el("w:bottom").attr("w:val", "single").intAttr("w:sz", 6).intAttr("w:space", 1).attr("w:color", "auto"),
		))
	}
	if props.tabStop > 0 {
		pPr.Children = append(pPr.Children, el("w:tabs",
			el("w:tab").attr("w:val", "right").intAttr("w:pos", props.tabStop),
		))
	}
	pPr.Children = append(pPr.Children, el("w:spacing").intAttr("w:before", props.before).intAttr("w:after", props.after))
	if props.indent > 0 {
		ind := el("w:ind").intAttr("w:left", props.indent)
		if props.hanging > 0 {
			ind.intAttr("w:hanging", props.hanging)
		}
		pPr.Children = append(pPr.Children, ind)
	}
	if props.center {
		pPr.Children = append(pPr.Children, el("w:jc").attr("w:val", "center"))
	}
	return el("w:p", append([]*xmlNode{pPr}, runs...)...)
}

func runProps(style RunStyle) *xmlNode {
	rPr := el("w:rPr",
		el("w:rFonts").attr("w:ascii", FontName).attr("w:hAnsi", FontName).attr("w:cs", FontName),
	)
	if style.Bold {
		rPr.Children = append(rPr.Children, el("w:b"))
	}
	if style.Size > 0 {
		rPr.Children = append(rPr.Children,
			el("w:sz").intAttr("w:val", style.Size),
			el("w:szCs").intAttr("w:val", style.Size),
		)
	}
	return rPr
}

func run(text string, style RunStyle) *xmlNode {
	t := el("w:t", textNode(text)).attr("xml:space", "preserve")
	return el("w:r", runProps(style), t)
}

func tabRun(style RunStyle) *xmlNode {
	return el("w:r", runProps(style), el("w:tab"))
}

func nonEmpty(values ...string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
