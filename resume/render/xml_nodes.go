package render

import (
	"bytes"
	"encoding/xml"
	"strconv"
)

const wmlNamespace = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
const relNamespace = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"

const xmlHeader = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n"

// xmlNode is a prefixed WordprocessingML element tree. Names carry their
// prefix in Local ("w:p") so the encoder writes them verbatim.
type xmlNode struct {
	Name     xml.Name
	Attr     []xml.Attr
	Children []*xmlNode
	Text     string
	IsText   bool
}

func el(name string, children ...*xmlNode) *xmlNode {
	return &xmlNode{Name: xml.Name{Local: name}, Children: children}
}

func (n *xmlNode) attr(name, value string) *xmlNode {
	n.Attr = append(n.Attr, xml.Attr{Name: xml.Name{Local: name}, Value: value})
	return n
}

func (n *xmlNode) intAttr(name string, value int) *xmlNode {
	return n.attr(name, strconv.Itoa(value))
}

func textNode(text string) *xmlNode {
	return &xmlNode{IsText: true, Text: text}
}

func encodeXMLDocument(root *xmlNode) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(xmlHeader)
	encoder := xml.NewEncoder(&buf)
	if err := encodeXMLNode(encoder, root); err != nil {
		return nil, err
	}
	if err := encoder.Flush(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeXMLNode(encoder *xml.Encoder, node *xmlNode) error {
	if node.IsText {
		return encoder.EncodeToken(xml.CharData([]byte(node.Text)))
	}
	start := xml.StartElement{Name: node.Name, Attr: node.Attr}
	if err := encoder.EncodeToken(start); err != nil {
		return err
	}
	for _, child := range node.Children {
		if err := encodeXMLNode(encoder, child); err != nil {
			return err
		}
	}
	return encoder.EncodeToken(start.End())
}
