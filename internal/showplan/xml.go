package showplan

import (
	"strconv"
	"strings"

	"github.com/beevik/etree"
)

// Elements are matched by local tag only; the ShowPlan namespace is the
// document default and etree leaves default-namespace tags unprefixed.

func childElement(el *etree.Element, tag string) *etree.Element {
	for _, c := range el.ChildElements() {
		if c.Tag == tag {
			return c
		}
	}
	return nil
}

// scopedElement finds the first descendant with the given tag without
// crossing into a nested child operator. Without the boundary, a parent
// would inherit e.g. the Object reference of a child scan that happens to
// use the same element name.
func scopedElement(el *etree.Element, tag string) *etree.Element {
	for _, c := range el.ChildElements() {
		if c.Tag == "RelOp" {
			continue
		}
		if c.Tag == tag {
			return c
		}
		if found := scopedElement(c, tag); found != nil {
			return found
		}
	}
	return nil
}

// scopedElements collects all matching descendants under the same child
// operator boundary as scopedElement.
func scopedElements(el *etree.Element, tag string) []*etree.Element {
	var out []*etree.Element
	for _, c := range el.ChildElements() {
		if c.Tag == "RelOp" {
			continue
		}
		if c.Tag == tag {
			out = append(out, c)
			continue
		}
		out = append(out, scopedElements(c, tag)...)
	}
	return out
}

func attrStr(el *etree.Element, name string) string {
	return el.SelectAttrValue(name, "")
}

func attrFloat(el *etree.Element, name string) float64 {
	v, err := strconv.ParseFloat(attrStr(el, name), 64)
	if err != nil {
		return 0
	}
	return v
}

func attrInt(el *etree.Element, name string) int {
	v, err := strconv.Atoi(attrStr(el, name))
	if err != nil {
		return 0
	}
	return v
}

func attrInt64(el *etree.Element, name string) int64 {
	v, err := strconv.ParseInt(attrStr(el, name), 10, 64)
	if err != nil {
		return 0
	}
	return v
}

func attrBool(el *etree.Element, name string) bool {
	switch strings.ToLower(attrStr(el, name)) {
	case "1", "true":
		return true
	}
	return false
}

// stripBrackets removes T-SQL quoting from an identifier: "[dbo]" -> "dbo".
func stripBrackets(s string) string {
	s = strings.TrimPrefix(s, "[")
	return strings.TrimSuffix(s, "]")
}

func joinNonEmpty(sep string, parts ...string) string {
	var kept []string
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}

// columnNames renders the ColumnReference descendants of el (scoped to the
// current operator) as Table.Column, or Column when no table is recorded.
func columnNames(el *etree.Element) []string {
	if el == nil {
		return nil
	}
	var out []string
	for _, cr := range scopedElements(el, "ColumnReference") {
		if name := columnName(cr); name != "" {
			out = append(out, name)
		}
	}
	return out
}

func columnName(cr *etree.Element) string {
	table := stripBrackets(attrStr(cr, "Table"))
	if table == "" {
		table = stripBrackets(attrStr(cr, "Alias"))
	}
	return joinNonEmpty(".", table, stripBrackets(attrStr(cr, "Column")))
}

// scalarString extracts the display text of the first scalar expression
// under el, e.g. a Predicate's ScalarOperator/@ScalarString.
func scalarString(el *etree.Element) string {
	if el == nil {
		return ""
	}
	for _, so := range scopedElements(el, "ScalarOperator") {
		if s := attrStr(so, "ScalarString"); s != "" {
			return s
		}
	}
	return ""
}
