// Package quickstatements builds batches of Wikidata edits and serializes them
// in the QuickStatements v1 pipe format.
//
// Statements are collected as structured records and only rendered to text by
// String or WriteTo, one command per line:
//
//	CREATE
//	LAST|Len|"Ada Lovelace"
//	LAST|P31|Q5|S854|"https://orcid.org/0000-0003-4423-4370"
package quickstatements

import (
	"io"
	"strings"
)

// Last refers to the item made by the closest preceding CREATE command.
const Last = "LAST"

// Subject is the item a command applies to: either an existing item or the
// item created earlier in the same batch.
type Subject struct {
	id string
}

// Existing refers to an item that already exists.
func Existing(id string) Subject {
	return Subject{id: id}
}

// NewItem refers to the item created by the batch.
func NewItem() Subject {
	return Subject{}
}

// IsNew reports whether the subject is the newly created item.
func (s Subject) IsNew() bool {
	return s.id == ""
}

// ID returns the existing item's identifier, or "" for a new item.
func (s Subject) ID() string {
	return s.id
}

// String returns the subject as written in a command.
func (s Subject) String() string {
	if s.IsNew() {
		return Last
	}
	return s.id
}

type valueKind int

const (
	kindItem valueKind = iota
	kindString
	kindTime
)

// Value is the object of a statement, qualifier, or source.
type Value struct {
	kind valueKind
	text string
}

// Item is an entity value written bare, e.g. Q5.
func Item(id string) Value {
	return Value{kind: kindItem, text: id}
}

// String is a string or external-id value written in double quotes.
func String(s string) Value {
	return Value{kind: kindString, text: s}
}

// Time is a time value with precision, e.g. +2020-05-00T00:00:00Z/10.
func Time(t string) Value {
	return Value{kind: kindTime, text: t}
}

// IsZero reports whether the value is empty.
func (v Value) IsZero() bool {
	return v.text == ""
}

// separators holds the characters that would split a command into extra
// fields or lines.
var separators = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ", "\t", " ", "|", " ")

// String returns the value as written in a command.
func (v Value) String() string {
	text := separators.Replace(v.text)
	if v.kind == kindString {
		return `"` + text + `"`
	}
	return text
}

// Snak is a property paired with a value, used for qualifiers and sources.
type Snak struct {
	Property string
	Value    Value
}

// Statement is one claim with its qualifiers and sources.
type Statement struct {
	Subject    Subject
	Property   string
	Value      Value
	Qualifiers []Snak
	Sources    []Snak
}

// Qualify appends a qualifier.
func (s *Statement) Qualify(property string, v Value) {
	s.Qualifiers = append(s.Qualifiers, Snak{Property: property, Value: v})
}

func (s Statement) render(b *strings.Builder) {
	b.WriteString(s.Subject.String())
	b.WriteByte('|')
	b.WriteString(s.Property)
	b.WriteByte('|')
	b.WriteString(s.Value.String())
	for _, q := range s.Qualifiers {
		writeSnak(b, q)
	}
	for _, src := range s.Sources {
		writeSnak(b, src)
	}
}

func writeSnak(b *strings.Builder, s Snak) {
	b.WriteByte('|')
	b.WriteString(s.Property)
	b.WriteByte('|')
	b.WriteString(s.Value.String())
}

type commandKind int

const (
	cmdCreate commandKind = iota
	cmdTerm
	cmdStatement
)

type command struct {
	kind      commandKind
	statement Statement

	// term commands: prefix is L (label), D (description) or A (alias)
	subject Subject
	prefix  string
	lang    string
	text    string
}

// Document is an ordered batch of commands.
type Document struct {
	commands []command
}

// Create starts a new item. Later commands refer to it with NewItem.
func (d *Document) Create() {
	d.commands = append(d.commands, command{kind: cmdCreate})
}

// Label sets the label of subject in lang.
func (d *Document) Label(subject Subject, lang, text string) {
	d.term(subject, "L", lang, text)
}

// Description sets the description of subject in lang.
func (d *Document) Description(subject Subject, lang, text string) {
	d.term(subject, "D", lang, text)
}

// Alias adds an alias of subject in lang.
func (d *Document) Alias(subject Subject, lang, text string) {
	d.term(subject, "A", lang, text)
}

func (d *Document) term(subject Subject, prefix, lang, text string) {
	d.commands = append(d.commands, command{
		kind:    cmdTerm,
		subject: subject,
		prefix:  prefix,
		lang:    lang,
		text:    text,
	})
}

// Add appends a statement.
func (d *Document) Add(s Statement) {
	d.commands = append(d.commands, command{kind: cmdStatement, statement: s})
}

// Statements returns the statements in the order they were added.
func (d *Document) Statements() []Statement {
	var out []Statement
	for _, c := range d.commands {
		if c.kind == cmdStatement {
			out = append(out, c.statement)
		}
	}
	return out
}

// Len returns the number of commands.
func (d *Document) Len() int {
	return len(d.commands)
}

// Lines renders each command to its text line.
func (d *Document) Lines() []string {
	lines := make([]string, 0, len(d.commands))
	var b strings.Builder
	for _, c := range d.commands {
		b.Reset()
		switch c.kind {
		case cmdCreate:
			b.WriteString("CREATE")
		case cmdTerm:
			b.WriteString(c.subject.String())
			b.WriteByte('|')
			b.WriteString(c.prefix)
			b.WriteString(c.lang)
			b.WriteByte('|')
			b.WriteString(String(c.text).String())
		case cmdStatement:
			c.statement.render(&b)
		}
		lines = append(lines, b.String())
	}
	return lines
}

// String renders the document with one command per line and no trailing newline.
func (d *Document) String() string {
	return strings.Join(d.Lines(), "\n")
}

// WriteTo writes the document followed by a trailing newline.
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	if len(d.commands) == 0 {
		return 0, nil
	}
	n, err := io.WriteString(w, d.String()+"\n")
	return int64(n), err
}
