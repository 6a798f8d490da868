// Package iclex implements a small state-function lexer in the style Rob
// Pike described for text/template: a Lexer walks an input rune by rune,
// and a chain of StateFn values decides what to do at each position,
// emitting Items as it goes. It has no IC10-specific vocabulary of its
// own; the token types and the initial StateFn belong to whatever package
// tokenizes with it.
package iclex

import (
	"bufio"
	"io"
)

// Type identifies the kind of an emitted Item. Negative values are
// reserved for the lexer itself; EOF is the only one defined here.
type Type int

// EOF is emitted, and then re-emitted forever, once the input is
// exhausted.
const EOF Type = -1

// Pos is a rune offset into the lexer's input.
type Pos int

// Item is one token: its Type, an already-converted Value (a string, int,
// float64 or rune depending on what the caller's Emit passed), and the
// input position at which it starts.
type Item struct {
	Type  Type
	Value interface{}
	Pos   Pos
}

// Interface is what a consumer of a lexer needs: a pull-based token
// stream.
type Interface interface {
	Lex() Item
}

// StateFn is one step of the lexer state machine. It returns the next
// StateFn to run, or nil to mean "re-enter the lexer's default dispatch",
// which by convention is the StateFn passed to New.
type StateFn func(*Lexer) StateFn

// Lexer runs a StateFn chain over runes pulled from an io.Reader, emitting
// Items into an internal queue that Lex drains one at a time.
type Lexer struct {
	r       *bufio.Reader
	init    StateFn
	state   StateFn
	pos     Pos
	start   Pos
	current rune
	backed  bool
	queue   []Item
}

// New creates a Lexer over r, starting in state init.
func New(r io.Reader, init StateFn) *Lexer {
	return &Lexer{r: bufio.NewReader(r), init: init, state: init}
}

// Next returns the next rune, advancing the lexer, or EOF's rune value
// (utf8.RuneError is never returned; io.EOF maps to the rune -1) at end of
// input.
func (l *Lexer) Next() rune {
	if l.backed {
		l.backed = false
		l.pos++
		return l.current
	}
	r, _, err := l.r.ReadRune()
	if err != nil {
		l.current = rune(EOF)
		return l.current
	}
	l.current = r
	l.pos++
	return r
}

// Backup un-reads the last rune returned by Next, so the next call to Next
// returns it again. Only one level of backup is supported.
func (l *Lexer) Backup() {
	l.backed = true
	l.pos--
}

// Current returns the last rune returned by Next.
func (l *Lexer) Current() rune { return l.current }

// Pos returns the lexer's current rune offset.
func (l *Lexer) Pos() Pos { return l.pos }

// AcceptWhile consumes runes while pred returns true, leaving the lexer
// positioned just after the last accepted rune.
func (l *Lexer) AcceptWhile(pred func(rune) bool) {
	for {
		r := l.Next()
		if r == rune(EOF) || !pred(r) {
			l.Backup()
			return
		}
	}
}

// Emit queues an Item of the given type and value, positioned at the start
// of the token currently being scanned.
func (l *Lexer) Emit(t Type, value interface{}) {
	l.queue = append(l.queue, Item{Type: t, Value: value, Pos: l.start})
	l.start = l.pos
}

// Lex runs the state machine until an Item is queued, then returns it.
func (l *Lexer) Lex() Item {
	for len(l.queue) == 0 {
		next := l.state(l)
		if next == nil {
			next = l.init
		}
		l.state = next
	}
	item := l.queue[0]
	l.queue = l.queue[1:]
	return item
}
