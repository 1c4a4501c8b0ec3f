package sqlguard

// LexState is the scanner mode at a position in the input.
type LexState int

// Lexical states. Exactly one is active at any scan position.
const (
	StateNormal LexState = iota
	StateSingleQuote
	StateDoubleQuote
	StateLineComment
	StateBlockComment
)

func (s LexState) String() string {
	switch s {
	case StateNormal:
		return "normal"
	case StateSingleQuote:
		return "single-quote"
	case StateDoubleQuote:
		return "double-quote"
	case StateLineComment:
		return "line-comment"
	case StateBlockComment:
		return "block-comment"
	default:
		return "unknown"
	}
}

// Event classifies the bytes consumed by one scanner step.
type Event int

// Scanner events.
const (
	// EventText is a structural byte in normal state (';', '(', ')' or plain text).
	EventText Event = iota
	// EventLiteral is a byte of quoted content.
	EventLiteral
	// EventQuoteOpen is the ' or " that opens a quoted span.
	EventQuoteOpen
	// EventQuoteClose is the ' or " that closes a quoted span.
	EventQuoteClose
	// EventEscapedQuote is a doubled '' inside a single-quoted string.
	EventEscapedQuote
	// EventCommentOpen is the "--" or "/*" that opens a comment.
	EventCommentOpen
	// EventCommentBody is a byte inside a comment.
	EventCommentBody
	// EventCommentClose is the newline ending a line comment or the "*/" ending a block comment.
	EventCommentClose
)

// Step is one transition of the scanner. Start and End delimit the consumed
// bytes in the input; State is the state after the step.
type Step struct {
	Event Event
	State LexState
	Start int
	End   int
}

// Scanner is a single-pass, left-to-right lexical state machine over SQL text.
// It never fails: unterminated quotes and comments run to the end of input.
type Scanner struct {
	input string
	pos   int
	state LexState
}

// NewScanner creates a Scanner positioned at the start of input.
func NewScanner(input string) *Scanner {
	return &Scanner{input: input}
}

// State returns the current lexical state.
func (s *Scanner) State() LexState {
	return s.state
}

// Next consumes the next one or two bytes and reports the transition.
// It returns false once the input is exhausted.
func (s *Scanner) Next() (Step, bool) {
	if s.pos >= len(s.input) {
		return Step{}, false
	}

	ev, next, width := transition(s.state, s.input[s.pos], s.peekChar())
	step := Step{Event: ev, State: next, Start: s.pos, End: s.pos + width}
	s.pos += width
	s.state = next
	return step, true
}

// peekChar returns the byte after the current one, or 0 at end of input.
func (s *Scanner) peekChar() byte {
	if s.pos+1 >= len(s.input) {
		return 0
	}
	return s.input[s.pos+1]
}

// transition is the total transition function: every (state, byte) pair maps
// to exactly one event, next state and width (1 or 2 bytes).
func transition(state LexState, ch, next byte) (Event, LexState, int) {
	switch state {
	case StateLineComment:
		if ch == '\n' {
			return EventCommentClose, StateNormal, 1
		}
		return EventCommentBody, StateLineComment, 1

	case StateBlockComment:
		if ch == '*' && next == '/' {
			return EventCommentClose, StateNormal, 2
		}
		return EventCommentBody, StateBlockComment, 1

	case StateSingleQuote:
		if ch == '\'' {
			if next == '\'' {
				return EventEscapedQuote, StateSingleQuote, 2
			}
			return EventQuoteClose, StateNormal, 1
		}
		return EventLiteral, StateSingleQuote, 1

	case StateDoubleQuote:
		// No escape handling for double quotes.
		if ch == '"' {
			return EventQuoteClose, StateNormal, 1
		}
		return EventLiteral, StateDoubleQuote, 1

	default:
		switch {
		case ch == '-' && next == '-':
			return EventCommentOpen, StateLineComment, 2
		case ch == '/' && next == '*':
			return EventCommentOpen, StateBlockComment, 2
		case ch == '\'':
			return EventQuoteOpen, StateSingleQuote, 1
		case ch == '"':
			return EventQuoteOpen, StateDoubleQuote, 1
		}
		return EventText, StateNormal, 1
	}
}
