package service

import (
	"encoding/json"
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/DelanoMarcell/litigation-chatbot/types"
)

// The answering model is instructed to produce one JSON object of the form
// {"answer": "...", "citations": ["chunk-id", ...]}. AnswerExtractor pulls
// the decoded characters of the answer string out of that object while it is
// still streaming in, fragment by fragment, without ever parsing the partial
// document.
//
// This is deliberately not a general streaming JSON parser. Detection of the
// answer value is keyed off a completed "answer" string literal followed by
// a colon, which only works under the fixed two-key schema enforced on the
// model call. Do not reuse it for arbitrary JSON.
type AnswerExtractor struct {
	inString   bool // scanning inside a string literal
	inAnswer   bool // the current string is the answer value
	answerDone bool // answer value fully emitted, ignore the rest
	escaped    bool // a backslash is pending

	// \uXXXX escape collection and surrogate pair pairing.
	inUnicode bool
	hexBuf    [4]byte
	hexLen    int
	pendingHi rune

	// Content of the string literal currently being scanned (never the
	// answer value itself, which is emitted instead of buffered).
	literal strings.Builder

	// Key detection: a completed "answer" literal awaits its colon, then
	// the colon awaits the opening quote of the value.
	expectColon bool
	expectValue bool
}

func NewAnswerExtractor() *AnswerExtractor {
	return &AnswerExtractor{}
}

// Feed consumes the next raw fragment and returns whatever decoded answer
// characters became known. Structure characters of JSON are ASCII, so the
// scan is byte-wise and passes multi-byte UTF-8 content through untouched.
func (e *AnswerExtractor) Feed(fragment string) string {
	if e.answerDone {
		return ""
	}
	var out strings.Builder
	for i := 0; i < len(fragment); i++ {
		b := fragment[i]
		switch {
		case e.inUnicode:
			e.hexBuf[e.hexLen] = b
			e.hexLen++
			if e.hexLen == 4 {
				e.inUnicode = false
				e.decodeUnicode(&out)
			}
		case e.inString && e.escaped:
			e.escaped = false
			switch b {
			case 'u':
				e.hexLen = 0
				e.inUnicode = true
			case 'n':
				e.emitByte('\n', &out)
			case 'r':
				e.emitByte('\r', &out)
			case 't':
				e.emitByte('\t', &out)
			case 'b':
				e.emitByte('\b', &out)
			case 'f':
				e.emitByte('\f', &out)
			default:
				// Covers \", \\, \/ and passes any unrecognized escape's
				// character through literally.
				e.emitByte(b, &out)
			}
		case e.inString:
			switch b {
			case '\\':
				e.escaped = true
			case '"':
				e.inString = false
				e.flushSurrogate(&out)
				if e.inAnswer {
					e.inAnswer = false
					e.answerDone = true
					return out.String()
				}
				e.expectColon = e.literal.String() == "answer"
			default:
				e.emitByte(b, &out)
			}
		default:
			switch {
			case b == '"':
				e.inString = true
				e.literal.Reset()
				if e.expectValue {
					e.expectValue = false
					e.inAnswer = true
				}
			case b == ':' && e.expectColon:
				e.expectColon = false
				e.expectValue = true
			case b == ' ' || b == '\t' || b == '\n' || b == '\r':
				// whitespace keeps the key/colon state alive
			default:
				e.expectColon = false
				e.expectValue = false
			}
		}
	}
	return out.String()
}

func (e *AnswerExtractor) emitByte(b byte, out *strings.Builder) {
	e.flushSurrogate(out)
	if e.inAnswer {
		out.WriteByte(b)
	} else {
		e.literal.WriteByte(b)
	}
}

func (e *AnswerExtractor) emitRune(r rune, out *strings.Builder) {
	if e.inAnswer {
		out.WriteRune(r)
	} else {
		e.literal.WriteRune(r)
	}
}

// decodeUnicode resolves a completed \uXXXX escape. A high surrogate is held
// until its partner arrives; utf16.DecodeRune degrades an unpaired one to
// the replacement character.
func (e *AnswerExtractor) decodeUnicode(out *strings.Builder) {
	v, err := strconv.ParseUint(string(e.hexBuf[:]), 16, 32)
	if err != nil {
		e.flushSurrogate(out)
		return
	}
	r := rune(v)
	if utf16.IsSurrogate(r) {
		if e.pendingHi != 0 {
			e.emitRune(utf16.DecodeRune(e.pendingHi, r), out)
			e.pendingHi = 0
			return
		}
		e.pendingHi = r
		return
	}
	e.flushSurrogate(out)
	e.emitRune(r, out)
}

func (e *AnswerExtractor) flushSurrogate(out *strings.Builder) {
	if e.pendingHi != 0 {
		e.emitRune(utf8.RuneError, out)
		e.pendingHi = 0
	}
}

// Citation marker tokens the model embeds inline in the answer text.
const (
	MarkerStart = "[[cite:"
	MarkerEnd   = "]]"
)

// MarkerFilter strips citation marker spans from the decoded answer stream
// without re-buffering it: across fragment boundaries it holds back at most
// len(MarkerStart)-1 characters of text that could still become a marker,
// and while inside a marker it keeps only enough to recognize the end token.
type MarkerFilter struct {
	buf      string
	inMarker bool
}

func NewMarkerFilter() *MarkerFilter {
	return &MarkerFilter{}
}

// Feed consumes the next decoded fragment and returns the text that is
// definitely outside any citation marker.
func (f *MarkerFilter) Feed(fragment string) string {
	var out strings.Builder
	f.buf += fragment
	for {
		if f.inMarker {
			if idx := strings.Index(f.buf, MarkerEnd); idx >= 0 {
				f.buf = f.buf[idx+len(MarkerEnd):]
				f.inMarker = false
				continue
			}
			if keep := len(MarkerEnd) - 1; len(f.buf) > keep {
				f.buf = f.buf[len(f.buf)-keep:]
			}
			return out.String()
		}
		if idx := strings.Index(f.buf, MarkerStart); idx >= 0 {
			out.WriteString(f.buf[:idx])
			f.buf = f.buf[idx+len(MarkerStart):]
			f.inMarker = true
			continue
		}
		hold := partialTokenSuffix(f.buf, MarkerStart)
		out.WriteString(f.buf[:len(f.buf)-hold])
		f.buf = f.buf[len(f.buf)-hold:]
		return out.String()
	}
}

// Flush resolves state at end-of-stream: held-back text that never became a
// marker is released, an unterminated marker span is dropped.
func (f *MarkerFilter) Flush() string {
	out := ""
	if !f.inMarker {
		out = f.buf
	}
	f.buf = ""
	f.inMarker = false
	return out
}

// partialTokenSuffix returns the length of the longest suffix of s that is a
// proper prefix of token.
func partialTokenSuffix(s, token string) int {
	max := len(token) - 1
	if max > len(s) {
		max = len(s)
	}
	for n := max; n > 0; n-- {
		if s[len(s)-n:] == token[:n] {
			return n
		}
	}
	return 0
}

// StripMarkers removes all citation marker spans from a complete string.
func StripMarkers(s string) string {
	f := NewMarkerFilter()
	return f.Feed(s) + f.Flush()
}

// ParseModelAnswer parses the complete accumulated raw model output. It is
// the source of truth for the terminal answer/citations pair; the
// incremental extraction above is a best-effort live preview only. When the
// text is not directly valid JSON, the first top-level {...} span is tried
// before giving up.
func ParseModelAnswer(raw string) (types.ModelAnswer, bool) {
	var parsed types.ModelAnswer
	if err := json.Unmarshal([]byte(raw), &parsed); err == nil {
		return parsed, true
	}
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		if err := json.Unmarshal([]byte(raw[start:end+1]), &parsed); err == nil {
			return parsed, true
		}
	}
	return types.ModelAnswer{}, false
}
