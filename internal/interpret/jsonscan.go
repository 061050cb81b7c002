package interpret

// Candidates returns the top-level JSON object and array spans of text, in
// order of appearance. Brackets inside JSON strings are ignored; prose
// outside a span is skipped byte by byte. A span whose brackets do not nest
// is dropped and scanning resumes after the mismatch. An opener that is
// never closed is treated as prose and scanning restarts just after it.
//
// Iterating bytes is safe for the ASCII delimiters because UTF-8 never
// uses them inside a multi-byte sequence.
func Candidates(text string) []string {
	var (
		out      []string
		stack    []byte
		start    = -1
		inString bool
		escape   bool
	)

	for i := 0; i <= len(text); i++ {
		if i == len(text) {
			if len(stack) == 0 {
				break
			}
			i = start
			stack = stack[:0]
			start = -1
			inString, escape = false, false
			continue
		}
		b := text[i]

		if len(stack) > 0 && inString {
			switch {
			case escape:
				escape = false
			case b == '\\':
				escape = true
			case b == '"':
				inString = false
			}
			continue
		}

		switch b {
		case '"':
			if len(stack) > 0 {
				inString = true
			}
		case '{', '[':
			if len(stack) == 0 {
				start = i
			}
			stack = append(stack, closer(b))
		case '}', ']':
			if len(stack) == 0 {
				continue
			}
			if stack[len(stack)-1] != b {
				stack = stack[:0]
				start = -1
				continue
			}
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				out = append(out, text[start:i+1])
				start = -1
			}
		}
	}
	return out
}

func closer(open byte) byte {
	if open == '{' {
		return '}'
	}
	return ']'
}
