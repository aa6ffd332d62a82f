package tsconfig

// stripJSONC removes the project-file dialect extras (line and block
// comments, trailing commas) so the remainder parses as strict JSON.
// Comment bytes are replaced with spaces to keep offsets stable for error
// messages.
func stripJSONC(src []byte) []byte {
	out := make([]byte, len(src))
	copy(out, src)

	const (
		stateCode = iota
		stateString
		stateLineComment
		stateBlockComment
	)
	state := stateCode
	lastComma := -1

	for i := 0; i < len(out); i++ {
		c := out[i]
		switch state {
		case stateCode:
			switch {
			case c == '"':
				state = stateString
				lastComma = -1
			case c == '/' && i+1 < len(out) && out[i+1] == '/':
				state = stateLineComment
				out[i] = ' '
			case c == '/' && i+1 < len(out) && out[i+1] == '*':
				state = stateBlockComment
				out[i] = ' '
			case c == ',':
				lastComma = i
			case c == '}' || c == ']':
				if lastComma >= 0 {
					out[lastComma] = ' '
				}
				lastComma = -1
			case c == ' ' || c == '\t' || c == '\r' || c == '\n':
				// whitespace keeps a pending trailing comma pending
			default:
				lastComma = -1
			}
		case stateString:
			if c == '\\' {
				i++
			} else if c == '"' {
				state = stateCode
			}
		case stateLineComment:
			if c == '\n' {
				state = stateCode
			} else {
				out[i] = ' '
			}
		case stateBlockComment:
			if c == '*' && i+1 < len(out) && out[i+1] == '/' {
				out[i] = ' '
				out[i+1] = ' '
				i++
				state = stateCode
			} else if c != '\n' {
				out[i] = ' '
			}
		}
	}
	return out
}
