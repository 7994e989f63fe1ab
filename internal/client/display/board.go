package display

import (
	"fmt"
	"io"
	"strings"
)

// RenderBoard writes an ASCII board with colored pieces.
// White pieces are uppercase, black lowercase; the first and last lines hold file letters.
func RenderBoard(w io.Writer, asciiBoard string) {
	lines := strings.Split(asciiBoard, "\n")
	last := len(lines) - 1

	var sb strings.Builder
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		isFileLine := i == 0 || i == last

		for _, char := range line {
			switch {
			case char >= 'a' && char <= 'h' && isFileLine, char >= '1' && char <= '8':
				sb.WriteString(Cyan + string(char) + Reset)
			case char >= 'A' && char <= 'Z':
				sb.WriteString(Blue + string(char) + Reset)
			case char >= 'a' && char <= 'z':
				sb.WriteString(Red + string(char) + Reset)
			default:
				sb.WriteRune(char)
			}
		}
		sb.WriteByte('\n')
	}
	fmt.Fprint(w, sb.String())
}

// ColorForTurn returns colored turn indicator
func ColorForTurn(white bool) string {
	if white {
		return Blue + "White" + Reset
	}
	return Red + "Black" + Reset
}
