// Package voice turns free-form speech transcripts into chess move tokens.
package voice

import "strings"

const (
	shortCastle = "O-O"
	longCastle  = "O-O-O"
)

var accentReplacer = strings.NewReplacer(
	"ş", "s",
	"ı", "i",
	"ğ", "g",
	"ü", "u",
	"ö", "o",
	"ç", "c",
)

// pieceKeywords maps Turkish and English piece names to SAN letters.
// Order matters: longer / more specific names are checked first.
var pieceKeywords = []struct {
	word   string
	letter string
}{
	{"knight", "N"},
	{"bishop", "B"},
	{"queen", "Q"},
	{"vezir", "Q"},
	{"rook", "R"},
	{"kale", "R"},
	{"king", "K"},
	{"fil", "B"},
	{"sah", "K"},
	{"at", "N"},
}

// MoveFromTranscript maps a recognized speech string to a best-guess move
// token in SAN or coordinate notation. The second return value is false when
// no move could be extracted.
//
// The pawn-origin guess for single-square inputs ("e4" → "e2e4") assumes the
// speaker plays White: destinations on rank 3 or 4 start from rank 2, all
// others from rank 7.
func MoveFromTranscript(transcript string) (string, bool) {
	text := accentReplacer.Replace(strings.ToLower(strings.TrimSpace(transcript)))
	if text == "" {
		return "", false
	}

	// Long castle first: "o-o" is a substring of "o-o-o".
	if strings.Contains(text, "uzun rok") || strings.Contains(text, "o-o-o") {
		return longCastle, true
	}
	if strings.Contains(text, "kisa rok") || strings.Contains(text, "o-o") {
		return shortCastle, true
	}

	piece := ""
	for _, kw := range pieceKeywords {
		if strings.Contains(text, kw.word) {
			piece = kw.letter
			text = strings.ReplaceAll(text, kw.word, " ")
			break
		}
	}

	var squares []string
	for _, word := range strings.Fields(text) {
		token := stripNonAlnum(word)
		switch {
		case isSquare(token):
			squares = append(squares, token)
		case len(token) == 4 && isSquare(token[:2]) && isSquare(token[2:]):
			// Complete coordinate move spoken as one word.
			return token, true
		}
	}

	switch len(squares) {
	case 1:
		if piece != "" {
			return piece + squares[0], true
		}
		dest := squares[0]
		origin := "7"
		if dest[1] == '3' || dest[1] == '4' {
			origin = "2"
		}
		return dest[:1] + origin + dest, true
	case 2:
		return squares[0] + squares[1], true
	default:
		return "", false
	}
}

func isSquare(s string) bool {
	return len(s) == 2 && s[0] >= 'a' && s[0] <= 'h' && s[1] >= '1' && s[1] <= '8'
}

func stripNonAlnum(s string) string {
	var b strings.Builder
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
