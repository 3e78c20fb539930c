package util

// Byte classes shared by the IR reader. Identifiers in IR text follow the source
// language: letters, digits, '_' and '$', never starting with a digit.

func IsNumber(b byte) bool {
	return b >= '0' && b <= '9'
}

func IsLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func IsUnderScoreOrDollar(b byte) bool {
	return b == '_' || b == '$'
}

func IsIdentifierStart(b byte) bool {
	return IsLetter(b) || IsUnderScoreOrDollar(b)
}

func IsIdentifierPart(b byte) bool {
	return IsIdentifierStart(b) || IsNumber(b)
}

func IsSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r' || b == '\f' || b == '\v'
}
