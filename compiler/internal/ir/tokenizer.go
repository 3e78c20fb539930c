package ir

import (
	"github.com/xiaobogaga/jmm/util"
)

// A small tokenizer for the three-address text. There are only four kinds of tokens:
// * Identifier: letters, digits, '_' and '$', not starting with a digit.
// * Integer: an optional '-' followed by digits.
// * String: "xxx", used for method names and string constants.
// * Symbol: { } ( ) [ ] . , ; : := + - * / < <= > >= == != && || !
// Comments start with // and run to the end of the line.

type TokenType int

const (
	IdentifierTP TokenType = iota
	IntegerTP
	StringTP
	SymbolTP
)

type Token struct {
	content string
	line    int
	tp      TokenType
}

type Tokenizer struct {
	currentPos  int
	currentLine int
	tokens      []*Token
}

var twoByteSymbols = map[string]bool{
	":=": true,
	"<=": true,
	">=": true,
	"==": true,
	"!=": true,
	"&&": true,
	"||": true,
}

func (tokenizer *Tokenizer) Tokenize(content []byte) ([]*Token, error) {
	tokenizer.currentPos, tokenizer.currentLine, tokenizer.tokens = 0, 1, nil
	for {
		tokenizer.trimSpaceAndComments(content)
		if tokenizer.currentPos >= len(content) {
			return tokenizer.tokens, nil
		}
		token, err := tokenizer.getNextToken(content)
		if err != nil {
			return nil, err
		}
		tokenizer.tokens = append(tokenizer.tokens, token)
	}
}

func (tokenizer *Tokenizer) trimSpaceAndComments(content []byte) {
	for tokenizer.currentPos < len(content) {
		b := content[tokenizer.currentPos]
		if b == '\n' {
			tokenizer.currentLine++
		}
		if util.IsSpace(b) {
			tokenizer.currentPos++
			continue
		}
		if b == '/' && tokenizer.peek(content, 1) == '/' {
			for tokenizer.currentPos < len(content) && content[tokenizer.currentPos] != '\n' {
				tokenizer.currentPos++
			}
			continue
		}
		return
	}
}

// peek returns the byte offset bytes after the current position, or 0 past the end.
func (tokenizer *Tokenizer) peek(content []byte, offset int) byte {
	if tokenizer.currentPos+offset >= len(content) {
		return 0
	}
	return content[tokenizer.currentPos+offset]
}

func (tokenizer *Tokenizer) getNextToken(content []byte) (*Token, error) {
	b := content[tokenizer.currentPos]
	switch {
	case util.IsNumber(b), b == '-' && util.IsNumber(tokenizer.peek(content, 1)):
		return tokenizer.tokenNumber(content), nil
	case util.IsIdentifierStart(b):
		return tokenizer.tokenIdentifier(content), nil
	case b == '"':
		return tokenizer.tokenString(content)
	}
	if twoByteSymbols[string([]byte{b, tokenizer.peek(content, 1)})] {
		return tokenizer.makeToken(content, tokenizer.currentPos+2, SymbolTP), nil
	}
	switch b {
	case '{', '}', '(', ')', '[', ']', '.', ',', ';', ':', '+', '-', '*', '/', '<', '>', '!':
		return tokenizer.makeToken(content, tokenizer.currentPos+1, SymbolTP), nil
	}
	return nil, makeSyntaxError(tokenizer.currentLine, "unexpected character %q", b)
}

func (tokenizer *Tokenizer) makeToken(content []byte, end int, tp TokenType) *Token {
	token := &Token{content: string(content[tokenizer.currentPos:end]), line: tokenizer.currentLine, tp: tp}
	tokenizer.currentPos = end
	return token
}

func (tokenizer *Tokenizer) tokenNumber(content []byte) *Token {
	end := tokenizer.currentPos + 1
	for end < len(content) && util.IsNumber(content[end]) {
		end++
	}
	return tokenizer.makeToken(content, end, IntegerTP)
}

func (tokenizer *Tokenizer) tokenIdentifier(content []byte) *Token {
	end := tokenizer.currentPos + 1
	for end < len(content) && util.IsIdentifierPart(content[end]) {
		end++
	}
	return tokenizer.makeToken(content, end, IdentifierTP)
}

func (tokenizer *Tokenizer) tokenString(content []byte) (*Token, error) {
	end := tokenizer.currentPos + 1
	for end < len(content) && content[end] != '"' && content[end] != '\n' {
		end++
	}
	if end >= len(content) || content[end] != '"' {
		return nil, makeSyntaxError(tokenizer.currentLine, "unterminated string")
	}
	token := &Token{content: string(content[tokenizer.currentPos+1 : end]), line: tokenizer.currentLine, tp: StringTP}
	tokenizer.currentPos = end + 1
	return token, nil
}
