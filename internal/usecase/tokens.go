package usecase

import (
	"sync"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"
)

// TokenCounter estimates how many model tokens a text consumes.
type TokenCounter interface {
	Count(text string) int
}

// TiktokenCounter counts with a tiktoken encoding, loaded on first use.
// When the encoding cannot be loaded it falls back to ~4 characters per token.
type TiktokenCounter struct {
	encoding string

	once sync.Once
	enc  *tiktoken.Tiktoken
	err  error
}

func NewTiktokenCounter(encoding string) *TiktokenCounter {
	if encoding == "" {
		encoding = "cl100k_base"
	}
	return &TiktokenCounter{encoding: encoding}
}

func (c *TiktokenCounter) Count(text string) int {
	c.once.Do(func() {
		c.enc, c.err = tiktoken.GetEncoding(c.encoding)
	})
	if c.err != nil || c.enc == nil {
		return approxTokens(text)
	}
	return len(c.enc.Encode(text, nil, nil))
}

// LoadErr reports why the encoding is unavailable, if it is.
func (c *TiktokenCounter) LoadErr() error {
	return c.err
}

func approxTokens(text string) int {
	n := utf8.RuneCountInString(text)
	return (n + 3) / 4
}
