package trainer

import "github.com/dkress/hearsay/internal/vocab"

// Round is one spoken word sequence the user must reproduce. CurrentIndex
// counts the leading entries already matched; the round is exhausted once
// it reaches the sequence length.
type Round struct {
	Sequence     []vocab.Entry
	CurrentIndex int
}

func (r Round) Exhausted() bool {
	return r.CurrentIndex >= len(r.Sequence)
}

func (r Round) Words() []string {
	words := make([]string, len(r.Sequence))
	for i, e := range r.Sequence {
		words[i] = e.Word
	}
	return words
}

func (r Round) Letters() []string {
	letters := make([]string, len(r.Sequence))
	for i, e := range r.Sequence {
		letters[i] = string(e.Letter)
	}
	return letters
}
