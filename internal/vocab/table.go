// Package vocab holds the fixed phonetic-alphabet word table used to build
// rounds. The table is immutable and shared; callers sample from it with
// their own random source.
package vocab

import "math/rand"

// Entry pairs a single uppercase letter with its phonetic-alphabet word.
type Entry struct {
	Letter byte
	Word   string
}

// NATO/ICAO spelling alphabet, one entry per letter A-Z.
var table = []Entry{
	{'A', "Alfa"},
	{'B', "Bravo"},
	{'C', "Charlie"},
	{'D', "Delta"},
	{'E', "Echo"},
	{'F', "Foxtrot"},
	{'G', "Golf"},
	{'H', "Hotel"},
	{'I', "India"},
	{'J', "Juliett"},
	{'K', "Kilo"},
	{'L', "Lima"},
	{'M', "Mike"},
	{'N', "November"},
	{'O', "Oscar"},
	{'P', "Papa"},
	{'Q', "Quebec"},
	{'R', "Romeo"},
	{'S', "Sierra"},
	{'T', "Tango"},
	{'U', "Uniform"},
	{'V', "Victor"},
	{'W', "Whiskey"},
	{'X', "Xray"},
	{'Y', "Yankee"},
	{'Z', "Zulu"},
}

// Entries returns a copy of the full table, ordered A-Z.
func Entries() []Entry {
	out := make([]Entry, len(table))
	copy(out, table)
	return out
}

// Len reports the number of entries in the table.
func Len() int {
	return len(table)
}

// Lookup returns the entry for the given letter. Lowercase input is
// accepted. The second return value is false when the letter is not in
// the table.
func Lookup(letter byte) (Entry, bool) {
	if letter >= 'a' && letter <= 'z' {
		letter -= 'a' - 'A'
	}
	if letter < 'A' || letter > 'Z' {
		return Entry{}, false
	}
	return table[letter-'A'], true
}

// Sample draws n entries independently and uniformly at random, with
// replacement. The same letter may appear more than once in a round.
func Sample(n int, rng *rand.Rand) []Entry {
	if n <= 0 {
		return nil
	}
	out := make([]Entry, n)
	for i := range out {
		out[i] = table[rng.Intn(len(table))]
	}
	return out
}
