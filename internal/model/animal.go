package model

// Animal is one of the fixed possible outcomes of a draw.
type Animal struct {
	ID    string // stable key, equals Code for this catalogue
	Name  string // display name, Spanish, with accents
	Code  string // canonical 2-digit number, zero-padded, "00".."36"
	Glyph string // emoji used in digests
}
