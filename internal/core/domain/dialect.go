package domain

// Dialect is the style language tag parsed from a module id.
type Dialect string

const (
	// DialectNone means the id carries no style extension.
	DialectNone Dialect = ""
	// DialectCSS is plain CSS.
	DialectCSS Dialect = "css"
	// DialectPCSS is plain CSS written for the transform chain.
	DialectPCSS Dialect = "pcss"
	// DialectPostCSS is an alias of DialectPCSS.
	DialectPostCSS Dialect = "postcss"
	// DialectSCSS is the brace syntax of Sass.
	DialectSCSS Dialect = "scss"
	// DialectSass is the indented syntax of Sass.
	DialectSass Dialect = "sass"
	// DialectLess is Less.
	DialectLess Dialect = "less"
	// DialectStyl is Stylus.
	DialectStyl Dialect = "styl"
	// DialectStylus is an alias of DialectStyl.
	DialectStylus Dialect = "stylus"
)

// Family groups dialects that share a compiler.
type Family int

const (
	// FamilyPlain needs no preprocessing.
	FamilyPlain Family = iota
	// FamilySass is compiled by Dart Sass.
	FamilySass
	// FamilyLess is compiled by lessc.
	FamilyLess
	// FamilyStylus is compiled by stylus.
	FamilyStylus
)

// Family returns the compiler family of the dialect.
func (d Dialect) Family() Family {
	switch d {
	case DialectSCSS, DialectSass:
		return FamilySass
	case DialectLess:
		return FamilyLess
	case DialectStyl, DialectStylus:
		return FamilyStylus
	case DialectNone, DialectCSS, DialectPCSS, DialectPostCSS:
		return FamilyPlain
	default:
		return FamilyPlain
	}
}

// IsPreprocessed reports whether the dialect needs a preprocessor before the transform chain.
func (d Dialect) IsPreprocessed() bool {
	return d.Family() != FamilyPlain
}

// String returns the name of the family.
func (f Family) String() string {
	switch f {
	case FamilySass:
		return "sass"
	case FamilyLess:
		return "less"
	case FamilyStylus:
		return "stylus"
	case FamilyPlain:
		return "css"
	default:
		return "css"
	}
}

// AdditionalDataSeparator returns the text placed between prepended data and the source.
func (d Dialect) AdditionalDataSeparator() string {
	if d.Family() == FamilyStylus {
		return "\n"
	}
	return ""
}
