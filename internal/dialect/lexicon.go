package dialect

// Lexicon holds the marker vocabulary for one dialect. Words are matched as
// substrings so attached prefixes and suffixes still count.
type Lexicon struct {
	Dialect Dialect
	Words   []string
	Weight  float64
}

// lexicons is the declared scoring order. Iteration over this slice, not a
// map, is what makes tie-breaks deterministic: on equal scores the dialect
// listed first wins.
var lexicons = []Lexicon{
	{
		Dialect: DialectEgyptian,
		Words:   []string{"ازيك", "عايز", "ايه", "النهارده", "معلم", "دلوقتي", "امبارح", "كده", "اوي", "مفيش"},
		Weight:  1.3,
	},
	{
		Dialect: DialectSaudi,
		Words:   []string{"وش", "ليش", "ابغى", "الحين", "كذا", "مره", "تبي", "يعطيك العافية"},
		Weight:  1.15,
	},
	{
		Dialect: DialectEmirati,
		Words:   []string{"شحالك", "وايد", "مب", "عساك", "يالس", "بروحي"},
		Weight:  1.1,
	},
	{
		Dialect: DialectKuwaiti,
		Words:   []string{"شلونك", "چذي", "عيل", "هالحين", "شكو", "قاعدين"},
		Weight:  1.1,
	},
	{
		Dialect: DialectLevantine,
		Words:   []string{"شو", "هيك", "هلق", "كتير", "بدي", "منيح", "تكرم"},
		Weight:  1.2,
	},
	{
		Dialect: DialectGulf,
		Words:   []string{"شلون", "عاد", "زين", "يبيله", "طرش", "جذي"},
		Weight:  1.0,
	},
	{
		Dialect: DialectMaghrebi,
		Words:   []string{"واش", "بزاف", "كيفاش", "دابا", "مزيان", "لاباس"},
		Weight:  1.2,
	},
	{
		Dialect: DialectMSA,
		Words:   []string{"لماذا", "من فضلك", "هل يمكن", "شكرا جزيلا", "بالتأكيد"},
		Weight:  0.8,
	},
}

// geoDialects maps ISO-3166 alpha-2 country codes to the dialect most
// commonly spoken there. Countries without a clear single dialect are
// deliberately absent.
var geoDialects = map[string]Dialect{
	"EG": DialectEgyptian,
	"SA": DialectSaudi,
	"AE": DialectEmirati,
	"KW": DialectKuwaiti,
	"QA": DialectGulf,
	"BH": DialectGulf,
	"OM": DialectGulf,
	"JO": DialectLevantine,
	"LB": DialectLevantine,
	"SY": DialectLevantine,
	"PS": DialectLevantine,
	"MA": DialectMaghrebi,
	"DZ": DialectMaghrebi,
	"TN": DialectMaghrebi,
	"LY": DialectMaghrebi,
}
