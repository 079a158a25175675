// Package lang holds per-language tables: stopwords for lexical
// tokenization and date-phrase vocabularies for the date resolver.
// Unknown language tags fall back to Italian, the journal's primary
// language.
package lang

import "time"

// Normalize maps a language tag to one of the supported tables.
func Normalize(tag string) string {
	switch tag {
	case "en", "en-US", "en-GB":
		return "en"
	default:
		return "it"
	}
}

// Stopwords returns the stopword set for a language tag. The returned
// map is shared; callers must not mutate it.
func Stopwords(tag string) map[string]bool {
	if Normalize(tag) == "en" {
		return englishStopwords
	}
	return italianStopwords
}

// Months returns the month-name table for a language tag, folded
// lowercase name to month number.
func Months(tag string) map[string]time.Month {
	if Normalize(tag) == "en" {
		return englishMonths
	}
	return italianMonths
}

// IsMonthName reports whether a folded token is a month name in any
// supported language. Used by entity extraction to keep "Marzo" out of
// the entity index.
func IsMonthName(token string) bool {
	if _, ok := italianMonths[token]; ok {
		return true
	}
	_, ok := englishMonths[token]
	return ok
}

var italianMonths = map[string]time.Month{
	"gennaio": time.January, "febbraio": time.February, "marzo": time.March,
	"aprile": time.April, "maggio": time.May, "giugno": time.June,
	"luglio": time.July, "agosto": time.August, "settembre": time.September,
	"ottobre": time.October, "novembre": time.November, "dicembre": time.December,
}

var englishMonths = map[string]time.Month{
	"january": time.January, "february": time.February, "march": time.March,
	"april": time.April, "may": time.May, "june": time.June,
	"july": time.July, "august": time.August, "september": time.September,
	"october": time.October, "november": time.November, "december": time.December,
}

func setOf(words ...string) map[string]bool {
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}

// Italian stopwords, folded (no diacritics). Includes the conversational
// verbs people address a journal assistant with ("dimmi", "raccontami")
// so they never dominate lexical scoring.
var italianStopwords = setOf(
	"il", "lo", "la", "i", "gli", "le", "un", "uno", "una", "dei", "degli", "delle",
	"ad", "al", "alla", "allo", "ai", "agli", "alle", "da", "dal", "dalla", "dallo",
	"dai", "dagli", "dalle", "di", "del", "della", "dello", "in", "nel", "nella",
	"nello", "nei", "negli", "nelle", "con", "col", "coi", "su", "sul", "sulla",
	"sullo", "sui", "sugli", "sulle", "per", "tra", "fra",
	"e", "ed", "o", "od", "ma", "pero", "anzi", "oppure", "ovvero", "ossia", "cioe",
	"che", "come", "quando", "mentre", "se", "perche", "poiche", "siccome", "quindi",
	"dunque", "pertanto", "tuttavia", "pure", "eppure", "neanche", "nemmeno",
	"io", "tu", "egli", "lui", "ella", "lei", "esso", "essa", "noi", "voi", "essi",
	"esse", "loro", "me", "te", "ci", "vi", "si", "ne", "li",
	"mi", "ti", "mio", "mia", "miei", "mie", "tuo", "tua", "tuoi", "tue",
	"suo", "sua", "suoi", "sue", "nostro", "nostra", "nostri", "nostre",
	"vostro", "vostra", "vostri", "vostre", "proprio", "propria",
	"questo", "questa", "questi", "queste", "quello", "quella", "quelli", "quelle",
	"stesso", "stessa", "stessi", "stesse", "tale", "tali", "altro", "altra",
	"altri", "altre", "chi", "cui", "quale", "quali", "quanto", "quanta", "quanti",
	"quante", "dove", "cosa",
	"non", "no", "gia", "ancora", "sempre", "mai", "piu", "meno", "molto", "poco",
	"tanto", "troppo", "parecchio", "assai", "abbastanza", "piuttosto", "inoltre",
	"infatti", "invece", "anche", "solo", "soltanto", "solamente", "appena",
	"davvero", "veramente", "certamente", "sicuramente", "forse", "magari",
	"qui", "qua", "sopra", "sotto", "dentro", "fuori", "davanti", "dietro",
	"vicino", "lontano", "intorno", "attorno", "allora", "prima", "dopo", "poi",
	"subito", "presto", "tardi", "spesso", "talvolta", "qualche", "volta",
	"bene", "male", "meglio", "peggio", "cosi",
	"sono", "sei", "siamo", "siete", "era", "ero", "eri", "eravamo", "eravate",
	"erano", "sara", "saro", "sarai", "saremo", "sarete", "saranno", "sia", "siano",
	"fosse", "fossi", "fossero", "essere", "stato", "stata", "stati", "state",
	"ho", "hai", "ha", "abbiamo", "avete", "hanno", "avevo", "avevi", "aveva",
	"avevamo", "avevate", "avevano", "avro", "avrai", "avra", "avremo", "avrete",
	"avranno", "abbia", "abbiano", "avere", "avuto",
	"posso", "puoi", "puo", "possiamo", "potete", "possono", "potere", "potuto",
	"devo", "devi", "deve", "dobbiamo", "dovete", "devono", "dovere", "dovuto",
	"voglio", "vuoi", "vuole", "vogliamo", "volete", "vogliono", "volere", "voluto",
	"faccio", "fai", "fa", "facciamo", "fate", "fanno", "fare", "fatto",
	"vado", "vai", "va", "andiamo", "andate", "vanno", "andare", "andato",
	"sto", "stai", "sta", "stiamo", "stanno", "stare",
	"ogni", "tutto", "tutta", "tutti", "tutte", "niente", "nulla", "qualcosa",
	"qualcuno", "chiunque", "ovunque", "comunque",
	"conosci", "sai", "dimmi", "parlami", "raccontami", "dici", "ricordi",
	// Time words are date-resolver vocabulary, not content.
	"ieri", "oggi", "domani", "stamattina", "stasera", "stanotte", "giorno",
	"giorni", "settimana", "settimane", "mese", "mesi", "anno", "anni",
	"scorso", "scorsa", "scorsi", "scorse", "fine",
)

var englishStopwords = setOf(
	"a", "an", "the", "and", "or", "but", "if", "then", "else", "when", "while",
	"of", "at", "by", "for", "with", "about", "against", "between", "into",
	"through", "during", "before", "after", "above", "below", "to", "from", "up",
	"down", "in", "out", "on", "off", "over", "under", "again", "further",
	"i", "me", "my", "myself", "we", "our", "ours", "you", "your", "yours",
	"he", "him", "his", "she", "her", "hers", "it", "its", "they", "them", "their",
	"what", "which", "who", "whom", "this", "that", "these", "those",
	"am", "is", "are", "was", "were", "be", "been", "being",
	"have", "has", "had", "having", "do", "does", "did", "doing",
	"will", "would", "should", "can", "could", "ought", "not", "no", "nor",
	"so", "than", "too", "very", "just", "now", "here", "there", "all", "any",
	"both", "each", "few", "more", "most", "other", "some", "such", "only",
	"same", "tell", "told", "remember", "know", "went", "got",
	"yesterday", "today", "tomorrow", "day", "days", "week", "weeks",
	"month", "months", "year", "years", "last", "ago", "since",
)
