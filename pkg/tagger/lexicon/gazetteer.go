package lexicon

import "strings"

func set(words ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[strings.ToLower(w)] = struct{}{}
	}
	return m
}

func has(m map[string]struct{}, w string) bool {
	_, ok := m[strings.ToLower(w)]
	return ok
}

var locations = set(
	"united states", "america", "united kingdom", "britain", "great britain", "england",
	"scotland", "wales", "ireland", "germany", "france", "spain", "italy", "portugal",
	"netherlands", "belgium", "switzerland", "austria", "sweden", "norway", "denmark",
	"finland", "poland", "russia", "ukraine", "china", "japan", "india", "korea",
	"south korea", "taiwan", "singapore", "israel", "canada", "mexico", "brazil",
	"argentina", "australia", "new zealand", "europe", "asia", "africa", "north america",
	"south america", "california", "texas", "washington", "new york", "florida",
	"massachusetts", "seattle", "cupertino", "redmond", "mountain view", "palo alto",
	"menlo park", "san francisco", "san jose", "los angeles", "silicon valley", "boston",
	"chicago", "austin", "london", "paris", "berlin", "munich", "hamburg", "oldenburg",
	"frankfurt", "amsterdam", "dublin", "zurich", "stockholm", "tokyo", "osaka", "beijing",
	"shanghai", "shenzhen", "hangzhou", "hong kong", "seoul", "bangalore", "toronto",
	"vancouver", "sydney", "dubai",
)

var firstNames = set(
	"steve", "tim", "bill", "elon", "jeff", "mark", "sundar", "satya", "larry", "sergey",
	"jack", "andy", "susan", "sheryl", "marissa", "jensen", "lisa", "warren", "paul",
	"peter", "john", "james", "robert", "michael", "david", "william", "richard", "thomas",
	"charles", "mary", "patricia", "jennifer", "linda", "elizabeth", "barbara", "sarah",
	"karen", "nancy", "anna", "emma", "olivia", "sophia", "daniel", "matthew", "anthony",
	"donald", "steven", "kevin", "brian", "george", "edward", "ronald", "timothy", "jason",
	"jeffrey", "ryan", "jacob", "gary", "eric", "stephen", "jonathan", "justin", "scott",
	"frank", "benjamin", "gregory", "samuel", "patrick", "alexander", "dennis", "tyler",
	"aaron", "adam", "henry", "nathan", "douglas", "kyle", "walter", "ethan", "jeremy",
	"keith", "christian", "roger", "noah", "carl", "sean", "arthur", "jesse", "bruce",
	"alan", "juan", "roy", "vincent", "louis", "philip", "bradley", "reed", "evan", "jony",
	"phil", "craig", "ginni", "safra", "arvind", "indra", "tony", "jim", "bob", "ken",
	"greg", "marc", "sam", "dara", "travis", "drew", "masayoshi", "pony", "lei", "ren",
	"laura", "julia", "maria", "claire", "anne", "kate", "emily", "jessica", "rachel",
	"sophie", "hannah", "lena", "lukas", "felix", "max", "jan", "sven", "hans", "klaus",
)

var honorifics = set("mr", "mrs", "ms", "dr", "prof", "sir", "dame", "lord", "lady")

// stopwords never start an entity even when capitalized.
var stopwords = set(
	"the", "a", "an", "it", "its", "this", "that", "these", "those", "he", "she", "they",
	"we", "i", "you", "his", "her", "their", "our", "my", "your", "in", "on", "at", "for",
	"with", "by", "from", "to", "of", "after", "before", "during", "however", "meanwhile",
	"also", "but", "and", "or", "if", "when", "while", "although", "though", "today",
	"yesterday", "tomorrow", "last", "next", "according", "as", "there", "here", "since",
	"until", "because", "following", "earlier", "later", "then", "now", "recently",
	"despite", "under", "over", "through", "both", "each", "every", "all", "some", "many",
	"most", "other", "another", "such", "what", "which", "who", "why", "how", "where",
	"so", "thus", "yet", "still", "once", "analysts", "officials", "experts", "founded",
	"based", "headquartered", "born", "former", "formerly",
)

// nonEntityWords are capitalized words that are roles or labels rather than
// names.
var nonEntityWords = set(
	"ceo", "cfo", "cto", "coo", "cio", "cmo", "chairman", "chairwoman", "chair",
	"president", "founder", "co-founder", "cofounder", "director", "chief", "executive",
	"officer", "vice", "head", "manager", "series", "monday", "tuesday", "wednesday",
	"thursday", "friday", "saturday", "sunday", "inc", "llc", "corp", "ltd", "co",
	"mr", "mrs", "ms", "dr", "prof", "sir", "dame", "lord", "lady",
)

// designatorWords precede a label that is not a name, as in "Series B".
var designatorWords = set("series", "round", "phase", "tier", "class")

var orgSuffixWords = set("inc", "llc", "corp", "corporation", "ltd", "limited", "co", "plc", "gmbh", "ag")

var companyWords = set(
	"electronics", "motors", "systems", "technologies", "technology", "labs", "group",
	"holdings", "bank", "airlines", "capital", "partners", "ventures", "pharmaceuticals",
	"media", "studios", "networks", "software", "industries", "energy", "solutions",
	"enterprises", "communications", "entertainment", "robotics", "semiconductor", "ai",
)

var orgInstitutionWords = set(
	"university", "institute", "foundation", "agency", "association", "committee",
	"commission", "council", "ministry", "department", "school", "college", "society",
	"union", "federation", "organization", "organisation",
)

var eventWords = set(
	"conference", "summit", "expo", "olympics", "festival", "games", "awards", "forum",
	"keynote", "wwdc", "ces", "convention", "symposium", "hackathon", "week",
)

var facilityWords = set(
	"airport", "bridge", "stadium", "tower", "building", "station", "factory", "plant",
	"gigafactory", "campus", "hospital", "arena", "center", "centre", "museum", "mall",
)

// connectors may appear inside a multi word name when followed by another
// capitalized word.
var connectors = set("of", "&", "de", "von", "van", "der", "la", "du")

var prepositions = set(
	"of", "in", "at", "on", "for", "with", "by", "from", "to", "into", "against", "over",
	"about", "under", "after", "before", "during", "through", "across", "between",
	"among", "like", "as", "within", "without", "near", "than", "via", "since", "until",
)

var determiners = set("the", "a", "an", "this", "that", "these", "those", "its", "their", "his", "her", "our", "my", "your")

var pronouns = set("it", "he", "she", "they", "we", "i", "you", "who", "which", "that")

var conjunctions = set("and", "or", "but", "&", "nor")

var beForms = set("is", "are", "was", "were", "be", "been", "being", "am")

var auxiliaries = set(
	"is", "are", "was", "were", "be", "been", "being", "am", "has", "have", "had",
	"will", "would", "can", "could", "may", "might", "shall", "should", "must", "do",
	"does", "did",
)

var adverbs = set(
	"also", "not", "recently", "already", "still", "now", "later", "formerly",
	"previously", "then", "just", "reportedly", "officially", "finally", "eventually",
	"originally", "currently", "once", "never", "first",
)

var commonVerbs = set(
	"said", "says", "say", "announced", "announces", "became", "become", "becomes",
	"reported", "reports", "added", "stated", "told", "expects", "expected", "plans",
	"planned", "agreed", "agrees", "named", "appointed", "resigned", "raised", "raises",
	"stepped", "steps", "happened", "took", "takes", "won", "lost", "sold", "spent",
	"paid", "signed", "confirmed", "completed", "closed", "opened", "moved", "returned",
	"left", "leaves", "went", "came", "held", "hosted", "presented", "spoke", "merged",
	"invested", "invests", "partnered", "partners", "teamed", "works", "worked",
)

// irregularParticiples are past participles that do not end in -ed.
var irregularParticiples = set(
	"built", "made", "bought", "sold", "led", "run", "held", "known", "taken", "won",
	"given", "begun", "shown", "seen", "written", "paid", "spent", "brought", "owned",
)
