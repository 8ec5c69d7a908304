package services

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/vocal/internal/core/domain"
)

var (
	marketPattern = regexp.MustCompile(`^[a-z]\d{1,2}-[a-z]{2}$`)
	regionPattern = regexp.MustCompile(`^[A-Z]\d{1,2}$`)
	isoDate       = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	yearPattern   = regexp.MustCompile(`^(19|20)\d{2}$`)
	countPattern  = regexp.MustCompile(`^\d{1,4}$`)
)

// countLeads precede an explicit result count ("top 5", "die 10").
var countLeads = map[string]bool{
	"top": true, "die": true, "the": true, "first": true, "erste": true, "ersten": true,
	"letzte": true, "letzten": true, "last": true, "show": true, "zeig": true, "zeige": true,
	"only": true, "nur": true, "give": true, "gib": true, "list": true, "liste": true, "me": true, "mir": true,
}

// countNouns follow an explicit result count ("5 complaints").
var countNouns = map[string]bool{
	"complaints": true, "complaint": true, "comments": true, "comment": true,
	"examples": true, "example": true, "reviews": true, "results": true, "records": true,
	"responses": true, "quotes": true, "verbatims": true, "feedbacks": true,
	"beschwerden": true, "kommentare": true, "beispiele": true, "ergebnisse": true,
	"meinungen": true, "aussagen": true, "zitate": true, "rückmeldungen": true, "einträge": true,
}

// Date keywords.
var (
	sinceWords = map[string]bool{"since": true, "seit": true, "ab": true, "from": true, "after": true, "nach": true, "von": true}
	untilWords = map[string]bool{"until": true, "bis": true, "before": true, "vor": true, "to": true}
	yearWords  = map[string]bool{"in": true, "im": true, "year": true, "jahr": true}
)

// geoCues must precede a bare country code ("from DE", "aus AT").
var geoCues = map[string]bool{
	"in": true, "im": true, "from": true, "aus": true, "von": true,
	"country": true, "land": true, "market": true, "markt": true,
}

// fillerWords are dropped from the semantic query after extraction.
var fillerWords = map[string]bool{
	"a": true, "an": true, "the": true, "of": true, "from": true, "in": true, "on": true, "about": true,
	"for": true, "with": true, "and": true, "or": true, "me": true, "show": true, "give": true, "find": true,
	"list": true, "top": true, "please": true, "category": true, "country": true, "market": true, "region": true,
	"der": true, "die": true, "das": true, "den": true, "dem": true, "des": true, "ein": true, "eine": true,
	"aus": true, "von": true, "im": true, "zu": true, "zum": true, "zur": true, "über": true, "für": true,
	"mit": true, "und": true, "oder": true, "mir": true, "zeig": true, "zeige": true, "finde": true,
	"bitte": true, "kategorie": true, "land": true, "markt": true, "seit": true, "since": true, "bis": true,
	"until": true, "ab": true,
}

// Extraction is a parsed retrieval request.
type Extraction struct {
	// Count is the result bound, already clamped to the ceiling.
	Count int

	// CountGiven is set when the text named a count.
	CountGiven bool

	// Clamped is set when the named count exceeded the ceiling.
	Clamped bool

	// Requested is the count as written, before clamping.
	Requested int

	Filters domain.FilterSet
	Ignored []domain.IgnoredFilter

	// Query is the remaining semantic query.
	Query string
}

// Extractor parses counts and filters out of free text.
type Extractor struct {
	vocab        domain.Vocabulary
	defaultCount int
	ceiling      int
}

// NewExtractor creates an extractor. Non-positive bounds use the defaults.
func NewExtractor(vocab domain.Vocabulary, defaultCount, ceiling int) *Extractor {
	if ceiling <= 0 {
		ceiling = domain.DefaultMaxResultsCeiling
	}
	if defaultCount <= 0 {
		defaultCount = domain.DefaultMaxResults
	}
	if defaultCount > ceiling {
		defaultCount = ceiling
	}
	return &Extractor{vocab: vocab, defaultCount: defaultCount, ceiling: ceiling}
}

// Extract parses text. Geography is validated against snap when it holds
// records; values absent from the corpus are reported as ignored.
func (e *Extractor) Extract(text string, snap *domain.Snapshot) Extraction {
	toks := tokenize(text)
	ex := Extraction{Count: e.defaultCount}

	e.extractDates(toks, &ex)
	e.extractCount(toks, &ex)
	e.extractGeography(toks, snap, &ex)
	e.extractLabels(toks, &ex)

	ex.Query = strings.TrimSpace(toks.remaining(fillerWords))
	if ex.Query == "" {
		ex.Query = strings.TrimSpace(text)
	}
	return ex
}

func (e *Extractor) extractCount(toks *tokens, ex *Extraction) {
	for i, tok := range toks.items {
		if toks.used[i] || !countPattern.MatchString(tok.lower) {
			continue
		}
		prev, next := toks.lower(i-1), toks.lower(i+1)
		if !countLeads[prev] && !countNouns[next] && i != 0 {
			continue
		}
		n, err := strconv.Atoi(tok.lower)
		if err != nil || n <= 0 {
			continue
		}

		ex.CountGiven = true
		ex.Requested = n
		ex.Count = n
		if n > e.ceiling {
			ex.Count = e.ceiling
			ex.Clamped = true
		}
		toks.consume(i, 1)
		if prev == "top" {
			toks.consume(i-1, 1)
		}
		return
	}
}

func (e *Extractor) extractDates(toks *tokens, ex *Extraction) {
	var undirected []time.Time

	for i, tok := range toks.items {
		prev := toks.lower(i - 1)

		switch {
		case isoDate.MatchString(tok.lower):
			day, err := time.Parse(domain.DateLayout, tok.lower)
			if err != nil {
				ex.Ignored = append(ex.Ignored, domain.IgnoredFilter{Field: domain.FieldDateFrom, Value: tok.text, Reason: "invalid date"})
				toks.consume(i, 1)
				continue
			}
			switch {
			case sinceWords[prev]:
				ex.Filters.DateFrom = &day
			case untilWords[prev]:
				ex.Filters.DateTo = &day
			default:
				undirected = append(undirected, day)
			}
			toks.consume(i, 1)
			if sinceWords[prev] || untilWords[prev] {
				toks.consume(i-1, 1)
			}

		// A year opening the turn ("2024 complaints") filters like "in 2024".
		case yearPattern.MatchString(tok.lower) && (i == 0 || sinceWords[prev] || untilWords[prev] || yearWords[prev]):
			year, _ := strconv.Atoi(tok.lower)
			start := time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC)
			end := time.Date(year, 12, 31, 0, 0, 0, 0, time.UTC)
			switch {
			case sinceWords[prev]:
				ex.Filters.DateFrom = &start
			case untilWords[prev]:
				ex.Filters.DateTo = &end
			default:
				ex.Filters.DateFrom = &start
				ex.Filters.DateTo = &end
			}
			if i == 0 {
				toks.consume(i, 1)
			} else {
				toks.consume(i-1, 2)
			}
		}
	}

	sort.Slice(undirected, func(i, j int) bool { return undirected[i].Before(undirected[j]) })
	switch len(undirected) {
	case 0:
	case 1:
		if ex.Filters.DateFrom == nil && ex.Filters.DateTo == nil {
			ex.Filters.DateFrom, ex.Filters.DateTo = &undirected[0], &undirected[0]
		}
	default:
		first, last := undirected[0], undirected[len(undirected)-1]
		if ex.Filters.DateFrom == nil {
			ex.Filters.DateFrom = &first
		}
		if ex.Filters.DateTo == nil {
			ex.Filters.DateTo = &last
		}
	}

	if ex.Filters.DateFrom != nil && ex.Filters.DateTo != nil && ex.Filters.DateTo.Before(*ex.Filters.DateFrom) {
		ex.Ignored = append(ex.Ignored, domain.IgnoredFilter{
			Field: domain.FieldDateTo, Value: ex.Filters.DateTo.Format(domain.DateLayout), Reason: "before start date",
		})
		ex.Filters.DateTo = nil
	}
}

func (e *Extractor) extractGeography(toks *tokens, snap *domain.Snapshot, ex *Extraction) {
	validate := snap != nil && !snap.Empty

	// Explicit market identifiers such as C1-DE.
	for i, tok := range toks.items {
		if toks.used[i] || !marketPattern.MatchString(tok.lower) {
			continue
		}
		toks.consume(i, 1)
		market := strings.ToUpper(tok.text)
		switch {
		case ex.Filters.Market != "":
			ex.Ignored = append(ex.Ignored, domain.IgnoredFilter{Field: domain.FieldMarket, Value: market, Reason: "only one market per query"})
		case validate && !snap.HasMarket(market):
			ex.Ignored = append(ex.Ignored, domain.IgnoredFilter{Field: domain.FieldMarket, Value: market, Reason: "unknown market"})
		default:
			ex.Filters.Market = market
		}
	}

	// "region C1".
	for i, tok := range toks.items {
		if toks.used[i] || (tok.lower != "region" && tok.lower != "regionen") {
			continue
		}
		next := strings.ToUpper(toks.lower(i + 1))
		if !regionPattern.MatchString(next) {
			continue
		}
		toks.consume(i, 2)
		if validate && !snap.HasRegion(next) {
			ex.Ignored = append(ex.Ignored, domain.IgnoredFilter{Field: domain.FieldRegion, Value: next, Reason: "unknown region"})
			continue
		}
		ex.Filters.Region = next
	}

	// Country names, then bare upper-case country codes.
	code, value := "", ""
	if key, c, ok := firstMatch(toks, e.vocab.CountryNames, true); ok {
		code, value = strings.ToUpper(c), key
	} else {
		known := e.knownCountryCodes(snap)
		for i, tok := range toks.items {
			if toks.used[i] || len(tok.text) != 2 || tok.text != strings.ToUpper(tok.text) || !known[tok.text] {
				continue
			}
			if !geoCues[toks.lower(i-1)] {
				continue
			}
			code, value = tok.text, tok.text
			toks.consume(i, 1)
			break
		}
	}
	if code == "" {
		return
	}
	if validate && !snap.HasCountry(code) {
		ex.Ignored = append(ex.Ignored, domain.IgnoredFilter{Field: domain.FieldCountry, Value: value, Reason: "no feedback from this country"})
		return
	}
	ex.Filters.Country = code
}

// knownCountryCodes collects codes from the vocabulary and the corpus.
func (e *Extractor) knownCountryCodes(snap *domain.Snapshot) map[string]bool {
	known := map[string]bool{}
	for _, c := range e.vocab.CountryNames {
		known[strings.ToUpper(c)] = true
	}
	if snap != nil {
		for _, c := range snap.Countries {
			known[strings.ToUpper(c)] = true
		}
	}
	return known
}

// ResolveMarket maps a user-supplied market value onto the corpus.
// An exact market ID wins; otherwise a country code or country name
// (via countries) that occurs in exactly one market resolves to it; then
// a unique partial match of the market ID.
func ResolveMarket(value string, snap *domain.Snapshot, countries map[string]string) (string, bool) {
	value = strings.TrimSpace(value)
	if value == "" || snap == nil {
		return "", false
	}
	upper := strings.ToUpper(value)
	for _, m := range snap.Markets {
		if strings.EqualFold(m, upper) {
			return m, true
		}
	}

	if code, ok := countries[strings.ToLower(value)]; ok {
		upper = strings.ToUpper(code)
	}

	var byCountry, partial []string
	for _, m := range snap.Markets {
		if _, country := domain.ParseMarket(m); country == upper {
			byCountry = append(byCountry, m)
		}
		if strings.Contains(strings.ToUpper(m), upper) {
			partial = append(partial, m)
		}
	}
	if len(byCountry) == 1 {
		return byCountry[0], true
	}
	if len(byCountry) == 0 && len(partial) == 1 {
		return partial[0], true
	}
	return "", false
}

// ResolveFilters validates structured filters against the corpus the way
// free-text extraction does. Unknown geography and labels are dropped and
// reported.
func ResolveFilters(f domain.FilterSet, snap *domain.Snapshot, vocab domain.Vocabulary) (domain.FilterSet, []domain.IgnoredFilter) {
	var ignored []domain.IgnoredFilter
	drop := func(field domain.FilterField, reason string) {
		ignored = append(ignored, domain.IgnoredFilter{Field: field, Value: f.Value(field), Reason: reason})
		f = f.Without(field)
	}

	if f.Sentiment != "" {
		if s, ok := domain.ParseSentiment(string(f.Sentiment)); ok {
			f.Sentiment = s
		} else {
			drop(domain.FieldSentiment, "unknown sentiment")
		}
	}
	if f.Category != "" {
		if c, ok := parseCategory(string(f.Category)); ok {
			f.Category = c
		} else {
			drop(domain.FieldCategory, "unknown category")
		}
	}
	if f.Topic != "" {
		if t, ok := domain.IsKnownTopic(f.Topic); ok {
			f.Topic = t
		} else {
			drop(domain.FieldTopic, "unknown topic")
		}
	}

	if snap == nil || snap.Empty {
		return f, ignored
	}

	if f.Market != "" {
		if m, ok := ResolveMarket(f.Market, snap, vocab.CountryNames); ok {
			f.Market = m
		} else {
			drop(domain.FieldMarket, "unknown market")
		}
	}
	if f.Region != "" && !snap.HasRegion(f.Region) {
		drop(domain.FieldRegion, "unknown region")
	}
	if f.Country != "" {
		code := f.Country
		if c, ok := vocab.CountryNames[strings.ToLower(code)]; ok {
			code = c
		}
		if snap.HasCountry(code) {
			f.Country = strings.ToUpper(code)
		} else {
			drop(domain.FieldCountry, "no feedback from this country")
		}
	}
	return f, ignored
}

// parseCategory accepts category names in any case.
func parseCategory(s string) (domain.ScoreCategory, bool) {
	for _, c := range domain.AllScoreCategories() {
		if strings.EqualFold(string(c), strings.TrimSpace(s)) {
			return c, true
		}
	}
	return "", false
}

func (e *Extractor) extractLabels(toks *tokens, ex *Extraction) {
	if _, s, ok := firstMatch(toks, e.vocab.SentimentTerms, true); ok {
		ex.Filters.Sentiment = s
	}
	if _, c, ok := firstMatch(toks, e.vocab.CategoryTerms, true); ok {
		ex.Filters.Category = c
	}

	topics := make(map[string]string, len(e.vocab.TopicAliases)+len(domain.AllTopics()))
	for alias, topic := range e.vocab.TopicAliases {
		topics[alias] = topic
	}
	for _, topic := range domain.AllTopics() {
		if topic == domain.DefaultTopic {
			continue
		}
		topics[strings.ToLower(topic)] = topic
	}
	if _, topic, ok := firstMatch(toks, topics, true); ok {
		ex.Filters.Topic = topic
	}
}
