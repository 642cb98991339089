package ticker

// knownTickers is the fixed set of symbols a bare token may match.
var knownTickers = map[string]struct{}{
	"AAPL": {}, "MSFT": {}, "GOOGL": {}, "GOOG": {}, "AMZN": {}, "TSLA": {}, "META": {}, "NVDA": {},
	"BRK.A": {}, "BRK.B": {}, "JPM": {}, "JNJ": {}, "V": {}, "PG": {}, "UNH": {}, "HD": {},
	"MA": {}, "BAC": {}, "ABBV": {}, "PFE": {}, "KO": {}, "AVGO": {}, "PEP": {}, "TMO": {},
	"COST": {}, "DIS": {}, "ABT": {}, "DHR": {}, "VZ": {}, "ADBE": {}, "NFLX": {}, "XOM": {},
	"WMT": {}, "CRM": {}, "LLY": {}, "ORCL": {}, "ACN": {}, "CVX": {}, "MRK": {}, "QCOM": {},
	"TXN": {}, "AMD": {}, "HON": {}, "NKE": {}, "IBM": {}, "INTC": {}, "BA": {}, "GS": {},
	"CAT": {}, "AMGN": {}, "SBUX": {}, "INTU": {}, "BKNG": {}, "ISRG": {},
}

// companyTickers maps upper-case company name fragments to their symbol.
// Matching is by substring, so "COCA" and "COLA" both resolve to KO.
var companyTickers = []struct {
	name   string
	symbol string
}{
	{"APPLE", "AAPL"},
	{"MICROSOFT", "MSFT"},
	{"GOOGLE", "GOOGL"},
	{"ALPHABET", "GOOGL"},
	{"AMAZON", "AMZN"},
	{"TESLA", "TSLA"},
	{"META", "META"},
	{"FACEBOOK", "META"},
	{"NVIDIA", "NVDA"},
	{"BERKSHIRE", "BRK.A"},
	{"JPMORGAN", "JPM"},
	{"JOHNSON", "JNJ"},
	{"VISA", "V"},
	{"PROCTER", "PG"},
	{"GAMBLE", "PG"},
	{"NETFLIX", "NFLX"},
	{"DISNEY", "DIS"},
	{"WALMART", "WMT"},
	{"COCA", "KO"},
	{"COLA", "KO"},
	{"INTEL", "INTC"},
	{"BOEING", "BA"},
	{"GOLDMAN", "GS"},
	{"SACHS", "GS"},
	{"STARBUCKS", "SBUX"},
	{"ADOBE", "ADBE"},
}

var financialKeywords = []string{
	"stock", "stocks", "market", "trading", "investment", "portfolio",
	"earnings", "revenue", "profit", "loss", "dividend", "shares",
	"price", "valuation", "bull", "bear", "volatility", "analysis",
	"forecast", "outlook",
}

var (
	marketTerms     = []string{"market", "economy", "sector", "industry", "overall", "general"}
	newsTerms       = []string{"news", "latest", "recent", "update", "announcement"}
	analysisTerms   = []string{"analyze", "analysis", "forecast", "predict", "outlook"}
	investmentTerms = []string{"invest", "buy", "sell", "portfolio", "recommend"}
)

// IsKnown reports whether symbol is in the known ticker set.
func IsKnown(symbol string) bool {
	_, ok := knownTickers[symbol]
	return ok
}
