package recommend

// DefaultTopics is the built-in topic taxonomy, in display order.
var DefaultTopics = []Topic{
	{
		Name: "정치",
		Keywords: []string{
			"election", "vote", "voting", "parliament", "congress", "senate",
			"government", "white house", "president", "prime minister", "minister",
			"cabinet", "party", "democrat", "republican", "policy", "law", "bill",
			"campaign", "referendum",
		},
	},
	{
		Name: "경제",
		Keywords: []string{
			"economy", "economic", "market", "markets", "stock", "stocks", "share",
			"shares", "bond", "bonds", "currency", "currencies", "inflation", "gdp",
			"trade", "tariff", "business", "company", "companies", "profit",
			"earnings", "revenue", "oil", "gas", "bank", "banks", "interest rate",
			"rates", "jobs", "unemployment", "growth", "recession",
		},
	},
	{
		Name: "사회",
		Keywords: []string{
			"society", "social", "school", "schools", "education", "teacher",
			"students", "crime", "criminal", "police", "court", "trial", "lawsuit",
			"rights", "civil rights", "abortion", "gender", "women", "family",
			"families", "community", "communities", "migration", "immigration",
			"refugee", "refugees", "protest", "protests", "protesters",
			"demonstration", "violence", "shooting", "killing", "racism",
			"discrimination", "housing", "homeless",
		},
	},
	{
		Name: "국제",
		Keywords: []string{
			"world", "global", "international", "foreign", "overseas", "diplomatic",
			"diplomacy", "summit", "talks", "negotiation", "united nations", "un",
			"nato", "eu", "european union", "alliance", "sanctions", "tensions",
			"border", "conflict", "war",
		},
	},
	{
		Name: "IT/과학",
		Keywords: []string{
			"technology", "tech", "ai", "artificial intelligence", "machine learning",
			"chip", "chips", "semiconductor", "software", "hardware", "phone",
			"smartphone", "device", "gadget", "internet", "online", "platform", "app",
			"apps", "cyber", "hacker", "data", "cloud", "robot", "robotics", "space",
			"nasa", "rocket", "satellite", "science", "scientist", "research", "lab",
			"study", "climate", "climate change",
		},
	},
	{
		Name: "스포츠",
		Keywords: []string{
			"sport", "sports", "game", "match", "tournament", "cup", "league",
			"championship", "world cup", "olympic", "olympics", "football", "soccer",
			"baseball", "basketball", "nba", "mlb", "goal", "score", "win", "victory",
			"defeat", "coach", "player", "team", "fans",
		},
	},
}

// DefaultLimit is the number of recommendations shown when the caller does
// not choose one.
const DefaultLimit = 10
