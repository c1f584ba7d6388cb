package assistant

import (
	"github.com/wasilibs/go-re2"
)

// entityField names where a capture group lands in Entities
type entityField int

const (
	skip entityField = iota
	productName
	quantity
	searchTerm
	period
)

type IntentPattern struct {
	Pattern *re2.Regexp
	// Groups maps capture group i+1 to an entity field
	Groups []entityField
}

// IntentDefinition is one row of the classifier table
type IntentDefinition struct {
	Intent   Intent
	Action   string
	Patterns []IntentPattern
	// DefaultQuantity is applied when the intent carries a quantity and none was captured
	DefaultQuantity *int
	// Dated intents resolve a period into a date range, "today" when none was given
	Dated bool
}

func p(expr string, groups ...entityField) IntentPattern {
	return IntentPattern{Pattern: re2.MustCompile(expr), Groups: groups}
}

const periods = `(today|yesterday|this week|last week|this month|last month|this year|last year)`

// defaultIntents is evaluated top to bottom and the first matching pattern
// wins, so specific patterns sit above general ones that overlap them.
var defaultIntents = []IntentDefinition{
	{
		Intent: IntentAddProduct,
		Action: ActionCreateProduct,
		Patterns: []IntentPattern{
			p(`^add (\d+) (?:units? of |pieces? of |x )?(.+?)(?: to (?:the )?(?:inventory|stock))?$`, quantity, productName),
			p(`^(?:add|create) (?:a )?(?:new )?product (?:called |named )?(.+?)(?: with (\d+) units?)?$`, productName, quantity),
			p(`^add (.+?) to (?:the )?(?:inventory|stock)$`, productName),
		},
		DefaultQuantity: intPtr(1),
	},
	{
		Intent: IntentUpdateInventory,
		Action: ActionUpdateInventory,
		Patterns: []IntentPattern{
			p(`^update (.+?) (?:stock|inventory|quantity) to (\d+)(?: units?)?$`, productName, quantity),
			p(`^(?:set|change|update) (?:the )?(?:stock|inventory|quantity) (?:of|for) (.+?) to (\d+)(?: units?)?$`, productName, quantity),
			p(`^(?:set|update|change) (.+?) to (\d+)(?: units?)?$`, productName, quantity),
		},
	},
	{
		Intent: IntentLowStockAlert,
		Action: ActionGetLowStockItems,
		Patterns: []IntentPattern{
			p(`^(?:show |list |check |get |any )?(?:me )?(?:all )?(?:the )?low[- ]stock(?: items| products| alerts?)?\??$`),
			p(`(?:what|which) (?:items|products) (?:are|is) (?:running )?low`),
			p(`running (?:low|out)`),
			p(`needs? (?:to be )?restock`),
		},
	},
	{
		Intent: IntentCheckStock,
		Action: ActionCheckStock,
		Patterns: []IntentPattern{
			p(`^(?:check |show |what is |what's )?(?:the )?stock (?:for|of|level of|levels for) (.+?)\??$`, searchTerm),
			p(`^how (?:many|much) (.+?) (?:do we have|are in stock|in stock|left)\??$`, searchTerm),
			p(`^(?:check|show) (.+?) (?:stock|inventory)$`, searchTerm),
			p(`^is (.+?) in stock\??$`, searchTerm),
		},
	},
	{
		Intent: IntentCreateCustomer,
		Action: ActionCreateCustomer,
		Patterns: []IntentPattern{
			p(`^(?:add|create|new|register) (?:a )?(?:new )?customer(?: called| named)? (.+)$`, searchTerm),
		},
	},
	{
		Intent: IntentCustomerHistory,
		Action: ActionGetCustomerHistory,
		Patterns: []IntentPattern{
			p(`^(?:show |get )?(?:me )?(?:the )?(?:purchase |order |customer |sales )?history (?:for|of) (.+)$`, searchTerm),
			p(`^what (?:has|did) (.+?) (?:buy|bought|purchase|purchased)\??$`, searchTerm),
			p(`^(?:show )?(.+?)'s (?:purchase |order )?history$`, searchTerm),
		},
	},
	{
		Intent: IntentFindCustomer,
		Action: ActionFindCustomer,
		Patterns: []IntentPattern{
			p(`^(?:find|search for|search|look up|lookup|show) (?:a |the )?customer (?:named |called )?(.+)$`, searchTerm),
		},
	},
	{
		Intent: IntentCreateOrder,
		Action: ActionCreateOrder,
		Patterns: []IntentPattern{
			p(`^(?:create|place|make|new) (?:an? )?order (?:of |for )?(\d+) (.+?) for (.+)$`, quantity, productName, searchTerm),
			p(`^sell (\d+) (.+?) to (.+)$`, quantity, productName, searchTerm),
			p(`^(?:create|place|make|new) (?:an? )?order for (.+)$`, searchTerm),
		},
		DefaultQuantity: intPtr(1),
	},
	{
		Intent: IntentCreateInvoice,
		Action: ActionCreateInvoice,
		Patterns: []IntentPattern{
			p(`^(?:create|generate|make|new|send|issue) (?:an? )?invoice (?:for|to) (.+)$`, searchTerm),
			p(`^invoice (.+)$`, searchTerm),
		},
	},
	{
		Intent: IntentSalesReport,
		Action: ActionGenerateSalesReport,
		Patterns: []IntentPattern{
			p(`^(?:show |get |generate |give me )?(?:me )?(?:a |the )?(?:sales|revenue)(?: report)?(?: for)? `+periods+`$`, period),
			p(`^how (?:much|many) (?:did we sell|sales|revenue)(?: did we (?:make|have))? `+periods+`\??$`, period),
			p(periods+`(?:'s)? (?:sales|revenue)`, period),
			p(`^(?:show |get |generate |give me )?(?:me )?(?:a |the )?(?:sales|revenue)(?: report)?$`),
		},
		Dated: true,
	},
	{
		Intent: IntentBusinessInsights,
		Action: ActionGetBusinessInsights,
		Patterns: []IntentPattern{
			p(`^(?:show |give me |get )?(?:me )?(?:the |some )?(?:business )?(?:insights|overview|summary|dashboard)$`),
			p(`how (?:is|are) (?:my |the |our )?(?:business|things) (?:doing|going)`),
		},
	},
	{
		Intent: IntentTrendAnalysis,
		Action: ActionAnalyzeTrends,
		Patterns: []IntentPattern{
			p(`^(?:show |analyze |analyse )?(?:me )?(?:the )?(?:sales )?trends?(?: analysis)?(?: for (.+))?$`, searchTerm),
			p(`(?:is|are) (?:sales|business) (?:growing|declining|going up|going down|up|down)`),
		},
	},
	{
		Intent: IntentPredictions,
		Action: ActionGeneratePredictions,
		Patterns: []IntentPattern{
			p(`^(?:predict|forecast)(?: sales| revenue| demand)?(?: for (.+))?$`, searchTerm),
			p(`^(?:show |generate |give me )?(?:me )?(?:sales )?(?:predictions?|forecasts?)(?: for (.+))?$`, searchTerm),
		},
	},
	{
		Intent: IntentStaffPerformance,
		Action: ActionGetStaffPerformance,
		Patterns: []IntentPattern{
			p(`^(?:show |get )?(?:me )?(?:the )?(?:staff|team|employee) (?:performance|stats|leaderboard)$`),
			p(`^(?:who is|who's) (?:the |our )?(?:best|top) (?:seller|salesperson|staff member)\??$`),
			p(`how (?:is|are) (?:my |the |our )?(?:staff|team) (?:doing|performing)`),
		},
	},
	{
		Intent: IntentHelp,
		Action: ActionShowHelp,
		Patterns: []IntentPattern{
			p(`^(?:help|commands|\?)$`),
			p(`^what can (?:you|i) do\??$`),
			p(`^how do i use (?:this|you)\??$`),
		},
	},
}

// DefaultIntents returns a copy of the built-in classifier table
func DefaultIntents() []IntentDefinition {
	out := make([]IntentDefinition, len(defaultIntents))
	copy(out, defaultIntents)
	return out
}
