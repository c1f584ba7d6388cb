package assistant

import (
	"go-crm-assistant/internal/common/daterange"
)

type Intent string

const (
	IntentAddProduct       Intent = "AddProduct"
	IntentUpdateInventory  Intent = "UpdateInventory"
	IntentCheckStock       Intent = "CheckStock"
	IntentLowStockAlert    Intent = "LowStockAlert"
	IntentCreateCustomer   Intent = "CreateCustomer"
	IntentFindCustomer     Intent = "FindCustomer"
	IntentCustomerHistory  Intent = "CustomerHistory"
	IntentCreateOrder      Intent = "CreateOrder"
	IntentCreateInvoice    Intent = "CreateInvoice"
	IntentSalesReport      Intent = "SalesReport"
	IntentBusinessInsights Intent = "BusinessInsights"
	IntentTrendAnalysis    Intent = "TrendAnalysis"
	IntentPredictions      Intent = "Predictions"
	IntentStaffPerformance Intent = "StaffPerformance"
	IntentHelp             Intent = "Help"
)

// Executor operation names, bound 1:1 to intents
const (
	ActionCreateProduct       = "createProduct"
	ActionUpdateInventory     = "updateInventory"
	ActionCheckStock          = "checkStock"
	ActionGetLowStockItems    = "getLowStockItems"
	ActionCreateCustomer      = "createCustomer"
	ActionFindCustomer        = "findCustomer"
	ActionGetCustomerHistory  = "getCustomerHistory"
	ActionCreateOrder         = "createOrder"
	ActionCreateInvoice       = "createInvoice"
	ActionGenerateSalesReport = "generateSalesReport"
	ActionGetBusinessInsights = "getBusinessInsights"
	ActionAnalyzeTrends       = "analyzeTrends"
	ActionGeneratePredictions = "generatePredictions"
	ActionGetStaffPerformance = "getStaffPerformance"
	ActionShowHelp            = "showHelp"
)

// Visualization kinds the chat UI knows how to render
const (
	VizLowStock             = "lowStock"
	VizCustomerHistory      = "customerHistory"
	VizSalesChart           = "salesChart"
	VizBusinessOverview     = "businessOverview"
	VizCategoryDistribution = "categoryDistribution"
	VizTrend                = "trendChart"
	VizStaffPerformance     = "staffPerformance"
)

// Entities holds the values extracted from an utterance. Which fields are
// set depends on the intent.
type Entities struct {
	ProductName string `json:"productName,omitempty"`
	Quantity    *int   `json:"quantity,omitempty"`
	SearchTerm  string `json:"searchTerm,omitempty"`
	Period      string `json:"period,omitempty"`
}

type Parameters struct {
	DateRange *daterange.Range `json:"dateRange,omitempty"`
}

type Command struct {
	Intent     Intent     `json:"intent"`
	Entities   Entities   `json:"entities"`
	Confidence float64    `json:"confidence"`
	Action     string     `json:"action"`
	Parameters Parameters `json:"parameters"`
}

type Visualization struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

type Response struct {
	Success             bool            `json:"success"`
	Message             string          `json:"message"`
	Data                any             `json:"data,omitempty"`
	Visualizations      []Visualization `json:"visualizations,omitempty"`
	FollowUpSuggestions []string        `json:"followUpSuggestions,omitempty"`

	// set when the command failed on the store and can be re-sent as is
	retryable bool
}

func intPtr(n int) *int {
	return &n
}
