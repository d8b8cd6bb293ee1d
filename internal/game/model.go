package game

// Balance constants. Amounts are plain units: raw/clean data in records,
// revenue in dollars, bitcoin in coins.
const (
	GameDurationSeconds  = 30 * 60
	MeetingTriggerSecond = 25 * 60

	WinThresholdRevenue = 15000
	StartingRevenue     = 5000
	StartingDataQuality = 0.1
	StartingBitcoinUSD  = 30000
	BitcoinPriceFloor   = 1000

	MeetingBonusRevenue = 500
	PolicyBonusRevenue  = 15000
	PolicyBonusCount    = 3

	// Storage billing: every full block on hand costs its fee each tick.
	RawStorageBlock   = 10000
	RawStorageFee     = 0.01
	CleanStorageBlock = 100
	CleanStorageFee   = 0.02

	// Manual market rates.
	RawSaleBlock     = 10000
	CleanSaleBlock   = 100
	DataSaleRevenue  = 10
	CleanBuySmallFee = 10
	CleanBuySmallQty = 10
	CleanBuyBulkRaw  = 100000
	CleanBuyBulkQty  = 100

	// Dashboards burn models plus an engineering budget of cost x 50 revenue.
	DashboardBudgetMultiplier = 50
	AnalystDashboardBoost     = 1.1

	MarketingClockBonus = 30 * 60

	// MeetingURL is opened when the player attends the daily meeting.
	MeetingURL = "http://www.ada-study.com/?utm_source=linkedin&utm_medium=social&utm_campaign=profile_game&utm_content=visit_website/"
)

// Sale and purchase identifiers accepted by SellData / BuyCleanData.
const (
	SellRawData   = "raw_data"
	SellCleanData = "clean_data"
	BuyClean10    = "buy_clean_10"
	BuyClean100   = "buy_clean_100"
)

// Employee roles and their hire cost in revenue. Each role can be hired once.
var employeeCosts = map[string]float64{
	"analyst":  5000,
	"engineer": 7000,
	"lead":     9000,
	"head":     12000,
}

// Dashboard tiers and their cost in trained models.
var dashboardCosts = map[string]float64{
	"basic":      5,
	"advanced":   25,
	"predictive": 100,
	"enterprise": 500,
}

// EmployeeCost returns the hire cost for a role, or false for unknown roles.
func EmployeeCost(id string) (float64, bool) {
	c, ok := employeeCosts[id]
	return c, ok
}

// DashboardCost returns the model cost for a dashboard tier, or false for
// unknown tiers.
func DashboardCost(id string) (float64, bool) {
	c, ok := dashboardCosts[id]
	return c, ok
}
