package game

import "math"

// CleaningOutput is the number of raw records the automated pipeline converts
// to clean records in one tick. Conversion is 1:1; data quality scales how
// much of the per-second cleaning capacity actually lands.
func CleaningOutput(rawData, cleaningPerSecond, dataQuality float64) float64 {
	if rawData <= 0 || cleaningPerSecond <= 0 {
		return 0
	}
	capacity := math.Floor(cleaningPerSecond * (1 + dataQuality))
	return math.Min(rawData, capacity)
}

// AutomaticSale sells whole raw-data blocks at the manual market rate and
// returns how much raw data leaves and how much revenue comes in.
func AutomaticSale(rawData float64) (amountToSell, revenue float64) {
	blocks := math.Floor(rawData / RawSaleBlock)
	if blocks <= 0 {
		return 0, 0
	}
	return blocks * RawSaleBlock, blocks * DataSaleRevenue
}

// ManualCleaningCost is how many raw records one clean click consumes.
// Engineers clean 1:1; otherwise the cost drops as data quality rises,
// floored at 2.
func ManualCleaningCost(dataQuality float64, hasEngineer bool) float64 {
	if hasEngineer {
		return 1
	}
	return math.Max(2, math.Floor(10*(1-dataQuality)))
}

// ManualCleaningOutput is how many clean records one clean click produces
// given the raw cost it paid.
func ManualCleaningOutput(cost float64, hasEngineer bool) float64 {
	if hasEngineer {
		return 1
	}
	return math.Ceil(10 / cost)
}

// StorageCost is the per-tick fee for warehoused data: every full block on
// hand is billed.
func StorageCost(rawData, cleanData float64) float64 {
	return math.Floor(rawData/RawStorageBlock)*RawStorageFee +
		math.Floor(cleanData/CleanStorageBlock)*CleanStorageFee
}

// NextBitcoinPrice perturbs the price by a uniform step in [-500, +500) and
// floors it. seed must be a uniform sample from [0, 1).
func NextBitcoinPrice(price, seed float64) float64 {
	return math.Max(BitcoinPriceFloor, price+(seed-0.5)*1000)
}
